package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbanos/arbor/dataset"
	"github.com/pbanos/arbor/model"
)

func trainedModel(t *testing.T) *model.DecisionTree {
	cd := dataset.NewClassificationData(1)
	for _, v := range []float64{0.1, 0.2, 0.3} {
		require.NoError(t, cd.AddSample(1, []float64{v}))
		require.NoError(t, cd.AddSample(2, []float64{v + 0.6}))
	}
	dt := model.NewDecisionTree()
	dt.Params.MinSamplesPerNode = 1
	require.NoError(t, dt.Train(context.Background(), cd))
	return dt
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close(ctx)

	dt := trainedModel(t)
	id, err := s.Create(ctx, dt)
	require.NoError(t, err)
	other, err := s.Create(ctx, model.NewClusterTree())
	require.NoError(t, err)
	assert.NotEqual(t, id, other)

	m, err := s.Get(ctx, id)
	require.NoError(t, err)
	loaded, ok := m.(*model.DecisionTree)
	require.True(t, ok)
	assert.Equal(t, dt.Tree(), loaded.Tree())
	p, err := loaded.Predict([]float64{0.85})
	require.NoError(t, err)
	assert.Equal(t, uint(2), p.Label)

	m, err = s.Get(ctx, other)
	require.NoError(t, err)
	assert.IsType(t, &model.ClusterTree{}, m)
	assert.False(t, m.Trained())

	require.NoError(t, s.Store(ctx, other, dt))
	m, err = s.Get(ctx, other)
	require.NoError(t, err)
	assert.True(t, m.Trained())

	dt.Clear()
	m, err = s.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, m.Trained())

	require.NoError(t, s.Delete(ctx, id))
	_, err = s.Get(ctx, id)
	assert.Equal(t, ErrNotFound, err)
}

func TestMemoryStoreCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewMemoryStore()
	_, err := s.Create(ctx, trainedModel(t))
	assert.Equal(t, context.Canceled, err)
	_, err = s.Get(ctx, "1")
	assert.Equal(t, context.Canceled, err)
}
