package sqlite3adapter

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbanos/arbor/dataset"
	"github.com/pbanos/arbor/dataset/sqldataset"
	"github.com/pbanos/arbor/feature"
)

func TestWriteReadSamples(t *testing.T) {
	ctx := context.Background()
	features := []feature.Feature{
		feature.NewContinuousFeature("width"),
		feature.NewDiscreteFeature("kind", []string{"oak", "pine"}),
	}
	a, err := New(filepath.Join(t.TempDir(), "samples.db"))
	require.NoError(t, err)
	defer a.Close()

	w, err := sqldataset.NewWriter(ctx, a, features)
	require.NoError(t, err)
	n, err := w.Write(ctx, []dataset.Sample{
		dataset.NewSample(map[string]interface{}{"width": 1.5, "kind": "pine"}),
		dataset.NewSample(map[string]interface{}{"kind": "oak"}),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.NoError(t, w.Flush())

	_, err = sqldataset.NewWriter(ctx, a, features)
	require.NoError(t, err)

	samples, err := sqldataset.ReadSamples(ctx, a, features)
	require.NoError(t, err)
	require.Len(t, samples, 2)
	v, err := samples[0].ValueFor(features[0])
	require.NoError(t, err)
	assert.Equal(t, 1.5, v)
	v, err = samples[0].ValueFor(features[1])
	require.NoError(t, err)
	assert.Equal(t, "pine", v)
	v, err = samples[1].ValueFor(features[0])
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestColumnName(t *testing.T) {
	a, err := New(filepath.Join(t.TempDir(), "samples.db"))
	require.NoError(t, err)
	defer a.Close()
	_, err = a.ColumnName("id")
	assert.Error(t, err)
	_, err = a.ColumnName(`a"b`)
	assert.Error(t, err)
	c, err := a.ColumnName("width")
	require.NoError(t, err)
	assert.Equal(t, "width", c)
}
