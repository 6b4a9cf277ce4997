package dataset

import (
	"errors"
	"testing"

	"github.com/pbanos/arbor/feature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClassificationData(t *testing.T) *ClassificationData {
	cd := NewClassificationData(2)
	require.NoError(t, cd.AddSample(1, []float64{0.0, 1.0}))
	require.NoError(t, cd.AddSample(1, []float64{0.2, 3.0}))
	require.NoError(t, cd.AddSample(2, []float64{0.8, 2.0}))
	require.NoError(t, cd.AddSample(3, []float64{1.0, 2.0}))
	return cd
}

func TestClassificationDataAddSample(t *testing.T) {
	cd := NewClassificationData(2)
	assert.Equal(t, ErrNullClassLabel, cd.AddSample(0, []float64{1, 2}))
	err := cd.AddSample(1, []float64{1})
	assert.True(t, errors.Is(err, ErrDimensionMismatch))
	assert.Equal(t, 0, cd.NumSamples())

	input := []float64{1, 2}
	require.NoError(t, cd.AddSample(4, input))
	input[0] = 9
	assert.Equal(t, []float64{1, 2}, cd.Input(0))
}

func TestClassificationDataStatistics(t *testing.T) {
	cd := newTestClassificationData(t)
	assert.Equal(t, 4, cd.NumSamples())
	assert.Equal(t, 2, cd.NumDimensions())
	assert.Equal(t, 3, cd.NumClasses())
	assert.Equal(t, []uint{1, 2, 3}, cd.ClassLabels())
	assert.Equal(t, []MinMax{{0, 1}, {1, 3}}, cd.Ranges())
	assert.InDeltaSlice(t, []float64{0.5, 2.0}, cd.Mean(), 1e-12)
	assert.InDeltaSlice(t, []float64{0.5, 0.25, 0.25, 0}, cd.ClassProbabilities([]uint{1, 2, 3, 4}), 1e-12)

	cd.Clear()
	assert.Equal(t, 0, cd.NumSamples())
	assert.Equal(t, 0, cd.NumClasses())
	assert.Equal(t, []float64{0, 0}, cd.ClassProbabilities([]uint{1, 2}))
	assert.Equal(t, []MinMax{{}, {}}, cd.Ranges())
}

func TestClassificationDataPartition(t *testing.T) {
	cd := newTestClassificationData(t)
	left, right, err := cd.Partition(feature.NewThresholdCriterion(0, 0.5))
	require.NoError(t, err)
	assert.Equal(t, 2, left.NumSamples())
	assert.Equal(t, 2, right.NumSamples())
	assert.Equal(t, []uint{1}, left.ClassLabels())
	assert.Equal(t, []uint{2, 3}, right.ClassLabels())

	_, _, err = cd.Partition(feature.NewThresholdCriterion(5, 0.5))
	assert.Error(t, err)
}

func TestScaler(t *testing.T) {
	cd := newTestClassificationData(t)
	s := FitScaler(cd)
	scaled, err := cd.Scaled(s)
	require.NoError(t, err)
	assert.Equal(t, cd.NumSamples(), scaled.NumSamples())
	assert.Equal(t, []MinMax{{0, 1}, {0, 1}}, scaled.Ranges())
	assert.InDeltaSlice(t, []float64{0.2, 1}, scaled.Input(1), 1e-12)

	v, err := s.Transform([]float64{0.5, 4})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.5, 1.5}, v, 1e-12)

	flat := NewScaler([]MinMax{{2, 2}})
	v, err = flat.Transform([]float64{7})
	require.NoError(t, err)
	assert.Equal(t, []float64{0}, v)

	_, err = s.Transform([]float64{1})
	assert.True(t, errors.Is(err, ErrDimensionMismatch))
}
