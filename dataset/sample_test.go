package dataset

import (
	"testing"

	"github.com/pbanos/arbor/feature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataFromSamples(t *testing.T) {
	x := feature.NewContinuousFeature("x")
	y := feature.NewContinuousFeature("y")
	class := feature.NewDiscreteFeature("class", []string{"a", "b"})
	samples := []Sample{
		NewSample(map[string]interface{}{"x": 1.0, "y": 2.0, "class": "b"}),
		NewSample(map[string]interface{}{"x": 3.0, "y": 4.0, "class": "a"}),
	}

	cd, err := NewClassificationDataFromSamples(samples, []feature.Feature{x}, class)
	require.NoError(t, err)
	assert.Equal(t, ClassificationSample{2, []float64{1}}, cd.Sample(0))
	assert.Equal(t, ClassificationSample{1, []float64{3}}, cd.Sample(1))

	rd, err := NewRegressionDataFromSamples(samples, []feature.Feature{x}, []feature.Feature{y})
	require.NoError(t, err)
	assert.Equal(t, []float64{4}, rd.Target(1))
	assert.Equal(t, []float64{3}, rd.TargetMean())

	ud, err := NewUnlabeledDataFromSamples(samples, []feature.Feature{y, x})
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 1}, ud.Input(0))
}

func TestDataFromSamplesErrors(t *testing.T) {
	x := feature.NewContinuousFeature("x")
	class := feature.NewDiscreteFeature("class", []string{"a"})

	_, err := NewUnlabeledDataFromSamples([]Sample{NewSample(map[string]interface{}{})}, []feature.Feature{x})
	assert.Error(t, err)

	_, err = NewUnlabeledDataFromSamples([]Sample{NewSample(map[string]interface{}{"x": "1"})}, []feature.Feature{x})
	assert.Error(t, err)

	_, err = NewClassificationDataFromSamples([]Sample{NewSample(map[string]interface{}{"x": 1.0, "class": "z"})}, []feature.Feature{x}, class)
	assert.Error(t, err)
}

func TestRegressionDataPartition(t *testing.T) {
	rd := NewRegressionData(1, 2)
	require.NoError(t, rd.AddSample([]float64{0}, []float64{1, 1}))
	require.NoError(t, rd.AddSample([]float64{1}, []float64{3, 5}))
	assert.Error(t, rd.AddSample([]float64{1}, []float64{3}))

	left, right, err := rd.Partition(feature.NewThresholdCriterion(0, 0.5))
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1}, left.TargetMean())
	assert.Equal(t, []float64{3, 5}, right.TargetMean())
	assert.Equal(t, []float64{0, 0}, NewRegressionData(1, 2).TargetMean())
}
