package feature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscreteFeatureLabels(t *testing.T) {
	df := NewDiscreteFeature("species", []string{"setosa", "versicolor", "virginica"})

	l, err := df.Label("versicolor")
	require.NoError(t, err)
	assert.Equal(t, uint(2), l)

	_, err = df.Label("unknown")
	assert.Error(t, err)

	v, err := df.Value(3)
	require.NoError(t, err)
	assert.Equal(t, "virginica", v)

	_, err = df.Value(0)
	assert.Error(t, err)
	assert.Equal(t, []uint{1, 2, 3}, df.Labels())
}

func TestParse(t *testing.T) {
	cf := NewContinuousFeature("width")
	v, err := cf.Parse("1.5")
	require.NoError(t, err)
	assert.Equal(t, 1.5, v)
	_, err = cf.Parse(Undefined)
	assert.Error(t, err)
	_, err = cf.Parse("wide")
	assert.Error(t, err)

	df := NewDiscreteFeature("color", []string{"red"})
	v, err = df.Parse("red")
	require.NoError(t, err)
	assert.Equal(t, "red", v)
	_, err = df.Parse("blue")
	assert.Error(t, err)
}

func TestThresholdCriterion(t *testing.T) {
	c := NewThresholdCriterion(1, 0.5)

	ok, err := c.SatisfiedBy([]float64{0, 0.5})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.SatisfiedBy([]float64{9, 0.49})
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = c.SatisfiedBy([]float64{1})
	assert.Error(t, err)

	assert.Equal(t, "b >= 0.5", c.Describe([]string{"a", "b"}))
	assert.Equal(t, "x[1] >= 0.5", c.Describe(nil))
}

func TestInputs(t *testing.T) {
	features := []Feature{
		NewContinuousFeature("a"),
		NewDiscreteFeature("class", []string{"x", "y"}),
		NewContinuousFeature("b"),
	}
	inputs, err := Inputs(features, "class")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, Names(inputs))

	_, err = Inputs(features)
	assert.Error(t, err)

	cf, err := ClassFeature(features, "class")
	require.NoError(t, err)
	assert.Equal(t, "class", cf.Name())
	_, err = ClassFeature(features, "a")
	assert.Error(t, err)
	_, err = ClassFeature(features, "missing")
	assert.Error(t, err)
}
