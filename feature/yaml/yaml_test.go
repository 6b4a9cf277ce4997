package yaml

import (
	"testing"

	"github.com/pbanos/arbor/feature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadFeaturesKeepsDeclarationOrder(t *testing.T) {
	md := []byte(`
features:
  sepal_length: continuous
  sepal_width: continuous
  species:
    - setosa
    - versicolor
  petal_length: continuous
`)
	features, err := ReadFeatures(md)
	require.NoError(t, err)
	assert.Equal(t, []string{"sepal_length", "sepal_width", "species", "petal_length"}, feature.Names(features))

	species, ok := features[2].(*feature.DiscreteFeature)
	require.True(t, ok)
	assert.Equal(t, []string{"setosa", "versicolor"}, species.AvailableValues())
}

func TestReadFeaturesErrors(t *testing.T) {
	for name, md := range map[string]string{
		"no features":  "other: 1\n",
		"unknown kind": "features:\n  a: categorical\n",
		"bad decl":     "features:\n  a: 3\n",
		"invalid yaml": "features: [\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ReadFeatures([]byte(md))
			assert.Error(t, err)
		})
	}
}
