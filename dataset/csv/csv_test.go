package csv

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbanos/arbor/dataset"
	"github.com/pbanos/arbor/feature"
)

var testFeatures = []feature.Feature{
	feature.NewContinuousFeature("width"),
	feature.NewContinuousFeature("height"),
	feature.NewDiscreteFeature("kind", []string{"oak", "pine"}),
}

func TestReadSamples(t *testing.T) {
	data := "width,height,kind,comment\n1.5,2,oak,x\n?,3.25,pine,y\n"
	samples, err := ReadSamples(strings.NewReader(data), testFeatures)
	require.NoError(t, err)
	require.Len(t, samples, 2)

	v, err := samples[0].ValueFor(testFeatures[0])
	require.NoError(t, err)
	assert.Equal(t, 1.5, v)
	v, err = samples[0].ValueFor(testFeatures[2])
	require.NoError(t, err)
	assert.Equal(t, "oak", v)
	v, err = samples[1].ValueFor(testFeatures[0])
	require.NoError(t, err)
	assert.Nil(t, v)

	cd, err := dataset.NewClassificationDataFromSamples(samples[:1], testFeatures[:2], testFeatures[2].(*feature.DiscreteFeature))
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, 2}, cd.Input(0))
	assert.Equal(t, uint(1), cd.ClassLabel(0))
}

func TestReadSamplesErrors(t *testing.T) {
	testCases := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"unknown feature", "width,depth,kind\n1,2,oak\n"},
		{"invalid float", "width,height,kind\n1,tall,oak\n"},
		{"invalid discrete value", "width,height,kind\n1,2,elm\n"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadSamples(strings.NewReader(tc.data), testFeatures)
			assert.Error(t, err)
		})
	}
}

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, testFeatures)
	require.NoError(t, err)
	n, err := w.Write(context.Background(), []dataset.Sample{
		dataset.NewSample(map[string]interface{}{"width": 0.1, "height": 2.0, "kind": "pine"}),
		dataset.NewSample(map[string]interface{}{"width": 3.0, "kind": "oak"}),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.NoError(t, w.Flush())
	assert.Equal(t, "width,height,kind\n0.1,2,pine\n3,?,oak\n", buf.String())

	samples, err := ReadSamples(&buf, testFeatures)
	require.NoError(t, err)
	assert.Len(t, samples, 2)
}
