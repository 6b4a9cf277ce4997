package mongodataset

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	mgo "gopkg.in/mgo.v2"
	"gopkg.in/mgo.v2/bson"

	"github.com/pbanos/arbor/dataset"
	"github.com/pbanos/arbor/feature"
)

var testFeatures = []feature.Feature{
	feature.NewContinuousFeature("width"),
	feature.NewDiscreteFeature("kind", []string{"oak", "pine"}),
}

func TestSample(t *testing.T) {
	mds := &mongodataset{features: testFeatures}
	s, err := mds.sample(bson.M{"_id": bson.NewObjectId(), "width": 3, "kind": "oak", "other": true})
	require.NoError(t, err)
	v, err := s.ValueFor(testFeatures[0])
	require.NoError(t, err)
	assert.Equal(t, 3.0, v)
	v, err = s.ValueFor(testFeatures[1])
	require.NoError(t, err)
	assert.Equal(t, "oak", v)

	s, err = mds.sample(bson.M{"kind": nil})
	require.NoError(t, err)
	v, err = s.ValueFor(testFeatures[1])
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = mds.sample(bson.M{"kind": "birch"})
	assert.Error(t, err)
}

func TestOpenRejectsReservedNames(t *testing.T) {
	for _, name := range []string{"_id", "a.b", "$a"} {
		_, err := Open(context.Background(), nil, []feature.Feature{feature.NewContinuousFeature(name)})
		assert.Error(t, err, name)
	}
}

func TestWriteRead(t *testing.T) {
	url := os.Getenv("ARBOR_TEST_MONGO_URL")
	if url == "" {
		t.Skip("ARBOR_TEST_MONGO_URL not set")
	}
	session, err := mgo.Dial(url)
	require.NoError(t, err)
	defer session.Close()
	require.NoError(t, session.DB("").C(samplesCollectionName).DropCollection())

	ctx := context.Background()
	mds, err := Open(ctx, session, testFeatures)
	require.NoError(t, err)
	n, err := mds.Write(ctx, []dataset.Sample{
		dataset.NewSample(map[string]interface{}{"width": 1.5, "kind": "pine"}),
		dataset.NewSample(map[string]interface{}{"kind": "oak"}),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	samples, err := mds.Samples(ctx)
	require.NoError(t, err)
	require.Len(t, samples, 2)
	v, err := samples[0].ValueFor(testFeatures[0])
	require.NoError(t, err)
	assert.Equal(t, 1.5, v)
}
