/*
Package mongodataset reads samples from and writes samples to the samples
collection of a MongoDB database.
*/
package mongodataset

import (
	"context"
	"fmt"
	"strings"

	mgo "gopkg.in/mgo.v2"
	"gopkg.in/mgo.v2/bson"

	"github.com/pbanos/arbor/dataset"
	"github.com/pbanos/arbor/feature"
)

/*
Dataset is a dataset.Writer on a MongoDB collection from which samples can
also be sequentially read.
*/
type Dataset interface {
	dataset.Writer
	Read(context.Context) (<-chan dataset.Sample, <-chan error)
	Samples(context.Context) ([]dataset.Sample, error)
}

type mongodataset struct {
	session  *mgo.Session
	features []feature.Feature
}

const (
	samplesCollectionName = "samples"
)

/*
Open takes a MongoDB database session and a slice of features and returns a
Dataset that works on the default database for that session, or an error if
the feature names cannot be used as fields or their indexes cannot be
created.
*/
func Open(ctx context.Context, session *mgo.Session, features []feature.Feature) (Dataset, error) {
	mds := &mongodataset{session, features}
	err := mds.ensureIndexes()
	if err != nil {
		return nil, err
	}
	return mds, nil
}

func (mds *mongodataset) Write(ctx context.Context, samples []dataset.Sample) (int, error) {
	if len(samples) == 0 {
		return 0, nil
	}
	docs := make([]interface{}, 0, len(samples))
	for _, s := range samples {
		doc := make(bson.M)
		for _, f := range mds.features {
			value, err := s.ValueFor(f)
			if err != nil {
				return 0, err
			}
			if value != nil {
				doc[f.Name()] = value
			}
		}
		docs = append(docs, doc)
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	err := mds.samplesCollection().Insert(docs...)
	if err != nil {
		return 0, err
	}
	return len(samples), nil
}

// Flush returns nil, as inserts are acknowledged by the session before
// Write returns.
func (mds *mongodataset) Flush() error {
	return nil
}

/*
Read returns a channel on which the samples in the collection are sent and a
channel that receives an error if reading fails. Both are closed once all
samples are sent or the context is done.
*/
func (mds *mongodataset) Read(ctx context.Context) (<-chan dataset.Sample, <-chan error) {
	samples := make(chan dataset.Sample)
	errs := make(chan error, 1)
	go func() {
		defer close(samples)
		defer close(errs)
		var doc bson.M
		iter := mds.samplesCollection().Find(nil).Sort("_id").Iter()
		defer iter.Close()
		for i := 0; iter.Next(&doc); i++ {
			s, err := mds.sample(doc)
			if err != nil {
				errs <- fmt.Errorf("sample %d: %v", i, err)
				return
			}
			doc = nil
			select {
			case <-ctx.Done():
				errs <- ctx.Err()
				return
			case samples <- s:
			}
		}
		if err := iter.Err(); err != nil {
			errs <- err
		}
	}()
	return samples, errs
}

func (mds *mongodataset) Samples(ctx context.Context) ([]dataset.Sample, error) {
	var result []dataset.Sample
	samples, errs := mds.Read(ctx)
	for s := range samples {
		result = append(result, s)
	}
	if err := <-errs; err != nil {
		return nil, err
	}
	return result, nil
}

// sample takes a document and returns a sample with its values for the
// features of the dataset, with numbers converted to float64.
func (mds *mongodataset) sample(doc bson.M) (dataset.Sample, error) {
	values := make(map[string]interface{}, len(mds.features))
	for _, f := range mds.features {
		v, ok := doc[f.Name()]
		if !ok || v == nil {
			continue
		}
		v = normalize(v)
		if err := f.Valid(v); err != nil {
			return nil, err
		}
		values[f.Name()] = v
	}
	return dataset.NewSample(values), nil
}

func normalize(v interface{}) interface{} {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case float32:
		return float64(n)
	}
	return v
}

func (mds *mongodataset) ensureIndexes() error {
	for _, f := range mds.features {
		fName := f.Name()
		if fName == "_id" {
			return fmt.Errorf("invalid feature name %q: reserved collection field", "_id")
		}
		if strings.ContainsAny(fName, ".$") {
			return fmt.Errorf("invalid feature name %q: contains reserved characters %q or %q", fName, ".", "$")
		}
		index := mgo.Index{
			Key:        []string{fName},
			Background: true,
			Sparse:     true,
		}
		err := mds.samplesCollection().EnsureIndex(index)
		if err != nil {
			return err
		}
	}
	return nil
}

func (mds *mongodataset) samplesCollection() *mgo.Collection {
	return mds.session.DB("").C(samplesCollectionName)
}
