package sqldataset

import (
	"context"
	"fmt"

	"github.com/pbanos/arbor/dataset"
	"github.com/pbanos/arbor/feature"
)

type columns struct {
	discrete, continuous []string
	byFeature            map[string]string
}

func featureColumns(a Adapter, features []feature.Feature) (*columns, error) {
	cs := &columns{byFeature: make(map[string]string, len(features))}
	for _, f := range features {
		c, err := a.ColumnName(f.Name())
		if err != nil {
			return nil, err
		}
		cs.byFeature[f.Name()] = c
		if _, ok := f.(*feature.DiscreteFeature); ok {
			cs.discrete = append(cs.discrete, c)
		} else {
			cs.continuous = append(cs.continuous, c)
		}
	}
	return cs, nil
}

/*
ReadSamples takes a context, an Adapter and a slice of features and returns
the samples stored on the database with values for the given features. It
expects the samples table to have a column for each feature.
*/
func ReadSamples(ctx context.Context, a Adapter, features []feature.Feature) ([]dataset.Sample, error) {
	cs, err := featureColumns(a, features)
	if err != nil {
		return nil, err
	}
	discreteValues, err := a.ListDiscreteValues(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing discrete values: %v", err)
	}
	var samples []dataset.Sample
	err = a.IterateOnSamples(ctx, cs.discrete, cs.continuous, func(i int, raw map[string]interface{}) (bool, error) {
		values := make(map[string]interface{}, len(features))
		for _, f := range features {
			v, ok := raw[cs.byFeature[f.Name()]]
			if !ok {
				continue
			}
			if id, ok := v.(int); ok {
				value, ok := discreteValues[id]
				if !ok {
					return false, fmt.Errorf("sample %d: unknown discrete value id %d for feature %s", i, id, f.Name())
				}
				v = value
			}
			if err := f.Valid(v); err != nil {
				return false, fmt.Errorf("sample %d: %v", i, err)
			}
			values[f.Name()] = v
		}
		samples = append(samples, dataset.NewSample(values))
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return samples, nil
}

type sqlWriter struct {
	a              Adapter
	features       []feature.Feature
	cs             *columns
	discreteValues map[string]int
}

/*
NewWriter takes a context, an Adapter and a slice of features and returns a
dataset.Writer that inserts samples on the database. It ensures the
discreteValues and samples tables exist and that the discreteValues table
holds every value of the discrete features.
*/
func NewWriter(ctx context.Context, a Adapter, features []feature.Feature) (dataset.Writer, error) {
	cs, err := featureColumns(a, features)
	if err != nil {
		return nil, err
	}
	if err = a.CreateDiscreteValuesTable(ctx); err != nil {
		return nil, err
	}
	if err = a.CreateSampleTable(ctx, cs.discrete, cs.continuous); err != nil {
		return nil, err
	}
	var values []string
	for _, f := range features {
		if df, ok := f.(*feature.DiscreteFeature); ok {
			values = append(values, df.AvailableValues()...)
		}
	}
	if _, err = a.AddDiscreteValues(ctx, values); err != nil {
		return nil, err
	}
	ids, err := a.ListDiscreteValues(ctx)
	if err != nil {
		return nil, err
	}
	w := &sqlWriter{a: a, features: features, cs: cs, discreteValues: make(map[string]int, len(ids))}
	for id, v := range ids {
		w.discreteValues[v] = id
	}
	return w, nil
}

func (w *sqlWriter) Write(ctx context.Context, samples []dataset.Sample) (int, error) {
	rawSamples := make([]map[string]interface{}, 0, len(samples))
	for i, s := range samples {
		raw := make(map[string]interface{}, len(w.features))
		for _, f := range w.features {
			v, err := s.ValueFor(f)
			if err != nil {
				return 0, err
			}
			if v == nil {
				continue
			}
			if _, ok := f.(*feature.DiscreteFeature); ok {
				id, ok := w.discreteValues[fmt.Sprintf("%v", v)]
				if !ok {
					return 0, fmt.Errorf("sample %d: unknown value %v for feature %s", i, v, f.Name())
				}
				v = id
			}
			raw[w.cs.byFeature[f.Name()]] = v
		}
		rawSamples = append(rawSamples, raw)
	}
	return w.a.AddSamples(ctx, rawSamples, w.cs.discrete, w.cs.continuous)
}

func (w *sqlWriter) Flush() error {
	return nil
}
