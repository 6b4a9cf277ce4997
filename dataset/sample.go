package dataset

import (
	"context"
	"fmt"

	"github.com/pbanos/arbor/feature"
)

/*
Sample represents a row read from a data source: a set of values keyed
by feature name, before it is turned into the vectors of a typed dataset.

Its ValueFor method returns the value of the sample corresponding to the feature
passed as parameter, or nil if the sample has no value for it.
*/
type Sample interface {
	ValueFor(feature.Feature) (interface{}, error)
}

type sample struct {
	featureValues map[string]interface{}
}

/*
NewSample takes a map of feature string names to values and returns
a sample.
*/
func NewSample(featureValues map[string]interface{}) Sample {
	return &sample{featureValues}
}

func (s *sample) ValueFor(feature feature.Feature) (interface{}, error) {
	return s.featureValues[feature.Name()], nil
}

func (s *sample) String() string {
	return fmt.Sprintf("[%v]", s.featureValues)
}

/*
Vector takes a sample and a slice of continuous features and returns the
values of the sample for them as a vector. It returns an error if the
sample has no valid float64 value for any of the features.
*/
func Vector(s Sample, features []feature.Feature) ([]float64, error) {
	v := make([]float64, len(features))
	for i, f := range features {
		val, err := s.ValueFor(f)
		if err != nil {
			return nil, err
		}
		if val == nil {
			return nil, fmt.Errorf("sample %v has no value for feature %s", s, f.Name())
		}
		fv, ok := val.(float64)
		if !ok {
			return nil, fmt.Errorf("sample %v has %T value for continuous feature %s", s, val, f.Name())
		}
		v[i] = fv
	}
	return v, nil
}

/*
NewClassificationDataFromSamples takes samples, the input features and the
class feature and returns a ClassificationData with one entry per sample.
The class label of each sample is given by the position of its class value
among the available values of the class feature.
*/
func NewClassificationDataFromSamples(samples []Sample, inputs []feature.Feature, class *feature.DiscreteFeature) (*ClassificationData, error) {
	cd := NewClassificationData(len(inputs))
	for i, s := range samples {
		input, err := Vector(s, inputs)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %v", i, err)
		}
		val, err := s.ValueFor(class)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %v", i, err)
		}
		value, ok := val.(string)
		if !ok {
			return nil, fmt.Errorf("sample %d: no valid value for class feature %s", i, class.Name())
		}
		label, err := class.Label(value)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %v", i, err)
		}
		if err = cd.AddSample(label, input); err != nil {
			return nil, fmt.Errorf("sample %d: %v", i, err)
		}
	}
	return cd, nil
}

// NewRegressionDataFromSamples takes samples, the input features and the
// target features and returns a RegressionData with one entry per sample.
func NewRegressionDataFromSamples(samples []Sample, inputs, targets []feature.Feature) (*RegressionData, error) {
	rd := NewRegressionData(len(inputs), len(targets))
	for i, s := range samples {
		input, err := Vector(s, inputs)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %v", i, err)
		}
		target, err := Vector(s, targets)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %v", i, err)
		}
		if err = rd.AddSample(input, target); err != nil {
			return nil, fmt.Errorf("sample %d: %v", i, err)
		}
	}
	return rd, nil
}

// NewUnlabeledDataFromSamples takes samples and the input features and
// returns an UnlabeledData with one entry per sample.
func NewUnlabeledDataFromSamples(samples []Sample, inputs []feature.Feature) (*UnlabeledData, error) {
	ud := NewUnlabeledData(len(inputs))
	for i, s := range samples {
		input, err := Vector(s, inputs)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %v", i, err)
		}
		if err = ud.AddSample(input); err != nil {
			return nil, fmt.Errorf("sample %d: %v", i, err)
		}
	}
	return ud, nil
}

/*
Writer is an interface for data sources samples can be written to.

Its Write method attempts to write the given samples and returns the number
of samples actually written and an error if not all of them could be.
Its Flush method ensures any pending write operations finish before
returning, and returns an error if that cannot be ensured.
*/
type Writer interface {
	Write(context.Context, []Sample) (int, error)
	Flush() error
}
