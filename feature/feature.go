package feature

import (
	"fmt"
	"strconv"
)

// Undefined is the raw value that marks a missing value in text
// sources such as CSV files.
const Undefined = "?"

/*
Feature represents a property that can be observed on a sample,
that is, a column of a training or testing dataset.

Its Parse method takes the raw text of a value for the feature and
returns the value as the type expected by the feature (float64 for
continuous features, string for discrete ones) or an error.
*/
type Feature interface {
	Name() string
	Valid(interface{}) error
	Parse(string) (interface{}, error)
}

/*
DiscreteFeature represents a property that can be observed and that can only
take a value among a finite set. Discrete features are used as class
features: the value at position i of the available values is the class
label i+1, leaving 0 reserved for the null class.
*/
type DiscreteFeature struct {
	name            string
	availableValues []string
}

/*
ContinuousFeature represents a property that can be observed and that can take
a numeric value. Continuous features make up the input vectors of the trees.
*/
type ContinuousFeature struct {
	name string
}

/*
NewDiscreteFeature takes a name string and a slice of available value strings
and returns a discrete feature with the given names and available values.
*/
func NewDiscreteFeature(name string, availableValues []string) *DiscreteFeature {
	return &DiscreteFeature{name, availableValues}
}

/*
NewContinuousFeature takes a name string and returns a continuous feature with
the given name.
*/
func NewContinuousFeature(name string) *ContinuousFeature {
	return &ContinuousFeature{name}
}

// Name returns a string with the name of the feature
func (df *DiscreteFeature) Name() string {
	return df.name
}

/*
Valid receives an interface value and returns an error if the value is
not a string among the available values for the feature.
*/
func (df *DiscreteFeature) Valid(value interface{}) error {
	vs, ok := value.(string)
	if !ok {
		return fmt.Errorf("discrete feature %s expects string value, got %T value", df.Name(), value)
	}
	if _, err := df.Label(vs); err != nil {
		return err
	}
	return nil
}

// Parse returns the raw value if it is one of the available values
func (df *DiscreteFeature) Parse(raw string) (interface{}, error) {
	if raw == Undefined {
		return nil, fmt.Errorf("discrete feature %s has undefined value", df.name)
	}
	if err := df.Valid(raw); err != nil {
		return nil, err
	}
	return raw, nil
}

/*
Label takes a value of the feature and returns the class label it maps to:
its 1-based position among the available values.
*/
func (df *DiscreteFeature) Label(value string) (uint, error) {
	for i, av := range df.availableValues {
		if av == value {
			return uint(i + 1), nil
		}
	}
	return 0, fmt.Errorf("discrete feature %s got unknown value %s", df.Name(), value)
}

/*
Value takes a class label and returns the value of the feature it
stands for or an error if there is no such value. The null class label
0 has no value.
*/
func (df *DiscreteFeature) Value(label uint) (string, error) {
	if label == 0 || int(label) > len(df.availableValues) {
		return "", fmt.Errorf("discrete feature %s has no value for class label %d", df.name, label)
	}
	return df.availableValues[label-1], nil
}

// Labels returns the class labels for all available values, in order.
func (df *DiscreteFeature) Labels() []uint {
	labels := make([]uint, len(df.availableValues))
	for i := range labels {
		labels[i] = uint(i + 1)
	}
	return labels
}

// AvailableValues returns a string slice with the values available for the feature
func (df *DiscreteFeature) AvailableValues() []string {
	return df.availableValues
}

func (df *DiscreteFeature) String() string {
	return df.name
}

// Name returns a string with the name of the feature
func (cf *ContinuousFeature) Name() string {
	return cf.name
}

// Valid returns an error unless the value is a float64.
func (cf *ContinuousFeature) Valid(value interface{}) error {
	if _, ok := value.(float64); !ok {
		return fmt.Errorf("continuous feature %s expects float64 value, got %T value", cf.Name(), value)
	}
	return nil
}

// Parse parses the raw value as a float64
func (cf *ContinuousFeature) Parse(raw string) (interface{}, error) {
	if raw == Undefined {
		return nil, fmt.Errorf("continuous feature %s has undefined value", cf.name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing value %q for continuous feature %s: %v", raw, cf.name, err)
	}
	return v, nil
}

func (cf *ContinuousFeature) String() string {
	return cf.name
}

// Names returns the names of the given features, in order.
func Names(features []Feature) []string {
	names := make([]string, len(features))
	for i, f := range features {
		names[i] = f.Name()
	}
	return names
}
