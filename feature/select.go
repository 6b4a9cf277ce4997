package feature

import "fmt"

// Find returns the feature with the given name or nil if there is none.
func Find(features []Feature, name string) Feature {
	for _, f := range features {
		if f.Name() == name {
			return f
		}
	}
	return nil
}

/*
Inputs takes a slice of features and the names of features to leave out
(class or target features) and returns the remaining features, in order,
to be used as the dimensions of input vectors. It returns an error if any
of the remaining features is not continuous or if no feature remains.
*/
func Inputs(features []Feature, exclude ...string) ([]Feature, error) {
	excluded := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		excluded[name] = true
	}
	inputs := make([]Feature, 0, len(features))
	for _, f := range features {
		if excluded[f.Name()] {
			continue
		}
		if _, ok := f.(*ContinuousFeature); !ok {
			return nil, fmt.Errorf("input feature %s is not continuous", f.Name())
		}
		inputs = append(inputs, f)
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no input features available")
	}
	return inputs, nil
}

/*
ClassFeature looks up the feature with the given name and returns it as a
DiscreteFeature, or an error if it is not defined or not discrete.
*/
func ClassFeature(features []Feature, name string) (*DiscreteFeature, error) {
	f := Find(features, name)
	if f == nil {
		return nil, fmt.Errorf("class feature '%s' is not defined", name)
	}
	df, ok := f.(*DiscreteFeature)
	if !ok {
		return nil, fmt.Errorf("class feature '%s' is not discrete", name)
	}
	return df, nil
}
