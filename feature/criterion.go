package feature

import (
	"fmt"
)

/*
Criterion represents a constraint on the features of an input vector.

Its SatisfiedBy method takes a sample and returns a boolean indicating if
the sample satisfies the criterion, or an error if the criterion cannot be
evaluated on it.
*/
type Criterion interface {
	SatisfiedBy(sample []float64) (bool, error)
}

/*
ThresholdCriterion is the split rule of a tree node: a sample satisfies it
(and is routed to the right child) when its value for the feature at Index
is greater than or equal to Threshold. Otherwise the sample goes left.
*/
type ThresholdCriterion struct {
	Index     uint
	Threshold float64
}

/*
NewThresholdCriterion takes a feature index and a threshold and returns
the ThresholdCriterion for them.
*/
func NewThresholdCriterion(index uint, threshold float64) ThresholdCriterion {
	return ThresholdCriterion{Index: index, Threshold: threshold}
}

/*
SatisfiedBy returns whether the sample value at the criterion index is
greater than or equal to the threshold. It returns an error if the sample
has no value at that index.
*/
func (tc ThresholdCriterion) SatisfiedBy(sample []float64) (bool, error) {
	if int(tc.Index) >= len(sample) {
		return false, fmt.Errorf("criterion on feature %d cannot evaluate sample with %d features", tc.Index, len(sample))
	}
	return sample[tc.Index] >= tc.Threshold, nil
}

// Describe renders the criterion using the given feature names when available.
func (tc ThresholdCriterion) Describe(names []string) string {
	if int(tc.Index) < len(names) {
		return fmt.Sprintf("%s >= %g", names[tc.Index], tc.Threshold)
	}
	return tc.String()
}

func (tc ThresholdCriterion) String() string {
	return fmt.Sprintf("x[%d] >= %g", tc.Index, tc.Threshold)
}
