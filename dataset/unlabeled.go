package dataset

import (
	"fmt"

	"github.com/pbanos/arbor/feature"
)

// UnlabeledData is an in-memory dataset of input vectors without labels
// used to train cluster trees.
type UnlabeledData struct {
	numDimensions int
	samples       [][]float64
}

// NewUnlabeledData returns an empty dataset for input vectors with the
// given number of dimensions.
func NewUnlabeledData(numDimensions int) *UnlabeledData {
	return &UnlabeledData{numDimensions: numDimensions}
}

// AddSample adds a copy of the given input vector to the dataset.
func (ud *UnlabeledData) AddSample(input []float64) error {
	if len(input) != ud.numDimensions {
		return fmt.Errorf("adding sample with %d dimensions to dataset with %d: %w", len(input), ud.numDimensions, ErrDimensionMismatch)
	}
	ud.samples = append(ud.samples, copyVector(input))
	return nil
}

// NumSamples returns the number of samples in the dataset
func (ud *UnlabeledData) NumSamples() int {
	return len(ud.samples)
}

// NumDimensions returns the number of dimensions of the input vectors
func (ud *UnlabeledData) NumDimensions() int {
	return ud.numDimensions
}

// Input returns the input vector of the sample at index i
func (ud *UnlabeledData) Input(i int) []float64 {
	return ud.samples[i]
}

// Ranges returns the minimum and maximum of each input dimension
func (ud *UnlabeledData) Ranges() []MinMax {
	return ranges(ud)
}

// Mean returns the mean input vector
func (ud *UnlabeledData) Mean() []float64 {
	return mean(ud)
}

/*
Partition takes a criterion and returns two datasets: one with the samples
that do not satisfy it and one with those that do.
*/
func (ud *UnlabeledData) Partition(c feature.Criterion) (*UnlabeledData, *UnlabeledData, error) {
	left, right := NewUnlabeledData(ud.numDimensions), NewUnlabeledData(ud.numDimensions)
	for _, s := range ud.samples {
		ok, err := c.SatisfiedBy(s)
		if err != nil {
			return nil, nil, err
		}
		if ok {
			right.samples = append(right.samples, s)
		} else {
			left.samples = append(left.samples, s)
		}
	}
	return left, right, nil
}

// Scaled returns a copy of the dataset with every input vector transformed
// by the given scaler.
func (ud *UnlabeledData) Scaled(s *Scaler) (*UnlabeledData, error) {
	scaled := NewUnlabeledData(ud.numDimensions)
	for _, sample := range ud.samples {
		input, err := s.Transform(sample)
		if err != nil {
			return nil, err
		}
		scaled.samples = append(scaled.samples, input)
	}
	return scaled, nil
}

// Clear removes all samples from the dataset
func (ud *UnlabeledData) Clear() {
	ud.samples = nil
}
