package dataset

import (
	"fmt"

	"github.com/pbanos/arbor/feature"
	"gonum.org/v1/gonum/floats"
)

// RegressionSample is an input vector with the target vector to predict for it.
type RegressionSample struct {
	Input  []float64
	Target []float64
}

// RegressionData is an in-memory dataset of samples used to train and
// test regression trees.
type RegressionData struct {
	numInputDimensions  int
	numTargetDimensions int
	samples             []RegressionSample
}

// NewRegressionData returns an empty dataset for input and target vectors
// with the given number of dimensions.
func NewRegressionData(numInputDimensions, numTargetDimensions int) *RegressionData {
	return &RegressionData{numInputDimensions: numInputDimensions, numTargetDimensions: numTargetDimensions}
}

// AddSample adds copies of the given input and target vectors to the dataset.
func (rd *RegressionData) AddSample(input, target []float64) error {
	if len(input) != rd.numInputDimensions {
		return fmt.Errorf("adding sample with %d input dimensions to dataset with %d: %w", len(input), rd.numInputDimensions, ErrDimensionMismatch)
	}
	if len(target) != rd.numTargetDimensions {
		return fmt.Errorf("adding sample with %d target dimensions to dataset with %d: %w", len(target), rd.numTargetDimensions, ErrDimensionMismatch)
	}
	rd.samples = append(rd.samples, RegressionSample{copyVector(input), copyVector(target)})
	return nil
}

// NumSamples returns the number of samples in the dataset
func (rd *RegressionData) NumSamples() int {
	return len(rd.samples)
}

// NumDimensions returns the number of dimensions of the input vectors
func (rd *RegressionData) NumDimensions() int {
	return rd.numInputDimensions
}

// NumTargetDimensions returns the number of dimensions of the target vectors
func (rd *RegressionData) NumTargetDimensions() int {
	return rd.numTargetDimensions
}

// Sample returns the sample at index i
func (rd *RegressionData) Sample(i int) RegressionSample {
	return rd.samples[i]
}

// Input returns the input vector of the sample at index i
func (rd *RegressionData) Input(i int) []float64 {
	return rd.samples[i].Input
}

// Target returns the target vector of the sample at index i
func (rd *RegressionData) Target(i int) []float64 {
	return rd.samples[i].Target
}

// Ranges returns the minimum and maximum of each input dimension
func (rd *RegressionData) Ranges() []MinMax {
	return ranges(rd)
}

// Mean returns the mean input vector
func (rd *RegressionData) Mean() []float64 {
	return mean(rd)
}

// TargetMean returns the mean target vector, a zero vector for an empty dataset.
func (rd *RegressionData) TargetMean() []float64 {
	result := make([]float64, rd.numTargetDimensions)
	if len(rd.samples) == 0 {
		return result
	}
	for _, s := range rd.samples {
		floats.Add(result, s.Target)
	}
	floats.Scale(1/float64(len(rd.samples)), result)
	return result
}

/*
Partition takes a criterion and returns two datasets: one with the samples
whose input does not satisfy it and one with those that do.
*/
func (rd *RegressionData) Partition(c feature.Criterion) (*RegressionData, *RegressionData, error) {
	left := NewRegressionData(rd.numInputDimensions, rd.numTargetDimensions)
	right := NewRegressionData(rd.numInputDimensions, rd.numTargetDimensions)
	for _, s := range rd.samples {
		ok, err := c.SatisfiedBy(s.Input)
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
// by the given scaler. Target vectors are kept as they are.
func (rd *RegressionData) Scaled(s *Scaler) (*RegressionData, error) {
	scaled := NewRegressionData(rd.numInputDimensions, rd.numTargetDimensions)
	for _, sample := range rd.samples {
		input, err := s.Transform(sample.Input)
		if err != nil {
			return nil, err
		}
		scaled.samples = append(scaled.samples, RegressionSample{input, sample.Target})
	}
	return scaled, nil
}

// Clear removes all samples from the dataset
func (rd *RegressionData) Clear() {
	rd.samples = nil
}
