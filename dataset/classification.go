package dataset

import (
	"fmt"
	"sort"

	"github.com/pbanos/arbor/feature"
)

// ClassificationSample is an input vector with the class label it belongs to.
type ClassificationSample struct {
	ClassLabel uint
	Input      []float64
}

/*
ClassificationData is an in-memory dataset of labelled samples used to
train and test decision trees. Class labels are positive integers, 0 being
reserved for the null class.
*/
type ClassificationData struct {
	numDimensions int
	samples       []ClassificationSample
	classCounts   map[uint]int
}

// NewClassificationData returns an empty dataset for input vectors with
// the given number of dimensions.
func NewClassificationData(numDimensions int) *ClassificationData {
	return &ClassificationData{numDimensions: numDimensions, classCounts: make(map[uint]int)}
}

/*
AddSample takes a class label and an input vector and adds a copy of them
to the dataset. It returns ErrNullClassLabel if the label is 0 and
ErrDimensionMismatch if the input vector does not have the dimensions of
the dataset.
*/
func (cd *ClassificationData) AddSample(classLabel uint, input []float64) error {
	if classLabel == 0 {
		return ErrNullClassLabel
	}
	if len(input) != cd.numDimensions {
		return fmt.Errorf("adding sample with %d dimensions to dataset with %d: %w", len(input), cd.numDimensions, ErrDimensionMismatch)
	}
	cd.samples = append(cd.samples, ClassificationSample{classLabel, copyVector(input)})
	cd.classCounts[classLabel]++
	return nil
}

func (cd *ClassificationData) add(s ClassificationSample) {
	cd.samples = append(cd.samples, s)
	cd.classCounts[s.ClassLabel]++
}

// NumSamples returns the number of samples in the dataset
func (cd *ClassificationData) NumSamples() int {
	return len(cd.samples)
}

// NumDimensions returns the number of dimensions of the input vectors
func (cd *ClassificationData) NumDimensions() int {
	return cd.numDimensions
}

// NumClasses returns the number of different class labels in the dataset
func (cd *ClassificationData) NumClasses() int {
	return len(cd.classCounts)
}

// ClassLabels returns the different class labels in the dataset in ascending order
func (cd *ClassificationData) ClassLabels() []uint {
	labels := make([]uint, 0, len(cd.classCounts))
	for l := range cd.classCounts {
		labels = append(labels, l)
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })
	return labels
}

// ClassCount returns the number of samples with the given class label
func (cd *ClassificationData) ClassCount(classLabel uint) int {
	return cd.classCounts[classLabel]
}

// Sample returns the sample at index i
func (cd *ClassificationData) Sample(i int) ClassificationSample {
	return cd.samples[i]
}

// Input returns the input vector of the sample at index i
func (cd *ClassificationData) Input(i int) []float64 {
	return cd.samples[i].Input
}

// ClassLabel returns the class label of the sample at index i
func (cd *ClassificationData) ClassLabel(i int) uint {
	return cd.samples[i].ClassLabel
}

// Ranges returns the minimum and maximum of each input dimension
func (cd *ClassificationData) Ranges() []MinMax {
	return ranges(cd)
}

// Mean returns the mean input vector
func (cd *ClassificationData) Mean() []float64 {
	return mean(cd)
}

/*
ClassProbabilities takes a slice of class labels and returns the fraction
of samples in the dataset that belong to each of them, in the same order.
An empty dataset yields all zeros.
*/
func (cd *ClassificationData) ClassProbabilities(classLabels []uint) []float64 {
	probs := make([]float64, len(classLabels))
	if len(cd.samples) == 0 {
		return probs
	}
	for i, l := range classLabels {
		probs[i] = float64(cd.classCounts[l]) / float64(len(cd.samples))
	}
	return probs
}

/*
Partition takes a criterion and returns two datasets: one with the samples
that do not satisfy it and one with those that do. Input vectors are shared
with the receiver.
*/
func (cd *ClassificationData) Partition(c feature.Criterion) (*ClassificationData, *ClassificationData, error) {
	left, right := NewClassificationData(cd.numDimensions), NewClassificationData(cd.numDimensions)
	for _, s := range cd.samples {
		ok, err := c.SatisfiedBy(s.Input)
		if err != nil {
			return nil, nil, err
		}
		if ok {
			right.add(s)
		} else {
			left.add(s)
		}
	}
	return left, right, nil
}

/*
Scaled returns a copy of the dataset with every input vector transformed
by the given scaler.
*/
func (cd *ClassificationData) Scaled(s *Scaler) (*ClassificationData, error) {
	scaled := NewClassificationData(cd.numDimensions)
	for _, sample := range cd.samples {
		input, err := s.Transform(sample.Input)
		if err != nil {
			return nil, err
		}
		scaled.add(ClassificationSample{sample.ClassLabel, input})
	}
	return scaled, nil
}

// Clear removes all samples from the dataset
func (cd *ClassificationData) Clear() {
	cd.samples = nil
	cd.classCounts = make(map[uint]int)
}
