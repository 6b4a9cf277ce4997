package dataset

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Error is the type of the errors returned by datasets when
// samples cannot be added to them.
type Error string

const (
	// ErrNullClassLabel is returned when trying to add a sample with
	// class label 0, which is reserved for rejected predictions.
	ErrNullClassLabel = Error("class label 0 is reserved for the null class")
	// ErrDimensionMismatch is returned when a sample does not have the
	// number of dimensions of the dataset.
	ErrDimensionMismatch = Error("sample dimensions do not match dataset dimensions")
)

func (e Error) Error() string {
	return string(e)
}

/*
Dataset is the behaviour shared by all in-memory datasets: they hold
a number of samples with input vectors of a fixed number of dimensions.

Its Input method returns the input vector for the sample at the given
index. The returned slice must not be modified.

Its Ranges method returns the minimum and maximum values of each input
dimension over the samples in the dataset.

Its Mean method returns the mean input vector over the samples in the dataset.
*/
type Dataset interface {
	NumSamples() int
	NumDimensions() int
	Input(int) []float64
	Ranges() []MinMax
	Mean() []float64
	Clear()
}

// MinMax holds the range of values of a dimension.
type MinMax struct {
	Min, Max float64
}

// Span returns the difference between the maximum and minimum values.
func (mm MinMax) Span() float64 {
	return mm.Max - mm.Min
}

func ranges(d Dataset) []MinMax {
	result := make([]MinMax, d.NumDimensions())
	if d.NumSamples() == 0 {
		return result
	}
	for j := range result {
		result[j] = MinMax{math.Inf(1), math.Inf(-1)}
	}
	for i := 0; i < d.NumSamples(); i++ {
		for j, v := range d.Input(i) {
			if v < result[j].Min {
				result[j].Min = v
			}
			if v > result[j].Max {
				result[j].Max = v
			}
		}
	}
	return result
}

func mean(d Dataset) []float64 {
	result := make([]float64, d.NumDimensions())
	if d.NumSamples() == 0 {
		return result
	}
	for i := 0; i < d.NumSamples(); i++ {
		floats.Add(result, d.Input(i))
	}
	floats.Scale(1/float64(d.NumSamples()), result)
	return result
}

func copyVector(v []float64) []float64 {
	c := make([]float64, len(v))
	copy(c, v)
	return c
}
