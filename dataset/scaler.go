package dataset

import "fmt"

/*
Scaler rescales input vectors dimension by dimension from the ranges
observed on a training dataset into [Min, Max]. Dimensions whose training
range is empty are mapped to Min.
*/
type Scaler struct {
	Ranges   []MinMax
	Min, Max float64
}

// NewScaler returns a scaler that maps the given ranges into [0,1].
func NewScaler(ranges []MinMax) *Scaler {
	rs := make([]MinMax, len(ranges))
	copy(rs, ranges)
	return &Scaler{Ranges: rs, Min: 0, Max: 1}
}

// FitScaler returns a scaler into [0,1] fitted to the ranges of the given dataset.
func FitScaler(d Dataset) *Scaler {
	return NewScaler(d.Ranges())
}

// Transform returns a scaled copy of the given input vector.
func (s *Scaler) Transform(input []float64) ([]float64, error) {
	if len(input) != len(s.Ranges) {
		return nil, fmt.Errorf("scaling vector with %d dimensions with %d ranges: %w", len(input), len(s.Ranges), ErrDimensionMismatch)
	}
	result := make([]float64, len(input))
	for i, v := range input {
		result[i] = s.scale(v, s.Ranges[i])
	}
	return result, nil
}

func (s *Scaler) scale(v float64, r MinMax) float64 {
	if r.Span() == 0 {
		return s.Min
	}
	return (v-r.Min)/r.Span()*(s.Max-s.Min) + s.Min
}
