package arbor

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/pbanos/arbor/dataset"
)

/*
giniError takes the per-class sample counts at each side of a binary
partition and returns the Gini index of each side weighted by the fraction
of samples on it. Empty sides contribute nothing.
*/
func giniError(left, right []float64) float64 {
	nLeft, nRight := floats.Sum(left), floats.Sum(right)
	nTotal := math.Max(nLeft+nRight, 1)
	return gini(left, nLeft)*nLeft/nTotal + gini(right, nRight)*nRight/nTotal
}

func gini(counts []float64, n float64) float64 {
	n = math.Max(n, 1)
	impurity := 1.0
	for _, c := range counts {
		p := c / n
		impurity -= p * p
	}
	return impurity
}

/*
featureMSEError returns sqrt(mseLeft + mseRight), where mseSide is the
mean squared deviation from their mean of the values of the split feature
on that side of the threshold. Empty sides contribute 0.
*/
func featureMSEError(d dataset.Dataset, featureIndex uint, threshold float64) float64 {
	var left, right []float64
	for i := 0; i < d.NumSamples(); i++ {
		v := d.Input(i)[featureIndex]
		if v >= threshold {
			right = append(right, v)
		} else {
			left = append(left, v)
		}
	}
	return math.Sqrt(mse(left) + mse(right))
}

func mse(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.PopVariance(values, nil)
}
