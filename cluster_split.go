package arbor

import (
	"errors"
	"math"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const maxKMeansIterations = 100

var (
	errNoCandidate        = errors.New("no feature could be split")
	errDegenerateFeature  = errors.New("feature has a single distinct value")
	errEmptyKMeansCluster = errors.New("2-means produced an empty cluster")
)

type candidate struct {
	Split
	ok bool
}

/*
clusterSearch samples min(NumSplittingSteps, len(features)) admissible
features without replacement and, for each of them in a bounded pool of
workers, runs a 2-means clustering over the feature values and evaluates
the split at the midpoint between the two centroids. It returns the
candidate with the minimum error. Features that cannot be clustered are
skipped; if no candidate remains errNoCandidate is returned.
*/
func (g *grower) clusterSearch(s trainingSet, features []uint) (Split, error) {
	n := int(g.Params.NumSplittingSteps)
	if n > len(features) {
		n = len(features)
	}
	sampled := g.rnd.Perm(len(features))[:n]
	candidates := make([]candidate, n)
	var eg errgroup.Group
	eg.SetLimit(g.workers())
	for i, p := range sampled {
		i, f := i, features[p]
		eg.Go(func() error {
			threshold, err := kMeansThreshold(featureValues(s, f))
			if err != nil {
				return nil
			}
			candidates[i] = candidate{Split{Feature: f, Threshold: threshold, Error: s.splitError(f, threshold)}, true}
			return nil
		})
	}
	eg.Wait()
	best := candidate{Split: Split{Error: math.Inf(1)}}
	for _, c := range candidates {
		if c.ok && (!best.ok || c.Error < best.Error) {
			best = c
		}
	}
	if !best.ok {
		return Split{}, errNoCandidate
	}
	return best.Split, nil
}

func featureValues(s trainingSet, featureIndex uint) []float64 {
	values := make([]float64, s.NumSamples())
	for i := range values {
		values[i] = s.Input(i)[featureIndex]
	}
	return values
}

/*
kMeansThreshold clusters the given values in two groups with Lloyd's
algorithm, seeding the centroids with the minimum and maximum values, and
returns the midpoint between the resulting centroids.
*/
func kMeansThreshold(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, errDegenerateFeature
	}
	centroids := [2]float64{floats.Min(values), floats.Max(values)}
	if centroids[0] == centroids[1] {
		return 0, errDegenerateFeature
	}
	assignments := make([]int, len(values))
	groups := [2][]float64{}
	for it := 0; it < maxKMeansIterations; it++ {
		changed := it == 0
		groups[0], groups[1] = groups[0][:0], groups[1][:0]
		for i, v := range values {
			c := 0
			if math.Abs(v-centroids[1]) < math.Abs(v-centroids[0]) {
				c = 1
			}
			if assignments[i] != c {
				assignments[i] = c
				changed = true
			}
			groups[c] = append(groups[c], v)
		}
		if len(groups[0]) == 0 || len(groups[1]) == 0 {
			return 0, errEmptyKMeansCluster
		}
		centroids[0], centroids[1] = stat.Mean(groups[0], nil), stat.Mean(groups[1], nil)
		if !changed {
			break
		}
	}
	return (centroids[0] + centroids[1]) / 2, nil
}
