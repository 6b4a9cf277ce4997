package arbor

import (
	"math"

	"github.com/pbanos/arbor/dataset"
	"github.com/pbanos/arbor/tree"
)

/*
Split represents the split rule found for a node: the index of the feature
to evaluate, the threshold at or above which samples go right, and the error
of the partition it produces.
*/
type Split struct {
	Feature   uint
	Threshold float64
	Error     float64
}

// search runs the split search configured for the kind of tree being grown.
func (g *grower) search(s trainingSet, features []uint) (Split, error) {
	if len(features) == 0 {
		return Split{}, ErrNoAdmissibleFeatures
	}
	if g.Kind == tree.DecisionTreeClusterNode {
		return g.clusterSearch(s, features)
	}
	if g.Params.SplitSearch == tree.RandomScan {
		return g.scan(s, features, g.randomThresholds, false)
	}
	return g.scan(s, features, iterativeThresholds(g.Params.NumSplittingSteps), true)
}

/*
scan evaluates the thresholds produced for each admissible feature and
returns the split with the minimum error. Ties are resolved in favour of
the first feature and threshold evaluated. When centerRuns is set, the
threshold is moved to the middle of the run of consecutive thresholds
that produce the same minimum-error partition as the selected one.
*/
func (g *grower) scan(s trainingSet, features []uint, thresholds func(dataset.MinMax) []float64, centerRuns bool) (Split, error) {
	ranges := s.Ranges()
	best := Split{Error: math.Inf(1)}
	found := false
	for _, f := range features {
		ts := thresholds(ranges[f])
		for k := 0; k < len(ts); k++ {
			e := s.splitError(f, ts[k])
			if found && e >= best.Error {
				continue
			}
			threshold := ts[k]
			if centerRuns {
				last := k
				nLeft := countBelow(s, f, ts[k])
				for last+1 < len(ts) && s.splitError(f, ts[last+1]) == e && countBelow(s, f, ts[last+1]) == nLeft {
					last++
				}
				threshold = (ts[k] + ts[last]) / 2
				k = last
			}
			best = Split{Feature: f, Threshold: threshold, Error: e}
			found = true
		}
	}
	return best, nil
}

// iterativeThresholds returns steps evenly spaced thresholds starting at
// the minimum of the range.
func iterativeThresholds(steps uint) func(dataset.MinMax) []float64 {
	return func(r dataset.MinMax) []float64 {
		ts := make([]float64, steps)
		step := r.Span() / float64(steps)
		for k := range ts {
			ts[k] = r.Min + float64(k)*step
		}
		return ts
	}
}

func (g *grower) randomThresholds(r dataset.MinMax) []float64 {
	ts := make([]float64, g.Params.NumSplittingSteps)
	for k := range ts {
		ts[k] = r.Min + g.rnd.Float64()*r.Span()
	}
	return ts
}

func countBelow(d dataset.Dataset, featureIndex uint, threshold float64) int {
	var count int
	for i := 0; i < d.NumSamples(); i++ {
		if d.Input(i)[featureIndex] < threshold {
			count++
		}
	}
	return count
}
