package arbor

import (
	"context"
)

/*
Pruner is an interface wrapping the Prune method, that can be used
to decide whether the best split found for a node is good enough to
become part of a tree or if the node must become a leaf instead.

The Prune method takes a context and a split and returns a boolean: true
to indicate the split must be pruned, false to allow its adding to the
tree and further development.
*/
type Pruner interface {
	Prune(ctx context.Context, s Split) (bool, error)
}

/*
PrunerFunc wraps a function with the Prune method signature to implement
the Pruner interface
*/
type PrunerFunc func(ctx context.Context, s Split) (bool, error)

// Prune invokes the PrunerFunc with the given parameters to return its result.
func (pf PrunerFunc) Prune(ctx context.Context, s Split) (bool, error) {
	return pf(ctx, s)
}

/*
MinErrorPruner takes a minError float64 value and returns a Pruner
whose Prune method returns whether the split error is at or below it.
Cluster and regression trees use it to stop splitting nodes whose data
is already tight enough.
*/
func MinErrorPruner(minError float64) Pruner {
	return PrunerFunc(func(ctx context.Context, s Split) (bool, error) {
		return s.Error <= minError, nil
	})
}

/*
NoPruner returns a Pruner whose Prune method always returns false, that is,
never prunes. Decision trees use it, as they have no early stop on the
split error.
*/
func NoPruner() Pruner {
	return PrunerFunc(func(ctx context.Context, s Split) (bool, error) {
		return false, nil
	})
}

// leaf reasons, in the order they are checked
const (
	reasonPure          = "pure"
	reasonNoFeatures    = "no admissible features"
	reasonFewSamples    = "too few samples"
	reasonMaxDepth      = "maximum depth"
	reasonNoSplit       = "no feature could be split"
	reasonPrunedByError = "pruned"
)

/*
leafReason returns why a node with the given set, admissible features and
depth must be a leaf, or the empty string if it may be split. Conditions are
checked in order and the first one that holds wins.
*/
func (g *grower) leafReason(s trainingSet, features []uint, depth uint) string {
	switch {
	case s.pure():
		return reasonPure
	case len(features) == 0:
		return reasonNoFeatures
	case uint(s.NumSamples()) < g.Params.MinSamplesPerNode:
		return reasonFewSamples
	case depth >= g.Params.MaxDepth:
		return reasonMaxDepth
	}
	return ""
}
