/*
Package arbor grows binary trees from in-memory datasets: decision trees
that classify samples, cluster trees that group unlabeled samples, and
regression trees that predict target vectors.

Trees are grown recursively from the root. At each node the builder
checks whether the node must be a leaf and otherwise searches for the
split rule (a feature and a threshold) that minimizes the error of the
resulting partition, partitions the data with it and grows both children.
*/
package arbor

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/pbanos/arbor/dataset"
	"github.com/pbanos/arbor/tree"
)

// Error is the type of the configuration errors returned by the builder.
type Error string

const (
	// ErrNoTrainingData is returned when growing a tree from an empty dataset.
	ErrNoTrainingData = Error("no training data")
	// ErrNoAdmissibleFeatures is returned when growing a tree from a dataset
	// without input dimensions.
	ErrNoAdmissibleFeatures = Error("no admissible features")
	// ErrUnsupportedKind is returned when the configured node kind cannot
	// grow the requested kind of tree.
	ErrUnsupportedKind = Error("unsupported node kind")
)

func (e Error) Error() string {
	return string(e)
}

/*
Builder grows trees of the configured node kind with the configured
hyperparameters.

Rand is the source of randomness for random threshold scans and for
sampling features in cluster searches; a time-seeded source is used when
nil. Workers bounds the number of goroutines running cluster searches,
defaulting to GOMAXPROCS. Pruner decides whether the best split of a node
is kept; when nil, cluster and regression trees prune splits with an error
at or below Params.MinRMSErrorPerNode and decision trees never prune.
*/
type Builder struct {
	Params  tree.Params
	Kind    tree.Kind
	Rand    *rand.Rand
	Workers int
	Pruner  Pruner
	Logger  *zap.Logger
}

/*
Result holds a grown tree along with statistics gathered while growing it:
the mean input vector of the training samples that reached each node, keyed
by node ID, and the number of cluster labels assigned.
*/
type Result struct {
	Tree        *tree.Tree
	NodeMeans   map[uint][]float64
	NumClusters uint
}

// NewBuilder returns a Builder for trees of the given kind and hyperparameters.
func NewBuilder(kind tree.Kind, params tree.Params) *Builder {
	return &Builder{Params: params, Kind: kind}
}

/*
GrowClassifier takes a context, a classification dataset and the class
labels known to the model and grows a decision tree whose nodes hold the
probability of each of those classes, in the same order. When classLabels
is empty the labels in the dataset are used.
*/
func (b *Builder) GrowClassifier(ctx context.Context, data *dataset.ClassificationData, classLabels []uint) (*Result, error) {
	if !b.Kind.Classifier() {
		return nil, fmt.Errorf("growing a decision tree with %v nodes: %w", b.Kind, ErrUnsupportedKind)
	}
	if len(classLabels) == 0 {
		classLabels = data.ClassLabels()
	}
	s := newClassificationSet(data, classLabels)
	for _, l := range data.ClassLabels() {
		if _, ok := s.classIndex[l]; !ok {
			return nil, fmt.Errorf("growing a decision tree: class label %d is not among the model class labels %v", l, classLabels)
		}
	}
	return b.grow(ctx, s)
}

// GrowClusterTree takes a context and an unlabeled dataset and grows a
// cluster tree, assigning consecutive cluster labels from 1 to its leaves.
func (b *Builder) GrowClusterTree(ctx context.Context, data *dataset.UnlabeledData) (*Result, error) {
	if b.Kind != tree.ClusterTreeNode {
		return nil, fmt.Errorf("growing a cluster tree with %v nodes: %w", b.Kind, ErrUnsupportedKind)
	}
	return b.grow(ctx, &unlabeledSet{data})
}

// GrowRegressionTree takes a context and a regression dataset and grows a
// regression tree whose nodes hold the mean target vector of their samples.
func (b *Builder) GrowRegressionTree(ctx context.Context, data *dataset.RegressionData) (*Result, error) {
	if b.Kind != tree.RegressionTreeNode {
		return nil, fmt.Errorf("growing a regression tree with %v nodes: %w", b.Kind, ErrUnsupportedKind)
	}
	return b.grow(ctx, &regressionSet{data})
}

type grower struct {
	*Builder
	rnd         *rand.Rand
	pruner      Pruner
	logger      *zap.Logger
	nextID      uint
	numClusters uint
	means       map[uint][]float64
}

func (b *Builder) grow(ctx context.Context, s trainingSet) (*Result, error) {
	if err := b.Params.Validate(); err != nil {
		return nil, err
	}
	if s.NumSamples() == 0 {
		return nil, ErrNoTrainingData
	}
	if s.NumDimensions() == 0 {
		return nil, ErrNoAdmissibleFeatures
	}
	g := &grower{Builder: b, rnd: b.Rand, pruner: b.Pruner, logger: b.Logger, means: make(map[uint][]float64)}
	if g.rnd == nil {
		g.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if g.logger == nil {
		g.logger = zap.NewNop()
	}
	if g.pruner == nil {
		g.pruner = NoPruner()
		if b.Kind == tree.ClusterTreeNode || b.Kind == tree.RegressionTreeNode {
			g.pruner = MinErrorPruner(b.Params.MinRMSErrorPerNode)
		}
	}
	features := make([]uint, s.NumDimensions())
	for i := range features {
		features[i] = uint(i)
	}
	root, err := g.build(ctx, s, features, 0)
	if err != nil {
		return nil, err
	}
	t := tree.New(b.Kind, b.Params)
	t.Root = root
	g.logger.Info("tree grown",
		zap.Stringer("kind", b.Kind),
		zap.Int("samples", s.NumSamples()),
		zap.Int("nodes", root.NumNodes()),
		zap.Uint("clusters", g.numClusters))
	return &Result{Tree: t, NodeMeans: g.means, NumClusters: g.numClusters}, nil
}

/*
build grows the subtree for the given set of samples with the given
admissible features at the given depth. The node it creates takes the next
ID, so IDs are assigned in preorder. A set without samples yields a leaf
with no payload.
*/
func (g *grower) build(ctx context.Context, s trainingSet, features []uint, depth uint) (*tree.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n := tree.NewNode(g.Kind, g.nextID, depth)
	g.nextID++
	s.fill(n)
	g.means[n.ID] = s.Mean()
	if reason := g.leafReason(s, features, depth); reason != "" {
		return g.leaf(n, reason), nil
	}
	split, err := g.search(s, features)
	if err == errNoCandidate {
		return g.leaf(n, reasonNoSplit), nil
	}
	if err != nil {
		return nil, fmt.Errorf("searching split for node %d: %w", n.ID, err)
	}
	prune, err := g.pruner.Prune(ctx, split)
	if err != nil {
		return nil, fmt.Errorf("pruning node %d: %w", n.ID, err)
	}
	if prune {
		return g.leaf(n, reasonPrunedByError), nil
	}
	n.FeatureIndex, n.Threshold = split.Feature, split.Threshold
	childFeatures := features
	if g.Params.RemoveFeatureAfterSplit {
		childFeatures = without(features, split.Feature)
	}
	left, right, err := s.partition(n.Criterion())
	if err != nil {
		return nil, fmt.Errorf("partitioning node %d: %w", n.ID, err)
	}
	if depth > 0 {
		s.Clear()
	}
	g.logger.Debug("node split",
		zap.Uint("id", n.ID),
		zap.Uint("depth", depth),
		zap.Uint("size", n.Size),
		zap.Uint("feature", split.Feature),
		zap.Float64("threshold", split.Threshold),
		zap.Float64("error", split.Error),
		zap.Int("left", left.NumSamples()),
		zap.Int("right", right.NumSamples()))
	if n.Left, err = g.build(ctx, left, childFeatures, depth+1); err != nil {
		return nil, err
	}
	if n.Right, err = g.build(ctx, right, childFeatures, depth+1); err != nil {
		return nil, err
	}
	return n, nil
}

func (g *grower) leaf(n *tree.Node, reason string) *tree.Node {
	n.Leaf = true
	if n.Kind == tree.ClusterTreeNode && n.Size > 0 {
		g.numClusters++
		n.ClusterLabel = g.numClusters
	}
	g.logger.Debug("leaf node",
		zap.Uint("id", n.ID),
		zap.Uint("depth", n.Depth),
		zap.Uint("size", n.Size),
		zap.String("reason", reason))
	return n
}

func (g *grower) workers() int {
	if g.Workers > 0 {
		return g.Workers
	}
	return runtime.GOMAXPROCS(0)
}

func without(features []uint, f uint) []uint {
	result := make([]uint, 0, len(features))
	for _, sf := range features {
		if sf != f {
			result = append(result, sf)
		}
	}
	return result
}
