package arbor

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbanos/arbor/dataset"
	"github.com/pbanos/arbor/tree"
)

func classificationData(t *testing.T, dims int, samples map[uint][][]float64) *dataset.ClassificationData {
	cd := dataset.NewClassificationData(dims)
	for _, label := range []uint{1, 2, 3, 4} {
		for _, s := range samples[label] {
			require.NoError(t, cd.AddSample(label, s))
		}
	}
	return cd
}

func separable1D(t *testing.T) *dataset.ClassificationData {
	return classificationData(t, 1, map[uint][][]float64{
		1: {{0.1}, {0.2}},
		2: {{0.9}, {0.8}},
	})
}

func testBuilder(kind tree.Kind) *Builder {
	params := tree.DefaultParams()
	params.MaxDepth = 2
	params.MinSamplesPerNode = 1
	b := NewBuilder(kind, params)
	b.Rand = rand.New(rand.NewSource(42))
	return b
}

func TestGrowClassifierSeparable(t *testing.T) {
	for _, kind := range []tree.Kind{tree.DecisionTreeThresholdNode, tree.DecisionTreeClusterNode} {
		t.Run(kind.String(), func(t *testing.T) {
			r, err := testBuilder(kind).GrowClassifier(context.Background(), separable1D(t), nil)
			require.NoError(t, err)
			root := r.Tree.Root
			require.False(t, root.Leaf)
			assert.Equal(t, uint(0), root.FeatureIndex)
			assert.InDelta(t, 0.5, root.Threshold, 0.01)
			assert.Equal(t, []float64{0.5, 0.5}, root.ClassProbabilities)

			require.True(t, root.Left.Leaf)
			require.True(t, root.Right.Leaf)
			assert.Equal(t, []float64{1, 0}, root.Left.ClassProbabilities)
			assert.Equal(t, []float64{0, 1}, root.Right.ClassProbabilities)
			assert.Equal(t, []uint{0, 1, 2}, []uint{root.ID, root.Left.ID, root.Right.ID})
			assert.Equal(t, 3, r.Tree.NumNodes())
		})
	}
}

func TestGrowClassifierMinSamplesMakesRootLeaf(t *testing.T) {
	b := testBuilder(tree.DecisionTreeThresholdNode)
	b.Params.MinSamplesPerNode = 5
	r, err := b.GrowClassifier(context.Background(), separable1D(t), nil)
	require.NoError(t, err)
	assert.True(t, r.Tree.Root.Leaf)
	assert.Equal(t, uint(4), r.Tree.Root.Size)
	assert.Equal(t, []float64{0.5, 0.5}, r.Tree.Root.ClassProbabilities)
}

func TestGrowClassifierMaxDepthZero(t *testing.T) {
	b := testBuilder(tree.DecisionTreeThresholdNode)
	b.Params.MaxDepth = 0
	r, err := b.GrowClassifier(context.Background(), separable1D(t), nil)
	require.NoError(t, err)
	assert.True(t, r.Tree.Root.Leaf)
}

func TestRemoveFeatureAfterSplit(t *testing.T) {
	cd := classificationData(t, 2, map[uint][][]float64{
		1: {{0.1, 0.15}, {0.2, 0.5}, {0.15, 0.85}},
		2: {{0.8, 0.1}, {0.9, 0.2}, {0.85, 0.3}},
		3: {{0.85, 0.7}, {0.9, 0.9}, {0.95, 0.95}},
	})
	b := testBuilder(tree.DecisionTreeThresholdNode)
	b.Params.MaxDepth = 5
	b.Params.RemoveFeatureAfterSplit = true
	r, err := b.GrowClassifier(context.Background(), cd, nil)
	require.NoError(t, err)
	root := r.Tree.Root
	require.False(t, root.Leaf)
	require.Equal(t, uint(0), root.FeatureIndex)
	var internal int
	for _, child := range []*tree.Node{root.Left, root.Right} {
		require.NoError(t, child.Walk(func(n *tree.Node) error {
			if !n.Leaf {
				internal++
				assert.NotEqual(t, uint(0), n.FeatureIndex, "node %d reuses feature 0", n.ID)
			}
			return nil
		}))
	}
	assert.Equal(t, 1, internal)
	assert.Equal(t, []float64{1, 0, 0}, root.Left.ClassProbabilities)
}

func randomClassificationData(t *testing.T, n int, seed int64) *dataset.ClassificationData {
	rnd := rand.New(rand.NewSource(seed))
	cd := dataset.NewClassificationData(3)
	for i := 0; i < n; i++ {
		s := []float64{rnd.Float64(), rnd.Float64(), rnd.NormFloat64()}
		label := uint(1)
		if s[0]+s[1] > 1 {
			label = 2
		}
		if s[2] > 1 {
			label = 3
		}
		require.NoError(t, cd.AddSample(label, s))
	}
	return cd
}

func TestTreeInvariants(t *testing.T) {
	cd := randomClassificationData(t, 300, 7)
	for _, kind := range []tree.Kind{tree.DecisionTreeThresholdNode, tree.DecisionTreeClusterNode} {
		for _, search := range []tree.SplitSearch{tree.IterativeScan, tree.RandomScan} {
			t.Run(kind.String()+"/"+search.String(), func(t *testing.T) {
				b := NewBuilder(kind, tree.DefaultParams())
				b.Params.MaxDepth = 6
				b.Params.NumSplittingSteps = 20
				b.Params.SplitSearch = search
				b.Rand = rand.New(rand.NewSource(1))
				b.Workers = 3
				r, err := b.GrowClassifier(context.Background(), cd, nil)
				require.NoError(t, err)
				checkInvariants(t, r.Tree, b.Params.MaxDepth)

				counts := make(map[uint]uint)
				for i := 0; i < cd.NumSamples(); i++ {
					leaf, err := r.Tree.Root.Find(cd.Input(i))
					require.NoError(t, err)
					counts[leaf.ID]++
				}
				for _, leaf := range r.Tree.Root.Leaves() {
					assert.Equal(t, leaf.Size, counts[leaf.ID], "leaf %d", leaf.ID)
					if leaf.Size > 0 {
						var sum float64
						for _, p := range leaf.ClassProbabilities {
							sum += p
						}
						assert.InDelta(t, 1.0, sum, 1e-6)
					}
				}
				assert.Len(t, r.NodeMeans, r.Tree.NumNodes())
			})
		}
	}
}

func checkInvariants(t *testing.T, tr *tree.Tree, maxDepth uint) {
	var ids []uint
	require.NoError(t, tr.Root.Walk(func(n *tree.Node) error {
		ids = append(ids, n.ID)
		assert.LessOrEqual(t, n.Depth, maxDepth)
		if n.Leaf {
			assert.Nil(t, n.Left)
			assert.Nil(t, n.Right)
			return nil
		}
		require.NotNil(t, n.Left)
		require.NotNil(t, n.Right)
		assert.Equal(t, n.Depth+1, n.Left.Depth)
		assert.Equal(t, n.Depth+1, n.Right.Depth)
		assert.Equal(t, n.Size, n.Left.Size+n.Right.Size)
		return nil
	}))
	for i, id := range ids {
		assert.Equal(t, uint(i), id)
	}
}

func TestRandomScanIsReproducible(t *testing.T) {
	cd := randomClassificationData(t, 100, 3)
	grow := func() *tree.Tree {
		b := NewBuilder(tree.DecisionTreeThresholdNode, tree.DefaultParams())
		b.Params.SplitSearch = tree.RandomScan
		b.Rand = rand.New(rand.NewSource(99))
		r, err := b.GrowClassifier(context.Background(), cd, nil)
		require.NoError(t, err)
		return r.Tree
	}
	assert.Equal(t, grow(), grow())
}

func TestClusterSearchWithoutCandidatesMakesLeaf(t *testing.T) {
	cd := classificationData(t, 1, map[uint][][]float64{
		1: {{1}},
		2: {{1}},
	})
	r, err := testBuilder(tree.DecisionTreeClusterNode).GrowClassifier(context.Background(), cd, nil)
	require.NoError(t, err)
	assert.True(t, r.Tree.Root.Leaf)
	assert.Equal(t, []float64{0.5, 0.5}, r.Tree.Root.ClassProbabilities)
}

func TestZeroSampleChildBecomesEmptyLeaf(t *testing.T) {
	cd := classificationData(t, 1, map[uint][][]float64{
		1: {{1}},
		2: {{1}},
	})
	r, err := testBuilder(tree.DecisionTreeThresholdNode).GrowClassifier(context.Background(), cd, nil)
	require.NoError(t, err)
	root := r.Tree.Root
	require.False(t, root.Leaf)
	assert.True(t, root.Left.Leaf)
	assert.Equal(t, uint(0), root.Left.Size)
	assert.Equal(t, []float64{0, 0}, root.Left.ClassProbabilities)
	checkInvariants(t, r.Tree, 2)
}

func TestGrowClusterTree(t *testing.T) {
	rnd := rand.New(rand.NewSource(5))
	ud := dataset.NewUnlabeledData(2)
	for i := 0; i < 40; i++ {
		center := 0.0
		if i%2 == 0 {
			center = 10
		}
		require.NoError(t, ud.AddSample([]float64{center + rnd.Float64(), center + rnd.Float64()}))
	}
	b := NewBuilder(tree.ClusterTreeNode, tree.DefaultParams())
	b.Params.MaxDepth = 3
	b.Params.MinSamplesPerNode = 2
	r, err := b.GrowClusterTree(context.Background(), ud)
	require.NoError(t, err)
	checkInvariants(t, r.Tree, 3)

	var labels []uint
	for _, leaf := range r.Tree.Root.Leaves() {
		if leaf.Size > 0 {
			labels = append(labels, leaf.ClusterLabel)
		} else {
			assert.Equal(t, uint(0), leaf.ClusterLabel)
		}
	}
	require.NotEmpty(t, labels)
	for i, l := range labels {
		assert.Equal(t, uint(i+1), l)
	}
	assert.Equal(t, uint(len(labels)), r.NumClusters)

	root := r.Tree.Root
	require.False(t, root.Leaf)
	assert.True(t, root.Threshold > 1 && root.Threshold < 10)
}

func TestClusterTreeMinErrorStopsSplitting(t *testing.T) {
	ud := dataset.NewUnlabeledData(1)
	for _, v := range []float64{0, 0.1, 0.2, 0.3} {
		require.NoError(t, ud.AddSample([]float64{v}))
	}
	b := testBuilder(tree.ClusterTreeNode)
	b.Params.MinRMSErrorPerNode = 10
	r, err := b.GrowClusterTree(context.Background(), ud)
	require.NoError(t, err)
	assert.True(t, r.Tree.Root.Leaf)
	assert.Equal(t, uint(1), r.Tree.Root.ClusterLabel)
}

func TestGrowRegressionTree(t *testing.T) {
	for _, search := range []tree.SplitSearch{tree.IterativeScan, tree.RandomScan} {
		t.Run(search.String(), func(t *testing.T) {
			rd := dataset.NewRegressionData(1, 2)
			for i := 0; i < 20; i++ {
				x := float64(i) / 20
				y := []float64{1, -1}
				if x >= 0.5 {
					y = []float64{3, -3}
				}
				require.NoError(t, rd.AddSample([]float64{x}, y))
			}
			b := NewBuilder(tree.RegressionTreeNode, tree.DefaultParams())
			b.Params.MinSamplesPerNode = 2
			b.Params.SplitSearch = search
			b.Pruner = NoPruner()
			b.Rand = rand.New(rand.NewSource(11))
			r, err := b.GrowRegressionTree(context.Background(), rd)
			require.NoError(t, err)
			checkInvariants(t, r.Tree, b.Params.MaxDepth)

			p, err := r.Tree.Predict([]float64{0.1})
			require.NoError(t, err)
			assert.InDeltaSlice(t, []float64{1, -1}, p.RegressionData, 1e-12)
			p, err = r.Tree.Predict([]float64{0.9})
			require.NoError(t, err)
			assert.InDeltaSlice(t, []float64{3, -3}, p.RegressionData, 1e-12)
			assert.InDeltaSlice(t, []float64{2, -2}, r.Tree.Root.RegressionData, 1e-12)
		})
	}
}

func TestGrowErrors(t *testing.T) {
	ctx := context.Background()
	_, err := testBuilder(tree.RegressionTreeNode).GrowClassifier(ctx, separable1D(t), nil)
	assert.True(t, errors.Is(err, ErrUnsupportedKind))
	_, err = testBuilder(tree.DecisionTreeThresholdNode).GrowClusterTree(ctx, dataset.NewUnlabeledData(1))
	assert.True(t, errors.Is(err, ErrUnsupportedKind))
	_, err = testBuilder(tree.ClusterTreeNode).GrowRegressionTree(ctx, dataset.NewRegressionData(1, 1))
	assert.True(t, errors.Is(err, ErrUnsupportedKind))

	_, err = testBuilder(tree.DecisionTreeThresholdNode).GrowClassifier(ctx, dataset.NewClassificationData(1), nil)
	assert.Equal(t, ErrNoTrainingData, err)

	_, err = testBuilder(tree.DecisionTreeThresholdNode).GrowClassifier(ctx, separable1D(t), []uint{1})
	assert.Error(t, err)

	b := testBuilder(tree.DecisionTreeThresholdNode)
	b.Params.NumSplittingSteps = 0
	_, err = b.GrowClassifier(ctx, separable1D(t), nil)
	assert.Error(t, err)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = testBuilder(tree.DecisionTreeThresholdNode).GrowClassifier(cancelled, separable1D(t), nil)
	assert.Equal(t, context.Canceled, err)
}

func TestGrowClassifierKeepsModelClassOrder(t *testing.T) {
	r, err := testBuilder(tree.DecisionTreeThresholdNode).GrowClassifier(context.Background(), separable1D(t), []uint{2, 1, 5})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 0}, r.Tree.Root.Left.ClassProbabilities)
	assert.Equal(t, []float64{1, 0, 0}, r.Tree.Root.Right.ClassProbabilities)
}

func TestImpurity(t *testing.T) {
	assert.Equal(t, 0.0, giniError([]float64{2, 0}, []float64{0, 2}))
	assert.InDelta(t, 0.5, giniError([]float64{1, 1}, []float64{0, 0}), 1e-12)
	assert.InDelta(t, 0.5, giniError([]float64{0, 0}, []float64{2, 2}), 1e-12)
	assert.Equal(t, 0.0, giniError([]float64{0, 0}, []float64{0, 0}))

	ud := dataset.NewUnlabeledData(1)
	for _, v := range []float64{0, 2, 10, 14} {
		require.NoError(t, ud.AddSample([]float64{v}))
	}
	assert.InDelta(t, math.Sqrt(1+4), featureMSEError(ud, 0, 5), 1e-12)
	assert.InDelta(t, math.Sqrt(32.75), featureMSEError(ud, 0, -1), 1e-12)
	assert.InDelta(t, math.Sqrt(32.75), featureMSEError(ud, 0, 100), 1e-12)
}

func TestKMeansThreshold(t *testing.T) {
	th, err := kMeansThreshold([]float64{0, 0.1, 0.9, 1})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, th, 1e-12)

	th, err = kMeansThreshold([]float64{1, 2, 3, 10, 11, 12})
	require.NoError(t, err)
	assert.InDelta(t, 6.5, th, 1e-12)

	_, err = kMeansThreshold([]float64{3, 3, 3})
	assert.Equal(t, errDegenerateFeature, err)
	_, err = kMeansThreshold(nil)
	assert.Equal(t, errDegenerateFeature, err)
}

func TestPruners(t *testing.T) {
	ctx := context.Background()
	prune, err := MinErrorPruner(0.1).Prune(ctx, Split{Error: 0.1})
	require.NoError(t, err)
	assert.True(t, prune)
	prune, err = MinErrorPruner(0.1).Prune(ctx, Split{Error: 0.2})
	require.NoError(t, err)
	assert.False(t, prune)
	prune, err = NoPruner().Prune(ctx, Split{})
	require.NoError(t, err)
	assert.False(t, prune)
}
