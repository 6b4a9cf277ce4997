package tree

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func leaf(kind Kind, id, depth, size uint) *Node {
	n := NewNode(kind, id, depth)
	n.Leaf = true
	n.Size = size
	return n
}

func sampleDecisionTree() *Tree {
	root := NewNode(DecisionTreeThresholdNode, 0, 0)
	root.Size = 4
	root.FeatureIndex = 0
	root.Threshold = 0.5
	root.ClassProbabilities = []float64{0.5, 0.5}
	root.Left = leaf(DecisionTreeThresholdNode, 1, 1, 2)
	root.Left.ClassProbabilities = []float64{1, 0}
	root.Right = leaf(DecisionTreeThresholdNode, 2, 1, 2)
	root.Right.ClassProbabilities = []float64{0, 1}
	params := DefaultParams()
	params.MaxDepth = 2
	t := New(DecisionTreeThresholdNode, params)
	t.Root = root
	return t
}

func TestPredictWalksToLeaf(t *testing.T) {
	tr := sampleDecisionTree()

	p, err := tr.Predict([]float64{0.1})
	require.NoError(t, err)
	assert.Equal(t, uint(1), p.NodeID)
	assert.Equal(t, []float64{1, 0}, p.ClassProbabilities)

	p, err = tr.Predict([]float64{0.5})
	require.NoError(t, err)
	assert.Equal(t, uint(2), p.NodeID)
	idx, prob, err := p.PredictedClass()
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	assert.Equal(t, 1.0, prob)

	p.ClassProbabilities[1] = 0
	assert.Equal(t, []float64{0, 1}, tr.Root.Right.ClassProbabilities)

	_, err = tr.Predict([]float64{})
	assert.Error(t, err)

	_, err = New(ClusterTreeNode, DefaultParams()).Predict([]float64{1})
	assert.Equal(t, ErrCannotPredictFromSample, err)
}

func TestPredictMissingChild(t *testing.T) {
	tr := sampleDecisionTree()
	tr.Root.Right = nil
	_, err := tr.Predict([]float64{0.9})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingChild))
	_, err = tr.Predict([]float64{0.1})
	assert.NoError(t, err)
}

func TestEmptyLeafPrediction(t *testing.T) {
	p := newPrediction(leaf(DecisionTreeThresholdNode, 3, 1, 0))
	_, _, err := p.PredictedClass()
	assert.Equal(t, ErrCannotPredictFromEmptySet, err)
}

func TestCopyIsDeep(t *testing.T) {
	tr := sampleDecisionTree()
	c := tr.Copy()
	assert.Equal(t, tr, c)
	c.Root.Left.ClassProbabilities[0] = 0.3
	c.Root.Threshold = 7
	assert.Equal(t, 1.0, tr.Root.Left.ClassProbabilities[0])
	assert.Equal(t, 0.5, tr.Root.Threshold)
}

func TestClearKeepsConfiguration(t *testing.T) {
	tr := sampleDecisionTree()
	root := tr.Root
	tr.Clear()
	assert.False(t, tr.Built())
	assert.Equal(t, DecisionTreeThresholdNode, tr.Kind)
	assert.Equal(t, uint(2), tr.MaxDepth)
	assert.Nil(t, root.Left)
	assert.Equal(t, 0, tr.NumNodes())
}

func TestTraverse(t *testing.T) {
	tr := sampleDecisionTree()
	var topDown, bottomUp []uint
	require.NoError(t, tr.Traverse(context.Background(), false, func(_ context.Context, n *Node) error {
		topDown = append(topDown, n.ID)
		return nil
	}))
	require.NoError(t, tr.Traverse(context.Background(), true, func(_ context.Context, n *Node) error {
		bottomUp = append(bottomUp, n.ID)
		return nil
	}))
	assert.Equal(t, []uint{0, 1, 2}, topDown)
	assert.Equal(t, []uint{1, 2, 0}, bottomUp)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Equal(t, context.Canceled, tr.Traverse(ctx, false, func(context.Context, *Node) error { return nil }))
	assert.Len(t, tr.Leaves(), 2)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	for name, tr := range map[string]*Tree{
		"decision": sampleDecisionTree(),
		"cluster":  clusterTree(),
		"regression": func() *Tree {
			root := NewNode(RegressionTreeNode, 0, 0)
			root.Leaf = true
			root.Size = 3
			root.RegressionData = []float64{0.1, 1e-17, -3}
			return &Tree{Params: DefaultParams(), Kind: RegressionTreeNode, Root: root}
		}(),
		"unbuilt": New(DecisionTreeClusterNode, DefaultParams()),
	} {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, tr.Save(&buf))
			loaded, err := Load(&buf)
			require.NoError(t, err)
			assert.Equal(t, tr, loaded)
		})
	}
}

func clusterTree() *Tree {
	root := NewNode(ClusterTreeNode, 0, 0)
	root.Size = 3
	root.FeatureIndex = 1
	root.Threshold = 1.0 / 3.0
	root.Left = leaf(ClusterTreeNode, 1, 1, 1)
	root.Left.ClusterLabel = 1
	root.Right = leaf(ClusterTreeNode, 2, 1, 2)
	root.Right.ClusterLabel = 2
	params := DefaultParams()
	params.SplitSearch = RandomScan
	params.RemoveFeatureAfterSplit = true
	return &Tree{Params: params, Kind: ClusterTreeNode, Root: root}
}

func TestNodeSaveFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, clusterTree().Root.Left.Save(&buf))
	assert.Equal(t, strings.Join([]string{
		"NodeType: ClusterTreeNode",
		"Depth: 1",
		"NodeID: 1",
		"IsLeafNode: 1",
		"HasLeftChild: 0",
		"HasRightChild: 0",
		"NodeSize: 1",
		"FeatureIndex: 0",
		"Threshold: 0",
		"ClusterLabel: 1",
		"",
	}, "\n"), buf.String())
}

func TestLoadRejectsMalformedData(t *testing.T) {
	valid := func() string {
		var buf bytes.Buffer
		clusterTree().Root.Save(&buf)
		return buf.String()
	}()
	for name, data := range map[string]string{
		"truncated":    valid[:len(valid)/2],
		"unknown type": strings.Replace(valid, "NodeType: ClusterTreeNode", "NodeType: Mystery", 1),
		"bad depth":    strings.Replace(valid, "Depth: 1", "Depth: 3", 1),
		"single child": strings.Replace(valid, "HasRightChild: 1", "HasRightChild: 0", 1),
		"leaf flag":    strings.Replace(valid, "IsLeafNode: 0", "IsLeafNode: 1", 1),
		"bad number":   strings.Replace(valid, "NodeSize: 3", "NodeSize: three", 1),
		"wrong field":  strings.Replace(valid, "NodeID:", "NodeId:", 1),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := LoadNode(strings.NewReader(data))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedData), err.Error())
		})
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range []Kind{DecisionTreeThresholdNode, DecisionTreeClusterNode, ClusterTreeNode, RegressionTreeNode} {
		parsed, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
		assert.True(t, parsed.Valid())
	}
	_, err := ParseKind("DecisionTreeNode")
	assert.Error(t, err)
	assert.False(t, Kind(0).Valid())
}

func TestString(t *testing.T) {
	s := sampleDecisionTree().Describe([]string{"width"})
	assert.Contains(t, s, "{ width >= 0.5 }")
	assert.Contains(t, s, "|__[1]")
	assert.Contains(t, s, "|__[2]")
	assert.Equal(t, "[empty tree]\n", New(ClusterTreeNode, DefaultParams()).String())
}

func TestLoadRejectsOversizedCounts(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sampleDecisionTree().Save(&buf))
	valid := buf.String()
	for name, data := range map[string]string{
		"wrapping count": strings.Replace(valid, "NumClasses: 2", "NumClasses: 18446744073709551615", 1),
		"huge count":     strings.Replace(valid, "NumClasses: 2", "NumClasses: 4294967296", 1),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Load(strings.NewReader(data))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedData), err.Error())
		})
	}

	d := NewDecoder(strings.NewReader("Size: 1048577\nValues: 1 2\n"))
	_, err := d.Count("Size")
	assert.True(t, errors.Is(err, ErrMalformedData))
	_, err = d.Floats("Values", -1)
	assert.True(t, errors.Is(err, ErrMalformedData))
}

func TestLoadRejectsMixedNodeTypes(t *testing.T) {
	tr := sampleDecisionTree()
	tr.Root.Right.Kind = DecisionTreeClusterNode
	var buf bytes.Buffer
	require.NoError(t, tr.Save(&buf))
	_, err := Load(&buf)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedData), err.Error())
}
