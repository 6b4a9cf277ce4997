package json

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbanos/arbor/tree"
)

func sampleTree() *tree.Tree {
	t := tree.New(tree.DecisionTreeThresholdNode, tree.DefaultParams())
	root := tree.NewNode(tree.DecisionTreeThresholdNode, 0, 0)
	root.Size = 4
	root.FeatureIndex = 1
	root.Threshold = 0.5
	root.ClassProbabilities = []float64{0.5, 0.5}
	root.Left = tree.NewNode(tree.DecisionTreeThresholdNode, 1, 1)
	root.Left.Leaf = true
	root.Left.Size = 2
	root.Left.ClassProbabilities = []float64{1, 0}
	root.Right = tree.NewNode(tree.DecisionTreeThresholdNode, 2, 1)
	root.Right.Leaf = true
	root.Right.Size = 2
	root.Right.ClassProbabilities = []float64{0, 1}
	t.Root = root
	return t
}

func TestWriteReadJSONTree(t *testing.T) {
	ctx := context.Background()
	st := sampleTree()
	var buf bytes.Buffer
	require.NoError(t, WriteJSONTree(ctx, st, []string{"x", "y"}, &buf))

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "DecisionTreeThresholdNode", doc["kind"])
	nodes := doc["nodes"].([]interface{})
	require.Len(t, nodes, 3)
	assert.Equal(t, "y", nodes[0].(map[string]interface{})["fName"])

	rt, err := ReadJSONTree(ctx, &buf)
	require.NoError(t, err)
	assert.Equal(t, st, rt)
}

func TestWriteReadUnbuiltJSONTree(t *testing.T) {
	ctx := context.Background()
	st := tree.New(tree.RegressionTreeNode, tree.DefaultParams())
	var buf bytes.Buffer
	require.NoError(t, WriteJSONTree(ctx, st, nil, &buf))
	rt, err := ReadJSONTree(ctx, &buf)
	require.NoError(t, err)
	assert.Equal(t, st, rt)
}

func TestReadJSONTreeErrors(t *testing.T) {
	params := `"params":{"MinSamplesPerNode":5,"MaxDepth":10,"NumSplittingSteps":100,"RemoveFeatureAfterSplit":false,"SplitSearch":0,"MinRMSErrorPerNode":0.01}`
	testCases := []struct {
		name string
		doc  string
	}{
		{"unknown kind", `{"kind":"Oak",` + params + `,"nodes":[]}`},
		{"missing root", `{"kind":"ClusterTreeNode",` + params + `,"rootID":3,"nodes":[{"id":0,"depth":0,"leaf":true}]}`},
		{"missing child", `{"kind":"ClusterTreeNode",` + params + `,"rootID":0,"nodes":[{"id":0,"depth":0,"l":1,"r":2},{"id":1,"depth":1,"leaf":true}]}`},
		{"single child", `{"kind":"ClusterTreeNode",` + params + `,"rootID":0,"nodes":[{"id":0,"depth":0,"l":1},{"id":1,"depth":1,"leaf":true}]}`},
		{"wrong depth", `{"kind":"ClusterTreeNode",` + params + `,"rootID":0,"nodes":[{"id":0,"depth":0,"l":1,"r":2},{"id":1,"depth":1,"leaf":true},{"id":2,"depth":2,"leaf":true}]}`},
		{"unreachable", `{"kind":"ClusterTreeNode",` + params + `,"rootID":0,"nodes":[{"id":0,"depth":0,"leaf":true},{"id":1,"depth":1,"leaf":true}]}`},
		{"invalid params", `{"kind":"ClusterTreeNode","params":{"NumSplittingSteps":0},"nodes":[]}`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadJSONTree(context.Background(), strings.NewReader(tc.doc))
			assert.Error(t, err)
		})
	}
}
