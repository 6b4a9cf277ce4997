package json

import (
	"encoding/json"

	"github.com/pbanos/arbor/tree"
)

type node struct {
	ID                 uint      `json:"id"`
	Depth              uint      `json:"depth"`
	Leaf               bool      `json:"leaf,omitempty"`
	LeftID             *uint     `json:"l,omitempty"`
	RightID            *uint     `json:"r,omitempty"`
	Size               uint      `json:"size"`
	FeatureIndex       uint      `json:"f"`
	Feature            string    `json:"fName,omitempty"`
	Threshold          float64   `json:"t"`
	ClassProbabilities []float64 `json:"probs,omitempty"`
	ClusterLabel       uint      `json:"cluster,omitempty"`
	RegressionData     []float64 `json:"reg,omitempty"`
}

/*
EncodeNode takes a node and the names of the input features and returns
the node serialized as a JSON object, with its children referenced by ID.
The name of the split feature is included when known.
*/
func EncodeNode(n *tree.Node, featureNames []string) ([]byte, error) {
	jn := &node{
		ID:                 n.ID,
		Depth:              n.Depth,
		Leaf:               n.Leaf,
		Size:               n.Size,
		FeatureIndex:       n.FeatureIndex,
		Threshold:          n.Threshold,
		ClassProbabilities: n.ClassProbabilities,
		ClusterLabel:       n.ClusterLabel,
		RegressionData:     n.RegressionData,
	}
	if n.Left != nil {
		jn.LeftID = &n.Left.ID
	}
	if n.Right != nil {
		jn.RightID = &n.Right.ID
	}
	if !n.Leaf && int(n.FeatureIndex) < len(featureNames) {
		jn.Feature = featureNames[n.FeatureIndex]
	}
	return json.Marshal(jn)
}

func decodeNode(data []byte, kind tree.Kind) (*node, *tree.Node, error) {
	jn := &node{}
	if err := json.Unmarshal(data, jn); err != nil {
		return nil, nil, err
	}
	n := tree.NewNode(kind, jn.ID, jn.Depth)
	n.Leaf = jn.Leaf
	n.Size = jn.Size
	n.FeatureIndex = jn.FeatureIndex
	n.Threshold = jn.Threshold
	n.ClassProbabilities = jn.ClassProbabilities
	n.ClusterLabel = jn.ClusterLabel
	n.RegressionData = jn.RegressionData
	if kind.Classifier() && n.ClassProbabilities == nil {
		n.ClassProbabilities = []float64{}
	}
	if kind == tree.RegressionTreeNode && n.RegressionData == nil {
		n.RegressionData = []float64{}
	}
	return jn, n, nil
}
