package tree

import "fmt"

// Kind identifies the split rule and payload variant of a node. The set
// of kinds is closed; its String form is the tag written to model files.
type Kind int

const (
	// DecisionTreeThresholdNode nodes classify samples and are split by
	// scanning thresholds minimizing the Gini index.
	DecisionTreeThresholdNode Kind = iota + 1
	// DecisionTreeClusterNode nodes classify samples and are split at the
	// midpoint of a 2-means clustering of a randomly sampled feature.
	DecisionTreeClusterNode
	// ClusterTreeNode nodes assign cluster labels to unlabelled samples.
	ClusterTreeNode
	// RegressionTreeNode nodes predict target vectors.
	RegressionTreeNode
)

var kindTags = map[Kind]string{
	DecisionTreeThresholdNode: "DecisionTreeThresholdNode",
	DecisionTreeClusterNode:   "DecisionTreeClusterNode",
	ClusterTreeNode:           "ClusterTreeNode",
	RegressionTreeNode:        "RegressionTreeNode",
}

// ParseKind returns the kind for the given tag or an error if the tag is unknown.
func ParseKind(tag string) (Kind, error) {
	for k, t := range kindTags {
		if t == tag {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown node type %q", tag)
}

// Valid returns whether the kind is one of the known node kinds.
func (k Kind) Valid() bool {
	_, ok := kindTags[k]
	return ok
}

// Classifier returns whether nodes of the kind carry class probabilities.
func (k Kind) Classifier() bool {
	return k == DecisionTreeThresholdNode || k == DecisionTreeClusterNode
}

func (k Kind) String() string {
	if t, ok := kindTags[k]; ok {
		return t
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}
