package tree

import (
	"github.com/pbanos/arbor/feature"
)

/*
Node is a node of a binary tree. A node is either a leaf, with no children
and a payload to predict, or an internal node with both children and a
split rule routing samples to one of them. Children are owned by their
parent: copying or clearing a node copies or clears its whole subtree.
*/
type Node struct {
	// The variant of split rule and payload of the node
	Kind Kind
	// An ID to identify the node, unique within the tree and assigned
	// in preorder when growing it
	ID uint
	// Depth of the node, 0 for the root
	Depth uint
	Leaf  bool
	// Left receives the samples that do not satisfy the split rule,
	// Right the ones that do
	Left, Right *Node
	// The number of training samples that reached the node
	Size uint
	// The split rule for internal nodes
	FeatureIndex uint
	Threshold    float64
	// Payload for classifier kinds: the probability of each class known
	// to the model, in the model's class label order
	ClassProbabilities []float64
	// Payload for ClusterTreeNode leaves, 0 means no assignment
	ClusterLabel uint
	// Payload for RegressionTreeNode nodes: the mean target vector
	RegressionData []float64
}

// NewNode returns an unset node of the given kind.
func NewNode(kind Kind, id, depth uint) *Node {
	return &Node{Kind: kind, ID: id, Depth: depth}
}

// Criterion returns the split rule of the node.
func (n *Node) Criterion() feature.ThresholdCriterion {
	return feature.NewThresholdCriterion(n.FeatureIndex, n.Threshold)
}

/*
Route evaluates the split rule of the node on the given sample and returns
true if the sample must go right, false if it must go left. It returns an
error if the sample has no value for the split feature.
*/
func (n *Node) Route(sample []float64) (bool, error) {
	return n.Criterion().SatisfiedBy(sample)
}

/*
Find walks the subtree under the node with the given sample and returns
the leaf it reaches. It returns ErrMissingChild if the walk requires a
child that is not there, which only happens on malformed trees.
Find does not modify the tree, so concurrent calls are safe.
*/
func (n *Node) Find(sample []float64) (*Node, error) {
	current := n
	for !current.Leaf {
		right, err := current.Route(sample)
		if err != nil {
			return nil, err
		}
		next := current.Left
		if right {
			next = current.Right
		}
		if next == nil {
			return nil, &MissingChildError{ParentID: current.ID, Right: right}
		}
		current = next
	}
	return current, nil
}

// Predict finds the leaf for the given sample and returns a copy of its payload.
func (n *Node) Predict(sample []float64) (*Prediction, error) {
	leaf, err := n.Find(sample)
	if err != nil {
		return nil, err
	}
	return newPrediction(leaf), nil
}

// Copy returns a deep copy of the node and its subtree.
func (n *Node) Copy() *Node {
	if n == nil {
		return nil
	}
	c := *n
	c.ClassProbabilities = copyFloats(n.ClassProbabilities)
	c.RegressionData = copyFloats(n.RegressionData)
	c.Left = n.Left.Copy()
	c.Right = n.Right.Copy()
	return &c
}

// Clear detaches the subtree under the node and resets it to an unset node
// of the same kind.
func (n *Node) Clear() {
	if n.Left != nil {
		n.Left.Clear()
	}
	if n.Right != nil {
		n.Right.Clear()
	}
	*n = Node{Kind: n.Kind}
}

// Walk calls f on every node of the subtree in preorder and stops at the
// first error it returns.
func (n *Node) Walk(f func(*Node) error) error {
	if n == nil {
		return nil
	}
	if err := f(n); err != nil {
		return err
	}
	if err := n.Left.Walk(f); err != nil {
		return err
	}
	return n.Right.Walk(f)
}

// NumNodes returns the number of nodes in the subtree.
func (n *Node) NumNodes() int {
	var count int
	n.Walk(func(*Node) error {
		count++
		return nil
	})
	return count
}

// Leaves returns the leaves of the subtree from left to right.
func (n *Node) Leaves() []*Node {
	var leaves []*Node
	n.Walk(func(sn *Node) error {
		if sn.Leaf {
			leaves = append(leaves, sn)
		}
		return nil
	})
	return leaves
}

func copyFloats(v []float64) []float64 {
	if v == nil {
		return nil
	}
	c := make([]float64, len(v))
	copy(c, v)
	return c
}
