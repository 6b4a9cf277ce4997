package tree

import (
	"fmt"
	"io"
)

/*
Encode writes the node and its subtree with the given Encoder: first the
node type tag, depth, ID, leaf flag and child flags, then the left and
right child blocks when present, and finally the split rule and payload of
the node.
*/
func (n *Node) Encode(e *Encoder) {
	e.Field("NodeType", n.Kind.String())
	e.Field("Depth", n.Depth)
	e.Field("NodeID", n.ID)
	e.Field("IsLeafNode", n.Leaf)
	e.Field("HasLeftChild", n.Left != nil)
	e.Field("HasRightChild", n.Right != nil)
	if n.Left != nil {
		n.Left.Encode(e)
	}
	if n.Right != nil {
		n.Right.Encode(e)
	}
	e.Field("NodeSize", n.Size)
	e.Field("FeatureIndex", n.FeatureIndex)
	e.Field("Threshold", n.Threshold)
	switch n.Kind {
	case DecisionTreeThresholdNode, DecisionTreeClusterNode:
		e.Field("NumClasses", len(n.ClassProbabilities))
		e.Field("ClassProbabilities", n.ClassProbabilities)
	case ClusterTreeNode:
		e.Field("ClusterLabel", n.ClusterLabel)
	case RegressionTreeNode:
		e.Field("RegressionDataSize", len(n.RegressionData))
		e.Field("RegressionData", n.RegressionData)
	}
}

// Save writes the node and its subtree on the given io.Writer.
func (n *Node) Save(w io.Writer) error {
	e := NewEncoder(w)
	n.Encode(e)
	return e.Flush()
}

/*
DecodeNode reads a node and its subtree with the given Decoder. It returns
an error if the data is incomplete, has an unknown node type tag, or
describes an invalid tree: a node with a single child, a leaf flag that
disagrees with the children, or a child whose depth is not its parent's
plus one.
*/
func DecodeNode(d *Decoder) (*Node, error) {
	tag, err := d.Word("NodeType")
	if err != nil {
		return nil, err
	}
	kind, err := ParseKind(tag)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedData, err)
	}
	n := &Node{Kind: kind}
	if n.Depth, err = d.Uint("Depth"); err != nil {
		return nil, err
	}
	if n.ID, err = d.Uint("NodeID"); err != nil {
		return nil, err
	}
	if n.Leaf, err = d.Bool("IsLeafNode"); err != nil {
		return nil, err
	}
	hasLeft, err := d.Bool("HasLeftChild")
	if err != nil {
		return nil, err
	}
	hasRight, err := d.Bool("HasRightChild")
	if err != nil {
		return nil, err
	}
	if hasLeft != hasRight {
		return nil, fmt.Errorf("%w: node %d has a single child", ErrMalformedData, n.ID)
	}
	if n.Leaf == hasLeft {
		return nil, fmt.Errorf("%w: node %d leaf flag disagrees with its children", ErrMalformedData, n.ID)
	}
	if hasLeft {
		if n.Left, err = n.decodeChild(d); err != nil {
			return nil, err
		}
		if n.Right, err = n.decodeChild(d); err != nil {
			return nil, err
		}
	}
	if err = n.decodeParameters(d); err != nil {
		return nil, fmt.Errorf("node %d: %w", n.ID, err)
	}
	return n, nil
}

func (n *Node) decodeChild(d *Decoder) (*Node, error) {
	c, err := DecodeNode(d)
	if err != nil {
		return nil, err
	}
	if c.Depth != n.Depth+1 {
		return nil, fmt.Errorf("%w: node %d at depth %d has child %d at depth %d", ErrMalformedData, n.ID, n.Depth, c.ID, c.Depth)
	}
	return c, nil
}

func (n *Node) decodeParameters(d *Decoder) error {
	var err error
	if n.Size, err = d.Uint("NodeSize"); err != nil {
		return err
	}
	if n.FeatureIndex, err = d.Uint("FeatureIndex"); err != nil {
		return err
	}
	if n.Threshold, err = d.Float("Threshold"); err != nil {
		return err
	}
	switch n.Kind {
	case DecisionTreeThresholdNode, DecisionTreeClusterNode:
		numClasses, err := d.Count("NumClasses")
		if err != nil {
			return err
		}
		n.ClassProbabilities, err = d.Floats("ClassProbabilities", numClasses)
		return err
	case ClusterTreeNode:
		n.ClusterLabel, err = d.Uint("ClusterLabel")
		return err
	case RegressionTreeNode:
		size, err := d.Count("RegressionDataSize")
		if err != nil {
			return err
		}
		n.RegressionData, err = d.Floats("RegressionData", size)
		return err
	}
	return nil
}

// LoadNode reads a node and its subtree from the given io.Reader.
func LoadNode(r io.Reader) (*Node, error) {
	return DecodeNode(NewDecoder(r))
}
