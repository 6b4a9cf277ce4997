package tree

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// Tree represents a binary tree grown to classify, cluster or regress
// samples. It is composed of the hyperparameters it was grown with, the
// kind of its nodes and the root node, which is nil until the tree is built.
type Tree struct {
	Params
	Kind Kind
	Root *Node
}

// New takes a node kind and hyperparameters and returns a tree without nodes.
func New(kind Kind, params Params) *Tree {
	return &Tree{Params: params, Kind: kind}
}

// Built returns whether the tree has nodes.
func (t *Tree) Built() bool {
	return t != nil && t.Root != nil
}

// Predict takes a sample and returns a prediction according to the tree and an
// error if the prediction could not be made.
func (t *Tree) Predict(sample []float64) (*Prediction, error) {
	if !t.Built() {
		return nil, ErrCannotPredictFromSample
	}
	return t.Root.Predict(sample)
}

// Traverse takes a context, bottomup boolean and an
// error-returning function that takes a context and a node
// as parameters, and goes through the tree running the
// function with the context and every traversed node.
// Traverse will call the function with a parent node before
// calling it for its children if bottomup is false, and
// call it after its children if bottomup is true.
// If the given context times out or is cancelled, the context
// error is returned. If the call to the function returns an
// error, the traversing is aborted and the error is returned.
func (t *Tree) Traverse(ctx context.Context, bottomup bool, f func(context.Context, *Node) error) error {
	if !t.Built() {
		return nil
	}
	return traverse(ctx, t.Root, bottomup, f)
}

func traverse(ctx context.Context, n *Node, bottomup bool, f func(context.Context, *Node) error) error {
	err := ctx.Err()
	if err != nil {
		return err
	}
	if !bottomup {
		if err = f(ctx, n); err != nil {
			return err
		}
	}
	for _, sn := range []*Node{n.Left, n.Right} {
		if sn == nil {
			continue
		}
		if err = traverse(ctx, sn, bottomup, f); err != nil {
			return err
		}
	}
	if bottomup {
		return f(ctx, n)
	}
	return nil
}

// NumNodes returns the number of nodes in the tree
func (t *Tree) NumNodes() int {
	if !t.Built() {
		return 0
	}
	return t.Root.NumNodes()
}

// Leaves returns the leaves of the tree from left to right, none if it is
// not built.
func (t *Tree) Leaves() []*Node {
	if !t.Built() {
		return nil
	}
	return t.Root.Leaves()
}

// Copy returns a deep copy of the tree.
func (t *Tree) Copy() *Tree {
	return &Tree{Params: t.Params, Kind: t.Kind, Root: t.Root.Copy()}
}

// Clear releases the nodes of the tree, keeping its kind and hyperparameters.
func (t *Tree) Clear() {
	if t.Root != nil {
		t.Root.Clear()
	}
	t.Root = nil
}

/*
Encode writes the node kind, the hyperparameters and, when built, the
nodes of the tree with the given Encoder.
*/
func (t *Tree) Encode(e *Encoder) {
	e.Field("NodeType", t.Kind.String())
	e.Field("MinNumSamplesPerNode", t.MinSamplesPerNode)
	e.Field("MaxDepth", t.MaxDepth)
	e.Field("NumSplittingSteps", t.NumSplittingSteps)
	e.Field("RemoveFeaturesAtEachSpilt", t.RemoveFeatureAfterSplit)
	e.Field("TrainingMode", uint(t.SplitSearch))
	e.Field("MinRMSErrorPerNode", t.MinRMSErrorPerNode)
	e.Field("TreeBuilt", t.Built())
	if t.Built() {
		e.Line("Tree:")
		t.Root.Encode(e)
	}
}

// DecodeTree reads a tree written by Encode with the given Decoder.
func DecodeTree(d *Decoder) (*Tree, error) {
	tag, err := d.Word("NodeType")
	if err != nil {
		return nil, err
	}
	t := &Tree{}
	if t.Kind, err = ParseKind(tag); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedData, err)
	}
	if t.MinSamplesPerNode, err = d.Uint("MinNumSamplesPerNode"); err != nil {
		return nil, err
	}
	if t.MaxDepth, err = d.Uint("MaxDepth"); err != nil {
		return nil, err
	}
	if t.NumSplittingSteps, err = d.Uint("NumSplittingSteps"); err != nil {
		return nil, err
	}
	if t.RemoveFeatureAfterSplit, err = d.Bool("RemoveFeaturesAtEachSpilt"); err != nil {
		return nil, err
	}
	mode, err := d.Uint("TrainingMode")
	if err != nil {
		return nil, err
	}
	t.SplitSearch = SplitSearch(mode)
	if t.MinRMSErrorPerNode, err = d.Float("MinRMSErrorPerNode"); err != nil {
		return nil, err
	}
	if err = t.Params.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedData, err)
	}
	built, err := d.Bool("TreeBuilt")
	if err != nil {
		return nil, err
	}
	if !built {
		return t, nil
	}
	if err = d.Expect("Tree"); err != nil {
		return nil, err
	}
	if t.Root, err = DecodeNode(d); err != nil {
		return nil, err
	}
	if t.Root.Depth != 0 {
		return nil, fmt.Errorf("%w: root node at depth %d", ErrMalformedData, t.Root.Depth)
	}
	err = t.Traverse(context.Background(), false, func(_ context.Context, n *Node) error {
		if n.Kind != t.Kind {
			return fmt.Errorf("%w: node %d has type %v in a tree of %v", ErrMalformedData, n.ID, n.Kind, t.Kind)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Save writes the tree on the given io.Writer.
func (t *Tree) Save(w io.Writer) error {
	e := NewEncoder(w)
	t.Encode(e)
	return e.Flush()
}

// Load reads a tree written by Save from the given io.Reader.
func Load(r io.Reader) (*Tree, error) {
	return DecodeTree(NewDecoder(r))
}

func (t *Tree) String() string {
	return t.Describe(nil)
}

// Describe renders the tree naming split features with the given names.
func (t *Tree) Describe(featureNames []string) string {
	if !t.Built() {
		return "[empty tree]\n"
	}
	return subtreeString(t.Root, featureNames)
}

func subtreeString(n *Node, names []string) string {
	result := fmt.Sprintf("[%d]\n", n.ID)
	if n.Leaf {
		result = fmt.Sprintf("%s{ %v }\n \n", result, newPrediction(n))
		return result
	}
	result = fmt.Sprintf("%s{ %s }\n|\n", result, n.Criterion().Describe(names))
	children := []*Node{n.Left, n.Right}
	for i, c := range children {
		if c == nil {
			continue
		}
		for j, line := range strings.Split(subtreeString(c, names), "\n") {
			if len(line) == 0 {
				continue
			}
			switch {
			case j == 0:
				result = fmt.Sprintf("%s|__%s\n", result, line)
			case i == len(children)-1:
				result = fmt.Sprintf("%s   %s\n", result, line)
			default:
				result = fmt.Sprintf("%s|  %s\n", result, line)
			}
		}
	}
	return result
}
