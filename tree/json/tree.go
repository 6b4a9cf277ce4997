/*
Package json exports trees as JSON documents for inspection by other
tools, and reads them back.
*/
package json

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/pbanos/arbor/tree"
)

type jsonTree struct {
	Kind   string             `json:"kind"`
	Params tree.Params        `json:"params"`
	RootID *uint              `json:"rootID,omitempty"`
	Nodes  []*json.RawMessage `json:"nodes"`
}

/*
WriteJSONTree takes a context.Context, a pointer to a tree.Tree, the names
of the input features and an io.Writer and serializes the given tree as
JSON onto the io.Writer.
A tree is serialized as a JSON object with the following fields:
* "kind": the tag of the node kind of the tree
* "params": the hyperparameters the tree was grown with
* "rootID": the ID of the root node, absent if the tree is not built
* "nodes": an array with the nodes of the tree in preorder, as serialized
  by EncodeNode.
An error is returned if the tree cannot be traversed, serialized or written
onto the io.Writer.
*/
func WriteJSONTree(ctx context.Context, t *tree.Tree, featureNames []string, w io.Writer) error {
	err := marshalJSONTreeHeader(t, w)
	if err != nil {
		return err
	}
	var i int
	err = t.Traverse(ctx, false, func(ctx context.Context, n *tree.Node) error {
		err := writeNode(i, n, featureNames, w)
		i++
		return err
	})
	if err != nil {
		return err
	}
	_, err = w.Write([]byte(`]}`))
	return err
}

/*
ReadJSONTree takes a context.Context and an io.Reader with a tree written
by WriteJSONTree and returns the tree. An error is returned if the JSON
cannot be read or does not describe a valid tree: every child ID must
name a node, every node must be reachable from the root, and children
must sit one level below their parent.
*/
func ReadJSONTree(ctx context.Context, r io.Reader) (*tree.Tree, error) {
	jt := &jsonTree{}
	if err := json.NewDecoder(r).Decode(jt); err != nil {
		return nil, err
	}
	kind, err := tree.ParseKind(jt.Kind)
	if err != nil {
		return nil, err
	}
	t := tree.New(kind, jt.Params)
	if err = t.Validate(); err != nil {
		return nil, err
	}
	if jt.RootID == nil {
		return t, nil
	}
	jnodes := make(map[uint]*node, len(jt.Nodes))
	nodes := make(map[uint]*tree.Node, len(jt.Nodes))
	for _, raw := range jt.Nodes {
		if err = ctx.Err(); err != nil {
			return nil, err
		}
		jn, n, err := decodeNode(*raw, kind)
		if err != nil {
			return nil, err
		}
		if _, ok := nodes[n.ID]; ok {
			return nil, fmt.Errorf("duplicate node %d", n.ID)
		}
		jnodes[n.ID], nodes[n.ID] = jn, n
	}
	root, ok := nodes[*jt.RootID]
	if !ok {
		return nil, fmt.Errorf("root node %d not found", *jt.RootID)
	}
	if err = link(root, jnodes, nodes); err != nil {
		return nil, err
	}
	if linked := root.NumNodes(); linked != len(nodes) {
		return nil, fmt.Errorf("%d nodes found but %d linked from root node %d", len(nodes), linked, root.ID)
	}
	t.Root = root
	return t, nil
}

func link(n *tree.Node, jnodes map[uint]*node, nodes map[uint]*tree.Node) error {
	jn := jnodes[n.ID]
	if (jn.LeftID == nil) != (jn.RightID == nil) || n.Leaf != (jn.LeftID == nil) {
		return fmt.Errorf("node %d must be a leaf or have both children", n.ID)
	}
	if n.Leaf {
		return nil
	}
	var err error
	if n.Left, err = child(n, *jn.LeftID, nodes); err != nil {
		return err
	}
	if n.Right, err = child(n, *jn.RightID, nodes); err != nil {
		return err
	}
	if err = link(n.Left, jnodes, nodes); err != nil {
		return err
	}
	return link(n.Right, jnodes, nodes)
}

func child(parent *tree.Node, id uint, nodes map[uint]*tree.Node) (*tree.Node, error) {
	c, ok := nodes[id]
	if !ok {
		return nil, fmt.Errorf("node %d: child %d not found", parent.ID, id)
	}
	if c.Depth != parent.Depth+1 {
		return nil, fmt.Errorf("node %d at depth %d has child %d at depth %d", parent.ID, parent.Depth, c.ID, c.Depth)
	}
	return c, nil
}

func marshalJSONTreeHeader(t *tree.Tree, w io.Writer) error {
	jkind, err := json.Marshal(t.Kind.String())
	if err != nil {
		return err
	}
	jparams, err := json.Marshal(t.Params)
	if err != nil {
		return err
	}
	header := fmt.Sprintf(`{"kind":%s,"params":%s,`, jkind, jparams)
	if t.Built() {
		header = fmt.Sprintf(`%s"rootID":%d,`, header, t.Root.ID)
	}
	_, err = w.Write([]byte(header + `"nodes":[`))
	return err
}

func writeNode(i int, n *tree.Node, featureNames []string, w io.Writer) error {
	if i != 0 {
		_, err := w.Write([]byte(","))
		if err != nil {
			return err
		}
	}
	jn, err := EncodeNode(n, featureNames)
	if err != nil {
		return err
	}
	_, err = w.Write(jn)
	return err
}
