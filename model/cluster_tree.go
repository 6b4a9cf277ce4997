package model

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/pbanos/arbor/dataset"
	"github.com/pbanos/arbor/tree"
)

// ClusterTree groups unlabeled samples into the clusters defined by the
// leaves of a cluster tree.
type ClusterTree struct {
	Config
	state
	numClusters uint
}

/*
ClusterPrediction is the outcome of clustering a sample: the label of its
cluster, from 1 to the number of clusters of the model, the likelihood of
each cluster, which is 1 for the predicted one and 0 for the rest, and the
ID of the leaf the sample reached.
*/
type ClusterPrediction struct {
	Label       uint
	Likelihoods []float64
	NodeID      uint
}

// NewClusterTree returns an untrained ClusterTree with default settings.
func NewClusterTree() *ClusterTree {
	return &ClusterTree{Config: DefaultConfig()}
}

// NumClusters returns the number of clusters found in training.
func (ct *ClusterTree) NumClusters() uint {
	return ct.numClusters
}

/*
Train takes a context and an unlabeled dataset and grows the tree of the
model from it, replacing any previous training. If training fails the
model is left untrained.
*/
func (ct *ClusterTree) Train(ctx context.Context, data *dataset.UnlabeledData) error {
	ct.Clear()
	if err := ct.state.train(&ct.Config, tree.ClusterTreeNode, data); err != nil {
		return err
	}
	if ct.scaler != nil {
		scaled, err := data.Scaled(ct.scaler)
		if err != nil {
			ct.Clear()
			return err
		}
		data = scaled
	}
	r, err := ct.builder(tree.ClusterTreeNode).GrowClusterTree(ctx, data)
	if err = ct.grown(&ct.Config, r, err); err != nil {
		ct.Clear()
		return err
	}
	ct.numClusters = r.NumClusters
	ct.logger().Info("cluster tree trained",
		zap.Int("samples", data.NumSamples()),
		zap.Uint("clusters", ct.numClusters),
		zap.Int("nodes", ct.tree.NumNodes()))
	return nil
}

/*
Predict takes a sample and returns the cluster it belongs to. It returns
ErrNotTrained or ErrDimensionMismatch if the model cannot be used with the
sample, and tree.ErrCannotPredictFromEmptySet if the sample reaches a leaf
no training sample reached.
*/
func (ct *ClusterTree) Predict(sample []float64) (*ClusterPrediction, error) {
	x, err := ct.input(sample)
	if err != nil {
		return nil, err
	}
	p, err := ct.tree.Predict(x)
	if err != nil {
		return nil, err
	}
	if p.Size == 0 || p.ClusterLabel == 0 || p.ClusterLabel > ct.numClusters {
		return nil, tree.ErrCannotPredictFromEmptySet
	}
	cp := &ClusterPrediction{
		Label:       p.ClusterLabel,
		Likelihoods: make([]float64, ct.numClusters),
		NodeID:      p.NodeID,
	}
	cp.Likelihoods[p.ClusterLabel-1] = 1
	return cp, nil
}

// Clear resets the model to an untrained state, keeping its settings.
func (ct *ClusterTree) Clear() {
	ct.state.clear()
	ct.numClusters = 0
}

// Copy returns a deep copy of the model.
func (ct *ClusterTree) Copy() *ClusterTree {
	c := *ct
	c.state = ct.state.copy()
	return &c
}

// Save writes the model on the given io.Writer.
func (ct *ClusterTree) Save(w io.Writer) error {
	e := tree.NewEncoder(w)
	e.Line(ClusterTreeHeader)
	ct.state.encode(e, &ct.Config)
	e.Field("NumClusters", ct.numClusters)
	ct.state.encodeTree(e, &ct.Config, tree.ClusterTreeNode)
	return e.Flush()
}

// Load reads a model written by Save from the given io.Reader, replacing
// the model. If the data cannot be read the model is left untrained.
func (ct *ClusterTree) Load(r io.Reader) error {
	d := tree.NewDecoder(r)
	header, err := d.Token()
	if err != nil {
		ct.Clear()
		return fmt.Errorf("reading model header: %w", err)
	}
	if header != ClusterTreeHeader {
		ct.Clear()
		return fmt.Errorf("%w %q, expected %s", ErrUnknownModelFile, header, ClusterTreeHeader)
	}
	return ct.decode(d)
}

func (ct *ClusterTree) decode(d *tree.Decoder) error {
	loaded := &ClusterTree{Config: ct.Config}
	err := func() error {
		trained, err := loaded.state.decode(d, &loaded.Config)
		if err != nil {
			return err
		}
		if loaded.numClusters, err = d.Uint("NumClusters"); err != nil {
			return err
		}
		if _, err = loaded.state.decodeTree(d, &loaded.Config, trained, tree.ClusterTreeNode); err != nil || !trained {
			return err
		}
		if leaves := len(loaded.tree.Leaves()); loaded.numClusters > uint(leaves) {
			return fmt.Errorf("%w: %d clusters in a tree with %d leaves", tree.ErrMalformedData, loaded.numClusters, leaves)
		}
		return loaded.checkTree(func(n *tree.Node) error {
			if n.ClusterLabel > loaded.numClusters {
				return fmt.Errorf("%w: node %d has cluster label %d of %d", tree.ErrMalformedData, n.ID, n.ClusterLabel, loaded.numClusters)
			}
			return nil
		})
	}()
	if err != nil {
		ct.Clear()
		return fmt.Errorf("loading cluster tree: %w", err)
	}
	*ct = *loaded
	return nil
}

func (ct *ClusterTree) String() string {
	return ct.state.string()
}
