package model

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"

	"go.uber.org/zap"

	"github.com/pbanos/arbor/dataset"
	"github.com/pbanos/arbor/tree"
)

// RegressionTree predicts target vectors with the mean target vector of
// the training samples in the leaf of a regression tree.
type RegressionTree struct {
	Config
	state
	numTargetDimensions int
}

// NewRegressionTree returns an untrained RegressionTree with default settings.
func NewRegressionTree() *RegressionTree {
	return &RegressionTree{Config: DefaultConfig()}
}

// NumTargetDimensions returns the number of target dimensions the model
// was trained with.
func (rt *RegressionTree) NumTargetDimensions() int {
	return rt.numTargetDimensions
}

/*
Train takes a context and a regression dataset and grows the tree of the
model from it, replacing any previous training. Only inputs are rescaled
when the model uses scaling. If training fails the model is left untrained.
*/
func (rt *RegressionTree) Train(ctx context.Context, data *dataset.RegressionData) error {
	rt.Clear()
	if err := rt.state.train(&rt.Config, tree.RegressionTreeNode, data); err != nil {
		return err
	}
	if rt.scaler != nil {
		scaled, err := data.Scaled(rt.scaler)
		if err != nil {
			rt.Clear()
			return err
		}
		data = scaled
	}
	r, err := rt.builder(tree.RegressionTreeNode).GrowRegressionTree(ctx, data)
	if err = rt.grown(&rt.Config, r, err); err != nil {
		rt.Clear()
		return err
	}
	rt.numTargetDimensions = data.NumTargetDimensions()
	rt.logger().Info("regression tree trained",
		zap.Int("samples", data.NumSamples()),
		zap.Int("targets", rt.numTargetDimensions),
		zap.Int("nodes", rt.tree.NumNodes()))
	return nil
}

/*
Predict takes a sample and returns the predicted target vector. It returns
ErrNotTrained or ErrDimensionMismatch if the model cannot be used with the
sample, and tree.ErrCannotPredictFromEmptySet if the sample reaches a leaf
no training sample reached.
*/
func (rt *RegressionTree) Predict(sample []float64) ([]float64, error) {
	x, err := rt.input(sample)
	if err != nil {
		return nil, err
	}
	p, err := rt.tree.Predict(x)
	if err != nil {
		return nil, err
	}
	if p.Size == 0 {
		return nil, tree.ErrCannotPredictFromEmptySet
	}
	return p.RegressionData, nil
}

/*
Test takes a regression dataset and returns the root mean squared error of
the predictions of the model over the samples it could predict, along with
the number of samples it could not predict.
*/
func (rt *RegressionTree) Test(data *dataset.RegressionData) (float64, int, error) {
	if !rt.Trained() {
		return 0, 0, ErrNotTrained
	}
	if data.NumTargetDimensions() != rt.numTargetDimensions {
		return 0, 0, fmt.Errorf("dataset has %d target dimensions, model predicts %d: %w", data.NumTargetDimensions(), rt.numTargetDimensions, ErrDimensionMismatch)
	}
	var sum float64
	var n, errCount int
	for i := 0; i < data.NumSamples(); i++ {
		p, err := rt.Predict(data.Input(i))
		if err != nil {
			if !errors.Is(err, tree.ErrCannotPredictFromEmptySet) {
				return 0, 0, err
			}
			errCount++
			continue
		}
		for j, v := range data.Target(i) {
			sum += (v - p[j]) * (v - p[j])
		}
		n++
	}
	if n == 0 {
		return 0, errCount, nil
	}
	return math.Sqrt(sum / float64(n)), errCount, nil
}

// Clear resets the model to an untrained state, keeping its settings.
func (rt *RegressionTree) Clear() {
	rt.state.clear()
	rt.numTargetDimensions = 0
}

// Copy returns a deep copy of the model.
func (rt *RegressionTree) Copy() *RegressionTree {
	c := *rt
	c.state = rt.state.copy()
	return &c
}

// Save writes the model on the given io.Writer.
func (rt *RegressionTree) Save(w io.Writer) error {
	e := tree.NewEncoder(w)
	e.Line(RegressionTreeHeader)
	rt.state.encode(e, &rt.Config)
	e.Field("NumTargetDimensions", rt.numTargetDimensions)
	rt.state.encodeTree(e, &rt.Config, tree.RegressionTreeNode)
	return e.Flush()
}

// Load reads a model written by Save from the given io.Reader, replacing
// the model. If the data cannot be read the model is left untrained.
func (rt *RegressionTree) Load(r io.Reader) error {
	d := tree.NewDecoder(r)
	header, err := d.Token()
	if err != nil {
		rt.Clear()
		return fmt.Errorf("reading model header: %w", err)
	}
	if header != RegressionTreeHeader {
		rt.Clear()
		return fmt.Errorf("%w %q, expected %s", ErrUnknownModelFile, header, RegressionTreeHeader)
	}
	return rt.decode(d)
}

func (rt *RegressionTree) decode(d *tree.Decoder) error {
	loaded := &RegressionTree{Config: rt.Config}
	err := func() error {
		trained, err := loaded.state.decode(d, &loaded.Config)
		if err != nil {
			return err
		}
		if loaded.numTargetDimensions, err = d.Count("NumTargetDimensions"); err != nil {
			return err
		}
		if _, err = loaded.state.decodeTree(d, &loaded.Config, trained, tree.RegressionTreeNode); err != nil || !trained {
			return err
		}
		return loaded.checkTree(func(n *tree.Node) error {
			if len(n.RegressionData) != loaded.numTargetDimensions {
				return fmt.Errorf("%w: node %d has %d target values for %d target dimensions", tree.ErrMalformedData, n.ID, len(n.RegressionData), loaded.numTargetDimensions)
			}
			return nil
		})
	}()
	if err != nil {
		rt.Clear()
		return fmt.Errorf("loading regression tree: %w", err)
	}
	*rt = *loaded
	return nil
}

func (rt *RegressionTree) String() string {
	return rt.state.string()
}
