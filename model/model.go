/*
Package model wraps grown trees into trainable models: DecisionTree to
classify samples, ClusterTree to assign them to clusters and RegressionTree
to predict target vectors.

Models rescale inputs when told to, validate sample dimensions, and save to
and load from a text format that starts with a header naming the kind of
model, so Read can restore a model of any kind.
*/
package model

import (
	"context"
	"fmt"
	"io"
	"math/rand"

	"go.uber.org/zap"

	"github.com/pbanos/arbor"
	"github.com/pbanos/arbor/dataset"
	"github.com/pbanos/arbor/tree"
)

// Error is the type of the errors returned by models.
type Error string

const (
	// ErrNotTrained is returned when using a model that has not been trained.
	ErrNotTrained = Error("model not trained")
	// ErrDimensionMismatch is returned when a sample does not have the
	// number of input dimensions the model was trained with.
	ErrDimensionMismatch = Error("sample dimensions do not match model dimensions")
	// ErrNoTrainingData is returned when training a model with an empty dataset.
	ErrNoTrainingData = Error("no training data")
	// ErrUnknownModelFile is returned when reading model data with an
	// unknown header.
	ErrUnknownModelFile = Error("unknown model file header")
)

func (e Error) Error() string {
	return string(e)
}

// Headers written at the start of model data.
const (
	DecisionTreeHeader   = "ARBOR_DECISION_TREE_MODEL_FILE_V1.0"
	ClusterTreeHeader    = "ARBOR_CLUSTER_TREE_MODEL_FILE_V1.0"
	RegressionTreeHeader = "ARBOR_REGRESSION_TREE_MODEL_FILE_V1.0"
)

/*
Model is the behaviour shared by all tree models.

Its Tree method returns the tree of the model, nil if it has not been
trained. The returned tree must not be modified.
*/
type Model interface {
	Trained() bool
	Tree() *tree.Tree
	Save(io.Writer) error
	Load(io.Reader) error
	Clear()
}

/*
Read takes an io.Reader with model data and returns the model it
describes: a *DecisionTree, *ClusterTree or *RegressionTree depending on
the header of the data.
*/
func Read(r io.Reader) (Model, error) {
	d := tree.NewDecoder(r)
	header, err := d.Token()
	if err != nil {
		return nil, fmt.Errorf("reading model header: %w", err)
	}
	var m interface {
		Model
		decode(*tree.Decoder) error
	}
	switch header {
	case DecisionTreeHeader:
		m = NewDecisionTree()
	case ClusterTreeHeader:
		m = NewClusterTree()
	case RegressionTreeHeader:
		m = NewRegressionTree()
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownModelFile, header)
	}
	if err = m.decode(d); err != nil {
		return nil, err
	}
	return m, nil
}

/*
Config holds the settings shared by all models.

Params are the hyperparameters trees are grown with. When UseScaling is
set, inputs are rescaled into [0,1] with the ranges observed on the
training data before growing the tree and before every prediction.
Rand, Workers and Logger are handed to the tree builder; Logger is also
used by the model itself and defaults to a no-op logger.
*/
type Config struct {
	Params     tree.Params
	UseScaling bool
	Rand       *rand.Rand
	Workers    int
	Logger     *zap.Logger
}

// DefaultConfig returns the settings models use unless told otherwise.
func DefaultConfig() Config {
	return Config{Params: tree.DefaultParams()}
}

func (c *Config) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

func (c *Config) builder(kind tree.Kind) *arbor.Builder {
	b := arbor.NewBuilder(kind, c.Params)
	b.Rand = c.Rand
	b.Workers = c.Workers
	b.Logger = c.Logger
	return b
}

// state is what training adds to a model.
type state struct {
	tree               *tree.Tree
	scaler             *dataset.Scaler
	numInputDimensions int
}

// Trained returns whether the model has been trained.
func (s *state) Trained() bool {
	return s.tree.Built()
}

// Tree returns the tree of the model, nil if it has not been trained.
func (s *state) Tree() *tree.Tree {
	if !s.Trained() {
		return nil
	}
	return s.tree
}

// NumInputDimensions returns the number of input dimensions the model was
// trained with.
func (s *state) NumInputDimensions() int {
	return s.numInputDimensions
}

/*
input validates the given sample against the trained model and returns it
rescaled when the model uses scaling.
*/
func (s *state) input(sample []float64) ([]float64, error) {
	if !s.Trained() {
		return nil, ErrNotTrained
	}
	if len(sample) != s.numInputDimensions {
		return nil, fmt.Errorf("sample has %d dimensions, model expects %d: %w", len(sample), s.numInputDimensions, ErrDimensionMismatch)
	}
	if s.scaler == nil {
		return sample, nil
	}
	return s.scaler.Transform(sample)
}

func (s *state) clear() {
	if s.tree != nil {
		s.tree.Clear()
	}
	*s = state{}
}

func (s *state) copy() state {
	c := state{numInputDimensions: s.numInputDimensions}
	if s.tree != nil {
		c.tree = s.tree.Copy()
	}
	if s.scaler != nil {
		c.scaler = dataset.NewScaler(s.scaler.Ranges)
	}
	return c
}

/*
encode writes the training state with the given encoder, except for the
tree, which goes after the fields specific to each kind of model.
*/
func (s *state) encode(e *tree.Encoder, c *Config) {
	e.Field("Trained", s.Trained())
	e.Field("NumInputDimensions", s.numInputDimensions)
	e.Field("UseScaling", c.UseScaling)
	if s.scaler != nil {
		ranges := make([]float64, 0, 2*len(s.scaler.Ranges))
		for _, r := range s.scaler.Ranges {
			ranges = append(ranges, r.Min, r.Max)
		}
		e.Field("Ranges", ranges)
	}
}

func (s *state) encodeTree(e *tree.Encoder, c *Config, kind tree.Kind) {
	t := s.tree
	if t == nil {
		t = tree.New(kind, c.Params)
	}
	t.Encode(e)
}

func (s *state) decode(d *tree.Decoder, c *Config) (bool, error) {
	trained, err := d.Bool("Trained")
	if err != nil {
		return false, err
	}
	if s.numInputDimensions, err = d.Count("NumInputDimensions"); err != nil {
		return false, err
	}
	if c.UseScaling, err = d.Bool("UseScaling"); err != nil {
		return false, err
	}
	if trained && c.UseScaling {
		values, err := d.Floats("Ranges", 2*s.numInputDimensions)
		if err != nil {
			return false, err
		}
		ranges := make([]dataset.MinMax, s.numInputDimensions)
		for i := range ranges {
			ranges[i] = dataset.MinMax{Min: values[2*i], Max: values[2*i+1]}
		}
		s.scaler = dataset.NewScaler(ranges)
	}
	return trained, nil
}

/*
decodeTree reads the tree of the model, checking its node kind is one of
the given ones and that it is built if and only if the model is trained.
*/
func (s *state) decodeTree(d *tree.Decoder, c *Config, trained bool, kinds ...tree.Kind) (tree.Kind, error) {
	t, err := tree.DecodeTree(d)
	if err != nil {
		return 0, err
	}
	valid := false
	for _, k := range kinds {
		valid = valid || t.Kind == k
	}
	if !valid {
		return 0, fmt.Errorf("%w: unexpected node type %v", tree.ErrMalformedData, t.Kind)
	}
	if t.Built() != trained {
		return 0, fmt.Errorf("%w: trained flag disagrees with tree", tree.ErrMalformedData)
	}
	c.Params = t.Params
	if trained {
		s.tree = t
	}
	return t.Kind, nil
}

/*
checkTree walks the nodes of a trained model and returns an error unless
every internal node splits on an input dimension of the model and check
accepts every node.
*/
func (s *state) checkTree(check func(*tree.Node) error) error {
	return s.tree.Traverse(context.Background(), false, func(_ context.Context, n *tree.Node) error {
		if !n.Leaf && n.FeatureIndex >= uint(s.numInputDimensions) {
			return fmt.Errorf("%w: node %d splits on feature %d of a model with %d input dimensions", tree.ErrMalformedData, n.ID, n.FeatureIndex, s.numInputDimensions)
		}
		return check(n)
	})
}

func (s *state) train(c *Config, kind tree.Kind, d dataset.Dataset) error {
	if d.NumSamples() == 0 {
		c.logger().Error("cannot train model", zap.Error(ErrNoTrainingData), zap.Stringer("kind", kind))
		return ErrNoTrainingData
	}
	s.numInputDimensions = d.NumDimensions()
	if c.UseScaling {
		s.scaler = dataset.FitScaler(d)
	}
	return nil
}

func (s *state) grown(c *Config, r *arbor.Result, err error) error {
	if err != nil {
		c.logger().Error("cannot grow tree", zap.Error(err))
		s.clear()
		return err
	}
	s.tree = r.Tree
	return nil
}

func (s *state) string() string {
	if !s.Trained() {
		return "[untrained model]\n"
	}
	return s.tree.String()
}
