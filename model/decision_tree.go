package model

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/pbanos/arbor/dataset"
	"github.com/pbanos/arbor/tree"
)

/*
DecisionTree is a classifier backed by a decision tree.

NodeKind selects how nodes are split: DecisionTreeThresholdNode scans
thresholds over each feature, DecisionTreeClusterNode splits on 2-means
clusters. When UseNullRejection is set, a prediction is rejected if the
distance from the sample to the mean of the training samples in its leaf
exceeds the mean distance observed for the predicted class by more than
NullRejectionCoeff standard deviations.
*/
type DecisionTree struct {
	Config
	NodeKind           tree.Kind
	UseNullRejection   bool
	NullRejectionCoeff float64
	state
	classLabels []uint
	// mean input vector of the training samples reaching each node
	nodeMeans map[uint][]float64
	// per class statistics of training sample distances to their leaf means
	classClusterMean   []float64
	classClusterStdDev []float64
	thresholds         []float64
}

/*
ClassPrediction is the outcome of classifying a sample.

Label is the predicted class label, or 0 if the prediction was rejected.
Likelihoods holds the probability of each class label of the model, in the
order returned by ClassLabels, and MaxLikelihood the highest of them.
Distances holds, at the index of the most likely class, the distance from
the sample to the mean of its leaf, when null rejection is used.
*/
type ClassPrediction struct {
	Label         uint
	Likelihoods   []float64
	MaxLikelihood float64
	Distances     []float64
	NodeID        uint
	Rejected      bool
}

// NewDecisionTree returns an untrained DecisionTree with default settings.
func NewDecisionTree() *DecisionTree {
	return &DecisionTree{
		Config:             DefaultConfig(),
		NodeKind:           tree.DecisionTreeThresholdNode,
		NullRejectionCoeff: 3,
	}
}

// ClassLabels returns the class labels the model was trained with, sorted.
func (dt *DecisionTree) ClassLabels() []uint {
	labels := make([]uint, len(dt.classLabels))
	copy(labels, dt.classLabels)
	return labels
}

/*
Train takes a context and a classification dataset and grows the tree of
the model from it, replacing any previous training. If training fails the
model is left untrained.
*/
func (dt *DecisionTree) Train(ctx context.Context, data *dataset.ClassificationData) error {
	dt.Clear()
	if err := dt.state.train(&dt.Config, dt.NodeKind, data); err != nil {
		return err
	}
	if dt.scaler != nil {
		scaled, err := data.Scaled(dt.scaler)
		if err != nil {
			dt.Clear()
			return err
		}
		data = scaled
	}
	dt.classLabels = data.ClassLabels()
	r, err := dt.builder(dt.NodeKind).GrowClassifier(ctx, data, dt.classLabels)
	if err = dt.grown(&dt.Config, r, err); err != nil {
		dt.Clear()
		return err
	}
	dt.nodeMeans = r.NodeMeans
	if dt.UseNullRejection {
		if err = dt.trainNullRejection(data); err != nil {
			dt.logger().Error("cannot compute null rejection thresholds", zap.Error(err))
			dt.Clear()
			return err
		}
	}
	dt.logger().Info("decision tree trained",
		zap.Int("samples", data.NumSamples()),
		zap.Int("classes", len(dt.classLabels)),
		zap.Int("nodes", dt.tree.NumNodes()))
	return nil
}

func (dt *DecisionTree) trainNullRejection(data *dataset.ClassificationData) error {
	distances := make([][]float64, len(dt.classLabels))
	index := make(map[uint]int, len(dt.classLabels))
	for i, l := range dt.classLabels {
		index[l] = i
	}
	for i := 0; i < data.NumSamples(); i++ {
		leaf, err := dt.tree.Root.Find(data.Input(i))
		if err != nil {
			return err
		}
		c := index[data.ClassLabel(i)]
		distances[c] = append(distances[c], dt.distance(data.Input(i), leaf.ID))
	}
	dt.classClusterMean = make([]float64, len(distances))
	dt.classClusterStdDev = make([]float64, len(distances))
	for c, ds := range distances {
		switch len(ds) {
		case 0:
		case 1:
			dt.classClusterMean[c] = ds[0]
		default:
			dt.classClusterMean[c], dt.classClusterStdDev[c] = stat.MeanStdDev(ds, nil)
		}
	}
	dt.RecomputeNullRejectionThresholds()
	return nil
}

// RecomputeNullRejectionThresholds derives the rejection threshold of each
// class from the distance statistics gathered in training and NullRejectionCoeff.
func (dt *DecisionTree) RecomputeNullRejectionThresholds() {
	dt.thresholds = make([]float64, len(dt.classClusterMean))
	for c := range dt.thresholds {
		dt.thresholds[c] = dt.classClusterMean[c]
		// a class with no spread keeps its mean whatever the coefficient
		if dt.classClusterStdDev[c] != 0 {
			dt.thresholds[c] += dt.NullRejectionCoeff * dt.classClusterStdDev[c]
		}
	}
}

// SetNullRejectionCoeff sets NullRejectionCoeff and recomputes the rejection
// thresholds without retraining.
func (dt *DecisionTree) SetNullRejectionCoeff(coeff float64) {
	dt.NullRejectionCoeff = coeff
	dt.RecomputeNullRejectionThresholds()
}

// NullRejectionThresholds returns the rejection threshold of each class label.
func (dt *DecisionTree) NullRejectionThresholds() []float64 {
	return append([]float64(nil), dt.thresholds...)
}

/*
NodeDistance returns the squared euclidean distance between the given
sample, rescaled if the model uses scaling, and the mean of the training
samples that reached the node with the given ID. It returns NaN if the
model holds no mean for that node or the sample cannot be used.
*/
func (dt *DecisionTree) NodeDistance(sample []float64, nodeID uint) float64 {
	x, err := dt.input(sample)
	if err != nil {
		return math.NaN()
	}
	return dt.distance(x, nodeID)
}

func (dt *DecisionTree) distance(x []float64, nodeID uint) float64 {
	mean, ok := dt.nodeMeans[nodeID]
	if !ok || len(mean) != len(x) {
		return math.NaN()
	}
	d := floats.Distance(x, mean, 2)
	return d * d
}

/*
Predict takes a sample and returns its classification. It returns
ErrNotTrained or ErrDimensionMismatch if the model cannot be used with the
sample, and tree.ErrCannotPredictFromEmptySet if the sample reaches a leaf
no training sample reached.
*/
func (dt *DecisionTree) Predict(sample []float64) (*ClassPrediction, error) {
	x, err := dt.input(sample)
	if err != nil {
		return nil, err
	}
	p, err := dt.tree.Predict(x)
	if err != nil {
		return nil, err
	}
	best, likelihood, err := p.PredictedClass()
	if err != nil {
		return nil, err
	}
	cp := &ClassPrediction{
		Label:         dt.classLabels[best],
		Likelihoods:   p.ClassProbabilities,
		MaxLikelihood: likelihood,
		Distances:     make([]float64, len(dt.classLabels)),
		NodeID:        p.NodeID,
	}
	if dt.UseNullRejection && len(dt.thresholds) == len(dt.classLabels) {
		cp.Distances[best] = dt.distance(x, p.NodeID)
		if !(cp.Distances[best] <= dt.thresholds[best]) {
			cp.Rejected = true
			cp.Label = 0
		}
	}
	return cp, nil
}

/*
Test takes a classification dataset and returns the fraction of its
samples the model classifies correctly and the number of samples it could
not classify, either because the prediction was rejected or because it
could not be made.
*/
func (dt *DecisionTree) Test(data *dataset.ClassificationData) (float64, int, error) {
	if !dt.Trained() {
		return 0, 0, ErrNotTrained
	}
	if data.NumSamples() == 0 {
		return 0, 0, nil
	}
	var correct float64
	var errCount int
	for i := 0; i < data.NumSamples(); i++ {
		p, err := dt.Predict(data.Input(i))
		if err != nil {
			if !errors.Is(err, tree.ErrCannotPredictFromEmptySet) {
				return 0, 0, err
			}
			errCount++
			continue
		}
		if p.Rejected {
			errCount++
			continue
		}
		if p.Label == data.ClassLabel(i) {
			correct++
		}
	}
	return correct / float64(data.NumSamples()), errCount, nil
}

// Clear resets the model to an untrained state, keeping its settings.
func (dt *DecisionTree) Clear() {
	dt.state.clear()
	dt.classLabels = nil
	dt.nodeMeans = nil
	dt.classClusterMean = nil
	dt.classClusterStdDev = nil
	dt.thresholds = nil
}

// Copy returns a deep copy of the model.
func (dt *DecisionTree) Copy() *DecisionTree {
	c := *dt
	c.state = dt.state.copy()
	c.classLabels = dt.ClassLabels()
	if dt.nodeMeans != nil {
		c.nodeMeans = make(map[uint][]float64, len(dt.nodeMeans))
		for id, m := range dt.nodeMeans {
			c.nodeMeans[id] = append([]float64(nil), m...)
		}
	}
	c.classClusterMean = append([]float64(nil), dt.classClusterMean...)
	c.classClusterStdDev = append([]float64(nil), dt.classClusterStdDev...)
	c.thresholds = append([]float64(nil), dt.thresholds...)
	return &c
}

// Save writes the model on the given io.Writer.
func (dt *DecisionTree) Save(w io.Writer) error {
	e := tree.NewEncoder(w)
	e.Line(DecisionTreeHeader)
	dt.state.encode(e, &dt.Config)
	e.Field("UseNullRejection", dt.UseNullRejection)
	e.Field("NullRejectionCoeff", dt.NullRejectionCoeff)
	e.Field("NumClasses", len(dt.classLabels))
	e.Field("ClassLabels", dt.classLabels)
	dt.state.encodeTree(e, &dt.Config, dt.NodeKind)
	if dt.Trained() && dt.UseNullRejection {
		e.Field("ClassClusterMean", dt.classClusterMean)
		e.Field("ClassClusterStdDev", dt.classClusterStdDev)
		ids := make([]uint, 0, len(dt.nodeMeans))
		for id := range dt.nodeMeans {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		e.Field("NumNodes", len(ids))
		for _, id := range ids {
			e.Field("NodeID", id)
			e.Field("NodeMean", dt.nodeMeans[id])
		}
	}
	return e.Flush()
}

// Load reads a model written by Save from the given io.Reader, replacing
// the model. If the data cannot be read the model is left untrained.
func (dt *DecisionTree) Load(r io.Reader) error {
	d := tree.NewDecoder(r)
	header, err := d.Token()
	if err != nil {
		dt.Clear()
		return fmt.Errorf("reading model header: %w", err)
	}
	if header != DecisionTreeHeader {
		dt.Clear()
		return fmt.Errorf("%w %q, expected %s", ErrUnknownModelFile, header, DecisionTreeHeader)
	}
	return dt.decode(d)
}

func (dt *DecisionTree) decode(d *tree.Decoder) error {
	loaded := &DecisionTree{Config: dt.Config}
	if err := loaded.decodeFields(d); err != nil {
		dt.Clear()
		return fmt.Errorf("loading decision tree: %w", err)
	}
	*dt = *loaded
	return nil
}

func (dt *DecisionTree) decodeFields(d *tree.Decoder) error {
	trained, err := dt.state.decode(d, &dt.Config)
	if err != nil {
		return err
	}
	if dt.UseNullRejection, err = d.Bool("UseNullRejection"); err != nil {
		return err
	}
	if dt.NullRejectionCoeff, err = d.Float("NullRejectionCoeff"); err != nil {
		return err
	}
	numClasses, err := d.Count("NumClasses")
	if err != nil {
		return err
	}
	labels, err := d.Uints("ClassLabels", numClasses)
	if err != nil {
		return err
	}
	if trained {
		dt.classLabels = labels
	}
	if dt.NodeKind, err = dt.state.decodeTree(d, &dt.Config, trained, tree.DecisionTreeThresholdNode, tree.DecisionTreeClusterNode); err != nil {
		return err
	}
	if trained {
		err = dt.checkTree(func(n *tree.Node) error {
			if len(n.ClassProbabilities) != numClasses {
				return fmt.Errorf("%w: node %d has %d class probabilities for %d classes", tree.ErrMalformedData, n.ID, len(n.ClassProbabilities), numClasses)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	if !trained || !dt.UseNullRejection {
		return nil
	}
	if dt.classClusterMean, err = d.Floats("ClassClusterMean", numClasses); err != nil {
		return err
	}
	if dt.classClusterStdDev, err = d.Floats("ClassClusterStdDev", numClasses); err != nil {
		return err
	}
	numNodes, err := d.Count("NumNodes")
	if err != nil {
		return err
	}
	dt.nodeMeans = make(map[uint][]float64, numNodes)
	for i := 0; i < numNodes; i++ {
		id, err := d.Uint("NodeID")
		if err != nil {
			return err
		}
		if dt.nodeMeans[id], err = d.Floats("NodeMean", dt.numInputDimensions); err != nil {
			return err
		}
	}
	dt.RecomputeNullRejectionThresholds()
	return nil
}

func (dt *DecisionTree) String() string {
	return dt.state.string()
}
