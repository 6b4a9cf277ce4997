package tree

import (
	"fmt"
)

/*
Prediction holds a copy of the payload of the leaf a sample reached when
walking a tree, along with the ID of the leaf and the number of training
samples that reached it.
*/
type Prediction struct {
	NodeID             uint
	Size               uint
	ClassProbabilities []float64
	ClusterLabel       uint
	RegressionData     []float64
}

// PredictionError represents an error related with predictions
type PredictionError string

/*
ErrCannotPredictFromSample is the error returned when the prediction cannot
be made because the tree itself cannot make a prediction for that kind of
sample, as opposed to cases where the tree is malformed or the sample
lacks features for example.
*/
const ErrCannotPredictFromSample = PredictionError("no prediction available for this kind of sample")

/*
ErrCannotPredictFromEmptySet is the error returned when trying to make a
prediction from a leaf no training sample reached.
*/
const ErrCannotPredictFromEmptySet = PredictionError("cannot make prediction for empty dataset")

// ErrMissingChild is matched by the errors returned when walking a tree
// requires a child that is not there.
const ErrMissingChild = PredictionError("malformed tree: missing child node")

func (pe PredictionError) Error() string {
	return string(pe)
}

// MissingChildError reports the internal node whose child was missing.
type MissingChildError struct {
	ParentID uint
	Right    bool
}

func (e *MissingChildError) Error() string {
	side := "left"
	if e.Right {
		side = "right"
	}
	return fmt.Sprintf("%s: node %d has no %s child", ErrMissingChild, e.ParentID, side)
}

// Is makes errors.Is(err, ErrMissingChild) hold for MissingChildErrors.
func (e *MissingChildError) Is(target error) bool {
	return target == ErrMissingChild
}

func newPrediction(leaf *Node) *Prediction {
	return &Prediction{
		NodeID:             leaf.ID,
		Size:               leaf.Size,
		ClassProbabilities: copyFloats(leaf.ClassProbabilities),
		ClusterLabel:       leaf.ClusterLabel,
		RegressionData:     copyFloats(leaf.RegressionData),
	}
}

/*
PredictedClass returns the index of the most probable class and its
probability. Ties are resolved in favour of the lowest index. It returns
ErrCannotPredictFromEmptySet if no training sample reached the leaf.
*/
func (p *Prediction) PredictedClass() (int, float64, error) {
	if p.Size == 0 || len(p.ClassProbabilities) == 0 {
		return -1, 0, ErrCannotPredictFromEmptySet
	}
	best := 0
	for i, prob := range p.ClassProbabilities {
		if prob > p.ClassProbabilities[best] {
			best = i
		}
	}
	return best, p.ClassProbabilities[best], nil
}

func (p *Prediction) String() string {
	switch {
	case p.ClassProbabilities != nil:
		return fmt.Sprintf("node %d (%d samples): %v", p.NodeID, p.Size, p.ClassProbabilities)
	case p.RegressionData != nil:
		return fmt.Sprintf("node %d (%d samples): %v", p.NodeID, p.Size, p.RegressionData)
	}
	return fmt.Sprintf("node %d (%d samples): cluster %d", p.NodeID, p.Size, p.ClusterLabel)
}
