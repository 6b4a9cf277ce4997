package arbor

import (
	"github.com/pbanos/arbor/dataset"
	"github.com/pbanos/arbor/feature"
	"github.com/pbanos/arbor/tree"
)

/*
trainingSet is the view of a dataset the builder grows trees from.

Its pure method returns whether the set needs no further splitting: a
single class for classification data, identical targets for regression
data, identical inputs for unlabeled data. Empty sets are pure.

Its splitError method returns the error of splitting the set at the given
feature and threshold. It must be safe to call concurrently.

Its fill method sets the size and payload of the node the set reaches.
*/
type trainingSet interface {
	dataset.Dataset
	pure() bool
	splitError(featureIndex uint, threshold float64) float64
	partition(c feature.Criterion) (trainingSet, trainingSet, error)
	fill(n *tree.Node)
}

type classificationSet struct {
	*dataset.ClassificationData
	classLabels []uint
	classIndex  map[uint]int
}

func newClassificationSet(cd *dataset.ClassificationData, classLabels []uint) *classificationSet {
	classIndex := make(map[uint]int, len(classLabels))
	for i, l := range classLabels {
		classIndex[l] = i
	}
	return &classificationSet{cd, classLabels, classIndex}
}

func (cs *classificationSet) pure() bool {
	return cs.NumClasses() <= 1
}

func (cs *classificationSet) splitError(featureIndex uint, threshold float64) float64 {
	left := make([]float64, len(cs.classLabels))
	right := make([]float64, len(cs.classLabels))
	for i := 0; i < cs.NumSamples(); i++ {
		s := cs.Sample(i)
		if s.Input[featureIndex] >= threshold {
			right[cs.classIndex[s.ClassLabel]]++
		} else {
			left[cs.classIndex[s.ClassLabel]]++
		}
	}
	return giniError(left, right)
}

func (cs *classificationSet) partition(c feature.Criterion) (trainingSet, trainingSet, error) {
	left, right, err := cs.Partition(c)
	if err != nil {
		return nil, nil, err
	}
	return &classificationSet{left, cs.classLabels, cs.classIndex}, &classificationSet{right, cs.classLabels, cs.classIndex}, nil
}

func (cs *classificationSet) fill(n *tree.Node) {
	n.Size = uint(cs.NumSamples())
	n.ClassProbabilities = cs.ClassProbabilities(cs.classLabels)
}

type regressionSet struct {
	*dataset.RegressionData
}

func (rs *regressionSet) pure() bool {
	for i := 1; i < rs.NumSamples(); i++ {
		if !equalVectors(rs.Target(0), rs.Target(i)) {
			return false
		}
	}
	return true
}

func (rs *regressionSet) splitError(featureIndex uint, threshold float64) float64 {
	return featureMSEError(rs, featureIndex, threshold)
}

func (rs *regressionSet) partition(c feature.Criterion) (trainingSet, trainingSet, error) {
	left, right, err := rs.Partition(c)
	if err != nil {
		return nil, nil, err
	}
	return &regressionSet{left}, &regressionSet{right}, nil
}

func (rs *regressionSet) fill(n *tree.Node) {
	n.Size = uint(rs.NumSamples())
	n.RegressionData = rs.TargetMean()
}

type unlabeledSet struct {
	*dataset.UnlabeledData
}

func (us *unlabeledSet) pure() bool {
	for i := 1; i < us.NumSamples(); i++ {
		if !equalVectors(us.Input(0), us.Input(i)) {
			return false
		}
	}
	return true
}

func (us *unlabeledSet) splitError(featureIndex uint, threshold float64) float64 {
	return featureMSEError(us, featureIndex, threshold)
}

func (us *unlabeledSet) partition(c feature.Criterion) (trainingSet, trainingSet, error) {
	left, right, err := us.Partition(c)
	if err != nil {
		return nil, nil, err
	}
	return &unlabeledSet{left}, &unlabeledSet{right}, nil
}

func (us *unlabeledSet) fill(n *tree.Node) {
	n.Size = uint(us.NumSamples())
}

func equalVectors(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
