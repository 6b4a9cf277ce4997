/*
Package inputsample provides an implementation of dataset.Sample that is read
from an io.Reader.
*/
package inputsample

import (
	"bufio"
	"fmt"
	"io"

	"github.com/pbanos/arbor/dataset"
	"github.com/pbanos/arbor/feature"
)

/*
readSample represents a sample whose feature values
are retrieved from a reader. A feature value will be
requested using a FeatureValueRequester before reading it.
*/
type readSample struct {
	obtainedValues        map[string]interface{}
	scanner               *bufio.Scanner
	featureValueRequester FeatureValueRequester
	features              []feature.Feature
}

/*
FeatureValueRequester represents a way to ask
for feature values and reject the given values.
*/
type FeatureValueRequester interface {
	RequestValueFor(feature.Feature) error
	RejectValueFor(feature.Feature, string, error) error
}

/*
New takes an io.Reader, a slice of features and a FeatureValueRequester
and returns a Sample.

The returned Sample ValueFor method reads feature values first
requesting them with the given FeatureValueRequester and
then parsing the values from the reader, one per line, with the Parse
method of the feature. Lines that fail to parse are rejected with the
FeatureValueRequester's RejectValueFor method and the next line is read.
Values are only requested once.

Attempting to obtain a value for a feature not in the given
features slice returns an error.
*/
func New(r io.Reader, features []feature.Feature, featureValueRequester FeatureValueRequester) dataset.Sample {
	scanner := bufio.NewScanner(r)
	return &readSample{make(map[string]interface{}), scanner, featureValueRequester, features}
}

func (rs *readSample) ValueFor(f feature.Feature) (interface{}, error) {
	value, ok := rs.obtainedValues[f.Name()]
	if ok {
		return value, nil
	}
	featureWithInfo := feature.Find(rs.features, f.Name())
	if featureWithInfo == nil {
		return nil, fmt.Errorf("have no information about feature %s, do not know how to read its value", f.Name())
	}
	err := rs.featureValueRequester.RequestValueFor(featureWithInfo)
	if err != nil {
		return nil, err
	}
	for rs.scanner.Scan() {
		line := rs.scanner.Text()
		value, perr := featureWithInfo.Parse(line)
		if perr == nil {
			rs.obtainedValues[f.Name()] = value
			return value, nil
		}
		err = rs.featureValueRequester.RejectValueFor(featureWithInfo, line, perr)
		if err != nil {
			return nil, err
		}
	}
	err = rs.scanner.Err()
	if err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("EOF when requesting value for %s", f.Name())
}
