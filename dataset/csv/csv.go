/*
Package csv reads samples from and writes samples to CSV streams whose
header names the features of each column.
*/
package csv

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/pbanos/arbor/dataset"
	"github.com/pbanos/arbor/feature"
)

type csvWriter struct {
	count    int
	features []feature.Feature
	w        *csv.Writer
}

/*
ReadSamples takes an io.Reader for a CSV stream and a slice of features and
returns the samples parsed from the reader or an error.

The header or first row of the CSV content is expected to consist of the names
of the features in the given slice. The rest of the rows should consist of valid
values for all the features and/or the '?' string to indicate an undefined value.
*/
func ReadSamples(reader io.Reader, features []feature.Feature) ([]dataset.Sample, error) {
	samples := []dataset.Sample{}
	err := ReadSamplesBySample(reader, features, func(_ int, s dataset.Sample) (bool, error) {
		samples = append(samples, s)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return samples, nil
}

/*
ReadSamplesBySample takes an io.Reader for a CSV stream, a slice of features
and a lambda function on an integer and a dataset.Sample that returns a
boolean value. It parses the samples from the reader and for each it calls
the lambda function with the sample and its index as parameters. If the
lambda function returns true, it will continue processing the next sample,
otherwise it will stop. An error is returned if something goes wrong when
reading the stream or parsing a sample.
*/
func ReadSamplesBySample(reader io.Reader, features []feature.Feature, lambda func(int, dataset.Sample) (bool, error)) error {
	featuresByName := featureSliceToMap(features)
	r := csv.NewReader(reader)
	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("reading header: %v", err)
	}
	features, err = parseFeaturesFromCSVHeader(header, featuresByName)
	if err != nil {
		return err
	}
	for l := 2; ; l++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading body: %v", err)
		}
		sample, err := parseSampleFromCSVRow(row, features)
		if err != nil {
			return fmt.Errorf("parsing line %d: %v", l, err)
		}
		ok, err := lambda(l-2, sample)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
	}
	return nil
}

/*
ReadSamplesFromFilePath takes a filepath string and a slice of features,
opens the file to which the filepath points to and uses ReadSamples to
return the samples in it or an error. If the filepath is "" os.Stdin is
read instead.
*/
func ReadSamplesFromFilePath(filepath string, features []feature.Feature) ([]dataset.Sample, error) {
	var f *os.File
	var err error
	if filepath == "" {
		f = os.Stdin
	} else {
		f, err = os.Open(filepath)
		if err != nil {
			return nil, fmt.Errorf("reading samples: %v", err)
		}
		defer f.Close()
	}
	samples, err := ReadSamples(f, features)
	if err != nil {
		err = fmt.Errorf("parsing CSV file %s: %v", filepath, err)
	}
	return samples, err
}

/*
NewWriter takes an io.Writer and a slice of feature.Features and
returns a dataset.Writer that will write any samples on the io.Writer,
after a header with the names of the features.
*/
func NewWriter(writer io.Writer, features []feature.Feature) (dataset.Writer, error) {
	w := csv.NewWriter(writer)
	if err := w.Write(feature.Names(features)); err != nil {
		return nil, fmt.Errorf("writing CSV header: %v", err)
	}
	return &csvWriter{features: features, w: w}, nil
}

func parseFeaturesFromCSVHeader(header []string, features map[string]feature.Feature) ([]feature.Feature, error) {
	featureOrder := []feature.Feature{}
	for i, name := range header {
		f, ok := features[name]
		if ok {
			featureOrder = append(featureOrder, f)
		} else {
			if i != len(header)-1 {
				return nil, fmt.Errorf("parsing header: reference to unknown feature %s", name)
			}
		}
	}
	return featureOrder, nil
}

func parseSampleFromCSVRow(row []string, featureOrder []feature.Feature) (dataset.Sample, error) {
	featureValues := make(map[string]interface{})
	for i, f := range featureOrder {
		v := row[i]
		if v == feature.Undefined {
			featureValues[f.Name()] = nil
			continue
		}
		value, err := f.Parse(v)
		if err != nil {
			return nil, err
		}
		featureValues[f.Name()] = value
	}
	return dataset.NewSample(featureValues), nil
}

func (cw *csvWriter) Write(ctx context.Context, samples []dataset.Sample) (int, error) {
	for n, s := range samples {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		if err := cw.writeSample(s); err != nil {
			return n, err
		}
	}
	return len(samples), nil
}

func (cw *csvWriter) writeSample(sample dataset.Sample) error {
	record := make([]string, len(cw.features))
	for j, f := range cw.features {
		v, err := sample.ValueFor(f)
		if err != nil {
			return err
		}
		switch v := v.(type) {
		case nil:
			record[j] = feature.Undefined
		case float64:
			record[j] = strconv.FormatFloat(v, 'g', -1, 64)
		default:
			record[j] = fmt.Sprintf("%v", v)
		}
	}
	err := cw.w.Write(record)
	if err != nil {
		return fmt.Errorf("writing CSV row for sample %d: %v", cw.count+1, err)
	}
	cw.count++
	return nil
}

func (cw *csvWriter) Flush() error {
	cw.w.Flush()
	return cw.w.Error()
}

func featureSliceToMap(features []feature.Feature) map[string]feature.Feature {
	result := make(map[string]feature.Feature)
	for _, f := range features {
		result[f.Name()] = f
	}
	return result
}
