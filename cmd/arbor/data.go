package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	mgo "gopkg.in/mgo.v2"

	"github.com/pbanos/arbor/dataset"
	"github.com/pbanos/arbor/dataset/csv"
	"github.com/pbanos/arbor/dataset/mongodataset"
	"github.com/pbanos/arbor/dataset/sqldataset"
	"github.com/pbanos/arbor/dataset/sqldataset/pgadapter"
	"github.com/pbanos/arbor/dataset/sqldataset/sqlite3adapter"
	"github.com/pbanos/arbor/feature"
)

const dataSourceHelp = "path to a CSV (.csv) or SQLite3 (.db) file, a PostgreSQL DB connection URL or a MongoDB connection URL"

type sourceKind int

const (
	csvSource sourceKind = iota
	sqlite3Source
	postgreSQLSource
	mongoDBSource
)

func dataSourceKind(location string) sourceKind {
	switch {
	case strings.HasPrefix(location, "postgresql://") || strings.HasPrefix(location, "postgres://"):
		return postgreSQLSource
	case strings.HasPrefix(location, "mongodb://"):
		return mongoDBSource
	case strings.HasSuffix(location, ".db"):
		return sqlite3Source
	}
	return csvSource
}

func sqlAdapter(kind sourceKind, location string) (sqldataset.Adapter, error) {
	if kind == postgreSQLSource {
		return pgadapter.New(location)
	}
	return sqlite3adapter.New(location)
}

/*
readSamples reads the samples at the given location with values for the
given features. An empty location means CSV on STDIN.
*/
func (rcc *rootCmdConfig) readSamples(ctx context.Context, location string, features []feature.Feature) ([]dataset.Sample, error) {
	switch kind := dataSourceKind(location); kind {
	case sqlite3Source, postgreSQLSource:
		rcc.Logf("Opening SQL adapter for %s to read samples...", location)
		a, err := sqlAdapter(kind, location)
		if err != nil {
			return nil, err
		}
		defer a.Close()
		return sqldataset.ReadSamples(ctx, a, features)
	case mongoDBSource:
		rcc.Logf("Connecting to %s to read samples...", location)
		session, err := mgo.Dial(location)
		if err != nil {
			return nil, err
		}
		defer session.Close()
		mds, err := mongodataset.Open(ctx, session, features)
		if err != nil {
			return nil, err
		}
		return mds.Samples(ctx)
	}
	if location == "" {
		rcc.Logf("Reading samples from STDIN...")
	} else {
		rcc.Logf("Opening %s to read samples...", location)
	}
	samples, err := csv.ReadSamplesFromFilePath(location, features)
	if err != nil {
		return nil, fmt.Errorf("reading samples: %v", err)
	}
	return samples, nil
}

/*
sampleWriter returns a dataset.Writer for the given location and a function
to release it once flushed. An empty location means CSV on STDOUT.
*/
func (rcc *rootCmdConfig) sampleWriter(ctx context.Context, location string, features []feature.Feature) (dataset.Writer, func() error, error) {
	switch kind := dataSourceKind(location); kind {
	case sqlite3Source, postgreSQLSource:
		rcc.Logf("Opening SQL adapter for %s to write samples...", location)
		a, err := sqlAdapter(kind, location)
		if err != nil {
			return nil, nil, err
		}
		w, err := sqldataset.NewWriter(ctx, a, features)
		if err != nil {
			a.Close()
			return nil, nil, err
		}
		return w, a.Close, nil
	case mongoDBSource:
		rcc.Logf("Connecting to %s to write samples...", location)
		session, err := mgo.Dial(location)
		if err != nil {
			return nil, nil, err
		}
		w, err := mongodataset.Open(ctx, session, features)
		if err != nil {
			session.Close()
			return nil, nil, err
		}
		return w, func() error { session.Close(); return nil }, nil
	}
	f := os.Stdout
	closer := func() error { return nil }
	if location != "" {
		rcc.Logf("Creating %s to write samples...", location)
		var err error
		f, err = os.Create(location)
		if err != nil {
			return nil, nil, err
		}
		closer = f.Close
	}
	w, err := csv.NewWriter(f, features)
	if err != nil {
		closer()
		return nil, nil, err
	}
	return w, closer, nil
}
