package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/redis.v5"

	"github.com/pbanos/arbor/model"
	"github.com/pbanos/arbor/store"
	"github.com/pbanos/arbor/store/redisstore"
)

const (
	modelLocationHelp = "path to a model file, or a redis://HOST:PORT/ID URL of a model in a Redis store"
	redisKeyPrefix    = "arbor:models"
)

func isRedisLocation(location string) bool {
	return strings.HasPrefix(location, "redis://")
}

// openStore connects to the Redis store at the given URL and returns it
// along with the model ID in the URL path, if any.
func openStore(location string) (store.Store, string, error) {
	u, err := url.Parse(location)
	if err != nil {
		return nil, "", fmt.Errorf("parsing redis URL %s: %v", location, err)
	}
	opts := &redis.Options{Addr: u.Host}
	if u.User != nil {
		opts.Password, _ = u.User.Password()
	}
	rc := redis.NewClient(opts)
	if err = rc.Ping().Err(); err != nil {
		rc.Close()
		return nil, "", fmt.Errorf("connecting to redis at %s: %v", u.Host, err)
	}
	return redisstore.New(rc, redisKeyPrefix), strings.Trim(u.Path, "/"), nil
}

/*
saveModel writes the model to the given location: a file, STDOUT if empty,
or a Redis store. Models created in a Redis store get a new ID that is
printed on STDOUT, unless the URL names one.
*/
func (rcc *rootCmdConfig) saveModel(ctx context.Context, m model.Model, location string) error {
	if isRedisLocation(location) {
		s, id, err := openStore(location)
		if err != nil {
			return err
		}
		defer s.Close(ctx)
		if id != "" {
			rcc.Logf("Storing model with id %s...", id)
			return s.Store(ctx, id, m)
		}
		id, err = s.Create(ctx, m)
		if err != nil {
			return err
		}
		fmt.Println(id)
		return nil
	}
	f := os.Stdout
	if location != "" {
		var err error
		f, err = os.Create(location)
		if err != nil {
			return err
		}
		defer f.Close()
	}
	return m.Save(f)
}

// loadModel reads the model at the given file path or Redis URL.
func (rcc *rootCmdConfig) loadModel(ctx context.Context, location string) (model.Model, error) {
	if isRedisLocation(location) {
		s, id, err := openStore(location)
		if err != nil {
			return nil, err
		}
		defer s.Close(ctx)
		if id == "" {
			return nil, fmt.Errorf("redis URL %s names no model id", location)
		}
		rcc.Logf("Retrieving model with id %s...", id)
		return s.Get(ctx, id)
	}
	f, err := os.Open(location)
	if err != nil {
		return nil, fmt.Errorf("reading model from %s: %v", location, err)
	}
	defer f.Close()
	m, err := model.Read(f)
	if err != nil {
		return nil, fmt.Errorf("parsing model from %s: %w", location, err)
	}
	return m, nil
}
