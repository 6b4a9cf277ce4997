/*
Package redisstore provides a store.Store that keeps models in a Redis
database, each model under a key made of a prefix and its ID.
*/
package redisstore

import (
	"context"
	"fmt"

	"gopkg.in/redis.v5"

	"github.com/pbanos/arbor/model"
	"github.com/pbanos/arbor/store"
)

const idLength = 20

type redisStore struct {
	rc     *redis.Client
	prefix string
}

// New builds a store.Store backed by a redis DB, keeping models under keys
// with the given prefix.
func New(rc *redis.Client, prefix string) store.Store {
	return &redisStore{rc, prefix}
}

func (rs *redisStore) Create(ctx context.Context, m model.Model) (string, error) {
	data, err := store.Encode(m)
	if err != nil {
		return "", fmt.Errorf("creating model: %w", err)
	}
	var id string
	var ok bool
	for !ok {
		if err = ctx.Err(); err != nil {
			return "", err
		}
		id = randString(idLength)
		ok, err = rs.rc.SetNX(rs.keyFor(id), data, 0).Result()
		if err != nil {
			return "", fmt.Errorf("creating model in redis: %w", err)
		}
	}
	return id, nil
}

func (rs *redisStore) Get(ctx context.Context, id string) (model.Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := rs.rc.Get(rs.keyFor(id)).Bytes()
	if err == redis.Nil {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("retrieving model %q: %w", id, err)
	}
	m, err := store.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("retrieving model %q: %w", id, err)
	}
	return m, nil
}

func (rs *redisStore) Store(ctx context.Context, id string, m model.Model) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	redisID := rs.keyFor(id)
	data, err := store.Encode(m)
	if err != nil {
		return fmt.Errorf("storing model %q: %w", redisID, err)
	}
	if err = rs.rc.Set(redisID, data, 0).Err(); err != nil {
		return fmt.Errorf("storing model %q in redis: %w", redisID, err)
	}
	return nil
}

func (rs *redisStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	redisID := rs.keyFor(id)
	if err := rs.rc.Del(redisID).Err(); err != nil {
		return fmt.Errorf("deleting model %q from redis: %w", redisID, err)
	}
	return nil
}

func (rs *redisStore) Close(ctx context.Context) error {
	return rs.rc.Close()
}

func (rs *redisStore) keyFor(id string) string {
	return fmt.Sprintf("%s:%s", rs.prefix, id)
}
