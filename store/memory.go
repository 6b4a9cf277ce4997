package store

import (
	"context"
	"strconv"
	"sync"

	"github.com/pbanos/arbor/model"
)

type memoryStore struct {
	models map[string][]byte
	lock   *sync.RWMutex
	nextID uint64
}

// NewMemoryStore returns an implementation of Store with the process
// memory space as underlying backend. Models are kept encoded, so changes
// to a model after storing it do not alter the stored one.
func NewMemoryStore() Store {
	return &memoryStore{
		models: make(map[string][]byte),
		lock:   &sync.RWMutex{},
	}
}

func (ms *memoryStore) Create(ctx context.Context, m model.Model) (string, error) {
	data, err := Encode(m)
	if err != nil {
		return "", err
	}
	var id string
	err = ms.withLock(ctx, func(ctx context.Context) error {
		taken := true
		for taken {
			ms.nextID++
			id = strconv.FormatUint(ms.nextID, 10)
			_, taken = ms.models[id]
		}
		ms.models[id] = data
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (ms *memoryStore) Store(ctx context.Context, id string, m model.Model) error {
	data, err := Encode(m)
	if err != nil {
		return err
	}
	return ms.withLock(ctx, func(ctx context.Context) error {
		ms.models[id] = data
		return nil
	})
}

func (ms *memoryStore) Get(ctx context.Context, id string) (model.Model, error) {
	var data []byte
	err := ms.withRLock(ctx, func(ctx context.Context) error {
		data = ms.models[id]
		return nil
	})
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, ErrNotFound
	}
	return Decode(data)
}

func (ms *memoryStore) Delete(ctx context.Context, id string) error {
	return ms.withLock(ctx, func(ctx context.Context) error {
		delete(ms.models, id)
		return nil
	})
}

func (ms *memoryStore) Close(ctx context.Context) error {
	return nil
}

func (ms *memoryStore) withLock(ctx context.Context, f func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	gotLock := make(chan struct{})
	go func() {
		ms.lock.Lock()
		select {
		case <-ctx.Done():
			ms.lock.Unlock()
		case gotLock <- struct{}{}:
		}
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-gotLock:
		defer ms.lock.Unlock()
	}
	return f(ctx)
}

func (ms *memoryStore) withRLock(ctx context.Context, f func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	gotLock := make(chan struct{})
	go func() {
		ms.lock.RLock()
		select {
		case <-ctx.Done():
			ms.lock.RUnlock()
		case gotLock <- struct{}{}:
		}
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-gotLock:
		defer ms.lock.RUnlock()
	}
	return f(ctx)
}
