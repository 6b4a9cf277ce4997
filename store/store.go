/*
Package store keeps trained models under string IDs, so they can be grown
by one process and used to predict by another.
*/
package store

import (
	"bytes"
	"context"
	"fmt"

	"github.com/pbanos/arbor/model"
)

// Error is the type of the errors returned by stores.
type Error string

// ErrNotFound is returned when there is no model in the store with an ID.
const ErrNotFound = Error("model not found")

func (e Error) Error() string {
	return string(e)
}

/*
Store is an interface to manage a store where models can be created,
retrieved, updated and deleted.

All its methods take a context that may allow cancelling the operation
(thus forcing the return of an error) if the implementation allows it.
*/
type Store interface {
	// Create takes a model and stores it for the first time in the store,
	// returning the ID generated for it, or an error if the model cannot
	// be stored.
	Create(ctx context.Context, m model.Model) (string, error)
	// Get takes an id and returns the model in the store with that id,
	// ErrNotFound if there is none, or an error if the store cannot be
	// queried. The concrete type of the returned model is the one that was
	// stored.
	Get(ctx context.Context, id string) (model.Model, error)
	// Store takes an id and a model and stores the model under that id,
	// replacing any model already stored with it.
	Store(ctx context.Context, id string, m model.Model) error
	// Delete takes an id and deletes the model stored with it, if any.
	Delete(ctx context.Context, id string) error
	// Close closes the store. Implementations should free any resources
	// in use before returning (unless the context expires).
	Close(ctx context.Context) error
}

// Encode returns the data of the given model as written by its Save method.
func Encode(m model.Model) ([]byte, error) {
	var buf bytes.Buffer
	if err := m.Save(&buf); err != nil {
		return nil, fmt.Errorf("encoding model: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode returns the model in the given data.
func Decode(data []byte) (model.Model, error) {
	m, err := model.Read(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding model: %w", err)
	}
	return m, nil
}
