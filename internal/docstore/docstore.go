// Package docstore is the contract the ordering core has with the remote
// document store. Consumers define the interface; the MongoDB
// implementation lives next to it.
package docstore

import (
	"context"
	"errors"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("document with this key already exists")
)

// Document is one schemaless record as the store returns it. Typed
// schemas with fallbacks are applied at the package boundary of whoever
// reads it, not here.
type Document map[string]any

// Subscription is the explicit handle for a live query. Unsubscribe is
// idempotent and stops all future pushes.
type Subscription interface {
	Unsubscribe()
}

type Store interface {
	Create(ctx context.Context, collection string, doc Document) (string, error)
	Update(ctx context.Context, collection, id string, partial Document) error
	Delete(ctx context.Context, collection, id string) error
	Get(ctx context.Context, collection, id string) (Document, error)
	Find(ctx context.Context, collection string, filter Document) ([]Document, error)

	// Watch establishes a live subscription to the filtered collection.
	// Every push delivers the full current set of matching documents,
	// not a delta; the first push happens as soon as the initial query
	// completes. On a store error onError is called once and the
	// subscription stops delivering; the caller decides whether to
	// resubscribe.
	Watch(collection string, filter Document, onSnapshot func([]Document), onError func(error)) (Subscription, error)
}
