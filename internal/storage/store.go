// Package storage defines the record store the mirrors synchronize against.
//
// A RecordStore holds named collections of schema-less records. Each record is
// addressed by a store-assigned ID. Besides point reads and writes, a store
// pushes the full contents of a collection to subscribers whenever any writer
// changes it. Backends live in sub-packages (memory, sqlite, redis, mongo).
package storage

import (
	"context"
	"maps"
)

// Collection names used by the academy ledger.
const (
	Students = "students"
	Teachers = "teachers"
	Expenses = "expenses"
	Partners = "partners"
)

// Collections lists every collection in a stable order.
var Collections = []string{Students, Teachers, Expenses, Partners}

// Record is one schema-less document. The "id" key is managed by the store.
type Record map[string]any

// Clone returns a shallow copy of r.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	return maps.Clone(r)
}

// Snapshot is the full contents of a collection, keyed by record ID.
type Snapshot map[string]Record

// Listener receives the full current contents of a collection.
// A missing or empty collection is delivered as an empty (non-nil) Snapshot.
type Listener func(Snapshot)

// Subscription is a live listener on one collection.
type Subscription interface {
	// Unsubscribe stops delivery. Calling it more than once is harmless.
	Unsubscribe()

	// Done is closed once no more deliveries will happen, either because
	// Unsubscribe was called or because the listener dropped.
	Done() <-chan struct{}

	// Err reports why delivery ended. It is nil while the listener is live
	// and after a clean Unsubscribe, and wraps ErrStaleListener when the
	// underlying connection dropped.
	Err() error
}

// RecordStore defines the operations the mirrors need from a backend.
// This abstraction allows swapping backends (SQLite, Redis, MongoDB, memory)
// without changing the mirror or service layers.
type RecordStore interface {
	// Get returns every record of a collection. An absent collection yields
	// an empty Snapshot.
	Get(ctx context.Context, collection string) (Snapshot, error)

	// Lookup returns a single record, or ErrNotFound.
	Lookup(ctx context.Context, collection, id string) (Record, error)

	// Put stores a new record and returns the allocated ID. Any "id" key in
	// the record is ignored.
	Put(ctx context.Context, collection string, record Record) (string, error)

	// Patch merges the given fields into an existing record.
	// Returns ErrNotFound if the record does not exist.
	Patch(ctx context.Context, collection, id string, fields Record) error

	// Delete removes a record. Deleting a missing record is not an error.
	Delete(ctx context.Context, collection, id string) error

	// Subscribe registers a listener. It is called once right away with the
	// current contents and again after every change by any writer.
	Subscribe(ctx context.Context, collection string, fn Listener) (Subscription, error)

	// Close releases any resources held by the store.
	Close() error
}
