// Package memory provides an in-process RecordStore used by tests and
// ephemeral runs. It behaves like a remote store: writes are acknowledged
// first and listeners see the change asynchronously.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/abira1/Academy-Management-System/internal/storage"
)

var _ storage.RecordStore = (*Store)(nil)

// Store keeps collections in maps guarded by a mutex.
type Store struct {
	mu     sync.RWMutex
	data   map[string]storage.Snapshot
	broker *storage.Broker

	// failWith, when set, makes every write fail with this error.
	failWith error
}

// New creates an empty store.
func New() *Store {
	s := &Store{data: make(map[string]storage.Snapshot)}
	s.broker = storage.NewBroker(s.Get)
	return s
}

// FailWrites makes subsequent writes fail with err. Pass nil to restore.
func (s *Store) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = err
}

// Get implements storage.RecordStore.
func (s *Store) Get(ctx context.Context, collection string) (storage.Snapshot, error) {
	if err := storage.CheckCollection(collection); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(storage.Snapshot, len(s.data[collection]))
	for id, rec := range s.data[collection] {
		out[id] = rec.Clone()
	}
	return out, nil
}

// Lookup implements storage.RecordStore.
func (s *Store) Lookup(ctx context.Context, collection, id string) (storage.Record, error) {
	if err := storage.CheckCollection(collection); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.data[collection][id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return rec.Clone(), nil
}

// Put implements storage.RecordStore.
func (s *Store) Put(ctx context.Context, collection string, record storage.Record) (string, error) {
	if err := storage.CheckCollection(collection); err != nil {
		return "", err
	}
	id := uuid.New().String()

	s.mu.Lock()
	if s.failWith != nil {
		err := s.failWith
		s.mu.Unlock()
		return "", storage.Transport("put", collection, err)
	}
	rec := record.Clone()
	if rec == nil {
		rec = storage.Record{}
	}
	rec["id"] = id
	if s.data[collection] == nil {
		s.data[collection] = make(storage.Snapshot)
	}
	s.data[collection][id] = rec
	s.mu.Unlock()

	s.broker.Notify(collection)
	return id, nil
}

// Patch implements storage.RecordStore.
func (s *Store) Patch(ctx context.Context, collection, id string, fields storage.Record) error {
	if err := storage.CheckCollection(collection); err != nil {
		return err
	}
	s.mu.Lock()
	if s.failWith != nil {
		err := s.failWith
		s.mu.Unlock()
		return storage.Transport("patch", collection, err)
	}
	rec, ok := s.data[collection][id]
	if !ok {
		s.mu.Unlock()
		return storage.ErrNotFound
	}
	merged := rec.Clone()
	for k, v := range fields {
		if k == "id" {
			continue
		}
		merged[k] = v
	}
	s.data[collection][id] = merged
	s.mu.Unlock()

	s.broker.Notify(collection)
	return nil
}

// Delete implements storage.RecordStore.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if err := storage.CheckCollection(collection); err != nil {
		return err
	}
	s.mu.Lock()
	if s.failWith != nil {
		err := s.failWith
		s.mu.Unlock()
		return storage.Transport("delete", collection, err)
	}
	_, existed := s.data[collection][id]
	delete(s.data[collection], id)
	s.mu.Unlock()

	if existed {
		s.broker.Notify(collection)
	}
	return nil
}

// Subscribe implements storage.RecordStore.
func (s *Store) Subscribe(ctx context.Context, collection string, fn storage.Listener) (storage.Subscription, error) {
	return s.broker.Subscribe(ctx, collection, fn)
}

// Listeners returns the number of live listeners on collection.
func (s *Store) Listeners(collection string) int {
	return s.broker.Listeners(collection)
}

// Close drops all listeners.
func (s *Store) Close() error {
	s.broker.Close()
	return nil
}
