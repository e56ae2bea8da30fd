// Package mirror keeps an in-memory, always-current copy of each record
// collection and writes changes through to the record store.
//
// A Mirror never applies its own writes locally. Add, Update and Delete only
// talk to the store; the change becomes visible once the store pushes the
// collection back through the subscription. All writers therefore converge
// on the store's view, whichever process made the change.
package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/abira1/Academy-Management-System/internal/metrics"
	"github.com/abira1/Academy-Management-System/internal/storage"
)

// ErrAlreadySubscribed is returned when a mirror is attached twice without
// detaching in between.
var ErrAlreadySubscribed = errors.New("mirror already subscribed")

// WriteError reports a write-through call the store did not acknowledge.
type WriteError struct {
	Op         string
	Collection string
	Err        error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Codec converts between typed records and store records for one collection.
// Encoding is where validation and derived fields are applied. existing is
// the mirror's current view and may be used for cross-record checks.
type Codec[T, P any] interface {
	Collection() string
	ID(v T) string
	EncodeNew(v T, existing []T) (storage.Record, error)
	EncodePatch(current T, patch P, existing []T) (storage.Record, error)
	Decode(rec storage.Record) (T, error)
}

// Options configures a Mirror.
type Options struct {
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// Mirror is the local copy of one collection.
type Mirror[T, P any] struct {
	store  storage.RecordStore
	codec  Codec[T, P]
	logger *slog.Logger
	m      *metrics.Metrics

	mu       sync.RWMutex
	items    []T
	order    []string
	attached bool
	gen      uint64
	sub      storage.Subscription
	stale    error
}

// New creates a detached mirror. Call Subscribe to start receiving pushes.
func New[T, P any](store storage.RecordStore, codec Codec[T, P], opts Options) *Mirror[T, P] {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Mirror[T, P]{
		store:  store,
		codec:  codec,
		logger: logger.With("collection", codec.Collection()),
		m:      opts.Metrics,
	}
}

// Collection returns the store collection this mirror follows.
func (m *Mirror[T, P]) Collection() string {
	return m.codec.Collection()
}

// Add validates v and writes it as a new record. The returned value carries
// the store-assigned ID and any derived fields. It does not appear in
// Snapshot until the store pushes it back.
func (m *Mirror[T, P]) Add(ctx context.Context, v T) (T, error) {
	var zero T
	rec, err := m.codec.EncodeNew(v, m.Snapshot())
	if err != nil {
		return zero, err
	}

	started := time.Now()
	id, err := m.store.Put(ctx, m.Collection(), rec)
	m.m.Wrote(m.Collection(), "add", started, err)
	if err != nil {
		return zero, m.writeError("add", err)
	}

	rec = rec.Clone()
	rec["id"] = id
	out, err := m.codec.Decode(rec)
	if err != nil {
		return zero, fmt.Errorf("decode added record: %w", err)
	}
	m.logger.Debug("record added", "id", id)
	return out, nil
}

// Update merges patch into the stored record with the given ID and returns
// the record as stored after the merge, which may include changes by other
// writers. Only fields present in the patch and fields derived from them
// are sent. A missing record yields a WriteError wrapping
// storage.ErrNotFound.
func (m *Mirror[T, P]) Update(ctx context.Context, id string, patch P) (T, error) {
	var zero T
	started := time.Now()

	rec, err := m.store.Lookup(ctx, m.Collection(), id)
	if err != nil {
		m.m.Wrote(m.Collection(), "update", started, err)
		return zero, m.writeError("update", err)
	}
	current, err := m.codec.Decode(rec)
	if err != nil {
		return zero, fmt.Errorf("decode stored record %s: %w", id, err)
	}

	fields, err := m.codec.EncodePatch(current, patch, m.Snapshot())
	if err != nil {
		return zero, err
	}

	err = m.store.Patch(ctx, m.Collection(), id, fields)
	m.m.Wrote(m.Collection(), "update", started, err)
	if err != nil {
		return zero, m.writeError("update", err)
	}

	stored, err := m.store.Lookup(ctx, m.Collection(), id)
	if errors.Is(err, storage.ErrNotFound) {
		return zero, m.writeError("update", err)
	}
	if err != nil {
		return zero, fmt.Errorf("read back updated record %s: %w", id, err)
	}
	out, err := m.codec.Decode(stored)
	if err != nil {
		return zero, fmt.Errorf("decode updated record %s: %w", id, err)
	}
	m.logger.Debug("record updated", "id", id, "fields", len(fields))
	return out, nil
}

// Delete removes the record with the given ID. Deleting a record that does
// not exist succeeds.
func (m *Mirror[T, P]) Delete(ctx context.Context, id string) error {
	started := time.Now()
	err := m.store.Delete(ctx, m.Collection(), id)
	m.m.Wrote(m.Collection(), "delete", started, err)
	if err != nil {
		return m.writeError("delete", err)
	}
	m.logger.Debug("record deleted", "id", id)
	return nil
}

func (m *Mirror[T, P]) writeError(op string, err error) error {
	m.logger.Warn("write rejected", "op", op, "error", err)
	return &WriteError{Op: op, Collection: m.Collection(), Err: err}
}

// Subscribe attaches the mirror to its collection. The current contents are
// applied, and onChange called with them, before Subscribe returns; later
// pushes are applied as they arrive. onChange may be nil.
//
// The returned function detaches the mirror and may be called any number of
// times. A mirror can be subscribed again after detaching.
func (m *Mirror[T, P]) Subscribe(ctx context.Context, onChange func([]T)) (func(), error) {
	m.mu.Lock()
	if m.attached {
		m.mu.Unlock()
		return nil, ErrAlreadySubscribed
	}
	m.attached = true
	m.gen++
	gen := m.gen
	m.stale = nil
	m.mu.Unlock()

	// The store delivers the first snapshot synchronously, so the lock
	// must not be held here.
	sub, err := m.store.Subscribe(ctx, m.Collection(), func(snap storage.Snapshot) {
		m.apply(gen, snap, onChange)
	})
	if err != nil {
		m.mu.Lock()
		if m.gen == gen {
			m.attached = false
		}
		m.mu.Unlock()
		return nil, fmt.Errorf("subscribe %s: %w", m.Collection(), err)
	}

	m.mu.Lock()
	m.sub = sub
	m.mu.Unlock()
	m.m.SetStale(m.Collection(), false)

	go m.watch(gen, sub)

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			if m.gen == gen {
				m.sub = nil
				m.attached = false
			}
			m.mu.Unlock()
			sub.Unsubscribe()
		})
	}, nil
}

func (m *Mirror[T, P]) watch(gen uint64, sub storage.Subscription) {
	<-sub.Done()
	err := sub.Err()
	if err == nil {
		return
	}

	m.mu.Lock()
	if m.gen != gen || !m.attached {
		m.mu.Unlock()
		return
	}
	m.stale = err
	m.sub = nil
	m.attached = false
	m.mu.Unlock()

	m.m.SetStale(m.Collection(), true)
	m.logger.Error("listener dropped, mirror is stale", "error", err)
}

// apply replaces the mirror contents with snap. Records already held keep
// their position; new ones are appended in ID order; records missing from
// snap are dropped. Records that fail to decode are skipped. Pushes that
// arrive after the mirror was detached are ignored.
func (m *Mirror[T, P]) apply(gen uint64, snap storage.Snapshot, onChange func([]T)) {
	m.mu.Lock()
	if !m.attached || m.gen != gen {
		m.mu.Unlock()
		return
	}
	seen := make(map[string]bool, len(snap))
	items := make([]T, 0, len(snap))
	order := make([]string, 0, len(snap))

	add := func(id string) {
		seen[id] = true
		rec := snap[id].Clone()
		if rec == nil {
			rec = storage.Record{}
		}
		rec["id"] = id
		v, err := m.codec.Decode(rec)
		if err != nil {
			m.m.DecodeFailed(m.Collection())
			m.logger.Warn("skipping undecodable record", "id", id, "error", err)
			return
		}
		items = append(items, v)
		order = append(order, id)
	}

	for _, id := range m.order {
		if _, ok := snap[id]; ok {
			add(id)
		}
	}
	fresh := make([]string, 0, len(snap))
	for id := range snap {
		if !seen[id] {
			fresh = append(fresh, id)
		}
	}
	sort.Strings(fresh)
	for _, id := range fresh {
		add(id)
	}

	m.items = items
	m.order = order
	out := make([]T, len(items))
	copy(out, items)
	m.mu.Unlock()

	m.m.Delivered(m.Collection(), len(out))
	if onChange != nil {
		onChange(out)
	}
}

// Snapshot returns a copy of the mirror's current contents.
func (m *Mirror[T, P]) Snapshot() []T {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]T, len(m.items))
	copy(out, m.items)
	return out
}

// Find returns the record with the given ID from the mirror.
func (m *Mirror[T, P]) Find(id string) (T, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i, rid := range m.order {
		if rid == id {
			return m.items[i], true
		}
	}
	var zero T
	return zero, false
}

// Subscribed reports whether the mirror is attached to a live listener.
func (m *Mirror[T, P]) Subscribed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.attached
}

// Stale returns the error that dropped the mirror's listener, or nil.
// A stale mirror keeps its last contents but receives no more pushes until
// it is subscribed again.
func (m *Mirror[T, P]) Stale() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stale
}

// encode turns a typed value into a store record through its JSON form.
func encode(v any) (storage.Record, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var rec storage.Record
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, err
	}
	delete(rec, "id")
	return rec, nil
}

// decode fills out from a store record through its JSON form.
func decode(rec storage.Record, out any) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}
