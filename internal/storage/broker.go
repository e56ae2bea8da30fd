package storage

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by a store after Close.
var ErrClosed = errors.New("store closed")

// Loader reads the full contents of a collection for delivery.
type Loader func(ctx context.Context, collection string) (Snapshot, error)

// Broker fans change notifications out to in-process listeners. Each listener
// gets its own delivery goroutine, so deliveries to one listener are serialized
// and a slow listener never blocks a writer. Bursts of changes coalesce into a
// single re-read.
type Broker struct {
	load Loader

	mu     sync.Mutex
	subs   map[string]map[*brokerSub]struct{}
	closed bool
}

type brokerSub struct {
	*Sub
	collection string
	notify     chan struct{}
}

// NewBroker returns a broker that reads snapshots with load.
func NewBroker(load Loader) *Broker {
	return &Broker{load: load, subs: make(map[string]map[*brokerSub]struct{})}
}

// Subscribe registers fn, delivers the current contents before returning and
// then delivers again after every Notify for the collection.
func (b *Broker) Subscribe(ctx context.Context, collection string, fn Listener) (Subscription, error) {
	if err := CheckCollection(collection); err != nil {
		return nil, err
	}

	s := &brokerSub{Sub: NewSub(), collection: collection, notify: make(chan struct{}, 1)}
	s.OnUnsubscribe = func() { b.remove(s) }

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, ErrClosed
	}
	if b.subs[collection] == nil {
		b.subs[collection] = make(map[*brokerSub]struct{})
	}
	b.subs[collection][s] = struct{}{}
	b.mu.Unlock()

	snap, err := b.load(ctx, collection)
	if err != nil {
		b.remove(s)
		return nil, Transport("subscribe", collection, err)
	}
	fn(snap)

	go b.deliver(s, fn)
	return s, nil
}

func (b *Broker) deliver(s *brokerSub, fn Listener) {
	for {
		select {
		case <-s.Stopping():
			s.Finish(nil)
			return
		case _, ok := <-s.notify:
			if !ok {
				s.Fail(s.collection, ErrClosed)
				return
			}
			snap, err := b.load(context.Background(), s.collection)
			if err != nil {
				b.remove(s)
				s.Fail(s.collection, err)
				return
			}
			select {
			case <-s.Stopping():
				s.Finish(nil)
				return
			default:
			}
			fn(snap)
		}
	}
}

// Notify schedules a re-delivery to every listener of collection.
func (b *Broker) Notify(collection string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for s := range b.subs[collection] {
		select {
		case s.notify <- struct{}{}:
		default:
		}
	}
}

// Close drops every live listener. Listeners observe ErrStaleListener.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, set := range b.subs {
		for s := range set {
			close(s.notify)
		}
	}
	b.subs = nil
}

// Listeners returns the number of live listeners on collection.
func (b *Broker) Listeners(collection string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[collection])
}

func (b *Broker) remove(s *brokerSub) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if set, ok := b.subs[s.collection]; ok {
		delete(set, s)
	}
}
