package storage

import "sync"

// Sub is a reusable Subscription implementation for backends. The backend's
// delivery loop watches Stopping and reports a drop with Fail.
type Sub struct {
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	doneOnce sync.Once

	mu  sync.Mutex
	err error

	// OnUnsubscribe, if set, runs once when Unsubscribe is first called.
	OnUnsubscribe func()
}

// NewSub creates a live subscription handle.
func NewSub() *Sub {
	return &Sub{stop: make(chan struct{}), done: make(chan struct{})}
}

// Unsubscribe implements Subscription.
func (s *Sub) Unsubscribe() {
	s.stopOnce.Do(func() {
		close(s.stop)
		if s.OnUnsubscribe != nil {
			s.OnUnsubscribe()
		}
	})
}

// Stopping is closed when the owner asked to stop delivery.
func (s *Sub) Stopping() <-chan struct{} { return s.stop }

// Done implements Subscription.
func (s *Sub) Done() <-chan struct{} { return s.done }

// Err implements Subscription.
func (s *Sub) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Finish marks the subscription as ended. A nil err means a clean detach.
// Only the first call has an effect.
func (s *Sub) Finish(err error) {
	s.doneOnce.Do(func() {
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		close(s.done)
	})
}

// Fail ends the subscription with a stale-listener error, unless the owner
// already asked to stop, in which case it is a clean finish.
func (s *Sub) Fail(collection string, cause error) {
	select {
	case <-s.stop:
		s.Finish(nil)
	default:
		s.Finish(Stale(collection, cause))
	}
}
