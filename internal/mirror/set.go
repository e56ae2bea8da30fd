package mirror

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/abira1/Academy-Management-System/internal/calculator"
	"github.com/abira1/Academy-Management-System/internal/storage"
)

// Set owns the four collection mirrors of one academy ledger.
type Set struct {
	Students *Students
	Teachers *Teachers
	Expenses *Expenses
	Partners *Partners

	mu     sync.Mutex
	detach []func()
}

// NewSet creates detached mirrors for every collection over store.
func NewSet(store storage.RecordStore, hasher Hasher, opts Options) *Set {
	return &Set{
		Students: NewStudents(store, opts),
		Teachers: NewTeachers(store, opts),
		Expenses: NewExpenses(store, opts),
		Partners: NewPartners(store, hasher, opts),
	}
}

// Start subscribes every mirror concurrently. When Start returns nil, each
// mirror holds the collection's contents as of its subscription. If any
// subscription fails, the ones that succeeded are detached again.
func (s *Set) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.detach != nil {
		return ErrAlreadySubscribed
	}

	detach := make([]func(), 4)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		detach[0], err = s.Students.Subscribe(gctx, nil)
		return err
	})
	g.Go(func() (err error) {
		detach[1], err = s.Teachers.Subscribe(gctx, nil)
		return err
	})
	g.Go(func() (err error) {
		detach[2], err = s.Expenses.Subscribe(gctx, nil)
		return err
	})
	g.Go(func() (err error) {
		detach[3], err = s.Partners.Subscribe(gctx, nil)
		return err
	})

	if err := g.Wait(); err != nil {
		for _, fn := range detach {
			if fn != nil {
				fn()
			}
		}
		return fmt.Errorf("start mirrors: %w", err)
	}
	s.detach = detach
	return nil
}

// Stop detaches every mirror. It is safe to call more than once.
func (s *Set) Stop() {
	s.mu.Lock()
	detach := s.detach
	s.detach = nil
	s.mu.Unlock()
	for _, fn := range detach {
		fn()
	}
}

// Ledger returns the current contents of all four mirrors.
func (s *Set) Ledger() calculator.Ledger {
	return calculator.Ledger{
		Students: s.Students.Snapshot(),
		Teachers: s.Teachers.Snapshot(),
		Expenses: s.Expenses.Snapshot(),
		Partners: s.Partners.Snapshot(),
	}
}

// Stale returns the drop errors of every stale mirror, keyed by collection.
func (s *Set) Stale() map[string]error {
	out := make(map[string]error)
	for _, m := range []interface {
		Collection() string
		Stale() error
	}{s.Students, s.Teachers, s.Expenses, s.Partners} {
		if err := m.Stale(); err != nil {
			out[m.Collection()] = err
		}
	}
	return out
}

// Err joins the drop errors of every stale mirror, or returns nil.
func (s *Set) Err() error {
	stale := s.Stale()
	var errs []error
	for _, c := range storage.Collections {
		if err, ok := stale[c]; ok {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
