package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrStaleListener reports a subscription whose connection dropped
	// without an explicit Unsubscribe. Stores do not reconnect on their own.
	ErrStaleListener = errors.New("listener dropped")

	// ErrUnknownCollection is returned for collection names outside Collections.
	ErrUnknownCollection = errors.New("unknown collection")
)

// TransportError reports that the backend was unreachable or rejected a
// request. The core never retries these.
type TransportError struct {
	Op         string
	Collection string
	Err        error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Transport wraps err as a TransportError unless it is nil or one of the
// sentinel errors callers branch on.
func Transport(op, collection string, err error) error {
	if err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, ErrUnknownCollection) {
		return err
	}
	var te *TransportError
	if errors.As(err, &te) {
		return err
	}
	return &TransportError{Op: op, Collection: collection, Err: err}
}

// CheckCollection returns ErrUnknownCollection for names outside Collections.
func CheckCollection(name string) error {
	for _, c := range Collections {
		if c == name {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownCollection, name)
}

// Stale wraps cause as a stale-listener error.
func Stale(collection string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%w: %s", ErrStaleListener, collection)
	}
	return fmt.Errorf("%w: %s: %v", ErrStaleListener, collection, cause)
}
