package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a requested snapshot does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnavailable is returned when a remote backend cannot be reached.
	ErrUnavailable = errors.New("store unavailable")

	// ErrUnknownBackend is returned by Open for an unrecognised backend name.
	ErrUnknownBackend = errors.New("unknown store backend")
)

// OpError records a failed backend call. Transient failures are repeated by
// [Retry.Do]; all others fail at once.
type OpError struct {
	Backend   string
	Op        string
	Key       string
	Err       error
	Transient bool
}

func (e *OpError) Error() string {
	if e.Key == "" {
		return e.Backend + " " + e.Op + ": " + e.Err.Error()
	}
	return e.Backend + " " + e.Op + " " + e.Key + ": " + e.Err.Error()
}

func (e *OpError) Unwrap() error { return e.Err }

// transient wraps err from a backend call that may succeed when repeated.
func transient(backend, op, key string, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Backend: backend, Op: op, Key: key, Err: err, Transient: true}
}

// IsTransient reports whether err wraps a transient backend failure.
func IsTransient(err error) bool {
	var oe *OpError
	return errors.As(err, &oe) && oe.Transient
}

// Retry repeats transient failures with exponential backoff.
type Retry struct {
	// Attempts is the total number of calls, at least one.
	Attempts int
	// Delay is the first pause; it doubles after every failure.
	Delay time.Duration
}

// DefaultRetry makes three attempts, pausing 250ms and then 500ms.
var DefaultRetry = Retry{Attempts: 3, Delay: 250 * time.Millisecond}

// Do calls fn until it succeeds, fails with a non-transient error, runs out
// of attempts or ctx is done.
func (r Retry) Do(ctx context.Context, fn func() error) error {
	attempts := max(r.Attempts, 1)
	delay := r.Delay
	var err error
	for i := range attempts {
		if err = fn(); err == nil || !IsTransient(err) {
			return err
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			delay *= 2
		}
	}
	return err
}
