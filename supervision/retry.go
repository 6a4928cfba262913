package supervision

import (
	"context"
	"time"

	"github.com/flowchartsman/retry"
)

// Default backoff parameters. Chosen to resolve transient faults within
// a few seconds without hammering a struggling collaborator.
const (
	DefaultAttempts     = 3
	DefaultInitialDelay = 50 * time.Millisecond
	DefaultMaxDelay     = 2 * time.Second
)

// Backoff retries the failed work a bounded number of times with
// exponential backoff and jitter between attempts.
//
// The zero value is not usable; construct with NewBackoff.
type Backoff[T any] struct {
	attempts     int
	initialDelay time.Duration
	maxDelay     time.Duration
}

// NewBackoff creates a backoff strategy allowing up to attempts retries
// of the failed work, with delays growing exponentially from
// initialDelay and capped at maxDelay. Non-positive parameters fall
// back to the package defaults.
func NewBackoff[T any](attempts int, initialDelay, maxDelay time.Duration) *Backoff[T] {
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	if initialDelay <= 0 {
		initialDelay = DefaultInitialDelay
	}
	if maxDelay <= 0 {
		maxDelay = DefaultMaxDelay
	}
	return &Backoff[T]{
		attempts:     attempts,
		initialDelay: initialDelay,
		maxDelay:     maxDelay,
	}
}

// Recover re-runs the work until it succeeds or attempts are exhausted.
// Context cancellation stops the retry loop between attempts.
//
// The returned error, when non-nil, is the last attempt's error; the
// engine propagates the original cause to the caller regardless, per
// the escalation contract.
func (b *Backoff[T]) Recover(ctx context.Context, work Work[T], _ error) (T, error) {
	var result T

	// A fresh retrier per recovery keeps the strategy stateless and
	// safe for concurrent engines.
	r := retry.NewRetrier(b.attempts, b.initialDelay, b.maxDelay)
	err := r.RunContext(ctx, func(ctx context.Context) error {
		v, err := work(ctx)
		if err != nil {
			return err
		}
		result = v
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}

// Fallback wraps another strategy and runs a side-effecting action when
// that strategy declares final failure. The action's effects are opaque
// to the engine; the failure still propagates to the caller afterwards.
type Fallback[T any] struct {
	inner Strategy[T]
	then  func(ctx context.Context, cause error)
}

// NewFallback wraps inner with a final-failure action. A nil inner
// behaves like None (fail immediately, then run the action).
func NewFallback[T any](inner Strategy[T], then func(ctx context.Context, cause error)) *Fallback[T] {
	if inner == nil {
		inner = None[T]()
	}
	return &Fallback[T]{inner: inner, then: then}
}

// Recover implements Strategy.
func (f *Fallback[T]) Recover(ctx context.Context, work Work[T], cause error) (T, error) {
	v, err := f.inner.Recover(ctx, work, cause)
	if err != nil {
		if f.then != nil {
			f.then(ctx, err)
		}
		var zero T
		return zero, err
	}
	return v, nil
}
