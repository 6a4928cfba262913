// Package supervision decouples failure-recovery policy from the actor
// engine.
//
// The engine never retries anything itself. When a message handler
// fails, the engine hands the failure to a Strategy together with a
// re-invocable unit of work, and reacts to the verdict:
//
//   - a recovered value: the engine continues exactly as if the
//     original invocation had returned it;
//   - an error: final failure. The engine fails the message's reply
//     slot with the original error and moves on to the next message.
//
// What a strategy does in between (retry with backoff, run a fallback
// side effect, give up immediately) is opaque to the engine.
package supervision

import "context"

// Work is one re-invocable unit of failed work. For the engine this is
// "re-run the handler call that failed"; a strategy may invoke it any
// number of times, including zero.
type Work[T any] func(ctx context.Context) (T, error)

// Strategy decides what happens after a unit of work has failed once.
//
// Recover receives the work and the error from the original attempt.
// It returns either a recovered value, or a non-nil error declaring
// final failure. Strategies must be safe for use by many engines
// concurrently.
type Strategy[T any] interface {
	Recover(ctx context.Context, work Work[T], cause error) (T, error)
}

// StrategyFunc adapts a plain function to a Strategy.
type StrategyFunc[T any] func(ctx context.Context, work Work[T], cause error) (T, error)

// Recover implements Strategy.
func (f StrategyFunc[T]) Recover(ctx context.Context, work Work[T], cause error) (T, error) {
	return f(ctx, work, cause)
}

// None returns a strategy that never recovers: every failure is final.
// This is the behavior an engine without a configured supervisor gets.
func None[T any]() Strategy[T] {
	return StrategyFunc[T](func(_ context.Context, _ Work[T], cause error) (T, error) {
		var zero T
		return zero, cause
	})
}
