package persistence

import (
	"context"
	"sync"

	"github.com/scalaz/scalaz-actors/journal"
)

// Future is the reply slot for one submitted message. It is fulfilled
// exactly once, with a value or an error, never both and never twice.
// Slots are never shared or reused across messages.
type Future struct {
	once  sync.Once
	done  chan struct{}
	value any
	err   error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Wait blocks until the reply slot is fulfilled or ctx is done.
//
// Abandoning a Wait does not cancel or affect processing of the
// message: the engine still completes it and fulfills the slot.
func (f *Future) Wait(ctx context.Context) (any, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-f.done:
		return f.value, f.err
	}
}

// Done returns a channel that is closed once the reply slot is
// fulfilled.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

func (f *Future) complete(value any) {
	f.once.Do(func() {
		f.value = value
		close(f.done)
	})
}

func (f *Future) fail(err error) {
	f.once.Do(func() {
		f.err = err
		close(f.done)
	})
}

// Actor is the externally visible handle to one entity's engine - the
// only way callers interact with it. Submit is safe from any number of
// goroutines.
type Actor[S, E any] struct {
	engine *engine[S, E]
}

// Submit enqueues a message and returns the Future that will carry its
// reply. If the mailbox is at capacity, Submit blocks until space frees
// up or ctx is done. After Stop, Submit returns ErrStopped.
func (a *Actor[S, E]) Submit(ctx context.Context, msg any) (*Future, error) {
	f := newFuture()
	if err := a.engine.mailbox.enqueue(ctx, &pending{msg: msg, future: f}); err != nil {
		return nil, err
	}
	return f, nil
}

// Stop closes the mailbox to new submissions. The loop drains any
// messages already accepted, fulfills their reply slots, then exits;
// Done reports when it has.
func (a *Actor[S, E]) Stop() {
	a.engine.mailbox.close()
}

// Done returns a channel that is closed once the engine loop has
// exited after a Stop.
func (a *Actor[S, E]) Done() <-chan struct{} {
	return a.engine.done
}

// EntityID returns the identity of the event stream this actor owns.
func (a *Actor[S, E]) EntityID() journal.EntityID {
	return a.engine.entity
}
