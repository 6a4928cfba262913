package persistence

import (
	"context"
	"sync"
)

// pending pairs one inbound message with its reply slot.
type pending struct {
	msg    any
	future *Future
}

// mailbox is a bounded FIFO of pending messages with many producers
// and exactly one consumer, the engine loop.
//
// A producer hitting the capacity bound blocks in enqueue until the
// consumer frees a slot or the producer's context is done. That is the
// backpressure contract: submission suspends, it never drops.
//
// Signaling uses 1-buffered channels so repeated signals coalesce.
// Both channels are closed by close(), which wakes every waiter; the
// waiters then re-check state under the lock.
type mailbox struct {
	mu       sync.Mutex
	items    []*pending
	capacity int
	closed   bool
	avail    chan struct{} // signals item availability to the consumer
	space    chan struct{} // signals freed capacity to blocked producers
}

func newMailbox(capacity int) *mailbox {
	return &mailbox{
		items:    make([]*pending, 0, capacity),
		capacity: capacity,
		avail:    make(chan struct{}, 1),
		space:    make(chan struct{}, 1),
	}
}

// enqueue appends p, blocking while the mailbox is at capacity.
// Returns ErrStopped if the mailbox has been closed, or the context
// error if ctx ends the wait.
func (m *mailbox) enqueue(ctx context.Context, p *pending) error {
	for {
		m.mu.Lock()
		if m.closed {
			m.mu.Unlock()
			return ErrStopped
		}
		if len(m.items) < m.capacity {
			m.items = append(m.items, p)
			signal(m.avail)
			if len(m.items) < m.capacity {
				// Pass the wakeup along: space signals coalesce, so a
				// second blocked producer would otherwise sleep until
				// the next dequeue even though a slot is free.
				signal(m.space)
			}
			m.mu.Unlock()
			return nil
		}
		m.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.space:
		}
	}
}

// dequeue removes and returns the oldest pending message, blocking
// until one is available. Returns (nil, false) once the mailbox is
// closed and drained - close-then-drain is the shutdown contract, so
// messages accepted before Stop are still processed.
func (m *mailbox) dequeue() (*pending, bool) {
	for {
		m.mu.Lock()
		if len(m.items) > 0 {
			p := m.items[0]

			// Nil out the slot so the backing array does not retain
			// the pending's message and future until reallocation.
			m.items[0] = nil
			if len(m.items) == 1 {
				m.items = m.items[:0]
			} else {
				m.items = m.items[1:]
			}

			if !m.closed {
				signal(m.space)
			}
			m.mu.Unlock()
			return p, true
		}
		closed := m.closed
		m.mu.Unlock()

		if closed {
			return nil, false
		}
		<-m.avail
	}
}

// close rejects all future enqueues and wakes every blocked producer
// and the consumer. Already-enqueued messages remain dequeueable.
func (m *mailbox) close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}
	m.closed = true
	close(m.avail)
	close(m.space)
}

// len returns the number of queued messages.
func (m *mailbox) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// signal performs a coalescing, non-blocking send.
func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
