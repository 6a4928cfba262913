package persistence

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/scalaz/scalaz-actors/journal"
)

// gatedJournal parks every Append until release is called, so tests can
// observe the engine mid-append.
type gatedJournal struct {
	journal.Journal

	started chan struct{}
	gate    chan struct{}
	once    sync.Once
}

func newGatedJournal(inner journal.Journal) *gatedJournal {
	return &gatedJournal{
		Journal: inner,
		started: make(chan struct{}, 16),
		gate:    make(chan struct{}),
	}
}

func (g *gatedJournal) Append(ctx context.Context, entity journal.EntityID, payload []byte) error {
	select {
	case g.started <- struct{}{}:
	default:
	}
	<-g.gate
	return g.Journal.Append(ctx, entity, payload)
}

// waitForAppend blocks until an Append call has entered the journal.
func (g *gatedJournal) waitForAppend(t *testing.T) {
	t.Helper()
	select {
	case <-g.started:
	case <-time.After(5 * time.Second):
		t.Fatal("no append arrived at the journal")
	}
}

// release lets all parked and future Appends proceed.
func (g *gatedJournal) release() {
	g.once.Do(func() { close(g.gate) })
}

var errAppendRefused = errors.New("journal closed for writes")

// flakyJournal fails the first N appends, then behaves normally.
type flakyJournal struct {
	journal.Journal

	mu       sync.Mutex
	failures int
}

func (f *flakyJournal) Append(ctx context.Context, entity journal.EntityID, payload []byte) error {
	f.mu.Lock()
	fail := f.failures > 0
	if fail {
		f.failures--
	}
	f.mu.Unlock()

	if fail {
		return errAppendRefused
	}
	return f.Journal.Append(ctx, entity, payload)
}

// readFailJournal fails every ReadAll, for startup-error tests.
type readFailJournal struct {
	journal.Journal
	err error
}

func (r *readFailJournal) ReadAll(context.Context, journal.EntityID) ([][]byte, error) {
	return nil, r.err
}
