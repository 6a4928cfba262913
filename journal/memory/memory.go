// Package memory provides an in-process journal backend.
//
// Events survive only as long as the process; the backend exists for
// tests and for entities whose history is deliberately ephemeral. It is
// registered under the name "memory". The DSN is ignored.
package memory

import (
	"context"
	"sync"

	"github.com/scalaz/scalaz-actors/journal"
)

func init() {
	journal.Register("memory", func(string) (journal.Journal, error) {
		return New(), nil
	})
}

// Journal is an in-memory, mutex-guarded event log.
// Safe for concurrent use by many entities' engines.
type Journal struct {
	mu      sync.RWMutex
	streams map[journal.EntityID][][]byte
}

// New creates an empty in-memory journal.
func New() *Journal {
	return &Journal{streams: make(map[journal.EntityID][][]byte)}
}

// Append stores one payload at the tail of the entity's stream.
// The payload is copied, so callers may reuse their buffer.
func (j *Journal) Append(_ context.Context, entity journal.EntityID, payload []byte) error {
	buf := make([]byte, len(payload))
	copy(buf, payload)

	j.mu.Lock()
	defer j.mu.Unlock()
	j.streams[entity] = append(j.streams[entity], buf)
	return nil
}

// ReadAll returns the entity's payloads in append order.
// The returned slices are copies; mutating them does not affect the log.
func (j *Journal) ReadAll(_ context.Context, entity journal.EntityID) ([][]byte, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	stream := j.streams[entity]
	out := make([][]byte, len(stream))
	for i, payload := range stream {
		buf := make([]byte, len(payload))
		copy(buf, payload)
		out[i] = buf
	}
	return out, nil
}

// Len reports how many events the entity's stream holds.
// Handy for test assertions about journal growth.
func (j *Journal) Len(entity journal.EntityID) int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.streams[entity])
}

// Close is a no-op for the in-memory backend.
func (j *Journal) Close() error { return nil }
