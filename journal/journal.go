// Package journal defines the durable event log consumed by the actor
// engine, together with the backend registry that resolves a configured
// backend name to a concrete implementation.
//
// A journal stores opaque, already-encoded event payloads keyed by
// EntityID. Payloads for one entity form a total order: the order they
// were appended in is the order ReadAll returns them in, and the order
// the engine folds them in during replay.
//
// Backends register themselves by name from init(), the same way
// database/sql drivers do:
//
//	import _ "github.com/scalaz/scalaz-actors/journal/sqlite"
//
//	j, err := journal.Open("sqlite", "events.db")
package journal

import (
	"context"

	"github.com/google/uuid"
)

// EntityID identifies one durable, independently-ordered stream of
// events. It is the sole key into a Journal. Compared by value.
type EntityID string

// NewEntityID returns a fresh time-sortable UUIDv7 entity identifier.
//
// UUIDv7 embeds a timestamp in the most significant bits, so identifiers
// sort by creation time, which keeps journal scans and debugging output
// readable.
func NewEntityID() EntityID {
	return EntityID(uuid.Must(uuid.NewV7()).String())
}

// String returns the identifier as a plain string.
func (id EntityID) String() string { return string(id) }

// Journal is an append-only, durable event log partitioned by EntityID.
//
// Implementations must satisfy two guarantees the engine builds on:
//
//   - Append is atomic and must not return nil unless the payload is
//     durable. The engine treats each Append as its transactional
//     boundary: a successful reply for a persisted message is only
//     visible after Append has returned.
//   - ReadAll returns payloads in append order. Append order is causal
//     order is replay order.
//
// Payloads are opaque to the journal; the engine encodes and decodes
// events through its Codec.
type Journal interface {
	// Append durably persists one event payload for the entity.
	Append(ctx context.Context, entity EntityID, payload []byte) error

	// ReadAll returns every payload previously appended for the entity,
	// in append order. An entity with no history yields an empty slice,
	// not an error.
	ReadAll(ctx context.Context, entity EntityID) ([][]byte, error)

	// Close releases any resources held by the journal.
	Close() error
}
