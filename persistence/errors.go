package persistence

import (
	"errors"
	"fmt"

	"github.com/scalaz/scalaz-actors/journal"
)

// ErrStopped is returned by Submit once Stop has been called on the
// actor. Use errors.Is to detect it.
var ErrStopped = errors.New("persistence: actor stopped")

// ReplayError reports a historical event that could not be decoded
// during startup replay.
//
// This is a data-corruption condition: events are immutable once
// persisted, so a payload the codec cannot read means the journal and
// the code have diverged. The engine refuses to start rather than
// skip the event and recover a wrong state.
type ReplayError struct {
	// Entity identifies the stream being replayed.
	Entity journal.EntityID

	// Index is the zero-based position of the bad event in the stream.
	Index int

	// Err is the underlying decode failure.
	Err error
}

// Error implements the error interface.
func (e *ReplayError) Error() string {
	return fmt.Sprintf("replay %s: event %d: %v", e.Entity, e.Index, e.Err)
}

// Unwrap returns the underlying decode failure.
func (e *ReplayError) Unwrap() error { return e.Err }

// IsReplayError reports whether err is a replay corruption error.
// Uses errors.As to handle wrapped errors.
func IsReplayError(err error) bool {
	var re *ReplayError
	return errors.As(err, &re)
}
