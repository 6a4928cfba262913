package persistence

import (
	"context"
	"fmt"

	"github.com/scalaz/scalaz-actors/journal"
)

// replay rebuilds an entity's state by folding its full history, in
// append order, through the reducer from the initial state.
//
// The fold itself is pure and total. The only failure modes are the
// journal read and event decoding; a payload the codec cannot read is
// data corruption and aborts the replay (ReplayError) rather than
// being skipped - skipping would recover a state no event sequence
// ever produced.
//
// Returns the recovered state and the number of events folded.
func replay[S, E any](
	ctx context.Context,
	j journal.Journal,
	codec Codec[E],
	entity journal.EntityID,
	initial S,
	reduce Reducer[S, E],
) (S, int, error) {
	var zero S

	payloads, err := j.ReadAll(ctx, entity)
	if err != nil {
		return zero, 0, fmt.Errorf("read history for %s: %w", entity, err)
	}

	state := initial
	for i, payload := range payloads {
		event, err := codec.Decode(payload)
		if err != nil {
			return zero, 0, &ReplayError{Entity: entity, Index: i, Err: err}
		}
		state = reduce(state, event)
	}
	return state, len(payloads), nil
}
