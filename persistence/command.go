package persistence

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// Command is a handler's durable-change decision for one message:
// either persist exactly one event, or persist nothing. There is no
// batching; a message produces at most one event.
type Command[E any] struct {
	persist bool
	event   E
}

// Persist declares that the message causes one new event to be durably
// appended and folded into state before the reply is computed.
func Persist[E any](event E) Command[E] {
	return Command[E]{persist: true, event: event}
}

// Ignore declares that the message causes no durable change; the reply
// is computed against the state as it stands.
func Ignore[E any]() Command[E] {
	return Command[E]{}
}

// Event returns the event to persist, and whether this is a Persist
// command at all.
func (c Command[E]) Event() (E, bool) {
	return c.event, c.persist
}

// Effect is what a handler returns for one message: the persistence
// decision plus the projection that computes the reply.
//
// Reply runs against whatever state is current once the command has
// been applied: the post-persist state for Persist, the unchanged state
// for Ignore. This indirection is what lets a handler answer with a
// value derived from the state its own event produces. Keep the
// projection pure; a nil Reply yields a nil reply value.
type Effect[S, E any] struct {
	Command Command[E]
	Reply   func(state S) any
}

// Handler computes an Effect for one inbound message against the
// current state. Messages are a tagged union dispatched by type switch;
// each variant chooses its own reply shape.
//
// Handlers must not mutate state directly - durable changes go through
// Persist and the reducer. A handler returning an error (or panicking)
// escalates to supervision; it never crashes the engine loop.
type Handler[S, E any] func(ctx context.Context, state S, msg any) (Effect[S, E], error)

// Reducer folds one event into state. It must be deterministic and
// side-effect free: it runs identically during replay and during live
// processing, and both must produce the same state for the same event
// sequence.
type Reducer[S, E any] func(state S, event E) S

// Codec translates between typed events and the opaque payloads the
// journal stores.
type Codec[E any] interface {
	Encode(event E) ([]byte, error)
	Decode(data []byte) (E, error)
}

// JSONCodec returns the default Codec, serializing events with
// encoding/json. HTML escaping is disabled so journal payloads read
// back byte-for-byte as written.
func JSONCodec[E any]() Codec[E] { return jsonCodec[E]{} }

type jsonCodec[E any] struct{}

func (jsonCodec[E]) Encode(event E) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(event); err != nil {
		return nil, fmt.Errorf("encode event: %w", err)
	}
	// Encoder adds a trailing newline, remove it
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func (jsonCodec[E]) Decode(data []byte) (E, error) {
	var event E
	if err := json.Unmarshal(data, &event); err != nil {
		var zero E
		return zero, fmt.Errorf("decode event: %w", err)
	}
	return event, nil
}
