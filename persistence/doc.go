// Package persistence implements an event-sourced actor engine.
//
// Each entity gets one engine owning one piece of state and one bounded
// mailbox. State is never stored directly: handlers declare durable
// changes as events, events go to an append-only journal, and state is
// the fold of those events through a pure reducer. On startup the
// engine replays the entity's full history to recover state.
//
// ARCHITECTURE:
//
// Single-Writer Loop:
// All message handling for an entity happens in one goroutine draining
// the mailbox in FIFO order. This ensures:
//   - no two handler invocations for the same entity ever overlap
//   - state mutations observe submission order
//   - no data race on state is possible without any locking
//
// Message Processing Flow:
//  1. Caller submits a message and gets a Future (its reply slot)
//  2. The loop dequeues one pending message at a time
//  3. The handler returns an Effect: a Command plus a reply projection
//  4. Ignore: the projection runs against unchanged state
//  5. Persist: the event is appended to the journal, folded through
//     the reducer, and the projection runs against the new state
//  6. The Future is fulfilled exactly once, success or failure
//
// Durability precedes visibility: for a persisted message the journal
// append completes before the state moves and before the reply is
// observable. If the append fails, state does not move and the reply
// slot carries the failure; the loop continues with the next message.
//
// Handler failures never crash the loop. They escalate to a supervision
// strategy, which either recovers a result (processing continues as if
// the handler had succeeded) or declares final failure (the reply slot
// carries the original error). See the supervision package.
package persistence
