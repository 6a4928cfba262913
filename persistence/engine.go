package persistence

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/scalaz/scalaz-actors/journal"
	"github.com/scalaz/scalaz-actors/supervision"
)

// DefaultMailboxCapacity bounds the mailbox when Config does not.
const DefaultMailboxCapacity = 1024

// Config describes one entity's engine.
type Config[S, E any] struct {
	// EntityID keys the entity's event stream. Required.
	EntityID journal.EntityID

	// Journal is the event log to append to and replay from. When nil,
	// Backend and DSN are resolved through the journal registry; a
	// name no backend is registered under fails Start.
	Journal journal.Journal
	Backend string
	DSN     string

	// InitialState seeds the replay fold. The zero value of S is a
	// fine choice for most state types.
	InitialState S

	// Reducer folds events into state. Required.
	Reducer Reducer[S, E]

	// Handler computes an Effect per message. Required.
	Handler Handler[S, E]

	// Codec encodes events for the journal. Defaults to JSONCodec.
	Codec Codec[E]

	// Supervisor is consulted when the handler fails. Nil means every
	// handler failure is final.
	Supervisor supervision.Strategy[Effect[S, E]]

	// MailboxCapacity bounds the mailbox. Defaults to
	// DefaultMailboxCapacity when non-positive.
	MailboxCapacity int

	// Logger receives engine lifecycle and failure logs. Defaults to
	// slog.Default.
	Logger *slog.Logger
}

// engine owns one entity's state, mailbox, and processing loop.
//
// state is touched only from the run goroutine. That is the whole
// single-writer guarantee: no locking, no sharing.
type engine[S, E any] struct {
	entity  journal.EntityID
	journal journal.Journal
	codec   Codec[E]
	reducer Reducer[S, E]
	handler Handler[S, E]
	sup     supervision.Strategy[Effect[S, E]]
	mailbox *mailbox
	logger  *slog.Logger

	// ctx outlives the Start call; journal and supervision calls made
	// by the loop use it. The engine imposes no timeouts of its own.
	ctx  context.Context
	done chan struct{}

	state S
}

// Start recovers an entity's state from its journal and launches its
// processing loop.
//
// Startup protocol:
//  1. resolve the journal (injected, or by backend name via the
//     registry) - resolution failure is fatal, no engine starts
//  2. read the entity's full history - read failure is fatal
//  3. fold every historical event through the reducer from
//     InitialState; an undecodable event is a ReplayError, fatal
//  4. start the loop goroutine and return the handle
//
// ctx bounds startup (the replay read); the running loop is not tied
// to it and runs until Stop.
func Start[S, E any](ctx context.Context, cfg Config[S, E]) (*Actor[S, E], error) {
	if cfg.EntityID == "" {
		return nil, fmt.Errorf("persistence: Config.EntityID not set")
	}
	if cfg.Reducer == nil {
		return nil, fmt.Errorf("persistence: Config.Reducer not set")
	}
	if cfg.Handler == nil {
		return nil, fmt.Errorf("persistence: Config.Handler not set")
	}

	codec := cfg.Codec
	if codec == nil {
		codec = JSONCodec[E]()
	}
	capacity := cfg.MailboxCapacity
	if capacity <= 0 {
		capacity = DefaultMailboxCapacity
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("entity", cfg.EntityID)

	j := cfg.Journal
	if j == nil {
		var err error
		j, err = journal.Open(cfg.Backend, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("start actor %s: %w", cfg.EntityID, err)
		}
	}

	state, replayed, err := replay(ctx, j, codec, cfg.EntityID, cfg.InitialState, cfg.Reducer)
	if err != nil {
		return nil, err
	}

	e := &engine[S, E]{
		entity:  cfg.EntityID,
		journal: j,
		codec:   codec,
		reducer: cfg.Reducer,
		handler: cfg.Handler,
		sup:     cfg.Supervisor,
		mailbox: newMailbox(capacity),
		logger:  logger,
		ctx:     context.WithoutCancel(ctx),
		done:    make(chan struct{}),
		state:   state,
	}

	logger.Info("actor started", "replayed_events", replayed)
	go e.run()

	return &Actor[S, E]{engine: e}, nil
}

// run is the processing loop: one pending message at a time, in
// submission order, until the mailbox is closed and drained.
func (e *engine[S, E]) run() {
	defer close(e.done)

	for {
		p, ok := e.mailbox.dequeue()
		if !ok {
			e.logger.Info("actor stopping: mailbox drained")
			return
		}
		e.process(p)
	}
}

// process runs one message through invoke-interpret-reply. All failure
// paths end in the message's own reply slot; none of them terminate
// the loop or touch state for other messages.
func (e *engine[S, E]) process(p *pending) {
	eff, err := e.invoke(p.msg)
	if err != nil {
		cause := err
		if e.sup == nil {
			e.logger.Warn("handler failed", "error", cause)
			p.future.fail(cause)
			return
		}

		recovered, rerr := e.sup.Recover(e.ctx, func(context.Context) (Effect[S, E], error) {
			return e.invoke(p.msg)
		}, cause)
		if rerr != nil {
			// Final failure carries the original error, not the last
			// retry's.
			e.logger.Warn("handler failed, supervision gave up",
				"error", cause,
				"final", rerr,
			)
			p.future.fail(cause)
			return
		}

		e.logger.Debug("handler recovered by supervision", "error", cause)
		eff = recovered
	}

	e.apply(p, eff)
}

// invoke runs the handler against current state. A panicking handler
// is indistinguishable from one returning an error: both escalate to
// supervision instead of crashing the loop.
func (e *engine[S, E]) invoke(msg any) (eff Effect[S, E], err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return e.handler(e.ctx, e.state, msg)
}

// apply interprets the command and fulfills the reply slot.
func (e *engine[S, E]) apply(p *pending, eff Effect[S, E]) {
	event, persist := eff.Command.Event()
	if !persist {
		p.future.complete(project(eff, e.state))
		return
	}

	payload, err := e.codec.Encode(event)
	if err != nil {
		p.future.fail(err)
		return
	}

	// Durability precedes visibility: the append must have completed
	// before state moves or the reply becomes observable. On failure
	// state stays put and only this message's slot carries the error.
	if err := e.journal.Append(e.ctx, e.entity, payload); err != nil {
		e.logger.Error("append failed", "error", err)
		p.future.fail(fmt.Errorf("append event: %w", err))
		return
	}

	e.state = e.reducer(e.state, event)
	p.future.complete(project(eff, e.state))
}

func project[S, E any](eff Effect[S, E], state S) any {
	if eff.Reply == nil {
		return nil
	}
	return eff.Reply(state)
}
