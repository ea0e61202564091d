// Package dispatch orchestrates user turns against the active chat session.
//
// A turn is two-phase: SubmitTurn suspends only until the agent's immediate
// UI fragment has been recorded on the session timeline, then returns a Turn
// handle; the terminal event resolves in the background and appends the
// derived assistant message at an indeterminate later point.
//
//	d, err := dispatch.New(&cfg)
//	turn, err := d.SubmitTurn(ctx, "What's the weather like in San Francisco?", nil)
//	err = turn.Wait(ctx)
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/nmirabets/gen-ui-app/attachment"
	"github.com/nmirabets/gen-ui-app/core/fragment"
	"github.com/nmirabets/gen-ui-app/core/protocol"
	"github.com/nmirabets/gen-ui-app/gateway"
	"github.com/nmirabets/gen-ui-app/observability"
	"github.com/nmirabets/gen-ui-app/session"
)

// Option configures a Dispatcher after config-driven initialization.
// Applied by New after cold start — overrides replace config-created defaults.
type Option func(*Dispatcher)

// WithStore overrides the config-created session store.
func WithStore(s *session.Store) Option {
	return func(d *Dispatcher) { d.store = s }
}

// WithGateway overrides the config-created gateway.
func WithGateway(g gateway.Gateway) Option {
	return func(d *Dispatcher) { d.gw = g }
}

// WithRegistry overrides the config-created gateway registry.
func WithRegistry(r *gateway.Registry) Option {
	return func(d *Dispatcher) { d.registry = r }
}

// WithObserver overrides the config-selected observer.
func WithObserver(o observability.Observer) Option {
	return func(d *Dispatcher) { d.observer = o }
}

// Dispatcher coordinates one user turn at a time per session: input guards,
// attachment encoding, the gateway invocation, the fixed-order timeline
// appends, and the background application of the terminal event.
type Dispatcher struct {
	store    *session.Store
	registry *gateway.Registry
	observer observability.Observer

	mu       sync.Mutex
	gw       gateway.Gateway
	inflight map[string]bool // session ID -> turn in flight
}

// New creates a Dispatcher from configuration. The session store, the
// gateway, and any named alternate gateways are initialized from their
// config sections. Functional options applied after initialization can
// override any collaborator for testing.
func New(cfg *Config, opts ...Option) (*Dispatcher, error) {
	g, err := gateway.New(&cfg.Gateway)
	if err != nil {
		return nil, fmt.Errorf("failed to create gateway: %w", err)
	}

	store, err := session.New(&cfg.Session)
	if err != nil {
		return nil, fmt.Errorf("failed to create session store: %w", err)
	}

	reg := gateway.NewRegistry()
	for name, gwCfg := range cfg.Gateways {
		if err := reg.Register(name, gwCfg); err != nil {
			return nil, fmt.Errorf("failed to register gateway %q: %w", name, err)
		}
	}

	observerName := cfg.Observer
	if observerName == "" {
		observerName = "slog"
	}
	observer, err := observability.GetObserver(observerName)
	if err != nil {
		return nil, err
	}

	d := &Dispatcher{
		store:    store,
		registry: reg,
		observer: observer,
		gw:       g,
		inflight: make(map[string]bool),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d, nil
}

// Store returns the dispatcher's session store, the read surface for the
// presentation adapter.
func (d *Dispatcher) Store() *session.Store {
	return d.store
}

// Registry returns the dispatcher's gateway registry.
func (d *Dispatcher) Registry() *gateway.Registry {
	return d.registry
}

// UseGateway switches subsequent turns to the named gateway from the
// registry. Turns already in flight keep the gateway they were invoked on.
func (d *Dispatcher) UseGateway(name string) error {
	g, err := d.registry.Get(name)
	if err != nil {
		return err
	}

	d.mu.Lock()
	d.gw = g
	d.mu.Unlock()
	return nil
}

// SubmitTurn dispatches one user turn against the active session.
//
// The turn is not eligible — and SubmitTurn returns (nil, nil) with no state
// mutation and no gateway call — when no session is active or when input is
// blank. This is a guard, not a failure.
//
// When file is non-nil it is encoded first; an encoding failure aborts the
// turn before any session mutation. After a successful invocation the
// timeline gains, in order: a file-upload acknowledgment (when a file was
// attached), an echo of the human input, and the agent's immediate fragment.
// The terminal event is applied in the background; Wait on the returned Turn
// to observe its completion.
//
// A gateway failure is returned as an error wrapping
// gateway.ErrInvocationFailed; the human message appended before the call is
// kept, since the user's utterance is a historical fact independent of agent
// success.
func (d *Dispatcher) SubmitTurn(ctx context.Context, input string, file *attachment.File) (*Turn, error) {
	active, ok := d.store.Active()
	if !ok || strings.TrimSpace(input) == "" {
		d.observer.OnEvent(ctx, observability.Event{
			Type:      EventTurnSkipped,
			Level:     slog.LevelDebug,
			Timestamp: time.Now(),
			Source:    "dispatch.SubmitTurn",
			Data: map[string]any{
				"active": ok,
				"blank":  strings.TrimSpace(input) == "",
			},
		})
		return nil, nil
	}
	sessionID := active.ID()

	d.mu.Lock()
	if d.inflight[sessionID] {
		d.mu.Unlock()
		return nil, fmt.Errorf("%w: session %s", ErrTurnInFlight, sessionID)
	}
	d.inflight[sessionID] = true
	gw := d.gw
	d.mu.Unlock()

	var encoded *protocol.Attachment
	if file != nil {
		enc, err := attachment.Encode(*file)
		if err != nil {
			d.clearInflight(sessionID)
			d.observer.OnEvent(ctx, observability.Event{
				Type:      EventTurnFailed,
				Level:     slog.LevelWarn,
				Timestamp: time.Now(),
				Source:    "dispatch.SubmitTurn",
				Data:      map[string]any{"session_id": sessionID, "error": err.Error()},
			})
			return nil, fmt.Errorf("encode attachment: %w", err)
		}
		encoded = &enc
	}

	// Snapshot the pre-turn history before appending the human message: the
	// gateway receives input separately from history.
	history := active.Messages()

	if err := d.store.AppendMessage(sessionID, protocol.NewMessage(protocol.RoleHuman, input)); err != nil {
		d.clearInflight(sessionID)
		return nil, err
	}

	result, err := gw.Invoke(ctx, protocol.TurnRequest{
		Input:      input,
		History:    history,
		Attachment: encoded,
	})
	if err != nil {
		d.clearInflight(sessionID)
		d.observer.OnEvent(ctx, observability.Event{
			Type:      EventTurnFailed,
			Level:     slog.LevelWarn,
			Timestamp: time.Now(),
			Source:    "dispatch.SubmitTurn",
			Data:      map[string]any{"session_id": sessionID, "error": err.Error()},
		})
		return nil, err
	}

	// Fixed causal order: upload acknowledgment, restated input, then the
	// agent's immediate rendering.
	if file != nil {
		if err := d.store.AppendEntry(sessionID, session.NewEntry(session.EntryFileUpload, fragment.FileUpload{Name: file.Name})); err != nil {
			d.clearInflight(sessionID)
			return nil, err
		}
	}
	if err := d.store.AppendEntry(sessionID, session.NewEntry(session.EntryHumanMessage, fragment.Text{Content: input})); err != nil {
		d.clearInflight(sessionID)
		return nil, err
	}
	if err := d.store.AppendEntry(sessionID, session.NewEntry(session.EntryAgentResponse, result.Fragment())); err != nil {
		d.clearInflight(sessionID)
		return nil, err
	}

	d.observer.OnEvent(ctx, observability.Event{
		Type:      EventTurnSubmitted,
		Level:     slog.LevelInfo,
		Timestamp: time.Now(),
		Source:    "dispatch.SubmitTurn",
		Data: map[string]any{
			"session_id":   sessionID,
			"input_length": len(input),
			"attachment":   file != nil,
		},
	})

	turn := &Turn{SessionID: sessionID, done: make(chan struct{})}

	// Terminal resolution outlives the caller's context: once issued, a turn
	// cannot be cancelled, and appends target the session captured above.
	go d.applyTerminal(context.WithoutCancel(ctx), turn, result)

	return turn, nil
}

// applyTerminal waits for the terminal event and appends the derived
// assistant message. Unhandled shapes produce no message; they are only
// surfaced as a dropped-turn event.
func (d *Dispatcher) applyTerminal(ctx context.Context, turn *Turn, result *gateway.Result) {
	defer func() {
		d.clearInflight(turn.SessionID)
		close(turn.done)
	}()

	terminal, err := result.Await(ctx)
	if err != nil {
		turn.err = err
		d.observer.OnEvent(ctx, observability.Event{
			Type:      EventTurnFailed,
			Level:     slog.LevelWarn,
			Timestamp: time.Now(),
			Source:    "dispatch.applyTerminal",
			Data:      map[string]any{"session_id": turn.SessionID, "error": err.Error()},
		})
		return
	}

	outcome, ok := terminal.Outcome()
	if !ok {
		d.observer.OnEvent(ctx, observability.Event{
			Type:      EventTurnDropped,
			Level:     slog.LevelWarn,
			Timestamp: time.Now(),
			Source:    "dispatch.applyTerminal",
			Data: map[string]any{
				"session_id": turn.SessionID,
				"shape":      string(terminal.Shape()),
			},
		})
		return
	}

	if err := d.store.AppendMessage(turn.SessionID, protocol.NewMessage(protocol.RoleAI, outcome.Text)); err != nil {
		// The session was removed while the turn was in flight.
		turn.err = err
		d.observer.OnEvent(ctx, observability.Event{
			Type:      EventTurnFailed,
			Level:     slog.LevelWarn,
			Timestamp: time.Now(),
			Source:    "dispatch.applyTerminal",
			Data:      map[string]any{"session_id": turn.SessionID, "error": err.Error()},
		})
		return
	}

	d.observer.OnEvent(ctx, observability.Event{
		Type:      EventTurnResolved,
		Level:     slog.LevelInfo,
		Timestamp: time.Now(),
		Source:    "dispatch.applyTerminal",
		Data: map[string]any{
			"session_id": turn.SessionID,
			"kind":       string(outcome.Kind),
		},
	})
}

func (d *Dispatcher) clearInflight(sessionID string) {
	d.mu.Lock()
	delete(d.inflight, sessionID)
	d.mu.Unlock()
}
