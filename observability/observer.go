// Package observability provides event-based observability for the session
// and dispatch subsystems. Subsystems emit typed events; observers decide
// whether they become logs, traces, or metrics.
package observability

import (
	"context"
	"log/slog"
	"time"
)

// EventType identifies the kind of event. Each subsystem defines its own
// constants using this type (e.g., "dispatch.turn.start").
type EventType string

// Event is an observability event emitted by a subsystem. Data keys are
// flattened into structured log attributes by log-backed observers.
type Event struct {
	Type      EventType
	Level     slog.Level
	Timestamp time.Time
	Source    string
	Data      map[string]any
}

// Observer receives events from subsystems.
type Observer interface {
	OnEvent(ctx context.Context, event Event)
}

// NoOpObserver discards all events.
type NoOpObserver struct{}

func (NoOpObserver) OnEvent(ctx context.Context, event Event) {}

// MultiObserver fans out events to multiple observers.
type MultiObserver struct {
	observers []Observer
}

// NewMultiObserver creates a MultiObserver that forwards events to all
// non-nil observers, in argument order.
func NewMultiObserver(observers ...Observer) *MultiObserver {
	filtered := make([]Observer, 0, len(observers))
	for _, obs := range observers {
		if obs != nil {
			filtered = append(filtered, obs)
		}
	}
	return &MultiObserver{observers: filtered}
}

func (m *MultiObserver) OnEvent(ctx context.Context, event Event) {
	for _, obs := range m.observers {
		obs.OnEvent(ctx, event)
	}
}
