package dispatch

import "github.com/nmirabets/gen-ui-app/observability"

// Dispatch event types emitted during a turn's lifecycle.
const (
	EventTurnSkipped   observability.EventType = "dispatch.turn.skipped"
	EventTurnSubmitted observability.EventType = "dispatch.turn.submitted"
	EventTurnResolved  observability.EventType = "dispatch.turn.resolved"
	EventTurnDropped   observability.EventType = "dispatch.turn.dropped"
	EventTurnFailed    observability.EventType = "dispatch.turn.failed"
)
