package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nmirabets/gen-ui-app/core/event"
	"github.com/nmirabets/gen-ui-app/core/protocol"
)

type responder struct {
	delay time.Duration
}

// respond produces the two-phase demo response. Inputs mentioning weather go
// through the tool path (a pair terminal event); everything else echoes
// through the model path. An attached file changes the immediate fragment to
// an acknowledgment card.
func (r *responder) respond(ctx context.Context, req protocol.TurnRequest) (any, event.Terminal, error) {
	if r.delay > 0 {
		select {
		case <-time.After(r.delay):
		case <-ctx.Done():
			return nil, event.Terminal{}, ctx.Err()
		}
	}

	if req.Attachment != nil {
		fragment := map[string]any{
			"component": "file-card",
			"extension": req.Attachment.Extension,
			"bytes":     len(req.Attachment.Base64),
		}
		terminal := event.Single(event.Record{
			ModelInvocation: &event.ModelInvocation{
				Result: fmt.Sprintf("Received your .%s file.", req.Attachment.Extension),
			},
		})
		return fragment, terminal, nil
	}

	if strings.Contains(strings.ToLower(req.Input), "weather") {
		fragment := map[string]any{
			"component": "weather-card",
			"city":      "San Francisco",
			"forecast":  "sunny",
		}
		terminal := event.Pair(
			event.Record{},
			event.Record{ToolInvocation: &event.ToolInvocation{
				ToolResult: map[string]any{"city": "San Francisco", "temperature": 18},
			}},
		)
		return fragment, terminal, nil
	}

	fragment := map[string]any{
		"component": "markdown",
		"content":   req.Input,
	}
	terminal := event.Single(event.Record{
		ModelInvocation: &event.ModelInvocation{
			Result: fmt.Sprintf("You said: %s (%d earlier messages)", req.Input, len(req.History)),
		},
	})
	return fragment, terminal, nil
}
