package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/nmirabets/gen-ui-app/core/event"
	"github.com/nmirabets/gen-ui-app/core/protocol"
)

// Static is a scripted in-process gateway for demos and tests. The immediate
// fragment and terminal event are produced by the configured functions; nil
// functions fall back to echoing the input through the model path.
type Static struct {
	// Fragment produces the immediate renderable; nil yields an echo card.
	Fragment func(req protocol.TurnRequest) any
	// Respond produces the terminal event; nil yields a model echo.
	Respond func(req protocol.TurnRequest) event.Terminal
	// Delay postpones terminal settlement to simulate agent latency.
	Delay time.Duration
	// Err, when set, makes every invocation fail before the fragment phase.
	Err error
}

func (g *Static) Invoke(ctx context.Context, req protocol.TurnRequest) (*Result, error) {
	if g.Err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvocationFailed, g.Err)
	}

	var fragment any
	if g.Fragment != nil {
		fragment = g.Fragment(req)
	} else {
		fragment = map[string]any{"text": req.Input}
	}

	result, resolver := NewResult(fragment)

	settle := func() {
		if g.Respond != nil {
			resolver.Resolve(g.Respond(req))
			return
		}
		resolver.Resolve(event.Single(event.Record{
			ModelInvocation: &event.ModelInvocation{Result: req.Input},
		}))
	}

	if g.Delay > 0 {
		go func() {
			time.Sleep(g.Delay)
			settle()
		}()
	} else {
		settle()
	}

	return result, nil
}
