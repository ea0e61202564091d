// Package gateway defines the contract to the remote generative agent and
// its transports. An invocation is two-phase: the call returns as soon as
// the agent's immediate UI fragment is available, while the terminal event
// settles later and is awaited separately.
package gateway

import (
	"context"
	"sync"

	"github.com/nmirabets/gen-ui-app/core/event"
	"github.com/nmirabets/gen-ui-app/core/protocol"
)

// Gateway submits one turn to the agent. Implementations own transport,
// retries, and serialization; callers treat the agent as opaque.
type Gateway interface {
	// Invoke submits the request and returns once the immediate fragment is
	// available. The returned Result's terminal event resolves later.
	Invoke(ctx context.Context, req protocol.TurnRequest) (*Result, error)
}

// Result is the two-phase outcome of an invocation: an immediately available
// renderable fragment and a terminal event that settles asynchronously.
type Result struct {
	fragment any

	done     chan struct{}
	terminal event.Terminal
	err      error
}

// Resolver settles a Result's terminal event exactly once. Later calls to
// Resolve or Fail are ignored.
type Resolver struct {
	result *Result
	once   sync.Once
}

// NewResult creates a pending Result carrying the immediate fragment, plus
// the Resolver the transport uses to settle its terminal event.
func NewResult(fragment any) (*Result, *Resolver) {
	r := &Result{
		fragment: fragment,
		done:     make(chan struct{}),
	}
	return r, &Resolver{result: r}
}

// Fragment returns the immediate renderable fragment.
func (r *Result) Fragment() any {
	return r.fragment
}

// Await blocks until the terminal event settles or ctx is done. Safe to call
// multiple times after settlement.
func (r *Result) Await(ctx context.Context) (event.Terminal, error) {
	select {
	case <-ctx.Done():
		return event.Terminal{}, ctx.Err()
	case <-r.done:
		return r.terminal, r.err
	}
}

// Resolve settles the terminal event successfully.
func (rv *Resolver) Resolve(t event.Terminal) {
	rv.once.Do(func() {
		rv.result.terminal = t
		close(rv.result.done)
	})
}

// Fail settles the terminal event with an error.
func (rv *Resolver) Fail(err error) {
	rv.once.Do(func() {
		rv.result.err = err
		close(rv.result.done)
	})
}
