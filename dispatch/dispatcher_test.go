package dispatch_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/nmirabets/gen-ui-app/attachment"
	"github.com/nmirabets/gen-ui-app/core/event"
	"github.com/nmirabets/gen-ui-app/core/fragment"
	"github.com/nmirabets/gen-ui-app/core/protocol"
	"github.com/nmirabets/gen-ui-app/dispatch"
	"github.com/nmirabets/gen-ui-app/gateway"
	"github.com/nmirabets/gen-ui-app/observability"
	"github.com/nmirabets/gen-ui-app/session"
)

// --- Test helpers ---

// mockGateway records invocations and settles terminal events according to
// its configuration. With manual set, the test settles via Resolvers.
type mockGateway struct {
	mu        sync.Mutex
	requests  []protocol.TurnRequest
	resolvers []*gateway.Resolver

	fragment    any
	terminal    event.Terminal
	terminalErr error
	invokeErr   error
	manual      bool
}

func (g *mockGateway) Invoke(ctx context.Context, req protocol.TurnRequest) (*gateway.Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.invokeErr != nil {
		return nil, g.invokeErr
	}

	g.requests = append(g.requests, req)
	result, resolver := gateway.NewResult(g.fragment)

	if g.manual {
		g.resolvers = append(g.resolvers, resolver)
	} else if g.terminalErr != nil {
		resolver.Fail(g.terminalErr)
	} else {
		resolver.Resolve(g.terminal)
	}

	return result, nil
}

func (g *mockGateway) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.requests)
}

func (g *mockGateway) request(i int) protocol.TurnRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.requests[i]
}

func (g *mockGateway) resolve(i int, t event.Terminal) {
	g.mu.Lock()
	resolver := g.resolvers[i]
	g.mu.Unlock()
	resolver.Resolve(t)
}

func modelTerminal(text string) event.Terminal {
	return event.Single(event.Record{
		ModelInvocation: &event.ModelInvocation{Result: text},
	})
}

// newTestDispatcher builds a dispatcher around the mock gateway with one
// active session "Chat 1".
func newTestDispatcher(t *testing.T, g *mockGateway) (*dispatch.Dispatcher, *session.Session) {
	t.Helper()

	cfg := dispatch.DefaultConfig()
	d, err := dispatch.New(&cfg,
		dispatch.WithGateway(g),
		dispatch.WithObserver(observability.NoOpObserver{}),
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	sess, err := d.Store().SelectOrCreate("Chat 1")
	if err != nil {
		t.Fatalf("SelectOrCreate failed: %v", err)
	}
	return d, sess
}

func submitAndWait(t *testing.T, d *dispatch.Dispatcher, input string, file *attachment.File) *dispatch.Turn {
	t.Helper()

	turn, err := d.SubmitTurn(context.Background(), input, file)
	if err != nil {
		t.Fatalf("SubmitTurn failed: %v", err)
	}
	if turn == nil {
		t.Fatal("SubmitTurn returned no turn")
	}
	if err := turn.Wait(context.Background()); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	return turn
}

// --- Tests ---

func TestSubmitTurn_NoActiveSession(t *testing.T) {
	g := &mockGateway{terminal: modelTerminal("hi")}

	cfg := dispatch.DefaultConfig()
	d, err := dispatch.New(&cfg,
		dispatch.WithGateway(g),
		dispatch.WithObserver(observability.NoOpObserver{}),
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	turn, err := d.SubmitTurn(context.Background(), "hello", nil)
	if err != nil {
		t.Fatalf("SubmitTurn failed: %v", err)
	}
	if turn != nil {
		t.Error("expected no turn without an active session")
	}
	if g.calls() != 0 {
		t.Errorf("got %d gateway calls, want 0", g.calls())
	}
}

func TestSubmitTurn_BlankInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"spaces", "   "},
		{"whitespace", " \t\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &mockGateway{terminal: modelTerminal("hi")}
			d, sess := newTestDispatcher(t, g)

			turn, err := d.SubmitTurn(context.Background(), tt.input, nil)
			if err != nil {
				t.Fatalf("SubmitTurn failed: %v", err)
			}
			if turn != nil {
				t.Error("expected no turn for blank input")
			}
			if g.calls() != 0 {
				t.Errorf("got %d gateway calls, want 0", g.calls())
			}
			if len(sess.Messages()) != 0 || len(sess.Timeline()) != 0 {
				t.Error("blank input must not mutate the session")
			}
		})
	}
}

func TestSubmitTurn_Success(t *testing.T) {
	g := &mockGateway{
		fragment: map[string]any{"component": "markdown"},
		terminal: modelTerminal("Hello!"),
	}
	d, sess := newTestDispatcher(t, g)

	submitAndWait(t, d, "hello", nil)

	msgs := sess.Messages()
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[0].Role != protocol.RoleHuman || msgs[0].Content != "hello" {
		t.Errorf("got first message %+v, want human %q", msgs[0], "hello")
	}
	if msgs[1].Role != protocol.RoleAI || msgs[1].Content != "Hello!" {
		t.Errorf("got second message %+v, want ai %q", msgs[1], "Hello!")
	}

	timeline := sess.Timeline()
	if len(timeline) != 2 {
		t.Fatalf("got %d timeline entries, want 2", len(timeline))
	}
	if timeline[0].Kind != session.EntryHumanMessage {
		t.Errorf("got entry 0 kind %q, want %q", timeline[0].Kind, session.EntryHumanMessage)
	}
	if echo, ok := timeline[0].Fragment.(fragment.Text); !ok || echo.Content != "hello" {
		t.Errorf("got entry 0 fragment %+v, want echoed input", timeline[0].Fragment)
	}
	if timeline[1].Kind != session.EntryAgentResponse {
		t.Errorf("got entry 1 kind %q, want %q", timeline[1].Kind, session.EntryAgentResponse)
	}

	if g.calls() != 1 {
		t.Fatalf("got %d gateway calls, want 1", g.calls())
	}
	req := g.request(0)
	if req.Input != "hello" {
		t.Errorf("got input %q, want %q", req.Input, "hello")
	}
	if req.Attachment != nil {
		t.Error("got attachment, want none")
	}
}

func TestSubmitTurn_HistoryExcludesCurrentInput(t *testing.T) {
	g := &mockGateway{terminal: modelTerminal("fine")}
	d, sess := newTestDispatcher(t, g)

	submitAndWait(t, d, "how are you?", nil)
	submitAndWait(t, d, "and now?", nil)

	// Second request must see the first exchange but not its own input.
	req := g.request(1)
	if len(req.History) != 2 {
		t.Fatalf("got %d history messages, want 2", len(req.History))
	}
	if req.History[0].Content != "how are you?" || req.History[1].Content != "fine" {
		t.Errorf("got history %+v, want first exchange", req.History)
	}

	if len(sess.Messages()) != 4 {
		t.Errorf("got %d messages, want 4", len(sess.Messages()))
	}
}

func TestSubmitTurn_WithAttachment(t *testing.T) {
	g := &mockGateway{
		fragment: map[string]any{"component": "file-card"},
		terminal: modelTerminal("got it"),
	}
	d, sess := newTestDispatcher(t, g)

	file := &attachment.File{
		Name:      "photo.png",
		MediaType: "image/png",
		Reader:    strings.NewReader("bytes"),
	}
	submitAndWait(t, d, "look at this", file)

	timeline := sess.Timeline()
	if len(timeline) != 3 {
		t.Fatalf("got %d timeline entries, want 3", len(timeline))
	}

	wantKinds := []session.EntryKind{
		session.EntryFileUpload,
		session.EntryHumanMessage,
		session.EntryAgentResponse,
	}
	for i, kind := range wantKinds {
		if timeline[i].Kind != kind {
			t.Errorf("entry %d: got kind %q, want %q", i, timeline[i].Kind, kind)
		}
	}

	if ack, ok := timeline[0].Fragment.(fragment.FileUpload); !ok || ack.Name != "photo.png" {
		t.Errorf("got upload fragment %+v, want name %q", timeline[0].Fragment, "photo.png")
	}

	req := g.request(0)
	if req.Attachment == nil {
		t.Fatal("gateway did not receive the attachment")
	}
	if req.Attachment.Extension != "png" {
		t.Errorf("got extension %q, want %q", req.Attachment.Extension, "png")
	}
}

func TestSubmitTurn_EncodingFailureLeavesSessionUnchanged(t *testing.T) {
	g := &mockGateway{terminal: modelTerminal("hi")}
	d, sess := newTestDispatcher(t, g)

	file := &attachment.File{Name: "broken.bin", Reader: failingReader{}}

	_, err := d.SubmitTurn(context.Background(), "hello", file)
	if !errors.Is(err, attachment.ErrUnreadable) {
		t.Fatalf("got error %v, want ErrUnreadable", err)
	}

	if g.calls() != 0 {
		t.Errorf("got %d gateway calls, want 0", g.calls())
	}
	if len(sess.Messages()) != 0 || len(sess.Timeline()) != 0 {
		t.Error("failed encoding must leave session state unchanged")
	}

	// The failed turn must not leave the session locked.
	submitAndWait(t, d, "retry", nil)
}

func TestSubmitTurn_GatewayFailureKeepsHumanMessage(t *testing.T) {
	g := &mockGateway{invokeErr: gateway.ErrInvocationFailed}
	d, sess := newTestDispatcher(t, g)

	_, err := d.SubmitTurn(context.Background(), "hello", nil)
	if !errors.Is(err, gateway.ErrInvocationFailed) {
		t.Fatalf("got error %v, want ErrInvocationFailed", err)
	}

	msgs := sess.Messages()
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want the human message kept", len(msgs))
	}
	if msgs[0].Role != protocol.RoleHuman {
		t.Errorf("got role %q, want %q", msgs[0].Role, protocol.RoleHuman)
	}
	if len(sess.Timeline()) != 0 {
		t.Errorf("got %d timeline entries, want 0", len(sess.Timeline()))
	}

	// The failed turn must not leave the session locked.
	g.invokeErr = nil
	g.terminal = modelTerminal("back")
	submitAndWait(t, d, "retry", nil)
}

func TestSubmitTurn_TerminalExtraction(t *testing.T) {
	tests := []struct {
		name     string
		terminal event.Terminal
		want     string
	}{
		{
			"pair model takes precedence",
			event.Pair(
				event.Record{ModelInvocation: &event.ModelInvocation{Result: "42"}},
				event.Record{ToolInvocation: &event.ToolInvocation{ToolResult: "x"}},
			),
			"42",
		},
		{
			"pair falls back to tool",
			event.Pair(
				event.Record{},
				event.Record{ToolInvocation: &event.ToolInvocation{ToolResult: "x"}},
			),
			`Tool result: "x"`,
		},
		{
			"single model",
			modelTerminal("ok"),
			"ok",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &mockGateway{terminal: tt.terminal}
			d, sess := newTestDispatcher(t, g)

			submitAndWait(t, d, "hello", nil)

			msgs := sess.Messages()
			if len(msgs) != 2 {
				t.Fatalf("got %d messages, want 2", len(msgs))
			}
			if msgs[1].Role != protocol.RoleAI {
				t.Errorf("got role %q, want %q", msgs[1].Role, protocol.RoleAI)
			}
			if msgs[1].Content != tt.want {
				t.Errorf("got content %q, want %q", msgs[1].Content, tt.want)
			}
		})
	}
}

func TestSubmitTurn_UnhandledShapeAppendsNothing(t *testing.T) {
	g := &mockGateway{terminal: event.Single(event.Record{})}
	d, sess := newTestDispatcher(t, g)

	submitAndWait(t, d, "hello", nil)

	msgs := sess.Messages()
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want only the human message", len(msgs))
	}
	// The immediate fragment still landed.
	if len(sess.Timeline()) != 2 {
		t.Errorf("got %d timeline entries, want 2", len(sess.Timeline()))
	}
}

func TestSubmitTurn_TerminalFailure(t *testing.T) {
	terminalErr := errors.New("stream broke")
	g := &mockGateway{terminalErr: terminalErr}
	d, sess := newTestDispatcher(t, g)

	turn, err := d.SubmitTurn(context.Background(), "hello", nil)
	if err != nil {
		t.Fatalf("SubmitTurn failed: %v", err)
	}

	if err := turn.Wait(context.Background()); !errors.Is(err, terminalErr) {
		t.Errorf("got Wait error %v, want %v", err, terminalErr)
	}
	if len(sess.Messages()) != 1 {
		t.Errorf("got %d messages, want only the human message", len(sess.Messages()))
	}
}

func TestSubmitTurn_InFlightGuard(t *testing.T) {
	g := &mockGateway{manual: true}
	d, _ := newTestDispatcher(t, g)

	first, err := d.SubmitTurn(context.Background(), "one", nil)
	if err != nil {
		t.Fatalf("SubmitTurn failed: %v", err)
	}

	_, err = d.SubmitTurn(context.Background(), "two", nil)
	if !errors.Is(err, dispatch.ErrTurnInFlight) {
		t.Fatalf("got error %v, want ErrTurnInFlight", err)
	}

	g.resolve(0, modelTerminal("done"))
	if err := first.Wait(context.Background()); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}

	// After resolution the session accepts turns again.
	g.manual = false
	g.terminal = modelTerminal("again")
	submitAndWait(t, d, "three", nil)
}

func TestSubmitTurn_SeparateSessionsRunIndependently(t *testing.T) {
	g := &mockGateway{manual: true}
	d, _ := newTestDispatcher(t, g)

	if _, err := d.SubmitTurn(context.Background(), "one", nil); err != nil {
		t.Fatalf("SubmitTurn failed: %v", err)
	}

	if _, err := d.Store().SelectOrCreate("Chat 2"); err != nil {
		t.Fatalf("SelectOrCreate failed: %v", err)
	}
	if _, err := d.SubmitTurn(context.Background(), "two", nil); err != nil {
		t.Fatalf("SubmitTurn on second session failed: %v", err)
	}
}

func TestSubmitTurn_AppendsTargetSubmittingSession(t *testing.T) {
	g := &mockGateway{manual: true}
	d, first := newTestDispatcher(t, g)

	turn, err := d.SubmitTurn(context.Background(), "hello", nil)
	if err != nil {
		t.Fatalf("SubmitTurn failed: %v", err)
	}

	// Switch the active session while the turn is in flight.
	second, err := d.Store().SelectOrCreate("Chat 2")
	if err != nil {
		t.Fatalf("SelectOrCreate failed: %v", err)
	}

	g.resolve(0, modelTerminal("late reply"))
	if err := turn.Wait(context.Background()); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}

	if turn.SessionID != first.ID() {
		t.Errorf("got turn session %q, want %q", turn.SessionID, first.ID())
	}
	if len(first.Messages()) != 2 {
		t.Errorf("got %d messages in submitting session, want 2", len(first.Messages()))
	}
	if len(second.Messages()) != 0 {
		t.Errorf("got %d messages in other session, want 0", len(second.Messages()))
	}
}

func TestSubmitTurn_SessionRemovedBeforeTerminal(t *testing.T) {
	g := &mockGateway{manual: true}
	d, sess := newTestDispatcher(t, g)

	turn, err := d.SubmitTurn(context.Background(), "hello", nil)
	if err != nil {
		t.Fatalf("SubmitTurn failed: %v", err)
	}

	if err := d.Store().Remove(sess.ID()); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	g.resolve(0, modelTerminal("too late"))
	if err := turn.Wait(context.Background()); !errors.Is(err, session.ErrUnknownSession) {
		t.Errorf("got Wait error %v, want ErrUnknownSession", err)
	}
}

func TestUseGateway(t *testing.T) {
	cfg := dispatch.DefaultConfig()
	cfg.Session.Seed = []string{"Chat 1"}
	cfg.Gateways = map[string]gateway.Config{
		"canned": {Kind: gateway.KindStatic, Reply: "canned reply"},
	}

	d, err := dispatch.New(&cfg, dispatch.WithObserver(observability.NoOpObserver{}))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := d.UseGateway("canned"); err != nil {
		t.Fatalf("UseGateway failed: %v", err)
	}

	submitAndWait(t, d, "hello", nil)

	active, _ := d.Store().Active()
	msgs := active.Messages()
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[1].Content != "canned reply" {
		t.Errorf("got reply %q, want %q", msgs[1].Content, "canned reply")
	}
}

func TestUseGateway_Unknown(t *testing.T) {
	cfg := dispatch.DefaultConfig()
	d, err := dispatch.New(&cfg, dispatch.WithObserver(observability.NoOpObserver{}))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := d.UseGateway("missing"); !errors.Is(err, gateway.ErrGatewayNotFound) {
		t.Errorf("got error %v, want ErrGatewayNotFound", err)
	}
}

type failingReader struct{}

func (failingReader) Read(p []byte) (int, error) {
	return 0, errors.New("disk fault")
}
