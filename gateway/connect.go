package gateway

import (
	"context"
	"fmt"
	"net/http"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/nmirabets/gen-ui-app/core/event"
	"github.com/nmirabets/gen-ui-app/core/protocol"
)

// InvokeProcedure is the Connect RPC procedure the agent serves. The response
// is a server stream of exactly two schemaless frames: the immediate UI
// fragment, then the terminal event.
const InvokeProcedure = "/genui.agent.v1.AgentService/Invoke"

// ConnectGateway invokes a remote agent over Connect RPC. The call suspends
// only until the first stream frame arrives; the second frame settles the
// Result's terminal event in the background.
type ConnectGateway struct {
	client *connect.Client[structpb.Struct, structpb.Struct]
}

// NewConnectGateway creates a gateway talking to the agent mounted at
// baseURL (e.g. "http://localhost:8090"). A nil httpClient falls back to
// http.DefaultClient.
func NewConnectGateway(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *ConnectGateway {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &ConnectGateway{
		client: connect.NewClient[structpb.Struct, structpb.Struct](
			httpClient,
			baseURL+InvokeProcedure,
			opts...,
		),
	}
}

func (g *ConnectGateway) Invoke(ctx context.Context, req protocol.TurnRequest) (*Result, error) {
	payload, err := requestToStruct(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvocationFailed, err)
	}

	stream, err := g.client.CallServerStream(ctx, connect.NewRequest(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvocationFailed, err)
	}

	if !stream.Receive() {
		err := stream.Err()
		_ = stream.Close()
		if err == nil {
			err = ErrIncompleteStream
		}
		return nil, fmt.Errorf("%w: %s", ErrInvocationFailed, err)
	}

	fragment := stream.Msg().AsMap()[frameKeyUI]
	result, resolver := NewResult(fragment)

	go func() {
		defer func() { _ = stream.Close() }()

		if !stream.Receive() {
			err := stream.Err()
			if err == nil {
				err = ErrIncompleteStream
			}
			resolver.Fail(err)
			return
		}

		terminal, err := event.Normalize(stream.Msg().AsMap()[frameKeyLastEvent])
		if err != nil {
			resolver.Fail(err)
			return
		}
		resolver.Resolve(terminal)
	}()

	return result, nil
}
