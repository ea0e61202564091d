package gateway

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/nmirabets/gen-ui-app/core/event"
	"github.com/nmirabets/gen-ui-app/core/protocol"
)

// InvokeFunc produces one turn's two-phase response on the agent side:
// the immediate fragment (any JSON-marshalable renderable) and the terminal
// event. Returning an error aborts the stream before any frame is sent.
type InvokeFunc func(ctx context.Context, req protocol.TurnRequest) (fragment any, terminal event.Terminal, err error)

// NewInvokeHandler builds the HTTP handler serving InvokeProcedure for an
// agent implementation. Mount the returned handler at the returned pattern:
//
//	pattern, handler := gateway.NewInvokeHandler(fn)
//	mux.Handle(pattern, handler)
func NewInvokeHandler(fn InvokeFunc, opts ...connect.HandlerOption) (string, http.Handler) {
	handler := connect.NewServerStreamHandler(
		InvokeProcedure,
		func(ctx context.Context, req *connect.Request[structpb.Struct], stream *connect.ServerStream[structpb.Struct]) error {
			turn := requestFromStruct(req.Msg)

			fragment, terminal, err := fn(ctx, turn)
			if err != nil {
				return connect.NewError(connect.CodeInternal, err)
			}

			uiFrame, err := frameStruct(frameKeyUI, fragment)
			if err != nil {
				return connect.NewError(connect.CodeInternal, err)
			}
			if err := stream.Send(uiFrame); err != nil {
				return err
			}

			eventFrame, err := frameStruct(frameKeyLastEvent, terminal.WireValue())
			if err != nil {
				return connect.NewError(connect.CodeInternal, err)
			}
			return stream.Send(eventFrame)
		},
		opts...,
	)
	return InvokeProcedure, handler
}
