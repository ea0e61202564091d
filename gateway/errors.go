package gateway

import "errors"

// Sentinel errors for gateway operations.
var (
	// ErrInvocationFailed means the remote agent call failed or was
	// rejected before the immediate fragment was produced.
	ErrInvocationFailed = errors.New("agent invocation failed")
	// ErrIncompleteStream means the agent closed the response stream
	// before delivering the terminal event.
	ErrIncompleteStream = errors.New("agent stream ended before terminal event")
	// ErrGatewayNotFound means a registry lookup referenced an
	// unregistered gateway name.
	ErrGatewayNotFound = errors.New("gateway not found")
	// ErrGatewayExists means a registration collided with an existing name.
	ErrGatewayExists = errors.New("gateway already registered")
	// ErrEmptyGatewayName means a registry operation was given an empty name.
	ErrEmptyGatewayName = errors.New("gateway name is empty")
	// ErrUnknownKind means a gateway config named an unsupported kind.
	ErrUnknownKind = errors.New("unknown gateway kind")
)
