package session

import "errors"

// Sentinel errors for store operations.
var (
	// ErrUnknownSession means an operation referenced a session ID absent
	// from the store. This is a caller error: sessions must be created
	// before they are appended to.
	ErrUnknownSession = errors.New("unknown session")
	// ErrEmptyLabel means SelectOrCreate was called with an empty label.
	ErrEmptyLabel = errors.New("session label is empty")
)
