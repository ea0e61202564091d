package event

import "errors"

// ErrMalformedShape is returned when a terminal event is neither a single
// record nor an ordered pair of records.
var ErrMalformedShape = errors.New("malformed terminal event shape")
