package dispatch

import "errors"

// ErrTurnInFlight is returned by SubmitTurn when the active session already
// has an unresolved turn. Turns on a session are serialized so one turn's
// visual effects land coherently before the next begins.
var ErrTurnInFlight = errors.New("turn already in flight")
