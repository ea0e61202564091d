package dispatch

import "context"

// Turn is the handle for a submitted turn. The turn is considered submitted
// once SubmitTurn returns; Wait observes the later application of the
// terminal event. SessionID identifies the session targeted at submission
// time, regardless of which session is active when the event settles.
type Turn struct {
	SessionID string

	done chan struct{}
	err  error // written before done closes
}

// Wait blocks until the terminal event has been applied to the session, or
// ctx is done. Returns the resolution error, if any; a turn whose terminal
// event carried no extractable outcome completes without error.
func (t *Turn) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.done:
		return t.err
	}
}
