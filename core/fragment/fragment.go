// Package fragment provides the built-in renderable payloads the dispatcher
// appends to a session timeline alongside agent-produced fragments. The
// presentation adapter decides how each payload is painted; this package only
// fixes their shape.
package fragment

// Text echoes a human utterance back into the generative feed.
type Text struct {
	Content string `json:"content"`
}

// FileUpload acknowledges that an attachment was submitted with a turn.
type FileUpload struct {
	Name string `json:"name"`
}
