// Package protocol defines the conversation types exchanged between the
// session store, the turn dispatcher, and the agent gateway.
package protocol

// Attachment is the transport encoding of a binary upload: the base64 payload
// plus a format hint derived from the file's declared media type.
type Attachment struct {
	Base64    string `json:"base64"`
	Extension string `json:"extension"`
}

// TurnRequest is the outbound payload for one agent invocation. History is a
// point-in-time snapshot of the session transcript taken at submission; the
// agent receives Input separately, so History must not include the message
// built from Input itself.
type TurnRequest struct {
	Input      string      `json:"input"`
	History    []Message   `json:"chat_history"`
	Attachment *Attachment `json:"file,omitempty"`
}

// HistoryPairs renders the history snapshot as [role, content] pairs, the
// shape the agent wire contract expects for chat_history.
func (r TurnRequest) HistoryPairs() [][2]string {
	pairs := make([][2]string, len(r.History))
	for i, msg := range r.History {
		pairs[i] = [2]string{string(msg.Role), msg.Content}
	}
	return pairs
}
