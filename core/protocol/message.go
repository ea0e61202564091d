package protocol

// Role identifies the author of a conversation message.
type Role string

const (
	RoleHuman Role = "human"
	RoleAI    Role = "ai"
)

// Message is a single entry in a session transcript. Messages are immutable
// once created: human messages come straight from user input, ai messages are
// derived from a resolved terminal event.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// NewMessage creates a Message with the given role and content.
func NewMessage(role Role, content string) Message {
	return Message{Role: role, Content: content}
}
