// Package session manages the set of chat sessions: each session owns a
// message transcript and an append-only timeline of generative UI entries.
// The Store is the exclusive owner of all sessions; everything it hands out
// is either a defensive copy or mutated only through Store operations.
package session

import (
	"sync"

	"github.com/google/uuid"

	"github.com/nmirabets/gen-ui-app/core/protocol"
)

// EntryKind classifies a timeline entry by what caused it.
type EntryKind string

const (
	// EntryFileUpload acknowledges an attachment submitted with a turn.
	EntryFileUpload EntryKind = "file-upload"
	// EntryHumanMessage echoes the human input as a renderable.
	EntryHumanMessage EntryKind = "human-message"
	// EntryAgentResponse wraps the agent's immediate fragment.
	EntryAgentResponse EntryKind = "ai-response"
)

// Entry is one element of a session's generative content feed. Fragment is an
// opaque renderable owned by the presentation layer; the core never inspects
// it. Entries are immutable and ordered by insertion.
type Entry struct {
	ID       string
	Kind     EntryKind
	Fragment any
}

// NewEntry creates an Entry with a kind-prefixed, collision-free identifier.
func NewEntry(kind EntryKind, fragment any) Entry {
	return Entry{
		ID:       string(kind) + "-" + uuid.Must(uuid.NewV7()).String(),
		Kind:     kind,
		Fragment: fragment,
	}
}

// Session is one independent conversation. The identifier is an opaque
// generated ID; Label is the display name shown by the presentation layer.
// Both sequences grow strictly by appending for the session's lifetime.
type Session struct {
	id    string
	label string

	mu       sync.RWMutex
	messages []protocol.Message
	timeline []Entry
}

func newSession(label string) *Session {
	return &Session{
		id:    uuid.Must(uuid.NewV7()).String(),
		label: label,
	}
}

// ID returns the opaque session identifier.
func (s *Session) ID() string {
	return s.id
}

// Label returns the display name.
func (s *Session) Label() string {
	return s.label
}

// Messages returns a defensive copy of the transcript.
func (s *Session) Messages() []protocol.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	copied := make([]protocol.Message, len(s.messages))
	copy(copied, s.messages)
	return copied
}

// Timeline returns a defensive copy of the generative content feed.
func (s *Session) Timeline() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	copied := make([]Entry, len(s.timeline))
	copy(copied, s.timeline)
	return copied
}

func (s *Session) appendMessage(msg protocol.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
}

func (s *Session) appendEntry(e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timeline = append(s.timeline, e)
}
