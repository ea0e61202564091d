package session

import (
	"fmt"
	"sync"

	"github.com/nmirabets/gen-ui-app/core/protocol"
)

// Store owns all chat sessions and tracks which one is active. Append
// operations are the only mutators of session content, so a session's full
// state is always a fold over its append log. Thread-safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session // keyed by opaque session ID
	byLabel  map[string]string   // display label -> session ID
	order    []string            // session IDs in creation order
	active   string              // active session ID, "" when unset
	counter  int                 // generated label numbering, store lifetime
	prefix   string              // generated label prefix
}

// NewStore creates an empty Store. Generated session labels use prefix
// ("Chat" when empty).
func NewStore(prefix string) *Store {
	if prefix == "" {
		prefix = defaultLabelPrefix
	}
	return &Store{
		sessions: make(map[string]*Session),
		byLabel:  make(map[string]string),
		prefix:   prefix,
	}
}

// SelectOrCreate returns the session with the given display label, creating
// it with an empty transcript and timeline on first reference, and marks it
// active. Idempotent: repeated calls with an existing label never reset the
// session's content.
func (s *Store) SelectOrCreate(label string) (*Session, error) {
	if label == "" {
		return nil, ErrEmptyLabel
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if id, exists := s.byLabel[label]; exists {
		s.active = id
		return s.sessions[id], nil
	}

	sess := newSession(label)
	s.sessions[sess.id] = sess
	s.byLabel[label] = sess.id
	s.order = append(s.order, sess.id)
	s.active = sess.id
	return sess, nil
}

// CreateNew creates a session under a fresh generated label ("Chat N") and
// marks it active. The label counter is scoped to the store's lifetime and
// skips labels already taken, so the new session never collides with an
// existing one.
func (s *Store) CreateNew() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	var label string
	for {
		s.counter++
		label = fmt.Sprintf("%s %d", s.prefix, s.counter)
		if _, taken := s.byLabel[label]; !taken {
			break
		}
	}

	sess := newSession(label)
	s.sessions[sess.id] = sess
	s.byLabel[label] = sess.id
	s.order = append(s.order, sess.id)
	s.active = sess.id
	return sess
}

// Get returns the session with the given ID.
// Returns ErrUnknownSession if no such session exists.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, exists := s.sessions[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSession, id)
	}
	return sess, nil
}

// AppendMessage appends a message to the identified session's transcript.
// Returns ErrUnknownSession if no such session exists; callers must create
// a session before appending to it.
func (s *Store) AppendMessage(id string, msg protocol.Message) error {
	sess, err := s.Get(id)
	if err != nil {
		return err
	}
	sess.appendMessage(msg)
	return nil
}

// AppendEntry appends a timeline entry to the identified session's feed.
// Same failure mode as AppendMessage.
func (s *Store) AppendEntry(id string, e Entry) error {
	sess, err := s.Get(id)
	if err != nil {
		return err
	}
	sess.appendEntry(e)
	return nil
}

// Active returns the active session, or false when none is selected.
func (s *Store) Active() (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.active == "" {
		return nil, false
	}
	return s.sessions[s.active], true
}

// List returns all sessions in creation order.
func (s *Store) List() []*Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Session, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.sessions[id])
	}
	return out
}

// Remove deletes the identified session from the store. If it was active,
// the store is left with no active session. Returns ErrUnknownSession if no
// such session exists.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, exists := s.sessions[id]
	if !exists {
		return fmt.Errorf("%w: %s", ErrUnknownSession, id)
	}

	delete(s.sessions, id)
	delete(s.byLabel, sess.label)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if s.active == id {
		s.active = ""
	}
	return nil
}
