package stylebook

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("style book session not found")

// State is where a session's panel is.
type State string

const (
	StateUnselected State = "unselected"
	StateSelected   State = "selected"
	StateClosed     State = "closed"
)

// Session holds the selection for one open style book. It is the Observer
// its Book reports to.
type Session struct {
	mu sync.Mutex

	ID         string
	state      State
	selected   string
	createdAt  time.Time
	lastAccess time.Time
}

// SessionSnapshot is a JSON-safe copy of a session.
type SessionSnapshot struct {
	ID       string    `json:"session_id"`
	State    State     `json:"state"`
	Selected string    `json:"selected,omitempty"`
	Created  time.Time `json:"created_at"`
}

func (s *Session) OnSelect(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return
	}
	s.state = StateSelected
	s.selected = name
	s.lastAccess = time.Now()
}

func (s *Session) OnClose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateClosed
	s.selected = ""
	s.lastAccess = time.Now()
}

// IsSelected reports whether name is the current selection.
func (s *Session) IsSelected(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateSelected && s.selected == name
}

func (s *Session) Snapshot() SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SessionSnapshot{ID: s.ID, State: s.state, Selected: s.selected, Created: s.createdAt}
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastAccess = time.Now()
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAccess
}

// Sessions is a thread-safe session registry with TTL eviction and a
// capacity limit; at capacity the least recently used session is dropped.
type Sessions struct {
	mu       sync.Mutex
	sessions map[string]*Session
	max      int
	ttl      time.Duration
}

func NewSessions(max int, ttl time.Duration) *Sessions {
	return &Sessions{
		sessions: make(map[string]*Session),
		max:      max,
		ttl:      ttl,
	}
}

// Open starts a new, unselected session.
func (s *Sessions) Open() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.max > 0 && len(s.sessions) >= s.max {
		var oldestID string
		var oldest time.Time
		for id, sess := range s.sessions {
			if t := sess.idleSince(); oldestID == "" || t.Before(oldest) {
				oldestID, oldest = id, t
			}
		}
		delete(s.sessions, oldestID)
	}

	now := time.Now()
	sess := &Session{
		ID:         uuid.New().String(),
		state:      StateUnselected,
		createdAt:  now,
		lastAccess: now,
	}
	s.sessions[sess.ID] = sess
	return sess
}

// Get returns a live session and refreshes its idle timer.
func (s *Sessions) Get(id string) (*Session, error) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.touch()
	return sess, nil
}

// Close closes a session and forgets it.
func (s *Sessions) Close(id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	sess.OnClose()
	return nil
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Cleanup removes sessions idle for longer than the TTL and closed ones.
func (s *Sessions) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, sess := range s.sessions {
		if now.Sub(sess.idleSince()) > s.ttl || sess.Snapshot().State == StateClosed {
			delete(s.sessions, id)
		}
	}
}
