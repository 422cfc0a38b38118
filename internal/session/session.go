// Package session holds the in-memory conversation state for one
// golfer/coach interaction: an append-only, ordered sequence of turns.
// Sessions are ephemeral; the durable golfer profile is harvested from them
// by the extractor.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Turn roles.
const (
	RoleUser  = "user"
	RoleCoach = "coach"
)

// Turn is one user message or one coach reply. Immutable once created.
type Turn struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Session owns the ordered turn sequence for one golfer interaction.
type Session struct {
	ID        string
	GolferID  string
	StartedAt time.Time

	clock Clock

	mu    sync.Mutex
	turns []Turn
	ended bool
}

// New creates a Session for the given golfer.
func New(golferID string) *Session {
	return NewWithClock(golferID, realClock{})
}

// NewWithClock creates a Session with a custom clock (for testing).
func NewWithClock(golferID string, clock Clock) *Session {
	return &Session{
		ID:        uuid.NewString(),
		GolferID:  golferID,
		StartedAt: clock.Now(),
		clock:     clock,
	}
}

// Append records a turn at the end of the sequence and returns it.
func (s *Session) Append(role, text string) Turn {
	t := Turn{
		ID:        uuid.NewString(),
		Role:      role,
		Text:      text,
		CreatedAt: s.clock.Now(),
	}

	s.mu.Lock()
	s.turns = append(s.turns, t)
	s.mu.Unlock()
	return t
}

// History returns the full turn sequence in append order.
func (s *Session) History() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Window returns the most recent n turns in append order. n <= 0 or
// n >= Len() returns the full history.
func (s *Session) Window(n int) []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n <= 0 || n >= len(s.turns) {
		out := make([]Turn, len(s.turns))
		copy(out, s.turns)
		return out
	}
	out := make([]Turn, n)
	copy(out, s.turns[len(s.turns)-n:])
	return out
}

// Len returns the number of turns.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.turns)
}

// End marks the session ended. Idempotent.
func (s *Session) End() {
	s.mu.Lock()
	s.ended = true
	s.mu.Unlock()
}

// Ended reports whether End has been called.
func (s *Session) Ended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}

// Registry maps golfer IDs to their active session, creating one on first
// use. The web dashboard keeps one live session per golfer ID.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Get returns the active session for golferID, creating it if absent.
func (r *Registry) Get(golferID string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[golferID]
	if !ok || s.Ended() {
		s = New(golferID)
		r.sessions[golferID] = s
	}
	return s
}

// Lookup returns the live session for golferID without creating one.
func (r *Registry) Lookup(golferID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[golferID]
	if !ok || s.Ended() {
		return nil, false
	}
	return s, true
}

// Drop removes the session for golferID, if any, and returns it.
func (r *Registry) Drop(golferID string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.sessions[golferID]
	delete(r.sessions, golferID)
	return s
}

// Active returns the sessions currently held by the registry.
func (r *Registry) Active() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}
