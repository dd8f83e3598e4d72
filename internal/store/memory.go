package store

import (
	"errors"
	"sync"

	"github.com/aaronzipp/bunker/internal/models"
)

// ErrSessionNotFound is returned when a room has no session
var ErrSessionNotFound = errors.New("session not found")

// SessionStore maps chat rooms to their game sessions
type SessionStore struct {
	sessions map[string]*models.Session
	mu       sync.RWMutex
}

// NewSessionStore creates a new session store
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*models.Session),
	}
}

// Create replaces any session for the room with a fresh one
func (s *SessionStore) Create(room string) *models.Session {
	session := models.NewSession(room)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[room] = session
	return session
}

// CreateIfAbsent adds a fresh session only when the room has none. ok is
// false when the room is taken.
func (s *SessionStore) CreateIfAbsent(room string) (session *models.Session, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[room]; exists {
		return nil, false
	}
	session = models.NewSession(room)
	s.sessions[room] = session
	return session, true
}

// Get retrieves a session by room
func (s *SessionStore) Get(room string) (*models.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, exists := s.sessions[room]
	return session, exists
}

// Lookup is Get with an error instead of a flag
func (s *SessionStore) Lookup(room string) (*models.Session, error) {
	session, exists := s.Get(room)
	if !exists {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Exists checks if a room has a session
func (s *SessionStore) Exists(room string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.sessions[room]
	return exists
}

// Len returns the number of sessions
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
