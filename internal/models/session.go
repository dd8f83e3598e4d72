package models

import (
	"fmt"
	"sync"
	"time"
)

// Event is one entry of a session's history log
type Event struct {
	Round int
	At    time.Time
	Text  string
}

// Session represents one game scoped to a chat room
type Session struct {
	Room      string
	Players   map[string]*Player // playerID -> Player
	Order     []string           // playerIDs in join order
	Status    GameStatus
	Round     int
	Votes     map[string]string // voterID -> targetID
	Voting    bool
	History   []Event
	CreatedAt time.Time
	mu        sync.Mutex
}

// NewSession creates an empty, not-started session for a room
func NewSession(room string) *Session {
	return &Session{
		Room:      room,
		Players:   make(map[string]*Player),
		Status:    StatusNotStarted,
		Votes:     make(map[string]string),
		CreatedAt: time.Now(),
	}
}

// Lock acquires the session's lock
func (s *Session) Lock() {
	s.mu.Lock()
}

// Unlock releases the session's lock
func (s *Session) Unlock() {
	s.mu.Unlock()
}

// PlayerList returns players in join order (must be called with lock held)
func (s *Session) PlayerList() []*Player {
	list := make([]*Player, 0, len(s.Order))
	for _, id := range s.Order {
		if p, ok := s.Players[id]; ok {
			list = append(list, p)
		}
	}
	return list
}

// ActivePlayers returns non-eliminated players in join order
func (s *Session) ActivePlayers() []*Player {
	list := make([]*Player, 0, len(s.Order))
	for _, p := range s.PlayerList() {
		if !p.Eliminated {
			list = append(list, p)
		}
	}
	return list
}

// Record appends an entry to the history log
func (s *Session) Record(format string, args ...any) {
	s.History = append(s.History, Event{
		Round: s.Round,
		At:    time.Now(),
		Text:  fmt.Sprintf(format, args...),
	})
}
