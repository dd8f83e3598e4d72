package models

import "time"

// Player represents a player in a session
type Player struct {
	ID         string
	Name       string
	Cards      map[Category]string // dealt once when the game starts
	Revealed   []Category          // append-only
	Eliminated bool
	JoinedAt   time.Time
}

// NewPlayer creates a player with no cards and nothing revealed
func NewPlayer(id, name string) *Player {
	return &Player{
		ID:       id,
		Name:     name,
		Cards:    make(map[Category]string),
		JoinedAt: time.Now(),
	}
}

// HasRevealed reports whether the category is already public
func (p *Player) HasRevealed(c Category) bool {
	for _, r := range p.Revealed {
		if r == c {
			return true
		}
	}
	return false
}
