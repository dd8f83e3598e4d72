package game

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/aaronzipp/bunker/internal/cards"
	"github.com/aaronzipp/bunker/internal/models"
	"github.com/aaronzipp/bunker/internal/random"
)

// Engine runs the session state machine. Methods mutate the session in place
// and must be called with the session lock held. A method that returns an
// error has not modified the session.
type Engine struct {
	catalog *cards.Catalog
	rng     random.Source
}

// NewEngine creates an engine dealing from catalog with rng
func NewEngine(catalog *cards.Catalog, rng random.Source) *Engine {
	return &Engine{catalog: catalog, rng: rng}
}

// Catalog returns the catalog cards are dealt from
func (e *Engine) Catalog() *cards.Catalog {
	return e.catalog
}

// Reveal is one player's result for a round. An empty Category means the
// player had nothing left to reveal.
type Reveal struct {
	Player   *models.Player
	Category models.Category
	Value    string
}

// Empty reports whether nothing was revealed
func (r Reveal) Empty() bool {
	return r.Category == ""
}

// Elimination is the outcome of a resolved vote
type Elimination struct {
	Player *models.Player
	Votes  int
	Total  int
	Tied   []*models.Player // more than one entry when a random tie-break decided
	Winner *models.Player   // set when the game is over
}

// AddPlayer adds a player to a session that has not started
func (e *Engine) AddPlayer(s *models.Session, id, name string) (*models.Player, error) {
	if s.Status != models.StatusNotStarted {
		return nil, ErrAlreadyStarted
	}
	if _, exists := s.Players[id]; exists {
		return nil, ErrDuplicatePlayer
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = id
	}

	p := models.NewPlayer(id, name)
	s.Players[id] = p
	s.Order = append(s.Order, id)
	s.Record("%s joined", p.Name)
	return p, nil
}

// Start deals cards to every player and moves the session in progress
func (e *Engine) Start(s *models.Session) ([]*models.Player, error) {
	if s.Status != models.StatusNotStarted {
		return nil, ErrAlreadyStarted
	}

	players := s.PlayerList()
	for _, p := range players {
		p.Cards = cards.Deal(e.catalog, e.rng)
	}
	s.Status = models.StatusInProgress
	s.Record("game started with %d players", len(players))
	return players, nil
}

// AdvanceRound starts the next round and reveals one category per active
// player following models.RevealOrder
func (e *Engine) AdvanceRound(s *models.Session) ([]Reveal, error) {
	if err := requireInProgress(s); err != nil {
		return nil, err
	}

	idx := s.Round
	s.Round++

	active := s.ActivePlayers()
	reveals := make([]Reveal, 0, len(active))
	for _, p := range active {
		r := Reveal{Player: p}
		if idx < len(models.RevealOrder) {
			category := models.RevealOrder[idx]
			r.Category = category
			r.Value = p.Cards[category]
			if !p.HasRevealed(category) {
				p.Revealed = append(p.Revealed, category)
			}
		}
		reveals = append(reveals, r)
	}
	s.Record("round %d started", s.Round)
	return reveals, nil
}

// StartVote opens a new vote with an empty tally
func (e *Engine) StartVote(s *models.Session) error {
	if len(s.ActivePlayers()) < MinVoters {
		return ErrInsufficientPlayers
	}

	s.Votes = make(map[string]string)
	s.Voting = true
	s.Record("voting started in round %d", s.Round)
	return nil
}

// CastVote records the voter's choice, replacing any earlier vote. The
// target is the first active player, in join order, whose name starts with
// prefix ignoring case.
func (e *Engine) CastVote(s *models.Session, voterID, voterName, prefix string) (*models.Player, error) {
	if !s.Voting {
		return nil, ErrVotingClosed
	}
	target := FindActivePlayer(s, prefix)
	if target == nil {
		return nil, ErrNoSuchTarget
	}

	s.Votes[voterID] = target.ID
	s.Record("%s voted for %s", voterName, target.Name)
	return target, nil
}

// ResolveVote eliminates the most voted player, breaking ties at random
func (e *Engine) ResolveVote(s *models.Session) (*Elimination, error) {
	result, err := ResolveTally(s.Votes, e.rng)
	if err != nil {
		return nil, err
	}
	target, ok := s.Players[result.Eliminated]
	if !ok {
		// targets are validated when cast, so this only happens if the
		// session was edited outside the engine
		return nil, ErrNoSuchTarget
	}

	elim := &Elimination{
		Player: target,
		Votes:  result.Counts[target.ID],
		Total:  len(s.Votes),
	}
	if result.IsTie() {
		for _, id := range result.Tied {
			if p, ok := s.Players[id]; ok {
				elim.Tied = append(elim.Tied, p)
			}
		}
	}

	target.Eliminated = true
	s.Votes = make(map[string]string)
	s.Voting = false
	s.Record("%s was eliminated with %d of %d votes", target.Name, elim.Votes, elim.Total)

	if active := s.ActivePlayers(); len(active) <= Survivors && s.Status == models.StatusInProgress {
		s.Status = models.StatusFinished
		if len(active) == 1 {
			elim.Winner = active[0]
			s.Record("%s is the last survivor", active[0].Name)
		}
	}
	return elim, nil
}

// FindActivePlayer returns the first non-eliminated player whose name starts
// with prefix under Unicode case folding, or nil
func FindActivePlayer(s *models.Session, prefix string) *models.Player {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return nil
	}
	fold := cases.Fold()
	want := fold.String(prefix)
	for _, p := range s.ActivePlayers() {
		if strings.HasPrefix(fold.String(p.Name), want) {
			return p
		}
	}
	return nil
}

func requireInProgress(s *models.Session) error {
	switch s.Status {
	case models.StatusInProgress:
		return nil
	case models.StatusFinished:
		return ErrGameOver
	default:
		return ErrNotInProgress
	}
}
