package render

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aaronzipp/bunker/internal/game"
	"github.com/aaronzipp/bunker/internal/models"
	"github.com/aaronzipp/bunker/internal/store"
)

func TestCardSheetFollowsCatalogOrder(t *testing.T) {
	p := models.NewPlayer("u1", "Anna")
	p.Cards[models.CategoryProfession] = "doctor"
	p.Cards[models.CategoryHealth] = "asthma"

	got := CardSheet([]models.Category{models.CategoryHealth, models.CategoryProfession}, p)
	assert.Equal(t, "Your character:\nHealth: asthma\nProfession: doctor", got)
}

func TestRoundReveals(t *testing.T) {
	anna := models.NewPlayer("a", "Anna")
	boris := models.NewPlayer("b", "Boris")
	got := RoundReveals(7, []game.Reveal{
		{Player: anna, Category: models.CategoryFact, Value: "volunteer"},
		{Player: boris},
	})
	assert.Equal(t, "Round 7:\nAnna - Fact: volunteer\nBoris - nothing left to reveal", got)
}

func TestElimination(t *testing.T) {
	anna := models.NewPlayer("a", "Anna")
	boris := models.NewPlayer("b", "Boris")

	got := Elimination(&game.Elimination{Player: anna, Votes: 2, Total: 3})
	assert.Equal(t, "Anna is exiled from the bunker (2 of 3 votes).", got)

	got = Elimination(&game.Elimination{Player: anna, Votes: 1, Total: 2, Tied: []*models.Player{anna, boris}, Winner: boris})
	assert.True(t, strings.HasPrefix(got, "Tie between Anna, Boris."))
	assert.Contains(t, got, "Game over! Boris takes the last seat")
}

func TestStatus(t *testing.T) {
	s := models.NewSession("room")
	anna := models.NewPlayer("a", "Anna")
	anna.Cards[models.CategoryProfession] = "cook"
	anna.Revealed = []models.Category{models.CategoryProfession}
	boris := models.NewPlayer("b", "Boris")
	boris.Eliminated = true
	s.Players = map[string]*models.Player{"a": anna, "b": boris}
	s.Order = []string{"a", "b"}
	s.Status = models.StatusInProgress
	s.Round = 1

	assert.Equal(t, "Players (2), round 1:\nAnna\n  Profession: cook\nBoris [exiled]", Status(s))
}

func TestHistory(t *testing.T) {
	s := models.NewSession("room")
	assert.Equal(t, "Nothing has happened yet.", History(s))

	s.Record("%s joined", "Anna")
	s.Round = 2
	s.Record("round %d started", 2)
	assert.Equal(t, "History:\n[round 0] Anna joined\n[round 2] round 2 started", History(s))
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{store.ErrSessionNotFound, "Create a game first with !newgame"},
		{game.ErrAlreadyStarted, "The game has already started."},
		{game.ErrDuplicatePlayer, "You are already in the game."},
		{game.ErrNotInProgress, "Start the game first with !begin"},
		{game.ErrInsufficientPlayers, "Not enough players to vote."},
		{game.ErrNoSuchTarget, "No such player, or they are already exiled."},
		{game.ErrNoVotes, "No votes yet."},
		{fmt.Errorf("wrapped: %w", game.ErrNoVotes), "No votes yet."},
		{errors.New("boom"), "Something went wrong."},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ErrorMessage(tt.err, "!"), tt.err.Error())
	}
}

func TestDeliveryFailure(t *testing.T) {
	err := &game.DeliveryError{PlayerID: "u1", Name: "Anna", Err: errors.New("closed")}
	assert.Equal(t, "Could not deliver cards to Anna. They need to message the bot privately first.", DeliveryFailure(err))
}
