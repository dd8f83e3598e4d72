// Package render formats chat messages as plain text.
package render

import (
	"errors"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/aaronzipp/bunker/internal/game"
	"github.com/aaronzipp/bunker/internal/models"
	"github.com/aaronzipp/bunker/internal/store"
)

// Label returns the display name of a category, e.g. "Profession"
func Label(c models.Category) string {
	return cases.Title(language.English).String(string(c))
}

// Help lists the available commands
func Help(prefix string) string {
	p := prefix
	return strings.Join([]string{
		"Welcome to Bunker!",
		p + "newgame - create a game",
		p + "join - join the game",
		p + "begin - deal the cards",
		p + "round - reveal the next card",
		p + "startvote - open a vote",
		p + "vote <name> - vote to exile a player",
		p + "endvote - count the votes",
		p + "status - show players and revealed cards",
		p + "cards - get your cards again in a private message",
		p + "history - show what happened so far",
	}, "\n")
}

// CardSheet lists a player's cards one per line in catalog order
func CardSheet(categories []models.Category, p *models.Player) string {
	var b strings.Builder
	b.WriteString("Your character:")
	for _, c := range categories {
		b.WriteString("\n")
		b.WriteString(Label(c))
		b.WriteString(": ")
		b.WriteString(p.Cards[c])
	}
	return b.String()
}

// RoundReveals announces what each active player revealed this round
func RoundReveals(round int, reveals []game.Reveal) string {
	var b strings.Builder
	b.WriteString("Round ")
	b.WriteString(strconv.Itoa(round))
	b.WriteString(":")
	for _, r := range reveals {
		b.WriteString("\n")
		b.WriteString(r.Player.Name)
		b.WriteString(" - ")
		if r.Empty() {
			b.WriteString("nothing left to reveal")
			continue
		}
		b.WriteString(Label(r.Category))
		b.WriteString(": ")
		b.WriteString(r.Value)
	}
	return b.String()
}

// VotePrompt opens a vote and lists the candidates
func VotePrompt(s *models.Session, prefix string) string {
	var b strings.Builder
	b.WriteString("Voting is open! Who should be exiled from the bunker?\nCandidates:")
	for _, p := range s.ActivePlayers() {
		b.WriteString("\n- ")
		b.WriteString(p.Name)
	}
	b.WriteString("\nVote with ")
	b.WriteString(prefix)
	b.WriteString("vote <name>, then finish with ")
	b.WriteString(prefix)
	b.WriteString("endvote")
	return b.String()
}

// Elimination announces the result of a vote
func Elimination(e *game.Elimination) string {
	var b strings.Builder
	if len(e.Tied) > 1 {
		names := make([]string, 0, len(e.Tied))
		for _, p := range e.Tied {
			names = append(names, p.Name)
		}
		b.WriteString("Tie between ")
		b.WriteString(strings.Join(names, ", "))
		b.WriteString(". Fate decides.\n")
	}
	b.WriteString(e.Player.Name)
	b.WriteString(" is exiled from the bunker (")
	b.WriteString(strconv.Itoa(e.Votes))
	b.WriteString(" of ")
	b.WriteString(strconv.Itoa(e.Total))
	b.WriteString(" votes).")
	if e.Winner != nil {
		b.WriteString("\nGame over! ")
		b.WriteString(e.Winner.Name)
		b.WriteString(" takes the last seat in the bunker.")
	}
	return b.String()
}

// Status lists players in join order with their revealed cards
func Status(s *models.Session) string {
	players := s.PlayerList()
	var b strings.Builder
	b.WriteString("Players (")
	b.WriteString(strconv.Itoa(len(players)))
	b.WriteString("), round ")
	b.WriteString(strconv.Itoa(s.Round))
	switch s.Status {
	case models.StatusNotStarted:
		b.WriteString(", waiting to begin")
	case models.StatusFinished:
		b.WriteString(", game over")
	}
	if s.Voting {
		b.WriteString(", voting (")
		b.WriteString(strconv.Itoa(len(s.Votes)))
		b.WriteString(" votes)")
	}
	b.WriteString(":")
	for _, p := range players {
		b.WriteString("\n")
		b.WriteString(p.Name)
		if p.Eliminated {
			b.WriteString(" [exiled]")
		}
		for _, c := range p.Revealed {
			b.WriteString("\n  ")
			b.WriteString(Label(c))
			b.WriteString(": ")
			b.WriteString(p.Cards[c])
		}
	}
	return b.String()
}

// History prints the session log
func History(s *models.Session) string {
	if len(s.History) == 0 {
		return "Nothing has happened yet."
	}
	var b strings.Builder
	b.WriteString("History:")
	for _, ev := range s.History {
		b.WriteString("\n[round ")
		b.WriteString(strconv.Itoa(ev.Round))
		b.WriteString("] ")
		b.WriteString(ev.Text)
	}
	return b.String()
}

// DeliveryFailure tells the room a player did not get their cards
func DeliveryFailure(err *game.DeliveryError) string {
	return "Could not deliver cards to " + err.Name + ". They need to message the bot privately first."
}

// ErrorMessage translates an error into a user-facing reply
func ErrorMessage(err error, prefix string) string {
	switch {
	case errors.Is(err, store.ErrSessionNotFound):
		return "Create a game first with " + prefix + "newgame"
	case errors.Is(err, game.ErrAlreadyStarted):
		return "The game has already started."
	case errors.Is(err, game.ErrDuplicatePlayer):
		return "You are already in the game."
	case errors.Is(err, game.ErrNotInProgress):
		return "Start the game first with " + prefix + "begin"
	case errors.Is(err, game.ErrGameOver):
		return "The game is over. Start a new one with " + prefix + "newgame"
	case errors.Is(err, game.ErrInsufficientPlayers):
		return "Not enough players to vote."
	case errors.Is(err, game.ErrVotingClosed):
		return "There is no vote in progress. Open one with " + prefix + "startvote"
	case errors.Is(err, game.ErrNoSuchTarget):
		return "No such player, or they are already exiled."
	case errors.Is(err, game.ErrNoVotes):
		return "No votes yet."
	default:
		return "Something went wrong."
	}
}
