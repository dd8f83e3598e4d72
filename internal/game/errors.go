package game

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyStarted      = errors.New("game already started")
	ErrNotInProgress       = errors.New("game is not in progress")
	ErrGameOver            = errors.New("game is over")
	ErrDuplicatePlayer     = errors.New("player already joined")
	ErrInsufficientPlayers = errors.New("not enough active players")
	ErrVotingClosed        = errors.New("no vote in progress")
	ErrNoSuchTarget        = errors.New("no such active player")
	ErrNoVotes             = errors.New("no votes cast")
)

// DeliveryError reports a private message that could not reach one player.
// It never aborts the operation that produced the message.
type DeliveryError struct {
	PlayerID string
	Name     string
	Err      error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("deliver to %s (%s): %v", e.Name, e.PlayerID, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}
