package game

import (
	crand "crypto/rand"
	"fmt"
	"math/big"

	"github.com/aaronzipp/bunker/internal/models"
	"github.com/aaronzipp/bunker/internal/store"
)

// GenerateRoomCode creates a random room code
func GenerateRoomCode() (string, error) {
	code := make([]byte, RoomCodeLength)
	for i := range RoomCodeLength {
		n, err := crand.Int(crand.Reader, big.NewInt(int64(len(RoomCodeChars))))
		if err != nil {
			return "", fmt.Errorf("generating room code: %w", err)
		}
		code[i] = RoomCodeChars[n.Int64()]
	}
	return string(code), nil
}

// CreateUniqueRoom registers a fresh session under an unused room code
func CreateUniqueRoom(sessions *store.SessionStore) (*models.Session, error) {
	for {
		code, err := GenerateRoomCode()
		if err != nil {
			return nil, err
		}
		if s, ok := sessions.CreateIfAbsent(code); ok {
			return s, nil
		}
	}
}
