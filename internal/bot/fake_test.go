package bot

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/aaronzipp/bunker/internal/cards"
	"github.com/aaronzipp/bunker/internal/game"
	"github.com/aaronzipp/bunker/internal/random"
	"github.com/aaronzipp/bunker/internal/store"
)

var errUnreachable = errors.New("user has not opened a private chat")

type sent struct {
	to   string
	text string
}

// fakeMessenger records messages; private sends to users in unreachable fail
type fakeMessenger struct {
	mu          sync.Mutex
	room        []sent
	private     []sent
	unreachable map[string]bool
}

func (f *fakeMessenger) SendRoom(_ context.Context, roomID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.room = append(f.room, sent{to: roomID, text: text})
	return nil
}

func (f *fakeMessenger) SendPrivate(_ context.Context, userID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.unreachable[userID] {
		return errUnreachable
	}
	f.private = append(f.private, sent{to: userID, text: text})
	return nil
}

func (f *fakeMessenger) roomTexts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.room))
	for _, m := range f.room {
		out = append(out, m.text)
	}
	return out
}

func (f *fakeMessenger) lastRoom() string {
	texts := f.roomTexts()
	if len(texts) == 0 {
		return ""
	}
	return texts[len(texts)-1]
}

func newTestDispatcher(t *testing.T, out *fakeMessenger) (*Dispatcher, *store.SessionStore) {
	t.Helper()
	catalog, err := cards.Default()
	require.NoError(t, err)
	src, err := random.NewSource(3)
	require.NoError(t, err)

	sessions := store.NewSessionStore()
	d := NewDispatcher(sessions, game.NewEngine(catalog, src), out, Options{
		Prefix:              "/",
		DeliveryConcurrency: 4,
	}, zaptest.NewLogger(t))
	return d, sessions
}
