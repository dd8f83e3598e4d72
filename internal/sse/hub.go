// Package sse fans chat messages out to Server-Sent Events subscribers.
package sse

import (
	"context"
	"errors"
	"maps"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrNoSubscriber means the user has no open private stream
	ErrNoSubscriber = errors.New("no open private stream")
	// ErrNotDelivered means every subscriber timed out
	ErrNotDelivered = errors.New("message not delivered")
)

// Hub tracks SSE clients per room and per user inbox
type Hub struct {
	mu         sync.RWMutex
	rooms      map[string]map[chan Message]struct{}
	inboxes    map[string]map[chan Message]struct{}
	bufferSize int
	timeout    time.Duration
	logger     *zap.Logger
}

// NewHub creates a hub. timeout bounds each send to a single client.
func NewHub(bufferSize int, timeout time.Duration, logger *zap.Logger) *Hub {
	return &Hub{
		rooms:      make(map[string]map[chan Message]struct{}),
		inboxes:    make(map[string]map[chan Message]struct{}),
		bufferSize: bufferSize,
		timeout:    timeout,
		logger:     logger,
	}
}

// SubscribeRoom registers a client for a room's messages. Call the returned
// func to unsubscribe.
func (h *Hub) SubscribeRoom(room string) (<-chan Message, func()) {
	return h.subscribe(h.rooms, room)
}

// SubscribeInbox registers a client for a user's private messages
func (h *Hub) SubscribeInbox(userID string) (<-chan Message, func()) {
	return h.subscribe(h.inboxes, userID)
}

func (h *Hub) subscribe(set map[string]map[chan Message]struct{}, key string) (<-chan Message, func()) {
	client := make(chan Message, h.bufferSize)

	h.mu.Lock()
	if set[key] == nil {
		set[key] = make(map[chan Message]struct{})
	}
	if n := len(set[key]); n > 0 {
		h.logger.Debug("additional sse connection", zap.String("key", key), zap.Int("existing", n))
	}
	set[key][client] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return client, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(set[key], client)
			if len(set[key]) == 0 {
				delete(set, key)
			}
		})
	}
}

// RoomClients returns the number of clients listening to a room
func (h *Hub) RoomClients(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// SendRoom broadcasts text to every client in the room. A room nobody is
// watching is not an error.
func (h *Hub) SendRoom(ctx context.Context, room, text string) error {
	h.mu.RLock()
	clients := maps.Clone(h.rooms[room])
	h.mu.RUnlock()

	sent := h.broadcast(ctx, clients, Message{Event: EventRoomMessage, Data: text})
	h.logger.Debug("room broadcast", zap.String("room", room), zap.Int("sent", sent), zap.Int("clients", len(clients)))
	return ctx.Err()
}

// SendPrivate delivers text to every open inbox stream of the user
func (h *Hub) SendPrivate(ctx context.Context, userID, text string) error {
	h.mu.RLock()
	clients := maps.Clone(h.inboxes[userID])
	h.mu.RUnlock()

	if len(clients) == 0 {
		return ErrNoSubscriber
	}
	if h.broadcast(ctx, clients, Message{Event: EventPrivateMessage, Data: text}) == 0 {
		return ErrNotDelivered
	}
	return nil
}

// broadcast sends msg WITHOUT holding the lock and returns how many clients
// accepted it
func (h *Hub) broadcast(ctx context.Context, clients map[chan Message]struct{}, msg Message) int {
	successCount := 0
	for client := range clients {
		timer := time.NewTimer(h.timeout)
		select {
		case client <- msg:
			successCount++
		case <-timer.C:
			h.logger.Debug("sse send timed out", zap.String("event", msg.Event))
		case <-ctx.Done():
			timer.Stop()
			return successCount
		}
		timer.Stop()
	}
	return successCount
}
