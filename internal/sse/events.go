package sse

// SSE event type constants
const (
	EventRoomMessage    = "room-message"
	EventPrivateMessage = "private-message"
)

// Message represents a message sent via Server-Sent Events
type Message struct {
	Event string
	Data  string
}
