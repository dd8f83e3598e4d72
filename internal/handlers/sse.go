package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/aaronzipp/bunker/internal/sse"
)

// HandleRoomEvents streams a room's public messages
func (ctx *Context) HandleRoomEvents(w http.ResponseWriter, r *http.Request) {
	code := roomCode(r)
	msgs, cancel := ctx.Hub.SubscribeRoom(code)
	defer cancel()

	ctx.Logger.Debug("room stream opened", zap.String("room", code))
	ctx.stream(w, r, msgs)
	ctx.Logger.Debug("room stream closed", zap.String("room", code))
}

// HandleInbox streams the caller's private messages. Cards can only be
// delivered while this stream is open.
func (ctx *Context) HandleInbox(w http.ResponseWriter, r *http.Request) {
	playerID := ctx.playerID(w, r)
	msgs, cancel := ctx.Hub.SubscribeInbox(playerID)
	defer cancel()

	ctx.Logger.Debug("inbox opened", zap.String("player", playerID))
	ctx.stream(w, r, msgs)
}

func (ctx *Context) stream(w http.ResponseWriter, r *http.Request, msgs <-chan sse.Message) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	// Set headers for SSE
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable buffering in nginx/proxies
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	reqCtx := r.Context()
	for {
		select {
		case <-reqCtx.Done():
			return
		case msg := <-msgs:
			writeEvent(w, msg)
			flusher.Flush()
		}
	}
}

// writeEvent writes msg in event-stream framing; each line of a multi-line
// message gets its own data field
func writeEvent(w http.ResponseWriter, msg sse.Message) {
	fmt.Fprintf(w, "event: %s\n", msg.Event)
	for _, line := range strings.Split(msg.Data, "\n") {
		fmt.Fprintf(w, "data: %s\n", line)
	}
	fmt.Fprint(w, "\n")
}
