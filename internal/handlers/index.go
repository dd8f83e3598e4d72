package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/aaronzipp/bunker/internal/bot"
	"github.com/aaronzipp/bunker/internal/render"
	"github.com/aaronzipp/bunker/internal/sse"
	"github.com/aaronzipp/bunker/internal/store"
)

// CommandHandler runs chat commands
type CommandHandler interface {
	Handle(ctx context.Context, msg bot.Message)
}

// Context holds shared application dependencies
type Context struct {
	Sessions  *store.SessionStore
	Commands  CommandHandler
	Hub       *sse.Hub
	Prefix    string
	PublicURL string
	Logger    *zap.Logger
}

// Routes registers every handler on a new mux
func (ctx *Context) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", ctx.HandleIndex)
	mux.HandleFunc("GET /healthz", ctx.HandleHealth)
	mux.HandleFunc("POST /rooms", ctx.HandleCreateRoom)
	mux.HandleFunc("GET /rooms/{code}", ctx.HandleRoom)
	mux.HandleFunc("POST /rooms/{code}/commands", ctx.HandleCommand)
	mux.HandleFunc("GET /rooms/{code}/events", ctx.HandleRoomEvents)
	mux.HandleFunc("GET /rooms/{code}/qr.png", ctx.HandleQRCode)
	mux.HandleFunc("GET /inbox", ctx.HandleInbox)
	return mux
}

// HandleIndex lists the chat commands
func (ctx *Context) HandleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(render.Help(ctx.Prefix)))
}

// HandleHealth reports liveness and the number of sessions
func (ctx *Context) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": ctx.Sessions.Len(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func roomCode(r *http.Request) string {
	return strings.ToUpper(strings.TrimSpace(r.PathValue("code")))
}
