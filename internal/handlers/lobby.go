package handlers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aaronzipp/bunker/internal/bot"
	"github.com/aaronzipp/bunker/internal/game"
	"github.com/aaronzipp/bunker/internal/render"
)

const playerCookie = "player_id"

// HandleCreateRoom opens a new not-started game under a fresh room code
func (ctx *Context) HandleCreateRoom(w http.ResponseWriter, r *http.Request) {
	session, err := game.CreateUniqueRoom(ctx.Sessions)
	if err != nil {
		ctx.Logger.Error("room code generation failed", zap.Error(err))
		http.Error(w, "Could not create room", http.StatusInternalServerError)
		return
	}
	code := session.Room
	ctx.Logger.Info("room created", zap.String("room", code))

	ctx.playerID(w, r)
	w.Header().Set("Location", "/rooms/"+code)
	writeJSON(w, http.StatusCreated, map[string]string{
		"room":     code,
		"join":     joinURL(ctx.PublicURL, code),
		"commands": "/rooms/" + code + "/commands",
		"events":   "/rooms/" + code + "/events",
	})
}

// HandleRoom shows how to take part in a room. This is the page the join
// QR code points at.
func (ctx *Context) HandleRoom(w http.ResponseWriter, r *http.Request) {
	code := roomCode(r)
	if !ctx.Sessions.Exists(code) {
		http.Error(w, "Room not found", http.StatusNotFound)
		return
	}
	ctx.playerID(w, r)

	base := joinURL(ctx.PublicURL, code)
	var b strings.Builder
	b.WriteString("Bunker room ")
	b.WriteString(code)
	b.WriteString("\n\nSend commands: POST ")
	b.WriteString(base)
	b.WriteString("/commands (form fields text, name)")
	b.WriteString("\nRoom messages: GET ")
	b.WriteString(base)
	b.WriteString("/events")
	b.WriteString("\nYour cards: GET ")
	b.WriteString(ctx.PublicURL)
	b.WriteString("/inbox\n\n")
	b.WriteString(render.Help(ctx.Prefix))

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(b.String()))
}

// HandleCommand posts a chat message to a room
func (ctx *Context) HandleCommand(w http.ResponseWriter, r *http.Request) {
	code := roomCode(r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	text := strings.TrimSpace(r.FormValue("text"))
	if text == "" {
		http.Error(w, "Text is required", http.StatusBadRequest)
		return
	}

	playerID := ctx.playerID(w, r)
	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		name = "player-" + playerID[:min(8, len(playerID))]
	}

	ctx.Commands.Handle(r.Context(), bot.Message{
		RoomID:   code,
		UserID:   playerID,
		UserName: name,
		Text:     text,
	})
	w.WriteHeader(http.StatusAccepted)
}

// playerID returns the caller's identity, issuing a cookie on first contact
func (ctx *Context) playerID(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(playerCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	id := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     playerCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		// Secure: true, // enable when serving over HTTPS
	})
	ctx.Logger.Debug("issued player id", zap.String("player", id))
	return id
}
