package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/aaronzipp/bunker/internal/bot"
	"github.com/aaronzipp/bunker/internal/cards"
	"github.com/aaronzipp/bunker/internal/game"
	"github.com/aaronzipp/bunker/internal/models"
	"github.com/aaronzipp/bunker/internal/random"
	"github.com/aaronzipp/bunker/internal/sse"
	"github.com/aaronzipp/bunker/internal/store"
)

func newTestContext(t *testing.T) *Context {
	t.Helper()
	logger := zaptest.NewLogger(t)
	catalog, err := cards.Default()
	require.NoError(t, err)
	src, err := random.NewSource(11)
	require.NoError(t, err)

	sessions := store.NewSessionStore()
	hub := sse.NewHub(8, 100*time.Millisecond, logger)
	dispatcher := bot.NewDispatcher(sessions, game.NewEngine(catalog, src), hub, bot.Options{Prefix: "/"}, logger)
	return &Context{
		Sessions:  sessions,
		Commands:  dispatcher,
		Hub:       hub,
		Prefix:    "/",
		PublicURL: "http://bunker.test",
		Logger:    logger,
	}
}

func postCommand(t *testing.T, h http.Handler, room, text, name string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{"text": {text}, "name": {name}}
	req := httptest.NewRequest(http.MethodPost, "/rooms/"+room+"/commands", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCreateRoom(t *testing.T) {
	ctx := newTestContext(t)
	rec := httptest.NewRecorder()
	ctx.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/rooms", nil))

	require.Equal(t, http.StatusCreated, rec.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Len(t, body["room"], game.RoomCodeLength)
	assert.Equal(t, "/rooms/"+body["room"], rec.Header().Get("Location"))
	assert.Equal(t, "http://bunker.test/rooms/"+body["room"], body["join"])
	assert.NotEmpty(t, rec.Result().Cookies())

	session, ok := ctx.Sessions.Get(body["room"])
	require.True(t, ok, "room is registered before the response")
	assert.Equal(t, models.StatusNotStarted, session.Status)
}

func TestCreateRoomNeverRepeatsCodes(t *testing.T) {
	ctx := newTestContext(t)
	h := ctx.Routes()

	seen := make(map[string]bool)
	for i := 0; i < 30; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/rooms", nil))
		require.Equal(t, http.StatusCreated, rec.Code)
		var body map[string]string
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		require.False(t, seen[body["room"]])
		seen[body["room"]] = true
	}
	assert.Equal(t, 30, ctx.Sessions.Len())
}

func TestRoomPage(t *testing.T) {
	ctx := newTestContext(t)
	ctx.Sessions.Create("ABCDEF")
	h := ctx.Routes()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rooms/abcdef", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, "Bunker room ABCDEF")
	assert.Contains(t, body, "POST http://bunker.test/rooms/ABCDEF/commands")
	assert.Contains(t, body, "/join - join the game")
	assert.NotEmpty(t, rec.Result().Cookies())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rooms/ZZZZZZ", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCommandIssuesPlayerCookie(t *testing.T) {
	ctx := newTestContext(t)
	h := ctx.Routes()

	msgs, cancel := ctx.Hub.SubscribeRoom("ABC123")
	defer cancel()

	rec := postCommand(t, h, "abc123", "/newgame", "Anna")
	require.Equal(t, http.StatusAccepted, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, playerCookie, cookies[0].Name)

	msg := <-msgs
	assert.Equal(t, sse.EventRoomMessage, msg.Event)
	assert.Contains(t, msg.Data, "A new game has been created")

	rec = postCommand(t, h, "ABC123", "/join", "Anna", cookies[0])
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Empty(t, rec.Result().Cookies(), "known players keep their cookie")
	assert.Equal(t, "Anna joined the game!", (<-msgs).Data)

	s, ok := ctx.Sessions.Get("ABC123")
	require.True(t, ok)
	assert.Contains(t, s.Players, cookies[0].Value)
}

func TestCommandRequiresText(t *testing.T) {
	ctx := newTestContext(t)
	rec := postCommand(t, ctx.Routes(), "ROOM", "  ", "Anna")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBeginDeliversToOpenInboxOnly(t *testing.T) {
	ctx := newTestContext(t)
	h := ctx.Routes()
	anna := &http.Cookie{Name: playerCookie, Value: "anna-id"}
	boris := &http.Cookie{Name: playerCookie, Value: "boris-id"}

	room, cancelRoom := ctx.Hub.SubscribeRoom("R1")
	defer cancelRoom()
	inbox, cancelInbox := ctx.Hub.SubscribeInbox("anna-id")
	defer cancelInbox()

	postCommand(t, h, "R1", "/newgame", "Anna", anna)
	postCommand(t, h, "R1", "/join", "Anna", anna)
	postCommand(t, h, "R1", "/join", "Boris", boris)
	postCommand(t, h, "R1", "/begin", "Anna", anna)

	private := <-inbox
	assert.Equal(t, sse.EventPrivateMessage, private.Event)
	assert.True(t, strings.HasPrefix(private.Data, "Your character:"))

	var texts []string
	for len(room) > 0 {
		texts = append(texts, (<-room).Data)
	}
	assert.Contains(t, texts, "Could not deliver cards to Boris. They need to message the bot privately first.")
}

func TestRoomEventsStream(t *testing.T) {
	ctx := newTestContext(t)
	srv := httptest.NewServer(ctx.Routes())
	defer srv.Close()

	reqCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, srv.URL+"/rooms/STREAM/events", nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	require.Eventually(t, func() bool { return ctx.Hub.RoomClients("STREAM") == 1 }, time.Second, 10*time.Millisecond)
	require.NoError(t, ctx.Hub.SendRoom(context.Background(), "STREAM", "line one\nline two"))

	reader := bufio.NewReader(resp.Body)
	var lines []string
	for len(lines) < 4 {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		lines = append(lines, strings.TrimRight(line, "\n"))
	}
	assert.Equal(t, []string{"event: room-message", "data: line one", "data: line two", ""}, lines)
}

func TestInboxIssuesCookie(t *testing.T) {
	ctx := newTestContext(t)
	srv := httptest.NewServer(ctx.Routes())
	defer srv.Close()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := srv.Client()
	client.Jar = jar

	reqCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, srv.URL+"/inbox", nil)
	require.NoError(t, err)
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	cookies := jar.Cookies(u)
	require.Len(t, cookies, 1)

	require.Eventually(t, func() bool {
		return ctx.Hub.SendPrivate(context.Background(), cookies[0].Value, "psst") == nil
	}, time.Second, 10*time.Millisecond)
}

func TestQRCode(t *testing.T) {
	ctx := newTestContext(t)
	rec := httptest.NewRecorder()
	ctx.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rooms/ABCDEF/qr.png", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "\x89PNG"))
}

func TestJoinURLPointsAtRoomPage(t *testing.T) {
	ctx := newTestContext(t)
	ctx.Sessions.Create("ABCDEF")

	rec := httptest.NewRecorder()
	target := strings.TrimPrefix(joinURL(ctx.PublicURL, "ABCDEF"), ctx.PublicURL)
	ctx.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEqual(t, "text/event-stream", rec.Header().Get("Content-Type"))
}

func TestHealthAndIndex(t *testing.T) {
	ctx := newTestContext(t)
	ctx.Sessions.Create("X")
	h := ctx.Routes()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.EqualValues(t, 1, body["sessions"])

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Contains(t, rec.Body.String(), "/join - join the game")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
