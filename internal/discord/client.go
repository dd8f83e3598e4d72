// Package discord runs the game over a Discord bot connection.
package discord

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/aaronzipp/bunker/internal/bot"
)

// MaxMessageLength is Discord's limit on message content
const MaxMessageLength = 2000

// Handler runs chat commands
type Handler interface {
	Handle(ctx context.Context, msg bot.Message)
}

// api is the part of *discordgo.Session used for sending
type api interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
}

// Client is a bot.Messenger backed by a Discord bot account
type Client struct {
	session *discordgo.Session
	api     api
	logger  *zap.Logger

	mu  sync.Mutex
	dms map[string]string // userID -> DM channel ID
}

// New creates a client for the bot token. The gateway is not opened until
// Serve is called.
func New(token string, logger *zap.Logger) (*Client, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("creating discord session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages | discordgo.IntentMessageContent
	return newClient(s, s, logger), nil
}

func newClient(s *discordgo.Session, a api, logger *zap.Logger) *Client {
	return &Client{
		session: s,
		api:     a,
		logger:  logger,
		dms:     make(map[string]string),
	}
}

// Serve dispatches incoming messages to h until ctx is done
func (c *Client) Serve(ctx context.Context, h Handler) error {
	remove := c.session.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageCreate) {
		msg, ok := toMessage(m)
		if !ok {
			return
		}
		h.Handle(ctx, msg)
	})
	defer remove()

	if err := c.session.Open(); err != nil {
		return fmt.Errorf("opening discord gateway: %w", err)
	}
	c.logger.Info("connected to discord")

	<-ctx.Done()
	if err := c.session.Close(); err != nil {
		return fmt.Errorf("closing discord gateway: %w", err)
	}
	return nil
}

// SendRoom posts text to a channel
func (c *Client) SendRoom(ctx context.Context, channelID, text string) error {
	for _, part := range chunk(text, MaxMessageLength) {
		if _, err := c.api.ChannelMessageSend(channelID, part, discordgo.WithContext(ctx)); err != nil {
			return fmt.Errorf("sending to channel %s: %w", channelID, err)
		}
	}
	return nil
}

// SendPrivate sends text as a direct message
func (c *Client) SendPrivate(ctx context.Context, userID, text string) error {
	channelID, err := c.dmChannel(ctx, userID)
	if err != nil {
		return err
	}
	return c.SendRoom(ctx, channelID, text)
}

func (c *Client) dmChannel(ctx context.Context, userID string) (string, error) {
	c.mu.Lock()
	id, ok := c.dms[userID]
	c.mu.Unlock()
	if ok {
		return id, nil
	}

	ch, err := c.api.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("opening dm with %s: %w", userID, err)
	}
	c.mu.Lock()
	c.dms[userID] = ch.ID
	c.mu.Unlock()
	return ch.ID, nil
}

// toMessage converts a gateway event; messages from bots are dropped
func toMessage(m *discordgo.MessageCreate) (bot.Message, bool) {
	if m == nil || m.Message == nil || m.Author == nil || m.Author.Bot {
		return bot.Message{}, false
	}
	return bot.Message{
		RoomID:   m.ChannelID,
		UserID:   m.Author.ID,
		UserName: displayName(m),
		Text:     m.Content,
	}, true
}

func displayName(m *discordgo.MessageCreate) string {
	if m.Member != nil && m.Member.Nick != "" {
		return m.Member.Nick
	}
	if m.Author.GlobalName != "" {
		return m.Author.GlobalName
	}
	return m.Author.Username
}

// chunk splits text into pieces of at most limit bytes, preferring line
// breaks
func chunk(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}
	var parts []string
	var b strings.Builder
	for _, line := range strings.SplitAfter(text, "\n") {
		for len(line) > limit {
			if b.Len() > 0 {
				parts = append(parts, strings.TrimRight(b.String(), "\n"))
				b.Reset()
			}
			cut := limit
			for cut > 0 && !utf8RuneStart(line[cut]) {
				cut--
			}
			if cut == 0 {
				cut = limit
			}
			parts = append(parts, line[:cut])
			line = line[cut:]
		}
		if b.Len()+len(line) > limit {
			parts = append(parts, strings.TrimRight(b.String(), "\n"))
			b.Reset()
		}
		b.WriteString(line)
	}
	if b.Len() > 0 {
		parts = append(parts, strings.TrimRight(b.String(), "\n"))
	}
	return parts
}

func utf8RuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
