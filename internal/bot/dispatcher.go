// Package bot turns chat commands into game operations and replies.
package bot

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aaronzipp/bunker/internal/game"
	"github.com/aaronzipp/bunker/internal/models"
	"github.com/aaronzipp/bunker/internal/render"
	"github.com/aaronzipp/bunker/internal/store"
)

// Messenger delivers text through a chat transport
type Messenger interface {
	SendRoom(ctx context.Context, roomID, text string) error
	SendPrivate(ctx context.Context, userID, text string) error
}

// Options tune the dispatcher
type Options struct {
	Prefix              string
	DeliveryTimeout     time.Duration
	DeliveryConcurrency int
}

// Dispatcher handles chat commands for every room
type Dispatcher struct {
	sessions *store.SessionStore
	engine   *game.Engine
	out      Messenger
	opts     Options
	logger   *zap.Logger
}

// NewDispatcher creates a dispatcher replying through out
func NewDispatcher(sessions *store.SessionStore, engine *game.Engine, out Messenger, opts Options, logger *zap.Logger) *Dispatcher {
	if opts.Prefix == "" {
		opts.Prefix = "/"
	}
	if opts.DeliveryTimeout <= 0 {
		opts.DeliveryTimeout = 5 * time.Second
	}
	if opts.DeliveryConcurrency <= 0 {
		opts.DeliveryConcurrency = 1
	}
	return &Dispatcher{
		sessions: sessions,
		engine:   engine,
		out:      out,
		opts:     opts,
		logger:   logger,
	}
}

// Handle runs the command in msg, if any. Non-command text is ignored.
func (d *Dispatcher) Handle(ctx context.Context, msg Message) {
	cmd, args, ok := ParseCommand(d.opts.Prefix, msg.Text)
	if !ok {
		return
	}
	log := d.logger.With(zap.String("room", msg.RoomID), zap.String("player", msg.UserID), zap.String("command", cmd))
	log.Debug("command received", zap.String("args", args))

	switch cmd {
	case "start", "help":
		d.reply(ctx, msg.RoomID, render.Help(d.opts.Prefix))
	case "newgame":
		d.NewGame(ctx, msg)
	case "join":
		d.Join(ctx, msg)
	case "begin":
		d.Begin(ctx, msg)
	case "round":
		d.Round(ctx, msg)
	case "startvote":
		d.StartVote(ctx, msg)
	case "vote":
		d.Vote(ctx, msg, args)
	case "endvote":
		d.EndVote(ctx, msg)
	case "status":
		d.Status(ctx, msg)
	case "cards":
		d.Cards(ctx, msg)
	case "history":
		d.History(ctx, msg)
	default:
		log.Debug("unknown command")
	}
}

// NewGame replaces the room's session with a fresh one
func (d *Dispatcher) NewGame(ctx context.Context, msg Message) {
	d.sessions.Create(msg.RoomID)
	d.logger.Info("session created", zap.String("room", msg.RoomID))
	d.reply(ctx, msg.RoomID, "A new game has been created. Players can join with "+d.opts.Prefix+"join")
}

// Join adds the sender to the room's session
func (d *Dispatcher) Join(ctx context.Context, msg Message) {
	var text string
	err := d.withSession(msg.RoomID, func(s *models.Session) error {
		p, err := d.engine.AddPlayer(s, msg.UserID, msg.UserName)
		if err != nil {
			return err
		}
		text = p.Name + " joined the game!"
		return nil
	})
	d.respond(ctx, msg, text, err)
}

type cardSheet struct {
	playerID string
	name     string
	text     string
}

// StartReport lists who was dealt cards and whose cards did not arrive
type StartReport struct {
	Dealt    []*models.Player
	Failures []*game.DeliveryError
}

// Begin deals the cards and delivers each player's sheet privately
func (d *Dispatcher) Begin(ctx context.Context, msg Message) *StartReport {
	var (
		report StartReport
		sheets []cardSheet
	)
	err := d.withSession(msg.RoomID, func(s *models.Session) error {
		players, err := d.engine.Start(s)
		if err != nil {
			return err
		}
		report.Dealt = players
		categories := d.engine.Catalog().Categories()
		for _, p := range players {
			sheets = append(sheets, cardSheet{playerID: p.ID, name: p.Name, text: render.CardSheet(categories, p)})
		}
		return nil
	})
	if err != nil {
		d.respond(ctx, msg, "", err)
		return nil
	}

	d.logger.Info("game started", zap.String("room", msg.RoomID), zap.Int("players", len(sheets)))
	d.reply(ctx, msg.RoomID, "The game begins! Dealing cards in private messages...")

	report.Failures = d.deliver(ctx, sheets)
	for _, f := range report.Failures {
		d.logger.Warn("card delivery failed", zap.String("room", msg.RoomID), zap.String("player", f.PlayerID), zap.Error(f.Err))
		d.reply(ctx, msg.RoomID, render.DeliveryFailure(f))
	}
	return &report
}

// deliver sends every sheet concurrently. A failed recipient never stops the
// others.
func (d *Dispatcher) deliver(ctx context.Context, sheets []cardSheet) []*game.DeliveryError {
	results := make([]*game.DeliveryError, len(sheets))

	var g errgroup.Group
	g.SetLimit(d.opts.DeliveryConcurrency)
	for i, sheet := range sheets {
		g.Go(func() error {
			sendCtx, cancel := context.WithTimeout(ctx, d.opts.DeliveryTimeout)
			defer cancel()
			if err := d.out.SendPrivate(sendCtx, sheet.playerID, sheet.text); err != nil {
				results[i] = &game.DeliveryError{PlayerID: sheet.playerID, Name: sheet.name, Err: err}
			}
			return nil
		})
	}
	_ = g.Wait()

	failures := make([]*game.DeliveryError, 0)
	for _, r := range results {
		if r != nil {
			failures = append(failures, r)
		}
	}
	return failures
}

// Round reveals the next category for every active player
func (d *Dispatcher) Round(ctx context.Context, msg Message) {
	var text string
	err := d.withSession(msg.RoomID, func(s *models.Session) error {
		reveals, err := d.engine.AdvanceRound(s)
		if err != nil {
			return err
		}
		text = render.RoundReveals(s.Round, reveals)
		return nil
	})
	d.respond(ctx, msg, text, err)
}

// StartVote opens a vote
func (d *Dispatcher) StartVote(ctx context.Context, msg Message) {
	var text string
	err := d.withSession(msg.RoomID, func(s *models.Session) error {
		if err := d.engine.StartVote(s); err != nil {
			return err
		}
		text = render.VotePrompt(s, d.opts.Prefix)
		return nil
	})
	d.respond(ctx, msg, text, err)
}

// Vote records the sender's vote against the player named by args
func (d *Dispatcher) Vote(ctx context.Context, msg Message, args string) {
	if args == "" {
		d.reply(ctx, msg.RoomID, "Usage: "+d.opts.Prefix+"vote <name>")
		return
	}
	var text string
	err := d.withSession(msg.RoomID, func(s *models.Session) error {
		voter := msg.UserName
		if p, ok := s.Players[msg.UserID]; ok {
			voter = p.Name
		}
		target, err := d.engine.CastVote(s, msg.UserID, voter, args)
		if err != nil {
			return err
		}
		text = voter + " voted for " + target.Name
		return nil
	})
	d.respond(ctx, msg, text, err)
}

// EndVote resolves the open vote
func (d *Dispatcher) EndVote(ctx context.Context, msg Message) {
	var text string
	err := d.withSession(msg.RoomID, func(s *models.Session) error {
		elim, err := d.engine.ResolveVote(s)
		if err != nil {
			return err
		}
		d.logger.Info("player eliminated", zap.String("room", msg.RoomID), zap.String("player", elim.Player.ID), zap.Int("votes", elim.Votes))
		text = render.Elimination(elim)
		return nil
	})
	d.respond(ctx, msg, text, err)
}

// Status shows players and their revealed cards
func (d *Dispatcher) Status(ctx context.Context, msg Message) {
	var text string
	err := d.withSession(msg.RoomID, func(s *models.Session) error {
		text = render.Status(s)
		return nil
	})
	d.respond(ctx, msg, text, err)
}

// History shows the session log
func (d *Dispatcher) History(ctx context.Context, msg Message) {
	var text string
	err := d.withSession(msg.RoomID, func(s *models.Session) error {
		text = render.History(s)
		return nil
	})
	d.respond(ctx, msg, text, err)
}

// Cards sends the sender's card sheet again in private
func (d *Dispatcher) Cards(ctx context.Context, msg Message) {
	var sheet cardSheet
	err := d.withSession(msg.RoomID, func(s *models.Session) error {
		if s.Status == models.StatusNotStarted {
			return game.ErrNotInProgress
		}
		p, ok := s.Players[msg.UserID]
		if !ok {
			return errNotPlaying
		}
		sheet = cardSheet{playerID: p.ID, name: p.Name, text: render.CardSheet(d.engine.Catalog().Categories(), p)}
		return nil
	})
	if errors.Is(err, errNotPlaying) {
		d.reply(ctx, msg.RoomID, "You are not in this game.")
		return
	}
	if err != nil {
		d.respond(ctx, msg, "", err)
		return
	}
	if failures := d.deliver(ctx, []cardSheet{sheet}); len(failures) > 0 {
		d.logger.Warn("card delivery failed", zap.String("room", msg.RoomID), zap.String("player", sheet.playerID), zap.Error(failures[0].Err))
		d.reply(ctx, msg.RoomID, render.DeliveryFailure(failures[0]))
	}
}

var errNotPlaying = errors.New("sender is not a player")

// withSession runs fn with the room's session locked. Replies are sent by
// the caller after the lock is released.
func (d *Dispatcher) withSession(room string, fn func(s *models.Session) error) error {
	s, err := d.sessions.Lookup(room)
	if err != nil {
		return err
	}
	s.Lock()
	defer s.Unlock()
	return fn(s)
}

func (d *Dispatcher) respond(ctx context.Context, msg Message, text string, err error) {
	if err != nil {
		d.logger.Debug("command rejected", zap.String("room", msg.RoomID), zap.String("player", msg.UserID), zap.Error(err))
		text = render.ErrorMessage(err, d.opts.Prefix)
	}
	d.reply(ctx, msg.RoomID, text)
}

func (d *Dispatcher) reply(ctx context.Context, room, text string) {
	if err := d.out.SendRoom(ctx, room, text); err != nil {
		d.logger.Warn("room reply failed", zap.String("room", room), zap.Error(err))
	}
}
