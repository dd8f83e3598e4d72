package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/aaronzipp/bunker/internal/bot"
	"github.com/aaronzipp/bunker/internal/cards"
	"github.com/aaronzipp/bunker/internal/config"
	"github.com/aaronzipp/bunker/internal/discord"
	"github.com/aaronzipp/bunker/internal/game"
	"github.com/aaronzipp/bunker/internal/handlers"
	"github.com/aaronzipp/bunker/internal/logging"
	"github.com/aaronzipp/bunker/internal/random"
	"github.com/aaronzipp/bunker/internal/sse"
	"github.com/aaronzipp/bunker/internal/store"
)

var (
	verbose bool
	envFile string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "bunker",
	Short: "Bunker party game bot",
	Long: `Bunker runs the "Bunker" party game in chat rooms.

Players join, get secret cards, reveal one card per round and vote
each other out until one survivor keeps the last seat in the bunker.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(envFile)
		if err != nil {
			return err
		}
		level := cfg.LogLevel
		if verbose {
			level = "debug"
		}
		logger, err = logging.New(level, cfg.LogFormat)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the game over HTTP with Server-Sent Events",
	RunE:  runServe,
}

var discordCmd = &cobra.Command{
	Use:   "discord",
	Short: "Run the game as a Discord bot",
	RunE:  runDiscord,
}

var cardsCmd = &cobra.Command{
	Use:   "cards",
	Short: "Validate the card catalog and print it as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := cards.Load(cfg.CardsPath)
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(catalog); err != nil {
			return fmt.Errorf("encode catalog: %w", err)
		}
		return enc.Close()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional file of environment variables")
	rootCmd.AddCommand(serveCmd, discordCmd, cardsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newEngine loads the catalog and random source shared by every room
func newEngine() (*game.Engine, error) {
	catalog, err := cards.Load(cfg.CardsPath)
	if err != nil {
		return nil, err
	}
	src, err := random.NewSource(cfg.RandomSeed)
	if err != nil {
		return nil, err
	}
	return game.NewEngine(catalog, src), nil
}

func botOptions() bot.Options {
	return bot.Options{
		Prefix:              cfg.CommandPrefix,
		DeliveryTimeout:     cfg.DeliveryTimeout,
		DeliveryConcurrency: cfg.DeliveryConcurrency,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, err := newEngine()
	if err != nil {
		return err
	}
	sessions := store.NewSessionStore()
	hub := sse.NewHub(cfg.SSEBufferSize, cfg.DeliveryTimeout, logger.Named("sse"))
	dispatcher := bot.NewDispatcher(sessions, engine, hub, botOptions(), logger.Named("bot"))

	app := &handlers.Context{
		Sessions:  sessions,
		Commands:  dispatcher,
		Hub:       hub,
		Prefix:    cfg.CommandPrefix,
		PublicURL: cfg.PublicURL,
		Logger:    logger.Named("http"),
	}
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runDiscord(cmd *cobra.Command, args []string) error {
	if cfg.DiscordToken == "" {
		return errors.New("BUNKER_DISCORD_TOKEN is required")
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, err := newEngine()
	if err != nil {
		return err
	}
	client, err := discord.New(cfg.DiscordToken, logger.Named("discord"))
	if err != nil {
		return err
	}
	dispatcher := bot.NewDispatcher(store.NewSessionStore(), engine, client, botOptions(), logger.Named("bot"))
	return client.Serve(ctx, dispatcher)
}
