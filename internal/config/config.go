// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every runtime setting
type Config struct {
	Addr                string        `env:"BUNKER_ADDR" envDefault:":8080"`
	PublicURL           string        `env:"BUNKER_PUBLIC_URL" envDefault:"http://localhost:8080"`
	DiscordToken        string        `env:"BUNKER_DISCORD_TOKEN"`
	CommandPrefix       string        `env:"BUNKER_COMMAND_PREFIX" envDefault:"/"`
	CardsPath           string        `env:"BUNKER_CARDS_PATH"`
	RandomSeed          int64         `env:"BUNKER_RANDOM_SEED"`
	DeliveryTimeout     time.Duration `env:"BUNKER_DELIVERY_TIMEOUT" envDefault:"5s"`
	DeliveryConcurrency int           `env:"BUNKER_DELIVERY_CONCURRENCY" envDefault:"8"`
	SSEBufferSize       int           `env:"BUNKER_SSE_BUFFER" envDefault:"10"`
	LogLevel            string        `env:"BUNKER_LOG_LEVEL" envDefault:"info"`
	LogFormat           string        `env:"BUNKER_LOG_FORMAT" envDefault:"json"`
}

// Load reads an optional .env file, then parses and validates the
// environment. A missing envFile is not an error.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the bot cannot run with
func (c *Config) Validate() error {
	switch {
	case c.CommandPrefix == "":
		return errors.New("config: command prefix must not be empty")
	case c.DeliveryTimeout <= 0:
		return errors.New("config: delivery timeout must be positive")
	case c.DeliveryConcurrency <= 0:
		return errors.New("config: delivery concurrency must be positive")
	case c.SSEBufferSize <= 0:
		return errors.New("config: sse buffer must be positive")
	case c.LogFormat != "json" && c.LogFormat != "console":
		return fmt.Errorf("config: unknown log format %q", c.LogFormat)
	}
	return nil
}
