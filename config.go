package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	DBPath     string        `env:"ROSTER_DB_PATH"`
	Layout     string        `env:"ROSTER_LAYOUT" envDefault:"desktop"`
	UndoWindow time.Duration `env:"ROSTER_UNDO_WINDOW" envDefault:"5s"`

	LogLevel  string `env:"ROSTER_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"ROSTER_LOG_FORMAT" envDefault:"console"`
}

// LoadConfig reads envFile if it exists, then the process environment.
// Variables already set in the environment win over the file.
func LoadConfig(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if cfg.DBPath == "" {
		path, err := defaultDBPath()
		if err != nil {
			return Config{}, err
		}
		cfg.DBPath = path
	}

	return cfg, cfg.Validate()
}

func defaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "roster", "database.db"), nil
}

func (c Config) Validate() error {
	var err error

	if c.DBPath == "" {
		err = multierr.Append(err, errors.New("database path is empty"))
	}

	switch Layout(c.Layout) {
	case LayoutDesktop, LayoutMobile:
	default:
		err = multierr.Append(err, fmt.Errorf("unknown layout %q", c.Layout))
	}

	if c.UndoWindow <= 0 {
		err = multierr.Append(err, fmt.Errorf("undo window must be positive, got %s", c.UndoWindow))
	}

	if _, lerr := zapcore.ParseLevel(c.LogLevel); lerr != nil {
		err = multierr.Append(err, lerr)
	}

	switch c.LogFormat {
	case "console", "json":
	default:
		err = multierr.Append(err, fmt.Errorf("unknown log format %q", c.LogFormat))
	}

	return err
}

func (c Config) Mobile() bool {
	return Layout(c.Layout) == LayoutMobile
}
