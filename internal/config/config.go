// Package config loads markupguard settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/njchilds90/markupguard"
)

// Config holds process settings. The strict flag is only a default for
// the caller; it is passed explicitly into every sanitize call.
type Config struct {
	Strict        bool   `env:"MARKUPGUARD_STRICT"          envDefault:"true"`
	MaxInputBytes int    `env:"MARKUPGUARD_MAX_INPUT_BYTES" envDefault:"1048576"`
	MaxDepth      int    `env:"MARKUPGUARD_MAX_DEPTH"       envDefault:"256"`
	MaxNodes      int    `env:"MARKUPGUARD_MAX_NODES"       envDefault:"50000"`
	Workers       int    `env:"MARKUPGUARD_WORKERS"         envDefault:"1"`
	LogLevel      string `env:"MARKUPGUARD_LOG_LEVEL"       envDefault:"info"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses and validates Config from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the sanitizer cannot run with.
func (c Config) Validate() error {
	if c.MaxInputBytes <= 0 {
		return errors.New("max input bytes must be greater than zero")
	}
	if c.MaxDepth <= 0 {
		return errors.New("max depth must be greater than zero")
	}
	if c.MaxNodes <= 0 {
		return errors.New("max nodes must be greater than zero")
	}
	if c.Workers <= 0 {
		return errors.New("workers must be greater than zero")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Limits returns the per-item limits described by c.
func (c Config) Limits() markupguard.Limits {
	return markupguard.Limits{
		MaxInputBytes: c.MaxInputBytes,
		MaxDepth:      c.MaxDepth,
		MaxNodes:      c.MaxNodes,
	}
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// Exitf writes a formatted error message to stderr and exits with code 1.
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
