package logger

import (
	"log/slog"
	"os"
	"strings"

	"github.com/dmitrymomot/launchpad/core/config"
)

// Config controls log output, sourced from the environment.
type Config struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`   // debug, info, warn, error
	Format string `env:"LOG_FORMAT" envDefault:"text"`  // text or json
	Source bool   `env:"LOG_SOURCE" envDefault:"false"` // annotate records with file:line
}

// New returns a logger configured from LOG_* environment variables.
// Unknown level or format values fall back to info/text rather than failing:
// logging must be available before configuration validation runs.
func New() *slog.Logger {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		cfg = Config{Level: "info", Format: "text"}
	}
	return NewWithConfig(cfg)
}

// NewWithConfig builds a logger from an explicit configuration.
func NewWithConfig(cfg Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     parseLevel(cfg.Level),
		AddSource: cfg.Source,
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
