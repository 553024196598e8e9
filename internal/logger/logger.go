// Package logger builds the service's zerolog logger.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/jackc/pgx/v5/tracelog"
	zerologadapter "github.com/jackc/pgx-zerolog"
	"github.com/rs/zerolog"

	"github.com/akave-ai/alephweb/internal/config"
)

// New returns a logger configured from the observability section.
func New(cfg *config.ObservabilityConfig) zerolog.Logger {
	return NewWithWriter(cfg, os.Stderr)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(cfg *config.ObservabilityConfig, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	format := cfg.Logging.Format
	if format == "" {
		format = "console"
		if cfg.IsProduction() {
			format = "json"
		}
	}

	var w io.Writer = out
	if format == "console" {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Str("service", cfg.ServiceName).
		Str("environment", cfg.Environment).
		Logger()
}

// PgxTracer returns a pgx tracer that logs queries through logger.
func PgxTracer(logger zerolog.Logger, cfg *config.ObservabilityConfig) *tracelog.TraceLog {
	level := tracelog.LogLevelWarn
	if cfg.Logging.Level == "debug" || cfg.Logging.Level == "trace" {
		level = tracelog.LogLevelDebug
	}
	return &tracelog.TraceLog{
		Logger:   zerologadapter.NewLogger(logger.With().Str("component", "pgx").Logger()),
		LogLevel: level,
	}
}
