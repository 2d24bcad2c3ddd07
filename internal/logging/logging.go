// Package logging provides the zerolog plumbing shared by all commands:
// logger construction, component tagging, run identifiers, and context
// propagation.
package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

// Config controls logger construction.
type Config struct {
	// Level is a zerolog level name ("debug", "info", ...). Invalid or
	// empty values fall back to info.
	Level string

	// File, when set, appends JSON logs to this path in addition to the
	// console writer on stderr.
	File string
}

// New builds a logger from cfg. The returned closer releases the log file
// handle, if any, and is safe to call when no file was opened.
func New(cfg Config) (zerolog.Logger, func() error, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	consoleWriter := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	writers := []io.Writer{consoleWriter}
	closer := func() error { return nil }

	if cfg.File != "" {
		logFile, fileErr := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
		if fileErr != nil {
			return zerolog.Logger{}, nil, fmt.Errorf("opening log file: %w", fileErr)
		}
		writers = append(writers, logFile)
		closer = logFile.Close
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Logger()

	return logger, closer, nil
}

// ComponentLogger tags a logger with the component that owns it.
func ComponentLogger(logger zerolog.Logger, component string) zerolog.Logger {
	return logger.With().Str("component", component).Logger()
}

// NewRunID generates a sortable unique identifier for one enhancement run.
func NewRunID() string {
	return ulid.Make().String()
}

// WithContext attaches the logger to ctx for downstream retrieval.
func WithContext(ctx context.Context, logger zerolog.Logger) context.Context {
	return logger.WithContext(ctx)
}

// FromContext returns the logger attached to ctx, or a disabled logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}
