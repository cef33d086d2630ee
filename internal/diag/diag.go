// Package diag provides the diagnostics stream for taglog itself.
//
// Diagnostics are not application log entries. They report problems inside
// the logging machinery (a failing handler, a rotation that could not rename
// its file, a corrupt line while reading an export) and CLI progress. They are
// written with zerolog to stderr by default so they never mix with the
// console handler's stdout output.
package diag

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Level represents a diagnostics level.
type Level string

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
)

// Config holds diagnostics configuration.
type Config struct {
	Level      Level
	JSONOutput bool
	Output     io.Writer
}

var (
	mu     sync.RWMutex
	global = New(Config{Level: WarnLevel})
)

// ParseLevel maps a level name to a Level, defaulting to warn.
func ParseLevel(name string) Level {
	switch Level(strings.ToLower(strings.TrimSpace(name))) {
	case DebugLevel:
		return DebugLevel
	case InfoLevel:
		return InfoLevel
	case ErrorLevel:
		return ErrorLevel
	default:
		return WarnLevel
	}
}

func (l Level) zerolog() zerolog.Level {
	switch l {
	case DebugLevel:
		return zerolog.DebugLevel
	case InfoLevel:
		return zerolog.InfoLevel
	case ErrorLevel:
		return zerolog.ErrorLevel
	default:
		return zerolog.WarnLevel
	}
}

// New builds a zerolog logger from cfg without touching the package global.
func New(cfg Config) zerolog.Logger {
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	var logger zerolog.Logger
	if cfg.JSONOutput {
		logger = zerolog.New(output)
	} else {
		logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		})
	}
	return logger.Level(cfg.Level.zerolog()).With().Timestamp().Logger()
}

// Init replaces the package-level diagnostics logger.
func Init(cfg Config) {
	logger := New(cfg)
	mu.Lock()
	global = logger
	mu.Unlock()
}

// Logger returns the package-level diagnostics logger.
func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

// WithComponent creates a child logger with a component field.
func WithComponent(component string) zerolog.Logger {
	return Logger().With().Str("component", component).Logger()
}
