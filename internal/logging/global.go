package logging

import (
	"io"
	"sync"

	"github.com/rs/zerolog"
)

// Options configures a logger built by Configure.
type Options struct {
	Name       string
	MinLevel   Level
	MaxEntries int

	// Console enables a console handler writing to ConsoleOut
	// (stdout when nil).
	Console    bool
	ConsoleOut io.Writer

	// FilePath enables a JSON-lines file handler when non-empty.
	FilePath string
	Rotation RotationConfig

	Diagnostics *zerolog.Logger
	Observer    Observer
}

// DefaultOptions mirrors the logger Default builds: INFO and above to the
// console.
func DefaultOptions() Options {
	return Options{
		Name:       DefaultName,
		MinLevel:   LevelInfo,
		MaxEntries: DefaultMaxEntries,
		Console:    true,
		Rotation:   DefaultRotationConfig(),
	}
}

var (
	globalMu sync.Mutex
	global   *Logger
)

// Default returns the process-wide logger, creating one with a console
// handler on first use.
func Default() *Logger {
	globalMu.Lock()
	defer globalMu.Unlock()
	if global == nil {
		global = New(WithHandlers(NewConsoleHandler(nil, nil)))
	}
	return global
}

// SetDefault replaces the process-wide logger and returns the previous one.
func SetDefault(l *Logger) *Logger {
	globalMu.Lock()
	defer globalMu.Unlock()
	previous := global
	global = l
	return previous
}

// Build creates a logger from opts without touching the process-wide one.
func Build(opts Options) (*Logger, error) {
	options := []Option{
		WithMinLevel(opts.MinLevel),
		WithMaxEntries(opts.MaxEntries),
		WithObserver(opts.Observer),
	}
	if opts.Name != "" {
		options = append(options, WithName(opts.Name))
	}
	if opts.Diagnostics != nil {
		options = append(options, WithDiagnostics(*opts.Diagnostics))
	}
	if opts.Console {
		options = append(options, WithHandlers(NewConsoleHandler(opts.ConsoleOut, nil)))
	}
	if opts.FilePath != "" {
		fh, err := NewFileHandler(opts.FilePath, opts.Rotation, nil)
		if err != nil {
			return nil, err
		}
		options = append(options, WithHandlers(fh))
	}
	return New(options...), nil
}

// Configure replaces the process-wide logger with a freshly built one: new
// storage, new handlers and the given level. Earlier history is discarded
// and the replaced logger's closable handlers are closed. On error the
// previous logger stays in place.
func Configure(opts Options) (*Logger, error) {
	l, err := Build(opts)
	if err != nil {
		return nil, err
	}
	if previous := SetDefault(l); previous != nil && previous != l {
		if cerr := previous.Close(); cerr != nil {
			l.diag.Warn().Err(cerr).Str("logger", previous.name).Msg("closing replaced logger failed")
		}
	}
	return l, nil
}
