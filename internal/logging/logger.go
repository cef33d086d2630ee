package logging

import (
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/Iron-Ham/taglog/internal/diag"
	"github.com/Iron-Ham/taglog/internal/errors"
	"github.com/rs/zerolog"
)

// DefaultName is the logger name used when none is given.
const DefaultName = "DualTagLogger"

// Observer receives notifications about the logger's admission and fan-out
// decisions. Implementations must be safe for concurrent use and must not
// call back into the logger.
type Observer interface {
	EntryAccepted(e *Entry)
	EntryGated(level Level)
	EntryEvicted(e *Entry)
	HandlerFailed(handler string)
}

type nopObserver struct{}

func (nopObserver) EntryAccepted(*Entry) {}
func (nopObserver) EntryGated(Level)     {}
func (nopObserver) EntryEvicted(*Entry)  {}
func (nopObserver) HandlerFailed(string) {}

// Logger stamps events with a feature and a module tag, gates them by a
// minimum level, stores them and fans them out to handlers. It is safe for
// concurrent use; handlers run outside the storage lock.
type Logger struct {
	name     string
	storage  *Storage
	diag     *zerolog.Logger
	observer Observer
	now      func() time.Time

	mu       sync.RWMutex
	minLevel Level
	handlers []Handler
}

// Option configures a Logger.
type Option func(*Logger)

// WithName sets the logger name used in diagnostics.
func WithName(name string) Option {
	return func(l *Logger) { l.name = name }
}

// WithMinLevel sets the admission gate.
func WithMinLevel(level Level) Option {
	return func(l *Logger) { l.minLevel = level }
}

// WithMaxEntries bounds the in-memory storage.
func WithMaxEntries(n int) Option {
	return func(l *Logger) { l.storage = NewStorage(n) }
}

// WithHandlers appends handlers in invocation order.
func WithHandlers(handlers ...Handler) Option {
	return func(l *Logger) { l.handlers = append(l.handlers, handlers...) }
}

// WithDiagnostics sets where handler failures are reported.
func WithDiagnostics(logger zerolog.Logger) Option {
	return func(l *Logger) { l.diag = &logger }
}

// WithObserver installs an observer, e.g. a metrics collector.
func WithObserver(o Observer) Option {
	return func(l *Logger) {
		if o != nil {
			l.observer = o
		}
	}
}

// WithClock overrides the wall clock used to stamp entries.
func WithClock(now func() time.Time) Option {
	return func(l *Logger) {
		if now != nil {
			l.now = now
		}
	}
}

// New creates a logger. Without options it admits every level, keeps
// DefaultMaxEntries entries and has no handlers.
func New(opts ...Option) *Logger {
	l := &Logger{
		name:     DefaultName,
		minLevel: LevelDebug,
		observer: nopObserver{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.storage == nil {
		l.storage = NewStorage(DefaultMaxEntries)
	}
	if l.diag == nil {
		component := diag.WithComponent("logger")
		l.diag = &component
	}
	withName := l.diag.With().Str("logger", l.name).Logger()
	l.diag = &withName
	return l
}

// Name returns the logger name.
func (l *Logger) Name() string { return l.name }

// SetMinLevel changes the admission gate.
func (l *Logger) SetMinLevel(level Level) {
	l.mu.Lock()
	l.minLevel = level
	l.mu.Unlock()
}

// MinLevel returns the admission gate.
func (l *Logger) MinLevel() Level {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.minLevel
}

// AddHandler appends a handler; it runs after every existing handler.
func (l *Logger) AddHandler(h Handler) {
	l.mu.Lock()
	l.handlers = append(l.handlers, h)
	l.mu.Unlock()
}

// Handlers returns the handlers in invocation order.
func (l *Logger) Handlers() []Handler {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.handlers)
}

// Log records one event. Events below the minimum level are dropped before
// any entry is built. Handler failures are reported on diagnostics only.
func (l *Logger) Log(level Level, feature, module, function, message string, params Params) {
	l.mu.RLock()
	gate := l.minLevel
	handlers := l.handlers
	l.mu.RUnlock()

	if level < gate {
		l.observer.EntryGated(level)
		return
	}

	entry := NewEntry(l.now(), level, feature, module, function, message, params)

	if evicted := l.storage.Add(entry); evicted != nil {
		l.observer.EntryEvicted(evicted)
	}
	l.observer.EntryAccepted(entry)

	for _, h := range handlers {
		l.dispatch(h, entry)
	}
}

// dispatch calls h for e, converting errors and panics into diagnostics.
func (l *Logger) dispatch(h Handler, e *Entry) {
	name := handlerName(h)
	defer func() {
		if r := recover(); r != nil {
			l.reportHandlerFailure(name, e, fmt.Errorf("panic: %v", r))
		}
	}()
	if err := h.Handle(e); err != nil {
		l.reportHandlerFailure(name, e, err)
	}
}

func (l *Logger) reportHandlerFailure(name string, e *Entry, cause error) {
	err := errors.NewHandlerError(name, cause)
	l.observer.HandlerFailed(name)
	l.diag.Error().
		Err(err).
		Str("handler", name).
		Str("feature", e.feature).
		Str("module", e.module).
		Str("function", e.function).
		Msg("log handler failed")
}

// Debug logs at LevelDebug.
func (l *Logger) Debug(feature, module, function, message string, params Params) {
	l.Log(LevelDebug, feature, module, function, message, params)
}

// Info logs at LevelInfo.
func (l *Logger) Info(feature, module, function, message string, params Params) {
	l.Log(LevelInfo, feature, module, function, message, params)
}

// Warning logs at LevelWarning.
func (l *Logger) Warning(feature, module, function, message string, params Params) {
	l.Log(LevelWarning, feature, module, function, message, params)
}

// Error logs at LevelError.
func (l *Logger) Error(feature, module, function, message string, params Params) {
	l.Log(LevelError, feature, module, function, message, params)
}

// Critical logs at LevelCritical.
func (l *Logger) Critical(feature, module, function, message string, params Params) {
	l.Log(LevelCritical, feature, module, function, message, params)
}

// LogsByFeature returns a snapshot of the entries tagged with feature.
func (l *Logger) LogsByFeature(feature string) []*Entry {
	return l.storage.ByFeature(feature)
}

// LogsByModule returns a snapshot of the entries tagged with module.
func (l *Logger) LogsByModule(module string) []*Entry {
	return l.storage.ByModule(module)
}

// FilteredLogs returns the stored entries matching f.
func (l *Logger) FilteredLogs(f Filter) []*Entry {
	return l.storage.Filter(f)
}

// AllLogs returns a snapshot of every stored entry.
func (l *Logger) AllLogs() []*Entry {
	return l.storage.All()
}

// Storage returns the logger's storage.
func (l *Logger) Storage() *Storage {
	return l.storage
}

// Export writes the stored entries, or those matching filter when it is
// non-nil, to path in the given format.
func (l *Logger) Export(path string, filter *Filter, format Format) error {
	entries := l.AllLogs()
	if filter != nil {
		entries = FilterEntries(entries, *filter)
	}
	return ExportEntries(entries, path, format)
}

// Close closes every handler that implements io.Closer.
func (l *Logger) Close() error {
	var errs []error
	for _, h := range l.Handlers() {
		if closer, ok := h.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %s: %w", handlerName(h), err))
			}
		}
	}
	return errors.Join(errs...)
}
