package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Handler is a sink invoked once for every accepted entry. Errors returned
// by Handle are reported on the logger's diagnostics and never reach the
// code that emitted the entry.
type Handler interface {
	Handle(e *Entry) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(e *Entry) error

// Handle calls f(e).
func (f HandlerFunc) Handle(e *Entry) error {
	return f(e)
}

// FormatFunc renders an entry as one line without a trailing newline.
type FormatFunc func(e *Entry) string

// FormatText renders the entry's formatted string.
func FormatText(e *Entry) string {
	return e.FormattedString()
}

// FormatJSON renders the entry as a single JSON line.
func FormatJSON(e *Entry) string {
	data, err := e.ToJSON()
	if err != nil {
		// Unencodable params: keep the line but drop them.
		rec := e.Record()
		rec.Parameters = Params{"_error": err.Error()}
		data, _ = EntryFromRecord(rec).ToJSON()
	}
	return string(data)
}

// ConsoleHandler writes formatted entries to a writer, stdout by default.
type ConsoleHandler struct {
	mu     sync.Mutex
	out    io.Writer
	format FormatFunc
}

// NewConsoleHandler creates a console handler. A nil writer selects
// os.Stdout and a nil format selects FormatText.
func NewConsoleHandler(out io.Writer, format FormatFunc) *ConsoleHandler {
	if out == nil {
		out = os.Stdout
	}
	if format == nil {
		format = FormatText
	}
	return &ConsoleHandler{out: out, format: format}
}

// Name identifies the handler in diagnostics.
func (h *ConsoleHandler) Name() string { return "console" }

// Handle writes one line for e.
func (h *ConsoleHandler) Handle(e *Entry) error {
	line := h.format(e) + "\n"
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, line)
	return err
}

// FileHandler appends formatted entries to a size-rotated file, one per
// line. Its lock is the rotating writer's and is independent of storage.
type FileHandler struct {
	writer *RotatingWriter
	format FormatFunc
}

// NewFileHandler opens path for appending. A nil format selects FormatJSON,
// producing a JSON-lines file.
func NewFileHandler(path string, rotation RotationConfig, format FormatFunc) (*FileHandler, error) {
	writer, err := NewRotatingWriter(path, rotation)
	if err != nil {
		return nil, err
	}
	if format == nil {
		format = FormatJSON
	}
	return &FileHandler{writer: writer, format: format}, nil
}

// Name identifies the handler in diagnostics.
func (h *FileHandler) Name() string { return "file:" + h.writer.FilePath() }

// Handle appends one line for e.
func (h *FileHandler) Handle(e *Entry) error {
	if _, err := io.WriteString(h.writer, h.format(e)+"\n"); err != nil {
		return fmt.Errorf("failed to write log entry: %w", err)
	}
	return nil
}

// Writer returns the underlying rotating writer.
func (h *FileHandler) Writer() *RotatingWriter {
	return h.writer
}

// Close closes the underlying file.
func (h *FileHandler) Close() error {
	return h.writer.Close()
}

// handlerName returns a diagnostics label for h.
func handlerName(h Handler) string {
	if named, ok := h.(interface{ Name() string }); ok {
		return named.Name()
	}
	return fmt.Sprintf("%T", h)
}
