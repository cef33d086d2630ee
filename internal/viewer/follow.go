package viewer

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Iron-Ham/taglog/internal/diag"
	"github.com/Iron-Ham/taglog/internal/logging"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Follower streams entries appended to a JSON-lines log file. It watches
// the containing directory so it survives the file being rotated away and
// recreated under the same name.
type Follower struct {
	path    string
	watcher *fsnotify.Watcher
	file    *os.File
	reader  *bufio.Reader
	pending []byte
	skipped int
	log     zerolog.Logger
}

// NewFollower opens path positioned at its current end and starts
// watching for changes. Only entries written after this call are emitted.
func NewFollower(path string) (*Follower, error) {
	path = filepath.Clean(path)

	f := &Follower{path: path, log: diag.WithComponent("follow")}
	if err := f.open(io.SeekEnd); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		_ = f.file.Close()
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = f.file.Close()
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}
	f.watcher = watcher
	return f, nil
}

func (f *Follower) open(whence int) error {
	file, err := os.Open(f.path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	if _, err := file.Seek(0, whence); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to seek log file: %w", err)
	}
	if f.file != nil {
		_ = f.file.Close()
	}
	f.file = file
	f.reader = bufio.NewReader(file)
	f.pending = f.pending[:0]
	return nil
}

// Skipped returns how many appended lines could not be decoded.
func (f *Follower) Skipped() int {
	return f.skipped
}

// Run calls emit for every complete entry appended to the file until ctx
// is cancelled or the watcher fails. It returns nil on cancellation.
func (f *Follower) Run(ctx context.Context, emit func(*logging.Entry)) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-f.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != f.path {
				continue
			}
			switch {
			case event.Has(fsnotify.Create):
				// Rotated: finish the old file, then start the new one from the top.
				f.drain(emit)
				if err := f.open(io.SeekStart); err != nil {
					f.log.Warn().Err(err).Str("path", f.path).Msg("reopen after rotation failed")
					continue
				}
				f.drain(emit)
			case event.Has(fsnotify.Write):
				f.drain(emit)
			case event.Has(fsnotify.Rename), event.Has(fsnotify.Remove):
				f.drain(emit)
			}

		case err, ok := <-f.watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("file watcher failed: %w", err)
		}
	}
}

// drain reads every complete line available. A trailing partial line is
// kept until its newline arrives.
func (f *Follower) drain(emit func(*logging.Entry)) {
	for {
		chunk, err := f.reader.ReadBytes('\n')
		f.pending = append(f.pending, chunk...)
		if err != nil {
			if err != io.EOF {
				f.log.Warn().Err(err).Str("path", f.path).Msg("read failed")
			}
			return
		}

		line := bytes.TrimSpace(f.pending)
		if len(line) > 0 {
			if e, perr := logging.ParseLine(line); perr != nil {
				f.skipped++
				f.log.Debug().Err(perr).Msg("skipping undecodable line")
			} else {
				emit(e)
			}
		}
		f.pending = f.pending[:0]
	}
}

// Close stops watching and releases the file.
func (f *Follower) Close() error {
	werr := f.watcher.Close()
	ferr := f.file.Close()
	if werr != nil {
		return werr
	}
	return ferr
}
