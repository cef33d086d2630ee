package logging

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Iron-Ham/taglog/internal/diag"
	"github.com/rs/zerolog"
)

// rotationStampLayout is the suffix stamped onto rotated file names.
const rotationStampLayout = "20060102_150405"

// RotationConfig holds configuration for log rotation.
type RotationConfig struct {
	// RotateSize is the size in bytes above which the file is rotated before
	// the next write. A value of 0 disables rotation.
	RotateSize int64
	// MaxBackups is the number of rotated files to keep.
	// A value of 0 keeps every rotated file.
	MaxBackups int
	// Compress determines whether rotated files are gzip compressed.
	Compress bool
}

// DefaultRotationConfig returns a RotationConfig with sensible defaults.
func DefaultRotationConfig() RotationConfig {
	return RotationConfig{
		RotateSize: 10 * 1024 * 1024,
	}
}

// RotatingWriter appends to a file and rotates it by size. Before a write,
// if the current file is larger than RotateSize, the file is renamed to
// <stem>_<YYYYMMDD_HHMMSS><suffix> and a fresh file is opened. It is safe
// for concurrent use.
type RotatingWriter struct {
	mu sync.Mutex

	// Configuration
	filePath   string
	rotateSize int64
	maxBackups int
	compress   bool
	now        func() time.Time
	diag       zerolog.Logger

	// State
	file        *os.File
	currentSize int64
	compressing sync.WaitGroup
}

// NewRotatingWriter opens (or creates) filePath for appending.
func NewRotatingWriter(filePath string, config RotationConfig) (*RotatingWriter, error) {
	rw := &RotatingWriter{
		filePath:   filePath,
		rotateSize: config.RotateSize,
		maxBackups: config.MaxBackups,
		compress:   config.Compress,
		now:        time.Now,
		diag:       diag.WithComponent("rotation"),
	}

	if err := rw.openFile(); err != nil {
		return nil, err
	}

	return rw, nil
}

// openFile opens the log file for writing and sets the current size.
// The caller must hold the mutex.
func (rw *RotatingWriter) openFile() error {
	dir := filepath.Dir(rw.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(rw.filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to stat log file: %w", err)
	}

	rw.file = file
	rw.currentSize = info.Size()
	return nil
}

// Write implements io.Writer.
func (rw *RotatingWriter) Write(p []byte) (n int, err error) {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	if rw.file == nil {
		return 0, fmt.Errorf("log file is closed")
	}

	if rw.rotateSize > 0 && rw.currentSize > rw.rotateSize {
		if err := rw.rotate(); err != nil {
			// Keep writing to whatever file is open so the entry is not lost.
			rw.diag.Warn().Err(err).Str("path", rw.filePath).Msg("log rotation failed")
			if rw.file == nil {
				return 0, err
			}
		}
	}

	n, err = rw.file.Write(p)
	rw.currentSize += int64(n)
	return n, err
}

// rotate renames the current file and opens a fresh one.
// The caller must hold the mutex.
func (rw *RotatingWriter) rotate() error {
	if err := rw.file.Close(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	rw.file = nil

	rotatedPath := rw.rotatedPath(rw.now())
	if err := os.Rename(rw.filePath, rotatedPath); err != nil {
		if openErr := rw.openFile(); openErr != nil {
			return fmt.Errorf("failed to rename log file and reopen: %w", openErr)
		}
		return fmt.Errorf("failed to rename log file: %w", err)
	}

	if rw.compress {
		rw.compressing.Add(1)
		go func() {
			defer rw.compressing.Done()
			rw.compressFile(rotatedPath)
		}()
	}

	rw.pruneBackups()

	return rw.openFile()
}

// splitPath returns the file path without its extension, and the extension.
func (rw *RotatingWriter) splitPath() (stem, suffix string) {
	suffix = filepath.Ext(rw.filePath)
	return strings.TrimSuffix(rw.filePath, suffix), suffix
}

// rotatedPath returns a free rotation name for t. Rotations within the same
// second get a -N counter so no earlier backup is overwritten.
func (rw *RotatingWriter) rotatedPath(t time.Time) string {
	stem, suffix := rw.splitPath()
	base := stem + "_" + t.Format(rotationStampLayout)
	candidate := base + suffix
	for i := 1; exists(candidate) || exists(candidate+".gz"); i++ {
		candidate = fmt.Sprintf("%s-%d%s", base, i, suffix)
	}
	return candidate
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Backups returns the rotated files for this writer, oldest first.
func (rw *RotatingWriter) Backups() ([]string, error) {
	stem, suffix := rw.splitPath()
	pattern := stem + "_*" + suffix
	plain, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}
	gz, err := filepath.Glob(pattern + ".gz")
	if err != nil {
		return nil, err
	}
	if suffix == "" {
		// Without an extension the plain pattern already matches .gz files.
		gz = nil
	}
	// The glob also matches unrelated siblings such as app_audit.log; only
	// names carrying a rotation stamp are backups.
	stamped := regexp.MustCompile(`^` + regexp.QuoteMeta(filepath.Base(stem)) +
		`_\d{8}_\d{6}(-\d+)?` + regexp.QuoteMeta(suffix) + `(\.gz)?$`)
	var backups []string
	for _, path := range append(plain, gz...) {
		if stamped.MatchString(filepath.Base(path)) {
			backups = append(backups, path)
		}
	}

	modTimes := make(map[string]time.Time, len(backups))
	for _, path := range backups {
		if info, err := os.Stat(path); err == nil {
			modTimes[path] = info.ModTime()
		}
	}
	sort.SliceStable(backups, func(i, j int) bool {
		ti, tj := modTimes[backups[i]], modTimes[backups[j]]
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return backups[i] < backups[j]
	})
	return backups, nil
}

// pruneBackups removes the oldest rotated files beyond maxBackups.
func (rw *RotatingWriter) pruneBackups() {
	if rw.maxBackups <= 0 {
		return
	}
	backups, err := rw.Backups()
	if err != nil {
		rw.diag.Warn().Err(err).Msg("failed to list rotated logs")
		return
	}
	for len(backups) > rw.maxBackups {
		if err := os.Remove(backups[0]); err != nil && !os.IsNotExist(err) {
			rw.diag.Warn().Err(err).Str("path", backups[0]).Msg("failed to remove rotated log")
		}
		backups = backups[1:]
	}
}

// compressFile gzips path and removes the original after success.
func (rw *RotatingWriter) compressFile(path string) {
	src, err := os.Open(path)
	if err != nil {
		// The uncompressed backup is still there.
		rw.diag.Warn().Err(err).Str("path", path).Msg("failed to open log file for compression")
		return
	}
	defer func() { _ = src.Close() }()

	gzPath := path + ".gz"
	gzFile, err := os.Create(gzPath)
	if err != nil {
		rw.diag.Warn().Err(err).Str("path", gzPath).Msg("failed to create compressed log file")
		return
	}
	defer func() { _ = gzFile.Close() }()

	gzWriter := gzip.NewWriter(gzFile)
	if _, err := io.Copy(gzWriter, src); err != nil {
		_ = os.Remove(gzPath)
		rw.diag.Warn().Err(err).Str("path", gzPath).Msg("failed to write compressed log data")
		return
	}
	if err := gzWriter.Close(); err != nil {
		_ = os.Remove(gzPath)
		rw.diag.Warn().Err(err).Str("path", gzPath).Msg("failed to finalize compressed log file")
		return
	}

	_ = os.Remove(path)
}

// Sync flushes any buffered data to the underlying file.
func (rw *RotatingWriter) Sync() error {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	if rw.file == nil {
		return nil
	}

	return rw.file.Sync()
}

// Close syncs and closes the file and waits for pending compression.
func (rw *RotatingWriter) Close() error {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	defer rw.compressing.Wait()

	if rw.file == nil {
		return nil
	}

	if err := rw.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync log file: %w", err)
	}

	if err := rw.file.Close(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}

	rw.file = nil
	return nil
}

// CurrentSize returns the current size of the log file in bytes.
func (rw *RotatingWriter) CurrentSize() int64 {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	return rw.currentSize
}

// FilePath returns the path to the active log file.
func (rw *RotatingWriter) FilePath() string {
	return rw.filePath
}
