package logging

import (
	"bytes"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestNewRotatingWriter(t *testing.T) {
	t.Run("creates file and parent directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "dir", "app.log")

		rw, err := NewRotatingWriter(path, DefaultRotationConfig())
		if err != nil {
			t.Fatalf("NewRotatingWriter failed: %v", err)
		}
		defer rw.Close()

		if _, err := os.Stat(path); err != nil {
			t.Errorf("log file not created: %v", err)
		}
		if rw.FilePath() != path {
			t.Errorf("FilePath() = %q, want %q", rw.FilePath(), path)
		}
	})

	t.Run("picks up the size of an existing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.log")
		if err := os.WriteFile(path, []byte("existing content\n"), 0644); err != nil {
			t.Fatal(err)
		}

		rw, err := NewRotatingWriter(path, DefaultRotationConfig())
		if err != nil {
			t.Fatalf("NewRotatingWriter failed: %v", err)
		}
		defer rw.Close()

		if rw.CurrentSize() != 17 {
			t.Errorf("CurrentSize() = %d, want 17", rw.CurrentSize())
		}
	})
}

func TestRotatingWriter_RotatesWhenSizeExceeded(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	stamp := time.Date(2024, 5, 1, 10, 30, 0, 0, time.Local)

	rw, err := NewRotatingWriter(path, RotationConfig{RotateSize: 100})
	if err != nil {
		t.Fatalf("NewRotatingWriter failed: %v", err)
	}
	rw.now = fixedClock(stamp)

	// Grow the file past 100 bytes; no rotation happens while it is at or
	// below the limit before a write.
	line := []byte(strings.Repeat("x", 39) + "\n")
	var before bytes.Buffer
	for rw.CurrentSize() <= 100 {
		if _, err := rw.Write(line); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
		before.Write(line)
	}

	after := []byte("after rotation\n")
	if _, err := rw.Write(after); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := rw.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	rotated := filepath.Join(dir, "app_20240501_103000.log")
	got, err := os.ReadFile(rotated)
	if err != nil {
		t.Fatalf("rotated file missing: %v", err)
	}
	if !bytes.Equal(got, before.Bytes()) {
		t.Errorf("rotated file content = %q, want %q", got, before.Bytes())
	}

	active, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("active file missing: %v", err)
	}
	if !bytes.Equal(active, after) {
		t.Errorf("active file content = %q, want %q", active, after)
	}
}

func TestRotatingWriter_NameCollisionGetsCounter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	stamp := time.Date(2024, 5, 1, 10, 30, 0, 0, time.Local)

	rw, err := NewRotatingWriter(path, RotationConfig{RotateSize: 10})
	if err != nil {
		t.Fatalf("NewRotatingWriter failed: %v", err)
	}
	rw.now = fixedClock(stamp)

	for _, chunk := range []string{"first chunk!\n", "second chunk\n", "third\n"} {
		if _, err := rw.Write([]byte(chunk)); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}
	rw.Close()

	for path, want := range map[string]string{
		filepath.Join(dir, "app_20240501_103000.log"):   "first chunk!\n",
		filepath.Join(dir, "app_20240501_103000-1.log"): "second chunk\n",
		filepath.Join(dir, "app.log"):                   "third\n",
	} {
		got, err := os.ReadFile(path)
		if err != nil {
			t.Errorf("missing %s: %v", filepath.Base(path), err)
			continue
		}
		if string(got) != want {
			t.Errorf("%s = %q, want %q", filepath.Base(path), got, want)
		}
	}
}

func TestRotatingWriter_DisabledRotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	rw, err := NewRotatingWriter(path, RotationConfig{})
	if err != nil {
		t.Fatalf("NewRotatingWriter failed: %v", err)
	}

	for i := 0; i < 50; i++ {
		if _, err := rw.Write([]byte(strings.Repeat("y", 100))); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}
	rw.Close()

	backups, err := rw.Backups()
	if err != nil {
		t.Fatalf("Backups failed: %v", err)
	}
	if len(backups) != 0 {
		t.Errorf("expected no rotated files, got %v", backups)
	}
}

func TestRotatingWriter_PrunesOldBackups(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	stamp := time.Date(2024, 5, 1, 10, 30, 0, 0, time.Local)

	rw, err := NewRotatingWriter(path, RotationConfig{RotateSize: 10, MaxBackups: 2})
	if err != nil {
		t.Fatalf("NewRotatingWriter failed: %v", err)
	}

	for i := 0; i < 5; i++ {
		rw.now = fixedClock(stamp.Add(time.Duration(i) * time.Second))
		if _, err := rw.Write([]byte("more than ten bytes\n")); err != nil {
			t.Fatalf("Write %d failed: %v", i, err)
		}
	}
	rw.Close()

	backups, err := rw.Backups()
	if err != nil {
		t.Fatalf("Backups failed: %v", err)
	}
	if len(backups) != 2 {
		t.Fatalf("expected 2 backups, got %d: %v", len(backups), backups)
	}
	if filepath.Base(backups[1]) != "app_20240501_103004.log" {
		t.Errorf("newest backup = %s, want app_20240501_103004.log", filepath.Base(backups[1]))
	}
}

func TestRotatingWriter_PruneKeepsUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	stamp := time.Date(2024, 5, 1, 10, 30, 0, 0, time.Local)

	unrelated := []string{"app_audit.log", "app_20240501.log", "app_20240501_103000-x.log"}
	for _, name := range unrelated {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte("keep"), 0644); err != nil {
			t.Fatal(err)
		}
		old := stamp.Add(-time.Hour)
		if err := os.Chtimes(p, old, old); err != nil {
			t.Fatal(err)
		}
	}

	rw, err := NewRotatingWriter(path, RotationConfig{RotateSize: 10, MaxBackups: 1})
	if err != nil {
		t.Fatalf("NewRotatingWriter failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		rw.now = fixedClock(stamp.Add(time.Duration(i) * time.Second))
		if _, err := rw.Write([]byte("more than ten bytes\n")); err != nil {
			t.Fatalf("Write %d failed: %v", i, err)
		}
	}
	rw.Close()

	for _, name := range unrelated {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s was removed by pruning: %v", name, err)
		}
	}

	backups, err := rw.Backups()
	if err != nil {
		t.Fatalf("Backups failed: %v", err)
	}
	if len(backups) != 1 || filepath.Base(backups[0]) != "app_20240501_103002.log" {
		t.Errorf("backups = %v, want only app_20240501_103002.log", backups)
	}
}

func TestRotatingWriter_Compress(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	stamp := time.Date(2024, 5, 1, 10, 30, 0, 0, time.Local)

	rw, err := NewRotatingWriter(path, RotationConfig{RotateSize: 10, Compress: true})
	if err != nil {
		t.Fatalf("NewRotatingWriter failed: %v", err)
	}
	rw.now = fixedClock(stamp)

	rw.Write([]byte("compress me please\n"))
	rw.Write([]byte("fresh\n"))
	// Close waits for background compression.
	if err := rw.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	rotated := filepath.Join(dir, "app_20240501_103000.log")
	if _, err := os.Stat(rotated); !os.IsNotExist(err) {
		t.Error("uncompressed rotated file should be removed")
	}

	f, err := os.Open(rotated + ".gz")
	if err != nil {
		t.Fatalf("compressed file missing: %v", err)
	}
	defer f.Close()
	gz, err := gzip.NewReader(f)
	if err != nil {
		t.Fatalf("invalid gzip: %v", err)
	}
	data, err := io.ReadAll(gz)
	if err != nil {
		t.Fatalf("read gzip: %v", err)
	}
	if string(data) != "compress me please\n" {
		t.Errorf("decompressed = %q", data)
	}
}

func TestRotatingWriter_WriteAfterClose(t *testing.T) {
	rw, err := NewRotatingWriter(filepath.Join(t.TempDir(), "app.log"), DefaultRotationConfig())
	if err != nil {
		t.Fatalf("NewRotatingWriter failed: %v", err)
	}
	rw.Close()

	if _, err := rw.Write([]byte("late")); err == nil {
		t.Error("expected error writing to closed writer")
	}
	if err := rw.Close(); err != nil {
		t.Errorf("second Close should be a no-op, got %v", err)
	}
	if err := rw.Sync(); err != nil {
		t.Errorf("Sync after Close should be a no-op, got %v", err)
	}
}
