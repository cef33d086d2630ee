package viewer

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Iron-Ham/taglog/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type collected struct {
	mu      sync.Mutex
	entries []*logging.Entry
}

func (c *collected) add(e *logging.Entry) {
	c.mu.Lock()
	c.entries = append(c.entries, e)
	c.mu.Unlock()
}

func (c *collected) messages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Message()
	}
	return out
}

func appendLine(t *testing.T, path, line string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	require.NoError(t, err)
	_, err = f.WriteString(line)
	require.NoError(t, err)
	require.NoError(t, f.Close())
}

func jsonLine(t *testing.T, message string) string {
	t.Helper()
	data, err := at(0, logging.LevelInfo, "auth", "db", "query", message).ToJSON()
	require.NoError(t, err)
	return string(data) + "\n"
}

func startFollower(t *testing.T, path string) *collected {
	t.Helper()
	f, err := NewFollower(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	got := &collected{}
	go func() { done <- f.Run(ctx, got.add) }()

	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-done)
		assert.NoError(t, f.Close())
	})
	return got
}

func TestFollower_EmitsOnlyNewEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	appendLine(t, path, jsonLine(t, "before"))

	got := startFollower(t, path)
	appendLine(t, path, jsonLine(t, "after-1"))
	appendLine(t, path, jsonLine(t, "after-2"))

	require.Eventually(t, func() bool { return len(got.messages()) == 2 }, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"after-1", "after-2"}, got.messages())
}

func TestFollower_BuffersPartialLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	appendLine(t, path, "")

	got := startFollower(t, path)
	line := jsonLine(t, "split")
	appendLine(t, path, line[:10])
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, got.messages())

	appendLine(t, path, line[10:])
	require.Eventually(t, func() bool { return len(got.messages()) == 1 }, 5*time.Second, 10*time.Millisecond)
}

func TestFollower_SkipsCorruptLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	appendLine(t, path, "")

	f, err := NewFollower(path)
	require.NoError(t, err)
	defer f.Close()

	appendLine(t, path, "not json\n"+jsonLine(t, "good"))
	var got []*logging.Entry
	f.drain(func(e *logging.Entry) { got = append(got, e) })

	require.Len(t, got, 1)
	assert.Equal(t, "good", got[0].Message())
	assert.Equal(t, 1, f.Skipped())
}

func TestFollower_SurvivesRotation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	appendLine(t, path, "")

	got := startFollower(t, path)
	appendLine(t, path, jsonLine(t, "old-file"))
	require.Eventually(t, func() bool { return len(got.messages()) == 1 }, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, os.Rename(path, filepath.Join(dir, "app_20240501_100000.log")))
	appendLine(t, path, jsonLine(t, "new-file"))

	require.Eventually(t, func() bool { return len(got.messages()) == 2 }, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"old-file", "new-file"}, got.messages())
}

func TestNewFollower_MissingFile(t *testing.T) {
	_, err := NewFollower(filepath.Join(t.TempDir(), "missing.log"))
	assert.Error(t, err)
}
