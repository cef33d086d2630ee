package viewer

import (
	"strings"
	"testing"

	"github.com/Iron-Ham/taglog/internal/logging"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(key(k))
		var ok bool
		m, ok = next.(Model)
		require.True(t, ok)
	}
	return m
}

func plainModel(entries []*logging.Entry) Model {
	m := NewModel(entries)
	m.palette.plain = true
	return m
}

func TestModel_StartsOnNewestEntryOfAllGroup(t *testing.T) {
	m := plainModel(fixture())

	assert.Equal(t, []string{allGroup, "auth", "payment"}, m.groups)
	require.NotNil(t, m.selected())
	assert.Equal(t, "stored", m.selected().Message())
	assert.Contains(t, m.View(), "feature: (all) (4/4)")
}

func TestModel_GroupNavigation(t *testing.T) {
	m := press(t, plainModel(fixture()), "]")
	assert.Contains(t, m.View(), "feature: auth (3/4)")
	assert.Equal(t, "timeout", m.selected().Message())

	m = press(t, m, "[", "[")
	assert.Contains(t, m.View(), "feature: payment (1/4)")

	m = press(t, m, "tab")
	assert.Equal(t, []string{allGroup, "auth_module", "db"}, m.groups)
	assert.Contains(t, m.View(), "module: (all)")
}

func TestModel_LevelFilterCycles(t *testing.T) {
	m := press(t, plainModel(fixture()), "L", "L", "L")
	assert.Equal(t, logging.LevelError, m.minLevel)
	assert.Len(t, m.visible(), 1)

	m = press(t, m, "L", "L")
	assert.Equal(t, logging.LevelDebug, m.minLevel)
	assert.Len(t, m.visible(), 4)
}

func TestModel_CursorClamps(t *testing.T) {
	m := press(t, plainModel(fixture()), "j", "j")
	assert.Equal(t, 3, m.cursor)

	m = press(t, m, "g", "k")
	assert.Equal(t, 0, m.cursor)

	m = press(t, plainModel(nil), "j", "G", "up")
	assert.Equal(t, 0, m.cursor)
	assert.Contains(t, m.View(), "No entries")
}

func TestModel_DetailShowsParams(t *testing.T) {
	e := logging.NewEntry(base, logging.LevelWarning, "search", "index", "query", "slow", logging.Params{"took": 3})
	m := press(t, plainModel([]*logging.Entry{e}), "enter")

	view := m.View()
	assert.Contains(t, view, "function: query")
	assert.Contains(t, view, `"took": 3`)
}

func TestModel_FollowAppendsAndTracksTail(t *testing.T) {
	m := plainModel(fixture())
	next, _ := m.Update(EntryMsg{Entry: at(10, logging.LevelCritical, "search", "index", "query", "down")})
	m = next.(Model)

	assert.Len(t, m.entries, 5)
	assert.Contains(t, m.groups, "search")
	assert.Equal(t, "down", m.selected().Message())

	m = press(t, m, "g")
	next, _ = m.Update(EntryMsg{Entry: at(11, logging.LevelInfo, "search", "index", "query", "up")})
	m = next.(Model)
	assert.Equal(t, 0, m.cursor, "cursor away from the tail stays put")
}

func TestModel_WindowSizeTruncates(t *testing.T) {
	next, _ := plainModel(fixture()).Update(tea.WindowSizeMsg{Width: 30, Height: 10})
	m := next.(Model)
	assert.Equal(t, 30, m.width)

	for _, view := range []string{m.View(), press(t, m, "enter").View(), press(t, m, "/").View()} {
		for _, line := range strings.Split(view, "\n") {
			assert.LessOrEqual(t, lipgloss.Width(line), m.width, line)
		}
	}
}

func TestModel_Search(t *testing.T) {
	m := press(t, plainModel(fixture()), "/", "T", "i", "m", "enter")
	assert.False(t, m.searching)
	assert.Equal(t, "Tim", m.query)
	require.Len(t, m.visible(), 1)
	assert.Equal(t, "timeout", m.selected().Message())
	assert.Contains(t, m.View(), `search: "Tim"`)

	// function names match too
	m = press(t, m, "/", "esc", "/", "s", "a", "v", "enter")
	require.Len(t, m.visible(), 1)
	assert.Equal(t, "stored", m.selected().Message())

	m = press(t, m, "/")
	assert.True(t, m.searching)
	assert.Contains(t, m.View(), "esc clear")
	m = press(t, m, "q")
	assert.True(t, m.searching, "q is typed into the query while searching")

	m = press(t, m, "esc")
	assert.Empty(t, m.query)
	assert.Len(t, m.visible(), 4)
}

func TestModel_Quit(t *testing.T) {
	_, cmd := plainModel(fixture()).Update(key("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
