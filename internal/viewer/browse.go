package viewer

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/Iron-Ham/taglog/internal/analysis"
	"github.com/Iron-Ham/taglog/internal/logging"
	"github.com/Iron-Ham/taglog/internal/util"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// allGroup is the pseudo-group listing every entry.
const allGroup = "(all)"

// EntryMsg delivers an entry appended while browsing.
type EntryMsg struct {
	Entry *logging.Entry
}

// Model is the interactive browser: entries grouped by feature or module,
// one group shown at a time, newest entry last.
type Model struct {
	entries  []*logging.Entry
	byModule bool
	groups   []string
	group    int
	minLevel logging.Level
	cursor   int
	offset   int
	detail   bool
	follow   bool
	width    int
	height   int
	palette  palette

	// search narrows the view to entries whose message or function
	// contains query, case-insensitively.
	searching bool
	query     string
	search    textinput.Model
}

// NewModel creates a browser over entries.
func NewModel(entries []*logging.Entry) Model {
	ti := textinput.New()
	ti.Prompt = "/"
	ti.CharLimit = 100
	ti.Width = 40

	m := Model{entries: slices.Clone(entries), width: 120, height: 30, search: ti}
	m.refreshGroups()
	m.cursor = max(len(m.visible())-1, 0)
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeypress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.clampScroll()
		return m, nil

	case EntryMsg:
		atEnd := m.cursor >= len(m.visible())-1
		m.entries = append(m.entries, msg.Entry)
		m.refreshGroups()
		if atEnd {
			m.cursor = max(len(m.visible())-1, 0)
		}
		m.clampScroll()
		return m, nil
	}
	return m, nil
}

func (m Model) handleKeypress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		return m.handleSearchKeypress(msg)
	}

	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		m.cursor--
	case "down", "j":
		m.cursor++
	case "pgup":
		m.cursor -= m.pageSize()
	case "pgdown":
		m.cursor += m.pageSize()
	case "g", "home":
		m.cursor = 0
	case "G", "end":
		m.cursor = len(m.visible()) - 1
	case "tab":
		m.byModule = !m.byModule
		m.group = 0
		m.refreshGroups()
		m.cursor = len(m.visible()) - 1
	case "]", "right":
		if len(m.groups) > 0 {
			m.group = (m.group + 1) % len(m.groups)
		}
		m.cursor = len(m.visible()) - 1
	case "[", "left":
		if len(m.groups) > 0 {
			m.group = (m.group + len(m.groups) - 1) % len(m.groups)
		}
		m.cursor = len(m.visible()) - 1
	case "L":
		m.minLevel = (m.minLevel + 1) % logging.Level(len(logging.AllLevels()))
		m.cursor = len(m.visible()) - 1
	case "enter":
		m.detail = !m.detail
	case "/":
		m.searching = true
		m.search.SetValue(m.query)
		m.search.CursorEnd()
		return m, m.search.Focus()
	}
	m.clampScroll()
	return m, nil
}

func (m Model) handleSearchKeypress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		// Cancel clears the active query as well.
		m.searching = false
		m.query = ""
		m.search.SetValue("")
		m.search.Blur()
	case "enter":
		m.searching = false
		m.query = strings.TrimSpace(m.search.Value())
		m.search.Blur()
	default:
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd
	}
	m.cursor = len(m.visible()) - 1
	m.clampScroll()
	return m, nil
}

// refreshGroups rebuilds the group list, keeping the selected group when
// it still exists.
func (m *Model) refreshGroups() {
	var current string
	if m.group < len(m.groups) {
		current = m.groups[m.group]
	}

	a := analysis.NewAnalyzer(nil)
	grouped := a.GroupByFeature(m.entries)
	if m.byModule {
		grouped = a.GroupByModule(m.entries)
	}
	m.groups = append([]string{allGroup}, analysis.SortedGroupKeys(grouped)...)
	m.group = max(slices.Index(m.groups, current), 0)
}

// visible returns the selected group's entries at or above minLevel.
func (m Model) visible() []*logging.Entry {
	selected := allGroup
	if m.group < len(m.groups) {
		selected = m.groups[m.group]
	}
	query := strings.ToLower(m.query)
	var out []*logging.Entry
	for _, e := range m.entries {
		if e.Level() < m.minLevel {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(e.Message()), query) &&
			!strings.Contains(strings.ToLower(e.FunctionName()), query) {
			continue
		}
		if selected != allGroup {
			tag := e.FeatureTag()
			if m.byModule {
				tag = e.ModuleTag()
			}
			if tag != selected {
				continue
			}
		}
		out = append(out, e)
	}
	return out
}

func (m Model) pageSize() int {
	// header, blank, help, plus the search line while typing
	reserved := 3
	if m.searching {
		reserved++
	}
	return max(m.height-reserved-m.detailHeight(), 1)
}

func (m Model) detailHeight() int {
	if !m.detail {
		return 0
	}
	return len(m.detailLines())
}

func (m *Model) clampScroll() {
	n := len(m.visible())
	m.cursor = min(max(m.cursor, 0), max(n-1, 0))
	page := m.pageSize()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+page {
		m.offset = m.cursor - page + 1
	}
	m.offset = max(m.offset, 0)
}

func (m Model) axisName() string {
	if m.byModule {
		return "module"
	}
	return "feature"
}

func (m Model) selected() *logging.Entry {
	visible := m.visible()
	if m.cursor < 0 || m.cursor >= len(visible) {
		return nil
	}
	return visible[m.cursor]
}

func (m Model) detailLines() []string {
	e := m.selected()
	if e == nil {
		return nil
	}
	params, err := json.MarshalIndent(e.Params(), "", "  ")
	if err != nil {
		params = []byte(fmt.Sprintf("%v", e.Params()))
	}
	lines := []string{
		fmt.Sprintf("time: %s  level: %s  thread: %d  process: %d",
			e.FormattedTimestamp(), e.Level(), e.ThreadID(), e.ProcessID()),
		fmt.Sprintf("feature: %s  module: %s  function: %s", e.FeatureTag(), e.ModuleTag(), e.FunctionName()),
		"message: " + e.Message(),
	}
	return append(lines, strings.Split("params: "+string(params), "\n")...)
}

func (m Model) View() string {
	visible := m.visible()

	var b strings.Builder
	header := fmt.Sprintf("taglog  %s: %s (%d/%d)  min level: %s",
		m.axisName(), m.groups[m.group], len(visible), len(m.entries), m.minLevel)
	if m.query != "" {
		header += fmt.Sprintf("  search: %q", m.query)
	}
	if m.follow {
		header += "  [following]"
	}
	b.WriteString(m.palette.title(util.Truncate(header, m.width)) + "\n\n")

	if len(visible) == 0 {
		b.WriteString(m.palette.label("No entries") + "\n")
	}
	end := min(m.offset+m.pageSize(), len(visible))
	for i := m.offset; i < end; i++ {
		line := util.Truncate(visible[i].FormattedString(), m.width)
		if i == m.cursor {
			b.WriteString(m.palette.render(selectedStyle, util.PadRight(line, m.width)) + "\n")
			continue
		}
		b.WriteString(m.palette.render(levelStyles[visible[i].Level()], line) + "\n")
	}

	if m.detail {
		b.WriteString(m.palette.banner(util.Rule("-", m.width)) + "\n")
		for _, line := range m.detailLines() {
			b.WriteString(util.Truncate(line, m.width) + "\n")
		}
	}

	if m.searching {
		b.WriteString(util.Truncate(m.search.View(), m.width) + "\n")
		b.WriteString(m.palette.render(helpStyle, util.Truncate("enter apply  esc clear", m.width)))
		return b.String()
	}
	b.WriteString(m.palette.render(helpStyle, util.Truncate(
		"j/k move  [/] group  tab feature/module  L level  / search  enter details  q quit", m.width)))
	return b.String()
}

// BrowseOptions configures Browse.
type BrowseOptions struct {
	// Follower, when set, streams new entries into the browser.
	Follower *Follower
	Plain    bool
}

// Browse runs the interactive browser until the user quits.
func Browse(ctx context.Context, entries []*logging.Entry, opts BrowseOptions) error {
	model := NewModel(entries)
	model.palette.plain = opts.Plain
	model.follow = opts.Follower != nil

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := tea.NewProgram(model, tea.WithAltScreen())

	go func() {
		<-ctx.Done()
		program.Send(tea.Quit())
	}()

	followErr := make(chan error, 1)
	if opts.Follower != nil {
		go func() {
			followErr <- opts.Follower.Run(ctx, func(e *logging.Entry) {
				program.Send(EntryMsg{Entry: e})
			})
		}()
	}

	_, err := program.Run()
	cancel()
	if err != nil {
		return fmt.Errorf("browser failed: %w", err)
	}
	if opts.Follower != nil {
		if ferr := <-followErr; ferr != nil {
			return ferr
		}
	}
	return nil
}
