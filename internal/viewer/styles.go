package viewer

import (
	"github.com/Iron-Ham/taglog/internal/logging"
	"github.com/charmbracelet/lipgloss"
)

var (
	primaryColor = lipgloss.Color("#A78BFA") // Purple
	infoColor    = lipgloss.Color("#60A5FA") // Blue
	warningColor = lipgloss.Color("#F59E0B") // Amber
	errorColor   = lipgloss.Color("#F87171") // Red
	critColor    = lipgloss.Color("#F472B6") // Pink
	mutedColor   = lipgloss.Color("#9CA3AF") // Gray
	textColor    = lipgloss.Color("#F9FAFB")
	surfaceColor = lipgloss.Color("#1F2937")

	bannerStyle = lipgloss.NewStyle().Foreground(mutedColor)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	labelStyle = lipgloss.NewStyle().Foreground(mutedColor)

	selectedStyle = lipgloss.NewStyle().
			Foreground(textColor).
			Background(surfaceColor)

	helpStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			MarginTop(1)

	levelStyles = map[logging.Level]lipgloss.Style{
		logging.LevelDebug:    lipgloss.NewStyle().Foreground(mutedColor),
		logging.LevelInfo:     lipgloss.NewStyle().Foreground(infoColor),
		logging.LevelWarning:  lipgloss.NewStyle().Foreground(warningColor),
		logging.LevelError:    lipgloss.NewStyle().Foreground(errorColor),
		logging.LevelCritical: lipgloss.NewStyle().Bold(true).Foreground(critColor),
	}
)

// palette renders text either styled or plain.
type palette struct {
	plain bool
}

func (p palette) render(style lipgloss.Style, s string) string {
	if p.plain {
		return s
	}
	return style.Render(s)
}

func (p palette) banner(s string) string { return p.render(bannerStyle, s) }
func (p palette) title(s string) string  { return p.render(titleStyle, s) }
func (p palette) label(s string) string  { return p.render(labelStyle, s) }

// entry renders e's formatted line tinted by its level.
func (p palette) entry(e *logging.Entry) string {
	return p.render(levelStyles[e.Level()], e.FormattedString())
}
