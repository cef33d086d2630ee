// Package viewer renders entries grouped by feature or module for a
// terminal, and provides an interactive browser over a log file.
package viewer

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/Iron-Ham/taglog/internal/analysis"
	"github.com/Iron-Ham/taglog/internal/logging"
	"github.com/Iron-Ham/taglog/internal/util"
)

// DefaultMaxEntries is the per-section entry limit when none is given.
const DefaultMaxEntries = 50

const bannerWidth = 80

// Viewer prints grouped sections to a writer.
type Viewer struct {
	out      io.Writer
	analyzer *analysis.Analyzer
	palette  palette
	width    int
}

// Option configures a Viewer.
type Option func(*Viewer)

// WithPlain disables styling so output is byte-stable.
func WithPlain() Option {
	return func(v *Viewer) { v.palette.plain = true }
}

// WithWidth truncates entry lines to width columns. Zero disables it.
func WithWidth(width int) Option {
	return func(v *Viewer) { v.width = width }
}

// NewViewer creates a viewer writing to out.
func NewViewer(out io.Writer, opts ...Option) *Viewer {
	v := &Viewer{out: out, analyzer: analysis.NewAnalyzer(nil)}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// axis describes one tag dimension for section rendering.
type axis struct {
	name       string
	crossLabel string
	cross      func(*logging.Entry) string
}

var (
	featureAxis = axis{name: "feature", crossLabel: "Modules involved", cross: (*logging.Entry).ModuleTag}
	moduleAxis  = axis{name: "module", crossLabel: "Features using this module", cross: (*logging.Entry).FeatureTag}
)

// FeatureView prints one section per feature, or only tag's section when
// tag is non-empty. maxEntries <= 0 means DefaultMaxEntries.
func (v *Viewer) FeatureView(logs []*logging.Entry, tag string, maxEntries int) error {
	return v.view(v.analyzer.GroupByFeature(logs), featureAxis, tag, maxEntries)
}

// ModuleView is FeatureView along the module axis.
func (v *Viewer) ModuleView(logs []*logging.Entry, tag string, maxEntries int) error {
	return v.view(v.analyzer.GroupByModule(logs), moduleAxis, tag, maxEntries)
}

func (v *Viewer) view(groups map[string][]*logging.Entry, ax axis, tag string, maxEntries int) error {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}

	var b strings.Builder
	if tag != "" {
		group, ok := groups[tag]
		if !ok {
			fmt.Fprintf(&b, "No logs found for %s: %s\n", ax.name, tag)
		} else {
			v.section(&b, ax, tag, group, maxEntries)
		}
	} else {
		for _, key := range analysis.SortedGroupKeys(groups) {
			v.section(&b, ax, key, groups[key], maxEntries)
		}
	}

	if _, err := io.WriteString(v.out, b.String()); err != nil {
		return fmt.Errorf("failed to write %s view: %w", ax.name, err)
	}
	return nil
}

func (v *Viewer) section(b *strings.Builder, ax axis, tag string, group []*logging.Entry, maxEntries int) {
	rule := v.palette.banner(util.Rule("=", bannerWidth))
	b.WriteString("\n")
	b.WriteString(rule + "\n")
	b.WriteString(v.palette.title(fmt.Sprintf("%s: %s (%d entries)", strings.ToUpper(ax.name), tag, len(group))) + "\n")
	b.WriteString(rule + "\n")

	cross := make(map[string]struct{})
	for _, e := range group {
		cross[ax.cross(e)] = struct{}{}
	}
	names := make([]string, 0, len(cross))
	for name := range cross {
		names = append(names, name)
	}
	slices.Sort(names)

	b.WriteString(v.palette.label(ax.crossLabel+":") + " " + strings.Join(names, ", ") + "\n")
	b.WriteString(v.palette.label("Log levels:") + " " + FormatLevelCounts(analysis.LevelCounts(group)) + "\n")
	b.WriteString("\n")

	newest := slices.Clone(group)
	slices.SortStableFunc(newest, func(x, y *logging.Entry) int {
		return y.Time().Compare(x.Time())
	})
	for _, e := range newest[:min(len(newest), maxEntries)] {
		line := "  " + v.palette.entry(e)
		b.WriteString(util.Truncate(line, v.width) + "\n")
	}
}

// FormatLevelCounts renders a level histogram in severity order, omitting
// levels with no entries: {INFO: 2, ERROR: 1}.
func FormatLevelCounts(counts map[string]int) string {
	parts := make([]string, 0, len(counts))
	for _, level := range logging.AllLevels() {
		if n, ok := counts[level.String()]; ok {
			parts = append(parts, fmt.Sprintf("%s: %d", level, n))
		}
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
