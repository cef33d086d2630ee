package cmd

import (
	"fmt"
	"time"

	"github.com/Iron-Ham/taglog/internal/analysis"
	"github.com/Iron-Ham/taglog/internal/logging"
	"github.com/gobwas/glob"
	"github.com/spf13/cobra"
)

// entryFilter holds the selection flags shared by the file commands.
// Tags accept glob patterns ("auth*", "{db,cache}"); every other axis
// matches exactly.
type entryFilter struct {
	features  []string
	modules   []string
	levels    []string
	minLevel  string
	functions []string
	since     string
	until     string
	sortKey   string
	reverse   bool
}

func addFilterFlags(cmd *cobra.Command, f *entryFilter) {
	cmd.Flags().StringSliceVar(&f.features, "feature", nil, "Feature tag or glob pattern (repeatable)")
	cmd.Flags().StringSliceVar(&f.modules, "module", nil, "Module tag or glob pattern (repeatable)")
	cmd.Flags().StringSliceVar(&f.levels, "level", nil, "Exact level to include (repeatable)")
	cmd.Flags().StringVar(&f.minLevel, "min-level", "", "Minimum level to include")
	cmd.Flags().StringSliceVar(&f.functions, "function", nil, "Function name to include (repeatable)")
	cmd.Flags().StringVar(&f.since, "since", "", "Only entries since a duration ago (e.g., 1h) or an RFC3339 time")
	cmd.Flags().StringVar(&f.until, "until", "", "Only entries up to a duration ago or an RFC3339 time")
	cmd.Flags().StringVar(&f.sortKey, "sort", "", "Sort by timestamp, feature_tag, module_tag, level or function_name")
	cmd.Flags().BoolVar(&f.reverse, "reverse", false, "Reverse the sort order")
}

// apply selects and orders entries. now anchors relative --since/--until.
func (f *entryFilter) apply(entries []*logging.Entry, now time.Time) ([]*logging.Entry, error) {
	featureMatch, err := compileGlobs(f.features)
	if err != nil {
		return nil, fmt.Errorf("invalid --feature pattern: %w", err)
	}
	moduleMatch, err := compileGlobs(f.modules)
	if err != nil {
		return nil, fmt.Errorf("invalid --module pattern: %w", err)
	}

	filter := logging.Filter{FunctionNames: f.functions}
	for _, name := range f.levels {
		level, err := logging.ParseLevel(name)
		if err != nil {
			return nil, err
		}
		filter.Levels = append(filter.Levels, level)
	}
	if filter.Start, err = parseTimeBound(f.since, now); err != nil {
		return nil, fmt.Errorf("invalid --since: %w", err)
	}
	if filter.End, err = parseTimeBound(f.until, now); err != nil {
		return nil, fmt.Errorf("invalid --until: %w", err)
	}
	minLevel := logging.LevelDebug
	if f.minLevel != "" {
		if minLevel, err = logging.ParseLevel(f.minLevel); err != nil {
			return nil, err
		}
	}

	var selected []*logging.Entry
	for _, e := range logging.FilterEntries(entries, filter) {
		if e.Level() < minLevel || !featureMatch(e.FeatureTag()) || !moduleMatch(e.ModuleTag()) {
			continue
		}
		selected = append(selected, e)
	}

	if f.sortKey == "" {
		return selected, nil
	}
	key, err := analysis.ParseSortKey(f.sortKey)
	if err != nil {
		return nil, err
	}
	return analysis.NewAnalyzer(nil).Sort(selected, key, "", f.reverse)
}

// compileGlobs returns a matcher accepting any of patterns, or everything
// when there are none.
func compileGlobs(patterns []string) (func(string) bool, error) {
	if len(patterns) == 0 {
		return func(string) bool { return true }, nil
	}
	globs := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", pattern, err)
		}
		globs = append(globs, g)
	}
	return func(tag string) bool {
		for _, g := range globs {
			if g.Match(tag) {
				return true
			}
		}
		return false
	}, nil
}

// parseTimeBound accepts a duration before now or an RFC3339 timestamp.
// Empty means unbounded.
func parseTimeBound(value string, now time.Time) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if d, err := time.ParseDuration(value); err == nil {
		return now.Add(-d), nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q is neither a duration nor an RFC3339 time", value)
	}
	return t, nil
}

// loadEntries reads a log file and applies the filter.
func loadEntries(path string, f *entryFilter) ([]*logging.Entry, error) {
	entries, err := logging.ReadEntries(path)
	if err != nil {
		return nil, err
	}
	return f.apply(entries, time.Now())
}
