// Package analysis aggregates snapshots of log entries: sorting, grouping
// by either tag axis, per-group summaries, error and warning breakdowns,
// performance statistics from duration parameters, and a combined report.
//
// Every operation is a pure function of the entries it is given. Entries
// are immutable and snapshots are never mutated by storage, so analysis can
// run while logging continues without any locking.
package analysis

import (
	"cmp"
	"slices"
	"sort"
	"time"

	"github.com/Iron-Ham/taglog/internal/errors"
	"github.com/Iron-Ham/taglog/internal/logging"
)

// recentLimit bounds the recent-errors and slowest-operations lists.
const recentLimit = 10

// SortKey names an entry field to sort by.
type SortKey string

// Supported sort keys
const (
	SortByTimestamp SortKey = "timestamp"
	SortByFeature   SortKey = "feature_tag"
	SortByModule    SortKey = "module_tag"
	SortByLevel     SortKey = "level"
	SortByFunction  SortKey = "function_name"
)

// SortKeys lists the supported sort keys.
func SortKeys() []SortKey {
	return []SortKey{SortByTimestamp, SortByFeature, SortByModule, SortByLevel, SortByFunction}
}

// ParseSortKey validates a sort key name.
func ParseSortKey(name string) (SortKey, error) {
	key := SortKey(name)
	if slices.Contains(SortKeys(), key) {
		return key, nil
	}
	return "", errors.NewValidationError("invalid sort key").
		WithField("sort_key").WithValue(name).WithCause(errors.ErrInvalidSortKey)
}

// compareBy returns the comparison for key. Levels compare by severity.
func compareBy(key SortKey) (func(a, b *logging.Entry) int, error) {
	switch key {
	case SortByTimestamp:
		return func(a, b *logging.Entry) int { return a.Time().Compare(b.Time()) }, nil
	case SortByFeature:
		return func(a, b *logging.Entry) int { return cmp.Compare(a.FeatureTag(), b.FeatureTag()) }, nil
	case SortByModule:
		return func(a, b *logging.Entry) int { return cmp.Compare(a.ModuleTag(), b.ModuleTag()) }, nil
	case SortByLevel:
		return func(a, b *logging.Entry) int { return cmp.Compare(a.Level(), b.Level()) }, nil
	case SortByFunction:
		return func(a, b *logging.Entry) int { return cmp.Compare(a.FunctionName(), b.FunctionName()) }, nil
	default:
		_, err := ParseSortKey(string(key))
		return nil, err
	}
}

// Source supplies entries for ReportFromSource; *logging.Logger satisfies it.
type Source interface {
	AllLogs() []*logging.Entry
}

// Analyzer runs aggregations over entry snapshots. The zero value is ready
// to use; a Source is only needed for ReportFromSource.
type Analyzer struct {
	source Source
	now    func() time.Time
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithClock overrides the clock used for a report's generation time.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) { a.now = now }
}

// NewAnalyzer creates an analyzer. source may be nil.
func NewAnalyzer(source Source, opts ...Option) *Analyzer {
	a := &Analyzer{source: source, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Sort returns a sorted copy of logs. When secondary is non-empty the
// copy is first sorted by it and then stably by primary, so primary
// dominates and secondary breaks ties. reverse flips both orders while
// keeping equal entries in their prior relative order.
func (a *Analyzer) Sort(logs []*logging.Entry, primary, secondary SortKey, reverse bool) ([]*logging.Entry, error) {
	byPrimary, err := compareBy(primary)
	if err != nil {
		return nil, err
	}

	sorted := slices.Clone(logs)
	if secondary != "" {
		bySecondary, err := compareBy(secondary)
		if err != nil {
			return nil, err
		}
		slices.SortStableFunc(sorted, directed(bySecondary, reverse))
	}
	slices.SortStableFunc(sorted, directed(byPrimary, reverse))
	return sorted, nil
}

func directed(compare func(a, b *logging.Entry) int, reverse bool) func(a, b *logging.Entry) int {
	if !reverse {
		return compare
	}
	return func(a, b *logging.Entry) int { return compare(b, a) }
}

// GroupByFeature partitions logs by feature tag, keeping relative order.
func (a *Analyzer) GroupByFeature(logs []*logging.Entry) map[string][]*logging.Entry {
	return groupBy(logs, (*logging.Entry).FeatureTag)
}

// GroupByModule partitions logs by module tag, keeping relative order.
func (a *Analyzer) GroupByModule(logs []*logging.Entry) map[string][]*logging.Entry {
	return groupBy(logs, (*logging.Entry).ModuleTag)
}

// GroupByFunction partitions logs by function name, keeping relative order.
func (a *Analyzer) GroupByFunction(logs []*logging.Entry) map[string][]*logging.Entry {
	return groupBy(logs, (*logging.Entry).FunctionName)
}

func groupBy(logs []*logging.Entry, key func(*logging.Entry) string) map[string][]*logging.Entry {
	groups := make(map[string][]*logging.Entry)
	for _, e := range logs {
		k := key(e)
		groups[k] = append(groups[k], e)
	}
	return groups
}

// SortedGroupKeys returns the keys of groups in ascending order.
func SortedGroupKeys(groups map[string][]*logging.Entry) []string {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// TimeRange is the first and last timestamp of a set of entries.
type TimeRange struct {
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`
}

// timeRange returns nil for no entries.
func timeRange(logs []*logging.Entry) *TimeRange {
	if len(logs) == 0 {
		return nil
	}
	first, last := logs[0], logs[0]
	for _, e := range logs[1:] {
		if e.Time().Before(first.Time()) {
			first = e
		}
		if e.Time().After(last.Time()) {
			last = e
		}
	}
	return &TimeRange{Start: first.FormattedTimestamp(), End: last.FormattedTimestamp()}
}

// LevelCounts counts entries per level name.
func LevelCounts(logs []*logging.Entry) map[string]int {
	counts := make(map[string]int)
	for _, e := range logs {
		counts[e.Level().String()]++
	}
	return counts
}

// GroupSummary describes one feature or module group. A feature summary
// lists Modules, a module summary lists Features.
type GroupSummary struct {
	Count     int            `json:"count" yaml:"count"`
	Levels    map[string]int `json:"levels" yaml:"levels"`
	Modules   []string       `json:"modules,omitempty" yaml:"modules,omitempty"`
	Features  []string       `json:"features,omitempty" yaml:"features,omitempty"`
	Functions []string       `json:"functions" yaml:"functions"`
	TimeRange *TimeRange     `json:"time_range" yaml:"time_range"`
}

// FeatureSummary summarises each feature group.
func (a *Analyzer) FeatureSummary(logs []*logging.Entry) map[string]GroupSummary {
	summary := make(map[string]GroupSummary)
	for feature, group := range a.GroupByFeature(logs) {
		s := summarise(group)
		s.Modules = distinct(group, (*logging.Entry).ModuleTag)
		summary[feature] = s
	}
	return summary
}

// ModuleSummary summarises each module group.
func (a *Analyzer) ModuleSummary(logs []*logging.Entry) map[string]GroupSummary {
	summary := make(map[string]GroupSummary)
	for module, group := range a.GroupByModule(logs) {
		s := summarise(group)
		s.Features = distinct(group, (*logging.Entry).FeatureTag)
		summary[module] = s
	}
	return summary
}

func summarise(group []*logging.Entry) GroupSummary {
	return GroupSummary{
		Count:     len(group),
		Levels:    LevelCounts(group),
		Functions: distinct(group, (*logging.Entry).FunctionName),
		TimeRange: timeRange(group),
	}
}

// distinct returns the sorted distinct values of key over logs.
func distinct(logs []*logging.Entry, key func(*logging.Entry) string) []string {
	seen := make(map[string]struct{})
	var values []string
	for _, e := range logs {
		v := key(e)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

// ErrorAnalysis breaks down ERROR/CRITICAL entries and WARNING entries.
type ErrorAnalysis struct {
	ErrorCount        int              `json:"error_count" yaml:"error_count"`
	WarningCount      int              `json:"warning_count" yaml:"warning_count"`
	ErrorsByFeature   map[string]int   `json:"errors_by_feature" yaml:"errors_by_feature"`
	ErrorsByModule    map[string]int   `json:"errors_by_module" yaml:"errors_by_module"`
	WarningsByFeature map[string]int   `json:"warnings_by_feature" yaml:"warnings_by_feature"`
	WarningsByModule  map[string]int   `json:"warnings_by_module" yaml:"warnings_by_module"`
	ErrorFunctions    map[string]int   `json:"error_functions" yaml:"error_functions"`
	RecentErrors      []logging.Record `json:"recent_errors" yaml:"recent_errors"`
}

// ErrorAnalysis counts errors and warnings per tag and lists the most
// recent errors, newest first.
func (a *Analyzer) ErrorAnalysis(logs []*logging.Entry) ErrorAnalysis {
	result := ErrorAnalysis{
		ErrorsByFeature:   map[string]int{},
		ErrorsByModule:    map[string]int{},
		WarningsByFeature: map[string]int{},
		WarningsByModule:  map[string]int{},
		ErrorFunctions:    map[string]int{},
		RecentErrors:      []logging.Record{},
	}

	var errorLogs []*logging.Entry
	for _, e := range logs {
		switch e.Level() {
		case logging.LevelError, logging.LevelCritical:
			errorLogs = append(errorLogs, e)
			result.ErrorsByFeature[e.FeatureTag()]++
			result.ErrorsByModule[e.ModuleTag()]++
			result.ErrorFunctions[e.FunctionName()]++
		case logging.LevelWarning:
			result.WarningCount++
			result.WarningsByFeature[e.FeatureTag()]++
			result.WarningsByModule[e.ModuleTag()]++
		}
	}
	result.ErrorCount = len(errorLogs)

	slices.SortStableFunc(errorLogs, func(x, y *logging.Entry) int {
		return y.Time().Compare(x.Time())
	})
	for _, e := range errorLogs[:min(len(errorLogs), recentLimit)] {
		result.RecentErrors = append(result.RecentErrors, e.Record())
	}
	return result
}
