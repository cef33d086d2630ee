package analysis

import (
	"encoding/json"
	"slices"
	"time"

	"github.com/Iron-Ham/taglog/internal/logging"
)

// NoPerformanceData is the message reported when no entry carries a numeric
// duration or elapsed_time parameter.
const NoPerformanceData = "No performance data found in logs"

// FunctionStats aggregates durations for one function.
type FunctionStats struct {
	Avg   float64 `json:"avg" yaml:"avg"`
	Min   float64 `json:"min" yaml:"min"`
	Max   float64 `json:"max" yaml:"max"`
	Count int     `json:"count" yaml:"count"`
	Total float64 `json:"total" yaml:"total"`
}

// SlowOperation is one timed entry in the slowest-operations list.
type SlowOperation struct {
	Function  string  `json:"function" yaml:"function"`
	Feature   string  `json:"feature" yaml:"feature"`
	Module    string  `json:"module" yaml:"module"`
	Duration  float64 `json:"duration" yaml:"duration"`
	Timestamp string  `json:"timestamp" yaml:"timestamp"`
}

// PerformanceStats holds the statistics over all timed entries.
type PerformanceStats struct {
	TotalOperations   int                      `json:"total_operations" yaml:"total_operations"`
	AvgDuration       float64                  `json:"avg_duration" yaml:"avg_duration"`
	MinDuration       float64                  `json:"min_duration" yaml:"min_duration"`
	MaxDuration       float64                  `json:"max_duration" yaml:"max_duration"`
	TotalDuration     float64                  `json:"total_duration" yaml:"total_duration"`
	ByFunction        map[string]FunctionStats `json:"by_function" yaml:"by_function"`
	SlowestOperations []SlowOperation          `json:"slowest_operations" yaml:"slowest_operations"`
}

// PerformanceMetrics is either statistics or, when nothing was timed, an
// informational message. Exactly one of Stats and Message is set.
type PerformanceMetrics struct {
	Stats   *PerformanceStats
	Message string
}

// HasData reports whether any timed entries were found.
func (p PerformanceMetrics) HasData() bool {
	return p.Stats != nil
}

func (p PerformanceMetrics) view() any {
	if p.Stats == nil {
		return struct {
			Message string `json:"message" yaml:"message"`
		}{p.Message}
	}
	return p.Stats
}

// MarshalJSON encodes the statistics, or {"message": ...} without data.
func (p PerformanceMetrics) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.view())
}

// MarshalYAML mirrors MarshalJSON.
func (p PerformanceMetrics) MarshalYAML() (any, error) {
	return p.view(), nil
}

type timedEntry struct {
	entry    *logging.Entry
	duration float64
}

// PerformanceMetrics computes duration statistics over entries carrying a
// numeric duration (preferred) or elapsed_time parameter.
func (a *Analyzer) PerformanceMetrics(logs []*logging.Entry) PerformanceMetrics {
	var timed []timedEntry
	for _, e := range logs {
		if d, ok := e.Duration(); ok {
			timed = append(timed, timedEntry{entry: e, duration: d})
		}
	}
	if len(timed) == 0 {
		return PerformanceMetrics{Message: NoPerformanceData}
	}

	stats := &PerformanceStats{
		TotalOperations: len(timed),
		MinDuration:     timed[0].duration,
		MaxDuration:     timed[0].duration,
		ByFunction:      make(map[string]FunctionStats),
	}
	for _, t := range timed {
		stats.TotalDuration += t.duration
		stats.MinDuration = min(stats.MinDuration, t.duration)
		stats.MaxDuration = max(stats.MaxDuration, t.duration)

		fn := t.entry.FunctionName()
		fs, ok := stats.ByFunction[fn]
		if !ok {
			fs = FunctionStats{Min: t.duration, Max: t.duration}
		}
		fs.Count++
		fs.Total += t.duration
		fs.Min = min(fs.Min, t.duration)
		fs.Max = max(fs.Max, t.duration)
		fs.Avg = fs.Total / float64(fs.Count)
		stats.ByFunction[fn] = fs
	}
	stats.AvgDuration = stats.TotalDuration / float64(len(timed))

	slices.SortStableFunc(timed, func(x, y timedEntry) int {
		switch {
		case x.duration > y.duration:
			return -1
		case x.duration < y.duration:
			return 1
		default:
			return 0
		}
	})
	for _, t := range timed[:min(len(timed), recentLimit)] {
		stats.SlowestOperations = append(stats.SlowestOperations, SlowOperation{
			Function:  t.entry.FunctionName(),
			Feature:   t.entry.FeatureTag(),
			Module:    t.entry.ModuleTag(),
			Duration:  t.duration,
			Timestamp: t.entry.FormattedTimestamp(),
		})
	}

	return PerformanceMetrics{Stats: stats}
}

// ReportOptions selects the optional report sections.
type ReportOptions struct {
	Summary     bool
	Errors      bool
	Performance bool
}

// AllSections includes every optional section.
func AllSections() ReportOptions {
	return ReportOptions{Summary: true, Errors: true, Performance: true}
}

// Report is the combined analysis of a set of entries. TimeRange is nil
// for an empty set; optional sections are nil when not requested.
type Report struct {
	GeneratedAt        string                  `json:"generated_at" yaml:"generated_at"`
	TotalLogs          int                     `json:"total_logs" yaml:"total_logs"`
	TimeRange          *TimeRange              `json:"time_range" yaml:"time_range"`
	FeatureSummary     map[string]GroupSummary `json:"feature_summary,omitempty" yaml:"feature_summary,omitempty"`
	ModuleSummary      map[string]GroupSummary `json:"module_summary,omitempty" yaml:"module_summary,omitempty"`
	ErrorAnalysis      *ErrorAnalysis          `json:"error_analysis,omitempty" yaml:"error_analysis,omitempty"`
	PerformanceMetrics *PerformanceMetrics     `json:"performance_metrics,omitempty" yaml:"performance_metrics,omitempty"`
}

// Report assembles the requested sections. It never fails, including on
// an empty entry set.
func (a *Analyzer) Report(logs []*logging.Entry, opts ReportOptions) Report {
	now := a.now
	if now == nil {
		now = time.Now
	}
	report := Report{
		GeneratedAt: now().Local().Format(logging.TimestampLayout),
		TotalLogs:   len(logs),
		TimeRange:   timeRange(logs),
	}

	if opts.Summary {
		report.FeatureSummary = a.FeatureSummary(logs)
		report.ModuleSummary = a.ModuleSummary(logs)
	}
	if opts.Errors {
		errs := a.ErrorAnalysis(logs)
		report.ErrorAnalysis = &errs
	}
	if opts.Performance {
		perf := a.PerformanceMetrics(logs)
		report.PerformanceMetrics = &perf
	}
	return report
}

// ReportFromSource reports over a snapshot of the analyzer's source. An
// analyzer without a source reports over no entries.
func (a *Analyzer) ReportFromSource(opts ReportOptions) Report {
	var logs []*logging.Entry
	if a.source != nil {
		logs = a.source.AllLogs()
	}
	return a.Report(logs, opts)
}
