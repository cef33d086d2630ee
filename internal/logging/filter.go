package logging

import (
	"slices"
	"time"
)

// Filter selects entries by tag, level, function and time. An empty slice
// or zero time leaves that axis unconstrained; every constrained axis must
// match. Bounds are inclusive.
type Filter struct {
	FeatureTags   []string
	ModuleTags    []string
	Levels        []Level
	FunctionNames []string
	Start         time.Time
	End           time.Time
}

// IsEmpty reports whether the filter constrains nothing.
func (f Filter) IsEmpty() bool {
	return len(f.FeatureTags) == 0 &&
		len(f.ModuleTags) == 0 &&
		len(f.Levels) == 0 &&
		len(f.FunctionNames) == 0 &&
		f.Start.IsZero() &&
		f.End.IsZero()
}

// Matches reports whether e satisfies every constrained axis.
func (f Filter) Matches(e *Entry) bool {
	if len(f.FeatureTags) > 0 && !slices.Contains(f.FeatureTags, e.feature) {
		return false
	}
	if len(f.ModuleTags) > 0 && !slices.Contains(f.ModuleTags, e.module) {
		return false
	}
	if len(f.Levels) > 0 && !slices.Contains(f.Levels, e.level) {
		return false
	}
	// Entries keep microsecond resolution, so bounds are compared at it too.
	if !f.Start.IsZero() && e.at.UnixMicro() < f.Start.UnixMicro() {
		return false
	}
	if !f.End.IsZero() && e.at.UnixMicro() > f.End.UnixMicro() {
		return false
	}
	if len(f.FunctionNames) > 0 && !slices.Contains(f.FunctionNames, e.function) {
		return false
	}
	return true
}

// FilterEntries returns the entries matching f, in their original order.
func FilterEntries(entries []*Entry, f Filter) []*Entry {
	matched := make([]*Entry, 0, len(entries))
	for _, e := range entries {
		if f.Matches(e) {
			matched = append(matched, e)
		}
	}
	return matched
}
