package logging

import (
	"slices"
	"sort"
	"sync"
)

// DefaultMaxEntries is the in-memory bound used when none is configured.
const DefaultMaxEntries = 10000

// Storage is a bounded, insertion-ordered buffer of entries with feature
// and module indexes. One mutex guards the sequence and both indexes, so
// an append together with its eviction is a single atomic step. It is safe
// for concurrent use.
type Storage struct {
	mu         sync.Mutex
	maxEntries int
	entries    []*Entry
	byFeature  map[string][]*Entry
	byModule   map[string][]*Entry
}

// NewStorage creates a storage holding at most maxEntries entries.
// A non-positive bound selects DefaultMaxEntries.
func NewStorage(maxEntries int) *Storage {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Storage{
		maxEntries: maxEntries,
		byFeature:  make(map[string][]*Entry),
		byModule:   make(map[string][]*Entry),
	}
}

// MaxEntries returns the configured bound.
func (s *Storage) MaxEntries() int {
	return s.maxEntries
}

// Add appends e and updates both indexes. If the bound is exceeded the
// oldest entry is dropped from the sequence and both indexes and returned.
func (s *Storage) Add(e *Entry) (evicted *Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, e)
	s.byFeature[e.feature] = append(s.byFeature[e.feature], e)
	s.byModule[e.module] = append(s.byModule[e.module], e)

	if len(s.entries) <= s.maxEntries {
		return nil
	}

	oldest := s.entries[0]
	s.entries[0] = nil
	s.entries = s.entries[1:]
	removeFromIndex(s.byFeature, oldest.feature, oldest)
	removeFromIndex(s.byModule, oldest.module, oldest)
	return oldest
}

// removeFromIndex drops the first occurrence of e under key, deleting the
// key once its list is empty.
func removeFromIndex(index map[string][]*Entry, key string, e *Entry) {
	list := index[key]
	i := slices.Index(list, e)
	if i < 0 {
		return
	}
	list = slices.Delete(list, i, i+1)
	if len(list) == 0 {
		delete(index, key)
		return
	}
	index[key] = list
}

// All returns a snapshot of every entry in insertion order.
func (s *Storage) All() []*Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.entries)
}

// ByFeature returns a snapshot of the entries tagged with feature.
func (s *Storage) ByFeature(feature string) []*Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.byFeature[feature])
}

// ByModule returns a snapshot of the entries tagged with module.
func (s *Storage) ByModule(module string) []*Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.byModule[module])
}

// Filter returns the entries matching f, in insertion order.
func (s *Storage) Filter(f Filter) []*Entry {
	return FilterEntries(s.All(), f)
}

// Clear empties the sequence and both indexes.
func (s *Storage) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	s.byFeature = make(map[string][]*Entry)
	s.byModule = make(map[string][]*Entry)
}

// Len returns the number of stored entries.
func (s *Storage) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Features returns the distinct feature tags currently stored, sorted.
func (s *Storage) Features() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedKeys(s.byFeature)
}

// Modules returns the distinct module tags currently stored, sorted.
func (s *Storage) Modules() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedKeys(s.byModule)
}

func sortedKeys(index map[string][]*Entry) []string {
	keys := make([]string, 0, len(index))
	for k := range index {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
