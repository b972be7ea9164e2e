package requestlog

import (
	"strings"
	"sync"
	"time"

	"github.com/getmockd/interceptd/internal/id"
)

// DefaultMaxEntries bounds a MemoryStore created with a non-positive size.
const DefaultMaxEntries = 1000

// Logger is the minimal interface for recording entries.
type Logger interface {
	Log(entry *Entry)
}

// Store defines the interface for request history storage.
type Store interface {
	Logger

	// List returns entries oldest first, optionally filtered.
	List(filter *Filter) []*Entry

	// Clear removes all entries.
	Clear()

	// Count returns the number of entries.
	Count() int
}

// Filter defines criteria for filtering entries. Zero fields match all.
type Filter struct {
	Method    string
	Host      string
	Path      string
	FixtureID string

	// Matched filters by whether a route answered.
	Matched *bool

	// Limit is the maximum number of entries to return.
	Limit int
}

func (f *Filter) match(e *Entry) bool {
	if f == nil {
		return true
	}
	if f.Method != "" && !strings.EqualFold(f.Method, e.Method) {
		return false
	}
	if f.Host != "" && !strings.EqualFold(f.Host, e.Host) {
		return false
	}
	if f.Path != "" && f.Path != e.Path {
		return false
	}
	if f.FixtureID != "" && f.FixtureID != e.FixtureID {
		return false
	}
	if f.Matched != nil && *f.Matched != e.Matched {
		return false
	}
	return true
}

// MemoryStore is a bounded in-memory Store. When full, the oldest entry is
// dropped.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []*Entry
	max     int
}

// NewMemoryStore creates a store holding at most maxEntries entries.
func NewMemoryStore(maxEntries int) *MemoryStore {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &MemoryStore{max: maxEntries}
}

// Log records an entry, assigning an ID and timestamp when missing.
func (s *MemoryStore) Log(entry *Entry) {
	if entry == nil {
		return
	}
	e := *entry
	if e.ID == "" {
		e.ID = id.Sortable()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.entries) >= s.max {
		copy(s.entries, s.entries[1:])
		s.entries = s.entries[:len(s.entries)-1]
	}
	s.entries = append(s.entries, &e)
}

// List returns matching entries oldest first.
func (s *MemoryStore) List(filter *Filter) []*Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*Entry
	for _, e := range s.entries {
		if !filter.match(e) {
			continue
		}
		c := *e
		result = append(result, &c)
		if filter != nil && filter.Limit > 0 && len(result) == filter.Limit {
			break
		}
	}
	return result
}

// Clear removes all entries.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
}

// Count returns the number of entries.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

var _ Store = (*MemoryStore)(nil)
