// Package journal holds the canonical, date-keyed list of mood entries.
//
// A Store keeps at most one entry per calendar date and always lists
// entries newest first. It performs no I/O and does no locking: it belongs
// to exactly one logical actor, which serialises access to it.
package journal

import (
	"sort"

	"moodjournal/internal/core"
)

// UpsertResult reports what Upsert did with its candidate.
type UpsertResult int

const (
	Discarded UpsertResult = iota
	Inserted
	Replaced
)

// String implements fmt.Stringer
func (r UpsertResult) String() string {
	switch r {
	case Inserted:
		return "inserted"
	case Replaced:
		return "replaced"
	default:
		return "discarded"
	}
}

// Changed reports whether the store was mutated.
func (r UpsertResult) Changed() bool {
	return r == Inserted || r == Replaced
}

type Store struct {
	items []core.MoodEntry
}

func NewStore() *Store {
	return &Store{}
}

// Upsert inserts candidate, or replaces the entry already holding its date
// when onConflict returns true. A nil onConflict declines the replacement.
func (s *Store) Upsert(candidate core.MoodEntry, onConflict func() bool) UpsertResult {
	idx := s.indexOfDate(candidate.Date)
	if idx < 0 {
		s.items = append(s.items, candidate)
		s.sort()
		return Inserted
	}

	if onConflict == nil || !onConflict() {
		return Discarded
	}
	s.items[idx] = candidate
	s.sort()
	return Replaced
}

// Delete removes the entry with the given id. Unknown ids are not an error.
func (s *Store) Delete(id string) bool {
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return true
		}
	}
	return false
}

func (s *Store) Clear() {
	s.items = nil
}

// List returns a copy of the entries, newest first.
func (s *Store) List() []core.MoodEntry {
	return append([]core.MoodEntry(nil), s.items...)
}

func (s *Store) Count() int {
	return len(s.items)
}

func (s *Store) Get(id string) (core.MoodEntry, bool) {
	for _, e := range s.items {
		if e.ID == id {
			return e, true
		}
	}
	return core.MoodEntry{}, false
}

// Restore replaces the whole content, e.g. with rows loaded from a
// repository. Later entries win when two share a date.
func (s *Store) Restore(entries []core.MoodEntry) {
	s.items = s.items[:0:0]
	for _, e := range entries {
		if idx := s.indexOfDate(e.Date); idx >= 0 {
			s.items[idx] = e
			continue
		}
		s.items = append(s.items, e)
	}
	s.sort()
}

func (s *Store) indexOfDate(d core.Date) int {
	for i := range s.items {
		if s.items[i].Date.Equal(d) {
			return i
		}
	}
	return -1
}

func (s *Store) sort() {
	sort.SliceStable(s.items, func(i, j int) bool {
		return s.items[i].Date.After(s.items[j].Date)
	})
}
