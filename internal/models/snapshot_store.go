package models

import (
	"sort"
	"sync"
	"time"

	"github.com/juju/clock"
)

// SnapshotStore owns every computed snapshot. Readers take the read lock
// only; writes replace entries wholesale.
type SnapshotStore struct {
	mu    sync.RWMutex
	clock clock.Clock
	ttl   time.Duration

	current   *YearSnapshot
	fetchedAt time.Time

	byYear      map[int]*YearSnapshot
	knownYears  []int
	historyYear int
}

func NewSnapshotStore(clk clock.Clock, ttl time.Duration) *SnapshotStore {
	return &SnapshotStore{
		clock:  clk,
		ttl:    ttl,
		byYear: make(map[int]*YearSnapshot),
	}
}

// Current returns the current-year snapshot if it is still fresh.
func (s *SnapshotStore) Current() (*YearSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil || s.clock.Now().Sub(s.fetchedAt) > s.ttl {
		return nil, false
	}
	return s.current, true
}

// CurrentExpiry returns the current snapshot together with the instant it
// stops being fresh.
func (s *SnapshotStore) CurrentExpiry() (*YearSnapshot, time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, time.Time{}, false
	}
	return s.current, s.fetchedAt.Add(s.ttl), true
}

// CurrentAge reports how long ago the current snapshot was stored.
func (s *SnapshotStore) CurrentAge() (time.Duration, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return 0, false
	}
	return s.clock.Now().Sub(s.fetchedAt), true
}

func (s *SnapshotStore) PutCurrent(snapshot *YearSnapshot) {
	if snapshot == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = snapshot
	s.fetchedAt = s.clock.Now()
}

func (s *SnapshotStore) Year(year int) (*YearSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.byYear[year]
	return snap, ok
}

// HistoryYear is the calendar year recorded by the last bulk load, 0 if none
// has succeeded yet.
func (s *SnapshotStore) HistoryYear() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.historyYear
}

// ReplaceHistory swaps the whole historical index for data and records the
// calendar year it was loaded in.
func (s *SnapshotStore) ReplaceHistory(loadedIn int, data map[int]*YearSnapshot) {
	byYear := make(map[int]*YearSnapshot, len(data))
	years := make([]int, 0, len(data))
	for y, snap := range data {
		if snap == nil {
			continue
		}
		byYear[y] = snap
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.byYear = byYear
	s.knownYears = years
	s.historyYear = loadedIn
}

// KnownYears returns the historical years, newest first.
func (s *SnapshotStore) KnownYears() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]int, len(s.knownYears))
	copy(out, s.knownYears)
	return out
}
