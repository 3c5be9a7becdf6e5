package services

import (
	"sync"
)

// WeekSelector tracks which reporting week one user is looking at. It
// follows the newest week as time moves on, unless the user picked an older
// week on purpose.
type WeekSelector struct {
	mu           sync.Mutex
	selected     string
	latest       string
	followLatest bool
	available    []string
}

// NewWeekSelector creates a selector with nothing selected.
func NewWeekSelector() *WeekSelector {
	return &WeekSelector{followLatest: true}
}

func containsKey(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}

// Reconcile updates the selector with the available week keys, newest first,
// and returns the selected key.
func (s *WeekSelector) Reconcile(available []string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.available = append([]string(nil), available...)
	if len(available) == 0 {
		s.selected = ""
		s.latest = ""
		s.followLatest = true
		return ""
	}

	newest := available[0]
	switch {
	case s.selected == "" || !containsKey(available, s.selected):
		s.selected = newest
		s.followLatest = true
	case newest != s.latest && s.followLatest && s.selected == s.latest:
		s.selected = newest
	}
	s.latest = newest
	return s.selected
}

// Select picks a week from the last reconciled set.
func (s *WeekSelector) Select(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !containsKey(s.available, key) {
		return ErrUnknownWeek
	}
	s.selected = key
	s.followLatest = key == s.latest
	return nil
}

// Selected returns the current selection, empty when there are no weeks.
func (s *WeekSelector) Selected() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// WeekSelections holds one selector per user.
type WeekSelections struct {
	mu        sync.Mutex
	selectors map[string]*WeekSelector
}

func NewWeekSelections() *WeekSelections {
	return &WeekSelections{selectors: make(map[string]*WeekSelector)}
}

// For returns the selector of userID, creating it on first use.
func (w *WeekSelections) For(userID string) *WeekSelector {
	w.mu.Lock()
	defer w.mu.Unlock()

	s, ok := w.selectors[userID]
	if !ok {
		s = NewWeekSelector()
		w.selectors[userID] = s
	}
	return s
}
