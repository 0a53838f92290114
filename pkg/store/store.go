// Package store is the session-scoped display-set cache and its active
// working set. The active list is always a subset of the cache.
package store

import (
	"slices"
	"sync"

	"github.com/OHIF/Viewers-sub030/pkg/displayset"
)

// Store holds every cached display set in insertion order plus the active
// subset. It is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	byUID    map[string]*displayset.DisplaySet
	order    []*displayset.DisplaySet
	active   []*displayset.DisplaySet
	isActive map[string]struct{}
}

// New returns an empty store.
func New() *Store {
	return &Store{
		byUID:    make(map[string]*displayset.DisplaySet),
		isActive: make(map[string]struct{}),
	}
}

// Insert caches ds. It reports false when a set with the same UID is
// already cached, in which case nothing changes.
func (s *Store) Insert(ds *displayset.DisplaySet) bool {
	if ds == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byUID[ds.UID()]; exists {
		return false
	}
	s.byUID[ds.UID()] = ds
	s.order = append(s.order, ds)
	return true
}

// Get returns the cached set with the UID.
func (s *Store) Get(uid string) (*displayset.DisplaySet, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ds, ok := s.byUID[uid]
	return ds, ok
}

// ForSeries returns the cached sets of the series in insertion order.
func (s *Store) ForSeries(seriesUID string) []*displayset.DisplaySet {
	return s.Filter(func(ds *displayset.DisplaySet) bool {
		return ds.SeriesInstanceUID == seriesUID
	})
}

// Filter returns the cached sets matching pred in insertion order.
func (s *Store) Filter(pred func(*displayset.DisplaySet) bool) []*displayset.DisplaySet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*displayset.DisplaySet
	for _, ds := range s.order {
		if pred(ds) {
			out = append(out, ds)
		}
	}
	return out
}

// All returns every cached set in insertion order.
func (s *Store) All() []*displayset.DisplaySet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.order)
}

// Len returns the number of cached sets.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Active returns the active sets in activation order.
func (s *Store) Active() []*displayset.DisplaySet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.active)
}

// IsActive reports whether the UID is in the active list.
func (s *Store) IsActive(uid string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.isActive[uid]
	return ok
}

// Activate adds cached sets to the active list. Sets that are not cached are
// ignored. It reports whether membership changed.
func (s *Store) Activate(sets ...*displayset.DisplaySet) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := false
	for _, ds := range sets {
		if ds == nil {
			continue
		}
		uid := ds.UID()
		if _, cached := s.byUID[uid]; !cached {
			continue
		}
		if _, ok := s.isActive[uid]; ok {
			continue
		}
		s.isActive[uid] = struct{}{}
		s.active = append(s.active, ds)
		changed = true
	}
	return changed
}

// Delete removes the set from the cache and the active list. It reports
// whether the set was cached.
func (s *Store) Delete(uid string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byUID[uid]; !ok {
		return false
	}
	delete(s.byUID, uid)
	s.order = slices.DeleteFunc(s.order, func(ds *displayset.DisplaySet) bool { return ds.UID() == uid })
	if _, ok := s.isActive[uid]; ok {
		delete(s.isActive, uid)
		s.active = slices.DeleteFunc(s.active, func(ds *displayset.DisplaySet) bool { return ds.UID() == uid })
	}
	return true
}

// Reset empties the cache and the active list.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byUID = make(map[string]*displayset.DisplaySet)
	s.isActive = make(map[string]struct{})
	s.order = nil
	s.active = nil
}

// FindBySOPInstanceUID returns the first active set holding the instance.
// Cached sets are searched when no active set matches.
func (s *Store) FindBySOPInstanceUID(sopInstanceUID string) (*displayset.DisplaySet, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, list := range [][]*displayset.DisplaySet{s.active, s.order} {
		for _, ds := range list {
			if ds.HasSOPInstanceUID(sopInstanceUID) {
				return ds, true
			}
		}
	}
	return nil, false
}

// SortActive reorders the active list with a stable sort.
func (s *Store) SortActive(cmp func(a, b *displayset.DisplaySet) int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	slices.SortStableFunc(s.active, cmp)
}

// MostRecent returns the most recently cached set.
func (s *Store) MostRecent() (*displayset.DisplaySet, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.order) == 0 {
		return nil, false
	}
	return s.order[len(s.order)-1], true
}
