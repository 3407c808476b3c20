// Package cache holds the process-wide meeting list cache: a single slot
// with a fixed TTL, checked at read time. There is exactly one list to
// cache because the upstream filters are fixed at startup.
package cache

import (
	"sync"
	"time"
)

// Stats is a point-in-time snapshot of the slot, reported by the health
// endpoint. Age is measured from the last successful Set.
type Stats struct {
	HasCache bool
	Size     int
	Age      time.Duration
}

// Slot is the single cache slot. All methods are safe for concurrent use.
type Slot struct {
	mu        sync.RWMutex
	ttl       time.Duration
	records   []map[string]interface{}
	fetchedAt time.Time

	// now 便于测试注入时钟
	now func() time.Time
}

// NewSlot creates an empty slot with the given TTL.
func NewSlot(ttl time.Duration) *Slot {
	return &Slot{
		ttl: ttl,
		now: time.Now,
	}
}

// Get returns the cached list and its fetch time when the slot is present
// and fresh. The last return is false on an empty or expired slot. The
// returned slice is a copy of the container; elements are shared.
func (s *Slot) Get() ([]map[string]interface{}, time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.records == nil {
		return nil, time.Time{}, false
	}
	if s.now().Sub(s.fetchedAt) > s.ttl {
		return nil, time.Time{}, false
	}

	out := make([]map[string]interface{}, len(s.records))
	copy(out, s.records)
	return out, s.fetchedAt, true
}

// Set replaces the slot's contents, restarts the TTL clock and returns the
// stored fetch time.
func (s *Slot) Set(records []map[string]interface{}) time.Time {
	stored := make([]map[string]interface{}, len(records))
	copy(stored, records)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = stored
	s.fetchedAt = s.now()
	return s.fetchedAt
}

// Clear empties the slot.
func (s *Slot) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	s.fetchedAt = time.Time{}
}

// Stats reports the raw slot state. Presence is reported even for an
// expired slot; freshness is Get's concern.
func (s *Slot) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.records == nil {
		return Stats{}
	}
	return Stats{
		HasCache: true,
		Size:     len(s.records),
		Age:      s.now().Sub(s.fetchedAt),
	}
}
