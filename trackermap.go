package kansoku

import "iter"

// TrackerMap associates host keys with tracking records and keeps a side set
// of keys that must never be tracked. A key is never both tracked and
// ignored; attempting either panics with ErrInvariantViolation.
type TrackerMap[K comparable, R any] struct {
	records map[K]R
	ignored map[K]struct{}
}

// NewTrackerMap creates an initialized TrackerMap.
func NewTrackerMap[K comparable, R any](capacity int) *TrackerMap[K, R] {
	m := &TrackerMap[K, R]{}
	m.Initialize(capacity)
	return m
}

// Initialize pre-sizes the map for capacity records. Calling it twice
// without Dispose in between panics.
func (m *TrackerMap[K, R]) Initialize(capacity int) {
	if m.records != nil {
		invariantf("tracker map initialized twice")
	}
	m.records = make(map[K]R, capacity)
	m.ignored = make(map[K]struct{})
}

// Dispose releases all backing storage. The map must be initialized again
// before reuse.
func (m *TrackerMap[K, R]) Dispose() {
	m.records = nil
	m.ignored = nil
}

// Add inserts or overwrites the record for key.
func (m *TrackerMap[K, R]) Add(key K, r R) {
	m.checkInitialized()
	if _, ok := m.ignored[key]; ok {
		invariantf("cannot track ignored key %v", key)
	}
	m.records[key] = r
}

// Set is an alias of Add, used when writing back a modified record.
func (m *TrackerMap[K, R]) Set(key K, r R) {
	m.Add(key, r)
}

// Remove deletes the record for key. Removing an absent key is a no-op.
func (m *TrackerMap[K, R]) Remove(key K) {
	delete(m.records, key)
}

// Get returns the record for key and whether it exists. A missing key yields
// the zero record.
func (m *TrackerMap[K, R]) Get(key K) (R, bool) {
	r, ok := m.records[key]
	return r, ok
}

// At returns the record for key and panics if the key is not tracked.
func (m *TrackerMap[K, R]) At(key K) R {
	r, ok := m.records[key]
	if !ok {
		invariantf("key %v is not tracked", key)
	}
	return r
}

// Contains reports whether key is tracked.
func (m *TrackerMap[K, R]) Contains(key K) bool {
	_, ok := m.records[key]
	return ok
}

// IsIgnored reports whether key is excluded from tracking.
func (m *TrackerMap[K, R]) IsIgnored(key K) bool {
	_, ok := m.ignored[key]
	return ok
}

// Ignore excludes key from tracking. It panics if key is already tracked.
func (m *TrackerMap[K, R]) Ignore(key K) {
	m.checkInitialized()
	if _, ok := m.records[key]; ok {
		invariantf("cannot ignore tracked key %v", key)
	}
	m.ignored[key] = struct{}{}
}

// Unignore makes key eligible for tracking again.
func (m *TrackerMap[K, R]) Unignore(key K) {
	delete(m.ignored, key)
}

// Len returns the number of tracked keys.
func (m *TrackerMap[K, R]) Len() int {
	return len(m.records)
}

// All iterates the tracked keys and their records in unspecified order.
func (m *TrackerMap[K, R]) All() iter.Seq2[K, R] {
	return func(yield func(K, R) bool) {
		for k, r := range m.records {
			if !yield(k, r) {
				return
			}
		}
	}
}

func (m *TrackerMap[K, R]) checkInitialized() {
	if m.records == nil {
		invariantf("tracker map used before Initialize or after Dispose")
	}
}
