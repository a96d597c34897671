package service

import "sync/atomic"

// Stats tracks console runtime counters using lock-free atomics.
// Safe for concurrent use from store operations and the watcher.
type Stats struct {
	fetches      atomic.Int64
	mutations    atomic.Int64
	errors       atomic.Int64
	unauthorized atomic.Int64
}

// NewStats creates a Stats with all counters at zero.
func NewStats() *Stats {
	return &Stats{}
}

// RecordFetch increments the fetch counter.
func (s *Stats) RecordFetch() { s.fetches.Add(1) }

// RecordMutation increments the mutation counter.
func (s *Stats) RecordMutation() { s.mutations.Add(1) }

// RecordError increments the error counter.
func (s *Stats) RecordError() { s.errors.Add(1) }

// RecordUnauthorized increments the credential-rejection counter.
func (s *Stats) RecordUnauthorized() { s.unauthorized.Add(1) }

// Snapshot holds a point-in-time copy of all counters.
type Snapshot struct {
	Fetches      int64 `json:"fetches"`
	Mutations    int64 `json:"mutations"`
	Errors       int64 `json:"errors"`
	Unauthorized int64 `json:"unauthorized"`
}

// Get returns a snapshot of all counters.
func (s *Stats) Get() Snapshot {
	return Snapshot{
		Fetches:      s.fetches.Load(),
		Mutations:    s.mutations.Load(),
		Errors:       s.errors.Load(),
		Unauthorized: s.unauthorized.Load(),
	}
}
