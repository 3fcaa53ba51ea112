package judgment

import (
	"sync"
	"time"
)

// TimestampSource produces provenance entry timestamps.
//
// Fusion, identity assignment, and mappers all stamp fresh entries; tests
// inject a fixed source so chains (and the hashes derived from them) are
// reproducible.
type TimestampSource interface {
	// Now returns the current instant as an RFC 3339 UTC string.
	Now() string
}

// SystemTimestamps stamps entries from the wall clock.
//
// Thread-safety: SystemTimestamps is stateless and safe for concurrent use.
type SystemTimestamps struct{}

// Now returns the current UTC time in RFC 3339 format, e.g.
// "2023-01-01T00:00:00Z".
func (SystemTimestamps) Now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// FixedTimestamps returns predetermined timestamps for testing.
//
// This enables deterministic chains and golden comparison of seals and
// judgment ids.
//
// Thread-safety: FixedTimestamps is safe for concurrent use via internal mutex.
type FixedTimestamps struct {
	mu     sync.Mutex
	stamps []string
	idx    int
}

// NewFixedTimestamps creates a source that returns stamps in order.
//
// Example:
//
//	ts := NewFixedTimestamps("2023-01-01T00:00:00Z", "2023-01-01T00:00:01Z")
//	ts.Now() // "2023-01-01T00:00:00Z"
//	ts.Now() // "2023-01-01T00:00:01Z"
//	ts.Now() // panic: all timestamps exhausted
func NewFixedTimestamps(stamps ...string) *FixedTimestamps {
	return &FixedTimestamps{stamps: stamps}
}

// Now returns the next predetermined timestamp.
//
// Panics if all stamps have been consumed. This is a fail-fast approach to
// catch test misconfiguration (test stamped more entries than expected).
func (s *FixedTimestamps) Now() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.idx >= len(s.stamps) {
		panic("FixedTimestamps: all timestamps exhausted")
	}
	stamp := s.stamps[s.idx]
	s.idx++
	return stamp
}
