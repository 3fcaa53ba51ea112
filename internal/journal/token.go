package journal

import (
	"sync"

	"github.com/google/uuid"
)

// TokenSource assigns record tokens to journal rows.
type TokenSource interface {
	// Next returns a fresh token. Tokens must be unique within a
	// journal; time-sortable tokens additionally give list queries
	// chronological order.
	Next() string
}

// UUIDv7Tokens generates time-sortable UUIDv7 record tokens.
//
// UUIDv7 embeds a timestamp in the most significant bits, so sorting
// tokens sorts rows by insert time.
//
// Thread-safety: UUIDv7Tokens is stateless and safe for concurrent use.
type UUIDv7Tokens struct{}

// Next creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Tokens) Next() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedTokens returns predetermined record tokens for testing.
//
// Thread-safety: FixedTokens is safe for concurrent use via internal
// mutex.
type FixedTokens struct {
	mu     sync.Mutex
	tokens []string
	idx    int
}

// NewFixedTokens creates a source that returns tokens in order.
//
// Example:
//
//	tokens := NewFixedTokens("rec-1", "rec-2")
//	tokens.Next() // "rec-1"
//	tokens.Next() // "rec-2"
//	tokens.Next() // panic: all tokens exhausted
func NewFixedTokens(tokens ...string) *FixedTokens {
	return &FixedTokens{tokens: tokens}
}

// Next returns the next predetermined token.
//
// Panics if all tokens have been consumed. This is a fail-fast approach
// to catch test misconfiguration (test recorded more rows than expected).
func (s *FixedTokens) Next() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.idx >= len(s.tokens) {
		panic("FixedTokens: all tokens exhausted")
	}
	token := s.tokens[s.idx]
	s.idx++
	return token
}
