package engine

import (
	"sync"

	"github.com/google/uuid"
)

// SessionTokenGenerator assigns an identifier to one StateMachine run
// over one document, so a persisted result batch (internal/store) can
// be traced back to the run that produced it.
type SessionTokenGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 session tokens.
//
// UUIDv7 embeds a timestamp in the most significant bits, making
// tokens sortable by creation time — useful when scanning a result
// store for the most recently processed documents.
//
// Uses github.com/google/uuid for RFC 4122 compliant UUIDs.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent
// use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated
// string.
//
// Format: "550e8400-e29b-41d4-a716-446655440000" (36 characters)
//
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined session tokens for testing,
// enabling deterministic golden-trace comparison (internal/harness).
//
// Thread-safety: FixedGenerator is safe for concurrent use via
// internal mutex.
type FixedGenerator struct {
	mu     sync.Mutex
	tokens []string
	idx    int
}

// NewFixedGenerator creates a generator that returns tokens in order.
//
// Example:
//
//	gen := NewFixedGenerator("doc-1", "doc-2", "doc-3")
//	gen.Generate() // "doc-1"
//	gen.Generate() // "doc-2"
//	gen.Generate() // "doc-3"
//	gen.Generate() // panic: all tokens exhausted
func NewFixedGenerator(tokens ...string) *FixedGenerator {
	return &FixedGenerator{
		tokens: tokens,
		idx:    0,
	}
}

// Generate returns the next predetermined token.
//
// Panics if all tokens have been consumed — a fail-fast signal that a
// test tried to start more runs than it provisioned tokens for.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.tokens) {
		panic("FixedGenerator: all tokens exhausted")
	}
	token := g.tokens[g.idx]
	g.idx++
	return token
}
