package testutil

import (
	"fmt"
	"sync"
)

// FixedIDGenerator generates predictable report IDs in sequence.
//
// IDs have the form "<prefix>-0001", "<prefix>-0002", ... which keeps
// history output stable enough for golden comparison.
// Satisfies store.IDGenerator.
//
// Thread-safety: Generate is safe for concurrent use via internal mutex.
type FixedIDGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewFixedIDGenerator creates a generator with the given prefix.
// If prefix is empty, "report" is used.
func NewFixedIDGenerator(prefix string) *FixedIDGenerator {
	if prefix == "" {
		prefix = "report"
	}
	return &FixedIDGenerator{prefix: prefix}
}

// Generate returns the next ID in sequence.
func (g *FixedIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%04d", g.prefix, g.n)
}
