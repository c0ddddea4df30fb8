package testutil

import (
	"fmt"
	"sync"
)

// SequentialIDGenerator generates predictable run ids for tests:
// "run-0001", "run-0002", ...
//
// This enables golden comparison of archive listings, which would
// otherwise differ on every run because production ids are UUIDv7.
//
// Thread-safety: all methods are safe for concurrent use.
type SequentialIDGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequentialIDGenerator creates a generator. An empty prefix
// defaults to "run".
func NewSequentialIDGenerator(prefix string) *SequentialIDGenerator {
	if prefix == "" {
		prefix = "run"
	}
	return &SequentialIDGenerator{prefix: prefix}
}

// Generate returns the next id.
//
// Implements store.IDGenerator.
func (g *SequentialIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%04d", g.prefix, g.n)
}
