package testutil

import (
	"fmt"
	"sync"
)

// SequentialTraceGenerator returns predictable trace ids for golden output.
//
// Ids have the form "<prefix>-0001", "<prefix>-0002", and so on.
//
// Thread-safety: all methods are safe for concurrent use.
type SequentialTraceGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequentialTraceGenerator creates a generator. An empty prefix
// defaults to "trace".
func NewSequentialTraceGenerator(prefix string) *SequentialTraceGenerator {
	if prefix == "" {
		prefix = "trace"
	}
	return &SequentialTraceGenerator{prefix: prefix}
}

// Generate returns the next trace id.
func (g *SequentialTraceGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%04d", g.prefix, g.n)
}

// Reset restarts the sequence so the next id ends in 0001.
func (g *SequentialTraceGenerator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n = 0
}
