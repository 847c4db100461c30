package testutil

import (
	"fmt"
	"sync"
)

// DefaultRunID is returned by a FixedRunIDGenerator created with an empty id.
const DefaultRunID = "test-run-default"

// FixedRunIDGenerator returns the same run id every time.
//
// Reports produced with a FixedRunIDGenerator are byte-identical across
// runs, including the run id, which makes them usable in golden files.
//
// Thread-safety: FixedRunIDGenerator is stateless and safe for concurrent use.
type FixedRunIDGenerator struct {
	id string
}

// NewFixedRunIDGenerator creates a generator that always returns id.
// If id is empty, Generate() returns DefaultRunID.
func NewFixedRunIDGenerator(id string) *FixedRunIDGenerator {
	if id == "" {
		id = DefaultRunID
	}
	return &FixedRunIDGenerator{id: id}
}

// Generate returns the fixed run id.
func (g *FixedRunIDGenerator) Generate() string {
	return g.id
}

// SequenceRunIDGenerator returns "test-run-0001", "test-run-0002", ...
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type SequenceRunIDGenerator struct {
	mu  sync.Mutex
	seq int
}

// NewSequenceRunIDGenerator creates a generator whose first id ends in 0001.
func NewSequenceRunIDGenerator() *SequenceRunIDGenerator {
	return &SequenceRunIDGenerator{}
}

// Generate returns the next run id in sequence.
func (g *SequenceRunIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return fmt.Sprintf("test-run-%04d", g.seq)
}

// Reset restarts the sequence. The next Generate returns test-run-0001.
func (g *SequenceRunIDGenerator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq = 0
}
