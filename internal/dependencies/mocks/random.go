package mocks

import (
	"fmt"
	"sync"

	"github.com/mcoot/anagrams/internal/dependencies/idgen"
	"github.com/mcoot/anagrams/internal/dependencies/random"
)

// MockRandom is a mock implementation of Random for testing
type MockRandom struct {
	mu sync.Mutex

	// IntnResults is a queue of results to return from Intn
	IntnResults []int
	intnIndex   int
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Intn returns the next queued result clamped into [0, n), or 0 if none remaining
func (r *MockRandom) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.intnIndex >= len(r.IntnResults) || n <= 0 {
		return 0
	}
	result := r.IntnResults[r.intnIndex]
	r.intnIndex++
	if result >= n {
		result = n - 1
	}
	return result
}

// QueueIntn adds values to the Intn result queue
func (r *MockRandom) QueueIntn(values ...int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.IntnResults = append(r.IntnResults, values...)
}

// Reset clears all queued results
func (r *MockRandom) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.IntnResults = nil
	r.intnIndex = 0
}

// MockIDGenerator returns queued ids in order
type MockIDGenerator struct {
	mu        sync.Mutex
	ids       []string
	index     int
	generated int
}

// Ensure MockIDGenerator implements Generator
var _ idgen.Generator = (*MockIDGenerator)(nil)

// NewMockIDGenerator creates a MockIDGenerator with the given queue
func NewMockIDGenerator(ids ...string) *MockIDGenerator {
	return &MockIDGenerator{ids: ids}
}

// Next returns the next queued id. Once the queue is exhausted the last id
// repeats, which lets tests exercise collision handling. With nothing ever
// queued it counts up from 00000001.
func (g *MockIDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.ids) == 0 {
		g.generated++
		return fmt.Sprintf("%08x", g.generated)
	}
	if g.index >= len(g.ids) {
		return g.ids[len(g.ids)-1]
	}
	id := g.ids[g.index]
	g.index++
	return id
}

// Queue appends ids to the queue
func (g *MockIDGenerator) Queue(ids ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ids = append(g.ids, ids...)
}
