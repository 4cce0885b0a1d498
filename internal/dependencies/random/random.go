package random

import "math/rand"

// Random provides random number generation that can be mocked for testing
type Random interface {
	// Intn returns a random int in [0, n)
	Intn(n int) int
}

// SystemRandom implements Random with the auto-seeded math/rand global source,
// which is safe for concurrent use
type SystemRandom struct{}

// New creates a new SystemRandom
func New() *SystemRandom {
	return &SystemRandom{}
}

// Intn returns a uniformly distributed int in [0, n), or 0 when n <= 0
func (r *SystemRandom) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return rand.Intn(n)
}
