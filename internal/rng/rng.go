// Package rng provides an injectable random source for the game engines.
// Production code seeds from the wall clock; tests substitute a fixed seed
// to assert exact draw sequences.
package rng

// Source produces the random values the stores consume.
type Source interface {
	// Intn returns a random int in [0, n).
	Intn(n int) int
}

// LCG is a deterministic pseudo-random number generator.
// Uses a simple LCG (Linear Congruential Generator).
type LCG struct {
	state uint64
}

// NewLCG creates a new generator with the given seed.
func NewLCG(seed int64) *LCG {
	s := uint64(seed) //#nosec G115 -- intentional conversion for RNG seeding
	if s == 0 {
		s = 1
	}
	return &LCG{state: s}
}

// Next generates the next random uint64.
func (r *LCG) Next() uint64 {
	// LCG parameters (same as MINSTD)
	r.state = r.state*6364136223846793005 + 1442695040888963407
	return r.state
}

// Intn returns a random int in [0, n).
func (r *LCG) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(r.Next() % uint64(n)) //#nosec G115 -- n is always positive
}
