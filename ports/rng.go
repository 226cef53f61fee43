package ports

import (
	"math/rand"
)

// RNG provides seeded random number generation for deterministic
// sequence generation. Streams derived from the same name and base seed
// must be identical across processes.
type RNG interface {
	// Stream creates a deterministic generator for a named operation
	// (e.g. one run's design generation).
	Stream(name string, baseSeed int64) *rand.Rand
}
