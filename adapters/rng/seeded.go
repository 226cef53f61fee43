package rng

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math/rand"
)

// SeededRNG implements ports.RNG by hashing the stream name together
// with the base seed, so distinct operations on the same run draw from
// independent but reproducible streams.
type SeededRNG struct{}

// New returns a seeded RNG factory.
func New() SeededRNG { return SeededRNG{} }

// Stream creates a deterministic generator for the named operation.
func (SeededRNG) Stream(name string, baseSeed int64) *rand.Rand {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d", name, baseSeed)))
	seed := int64(binary.BigEndian.Uint64(sum[:8]))
	return rand.New(rand.NewSource(seed))
}
