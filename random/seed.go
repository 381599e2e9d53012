// Package random holds the single pseudo-random source shared by every
// stage of a round, plus the weighted draw used across the engine.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
)

// Source is the subset of *rand.Rand the engine draws from.
type Source interface {
	Float64() float64
	Intn(n int) int
}

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// New returns a math/rand source seeded from crypto/rand. If the system
// entropy pool cannot be read it falls back to a fixed seed; fairness is
// not a security property for this game.
func New() *rand.Rand {
	seed, err := NewSeed()
	if err != nil {
		seed = 1
	}
	return rand.New(rand.NewSource(seed))
}
