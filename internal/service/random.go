package service

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// NewRand returns a seeded source. Seed 0 draws a seed from crypto/rand.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		var b [8]byte
		if _, err := crand.Read(b[:]); err == nil {
			seed = binary.LittleEndian.Uint64(b[:])
		}
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
