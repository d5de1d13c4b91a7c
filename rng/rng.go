// Package rng provides the seeded random streams that feed every workload.
// A stream is a PCG generator, whose output is fully determined by the
// algorithm, so the same seed yields the same sequence on every platform.
package rng

import (
	"encoding/binary"
	"math/rand/v2"
)

// DefaultSeed is the base seed used when none is configured.
const DefaultSeed uint64 = 0xffff_1145_14ab_cdef

// Second PCG seed word. Derived from the first so a single uint64 fully
// determines the stream.
const streamSalt uint64 = 0x9e37_79b9_7f4a_7c15

// Stream is a deterministic random source. It is not safe for concurrent
// use; multi-worker workloads give each worker its own Stream.
type Stream struct {
	r *rand.Rand
}

// New returns a Stream seeded with seed.
func New(seed uint64) *Stream {
	return &Stream{r: rand.New(rand.NewPCG(seed, seed^streamSalt))}
}

// Uint64 draws the next 64 bits.
func (s *Stream) Uint64() uint64 {
	return s.r.Uint64()
}

// Uint128 draws the next 128 bits, high word first.
func (s *Stream) Uint128() Uint128 {
	hi := s.r.Uint64()
	lo := s.r.Uint64()

	return Uint128{Hi: hi, Lo: lo}
}

// Fill overwrites every element of dst with a fresh draw.
func (s *Stream) Fill(dst []Uint128) {
	for i := range dst {
		dst[i] = s.Uint128()
	}
}

// Read fills p from successive Uint64 draws in little-endian order. It
// always returns len(p), nil.
func (s *Stream) Read(p []byte) (int, error) {
	var buf [8]byte

	n := 0
	for n < len(p) {
		binary.LittleEndian.PutUint64(buf[:], s.r.Uint64())
		n += copy(p[n:], buf[:])
	}

	return n, nil
}

// DeriveSeed returns the seed of worker number worker: base XOR worker^8,
// computed with wrapping arithmetic. Worker 0 keeps the base seed. Distinct
// workers can collide for large worker counts; callers accept that.
func DeriveSeed(base uint64, worker int) uint64 {
	w := uint64(worker)
	w2 := w * w
	w4 := w2 * w2

	return base ^ (w4 * w4)
}
