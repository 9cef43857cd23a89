package heightmap

import "math"

// RandomStream is a small linear congruential generator whose sequence is
// fully determined by its seed. Height maps generated from the same seed are
// bit-identical across runs and platforms.
type RandomStream struct {
	initial int32
	seed    int32
}

// NewRandomStream returns a stream seeded with seed.
func NewRandomStream(seed int32) *RandomStream {
	return &RandomStream{initial: seed, seed: seed}
}

// Reset rewinds the stream to its initial seed.
func (r *RandomStream) Reset() {
	r.seed = r.initial
}

// Seed returns the seed the stream was created with.
func (r *RandomStream) Seed() int32 {
	return r.initial
}

func (r *RandomStream) mutate() {
	r.seed = r.seed*196314165 + 907633515
}

// Fraction returns a value in [0, 1).
func (r *RandomStream) Fraction() float32 {
	r.mutate()
	// Mantissa from the top 23 bits, exponent for [1, 2)
	bits := uint32(0x3F800000) | (uint32(r.seed) >> 9)
	return math.Float32frombits(bits) - 1
}

// RandRange returns a value in [lo, hi).
func (r *RandomStream) RandRange(lo, hi float32) float32 {
	return lo + (hi-lo)*r.Fraction()
}

// WhiteNoise returns a value in [-0.5, 0.5).
func (r *RandomStream) WhiteNoise() float32 {
	return r.Fraction() - 0.5
}
