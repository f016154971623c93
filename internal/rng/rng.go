// Package rng provides a small seedable generator whose output is identical
// across processes, so fixture data generated server side can be reproduced
// anywhere from the seed alone.
package rng

// Rand is a mulberry32 generator. The zero value is usable and seeded with 0.
type Rand struct {
	seed  uint32
	state uint32
}

func New(seed int32) *Rand {
	return NewUint32(uint32(seed))
}

func NewUint32(seed uint32) *Rand {
	return &Rand{seed: seed, state: seed}
}

// Reset rewinds the sequence to its first value.
func (r *Rand) Reset() {
	r.state = r.seed
}

func (r *Rand) Seed() uint32 {
	return r.seed
}

// Float64 returns the next value in [0, 1).
func (r *Rand) Float64() float64 {
	r.state += 0x6D2B79F5
	t := r.state
	t = (t ^ (t >> 15)) * (t | 1)
	t ^= t + (t^(t>>7))*(t|61)
	return float64(t^(t>>14)) / 4294967296.0
}

// Range returns a value in [min, max).
func (r *Rand) Range(min, max float64) float64 {
	return min + r.Float64()*(max-min)
}

// Intn returns a value in [0, n). n <= 0 yields 0.
func (r *Rand) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	v := int(r.Float64() * float64(n))
	if v >= n {
		v = n - 1
	}
	return v
}
