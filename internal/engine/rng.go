package engine

import "math"

// rng is a xorshift32 generator. It is deliberately tiny and allocation-free:
// every stochastic subsystem (drifter walk, trigger intervals, pitch jitter)
// draws from the one engine-owned instance, so a fixed seed reproduces an
// entire run bit for bit.
type rng struct {
	state uint32
}

func newRNG(seed uint32) rng {
	if seed == 0 {
		seed = 0x12345678
	}
	return rng{state: seed}
}

func (r *rng) next() uint32 {
	x := r.state
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	r.state = x
	return x
}

// Float returns a uniform sample in [0, 1].
func (r *rng) Float() float64 {
	return float64(r.next()) / float64(math.MaxUint32)
}

// Bipolar returns a uniform sample in [-1, 1].
func (r *rng) Bipolar() float64 {
	return r.Float()*2 - 1
}

// Exponential draws an interval from an exponential distribution with the
// given rate via inverse-CDF sampling. The uniform sample is floored away
// from zero to keep the logarithm finite.
func (r *rng) Exponential(lambda float64) float64 {
	u := r.Float()
	if u < 1e-4 {
		u = 1e-4
	}
	return -math.Log(u) / lambda
}
