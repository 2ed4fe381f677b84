package engine

import "math"

// Controls is the host's view of the engine parameters, taken as a read-only
// snapshot per processed block. Units follow the panel: percentages for the
// continuous controls, semitones for pitch and scatter. Values are clamped
// at point of use, so a torn or stale write from the host never breaks an
// engine invariant.
type Controls struct {
	Anchor    float64 // percent, 0..100: drifter home position
	Wander    float64 // percent, 0..100: half-width of the roam zone
	Gravity   float64 // percent, -100..100: pull toward (+) or push from (-) anchor
	Drift     float64 // percent, 0..100: constant roaming speed
	Density   float64 // percent, 0..100: grain rate and (inversely) grain size
	Deviation float64 // percent, 0..100: 0 = clock-locked, 100 = free running
	Pitch     float64 // semitones, -24..24
	Scatter   float64 // semitones, 0..12: per-drifter detune spread
	Spectrum  float64 // percent, 0..100: band-filter separation amount
	Tilt      float64 // percent, -100..100: spectral balance across drifters
	Shape     Shape
	Entropy   float64 // percent, 0..100: randomness intensity
	Fog       float64 // percent, 0..100: reverb send (optional mode)
}

// DefaultControls mirrors the panel defaults.
func DefaultControls() Controls {
	return Controls{
		Anchor:    50,
		Wander:    30,
		Gravity:   0,
		Drift:     30,
		Density:   50,
		Deviation: 100,
		Pitch:     0,
		Scatter:   0,
		Spectrum:  0,
		Tilt:      0,
		Shape:     ShapeCloud,
		Entropy:   25,
		Fog:       0,
	}
}

// Block describes one audio block's I/O. OutL/OutR and the two control
// outputs must all have the same length; the engine processes that many
// samples. CV inputs are optional per-sample modulation streams; nil means
// unconnected. Replace selects overwrite semantics for the audio outputs,
// otherwise the engine accumulates into them.
type Block struct {
	OutL, OutR []float64
	PosOut     []float64 // smoothed average drifter position
	PulseOut   []float64 // one-sample pulse per grain trigger

	AnchorCV  []float64
	PitchCV   []float64
	DriftCV   []float64
	EntropyCV []float64
	StormGate []float64
	ClockIn   []float64

	ReplaceL, ReplaceR bool
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func pct(x float64) float64 { return clamp(x, 0, 100) / 100 }

func pctBipolar(x float64) float64 { return clamp(x, -100, 100) / 100 }

// densityToRate maps the density control to grains per second: 0.25/s when
// sparse up to 50/s when dense.
func densityToRate(density float64) float64 {
	return 0.25 * math.Pow(200, clamp(density, 0, 100)/100)
}

// densityToSize maps density to grain duration in seconds, 0.5 s down to
// 100 ms. Deliberately not the reciprocal of the rate mapping, so low
// density leaves audible gaps between long grains.
func densityToSize(density float64) float64 {
	return 0.5 * math.Pow(0.2, clamp(density, 0, 100)/100)
}

// tiltGain favors low-index drifters at negative tilt and high-index ones
// at positive tilt, roughly +-6 dB via a linear approximation.
func tiltGain(drifterIndex int, tilt float64) float64 {
	normalized := float64(drifterIndex) / float64(NumDrifters-1)
	return 1 + (normalized-0.5)*2*tilt*0.5
}
