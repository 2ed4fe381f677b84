// Package engine implements a real-time granular drift synthesizer: four
// autonomous drifters wander through a frozen sample, spawning Poisson-timed
// grains that are enveloped, band-filtered, panned and mixed per block.
//
// The engine is single-threaded by contract: one audio thread calls
// [Engine.Process]; control values arrive as a plain [Controls] snapshot and
// are clamped at point of use, so unsynchronized host writes cannot corrupt
// engine state. The hot path allocates nothing and surfaces no errors —
// every degenerate input (missing sample, exhausted grain pool, numeric
// blow-up) has a defined silent fallback.
package engine

import "math"

const (
	// NumDrifters is the number of autonomous agents.
	NumDrifters = 4
	// GrainsPerDrifter sizes the pool; allocation is first-free-slot.
	GrainsPerDrifter = 4
	// MaxGrains is the total pool capacity.
	MaxGrains = NumDrifters * GrainsPerDrifter
	// MaxRenderedGrains bounds per-sample CPU: grains beyond this many keep
	// advancing but stop contributing to the mix.
	MaxRenderedGrains = 8

	// MinSampleFrames is the shortest buffer the engine will play; anything
	// shorter yields the silent path.
	MinSampleFrames = 100

	// smoothRate is the leaky-integrator coefficient for control smoothing
	// and loudness-compensation smoothing.
	smoothRate = 0.001
	// stormDecay drains a storm burst over roughly five to ten seconds.
	stormDecay = 0.9999
	// clockThreshold is the rising-edge level for the gate and clock inputs.
	clockThreshold = 1.0
	// normFloor keeps the smoothed normalization factor away from zero.
	normFloor = 0.1
)

// clockState tracks the external clock input.
type clockState struct {
	phase    float64 // seconds since the last edge
	period   float64 // seconds between the last two edges
	received bool    // true once any edge has been seen
	prev     float64 // previous clock sample, for edge detection
}

// Option configures an Engine at construction.
type Option func(*Engine)

// WithSeed fixes the random seed; identical seeds and control sequences
// reproduce runs bit for bit.
func WithSeed(seed uint32) Option {
	return func(e *Engine) { e.rand = newRNG(seed) }
}

// WithFixedPan selects the earlier static per-drifter pan law instead of
// the anchor-relative dynamic pan.
func WithFixedPan() Option {
	return func(e *Engine) { e.fixedPan = true }
}

// WithOutputRange scales the soft-clipped output and the control streams;
// the default of 1.0 suits direct audio playback, 5.0 mimics a eurorack
// level.
func WithOutputRange(r float64) Option {
	return func(e *Engine) {
		if r > 0 {
			e.outputRange = r
		}
	}
}

// Engine holds all mutable synthesis state. It is exclusively owned by the
// audio execution path; nothing here is safe for concurrent mutation.
type Engine struct {
	sampleRate float64

	sample     []float64 // decoded mono source, frozen while playing
	sourceRate float64   // the sample's native rate

	drifters [NumDrifters]Drifter
	grains   [MaxGrains]Grain

	// Exponentially smoothed control values.
	anchorSmooth  float64
	driftSmooth   float64
	densitySmooth float64
	entropySmooth float64
	stormLevel    float64

	clock clockState

	averagePosition float64
	pulseOut        bool
	smoothNorm      float64

	fog *fogReverb

	rand        rng
	fixedPan    bool
	outputRange float64
}

// New creates an engine running at the given sample rate. Drifters start
// spread across the sample with alternating drift directions and staggered
// first-grain times, so the texture opens without a burst.
func New(sampleRate float64, opts ...Option) *Engine {
	if sampleRate <= 0 {
		sampleRate = 48000
	}
	e := &Engine{
		sampleRate:  sampleRate,
		sourceRate:  sampleRate,
		rand:        newRNG(0x12345678),
		smoothNorm:  1,
		outputRange: 1,

		// Smoothed values start at the panel defaults so the first blocks
		// do not ramp up from a collapsed state.
		anchorSmooth:  0.5,
		driftSmooth:   0.3,
		densitySmooth: densityToRate(50),
		entropySmooth: 0.25,
	}
	for _, opt := range opts {
		opt(e)
	}

	for i := range e.drifters {
		dir := 1.0
		if i%2 != 0 {
			dir = -1
		}
		e.drifters[i] = Drifter{
			Position:           0.25 + float64(i)*0.15,
			NextGrainTime:      e.rand.Float() * 0.5,
			Variation:          0.5 + e.rand.Float()*0.5,
			DriftDirection:     dir,
			LastSignificantPos: 0.25 + float64(i)*0.15,
		}
	}

	e.fog = newFogReverb(e.sampleRate)

	return e
}

// SampleRate returns the engine's operating rate.
func (e *Engine) SampleRate() float64 { return e.sampleRate }

// SetSample installs a decoded mono buffer with its native sample rate.
// Buffers shorter than MinSampleFrames unload the sample instead. The
// caller must not mutate data afterwards.
func (e *Engine) SetSample(data []float64, nativeRate float64) {
	if len(data) < MinSampleFrames || nativeRate <= 0 {
		e.sample = nil
		return
	}
	e.sample = data
	e.sourceRate = nativeRate
}

// SampleLoaded reports whether a playable buffer is installed.
func (e *Engine) SampleLoaded() bool { return len(e.sample) >= MinSampleFrames }

// Drifters returns a snapshot of the current drifter states, for display.
func (e *Engine) Drifters() [NumDrifters]Drifter { return e.drifters }

// ActiveGrains counts currently sounding grains, for display.
func (e *Engine) ActiveGrains() int {
	n := 0
	for i := range e.grains {
		if e.grains[i].active {
			n++
		}
	}
	return n
}

// StormLevel returns the current storm envelope value, for display.
func (e *Engine) StormLevel() float64 { return e.stormLevel }

// Process renders one block. The block length is taken from len(b.OutL);
// all output slices must match it. With no valid sample loaded the block is
// silence and zeroed control streams, and no simulation state that depends
// on the buffer is touched.
func (e *Engine) Process(b Block, ctl Controls) {
	frames := len(b.OutL)
	dt := 1 / e.sampleRate

	if !e.SampleLoaded() {
		for i := 0; i < frames; i++ {
			if b.ReplaceL {
				b.OutL[i] = 0
			}
			if b.ReplaceR {
				b.OutR[i] = 0
			}
			b.PosOut[i] = 0
			b.PulseOut[i] = 0
		}
		return
	}

	fogAmount := pct(ctl.Fog)

	for frame := 0; frame < frames; frame++ {
		// Per-sample CV modulation; nil streams read as unmodulated.
		anchorMod := cvAt(b.AnchorCV, frame) * 0.1
		pitchMod := cvAt(b.PitchCV, frame) * 12
		driftMod := 1 + cvAt(b.DriftCV, frame)*0.2
		entropyMod := math.Max(0, cvAt(b.EntropyCV, frame)*0.2)
		stormGate := cvAt(b.StormGate, frame) > clockThreshold
		clockIn := cvAt(b.ClockIn, frame)

		// Smooth the slow controls toward their targets.
		e.anchorSmooth += (pct(ctl.Anchor) + anchorMod - e.anchorSmooth) * smoothRate
		e.driftSmooth += (pct(ctl.Drift)*driftMod - e.driftSmooth) * smoothRate
		e.densitySmooth += (densityToRate(ctl.Density) - e.densitySmooth) * smoothRate

		// Entropy rides on top of a decaying storm burst.
		if stormGate {
			e.stormLevel = 1
		} else {
			e.stormLevel *= stormDecay
		}
		targetEntropy := math.Min(1, pct(ctl.Entropy)+entropyMod+e.stormLevel)
		e.entropySmooth += (targetEntropy - e.entropySmooth) * smoothRate

		// Rising-edge clock detection.
		clockEdge := false
		if clockIn > clockThreshold && e.clock.prev <= clockThreshold {
			clockEdge = true
			if e.clock.received {
				e.clock.period = e.clock.phase
			}
			e.clock.phase = 0
			e.clock.received = true
		}
		e.clock.prev = clockIn
		if e.clock.received {
			e.clock.phase += dt
		}

		anchor := clamp(e.anchorSmooth, 0, 1)
		wander := pct(ctl.Wander)
		gravity := pctBipolar(ctl.Gravity)
		entropy := e.entropySmooth

		avgPos := 0.0
		for d := 0; d < NumDrifters; d++ {
			e.updateDrifter(d, anchor, wander, gravity, e.driftSmooth, entropy, dt)
			avgPos += e.drifters[d].Position
			e.maybeTrigger(d, &ctl, clockEdge, entropy, pitchMod, dt)
		}
		e.averagePosition = avgPos / NumDrifters

		// Render the pool. Grains past the render cap keep advancing but
		// stay out of the mix; that bounds per-sample cost without
		// distorting trigger timing.
		mixL, mixR := 0.0, 0.0
		active := 0
		spectrum := pct(ctl.Spectrum)
		tilt := pctBipolar(ctl.Tilt)
		for g := range e.grains {
			grain := &e.grains[g]
			if !grain.active {
				continue
			}
			active++
			if active <= MaxRenderedGrains {
				l, r := e.renderGrain(grain, anchor, wander, spectrum, tilt)
				mixL += l
				mixR += r
			}
			e.advanceGrain(grain)
		}

		// Perceived loudness tracks grain count, not plain gain; compensate
		// by 1/sqrt(n), smoothed so count changes do not step the level.
		targetNorm := 1.0
		if active > 1 {
			targetNorm = 1 / math.Sqrt(float64(active))
		}
		e.smoothNorm += smoothRate * (targetNorm - e.smoothNorm)
		if e.smoothNorm < normFloor {
			e.smoothNorm = normFloor
		}
		mixL *= e.smoothNorm
		mixR *= e.smoothNorm

		if fogAmount > 0 {
			dry := 1 - fogAmount*0.5
			wet := e.fog.Process((mixL+mixR)*0.5, fogAmount)
			mixL = mixL*dry + wet*fogAmount
			mixR = mixR*dry + wet*fogAmount
		}

		mixL = math.Tanh(mixL*2) * e.outputRange
		mixR = math.Tanh(mixR*2) * e.outputRange

		mixL = guard(mixL)
		mixR = guard(mixR)

		if b.ReplaceL {
			b.OutL[frame] = mixL
		} else {
			b.OutL[frame] += mixL
		}
		if b.ReplaceR {
			b.OutR[frame] = mixR
		} else {
			b.OutR[frame] += mixR
		}

		// Control streams always replace; accumulation would be meaningless
		// for a position signal and would stack pulses.
		b.PosOut[frame] = e.averagePosition * e.outputRange
		if e.pulseOut {
			b.PulseOut[frame] = e.outputRange
		} else {
			b.PulseOut[frame] = 0
		}
		e.pulseOut = false
	}
}

// guard forces non-finite or runaway samples to zero at the output edge.
func guard(x float64) float64 {
	if math.IsNaN(x) || x > 1e10 || x < -1e10 {
		return 0
	}
	return x
}

func cvAt(cv []float64, i int) float64 {
	if cv == nil || i >= len(cv) {
		return 0
	}
	return cv[i]
}
