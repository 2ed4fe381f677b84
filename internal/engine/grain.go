package engine

import "math"

// Grain is one bounded playback event drawn from the frozen sample. Slots
// live in a fixed pool and are recycled; the filters intentionally keep
// their state between occupants so a reused slot does not open with a
// transient.
type Grain struct {
	active        bool
	position      float64 // sample index into the source buffer
	positionDelta float64 // per-sample advance: pitch ratio x rate correction
	phase         float64 // envelope progress, 0..1
	phaseDelta    float64
	drifterIndex  int
	shape         Shape
	amplitude     float64
	filterL       bandFilter
	filterR       bandFilter
}

// bandCenterFreqs assigns each drifter its spectral home. The lowest band
// sits at 250 Hz; bandpassing lower content turns grainy.
var bandCenterFreqs = [NumDrifters]float64{250, 750, 1550, 4000}

// renderGrain accumulates one sample of the grain into the stereo mix.
// anchor and wander position the dynamic pan; spectrum and tilt come from
// the control snapshot. Returns the grain's contribution.
func (e *Engine) renderGrain(g *Grain, anchor, wander, spectrum, tilt float64) (left, right float64) {
	n := len(e.sample)

	// Linear interpolation with modulo wrap.
	pos0 := int(g.position)
	pos1 := pos0 + 1
	frac := g.position - float64(pos0)
	pos0 = ((pos0 % n) + n) % n
	pos1 = ((pos1 % n) + n) % n
	mono := e.sample[pos0]*(1-frac) + e.sample[pos1]*frac

	sample := mono * Envelope(g.phase, g.shape) * g.amplitude

	if e.fixedPan {
		return e.renderFixedPan(g, sample, spectrum, tilt)
	}

	d := g.drifterIndex

	// Spectral separation: bandpass at the drifter's center frequency, with
	// makeup gain for the filter's passband loss.
	if spectrum > 0.01 {
		q := 1 + spectrum*2
		sample = g.filterL.Process(sample, bandCenterFreqs[d], q, e.sampleRate) * (1 + spectrum)
	}

	sample *= tiltGain(d, tilt)

	// Pan by where the drifter sits relative to the anchor, normalized by
	// the wander width. Linear crossfade; cheap and fine for ambient beds.
	pan := 0.0
	if wander > 0.01 {
		pan = (e.drifters[d].Position - anchor) / wander
	}
	pan = clamp(pan, -1, 1)
	return sample * (0.5 - pan*0.5), sample * (0.5 + pan*0.5)
}

// renderFixedPan is the earlier fixed-pan law kept as a documented
// alternative: static per-drifter pan positions with an equal-power curve
// and independently filtered channels.
func (e *Engine) renderFixedPan(g *Grain, sample, spectrum, tilt float64) (left, right float64) {
	d := g.drifterIndex
	sampleL, sampleR := sample, sample

	if spectrum > 0.01 {
		q := 1 + spectrum*2
		freq := bandCenterFreqs[d]
		sampleL = g.filterL.Process(sampleL, freq, q, e.sampleRate) * (1 + spectrum)
		sampleR = g.filterR.Process(sampleR, freq, q, e.sampleRate) * (1 + spectrum)
	}

	gain := tiltGain(d, tilt)
	pan := fixedPans[d]
	panL := math.Cos((pan + 1) * 0.25 * math.Pi)
	panR := math.Sin((pan + 1) * 0.25 * math.Pi)
	return sampleL * gain * panL, sampleR * gain * panR
}

var fixedPans = [NumDrifters]float64{-1, -0.5, 0.5, 1}

// advanceGrain moves playback and envelope forward and retires the grain
// once its envelope completes.
func (e *Engine) advanceGrain(g *Grain) {
	sampleLen := float64(len(e.sample))

	g.position += g.positionDelta
	g.phase += g.phaseDelta

	for g.position >= sampleLen {
		g.position -= sampleLen
	}
	for g.position < 0 {
		g.position += sampleLen
	}

	if g.phase >= 1 {
		g.active = false
	}
}
