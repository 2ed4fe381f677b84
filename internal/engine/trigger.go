package engine

import "math"

// zeroCrossSearchRadius is wide enough to catch a crossing in low-frequency
// content at 48 kHz.
const zeroCrossSearchRadius = 256

// maybeTrigger decides whether drifter d spawns a grain this sample and, if
// so, allocates and initializes one. A free-running exponential interval
// drives triggering unless an external clock has been seen and the deviation
// control blends it in: at zero deviation only clock edges fire, in between
// every edge fires plus a deviation-weighted share of the elapsed intervals.
func (e *Engine) maybeTrigger(d int, ctl *Controls, clockEdge bool, entropy, pitchMod, dt float64) {
	dr := &e.drifters[d]
	dr.TimeSinceGrain += dt

	deviation := pct(ctl.Deviation)

	trigger := false
	if e.clock.received && deviation < 1 {
		if deviation == 0 {
			trigger = clockEdge
		} else if clockEdge {
			trigger = true
		} else if dr.TimeSinceGrain >= dr.NextGrainTime {
			trigger = e.rand.Float() < deviation
		}
	} else {
		trigger = dr.TimeSinceGrain >= dr.NextGrainTime
	}

	if !trigger {
		return
	}

	dr.TimeSinceGrain = 0

	// Draw the next interval regardless of whether a slot is free: the
	// point process keeps its timing even when the pool is saturated.
	lambda := e.densitySmooth
	lambda *= 1 + e.rand.Bipolar()*entropy*0.5
	dr.NextGrainTime = e.rand.Exponential(lambda)

	e.spawnGrain(d, ctl, entropy, pitchMod)
}

// spawnGrain takes the first free pool slot; exhaustion is a silent no-op.
func (e *Engine) spawnGrain(d int, ctl *Controls, entropy, pitchMod float64) {
	var grain *Grain
	for i := range e.grains {
		if !e.grains[i].active {
			grain = &e.grains[i]
			break
		}
	}
	if grain == nil {
		return
	}

	dr := &e.drifters[d]
	sampleLen := float64(len(e.sample))

	grain.active = true

	// Snap the onset to a zero crossing so the grain opens without a click.
	raw := int(dr.Position * sampleLen)
	grain.position = float64(nearestZeroCrossing(e.sample, raw, zeroCrossSearchRadius))

	grain.phase = 0
	grainSize := densityToSize(ctl.Density) * e.sampleRate
	grain.phaseDelta = 1 / grainSize
	grain.drifterIndex = d
	grain.shape = ctl.Shape
	if grain.shape < 0 || int(grain.shape) >= NumShapes {
		grain.shape = ShapeCloud
	}
	grain.amplitude = 1 // soft clipping absorbs overload

	pitch := clamp(ctl.Pitch, -24, 24) + pitchMod

	// Scatter spreads the drifters in pitch: outer drifters up, inner ones
	// down, scaled by their distance from the center of the ordering.
	scatterDir := -1.0
	if d == 0 || d == NumDrifters-1 {
		scatterDir = 1
	}
	scatterIdx := math.Abs(float64(d) - 1.5)
	pitch += clamp(ctl.Scatter, 0, 12) * scatterDir * (scatterIdx / 1.5)

	// Entropy-scaled micro-detune, at most two semitones.
	pitch += e.rand.Bipolar() * entropy * 2

	// The rate ratio keeps playback speed correct when the source sample
	// was recorded at a different rate than the engine runs at.
	grain.positionDelta = math.Pow(2, pitch/12) * (e.sourceRate / e.sampleRate)

	// Filters are not reset here: residual state from the slot's previous
	// occupant decays smoothly instead of restarting with a transient.

	e.pulseOut = true
}
