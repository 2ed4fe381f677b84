package engine

import "math"

// Drifter is one autonomous agent roaming the loaded sample. Its position is
// a damped stochastic oscillator: gravity pulls it toward (or pushes it from)
// the anchor, nearby drifters repel each other, entropy injects a random
// walk, and a slow time-based drift keeps it moving even when everything
// else is still.
type Drifter struct {
	Position           float64 // normalized location in the sample, (0, 1)
	Velocity           float64
	Variation          float64 // per-drifter speed multiplier, fixed at creation
	DriftDirection     float64 // +1 or -1, flips on a wander-zone bounce
	TimeSinceGrain     float64 // seconds
	NextGrainTime      float64 // seconds, freshly drawn exponential interval
	Boredom            float64 // 0..1, rises while parked in one region
	LastSignificantPos float64 // anchor for the boredom movement test
}

const (
	// repulsionThreshold is the separation below which drifters push apart.
	repulsionThreshold = 0.05
	// boredomMovementThreshold resets boredom once the drifter has roamed
	// this far from its last significant position.
	boredomMovementThreshold = 0.03
	// boredomBuildRate reaches full boredom in about 20 seconds.
	boredomBuildRate = 0.05

	velocityDamping = 0.995
	driftSpeedScale = 0.05
	gravityGain     = 100.0

	positionMin = 0.001
	positionMax = 0.999
)

// updateDrifter advances one drifter by dt seconds. anchor, wander, gravity,
// drift and entropy are the already-smoothed control values for this sample.
func (e *Engine) updateDrifter(d int, anchor, wander, gravity, drift, entropy, dt float64) {
	dr := &e.drifters[d]

	// Gravity toward (or away from, when negative) the anchor.
	gravityAccel := -gravity * (dr.Position - anchor) * gravityGain

	// Repulsion from close neighbors, inversely proportional to distance.
	// Boredom bleeds it off so a parked drifter can eventually pass through.
	repulsion := 0.0
	for other := range e.drifters {
		if other == d {
			continue
		}
		diff := dr.Position - e.drifters[other].Position
		absDiff := math.Abs(diff)
		if absDiff < repulsionThreshold && absDiff > 0.001 {
			strength := 1e-5 / absDiff
			if diff > 0 {
				repulsion += strength
			} else {
				repulsion -= strength
			}
		}
	}
	repulsion *= 1 - dr.Boredom*1.05

	randomWalk := e.rand.Bipolar() * entropy * 0.01

	dr.Velocity += gravityAccel * dt
	dr.Velocity += repulsion
	dr.Velocity += randomWalk
	dr.Velocity *= velocityDamping

	// Time-based drift bias, independent of sample rate.
	baseDrift := drift * dr.Variation * dr.DriftDirection * dt * driftSpeedScale

	dr.Position += dr.Velocity*dt + baseDrift

	// Soft bounce off the wander zone: reflect the overshoot at half
	// magnitude and send the drift bias back inward.
	minPos := anchor - wander
	maxPos := anchor + wander
	if dr.Position < minPos {
		dr.Position = minPos + (minPos-dr.Position)*0.5
		dr.Velocity = math.Abs(dr.Velocity) * 0.5
		dr.DriftDirection = 1
	}
	if dr.Position > maxPos {
		dr.Position = maxPos - (dr.Position-maxPos)*0.5
		dr.Velocity = -math.Abs(dr.Velocity) * 0.5
		dr.DriftDirection = -1
	}

	dr.Position = clamp(dr.Position, positionMin, positionMax)

	// Boredom bookkeeping.
	if math.Abs(dr.Position-dr.LastSignificantPos) > boredomMovementThreshold {
		dr.Boredom = 0
		dr.LastSignificantPos = dr.Position
	} else {
		dr.Boredom = math.Min(1, dr.Boredom+boredomBuildRate*dt)
	}
}
