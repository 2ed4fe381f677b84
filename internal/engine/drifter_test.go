package engine

import (
	"math"
	"testing"
)

func TestDrifter_PositionContainment(t *testing.T) {
	// Hammer the simulation with full entropy and strong repelling gravity;
	// positions must never leave the hard range.
	e := New(48000, WithSeed(3))
	dt := 1.0 / 48000

	for i := 0; i < 200000; i++ {
		for d := 0; d < NumDrifters; d++ {
			e.updateDrifter(d, 0.5, 0.3, -1, 1, 1, dt)
		}
		for d := 0; d < NumDrifters; d++ {
			p := e.drifters[d].Position
			if p < positionMin || p > positionMax {
				t.Fatalf("step %d: drifter %d at %f, outside hard range", i, d, p)
			}
		}
	}
}

func TestDrifter_BounceRecoversIntoZone(t *testing.T) {
	e := New(48000, WithSeed(5))
	dt := 1.0 / 48000
	anchor, wander := 0.5, 0.1

	// Start well outside the wander zone.
	e.drifters[0].Position = 0.9
	e.drifters[0].Velocity = 0

	for i := 0; i < 48000; i++ {
		e.updateDrifter(0, anchor, wander, 0, 0.3, 0, dt)
	}
	p := e.drifters[0].Position
	if p < anchor-wander-1e-9 || p > anchor+wander+1e-9 {
		t.Errorf("position %f did not converge into [%f, %f]", p, anchor-wander, anchor+wander)
	}
}

func TestDrifter_ZeroMotionHolds(t *testing.T) {
	// With every force at zero and the drifter already at the anchor, the
	// position must hold bit-exactly: no numerical creep.
	e := New(48000, WithSeed(1))
	dt := 1.0 / 48000

	positions := [NumDrifters]float64{0.2, 0.4, 0.6, 0.8}
	for d := range e.drifters {
		e.drifters[d].Position = positions[d]
		e.drifters[d].Velocity = 0
		e.drifters[d].LastSignificantPos = positions[d]
	}

	for i := 0; i < 48000; i++ {
		for d := 0; d < NumDrifters; d++ {
			// anchor equals each drifter's own position so gravity is zero
			// even if the control were nonzero; all terms vanish.
			e.updateDrifter(d, positions[d], 1, 0, 0, 0, dt)
		}
	}
	for d := range e.drifters {
		if e.drifters[d].Position != positions[d] {
			t.Errorf("drifter %d moved from %f to %f", d, positions[d], e.drifters[d].Position)
		}
	}
}

func TestDrifter_RepulsionSeparates(t *testing.T) {
	e := New(48000, WithSeed(2))
	dt := 1.0 / 48000

	// Two drifters almost touching, the other two parked far away.
	e.drifters[0].Position = 0.495
	e.drifters[1].Position = 0.505
	e.drifters[2].Position = 0.1
	e.drifters[3].Position = 0.9
	for d := range e.drifters {
		e.drifters[d].Velocity = 0
		e.drifters[d].Boredom = 0
		e.drifters[d].LastSignificantPos = e.drifters[d].Position
	}

	prev := math.Abs(e.drifters[1].Position - e.drifters[0].Position)
	for i := 0; i < 20000; i++ {
		e.updateDrifter(0, 0.5, 1, 0, 0, 0, dt)
		e.updateDrifter(1, 0.5, 1, 0, 0, 0, dt)
		sep := math.Abs(e.drifters[1].Position - e.drifters[0].Position)
		if sep < prev-1e-12 {
			t.Fatalf("step %d: separation shrank from %f to %f", i, prev, sep)
		}
		prev = sep
		if sep > repulsionThreshold {
			return
		}
	}
	t.Errorf("separation only reached %f, want > %f", prev, repulsionThreshold)
}

func TestDrifter_BoredomBuildsAndResets(t *testing.T) {
	e := New(48000, WithSeed(4))
	dt := 1.0 / 48000

	e.drifters[0].Position = 0.5
	e.drifters[0].LastSignificantPos = 0.5
	e.drifters[0].Velocity = 0

	// Parked: boredom accumulates.
	for i := 0; i < 48000; i++ {
		e.updateDrifter(0, 0.5, 1, 0, 0, 0, dt)
	}
	if b := e.drifters[0].Boredom; math.Abs(b-boredomBuildRate) > 1e-6 {
		t.Errorf("after 1s parked, boredom = %f, want ~%f", b, boredomBuildRate)
	}

	// Teleport past the movement threshold: boredom resets.
	e.drifters[0].Position = 0.6
	e.updateDrifter(0, 0.6, 1, 0, 0, 0, dt)
	if b := e.drifters[0].Boredom; b != 0 {
		t.Errorf("after significant movement, boredom = %f, want 0", b)
	}
}
