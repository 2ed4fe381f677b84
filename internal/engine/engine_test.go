package engine

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func newBlock(n int) Block {
	return Block{
		OutL: make([]float64, n), OutR: make([]float64, n),
		PosOut: make([]float64, n), PulseOut: make([]float64, n),
		ReplaceL: true, ReplaceR: true,
	}
}

func TestEngine_SilentWithoutSample(t *testing.T) {
	e := New(48000, WithSeed(1))

	b := newBlock(256)
	for i := range b.OutL {
		b.OutL[i] = 7
		b.OutR[i] = 7
	}
	for i := 0; i < 100; i++ {
		e.Process(b, DefaultControls())
	}
	for i := range b.OutL {
		if b.OutL[i] != 0 || b.OutR[i] != 0 || b.PosOut[i] != 0 || b.PulseOut[i] != 0 {
			t.Fatalf("frame %d: outputs not silent without a sample", i)
		}
	}
}

func TestEngine_SilentPathPreservesAccumulation(t *testing.T) {
	e := New(48000)

	b := newBlock(16)
	b.ReplaceL = false
	b.ReplaceR = false
	for i := range b.OutL {
		b.OutL[i] = 0.25
		b.OutR[i] = -0.25
	}
	e.Process(b, DefaultControls())
	for i := range b.OutL {
		if b.OutL[i] != 0.25 || b.OutR[i] != -0.25 {
			t.Fatalf("frame %d: accumulate mode clobbered the bus on the silent path", i)
		}
	}
}

func TestEngine_RejectsShortSample(t *testing.T) {
	e := New(48000)
	e.SetSample(make([]float64, MinSampleFrames-1), 48000)
	if e.SampleLoaded() {
		t.Error("sample below the minimum length was accepted")
	}
	e.SetSample(make([]float64, MinSampleFrames), 0)
	if e.SampleLoaded() {
		t.Error("sample with a non-positive rate was accepted")
	}
	e.SetSample(make([]float64, MinSampleFrames), 48000)
	if !e.SampleLoaded() {
		t.Error("minimal valid sample was rejected")
	}
}

func TestEngine_Deterministic(t *testing.T) {
	src := testSample(48000)

	run := func() ([]float64, []float64) {
		e := New(48000, WithSeed(42))
		e.SetSample(src, 48000)
		ctl := DefaultControls()
		ctl.Spectrum = 40
		ctl.Scatter = 5

		var outL, outR []float64
		b := newBlock(256)
		for i := 0; i < 200; i++ {
			e.Process(b, ctl)
			outL = append(outL, b.OutL...)
			outR = append(outR, b.OutR...)
		}
		return outL, outR
	}

	l1, r1 := run()
	l2, r2 := run()
	if diff := cmp.Diff(l1, l2); diff != "" {
		t.Errorf("left channel not reproducible (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(r1, r2); diff != "" {
		t.Errorf("right channel not reproducible (-first +second):\n%s", diff)
	}
}

func TestEngine_SeedsDiverge(t *testing.T) {
	src := testSample(48000)
	outs := make([][]float64, 2)
	for i, seed := range []uint32{1, 2} {
		e := New(48000, WithSeed(seed))
		e.SetSample(src, 48000)
		// A full second guarantees every drifter has fired at least once.
		b := newBlock(48000)
		e.Process(b, DefaultControls())
		outs[i] = append([]float64(nil), b.OutL...)
	}
	if cmp.Diff(outs[0], outs[1]) == "" {
		t.Error("different seeds produced identical output")
	}
}

func TestEngine_ExtremeControlsStayBounded(t *testing.T) {
	e := New(48000, WithSeed(7))
	e.SetSample(testSample(48000), 44100)

	ctl := Controls{
		Anchor:    100,
		Wander:    0,
		Gravity:   -100,
		Drift:     100,
		Density:   100,
		Deviation: 100,
		Pitch:     24,
		Scatter:   12,
		Spectrum:  100,
		Tilt:      100,
		Shape:     ShapeIce,
		Entropy:   100,
		Fog:       100,
	}

	b := newBlock(256)
	for i := 0; i < 400; i++ {
		e.Process(b, ctl)
		for f := range b.OutL {
			for _, v := range []float64{b.OutL[f], b.OutR[f], b.PosOut[f], b.PulseOut[f]} {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					t.Fatalf("block %d frame %d: non-finite output %v", i, f, v)
				}
				if v < -1 || v > 1 {
					t.Fatalf("block %d frame %d: output %v outside unit range", i, f, v)
				}
			}
		}
	}
}

func TestEngine_LoudnessCompensation(t *testing.T) {
	// Pin the pool population by hand and check that the smoothed
	// normalization settles at 1/sqrt(n).
	cases := []struct {
		active int
		want   float64
	}{
		{1, 1},
		{2, 1 / math.Sqrt2},
		{4, 0.5},
		{8, 1 / math.Sqrt(8)},
	}
	for _, tc := range cases {
		e := New(48000, WithSeed(3))
		e.SetSample(testSample(48000), 48000)
		for i := range e.drifters {
			e.drifters[i].NextGrainTime = 1e9 // no spontaneous triggering
		}
		for i := 0; i < tc.active; i++ {
			e.grains[i].active = true
			e.grains[i].phaseDelta = 1e-9 // effectively endless
			e.grains[i].positionDelta = 1
			e.grains[i].amplitude = 1
		}

		b := newBlock(256)
		for i := 0; i < 100; i++ {
			e.Process(b, DefaultControls())
		}
		if got := e.smoothNorm; math.Abs(got-tc.want) > 5e-3 {
			t.Errorf("%d active grains: norm settled at %f, want %f", tc.active, got, tc.want)
		}
	}
}

func TestEngine_StormGate(t *testing.T) {
	e := New(48000, WithSeed(5))
	e.SetSample(testSample(48000), 48000)

	b := newBlock(1)
	b.StormGate = []float64{5}
	e.Process(b, DefaultControls())
	if e.StormLevel() != 1 {
		t.Fatalf("storm level %f after gate, want 1", e.StormLevel())
	}

	quiet := newBlock(48000)
	e.Process(quiet, DefaultControls())
	level := e.StormLevel()
	if level >= 1 {
		t.Error("storm level did not decay")
	}
	// Roughly exp(-48000*(1-stormDecay)) after one second.
	want := math.Pow(stormDecay, 48000)
	if math.Abs(level-want) > 0.05 {
		t.Errorf("storm level %f after 1 s, want about %f", level, want)
	}
}

func TestEngine_PulseFollowsTriggers(t *testing.T) {
	e := New(48000, WithSeed(9))
	e.SetSample(testSample(48000), 48000)

	ctl := DefaultControls()
	ctl.Density = 80

	b := newBlock(48000)
	e.Process(b, ctl)

	pulses := 0
	for i, v := range b.PulseOut {
		if v != 0 && v != 1 {
			t.Fatalf("frame %d: pulse value %v, want 0 or full scale", i, v)
		}
		if v != 0 {
			pulses++
		}
	}
	if pulses == 0 {
		t.Error("no trigger pulses in a second of dense playback")
	}
}

func TestEngine_PositionOutputTracksDrifters(t *testing.T) {
	e := New(48000, WithSeed(21))
	e.SetSample(testSample(48000), 48000)

	b := newBlock(4800)
	e.Process(b, DefaultControls())

	ds := e.Drifters()
	avg := 0.0
	for i := range ds {
		avg += ds[i].Position
	}
	avg /= NumDrifters

	last := b.PosOut[len(b.PosOut)-1]
	if math.Abs(last-avg) > 1e-9 {
		t.Errorf("position output %f, want drifter average %f", last, avg)
	}
	for i, v := range b.PosOut {
		if v < 0 || v > 1 {
			t.Fatalf("frame %d: position output %f outside 0..1", i, v)
		}
	}
}

func TestEngine_OutputRangeScales(t *testing.T) {
	e := New(48000, WithSeed(23), WithOutputRange(5))
	e.SetSample(testSample(48000), 48000)

	ctl := DefaultControls()
	ctl.Density = 80

	b := newBlock(48000)
	e.Process(b, ctl)

	peak := 0.0
	for i := range b.OutL {
		peak = math.Max(peak, math.Abs(b.OutL[i]))
		if math.Abs(b.OutL[i]) > 5 || math.Abs(b.OutR[i]) > 5 {
			t.Fatalf("frame %d: output beyond the configured range", i)
		}
	}
	if peak <= 1 {
		t.Errorf("peak %f: scaled output never left the unit range", peak)
	}
	for _, v := range b.PulseOut {
		if v != 0 && v != 5 {
			t.Fatalf("pulse value %v, want 0 or 5", v)
		}
	}
}
