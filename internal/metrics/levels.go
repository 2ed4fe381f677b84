// Package metrics measures rendered audio: per-channel level meters that
// observe a sample stream and report a summary value.
package metrics

import "math"

// Metric accumulates observations over a stream of samples.
type Metric interface {
	Name() string
	Observe(sample float64)
	Value() float64
	Reset()
}

// RMS measures root-mean-square level.
type RMS struct {
	sumSquares float64
	samples    int
}

func NewRMS() *RMS { return &RMS{} }

func (r *RMS) Name() string { return "rms" }

func (r *RMS) Observe(sample float64) {
	r.sumSquares += sample * sample
	r.samples++
}

func (r *RMS) Value() float64 {
	if r.samples == 0 {
		return 0
	}
	return math.Sqrt(r.sumSquares / float64(r.samples))
}

func (r *RMS) Reset() {
	r.sumSquares = 0
	r.samples = 0
}

// Peak measures the maximum absolute level.
type Peak struct {
	peak float64
}

func NewPeak() *Peak { return &Peak{} }

func (p *Peak) Name() string { return "peak" }

func (p *Peak) Observe(sample float64) {
	if a := math.Abs(sample); a > p.peak {
		p.peak = a
	}
}

func (p *Peak) Value() float64 { return p.peak }

func (p *Peak) Reset() { p.peak = 0 }

// Finite counts the fraction of finite samples; anything below 1.0 means
// NaN or Inf leaked through.
type Finite struct {
	violations int
	samples    int
}

func NewFinite() *Finite { return &Finite{} }

func (f *Finite) Name() string { return "finite" }

func (f *Finite) Observe(sample float64) {
	f.samples++
	if math.IsNaN(sample) || math.IsInf(sample, 0) {
		f.violations++
	}
}

func (f *Finite) Value() float64 {
	if f.samples == 0 {
		return 1
	}
	return 1 - float64(f.violations)/float64(f.samples)
}

func (f *Finite) Reset() {
	f.violations = 0
	f.samples = 0
}

// Measure runs every metric over the buffer and returns name -> value.
func Measure(data []float64, ms ...Metric) map[string]float64 {
	for _, m := range ms {
		m.Reset()
		for _, s := range data {
			m.Observe(s)
		}
	}
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}
