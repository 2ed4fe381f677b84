package engine

import "math"

// bandFilter is a 2-pole state-variable filter. Each grain carries one per
// output channel so spectral separation never shares state across grains.
type bandFilter struct {
	lowpass  float64
	bandpass float64
	highpass float64
}

func (f *bandFilter) reset() {
	f.lowpass, f.bandpass, f.highpass = 0, 0, 0
}

// flushDenormal zeroes values too small to matter before they can decay into
// denormal territory, and catches NaN on the same path.
func flushDenormal(x float64) float64 {
	if math.Abs(x) < 1e-20 || math.IsNaN(x) {
		return 0
	}
	return x
}

// Process runs one sample through the filter and returns the bandpass
// output. Frequency and Q are clamped before use so the filter stays stable
// for any requested tuning.
func (f *bandFilter) Process(input, freq, q, sampleRate float64) float64 {
	fc := math.Min(freq, sampleRate*0.4)
	coeff := 2 * math.Sin(math.Pi*fc/sampleRate)
	if coeff > 0.7 {
		coeff = 0.7
	}
	if q > 0.95 {
		q = 0.95
	}

	f.lowpass += coeff * f.bandpass
	f.highpass = input - f.lowpass - q*f.bandpass
	f.bandpass += coeff * f.highpass

	f.lowpass = flushDenormal(f.lowpass)
	f.bandpass = flushDenormal(f.bandpass)
	f.highpass = flushDenormal(f.highpass)

	return f.bandpass
}
