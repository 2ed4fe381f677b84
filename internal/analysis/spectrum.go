// Package analysis provides spectral summaries of rendered audio, used by
// the analyze command and by tests of the spectral-separation stage.
package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// Band is an energy reading around a center frequency.
type Band struct {
	Center float64 // Hz
	Energy float64 // summed magnitude within the band
}

// PowerSpectrum returns magnitudes for the positive-frequency half of the
// signal's FFT. The input is zero-padded to a power of two.
func PowerSpectrum(data []float64) []float64 {
	n := 1
	for n < len(data) {
		n <<= 1
	}
	padded := make([]float64, n)
	copy(padded, data)

	spec := fft.FFTReal(padded)
	ps := make([]float64, n/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spec[i])
	}
	return ps
}

// BandEnergies sums spectral magnitude in a half-octave window around each
// center frequency.
func BandEnergies(data []float64, sampleRate float64, centers []float64) []Band {
	ps := PowerSpectrum(data)
	if len(ps) == 0 {
		return nil
	}
	binHz := sampleRate / float64(2*len(ps))

	bands := make([]Band, len(centers))
	for i, c := range centers {
		lo := c / math.Sqrt2
		hi := c * math.Sqrt2
		sum := 0.0
		for bin, mag := range ps {
			f := float64(bin) * binHz
			if f >= lo && f <= hi {
				sum += mag
			}
		}
		bands[i] = Band{Center: c, Energy: sum}
	}
	return bands
}

// SpectralCentroid returns the magnitude-weighted mean frequency, a single
// number summary of brightness used to sanity-check the tilt control.
func SpectralCentroid(data []float64, sampleRate float64) float64 {
	ps := PowerSpectrum(data)
	if len(ps) == 0 {
		return 0
	}
	binHz := sampleRate / float64(2*len(ps))
	num, den := 0.0, 0.0
	for bin, mag := range ps {
		num += float64(bin) * binHz * mag
		den += mag
	}
	if den == 0 {
		return 0
	}
	return num / den
}
