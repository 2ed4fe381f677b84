// Package sample acquires and prepares source material for the engine: it
// decodes WAV, AIFF, MP3 and Ogg Vorbis files into a mono float buffer with
// a known native rate. Stereo sources are summed to mono; the engine adds
// its own stereo spread by panning.
package sample

import "math"

// MaxFrames caps a loaded sample at 32 seconds of 48 kHz material.
const MaxFrames = 48000 * 32

// Buffer is a decoded mono sample.
type Buffer struct {
	Data []float64
	Rate float64 // native sample rate in Hz
}

// Duration returns the buffer length in seconds.
func (b *Buffer) Duration() float64 {
	if b.Rate <= 0 {
		return 0
	}
	return float64(len(b.Data)) / b.Rate
}

// Overview reduces the buffer to peak amplitude per column, for display.
func (b *Buffer) Overview(width int) []float64 {
	if width <= 0 || len(b.Data) == 0 {
		return nil
	}
	out := make([]float64, width)
	perCol := float64(len(b.Data)) / float64(width)
	for col := 0; col < width; col++ {
		start := int(float64(col) * perCol)
		end := int(float64(col+1) * perCol)
		if end > len(b.Data) {
			end = len(b.Data)
		}
		peak := 0.0
		for i := start; i < end; i++ {
			if a := math.Abs(b.Data[i]); a > peak {
				peak = a
			}
		}
		out[col] = peak
	}
	return out
}

// mixdown sums interleaved multichannel samples to mono.
func mixdown(interleaved []float64, channels int) []float64 {
	if channels <= 1 {
		return interleaved
	}
	frames := len(interleaved) / channels
	mono := make([]float64, frames)
	for i := 0; i < frames; i++ {
		sum := 0.0
		for c := 0; c < channels; c++ {
			sum += interleaved[i*channels+c]
		}
		mono[i] = sum / float64(channels)
	}
	return mono
}

// TestTone generates a harmonic pad usable when no sample file is at hand:
// a low fundamental with slowly beating overtones, normalized to 0.5 peak.
func TestTone(rate float64, seconds float64) *Buffer {
	frames := int(rate * seconds)
	if frames > MaxFrames {
		frames = MaxFrames
	}
	data := make([]float64, frames)
	const f0 = 110.0
	partials := []struct{ ratio, amp, beat float64 }{
		{1, 0.5, 0},
		{2, 0.25, 0.3},
		{3, 0.15, 0.7},
		{5, 0.08, 1.1},
	}
	for i := range data {
		t := float64(i) / rate
		v := 0.0
		for _, p := range partials {
			v += p.amp * math.Sin(2*math.Pi*(f0*p.ratio+p.beat)*t)
		}
		// Slow amplitude swell keeps the pad from sounding static.
		v *= 0.75 + 0.25*math.Sin(2*math.Pi*0.1*t)
		data[i] = v * 0.5
	}
	return &Buffer{Data: data, Rate: rate}
}
