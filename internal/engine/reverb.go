package engine

// fogReverb is the "fog" send: eight parallel feedback delay lines at
// mutually prime lengths with a one-pole damping stage on the summed tails.
// It is the earlier iteration's space effect, kept as an optional mode;
// fog at zero bypasses it entirely.
type fogReverb struct {
	lines     [fogDelayLines]fogLine
	damping   float64
	dampState float64
}

type fogLine struct {
	buffer   []float64
	writePos int
	delay    int
	feedback float64
}

const fogDelayLines = 8

// fogDelaySamples are prime-ish lengths chosen for diffusion, specified at
// 48 kHz and rescaled to the engine rate at init.
var fogDelaySamples = [fogDelayLines]int{1557, 1617, 1491, 1422, 1277, 1356, 1188, 1116}

func newFogReverb(sampleRate float64) *fogReverb {
	r := &fogReverb{damping: 0.3}
	for i := range r.lines {
		d := int(float64(fogDelaySamples[i]) * sampleRate / 48000)
		if d < 1 {
			d = 1
		}
		r.lines[i] = fogLine{
			buffer:   make([]float64, d),
			delay:    d,
			feedback: 0.84,
		}
	}
	return r
}

func (l *fogLine) process(input float64) float64 {
	readPos := l.writePos - l.delay
	if readPos < 0 {
		readPos += len(l.buffer)
	}
	out := l.buffer[readPos]
	l.buffer[l.writePos] = flushDenormal(input + out*l.feedback)
	l.writePos++
	if l.writePos >= len(l.buffer) {
		l.writePos = 0
	}
	return out
}

// Process pushes one sample through all lines; decay tracks the fog amount
// so denser fog also rings longer.
func (r *fogReverb) Process(input, decay float64) float64 {
	sum := 0.0
	for i := range r.lines {
		r.lines[i].feedback = 0.7 + decay*0.25
		sum += r.lines[i].process(input)
	}
	r.dampState += r.damping * (sum - r.dampState)
	r.dampState = flushDenormal(r.dampState)
	return r.dampState / fogDelayLines
}
