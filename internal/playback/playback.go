// Package playback streams the engine to the default audio device.
package playback

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"

	"github.com/driftwood-audio/driftwood/internal/engine"
)

const BufferSize = 256

// Player owns a portaudio output stream fed by one engine. The engine is
// only ever touched from the audio callback; control updates land in a
// snapshot guarded by a mutex taken outside the per-sample work.
type Player struct {
	stream *portaudio.Stream
	eng    *engine.Engine

	mu  sync.Mutex
	ctl engine.Controls

	outL, outR []float64
	pos, pulse []float64

	active bool
}

func NewPlayer(eng *engine.Engine, ctl engine.Controls) *Player {
	return &Player{
		eng:   eng,
		ctl:   ctl,
		outL:  make([]float64, BufferSize),
		outR:  make([]float64, BufferSize),
		pos:   make([]float64, BufferSize),
		pulse: make([]float64, BufferSize),
	}
}

// SetControls replaces the control snapshot used for subsequent blocks.
func (p *Player) SetControls(ctl engine.Controls) {
	p.mu.Lock()
	p.ctl = ctl
	p.mu.Unlock()
}

// Controls returns the current control snapshot.
func (p *Player) Controls() engine.Controls {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ctl
}

func (p *Player) Start() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("portaudio init: %w", err)
	}
	stream, err := portaudio.OpenDefaultStream(0, 2, p.eng.SampleRate(), BufferSize, p.process)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("open stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("start stream: %w", err)
	}
	p.stream = stream
	p.active = true
	return nil
}

func (p *Player) Stop() {
	if p.stream != nil {
		p.stream.Stop()
		p.stream.Close()
		p.stream = nil
	}
	portaudio.Terminate()
	p.active = false
}

func (p *Player) Active() bool { return p.active }

func (p *Player) process(out [][]float32) {
	n := len(out[0])
	if n > len(p.outL) {
		p.outL = make([]float64, n)
		p.outR = make([]float64, n)
		p.pos = make([]float64, n)
		p.pulse = make([]float64, n)
	}

	p.mu.Lock()
	ctl := p.ctl
	p.mu.Unlock()

	p.eng.Process(engine.Block{
		OutL:     p.outL[:n],
		OutR:     p.outR[:n],
		PosOut:   p.pos[:n],
		PulseOut: p.pulse[:n],
		ReplaceL: true,
		ReplaceR: true,
	}, ctl)

	for i := 0; i < n; i++ {
		out[0][i] = float32(p.outL[i])
		out[1][i] = float32(p.outR[i])
	}
}
