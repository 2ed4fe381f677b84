// Package render runs the engine offline and writes the result to disk.
package render

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/driftwood-audio/driftwood/internal/engine"
)

// Result holds a completed offline render.
type Result struct {
	Left, Right []float64
	SampleRate  float64
}

// Run renders duration seconds of output in blockSize chunks, using a fixed
// control snapshot. CV streams are unconnected; storm and clock behavior can
// be exercised through Block-level rendering with RunBlocks.
func Run(e *engine.Engine, ctl engine.Controls, duration float64, blockSize int) *Result {
	frames := int(duration * e.SampleRate())
	return RunBlocks(e, ctl, frames, blockSize, nil)
}

// BlockFunc lets a caller attach CV streams or vary controls per block.
// It receives the block about to be processed and the frame offset.
type BlockFunc func(b *engine.Block, offset int, ctl *engine.Controls)

// RunBlocks renders the given number of frames, invoking fn (when non-nil)
// before each block.
func RunBlocks(e *engine.Engine, ctl engine.Controls, frames, blockSize int, fn BlockFunc) *Result {
	if blockSize <= 0 {
		blockSize = 256
	}
	res := &Result{
		Left:       make([]float64, frames),
		Right:      make([]float64, frames),
		SampleRate: e.SampleRate(),
	}
	pos := make([]float64, blockSize)
	pulse := make([]float64, blockSize)

	for offset := 0; offset < frames; offset += blockSize {
		n := blockSize
		if offset+n > frames {
			n = frames - offset
		}
		b := engine.Block{
			OutL:     res.Left[offset : offset+n],
			OutR:     res.Right[offset : offset+n],
			PosOut:   pos[:n],
			PulseOut: pulse[:n],
			ReplaceL: true,
			ReplaceR: true,
		}
		blockCtl := ctl
		if fn != nil {
			fn(&b, offset, &blockCtl)
		}
		e.Process(b, blockCtl)
	}
	return res
}

// WriteWAV writes the render as a 16-bit stereo PCM WAV file.
func WriteWAV(path string, res *Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := wav.NewEncoder(f, int(res.SampleRate), 16, 2, 1)
	frames := len(res.Left)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 2, SampleRate: int(res.SampleRate)},
		SourceBitDepth: 16,
		Data:           make([]int, frames*2),
	}
	for i := 0; i < frames; i++ {
		buf.Data[2*i] = pcm16(res.Left[i])
		buf.Data[2*i+1] = pcm16(res.Right[i])
	}
	if err := enc.Write(buf); err != nil {
		enc.Close()
		return fmt.Errorf("write wav: %w", err)
	}
	return enc.Close()
}

func pcm16(x float64) int {
	if x > 1 {
		x = 1
	}
	if x < -1 {
		x = -1
	}
	return int(x * 32767)
}
