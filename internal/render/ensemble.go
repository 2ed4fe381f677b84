package render

import (
	"context"
	"sync"

	"github.com/driftwood-audio/driftwood/internal/engine"
)

// Ensemble renders the same source and controls across a run of seeds, one
// goroutine per seed. Every run builds its own engine, so members never
// share mutable state.
type Ensemble struct {
	SampleRate float64
	Source     []float64
	SourceRate float64
	Controls   engine.Controls
	Duration   float64
	BlockSize  int
	FixedPan   bool
}

// Run renders numRuns variations seeded seedStart, seedStart+1, and so on.
// Results are ordered by seed. Cancelling the context abandons runs that
// have not started; runs in flight complete.
func (en *Ensemble) Run(ctx context.Context, seedStart uint32, numRuns int) ([]*Result, error) {
	results := make([]*Result, numRuns)
	errs := make([]error, numRuns)

	var wg sync.WaitGroup
	for i := 0; i < numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			if err := ctx.Err(); err != nil {
				errs[idx] = err
				return
			}

			opts := []engine.Option{engine.WithSeed(seedStart + uint32(idx))}
			if en.FixedPan {
				opts = append(opts, engine.WithFixedPan())
			}
			e := engine.New(en.SampleRate, opts...)
			e.SetSample(en.Source, en.SourceRate)

			results[idx] = Run(e, en.Controls, en.Duration, en.BlockSize)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}
