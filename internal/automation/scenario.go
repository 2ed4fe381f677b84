// Package automation scripts control changes over an offline render: a YAML
// scenario lists timed steps, each a full control snapshot, applied stepwise
// or ramped between steps.
package automation

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/driftwood-audio/driftwood/internal/config"
	"github.com/driftwood-audio/driftwood/internal/engine"
	"github.com/driftwood-audio/driftwood/internal/render"
)

// Step sets the controls from a point in time onward. With Ramp set, the
// continuous controls glide linearly from the previous step's values; the
// shape always switches at the step boundary.
type Step struct {
	At       float64               `yaml:"at"` // seconds
	Ramp     bool                  `yaml:"ramp"`
	Controls config.ControlsConfig `yaml:"controls"`
}

// Scenario is a named control script.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Steps       []Step `yaml:"steps"`
}

// LoadScenario reads a scenario file and validates step ordering.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if len(sc.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", sc.Name)
	}
	for i := 1; i < len(sc.Steps); i++ {
		if sc.Steps[i].At < sc.Steps[i-1].At {
			return nil, fmt.Errorf("scenario %q: step %d at %.2fs precedes step %d at %.2fs",
				sc.Name, i+1, sc.Steps[i].At, i, sc.Steps[i-1].At)
		}
	}
	return &sc, nil
}

// ControlsAt evaluates the script at time t. Before the first step the base
// controls apply; past the last step its controls hold.
func (s *Scenario) ControlsAt(t float64, base engine.Controls) engine.Controls {
	if len(s.Steps) == 0 || t < s.Steps[0].At {
		return base
	}

	idx := 0
	for i := range s.Steps {
		if s.Steps[i].At <= t {
			idx = i
		}
	}
	cur := stepControls(&s.Steps[idx])

	next := idx + 1
	if next >= len(s.Steps) || !s.Steps[next].Ramp {
		return cur
	}

	span := s.Steps[next].At - s.Steps[idx].At
	if span <= 0 {
		return cur
	}
	frac := (t - s.Steps[idx].At) / span
	target := stepControls(&s.Steps[next])
	return lerpControls(cur, target, frac)
}

// BlockFunc adapts the scenario for offline rendering; controls are
// evaluated once per block at the block's start time.
func (s *Scenario) BlockFunc(sampleRate float64) render.BlockFunc {
	return func(b *engine.Block, offset int, ctl *engine.Controls) {
		*ctl = s.ControlsAt(float64(offset)/sampleRate, *ctl)
	}
}

func stepControls(st *Step) engine.Controls {
	cfg := config.Config{Controls: st.Controls}
	return cfg.EngineControls()
}

func lerpControls(a, b engine.Controls, frac float64) engine.Controls {
	if frac <= 0 {
		return a
	}
	if frac >= 1 {
		return b
	}
	mix := func(x, y float64) float64 { return x + (y-x)*frac }
	out := a
	out.Anchor = mix(a.Anchor, b.Anchor)
	out.Wander = mix(a.Wander, b.Wander)
	out.Gravity = mix(a.Gravity, b.Gravity)
	out.Drift = mix(a.Drift, b.Drift)
	out.Density = mix(a.Density, b.Density)
	out.Deviation = mix(a.Deviation, b.Deviation)
	out.Pitch = mix(a.Pitch, b.Pitch)
	out.Scatter = mix(a.Scatter, b.Scatter)
	out.Spectrum = mix(a.Spectrum, b.Spectrum)
	out.Tilt = mix(a.Tilt, b.Tilt)
	out.Entropy = mix(a.Entropy, b.Entropy)
	out.Fog = mix(a.Fog, b.Fog)
	return out
}
