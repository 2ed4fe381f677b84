package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/driftwood-audio/driftwood/internal/engine"
)

const (
	DefaultSampleRate = 48000
	DefaultBlockSize  = 256
	DefaultDuration   = 30.0
	DefaultSeed       = 0x12345678
)

type Config struct {
	SampleRate float64 `yaml:"sample_rate"`
	BlockSize  int     `yaml:"block_size"`
	Duration   float64 `yaml:"duration"`
	Seed       uint32  `yaml:"seed"`
	FixedPan   bool    `yaml:"fixed_pan"`

	Controls ControlsConfig `yaml:"controls"`
}

type ControlsConfig struct {
	Anchor    float64 `yaml:"anchor"`
	Wander    float64 `yaml:"wander"`
	Gravity   float64 `yaml:"gravity"`
	Drift     float64 `yaml:"drift"`
	Density   float64 `yaml:"density"`
	Deviation float64 `yaml:"deviation"`
	Pitch     float64 `yaml:"pitch"`
	Scatter   float64 `yaml:"scatter"`
	Spectrum  float64 `yaml:"spectrum"`
	Tilt      float64 `yaml:"tilt"`
	Shape     string  `yaml:"shape"`
	Entropy   float64 `yaml:"entropy"`
	Fog       float64 `yaml:"fog"`
}

func DefaultConfig() *Config {
	return &Config{
		SampleRate: DefaultSampleRate,
		BlockSize:  DefaultBlockSize,
		Duration:   DefaultDuration,
		Seed:       DefaultSeed,
		Controls: ControlsConfig{
			Anchor:    50,
			Wander:    30,
			Drift:     30,
			Density:   50,
			Deviation: 100,
			Shape:     "cloud",
			Entropy:   25,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// EngineControls converts the YAML view into the engine's snapshot type.
func (c *Config) EngineControls() engine.Controls {
	ctl := engine.DefaultControls()
	ctl.Anchor = c.Controls.Anchor
	ctl.Wander = c.Controls.Wander
	ctl.Gravity = c.Controls.Gravity
	ctl.Drift = c.Controls.Drift
	ctl.Density = c.Controls.Density
	ctl.Deviation = c.Controls.Deviation
	ctl.Pitch = c.Controls.Pitch
	ctl.Scatter = c.Controls.Scatter
	ctl.Spectrum = c.Controls.Spectrum
	ctl.Tilt = c.Controls.Tilt
	ctl.Entropy = c.Controls.Entropy
	ctl.Fog = c.Controls.Fog
	ctl.Shape = ParseShape(c.Controls.Shape)
	return ctl
}

// ParseShape maps a shape name to its selector; unknown names yield cloud.
func ParseShape(name string) engine.Shape {
	for s := engine.Shape(0); int(s) < engine.NumShapes; s++ {
		if s.String() == name {
			return s
		}
	}
	return engine.ShapeCloud
}
