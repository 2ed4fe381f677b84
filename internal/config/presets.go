package config

// Presets are characteristic soundscape settings, loadable by name.
var Presets = map[string]*Config{
	"mist": {
		SampleRate: DefaultSampleRate, BlockSize: DefaultBlockSize,
		Duration: 60, Seed: DefaultSeed,
		Controls: ControlsConfig{
			Anchor: 50, Wander: 20, Drift: 15, Density: 70,
			Deviation: 100, Shape: "mist", Entropy: 10, Spectrum: 40,
		},
	},
	"storm": {
		SampleRate: DefaultSampleRate, BlockSize: DefaultBlockSize,
		Duration: 45, Seed: DefaultSeed,
		Controls: ControlsConfig{
			Anchor: 50, Wander: 45, Gravity: -30, Drift: 60, Density: 85,
			Deviation: 100, Shape: "hail", Entropy: 80, Scatter: 5, Tilt: 30,
		},
	},
	"clockwork": {
		SampleRate: DefaultSampleRate, BlockSize: DefaultBlockSize,
		Duration: 30, Seed: DefaultSeed,
		Controls: ControlsConfig{
			Anchor: 50, Wander: 25, Drift: 20, Density: 50,
			Deviation: 0, Shape: "ice", Entropy: 5,
		},
	},
	"fogbank": {
		SampleRate: DefaultSampleRate, BlockSize: DefaultBlockSize,
		Duration: 60, Seed: DefaultSeed, FixedPan: true,
		Controls: ControlsConfig{
			Anchor: 40, Wander: 30, Drift: 25, Density: 60,
			Deviation: 100, Shape: "cloud", Entropy: 20, Fog: 45,
		},
	},
	"sparse": {
		SampleRate: DefaultSampleRate, BlockSize: DefaultBlockSize,
		Duration: 90, Seed: DefaultSeed,
		Controls: ControlsConfig{
			Anchor: 50, Wander: 40, Drift: 35, Density: 10,
			Deviation: 100, Shape: "rain", Entropy: 30, Scatter: 7,
		},
	},
}

// GetPreset returns the named preset or nil.
func GetPreset(name string) *Config {
	return Presets[name]
}

// ListPresets returns all preset names.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
