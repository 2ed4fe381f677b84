package main

import (
	"fmt"
	"os"
	"os/signal"
	"sort"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/driftwood-audio/driftwood/internal/analysis"
	"github.com/driftwood-audio/driftwood/internal/automation"
	"github.com/driftwood-audio/driftwood/internal/config"
	"github.com/driftwood-audio/driftwood/internal/engine"
	"github.com/driftwood-audio/driftwood/internal/export"
	"github.com/driftwood-audio/driftwood/internal/metrics"
	"github.com/driftwood-audio/driftwood/internal/playback"
	"github.com/driftwood-audio/driftwood/internal/render"
	"github.com/driftwood-audio/driftwood/internal/sample"
	"github.com/driftwood-audio/driftwood/internal/tui"
)

var (
	configFile   string
	presetName   string
	outFile      string
	duration     float64
	seed         uint32
	useTone      bool
	fixedPan     bool
	scenarioFile string
	trailFile    string
	numRuns      int

	anchor    float64
	wander    float64
	gravity   float64
	drift     float64
	density   float64
	deviation float64
	pitch     float64
	scatter   float64
	spectrum  float64
	tilt      float64
	shape     string
	entropy   float64
	fog       float64
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "driftwood",
		Short: "granular drift synthesizer - four drifters roam a frozen sample",
	}

	renderCmd := &cobra.Command{
		Use:   "render [samplefile]",
		Short: "render a soundscape to a WAV file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runRender,
	}
	addControlFlags(renderCmd)
	renderCmd.Flags().StringVarP(&outFile, "out", "o", "driftwood.wav", "output file")
	renderCmd.Flags().Float64Var(&duration, "duration", 30, "render length in seconds")
	renderCmd.Flags().StringVar(&scenarioFile, "scenario", "", "control automation script (yaml)")
	renderCmd.Flags().StringVar(&trailFile, "trail", "", "write drifter trajectories as SVG")

	batchCmd := &cobra.Command{
		Use:   "batch [samplefile]",
		Short: "render a run of seed variations in parallel",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runBatch,
	}
	addControlFlags(batchCmd)
	batchCmd.Flags().StringVarP(&outFile, "out", "o", "driftwood", "output file prefix")
	batchCmd.Flags().Float64Var(&duration, "duration", 30, "render length in seconds")
	batchCmd.Flags().IntVar(&numRuns, "runs", 4, "number of seed variations")

	playCmd := &cobra.Command{
		Use:   "play [samplefile]",
		Short: "play live on the default audio device",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runPlay,
	}
	addControlFlags(playCmd)

	liveCmd := &cobra.Command{
		Use:   "live [samplefile]",
		Short: "play live with the terminal front panel",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addControlFlags(liveCmd)

	analyzeCmd := &cobra.Command{
		Use:   "analyze [wavfile]",
		Short: "report band energy of a rendered file",
		Args:  cobra.ExactArgs(1),
		RunE:  runAnalyze,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list named presets",
		RunE:  listPresets,
	}

	rootCmd.AddCommand(renderCmd, batchCmd, playCmd, liveCmd, analyzeCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func addControlFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&presetName, "preset", "", "use a named preset")
	f.Uint32Var(&seed, "seed", config.DefaultSeed, "random seed")
	f.BoolVar(&useTone, "tone", false, "use the built-in test tone instead of a file")
	f.BoolVar(&fixedPan, "fixed-pan", false, "static per-drifter panning")

	f.Float64Var(&anchor, "anchor", 50, "home position, percent")
	f.Float64Var(&wander, "wander", 30, "roam half-width, percent")
	f.Float64Var(&gravity, "gravity", 0, "pull toward anchor, percent (-100..100)")
	f.Float64Var(&drift, "drift", 30, "roam speed, percent")
	f.Float64Var(&density, "density", 50, "grain density, percent")
	f.Float64Var(&deviation, "deviation", 100, "timing freedom, percent (0 = clock-locked)")
	f.Float64Var(&pitch, "pitch", 0, "pitch offset, semitones")
	f.Float64Var(&scatter, "scatter", 0, "per-drifter detune spread, semitones")
	f.Float64Var(&spectrum, "spectrum", 0, "band separation, percent")
	f.Float64Var(&tilt, "tilt", 0, "spectral tilt, percent (-100..100)")
	f.StringVar(&shape, "shape", "cloud", "grain shape: mist, cloud, rain, hail, ice")
	f.Float64Var(&entropy, "entropy", 25, "randomness, percent")
	f.Float64Var(&fog, "fog", 0, "reverb send, percent")
}

// buildConfig resolves precedence: preset, then config file, then flags.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if presetName != "" {
		p := config.GetPreset(presetName)
		if p == nil {
			return nil, fmt.Errorf("unknown preset %q", presetName)
		}
		cfg = p
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	set := func(name string, dst *float64, v float64) {
		if cmd.Flags().Changed(name) {
			*dst = v
		}
	}
	set("anchor", &cfg.Controls.Anchor, anchor)
	set("wander", &cfg.Controls.Wander, wander)
	set("gravity", &cfg.Controls.Gravity, gravity)
	set("drift", &cfg.Controls.Drift, drift)
	set("density", &cfg.Controls.Density, density)
	set("deviation", &cfg.Controls.Deviation, deviation)
	set("pitch", &cfg.Controls.Pitch, pitch)
	set("scatter", &cfg.Controls.Scatter, scatter)
	set("spectrum", &cfg.Controls.Spectrum, spectrum)
	set("tilt", &cfg.Controls.Tilt, tilt)
	set("entropy", &cfg.Controls.Entropy, entropy)
	set("fog", &cfg.Controls.Fog, fog)
	if cmd.Flags().Changed("shape") {
		cfg.Controls.Shape = shape
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	if cmd.Flags().Changed("fixed-pan") {
		cfg.FixedPan = fixedPan
	}
	if cmd.Flags().Changed("duration") {
		cfg.Duration = duration
	}
	return cfg, nil
}

// loadSource decodes the sample file argument, or generates the test tone.
func loadSource(args []string, rate float64) (*sample.Buffer, string, error) {
	if useTone || len(args) == 0 {
		return sample.TestTone(rate, 4), "test tone", nil
	}
	buf, err := sample.Load(args[0])
	if err != nil {
		return nil, "", err
	}
	return buf, args[0], nil
}

func newEngine(cfg *config.Config) *engine.Engine {
	opts := []engine.Option{engine.WithSeed(cfg.Seed)}
	if cfg.FixedPan {
		opts = append(opts, engine.WithFixedPan())
	}
	return engine.New(cfg.SampleRate, opts...)
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	src, name, err := loadSource(args, cfg.SampleRate)
	if err != nil {
		return err
	}

	eng := newEngine(cfg)
	eng.SetSample(src.Data, src.Rate)

	fmt.Printf("rendering %.1fs from %s (%.1fs source at %.0f Hz)\n",
		cfg.Duration, name, src.Duration(), src.Rate)

	var scenario *automation.Scenario
	if scenarioFile != "" {
		scenario, err = automation.LoadScenario(scenarioFile)
		if err != nil {
			return err
		}
		fmt.Printf("with scenario %q (%d steps)\n", scenario.Name, len(scenario.Steps))
	}

	var trails [engine.NumDrifters][]export.Point
	fn := func(b *engine.Block, offset int, ctl *engine.Controls) {
		t := float64(offset) / cfg.SampleRate
		if scenario != nil {
			*ctl = scenario.ControlsAt(t, *ctl)
		}
		if trailFile != "" {
			ds := eng.Drifters()
			for i := range ds {
				trails[i] = append(trails[i], export.Point{T: t, V: ds[i].Position})
			}
		}
	}

	frames := int(cfg.Duration * cfg.SampleRate)
	res := render.RunBlocks(eng, cfg.EngineControls(), frames, cfg.BlockSize, fn)
	if err := render.WriteWAV(outFile, res); err != nil {
		return err
	}

	if trailFile != "" {
		paths := make([]export.Path, engine.NumDrifters)
		for i := range paths {
			paths[i] = export.Path{
				Label:  fmt.Sprintf("drifter %d", i+1),
				Color:  export.DrifterColors[i],
				Points: trails[i],
			}
		}
		svg := export.TrajectorySVG(paths, 1200, 400)
		if err := os.WriteFile(trailFile, []byte(svg), 0o644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", trailFile)
	}

	levels := metrics.Measure(res.Left, metrics.NewRMS(), metrics.NewPeak())
	fmt.Printf("wrote %s (rms %.3f, peak %.3f)\n", outFile, levels["rms"], levels["peak"])
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	src, name, err := loadSource(args, cfg.SampleRate)
	if err != nil {
		return err
	}
	if numRuns < 1 {
		return fmt.Errorf("need at least one run")
	}

	fmt.Printf("rendering %d variations of %.1fs from %s\n", numRuns, cfg.Duration, name)

	en := &render.Ensemble{
		SampleRate: cfg.SampleRate,
		Source:     src.Data,
		SourceRate: src.Rate,
		Controls:   cfg.EngineControls(),
		Duration:   cfg.Duration,
		BlockSize:  cfg.BlockSize,
		FixedPan:   cfg.FixedPan,
	}
	results, err := en.Run(cmd.Context(), cfg.Seed, numRuns)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "file\tseed\trms\tpeak")
	for i, res := range results {
		path := fmt.Sprintf("%s-%02d.wav", outFile, i+1)
		if err := render.WriteWAV(path, res); err != nil {
			return err
		}
		levels := metrics.Measure(res.Left, metrics.NewRMS(), metrics.NewPeak())
		fmt.Fprintf(w, "%s\t%d\t%.3f\t%.3f\n", path, cfg.Seed+uint32(i), levels["rms"], levels["peak"])
	}
	return w.Flush()
}

func runPlay(cmd *cobra.Command, args []string) error {
	player, _, _, err := startPlayer(cmd, args)
	if err != nil {
		return err
	}
	defer player.Stop()

	fmt.Println("playing, ctrl+c to stop")
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	<-sig
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	player, eng, src, err := startPlayer(cmd, args)
	if err != nil {
		return err
	}
	defer player.Stop()

	name := "test tone"
	if !useTone && len(args) > 0 {
		name = args[0]
	}
	m := tui.NewModel(player, eng, src.Overview(128), name)
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func startPlayer(cmd *cobra.Command, args []string) (*playback.Player, *engine.Engine, *sample.Buffer, error) {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	src, _, err := loadSource(args, cfg.SampleRate)
	if err != nil {
		return nil, nil, nil, err
	}

	eng := newEngine(cfg)
	eng.SetSample(src.Data, src.Rate)

	player := playback.NewPlayer(eng, cfg.EngineControls())
	if err := player.Start(); err != nil {
		return nil, nil, nil, err
	}
	return player, eng, src, nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	buf, err := sample.Load(args[0])
	if err != nil {
		return err
	}

	centers := []float64{250, 750, 1550, 4000}
	bands := analysis.BandEnergies(buf.Data, buf.Rate, centers)
	centroid := analysis.SpectralCentroid(buf.Data, buf.Rate)

	fmt.Printf("%s: %.1fs at %.0f Hz\n\n", args[0], buf.Duration(), buf.Rate)
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "band\tcenter\tenergy")
	for i, b := range bands {
		fmt.Fprintf(w, "%d\t%.0f Hz\t%.2f\n", i+1, b.Center, b.Energy)
	}
	w.Flush()
	fmt.Printf("\nspectral centroid: %.0f Hz\n", centroid)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	names := config.ListPresets()
	sort.Strings(names)
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "preset\tshape\tdensity\tentropy\tnotes")
	for _, name := range names {
		p := config.Presets[name]
		notes := ""
		if p.Controls.Fog > 0 {
			notes = "fog"
		}
		if p.FixedPan {
			if notes != "" {
				notes += ", "
			}
			notes += "fixed pan"
		}
		fmt.Fprintf(w, "%s\t%s\t%.0f\t%.0f\t%s\n",
			name, p.Controls.Shape, p.Controls.Density, p.Controls.Entropy, notes)
	}
	return w.Flush()
}
