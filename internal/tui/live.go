// Package tui is the terminal front panel: a live view of the drifters
// roaming the loaded sample, with key bindings for the main controls. It
// replaces the hardware display the engine was originally conceived around.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/driftwood-audio/driftwood/internal/engine"
	"github.com/driftwood-audio/driftwood/internal/playback"
)

var (
	cyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	red    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

const (
	barWidth    = 64
	historySize = 120
)

// Model is the bubbletea model for the live view.
type Model struct {
	player   *playback.Player
	eng      *engine.Engine
	overview []float64 // peak-per-column waveform reduction
	name     string

	history []float64 // average drifter position over time

	width  int
	height int
}

func NewModel(player *playback.Player, eng *engine.Engine, overview []float64, name string) *Model {
	return &Model{
		player:   player,
		eng:      eng,
		overview: resample(overview, barWidth),
		name:     name,
		history:  make([]float64, 0, historySize),
		width:    80,
		height:   24,
	}
}

func (m *Model) Init() tea.Cmd { return tick() }

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(50*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		avg := 0.0
		for _, d := range m.eng.Drifters() {
			avg += d.Position
		}
		avg /= engine.NumDrifters
		m.history = append(m.history, avg)
		if len(m.history) > historySize {
			m.history = m.history[1:]
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctl := m.player.Controls()
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "left":
		ctl.Anchor -= 2
	case "right":
		ctl.Anchor += 2
	case "up":
		ctl.Density += 2
	case "down":
		ctl.Density -= 2
	case "w":
		ctl.Wander -= 2
	case "W":
		ctl.Wander += 2
	case "g":
		ctl.Gravity -= 5
	case "G":
		ctl.Gravity += 5
	case "e":
		ctl.Entropy -= 5
	case "E":
		ctl.Entropy += 5
	case "f":
		ctl.Spectrum -= 5
	case "F":
		ctl.Spectrum += 5
	case "s":
		ctl.Shape = engine.Shape((int(ctl.Shape) + 1) % engine.NumShapes)
	default:
		return m, nil
	}
	m.player.SetControls(ctl)
	return m, nil
}

func (m *Model) View() string {
	ctl := m.player.Controls()
	var b strings.Builder

	b.WriteString(cyan.Render("DRIFTWOOD"))
	b.WriteString(dim.Render("  " + m.name))
	b.WriteString("\n\n")

	b.WriteString(m.renderSampleBar(ctl))
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("%s %s   %s %2d   %s %s\n",
		dim.Render("shape"), white.Render(ctl.Shape.String()),
		dim.Render("grains"), m.eng.ActiveGrains(),
		dim.Render("storm"), meter(m.eng.StormLevel(), 10, red)))

	b.WriteString(fmt.Sprintf("%s %s  %s %s  %s %s  %s %s\n",
		dim.Render("density"), meter(ctl.Density/100, 8, white),
		dim.Render("entropy"), meter(ctl.Entropy/100, 8, yellow),
		dim.Render("spectrum"), meter(ctl.Spectrum/100, 8, cyan),
		dim.Render("gravity"), fmt.Sprintf("%+3.0f", ctl.Gravity)))

	if len(m.history) > 2 {
		b.WriteString("\n")
		b.WriteString(asciigraph.Plot(m.history,
			asciigraph.Height(5),
			asciigraph.Width(barWidth),
			asciigraph.Caption("average position")))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dim.Render("←/→ anchor  ↑/↓ density  w/W wander  g/G gravity  e/E entropy  f/F spectrum  s shape  q quit"))
	b.WriteString("\n")
	return b.String()
}

// renderSampleBar draws the waveform overview with the wander zone, the
// anchor line and one marker per drifter.
func (m *Model) renderSampleBar(ctl engine.Controls) string {
	wave := make([]rune, barWidth)
	blocks := []rune(" ▁▂▃▄▅▆▇█")
	for i := range wave {
		level := 0.0
		if i < len(m.overview) {
			level = m.overview[i]
		}
		idx := int(level * float64(len(blocks)-1))
		if idx >= len(blocks) {
			idx = len(blocks) - 1
		}
		wave[i] = blocks[idx]
	}

	anchor := clamp01(ctl.Anchor / 100)
	wander := clamp01(ctl.Wander / 100)

	markers := make([]rune, barWidth)
	for i := range markers {
		markers[i] = ' '
	}
	lo := int(clamp01(anchor-wander) * float64(barWidth-1))
	hi := int(clamp01(anchor+wander) * float64(barWidth-1))
	for i := lo; i <= hi; i++ {
		markers[i] = '·'
	}
	markers[int(anchor*float64(barWidth-1))] = '│'
	for _, d := range m.eng.Drifters() {
		markers[int(clamp01(d.Position)*float64(barWidth-1))] = '▲'
	}

	return white.Render(string(wave)) + "\n" + yellow.Render(string(markers))
}

func meter(level float64, width int, style lipgloss.Style) string {
	level = clamp01(level)
	filled := int(level * float64(width))
	return style.Render(strings.Repeat("█", filled)) + dim.Render(strings.Repeat("░", width-filled))
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// resample reduces or stretches an overview to the display width.
func resample(data []float64, width int) []float64 {
	if len(data) == 0 {
		return nil
	}
	out := make([]float64, width)
	for i := range out {
		src := i * len(data) / width
		out[i] = data[src]
	}
	return out
}
