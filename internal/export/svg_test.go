package export

import (
	"strings"
	"testing"
)

func TestTrajectorySVG(t *testing.T) {
	paths := []Path{
		{Label: "a", Color: "#00ff88", Points: []Point{{0, 0.2}, {1, 0.4}, {2, 0.3}}},
		{Label: "b", Color: "#ff4466", Points: []Point{{0, 0.8}, {1, 0.6}, {2, 0.7}}},
	}
	svg := TrajectorySVG(paths, 800, 300)

	if !strings.HasPrefix(svg, `<?xml version="1.0"`) {
		t.Error("missing XML declaration")
	}
	if !strings.Contains(svg, `width="800" height="300"`) {
		t.Error("missing dimensions")
	}
	if got := strings.Count(svg, "<path"); got != 2 {
		t.Errorf("%d path elements, want 2", got)
	}
	for _, p := range paths {
		if !strings.Contains(svg, p.Color) {
			t.Errorf("color %s missing", p.Color)
		}
	}
	if !strings.HasSuffix(svg, "</svg>") {
		t.Error("unterminated document")
	}
}

func TestTrajectorySVG_Degenerate(t *testing.T) {
	if TrajectorySVG(nil, 800, 300) != "" {
		t.Error("no paths should yield an empty document")
	}

	// A single-point path draws nothing but must not break the document.
	svg := TrajectorySVG([]Path{{Color: "#ffffff", Points: []Point{{0, 0.5}}}}, 100, 100)
	if strings.Count(svg, "<path") != 0 {
		t.Error("single-point path should draw nothing")
	}
	if !strings.HasSuffix(svg, "</svg>") {
		t.Error("unterminated document")
	}

	// Constant-value paths land mid-plot instead of dividing by zero.
	flat := TrajectorySVG([]Path{{Color: "#ffffff", Points: []Point{{0, 0.5}, {1, 0.5}}}}, 100, 100)
	if strings.Contains(flat, "NaN") || strings.Contains(flat, "Inf") {
		t.Error("flat trajectory produced non-finite coordinates")
	}
}

func TestWaveformSVG(t *testing.T) {
	data := make([]float64, 1000)
	for i := range data {
		data[i] = 0.5
	}
	svg := WaveformSVG(data, 100, 200, "#00ccff")
	if got := strings.Count(svg, "<line"); got != 100 {
		t.Errorf("%d bars, want 100", got)
	}
	if !strings.Contains(svg, "#00ccff") {
		t.Error("stroke color missing")
	}

	if WaveformSVG(nil, 100, 200, "#fff") != "" {
		t.Error("empty data should yield an empty document")
	}
	if WaveformSVG(data, 0, 200, "#fff") != "" {
		t.Error("zero width should yield an empty document")
	}
}
