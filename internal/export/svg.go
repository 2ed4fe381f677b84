// Package export renders run artifacts to SVG: drifter trajectories over
// time and waveform overviews, for inspecting a texture without listening
// to it.
package export

import (
	"fmt"
	"strings"
)

// Point is one time/value sample of a trajectory.
type Point struct {
	T float64 // seconds
	V float64
}

// Path is a labeled trajectory with a stroke color.
type Path struct {
	Label  string
	Color  string
	Points []Point
}

// DrifterColors is the default palette, one hue per drifter ordered from
// the low band to the high band.
var DrifterColors = [4]string{"#00ff88", "#00ccff", "#ffaa00", "#ff4466"}

// TrajectorySVG plots the paths on a shared time axis. The value axis is
// scaled to the union of all paths with 10% padding.
func TrajectorySVG(paths []Path, width, height int) string {
	if len(paths) == 0 {
		return ""
	}

	minT, maxT := paths[0].Points[0].T, paths[0].Points[0].T
	minV, maxV := paths[0].Points[0].V, paths[0].Points[0].V
	for _, p := range paths {
		for _, pt := range p.Points {
			if pt.T < minT {
				minT = pt.T
			}
			if pt.T > maxT {
				maxT = pt.T
			}
			if pt.V < minV {
				minV = pt.V
			}
			if pt.V > maxV {
				maxV = pt.V
			}
		}
	}
	rangeT := maxT - minT
	rangeV := maxV - minV
	if rangeT == 0 {
		rangeT = 1
	}
	if rangeV == 0 {
		rangeV = 1
	}
	minV -= rangeV * 0.1
	maxV += rangeV * 0.1
	rangeV = maxV - minV

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	for _, p := range paths {
		if len(p.Points) < 2 {
			continue
		}
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, p.Color))
		for i, pt := range p.Points {
			x := (pt.T - minT) / rangeT * float64(width)
			y := float64(height) - (pt.V-minV)/rangeV*float64(height)
			if i == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		sb.WriteString("\"/>\n")
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// WaveformSVG plots a rendered channel as a vertical-bar envelope, one bar
// per output column.
func WaveformSVG(data []float64, width, height int, color string) string {
	if len(data) == 0 || width <= 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g stroke="%s" stroke-width="1">
`, width, height, width, height, color))

	mid := float64(height) / 2
	perCol := float64(len(data)) / float64(width)
	for col := 0; col < width; col++ {
		start := int(float64(col) * perCol)
		end := int(float64(col+1) * perCol)
		if end > len(data) {
			end = len(data)
		}
		peak := 0.0
		for i := start; i < end; i++ {
			v := data[i]
			if v < 0 {
				v = -v
			}
			if v > peak {
				peak = v
			}
		}
		if peak > 1 {
			peak = 1
		}
		half := peak * mid
		sb.WriteString(fmt.Sprintf(`<line x1="%d" y1="%.1f" x2="%d" y2="%.1f"/>
`, col, mid-half, col, mid+half))
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}
