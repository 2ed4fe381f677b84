package engine

import "math"

// Shape selects a grain envelope contour.
type Shape int

const (
	// ShapeMist is a soft sine-squared bell.
	ShapeMist Shape = iota
	// ShapeCloud is a Tukey window (flat top, cosine tapers).
	ShapeCloud
	// ShapeRain is a linear triangle.
	ShapeRain
	// ShapeHail has a fast attack and an exponential decay.
	ShapeHail
	// ShapeIce is near-rectangular with a minimal taper.
	ShapeIce

	NumShapes int = iota
)

var shapeNames = [...]string{"mist", "cloud", "rain", "hail", "ice"}

func (s Shape) String() string {
	if s < 0 || int(s) >= NumShapes {
		return "unknown"
	}
	return shapeNames[s]
}

// edgeFade is the universal fade fraction applied at both envelope ends so
// every shape stays click-free regardless of its own boundary behavior.
const edgeFade = 0.03

// Envelope returns the amplitude multiplier for a given envelope phase and
// shape. Phases outside [0, 1] yield zero.
func Envelope(phase float64, shape Shape) float64 {
	if phase < 0 || phase > 1 {
		return 0
	}

	fade := 1.0
	if phase < edgeFade {
		fade = phase / edgeFade
	} else if phase > 1-edgeFade {
		fade = (1 - phase) / edgeFade
	}

	env := 1.0
	switch shape {
	case ShapeMist:
		s := math.Sin(phase * math.Pi)
		env = s * s

	case ShapeCloud:
		const alpha = 0.5
		switch {
		case phase < alpha/2:
			env = 0.5 * (1 - math.Cos(2*math.Pi*phase/alpha))
		case phase > 1-alpha/2:
			env = 0.5 * (1 - math.Cos(2*math.Pi*(1-phase)/alpha))
		default:
			env = 1
		}

	case ShapeRain:
		if phase < 0.5 {
			env = phase * 2
		} else {
			env = (1 - phase) * 2
		}

	case ShapeHail:
		if phase < 0.1 {
			env = phase * 10
		} else {
			env = math.Exp(-4 * (phase - 0.1))
		}

	case ShapeIce:
		switch {
		case phase < 0.02:
			env = phase * 50
		case phase > 0.98:
			env = (1 - phase) * 50
		default:
			env = 1
		}
	}

	return env * fade
}
