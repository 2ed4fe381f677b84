package engine

import "math"

// nearestZeroCrossing scans outward from start for a sign change or, failing
// that, the lowest-amplitude sample within the search radius. Grains snipped
// at the returned index start without an onset click. Indices wrap modulo
// the buffer length.
func nearestZeroCrossing(buf []float64, start, radius int) int {
	n := len(buf)
	if n <= 0 {
		return 0
	}
	start = ((start % n) + n) % n

	best := start
	bestVal := math.Abs(buf[best])

	for offset := 1; offset <= radius; offset++ {
		fwd := (start + offset) % n
		if v := math.Abs(buf[fwd]); v < bestVal {
			bestVal = v
			best = fwd
		}
		prevF := (start + offset - 1) % n
		if buf[prevF]*buf[fwd] < 0 {
			if math.Abs(buf[prevF]) < math.Abs(buf[fwd]) {
				return prevF
			}
			return fwd
		}

		bwd := ((start-offset)%n + n) % n
		if v := math.Abs(buf[bwd]); v < bestVal {
			bestVal = v
			best = bwd
		}
		prevB := ((start-offset+1)%n + n) % n
		if buf[prevB]*buf[bwd] < 0 {
			if math.Abs(buf[prevB]) < math.Abs(buf[bwd]) {
				return prevB
			}
			return bwd
		}
	}

	return best
}
