package fluid

import "math"

// invSqrt2 weights diagonal neighbors so the 8-neighborhood stays isotropic.
const invSqrt2 = 0.70710678

// clampFloat clamps a float32 value between min and max.
func clampFloat(v, minVal, maxVal float32) float32 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// clamp01 clamps a float32 value to the [0, 1] range.
func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// isFinite reports whether v is neither NaN nor Inf.
// The v != v comparison catches NaN without a math.IsNaN round trip.
func isFinite(v float32) bool {
	if v != v {
		return false
	}
	return v > -math.MaxFloat32 && v < math.MaxFloat32
}

// sanitize replaces non-finite values with zero so a single bad producer
// cannot contaminate neighboring stencils.
func sanitize(v float32) float32 {
	if !isFinite(v) {
		return 0
	}
	return v
}

// magnitude returns the Euclidean length of (x, y).
func magnitude(x, y float32) float32 {
	return float32(math.Sqrt(float64(x*x + y*y)))
}

// clampMagnitude scales (x, y) down to maxMag if it exceeds it.
func clampMagnitude(x, y, maxMag float32) (float32, float32) {
	m := magnitude(x, y)
	if m > maxMag && m > 0 {
		s := maxMag / m
		return x * s, y * s
	}
	return x, y
}

// expDecay returns exp(-rate*dt) without going negative for large rates.
func expDecay(rate, dt float32) float32 {
	if rate <= 0 {
		return 1
	}
	return float32(math.Exp(float64(-rate * dt)))
}

// hash32 mixes integer coordinates and a seed into a pseudo-random float
// in [0,1).
func hash32(ix, iy int, seed uint32) float32 {
	x := uint32(ix)
	y := uint32(iy)
	h := x*374761393 + y*668265263 + seed*1442695041
	h = (h ^ (h >> 13)) * 1274126177
	h ^= h >> 16
	return float32(h&0x00FFFFFF) / float32(0x01000000)
}
