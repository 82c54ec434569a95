package fluid

import (
	"math"
	"sync/atomic"
)

// ForceAccumulator gathers per-cell force contributions from many independent
// producers within one tick. Adds are lock-free and safe under an unbounded
// number of concurrent writers: each component is stored as a float32 bit
// pattern behind a compare-and-swap retry loop, since there is no native
// atomic float add.
//
// The raw accumulator is never consumed directly. Finalize sanitizes and
// clamps it into a plain VectorField once per tick, after all producers have
// finished.
type ForceAccumulator struct {
	w, h  int
	xbits []uint32
	ybits []uint32
}

// NewForceAccumulator allocates a cleared accumulator.
func NewForceAccumulator(w, h int) *ForceAccumulator {
	return &ForceAccumulator{
		w: w, h: h,
		xbits: make([]uint32, w*h),
		ybits: make([]uint32, w*h),
	}
}

// Clear zeroes the accumulator. Must be called once before accumulation
// begins; it is not safe to run concurrently with Add.
func (a *ForceAccumulator) Clear() {
	for i := range a.xbits {
		a.xbits[i] = 0
		a.ybits[i] = 0
	}
}

// Add accumulates a force vector into cell (x, y). Out-of-range cells are
// dropped. Safe for concurrent use.
func (a *ForceAccumulator) Add(x, y int, dx, dy float32) {
	if x < 0 || x >= a.w || y < 0 || y >= a.h {
		return
	}
	i := y*a.w + x
	if dx != 0 {
		atomicAddFloat(&a.xbits[i], dx)
	}
	if dy != 0 {
		atomicAddFloat(&a.ybits[i], dy)
	}
}

// AddAt accumulates a force at a fractional grid position, splatting onto the
// containing cell. Floored, not truncated: coordinates in (-1, 0) belong to
// cell -1 and are dropped, not folded into the edge cell.
func (a *ForceAccumulator) AddAt(fx, fy float32, dx, dy float32) {
	a.Add(int(math.Floor(float64(fx))), int(math.Floor(float64(fy))), dx, dy)
}

// atomicAddFloat adds v to the float32 stored in bits via CAS on the bit
// pattern, retrying until the swap wins.
func atomicAddFloat(bits *uint32, v float32) {
	for {
		old := atomic.LoadUint32(bits)
		next := math.Float32bits(math.Float32frombits(old) + v)
		if atomic.CompareAndSwapUint32(bits, old, next) {
			return
		}
	}
}

// InjectEmitters adds each enabled emitter's directional splat into the
// accumulator. Runs single-threaded so overlapping emitters sum in a fixed
// order and repeated runs stay deterministic.
//
// Falloff is (1 - dist/radius)^2. Direction and strength are jittered
// per-cell from a hash of a coarse time bucket and the cell index, so the
// wobble holds still for several consecutive frames instead of flickering.
func (a *ForceAccumulator) InjectEmitters(emitters []Emitter, p Params) {
	bucket := uint32(p.Tick/jitterBucket) + 1
	for _, e := range emitters {
		if !e.Enabled || e.Strength == 0 || e.Radius <= 0 {
			continue
		}
		cx := e.X * float32(a.w)
		cy := e.Y * float32(a.h)
		r := e.Radius
		x0 := int(cx - r)
		x1 := int(cx + r + 1)
		y0 := int(cy - r)
		y1 := int(cy + r + 1)

		baseAngle := float32(math.Atan2(float64(e.DirY), float64(e.DirX)))
		for y := y0; y <= y1; y++ {
			for x := x0; x <= x1; x++ {
				if x < 0 || x >= a.w || y < 0 || y >= a.h {
					continue
				}
				dx := float32(x) + 0.5 - cx
				dy := float32(y) + 0.5 - cy
				dist := magnitude(dx, dy)
				if dist >= r {
					continue
				}
				fall := 1 - dist/r
				fall *= fall

				angle := baseAngle
				strength := e.Strength
				if e.Jitter > 0 {
					ja := hash32(x, y, bucket) - 0.5
					js := hash32(x, y, bucket*2654435761) - 0.5
					angle += ja * e.Jitter * float32(math.Pi)
					strength *= 1 + js*e.Jitter
				}
				fx := float32(math.Cos(float64(angle))) * strength * fall
				fy := float32(math.Sin(float64(angle))) * strength * fall
				a.Add(x, y, fx, fy)
			}
		}
	}
}

// Finalize reads the raw accumulator, replaces NaN/Inf with zero, clamps the
// force magnitude, and writes the usable force buffer. Returns the number of
// cells that held a non-finite component; the producer that wrote them is
// masked, not fixed, so the count is surfaced as a diagnostic.
func (a *ForceAccumulator) Finalize(dst *VectorField) int {
	var sanitized int64
	w := a.w
	parallelRows(a.h, func(y int) {
		row := y * w
		var bad int64
		for x := 0; x < w; x++ {
			i := row + x
			fx := math.Float32frombits(a.xbits[i])
			fy := math.Float32frombits(a.ybits[i])
			if !isFinite(fx) || !isFinite(fy) {
				fx = sanitize(fx)
				fy = sanitize(fy)
				bad++
			}
			fx, fy = clampMagnitude(fx, fy, maxForceMag)
			dst.X[i] = fx
			dst.Y[i] = fy
		}
		if bad != 0 {
			atomic.AddInt64(&sanitized, bad)
		}
	})
	return int(sanitized)
}
