// Package terrain provides the read-only seabed height and slope fields the
// flow solver derives its obstacles from. Height comes from layered
// opensimplex noise; slope is its central-difference gradient magnitude.
package terrain

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// Field is a fixed-size height/slope grid generated once at startup.
type Field struct {
	W, H   int
	height []float32
	slope  []float32
}

// Options tune terrain generation. Zero values fall back to sane defaults.
type Options struct {
	Scale      float64 // base noise frequency, default 3.0
	Octaves    int     // fBm octaves, default 4
	Lacunarity float64 // default 2.0
	Gain       float64 // default 0.5
	Relief     float64 // multiplies the slope, default 6.0
}

func (o Options) withDefaults() Options {
	if o.Scale <= 0 {
		o.Scale = 3.0
	}
	if o.Octaves <= 0 {
		o.Octaves = 4
	}
	if o.Lacunarity <= 0 {
		o.Lacunarity = 2.0
	}
	if o.Gain <= 0 {
		o.Gain = 0.5
	}
	if o.Relief <= 0 {
		o.Relief = 6.0
	}
	return o
}

// New generates a w x h field from the given seed. Identical seeds and
// options produce identical fields.
func New(w, h int, seed int64, opts Options) *Field {
	opts = opts.withDefaults()
	noise := opensimplex.NewNormalized(seed)

	f := &Field{
		W: w, H: h,
		height: make([]float32, w*h),
		slope:  make([]float32, w*h),
	}

	for y := 0; y < h; y++ {
		v := float64(y) / float64(h)
		for x := 0; x < w; x++ {
			u := float64(x) / float64(w)

			sum := 0.0
			amp := 0.5
			freq := opts.Scale
			for o := 0; o < opts.Octaves; o++ {
				sum += amp * noise.Eval2(u*freq, v*freq)
				freq *= opts.Lacunarity
				amp *= opts.Gain
			}
			f.height[y*w+x] = float32(sum)
		}
	}

	// Central differences, one-sided at the borders.
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			gx := float64(f.heightAt(x+1, y)-f.heightAt(x-1, y)) * 0.5
			gy := float64(f.heightAt(x, y+1)-f.heightAt(x, y-1)) * 0.5
			f.slope[y*w+x] = float32(math.Sqrt(gx*gx+gy*gy) * opts.Relief)
		}
	}

	return f
}

func (f *Field) heightAt(x, y int) float32 {
	if x < 0 {
		x = 0
	} else if x >= f.W {
		x = f.W - 1
	}
	if y < 0 {
		y = 0
	} else if y >= f.H {
		y = f.H - 1
	}
	return f.height[y*f.W+x]
}

// Height returns the height value at cell (x, y), edge-clamped.
func (f *Field) Height(x, y int) float32 { return f.heightAt(x, y) }

// SlopeAt returns the slope magnitude at cell (x, y), edge-clamped.
func (f *Field) SlopeAt(x, y int) float32 {
	if x < 0 {
		x = 0
	} else if x >= f.W {
		x = f.W - 1
	}
	if y < 0 {
		y = 0
	} else if y >= f.H {
		y = f.H - 1
	}
	return f.slope[y*f.W+x]
}

// Slope returns the raw slope grid the solver binds at construction.
// Callers must treat it as read-only.
func (f *Field) Slope() []float32 { return f.slope }
