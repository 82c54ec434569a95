package fluid

import "math"

// VectorField is a collocated 2D grid of (x, y) float32 vectors stored as
// parallel flat slices indexed y*W+x. Kernels never mutate a field in place:
// each pass reads one field and writes a second, then the solver swaps them.
type VectorField struct {
	W, H int
	X, Y []float32
}

// NewVectorField allocates a zeroed vector field.
func NewVectorField(w, h int) *VectorField {
	return &VectorField{
		W: w, H: h,
		X: make([]float32, w*h),
		Y: make([]float32, w*h),
	}
}

// Clear zeroes both components.
func (f *VectorField) Clear() {
	for i := range f.X {
		f.X[i] = 0
		f.Y[i] = 0
	}
}

// CopyFrom copies src into f. Dimensions must match.
func (f *VectorField) CopyFrom(src *VectorField) {
	copy(f.X, src.X)
	copy(f.Y, src.Y)
}

// At returns the vector at cell (x, y) with out-of-range reads clamped to the
// nearest edge cell.
func (f *VectorField) At(x, y int) (float32, float32) {
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
	i := y*f.W + x
	return f.X[i], f.Y[i]
}

// Set writes the vector at cell (x, y). Out-of-range writes are dropped.
func (f *VectorField) Set(x, y int, vx, vy float32) {
	if x < 0 || x >= f.W || y < 0 || y >= f.H {
		return
	}
	i := y*f.W + x
	f.X[i] = vx
	f.Y[i] = vy
}

// Sample bilinearly interpolates the field at continuous cell coordinates,
// where integer coordinates land on cell centers. The position is clamped
// half a cell inside the domain so backtraces never read past the border.
func (f *VectorField) Sample(x, y float32) (float32, float32) {
	x = clampFloat(x, 0.5, float32(f.W)-1.5)
	y = clampFloat(y, 0.5, float32(f.H)-1.5)

	x0 := int(math.Floor(float64(x)))
	y0 := int(math.Floor(float64(y)))
	x1 := x0 + 1
	y1 := y0 + 1
	tx := x - float32(x0)
	ty := y - float32(y0)

	i00 := y0*f.W + x0
	i10 := y0*f.W + x1
	i01 := y1*f.W + x0
	i11 := y1*f.W + x1

	ax := f.X[i00] + (f.X[i10]-f.X[i00])*tx
	bx := f.X[i01] + (f.X[i11]-f.X[i01])*tx
	ay := f.Y[i00] + (f.Y[i10]-f.Y[i00])*tx
	by := f.Y[i01] + (f.Y[i11]-f.Y[i01])*tx

	return ax + (bx-ax)*ty, ay + (by-ay)*ty
}

// ScalarField is a flat float32 grid indexed y*W+x.
type ScalarField struct {
	W, H int
	V    []float32
}

// NewScalarField allocates a zeroed scalar field.
func NewScalarField(w, h int) *ScalarField {
	return &ScalarField{W: w, H: h, V: make([]float32, w*h)}
}

// Clear zeroes the field.
func (f *ScalarField) Clear() {
	for i := range f.V {
		f.V[i] = 0
	}
}

// At returns the value at (x, y) with edge-clamped reads.
func (f *ScalarField) At(x, y int) float32 {
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
	return f.V[y*f.W+x]
}
