package fluid

import (
	"math"
	"testing"
)

func TestClampFloat(t *testing.T) {
	tests := []struct {
		name     string
		v, lo, hi float32
		want     float32
	}{
		{"below", -1, 0, 1, 0},
		{"above", 2, 0, 1, 1},
		{"inside", 0.5, 0, 1, 0.5},
		{"at low edge", 0, 0, 1, 0},
		{"at high edge", 1, 0, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := clampFloat(tt.v, tt.lo, tt.hi); got != tt.want {
				t.Errorf("clampFloat(%v, %v, %v) = %v, want %v", tt.v, tt.lo, tt.hi, got, tt.want)
			}
		})
	}
}

func TestSanitize(t *testing.T) {
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))

	if got := sanitize(nan); got != 0 {
		t.Errorf("sanitize(NaN) = %v, want 0", got)
	}
	if got := sanitize(inf); got != 0 {
		t.Errorf("sanitize(+Inf) = %v, want 0", got)
	}
	if got := sanitize(-inf); got != 0 {
		t.Errorf("sanitize(-Inf) = %v, want 0", got)
	}
	if got := sanitize(3.5); got != 3.5 {
		t.Errorf("sanitize(3.5) = %v, want 3.5", got)
	}
	if got := sanitize(-0.25); got != -0.25 {
		t.Errorf("sanitize(-0.25) = %v, want -0.25", got)
	}
}

func TestIsFinite(t *testing.T) {
	if isFinite(float32(math.NaN())) {
		t.Error("NaN reported finite")
	}
	if isFinite(float32(math.Inf(-1))) {
		t.Error("-Inf reported finite")
	}
	if !isFinite(0) || !isFinite(-123.456) {
		t.Error("finite value reported non-finite")
	}
}

func TestClampMagnitude(t *testing.T) {
	x, y := clampMagnitude(30, 40, 10)
	if math.Abs(float64(magnitude(x, y))-10) > 1e-4 {
		t.Errorf("clamped magnitude = %v, want 10", magnitude(x, y))
	}
	// Direction preserved: (30,40) is 3-4-5.
	if math.Abs(float64(x)-6) > 1e-4 || math.Abs(float64(y)-8) > 1e-4 {
		t.Errorf("clamped vector = (%v, %v), want (6, 8)", x, y)
	}

	// Below the limit passes through untouched.
	x, y = clampMagnitude(1, 2, 10)
	if x != 1 || y != 2 {
		t.Errorf("unclamped vector changed: (%v, %v)", x, y)
	}
}

func TestExpDecay(t *testing.T) {
	if got := expDecay(0, 1); got != 1 {
		t.Errorf("expDecay(0, 1) = %v, want 1", got)
	}
	got := expDecay(1, 1)
	want := float32(math.Exp(-1))
	if math.Abs(float64(got-want)) > 1e-6 {
		t.Errorf("expDecay(1, 1) = %v, want %v", got, want)
	}
	// Huge rates stay in (0, 1], never negative.
	if got := expDecay(1e6, 1); got < 0 || got > 1 {
		t.Errorf("expDecay(1e6, 1) = %v, out of range", got)
	}
}

func TestHash32(t *testing.T) {
	// Deterministic.
	if hash32(3, 7, 99) != hash32(3, 7, 99) {
		t.Error("hash32 not deterministic")
	}
	// In range, and not constant over a sample of inputs.
	seen := map[float32]bool{}
	for i := 0; i < 64; i++ {
		v := hash32(i, i*3, 1)
		if v < 0 || v >= 1 {
			t.Fatalf("hash32 out of [0,1): %v", v)
		}
		seen[v] = true
	}
	if len(seen) < 32 {
		t.Errorf("hash32 too clumped: %d distinct values of 64", len(seen))
	}
}
