package terrain

import "testing"

func TestNewDeterministic(t *testing.T) {
	a := New(32, 32, 42, Options{})
	b := New(32, 32, 42, Options{})

	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			if a.Height(x, y) != b.Height(x, y) {
				t.Fatalf("height differs at (%d,%d) for identical seeds", x, y)
			}
			if a.SlopeAt(x, y) != b.SlopeAt(x, y) {
				t.Fatalf("slope differs at (%d,%d) for identical seeds", x, y)
			}
		}
	}
}

func TestNewSeedChangesField(t *testing.T) {
	a := New(32, 32, 42, Options{})
	b := New(32, 32, 43, Options{})

	same := true
	for y := 0; y < 32 && same; y++ {
		for x := 0; x < 32; x++ {
			if a.Height(x, y) != b.Height(x, y) {
				same = false
				break
			}
		}
	}
	if same {
		t.Error("different seeds produced identical terrain")
	}
}

func TestSlopeNonNegative(t *testing.T) {
	f := New(64, 48, 7, Options{Relief: 6})
	for i, s := range f.Slope() {
		if s < 0 {
			t.Fatalf("negative slope at index %d: %v", i, s)
		}
	}
	if len(f.Slope()) != 64*48 {
		t.Errorf("slope length = %d, want %d", len(f.Slope()), 64*48)
	}
}

func TestReliefScalesSlope(t *testing.T) {
	flat := New(32, 32, 42, Options{Relief: 1})
	steep := New(32, 32, 42, Options{Relief: 10})

	var flatSum, steepSum float64
	for i := range flat.Slope() {
		flatSum += float64(flat.Slope()[i])
		steepSum += float64(steep.Slope()[i])
	}
	if steepSum <= flatSum {
		t.Errorf("relief did not scale slope: %v vs %v", flatSum, steepSum)
	}
}

func TestAccessorsClamp(t *testing.T) {
	f := New(8, 8, 1, Options{})
	if f.Height(-3, -3) != f.Height(0, 0) {
		t.Error("Height did not clamp negative coordinates")
	}
	if f.SlopeAt(100, 100) != f.SlopeAt(7, 7) {
		t.Error("SlopeAt did not clamp overflow coordinates")
	}
}
