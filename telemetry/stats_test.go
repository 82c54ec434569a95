package telemetry

import (
	"math"
	"testing"
)

func TestComputeDistribution(t *testing.T) {
	values := []float64{10, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	mean, p10, p50, p90 := ComputeDistribution(values)

	if math.Abs(mean-5.5) > 1e-9 {
		t.Errorf("mean = %v, want 5.5", mean)
	}
	// Empirical quantiles over 1..10.
	if p10 != 1 {
		t.Errorf("p10 = %v, want 1", p10)
	}
	if p50 != 5 {
		t.Errorf("p50 = %v, want 5", p50)
	}
	if p90 != 9 {
		t.Errorf("p90 = %v, want 9", p90)
	}

	// Input order preserved (the copy is sorted, not the caller's slice).
	if values[0] != 10 {
		t.Error("ComputeDistribution mutated its input")
	}
}

func TestComputeDistributionEmpty(t *testing.T) {
	mean, p10, p50, p90 := ComputeDistribution(nil)
	if mean != 0 || p10 != 0 || p50 != 0 || p90 != 0 {
		t.Errorf("empty input = (%v, %v, %v, %v), want zeros", mean, p10, p50, p90)
	}
}

func TestComputeDistributionSingle(t *testing.T) {
	mean, p10, p50, p90 := ComputeDistribution([]float64{3.5})
	if mean != 3.5 || p10 != 3.5 || p50 != 3.5 || p90 != 3.5 {
		t.Errorf("single sample = (%v, %v, %v, %v), want all 3.5", mean, p10, p50, p90)
	}
}
