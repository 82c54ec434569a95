package telemetry

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// FrameStats is one per-tick sample taken after the solver step.
type FrameStats struct {
	Tick           int32
	KineticEnergy  float64
	MaxDivergence  float64
	MaxSpeed       float64
	SanitizedCells int
	DyeTotal       [4]float64
	ChemTotal      [2]float64
}

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Kinetic energy distribution over the window
	KEMean float64 `csv:"ke_mean"`
	KEP10  float64 `csv:"ke_p10"`
	KEP50  float64 `csv:"ke_p50"`
	KEP90  float64 `csv:"ke_p90"`

	// Worst-case residuals seen during the window
	MaxDivergence float64 `csv:"max_div"`
	MaxSpeed      float64 `csv:"max_speed"`

	// Stability machinery activity
	SanitizedCells int `csv:"sanitized_cells"`

	// Mass pools at window end (for conservation validation)
	DyeNutrient  float64 `csv:"dye_nutrient"`
	DyePoison    float64 `csv:"dye_poison"`
	DyeTracerA   float64 `csv:"dye_tracer_a"`
	DyeTracerB   float64 `csv:"dye_tracer_b"`
	ChemNutrient float64 `csv:"chem_nutrient"`
	ChemPoison   float64 `csv:"chem_poison"`
}

// ComputeDistribution calculates mean and percentiles from a sample slice.
// The input is not modified.
func ComputeDistribution(values []float64) (mean, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	mean = stat.Mean(sorted, nil)
	p10 = stat.Quantile(0.10, stat.Empirical, sorted, nil)
	p50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	p90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)
	return mean, p10, p50, p90
}
