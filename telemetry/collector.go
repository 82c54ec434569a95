package telemetry

// Collector accumulates per-tick frame samples within fixed-length windows
// and produces WindowStats at each window boundary.
type Collector struct {
	windowTicks int32
	dt          float32

	windowStartTick int32

	keSamples      []float64
	maxDiv         float64
	maxSpeed       float64
	sanitizedCells int
	last           FrameStats
}

// NewCollector creates a stats collector.
// windowTicks: how many ticks each window spans.
// dt: seconds per tick (used for tick-to-time conversion).
func NewCollector(windowTicks int, dt float32) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{
		windowTicks: int32(windowTicks),
		dt:          dt,
		keSamples:   make([]float64, 0, windowTicks),
	}
}

// Record folds one frame sample into the current window. It returns the
// completed WindowStats and true when the sample closes a window.
func (c *Collector) Record(fs FrameStats) (WindowStats, bool) {
	c.keSamples = append(c.keSamples, fs.KineticEnergy)
	if fs.MaxDivergence > c.maxDiv {
		c.maxDiv = fs.MaxDivergence
	}
	if fs.MaxSpeed > c.maxSpeed {
		c.maxSpeed = fs.MaxSpeed
	}
	c.sanitizedCells += fs.SanitizedCells
	c.last = fs

	if fs.Tick-c.windowStartTick+1 < c.windowTicks {
		return WindowStats{}, false
	}
	return c.flush(fs.Tick), true
}

// flush builds the window record and resets the accumulators.
func (c *Collector) flush(endTick int32) WindowStats {
	mean, p10, p50, p90 := ComputeDistribution(c.keSamples)

	ws := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   endTick,
		SimTimeSec:      float64(endTick) * float64(c.dt),
		KEMean:          mean,
		KEP10:           p10,
		KEP50:           p50,
		KEP90:           p90,
		MaxDivergence:   c.maxDiv,
		MaxSpeed:        c.maxSpeed,
		SanitizedCells:  c.sanitizedCells,
		DyeNutrient:     c.last.DyeTotal[0],
		DyePoison:       c.last.DyeTotal[1],
		DyeTracerA:      c.last.DyeTotal[2],
		DyeTracerB:      c.last.DyeTotal[3],
		ChemNutrient:    c.last.ChemTotal[0],
		ChemPoison:      c.last.ChemTotal[1],
	}

	c.windowStartTick = endTick + 1
	c.keSamples = c.keSamples[:0]
	c.maxDiv = 0
	c.maxSpeed = 0
	c.sanitizedCells = 0
	return ws
}
