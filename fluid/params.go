package fluid

// WallMode selects how domain walls treat the tangential velocity component.
// The normal component is always reflected elastically.
type WallMode uint8

const (
	// WallFreeSlip reflects the normal component and copies the tangential
	// component from the interior neighbor.
	WallFreeSlip WallMode = iota
	// WallNoSlip zeroes velocity on wall cells entirely.
	WallNoSlip
)

// Hard stability limits. Out-of-range parameters are clamped at read time
// rather than rejected; the solver must keep running.
const (
	maxDT         = 1.0 / 20.0
	maxForceMag   = 200.0
	maxSpeed      = 120.0
	maxVortForce  = 10.0
	minJacobi     = 1
	maxJacobi     = 128
	maxTransfer   = 0.25
	solidCutoff   = 0.02
	curlNoise     = 1e-4
	jitterBucket  = 8 // frames per jitter rebucket, keeps emitter jitter stable
)

// Params is the immutable per-tick parameter snapshot. The owning loop
// rebuilds it every tick; the solver never reads ambient state.
type Params struct {
	Time  float32 // seconds since start
	Tick  int32   // frame counter, drives emitter jitter buckets
	DT    float32 // seconds, clamped to maxDT
	Decay float32 // per-frame damping base, applied as Decay^(DT*60)

	Viscosity    float32 // kinematic viscosity, 0 disables diffusion
	VorticityEps float32 // confinement strength, 0 disables
	ObstacleK    float32 // slope-to-permeability steepness

	JacobiIters int
	Walls       WallMode

	// Dye/chemistry exchange.
	LiftMin      float32 // speed where pickup starts
	LiftGain     float32
	SedimentMin  float32 // speed below which deposit starts
	SedimentGain float32
	TransferRate float32
	OozeRate     float32    // still-water chemistry bleed into dye
	EscapeRate   [4]float32 // per-channel dye decay, non-conservative
	DepositScale float32    // scales dye->chemistry deposits

	// Disabled switches the dye layer to the degraded blur+decay path and
	// skips the velocity solve entirely.
	Disabled bool
}

// clamped returns a copy with every field forced into its stable range.
func (p Params) clamped() Params {
	p.DT = clampFloat(p.DT, 0, maxDT)
	p.Decay = clampFloat(p.Decay, 0, 1)
	p.Viscosity = clampFloat(p.Viscosity, 0, 1)
	p.VorticityEps = clampFloat(p.VorticityEps, 0, 50)
	p.ObstacleK = clampFloat(p.ObstacleK, 0, 1000)
	if p.JacobiIters < minJacobi {
		p.JacobiIters = minJacobi
	}
	if p.JacobiIters > maxJacobi {
		p.JacobiIters = maxJacobi
	}
	p.LiftGain = clampFloat(p.LiftGain, 0, 1000)
	p.SedimentGain = clampFloat(p.SedimentGain, 0, 1000)
	p.TransferRate = clampFloat(p.TransferRate, 0, 100)
	p.OozeRate = clampFloat(p.OozeRate, 0, 100)
	for i := range p.EscapeRate {
		p.EscapeRate[i] = clampFloat(p.EscapeRate[i], 0, 100)
	}
	p.DepositScale = clampFloat(p.DepositScale, 0, 10)
	return p
}

// Emitter is an external point source ("fumarole"): a persistent directional
// force splat plus per-channel dye injection.
type Emitter struct {
	Enabled  bool
	X, Y     float32 // fractional position in [0,1]
	DirX     float32
	DirY     float32
	Strength float32
	Radius   float32 // spread radius in velocity-grid cells
	DyeRate  [4]float32
	Jitter   float32 // 0 disables; 1 = full-angle wobble
}
