// Package fluid implements the environmental flow field at the heart of the
// simulation: a stable-fluids style incompressible 2D solver with force
// accumulation, semi-Lagrangian advection, vorticity confinement, Jacobi
// pressure projection, slope-derived obstacles, and a mass-exchanging
// dye/chemistry transport layer.
//
// Every kernel is a data-independent per-cell pass over the grid following a
// strict double-buffer discipline: read the front buffer, write the back
// buffer, swap after the pass completes. The only concurrently written
// resource is the ForceAccumulator. Kernels are total and never return
// errors; numerical failures are sanitized, counted, and reported through
// Diagnostics.
package fluid

// Diagnostics summarizes what the stability machinery did during one Step.
// All degradation is silent and self-limiting; these counters are the only
// visibility into it.
type Diagnostics struct {
	SanitizedForces int // accumulator cells holding NaN/Inf, zeroed
	TickDT          float32
}

// Solver owns the velocity, pressure and dye grids and runs the full
// per-tick pipeline. All grids are allocated once at construction; there is
// no resizing.
type Solver struct {
	w, h int

	vel    *VectorField
	velTmp *VectorField
	forces *VectorField
	acc    *ForceAccumulator

	pr    *ScalarField
	prTmp *ScalarField
	div   *ScalarField
	curl  []float32

	slope []float32 // read-only terrain slope, bound at construction
	perm  []float32
	solid []bool
	permK float32

	dye  *DyeField
	chem *ChemField
}

// NewSolver builds a solver over a w x h velocity grid. slope is the
// read-only terrain slope field (len w*h); nil means open water. chem is the
// externally owned chemistry reservoir at dye resolution; dyeScale maps dye
// cells per velocity cell.
func NewSolver(w, h, dyeScale int, slope []float32, chem *ChemField) *Solver {
	if slope == nil {
		slope = make([]float32, w*h)
	}
	s := &Solver{
		w: w, h: h,
		vel:    NewVectorField(w, h),
		velTmp: NewVectorField(w, h),
		forces: NewVectorField(w, h),
		acc:    NewForceAccumulator(w, h),
		pr:     NewScalarField(w, h),
		prTmp:  NewScalarField(w, h),
		div:    NewScalarField(w, h),
		curl:   make([]float32, w*h),
		slope:  slope,
		perm:   make([]float32, w*h),
		solid:  make([]bool, w*h),
		permK:  -1,
		dye:    NewDyeField(w, h, dyeScale),
		chem:   chem,
	}
	s.updatePermeability(0)
	return s
}

// Size returns the velocity grid dimensions.
func (s *Solver) Size() (int, int) { return s.w, s.h }

// Velocity returns the current (front) velocity field. Valid until the next
// Step; consumers must not mutate it.
func (s *Solver) Velocity() *VectorField { return s.vel }

// Dye returns the dye tracer field.
func (s *Solver) Dye() *DyeField { return s.dye }

// Chem returns the bound chemistry reservoir.
func (s *Solver) Chem() *ChemField { return s.chem }

// Forces exposes the accumulator for external producers. Producers may Add
// concurrently at any time between Steps; Step drains and clears it.
func (s *Solver) Forces() *ForceAccumulator { return s.acc }

// Permeability returns the per-cell permeability in [0,1] derived from the
// bound slope field. Rebuilt lazily when the obstacle parameter changes.
func (s *Solver) Permeability() []float32 { return s.perm }

// SampleVelocity bilinearly samples the current velocity at continuous cell
// coordinates.
func (s *Solver) SampleVelocity(x, y float32) (float32, float32) {
	return s.vel.Sample(x, y)
}

// swapVel flips the velocity front/back buffers after a pass.
func (s *Solver) swapVel() { s.vel, s.velTmp = s.velTmp, s.vel }

// Step advances the field by one tick. The parameter snapshot is clamped at
// read time; out-of-range configuration degrades, it never fails. Emitters
// inject both force and dye. The chemistry reservoir is mutated in place.
func (s *Solver) Step(p Params, emitters []Emitter) Diagnostics {
	p = p.clamped()
	s.updatePermeability(p.ObstacleK)

	var diag Diagnostics
	diag.TickDT = p.DT

	if p.Disabled {
		// Degraded mode: no velocity solve, dye falls back to per-epoch
		// blur and decay decoupled from dt.
		s.acc.Clear()
		s.injectEmitterDye(emitters, p)
		s.stepDegraded()
		return diag
	}

	// Force gathering: emitters join whatever agents accumulated since the
	// previous tick, then the raw sums are sanitized and clamped.
	s.acc.InjectEmitters(emitters, p)
	diag.SanitizedForces = s.acc.Finalize(s.forces)
	s.acc.Clear()

	s.addForces(s.vel, s.velTmp, s.forces, p.DT)
	s.swapVel()

	if p.Viscosity > 0 {
		s.diffuse(s.vel, s.velTmp, p.Viscosity, p.DT)
		s.swapVel()
	}

	s.advect(s.vel, s.velTmp, p)
	s.swapVel()

	if p.VorticityEps > 0 {
		s.vorticityConfinement(s.vel, s.velTmp, p.VorticityEps, p.DT)
		s.swapVel()
	}

	s.enforceBoundaries(s.vel, s.velTmp, p.Walls)
	s.swapVel()

	// Pressure projection.
	s.computeDivergence(s.vel)
	s.pr.Clear()
	s.prTmp.Clear()
	for i := 0; i < p.JacobiIters; i++ {
		s.jacobiPressure(s.pr, s.prTmp)
		s.pr, s.prTmp = s.prTmp, s.pr
	}
	s.subtractGradient(s.vel, s.velTmp, s.pr)
	s.swapVel()

	s.enforceBoundaries(s.vel, s.velTmp, p.Walls)
	s.swapVel()

	// Dye and chemistry read the finalized velocity.
	s.injectEmitterDye(emitters, p)
	s.advectDye(s.vel, p)

	return diag
}

// MaxDivergence recomputes the blended divergence of the current velocity
// field and returns its maximum magnitude. Diagnostic only.
func (s *Solver) MaxDivergence() float32 {
	s.computeDivergence(s.vel)
	var maxDiv float32
	for _, d := range s.div.V {
		if d < 0 {
			d = -d
		}
		if d > maxDiv {
			maxDiv = d
		}
	}
	return maxDiv
}

// KineticEnergy returns the total squared speed over all fluid cells.
func (s *Solver) KineticEnergy() float64 {
	var ke float64
	for i := range s.vel.X {
		if s.solid[i] {
			continue
		}
		vx := float64(s.vel.X[i])
		vy := float64(s.vel.Y[i])
		ke += vx*vx + vy*vy
	}
	return ke
}

// MaxSpeed returns the largest velocity magnitude on the grid.
func (s *Solver) MaxSpeed() float32 {
	var m float32
	for i := range s.vel.X {
		v := magnitude(s.vel.X[i], s.vel.Y[i])
		if v > m {
			m = v
		}
	}
	return m
}

// DyeTotal sums one dye channel over the grid.
func (s *Solver) DyeTotal(ch int) float64 {
	var sum float64
	for i := ch; i < len(s.dye.V); i += DyeChannels {
		sum += float64(s.dye.V[i])
	}
	return sum
}

// ChemTotal sums one chemistry channel over the grid.
func (s *Solver) ChemTotal(ch int) float64 {
	var sum float64
	for i := ch; i < len(s.chem.V); i += ChemChannels {
		sum += float64(s.chem.V[i])
	}
	return sum
}
