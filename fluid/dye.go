package fluid

import "math"

// DyeField is a 4-channel passive tracer grid, usually at a finer resolution
// than the velocity grid. Scale maps dye cells to velocity cells: one
// velocity cell covers Scale x Scale dye cells. Channels 0 and 1 exchange
// mass with the chemistry reservoir; channels 2 and 3 are free tracers that
// only advect and decay.
type DyeField struct {
	W, H  int
	Scale int
	V     []float32 // len W*H*4, cell-major
	back  []float32
}

// DyeChannels is the channel count of the dye field.
const DyeChannels = 4

// NewDyeField allocates a dye grid covering a velW x velH velocity grid at
// the given scale. Scale below 1 is clamped to 1.
func NewDyeField(velW, velH, scale int) *DyeField {
	if scale < 1 {
		scale = 1
	}
	w, h := velW*scale, velH*scale
	return &DyeField{
		W: w, H: h, Scale: scale,
		V:    make([]float32, w*h*DyeChannels),
		back: make([]float32, w*h*DyeChannels),
	}
}

// At returns the four channels at dye cell (x, y), edge-clamped.
func (d *DyeField) At(x, y int) [4]float32 {
	if x < 0 {
		x = 0
	} else if x >= d.W {
		x = d.W - 1
	}
	if y < 0 {
		y = 0
	} else if y >= d.H {
		y = d.H - 1
	}
	i := (y*d.W + x) * DyeChannels
	return [4]float32{d.V[i], d.V[i+1], d.V[i+2], d.V[i+3]}
}

// sample bilinearly interpolates one channel at continuous dye coordinates,
// clamped half a cell inside the domain.
func (d *DyeField) sample(buf []float32, x, y float32, ch int) float32 {
	x = clampFloat(x, 0.5, float32(d.W)-1.5)
	y = clampFloat(y, 0.5, float32(d.H)-1.5)
	x0 := int(math.Floor(float64(x)))
	y0 := int(math.Floor(float64(y)))
	tx := x - float32(x0)
	ty := y - float32(y0)

	i00 := (y0*d.W + x0) * DyeChannels
	i10 := i00 + DyeChannels
	i01 := i00 + d.W*DyeChannels
	i11 := i01 + DyeChannels

	a := buf[i00+ch] + (buf[i10+ch]-buf[i00+ch])*tx
	b := buf[i01+ch] + (buf[i11+ch]-buf[i01+ch])*tx
	return a + (b-a)*ty
}

// swap flips the front and back buffers.
func (d *DyeField) swap() {
	d.V, d.back = d.back, d.V
}

// ChemField is the externally owned 2-channel chemistry reservoir
// (nutrient, poison) at dye resolution. The transfer step mutates it.
type ChemField struct {
	W, H int
	V    []float32 // len W*H*2
}

// ChemChannels is the channel count of the chemistry field.
const ChemChannels = 2

// NewChemField allocates a zeroed chemistry grid.
func NewChemField(w, h int) *ChemField {
	return &ChemField{W: w, H: h, V: make([]float32, w*h*ChemChannels)}
}

// At returns (nutrient, poison) at cell (x, y), edge-clamped.
func (c *ChemField) At(x, y int) (float32, float32) {
	if x < 0 {
		x = 0
	} else if x >= c.W {
		x = c.W - 1
	}
	if y < 0 {
		y = 0
	} else if y >= c.H {
		y = c.H - 1
	}
	i := (y*c.W + x) * ChemChannels
	return c.V[i], c.V[i+1]
}

// liftSediment derives the two exchange factors from local flow speed.
// Fast water lifts material into suspension, still water settles it out;
// between the two thresholds neither acts.
func liftSediment(speed float32, p Params) (lift, sediment float32) {
	lift = clamp01((speed - p.LiftMin) * p.LiftGain)
	sediment = clamp01((p.SedimentMin - speed) * p.SedimentGain)
	return
}

// transferCell exchanges mass between one dye channel and its chemistry
// channel. Conservative except for saturation clamping; the non-conservative
// escape decay is applied separately during advection. Returns the updated
// (dye, chem) pair.
func transferCell(dye, chem, lift, sediment float32, p Params) (float32, float32) {
	// Pickup: chemistry -> dye, capped by dye headroom.
	pickup := clampFloat(p.TransferRate*lift*p.DT, 0, maxTransfer) * chem
	if headroom := 1 - dye; pickup > headroom {
		pickup = headroom
	}
	if pickup > 0 {
		dye += pickup
		chem -= pickup
	}

	// Deposit: dye -> chemistry, capped by chemistry headroom.
	deposit := clampFloat(p.TransferRate*sediment*p.DT*p.DepositScale, 0, maxTransfer) * dye
	if headroom := 1 - chem; deposit > headroom {
		deposit = headroom
	}
	if deposit > 0 {
		chem += deposit
		dye -= deposit
	}

	// Ooze: still water bleeds a small chemistry fraction into dye without
	// depleting the reservoir, so passive sensing works at zero flow. Fades
	// out with the sediment factor as current picks up.
	if p.OozeRate > 0 && sediment > 0 {
		ooze := chem * p.OozeRate * p.DT * sediment
		if headroom := 1 - dye; ooze > headroom {
			ooze = headroom
		}
		if ooze > 0 {
			dye += ooze
		}
	}

	return clamp01(dye), clamp01(chem)
}

// advectDye backtraces the dye field at dye resolution using velocity
// rescaled into dye-grid units, applies a light 3x3 isotropic blend against
// grid-aligned artifacts, the per-channel escape decay, and then runs the
// speed-driven chemistry exchange against the finalized velocity field.
func (s *Solver) advectDye(vel *VectorField, p Params) {
	d := s.dye
	chem := s.chem
	scale := float32(d.Scale)
	w, h := d.W, d.H
	src := d.V
	dst := d.back

	var escape [4]float32
	for c := range escape {
		escape[c] = expDecay(p.EscapeRate[c], p.DT)
	}

	const blend = 0.15 // share of the cell given to its neighborhood average
	diagW := float32(invSqrt2)
	norm := 1 / (4 + 4*diagW)

	parallelRows(h, func(y int) {
		for x := 0; x < w; x++ {
			i := (y*w + x) * DyeChannels

			// Velocity at this dye cell, in velocity-grid units.
			vx, vy := vel.Sample(float32(x)/scale, float32(y)/scale)
			speed := magnitude(vx, vy)

			if s.solidAt(float32(x)/scale, float32(y)/scale) {
				for c := 0; c < DyeChannels; c++ {
					dst[i+c] = 0
				}
				continue
			}

			// Backtrace in dye units.
			px := float32(x) - vx*scale*p.DT
			py := float32(y) - vy*scale*p.DT

			var cell [4]float32
			for c := 0; c < DyeChannels; c++ {
				v := d.sample(src, px, py, c)

				// 3x3 isotropic blend around the destination cell.
				var sum float32
				for _, st := range stencil8 {
					wgt := float32(1)
					if st.diag {
						wgt = diagW
					}
					sum += d.channelAt(src, x+st.dx, y+st.dy, c) * wgt
				}
				v = v*(1-blend) + sum*norm*blend

				cell[c] = clamp01(sanitize(v) * escape[c])
			}

			// Exchange with chemistry on the bound channels.
			lift, sediment := liftSediment(speed, p)
			ci := (y*w + x) * ChemChannels
			for c := 0; c < ChemChannels; c++ {
				cell[c], chem.V[ci+c] = transferCell(cell[c], chem.V[ci+c], lift, sediment, p)
			}

			dst[i] = cell[0]
			dst[i+1] = cell[1]
			dst[i+2] = cell[2]
			dst[i+3] = cell[3]
		}
	})
	d.swap()
}

// channelAt reads one channel with edge-clamped coordinates.
func (d *DyeField) channelAt(buf []float32, x, y, ch int) float32 {
	if x < 0 {
		x = 0
	} else if x >= d.W {
		x = d.W - 1
	}
	if y < 0 {
		y = 0
	} else if y >= d.H {
		y = d.H - 1
	}
	return buf[(y*d.W+x)*DyeChannels+ch]
}

// injectEmitterDye deposits each enabled emitter's per-channel dye into the
// dye grid with the same quadratic falloff as the force splat.
func (s *Solver) injectEmitterDye(emitters []Emitter, p Params) {
	d := s.dye
	scale := float32(d.Scale)
	for _, e := range emitters {
		if !e.Enabled {
			continue
		}
		anyRate := false
		for _, r := range e.DyeRate {
			if r > 0 {
				anyRate = true
				break
			}
		}
		if !anyRate || e.Radius <= 0 {
			continue
		}

		cx := e.X * float32(d.W)
		cy := e.Y * float32(d.H)
		r := e.Radius * scale
		x0, x1 := int(cx-r), int(cx+r+1)
		y0, y1 := int(cy-r), int(cy+r+1)
		for y := y0; y <= y1; y++ {
			for x := x0; x <= x1; x++ {
				if x < 0 || x >= d.W || y < 0 || y >= d.H {
					continue
				}
				dist := magnitude(float32(x)+0.5-cx, float32(y)+0.5-cy)
				if dist >= r {
					continue
				}
				fall := 1 - dist/r
				fall *= fall
				i := (y*d.W + x) * DyeChannels
				for c := 0; c < DyeChannels; c++ {
					if e.DyeRate[c] <= 0 {
						continue
					}
					d.V[i+c] = clamp01(d.V[i+c] + e.DyeRate[c]*fall*p.DT*60)
				}
			}
		}
	}
}

// Degraded-mode constants: a fixed per-epoch blur and decay, decoupled from
// dt so a stalled solver still fades stale dye at a steady rate.
const (
	degradedBlend = 0.35
	degradedDecay = 0.985
)

// stepDegraded replaces advection when the solver is disabled: an isotropic
// 3x3 blur plus constant decay per epoch.
func (s *Solver) stepDegraded() {
	d := s.dye
	w, h := d.W, d.H
	src := d.V
	dst := d.back
	diagW := float32(invSqrt2)
	norm := 1 / (4 + 4*diagW)

	parallelRows(h, func(y int) {
		for x := 0; x < w; x++ {
			i := (y*w + x) * DyeChannels
			for c := 0; c < DyeChannels; c++ {
				var sum float32
				for _, st := range stencil8 {
					wgt := float32(1)
					if st.diag {
						wgt = diagW
					}
					sum += d.channelAt(src, x+st.dx, y+st.dy, c) * wgt
				}
				v := src[i+c]*(1-degradedBlend) + sum*norm*degradedBlend
				dst[i+c] = clamp01(sanitize(v) * degradedDecay)
			}
		}
	})
	d.swap()
}
