package fluid

import "math"

// addForces applies the finalized force buffer: v' = v + f*dt. The caller
// has already clamped dt, so a frame hitch cannot turn a steady force into
// an impulse.
func (s *Solver) addForces(in, out *VectorField, forces *VectorField, dt float32) {
	w := s.w
	parallelRows(s.h, func(y int) {
		row := y * w
		for x := 0; x < w; x++ {
			i := row + x
			out.X[i] = sanitize(in.X[i] + forces.X[i]*dt)
			out.Y[i] = sanitize(in.Y[i] + forces.Y[i]*dt)
		}
	})
}

// diffuse runs one explicit viscosity step, v' = v + nu*dt*lap(v), using a
// 9-point Laplacian (axis plus diagonal neighbors) for isotropy. Interior
// cells only; solid neighbors mirror the center value so no momentum leaks
// into obstacles. The 4/1 axis/diagonal weighting matches the pressure
// stencil, normalized by the weight sum 20 over 6.
func (s *Solver) diffuse(in, out *VectorField, nu, dt float32) {
	w, h := s.w, s.h
	k := nu * dt
	parallelRows(h, func(y int) {
		for x := 0; x < w; x++ {
			i := y*w + x
			if y == 0 || y == h-1 || x == 0 || x == w-1 || s.solid[i] {
				out.X[i] = in.X[i]
				out.Y[i] = in.Y[i]
				continue
			}

			cx := in.X[i]
			cy := in.Y[i]
			var ax, ay, dxs, dys float32
			for _, d := range stencil8 {
				nx, ny := x+d.dx, y+d.dy
				vx, vy := cx, cy // Neumann mirror for solids
				if !s.solidCell(nx, ny) {
					j := ny*w + nx
					vx, vy = in.X[j], in.Y[j]
				}
				if d.diag {
					dxs += vx
					dys += vy
				} else {
					ax += vx
					ay += vy
				}
			}
			lapX := (4*ax + dxs - 20*cx) / 6
			lapY := (4*ay + dys - 20*cy) / 6
			out.X[i] = sanitize(cx + k*lapX)
			out.Y[i] = sanitize(cy + k*lapY)
		}
	})
}

// stencil8 enumerates the 8-neighborhood once so every 9-point kernel walks
// it in the same order.
var stencil8 = [8]struct {
	dx, dy int
	diag   bool
}{
	{-1, 0, false}, {1, 0, false}, {0, -1, false}, {0, 1, false},
	{-1, -1, true}, {1, -1, true}, {-1, 1, true}, {1, 1, true},
}

// advect self-advects velocity with a semi-Lagrangian backtrace: sample the
// field at pos - v*dt and damp by decay^(dt*60) so per-frame damping is
// rate-independent. If the backtrace lands inside an obstacle, the trace is
// retried with a wall-reflected velocity instead of discarding the momentum.
func (s *Solver) advect(in, out *VectorField, p Params) {
	w, h := s.w, s.h
	damp := float32(math.Pow(float64(p.Decay), float64(p.DT*60)))
	dt := p.DT

	parallelRows(h, func(y int) {
		for x := 0; x < w; x++ {
			i := y*w + x
			if s.solid[i] {
				out.X[i] = 0
				out.Y[i] = 0
				continue
			}

			vx := in.X[i]
			vy := in.Y[i]
			px := float32(x) - vx*dt
			py := float32(y) - vy*dt

			if s.solidAt(px, py) {
				rvx, rvy := s.reflectOffSolid(vx, vy, x, y)
				px = float32(x) - rvx*dt
				py = float32(y) - rvy*dt
			}

			nvx, nvy := in.Sample(px, py)
			nvx, nvy = clampMagnitude(nvx*damp, nvy*damp, maxSpeed)
			out.X[i] = sanitize(nvx)
			out.Y[i] = sanitize(nvy)
		}
	})
}
