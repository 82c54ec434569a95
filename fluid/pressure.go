package fluid

// Pressure projection makes the advected field divergence-free: compute the
// divergence, solve the pressure Poisson equation with fixed-count Jacobi
// iteration, then subtract the pressure gradient. NaN/Inf entering this
// stage would corrupt the whole grid with no local recovery, which is why
// every upstream kernel sanitizes its output.

// computeDivergence fills s.div from vel. The estimate blends axis-aligned
// and diagonal central differences 50/50 to reduce grid-direction bias.
// Divergence is forced to zero at walls and solid cells; solid neighbors
// mirror the center value.
func (s *Solver) computeDivergence(vel *VectorField) {
	w, h := s.w, s.h
	parallelRows(h, func(y int) {
		for x := 0; x < w; x++ {
			i := y*w + x
			if s.solid[i] || x == 0 || x == w-1 || y == 0 || y == h-1 {
				s.div.V[i] = 0
				continue
			}

			cx, cy := vel.X[i], vel.Y[i]
			rd := func(nx, ny int) (float32, float32) {
				if s.solidCell(nx, ny) {
					return cx, cy
				}
				return vel.At(nx, ny)
			}

			eX, _ := rd(x+1, y)
			wX, _ := rd(x-1, y)
			_, nY := rd(x, y-1)
			_, sY := rd(x, y+1)
			axis := (eX-wX)*0.5 + (sY-nY)*0.5

			neX, neY := rd(x+1, y-1)
			swX, swY := rd(x-1, y+1)
			seX, seY := rd(x+1, y+1)
			nwX, nwY := rd(x-1, y-1)
			// Directional derivatives along the two unit diagonals. Note the
			// grid's y axis points down, so "ne" is (x+1, y-1).
			diag := ((seX + seY - nwX - nwY) + (neX - neY - swX + swY)) * 0.25

			s.div.V[i] = sanitize(axis*0.5 + diag*0.5)
		}
	})
}

// jacobiPressure runs one Jacobi sweep, reading pin and writing pout:
//
//	p = (4*axisSum + diagSum - 6*div) / 20
//
// Neumann boundaries are realized by mirroring the center value for any
// solid or out-of-range neighbor. The sweep is unconditionally stable at any
// iteration count; fewer iterations just means less converged.
func (s *Solver) jacobiPressure(pin, pout *ScalarField) {
	w, h := s.w, s.h
	parallelRows(h, func(y int) {
		for x := 0; x < w; x++ {
			i := y*w + x
			if s.solid[i] {
				pout.V[i] = 0
				continue
			}

			c := pin.V[i]
			var axis, diag float32
			for _, d := range stencil8 {
				nx, ny := x+d.dx, y+d.dy
				v := c
				if !s.solidCell(nx, ny) {
					v = pin.V[ny*w+nx]
				}
				if d.diag {
					diag += v
				} else {
					axis += v
				}
			}
			pout.V[i] = sanitize((4*axis + diag - 6*s.div.V[i]) / 20)
		}
	})
}

// subtractGradient projects vel: v' = v - grad(p), using the same
// diagonal-blended estimator as the divergence so the two operators are
// adjoint on the interior. Components pointing into solids are reflected and
// the final magnitude is clamped.
func (s *Solver) subtractGradient(in, out *VectorField, p *ScalarField) {
	w, h := s.w, s.h
	parallelRows(h, func(y int) {
		for x := 0; x < w; x++ {
			i := y*w + x
			if s.solid[i] {
				out.X[i] = 0
				out.Y[i] = 0
				continue
			}

			c := p.V[i]
			rd := func(nx, ny int) float32 {
				if s.solidCell(nx, ny) {
					return c
				}
				return p.V[ny*w+nx]
			}

			gxAxis := (rd(x+1, y) - rd(x-1, y)) * 0.5
			gyAxis := (rd(x, y+1) - rd(x, y-1)) * 0.5

			se := rd(x+1, y+1)
			nw := rd(x-1, y-1)
			ne := rd(x+1, y-1)
			sw := rd(x-1, y+1)
			gxDiag := (se - nw + ne - sw) * 0.25
			gyDiag := (se - nw - ne + sw) * 0.25

			vx := in.X[i] - (gxAxis*0.5 + gxDiag*0.5)
			vy := in.Y[i] - (gyAxis*0.5 + gyDiag*0.5)

			vx, vy = s.reflectOffSolid(vx, vy, x, y)
			vx, vy = clampMagnitude(vx, vy, maxSpeed)
			out.X[i] = sanitize(vx)
			out.Y[i] = sanitize(vy)
		}
	})
}
