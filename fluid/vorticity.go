package fluid

// Vorticity confinement reinjects rotational detail that the semi-Lagrangian
// scheme smears out on coarse grids. The scalar curl is measured with
// wall-aware central differences, then a force along the perpendicular of
// the curl-magnitude gradient pushes each cell back around its local eddy.

// curlAt returns dvy/dx - dvx/dy at (x, y), substituting the center value for
// solid or out-of-range neighbors (one-sided at walls).
func (s *Solver) curlAt(v *VectorField, x, y int) float32 {
	i := y*s.w + x
	cx, cy := v.X[i], v.Y[i]

	vyE, vyW := cy, cy
	if !s.solidCell(x+1, y) {
		_, vyE = v.At(x+1, y)
	}
	if !s.solidCell(x-1, y) {
		_, vyW = v.At(x-1, y)
	}
	vxN, vxS := cx, cx
	if !s.solidCell(x, y-1) {
		vxN, _ = v.At(x, y-1)
	}
	if !s.solidCell(x, y+1) {
		vxS, _ = v.At(x, y+1)
	}
	return (vyE-vyW)*0.5 - (vxS-vxN)*0.5
}

// vorticityConfinement reads in, writes out. The injected force is
// eps * (n perp) * |curl|, clamped per frame, and cells whose curl sits
// below the noise floor are skipped so confinement does not amplify
// numerical dust.
func (s *Solver) vorticityConfinement(in, out *VectorField, eps, dt float32) {
	w, h := s.w, s.h

	// Pass 1: curl per cell into scratch.
	parallelRows(h, func(y int) {
		for x := 0; x < w; x++ {
			i := y*w + x
			if s.solid[i] {
				s.curl[i] = 0
				continue
			}
			s.curl[i] = s.curlAt(in, x, y)
		}
	})

	// Pass 2: gradient of |curl|, confinement force.
	parallelRows(h, func(y int) {
		for x := 0; x < w; x++ {
			i := y*w + x
			vx, vy := in.X[i], in.Y[i]
			if s.solid[i] {
				out.X[i] = 0
				out.Y[i] = 0
				continue
			}

			c := s.curl[i]
			ac := c
			if ac < 0 {
				ac = -ac
			}
			if ac < curlNoise || x == 0 || x == w-1 || y == 0 || y == h-1 {
				out.X[i] = vx
				out.Y[i] = vy
				continue
			}

			gx := (absf(s.curl[i+1]) - absf(s.curl[i-1])) * 0.5
			gy := (absf(s.curl[i+w]) - absf(s.curl[i-w])) * 0.5
			m := magnitude(gx, gy)
			if m < 1e-6 {
				out.X[i] = vx
				out.Y[i] = vy
				continue
			}
			gx /= m
			gy /= m

			// Perpendicular of the gradient, signed by the curl, steers the
			// force around the vortex core rather than into it.
			fx := eps * gy * c
			fy := eps * -gx * c
			fx, fy = clampMagnitude(fx, fy, maxVortForce)

			out.X[i] = sanitize(vx + fx*dt)
			out.Y[i] = sanitize(vy + fy*dt)
		}
	})
}

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
