package fluid

import "math"

// Obstacles are not stored as a boolean mask. Each cell derives a
// permeability in [0,1] from the terrain slope:
//
//	permeability = clamp(1 / (1 + k*|slope|), 0, 1)
//
// Cells below solidCutoff are treated as fully solid: zero velocity,
// divergence and pressure. Stencils that would read a solid neighbor
// substitute the reader's own value (Neumann) instead of zero.

// updatePermeability rebuilds the permeability and solid masks from the bound
// slope field. Called when the obstacle steepness parameter changes.
func (s *Solver) updatePermeability(k float32) {
	if s.permK == k {
		return
	}
	s.permK = k
	for i, sl := range s.slope {
		if sl < 0 {
			sl = -sl
		}
		p := clamp01(1 / (1 + k*sl))
		s.perm[i] = p
		s.solid[i] = p < solidCutoff
	}
}

// solidAt reports whether the cell containing continuous position (x, y) is
// solid. Out-of-range positions count as solid so wall handling and obstacle
// handling share one path in the advection retry. Floored, not truncated, so
// coordinates in (-1, 0) fall outside rather than into the edge cell.
func (s *Solver) solidAt(x, y float32) bool {
	ix := int(math.Floor(float64(x)))
	iy := int(math.Floor(float64(y)))
	if ix < 0 || ix >= s.w || iy < 0 || iy >= s.h {
		return true
	}
	return s.solid[iy*s.w+ix]
}

// solidCell is solidAt for integer cells.
func (s *Solver) solidCell(x, y int) bool {
	if x < 0 || x >= s.w || y < 0 || y >= s.h {
		return true
	}
	return s.solid[y*s.w+x]
}

// obstacleNormal estimates the outward normal near cell (x, y) from the
// solid/fluid state of its 8 neighbors, diagonals weighted 1/sqrt(2).
// The vector points from solid material toward open fluid. Returns (0,0)
// when no neighbor is solid.
func (s *Solver) obstacleNormal(x, y int) (float32, float32) {
	var nx, ny float32
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if !s.solidCell(x+dx, y+dy) {
				continue
			}
			w := float32(1)
			if dx != 0 && dy != 0 {
				w = invSqrt2
			}
			nx -= float32(dx) * w
			ny -= float32(dy) * w
		}
	}
	m := magnitude(nx, ny)
	if m > 0 {
		nx /= m
		ny /= m
	}
	return nx, ny
}

// reflectOffSolid reflects (vx, vy) about the obstacle normal at cell (x, y)
// when the velocity points into the solid: v' = v - 2n(v.n) for v.n < 0.
// Velocities moving away from the obstacle pass through unchanged.
func (s *Solver) reflectOffSolid(vx, vy float32, x, y int) (float32, float32) {
	nx, ny := s.obstacleNormal(x, y)
	if nx == 0 && ny == 0 {
		return vx, vy
	}
	dot := vx*nx + vy*ny
	if dot >= 0 {
		return vx, vy
	}
	return vx - 2*nx*dot, vy - 2*ny*dot
}

// enforceBoundaries reads in and writes out:
//   - solid cells are zeroed,
//   - domain walls reflect the normal component elastically, with the
//     tangential component copied from the interior neighbor (free-slip) or
//     zeroed (no-slip),
//   - fluid cells adjacent to solids have inbound velocity reflected off the
//     obstacle normal.
func (s *Solver) enforceBoundaries(in, out *VectorField, mode WallMode) {
	w, h := s.w, s.h
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

			onX := x == 0 || x == w-1
			onY := y == 0 || y == h-1
			if onX || onY {
				if mode == WallNoSlip {
					out.X[i] = 0
					out.Y[i] = 0
					continue
				}
				// Reflect inward the normal component at each wall. At a
				// corner both components are normal: both reflect and no
				// tangential copy applies.
				if (x == 0 && vx < 0) || (x == w-1 && vx > 0) {
					vx = -vx
				}
				if (y == 0 && vy < 0) || (y == h-1 && vy > 0) {
					vy = -vy
				}
				// Free-slip tangential comes from the interior neighbor.
				if onX && !onY {
					if x == 0 {
						_, vy = in.At(1, y)
					} else {
						_, vy = in.At(w-2, y)
					}
				} else if onY && !onX {
					if y == 0 {
						vx, _ = in.At(x, 1)
					} else {
						vx, _ = in.At(x, h-2)
					}
				}
			}

			vx, vy = s.reflectOffSolid(vx, vy, x, y)
			out.X[i] = sanitize(vx)
			out.Y[i] = sanitize(vy)
		}
	})
}
