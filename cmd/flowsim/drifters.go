package main

import (
	"math"
	"sync"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/undertow/fluid"
)

// Position is a drifter's location in velocity-grid coordinates.
type Position struct {
	X, Y float32
}

// Velocity is a drifter's own motion, on top of whatever the current does.
type Velocity struct {
	X, Y float32
}

// Propulsion holds a drifter's steering state.
type Propulsion struct {
	Heading float32 // radians
	Thrust  float32 // force magnitude fed back into the accumulator
}

// Drifters is a small agent population that rides the flow field and pushes
// back on it. It exists to exercise the solver the way the surrounding
// simulation does: sample velocity everywhere, accumulate forces
// concurrently.
type Drifters struct {
	world  *ecs.World
	mapper *ecs.Map3[Position, Velocity, Propulsion]
	filter *ecs.Filter3[Position, Velocity, Propulsion]

	w, h     float32
	flowBias float32
	seed     uint32
	tick     uint32

	// scratch reused across ticks for the parallel force push
	pushes []forcePush
}

type forcePush struct {
	x, y, fx, fy float32
}

// NewDrifters spawns count drifters scattered deterministically from seed.
func NewDrifters(w, h, count int, thrust, flowBias float32, seed int64) *Drifters {
	world := ecs.NewWorld()
	d := &Drifters{
		world:    world,
		mapper:   ecs.NewMap3[Position, Velocity, Propulsion](world),
		filter:   ecs.NewFilter3[Position, Velocity, Propulsion](world),
		w:        float32(w),
		h:        float32(h),
		flowBias: flowBias,
		seed:     uint32(seed),
	}

	for i := 0; i < count; i++ {
		pos := Position{
			X: prn(uint32(i), 0, d.seed) * d.w,
			Y: prn(uint32(i), 1, d.seed) * d.h,
		}
		vel := Velocity{}
		prop := Propulsion{
			Heading: prn(uint32(i), 2, d.seed) * 2 * math.Pi,
			Thrust:  thrust,
		}
		d.mapper.NewEntity(&pos, &vel, &prop)
	}
	return d
}

// prn derives a deterministic value in [0,1) from three integers.
func prn(a, b, seed uint32) float32 {
	x := a*374761393 + b*668265263 + seed*2246822519
	x ^= x >> 13
	x *= 1274126177
	x ^= x >> 16
	return float32(x&0xffffff) / float32(1<<24)
}

// Step moves every drifter with the current plus its own swimming, then
// pushes the reaction forces into the accumulator from worker goroutines.
func (d *Drifters) Step(s *fluid.Solver, dt float32) {
	d.tick++
	d.pushes = d.pushes[:0]

	idx := uint32(0)
	query := d.filter.Query()
	for query.Next() {
		pos, vel, prop := query.Get()

		fx, fy := s.SampleVelocity(pos.X, pos.Y)

		// Steer between the current heading and the flow direction, with a
		// little deterministic wander so drifters in still water still move.
		wander := (prn(idx, d.tick, d.seed) - 0.5) * 0.4
		prop.Heading += wander
		if mag := float32(math.Hypot(float64(fx), float64(fy))); mag > 1e-4 {
			flowHeading := float32(math.Atan2(float64(fy), float64(fx)))
			prop.Heading += angleDiff(flowHeading, prop.Heading) * d.flowBias * dt
		}

		sin, cos := math.Sincos(float64(prop.Heading))
		vel.X = float32(cos) * prop.Thrust
		vel.Y = float32(sin) * prop.Thrust

		pos.X += (fx + vel.X) * dt
		pos.Y += (fy + vel.Y) * dt
		if pos.X < 1 {
			pos.X = 1
			prop.Heading = 0
		} else if pos.X > d.w-2 {
			pos.X = d.w - 2
			prop.Heading = math.Pi
		}
		if pos.Y < 1 {
			pos.Y = 1
			prop.Heading = math.Pi / 2
		} else if pos.Y > d.h-2 {
			pos.Y = d.h - 2
			prop.Heading = -math.Pi / 2
		}

		// Swimming pushes water the other way.
		d.pushes = append(d.pushes, forcePush{
			x: pos.X, y: pos.Y,
			fx: -vel.X, fy: -vel.Y,
		})
		idx++
	}

	// Concurrent accumulation; the accumulator is the one write-shared
	// structure in the solver and this is its intended use.
	acc := s.Forces()
	const workers = 4
	chunk := (len(d.pushes) + workers - 1) / workers
	var wg sync.WaitGroup
	for start := 0; start < len(d.pushes); start += chunk {
		end := start + chunk
		if end > len(d.pushes) {
			end = len(d.pushes)
		}
		wg.Add(1)
		go func(batch []forcePush) {
			defer wg.Done()
			for _, fp := range batch {
				acc.AddAt(fp.x, fp.y, fp.fx, fp.fy)
			}
		}(d.pushes[start:end])
	}
	wg.Wait()
}

// Count returns the live drifter count.
func (d *Drifters) Count() int {
	n := 0
	query := d.filter.Query()
	for query.Next() {
		n++
	}
	return n
}

// angleDiff returns the signed shortest rotation from b to a.
func angleDiff(a, b float32) float32 {
	diff := float64(a - b)
	for diff > math.Pi {
		diff -= 2 * math.Pi
	}
	for diff < -math.Pi {
		diff += 2 * math.Pi
	}
	return float32(diff)
}
