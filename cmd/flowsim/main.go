// Command flowsim runs the flow field headless: terrain, solver, emitters
// and a drifter population, with windowed telemetry to slog and CSV.
package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/pthm-cable/undertow/config"
	"github.com/pthm-cable/undertow/fluid"
	"github.com/pthm-cable/undertow/telemetry"
	"github.com/pthm-cable/undertow/terrain"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	maxTicks := flag.Int("max-ticks", 3600, "Stop after N ticks")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot (empty = config value)")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	dir := cfg.Telemetry.OutputDir
	if *outputDir != "" {
		dir = *outputDir
	}
	output, err := telemetry.NewOutputManager(dir)
	if err != nil {
		slog.Error("failed to set up output", "error", err)
		os.Exit(1)
	}
	defer output.Close()
	if err := output.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
		os.Exit(1)
	}

	seabed := terrain.New(cfg.Grid.Width, cfg.Grid.Height, cfg.Terrain.Seed, terrain.Options{
		Scale:      cfg.Terrain.Scale,
		Octaves:    cfg.Terrain.Octaves,
		Lacunarity: cfg.Terrain.Lacunarity,
		Gain:       cfg.Terrain.Gain,
		Relief:     cfg.Terrain.Relief,
	})

	chem := fluid.NewChemField(cfg.Grid.Width*cfg.Grid.DyeScale, cfg.Grid.Height*cfg.Grid.DyeScale)
	seedChemistry(chem, seabed, cfg.Grid.DyeScale)

	solver := fluid.NewSolver(cfg.Grid.Width, cfg.Grid.Height, cfg.Grid.DyeScale, seabed.Slope(), chem)
	emitters := cfg.FluidEmitters()

	drifters := NewDrifters(
		cfg.Grid.Width, cfg.Grid.Height,
		cfg.Drifters.Count,
		float32(cfg.Drifters.Thrust),
		float32(cfg.Drifters.FlowBias),
		cfg.Drifters.Seed,
	)

	collector := telemetry.NewCollector(cfg.Telemetry.WindowSize, cfg.Derived.DT32)
	perf := telemetry.NewPerfCollector(cfg.Telemetry.WindowSize)

	slog.Info("starting",
		"grid", cfg.Grid.Width*cfg.Grid.Height,
		"dye_scale", cfg.Grid.DyeScale,
		"drifters", drifters.Count(),
		"emitters", len(emitters),
		"ticks", *maxTicks,
	)

	params := cfg.Derived.Params
	for tick := 0; tick < *maxTicks; tick++ {
		perf.StartTick()
		params.Tick = int32(tick)
		params.Time = float32(tick) * params.DT

		perf.StartPhase(telemetry.PhaseAgents)
		drifters.Step(solver, params.DT)

		perf.StartPhase(telemetry.PhaseSolver)
		diag := solver.Step(params, emitters)

		perf.StartPhase(telemetry.PhaseTelemetry)
		fs := telemetry.FrameStats{
			Tick:           int32(tick),
			KineticEnergy:  solver.KineticEnergy(),
			MaxDivergence:  float64(solver.MaxDivergence()),
			MaxSpeed:       float64(solver.MaxSpeed()),
			SanitizedCells: diag.SanitizedForces,
		}
		for c := 0; c < fluid.DyeChannels; c++ {
			fs.DyeTotal[c] = solver.DyeTotal(c)
		}
		for c := 0; c < fluid.ChemChannels; c++ {
			fs.ChemTotal[c] = solver.ChemTotal(c)
		}

		if ws, done := collector.Record(fs); done {
			if err := output.WriteTelemetry(ws); err != nil {
				slog.Error("telemetry write failed", "error", err)
			}
			if err := output.WritePerf(perf.Stats(), ws.WindowEndTick); err != nil {
				slog.Error("perf write failed", "error", err)
			}
		}
		perf.EndTick()

		if cfg.Telemetry.LogEvery > 0 && tick%cfg.Telemetry.LogEvery == 0 {
			slog.Info("tick",
				"t", tick,
				"ke", fs.KineticEnergy,
				"max_div", fs.MaxDivergence,
				"max_speed", fs.MaxSpeed,
				"sanitized", fs.SanitizedCells,
				"nutrient_dye", fs.DyeTotal[0],
				"nutrient_chem", fs.ChemTotal[0],
			)
			perf.Stats().LogStats()
		}
	}

	slog.Info("done", "ticks", *maxTicks)
}

// seedChemistry fills the reservoir from the terrain: nutrient pools in the
// basins, poison seams along the steepest slopes.
func seedChemistry(chem *fluid.ChemField, seabed *terrain.Field, scale int) {
	for y := 0; y < chem.H; y++ {
		for x := 0; x < chem.W; x++ {
			tx, ty := x/scale, y/scale
			i := (y*chem.W + x) * fluid.ChemChannels

			// Low ground collects nutrient.
			h := seabed.Height(tx, ty)
			if h < 0.45 {
				chem.V[i] = (0.45 - h) * 2
				if chem.V[i] > 1 {
					chem.V[i] = 1
				}
			}

			// Steep faces leach poison.
			sl := seabed.SlopeAt(tx, ty)
			if sl > 0.3 && sl < 1.5 {
				chem.V[i+1] = (sl - 0.3) * 0.5
				if chem.V[i+1] > 1 {
					chem.V[i+1] = 1
				}
			}
		}
	}
}
