// Package config provides configuration loading and access for the flow
// simulation. Values are merged from embedded defaults and an optional YAML
// file; out-of-range values are clamped at read time rather than rejected.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/undertow/fluid"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Grid      GridConfig      `yaml:"grid"`
	Solver    SolverConfig    `yaml:"solver"`
	Transport TransportConfig `yaml:"transport"`
	Terrain   TerrainConfig   `yaml:"terrain"`
	Emitters  []EmitterConfig `yaml:"emitters"`
	Drifters  DriftersConfig  `yaml:"drifters"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// GridConfig holds the fixed grid dimensions. All grids are allocated once
// at startup; there is no resizing.
type GridConfig struct {
	Width    int `yaml:"width"`
	Height   int `yaml:"height"`
	DyeScale int `yaml:"dye_scale"` // dye cells per velocity cell
}

// SolverConfig holds the velocity solve parameters.
type SolverConfig struct {
	DT           float64 `yaml:"dt"`
	Decay        float64 `yaml:"decay"`
	Viscosity    float64 `yaml:"viscosity"`
	VorticityEps float64 `yaml:"vorticity_eps"`
	ObstacleK    float64 `yaml:"obstacle_k"`
	JacobiIters  int     `yaml:"jacobi_iters"`
	Walls        string  `yaml:"walls"` // "free_slip" or "no_slip"
	Disabled     bool    `yaml:"disabled"`
}

// TransportConfig holds the dye/chemistry exchange parameters.
type TransportConfig struct {
	LiftMin      float64    `yaml:"lift_min"`
	LiftGain     float64    `yaml:"lift_gain"`
	SedimentMin  float64    `yaml:"sediment_min"`
	SedimentGain float64    `yaml:"sediment_gain"`
	TransferRate float64    `yaml:"transfer_rate"`
	OozeRate     float64    `yaml:"ooze_rate"`
	DepositScale float64    `yaml:"deposit_scale"`
	EscapeRate   [4]float64 `yaml:"escape_rate"`
}

// TerrainConfig holds terrain generation parameters.
type TerrainConfig struct {
	Seed       int64   `yaml:"seed"`
	Scale      float64 `yaml:"scale"`
	Octaves    int     `yaml:"octaves"`
	Lacunarity float64 `yaml:"lacunarity"`
	Gain       float64 `yaml:"gain"`
	Relief     float64 `yaml:"relief"`
}

// EmitterConfig describes one fumarole.
type EmitterConfig struct {
	Enabled  bool       `yaml:"enabled"`
	X        float64    `yaml:"x"` // fractional position in [0,1]
	Y        float64    `yaml:"y"`
	DirX     float64    `yaml:"dir_x"`
	DirY     float64    `yaml:"dir_y"`
	Strength float64    `yaml:"strength"`
	Radius   float64    `yaml:"radius"` // velocity-grid cells
	DyeRate  [4]float64 `yaml:"dye_rate"`
	Jitter   float64    `yaml:"jitter"`
}

// DriftersConfig holds the demo agent population settings for cmd/flowsim.
type DriftersConfig struct {
	Count    int     `yaml:"count"`
	Thrust   float64 `yaml:"thrust"`
	Seed     int64   `yaml:"seed"`
	FlowBias float64 `yaml:"flow_bias"` // how strongly drifters steer with the current
}

// TelemetryConfig holds CSV output settings.
type TelemetryConfig struct {
	OutputDir  string `yaml:"output_dir"` // empty disables file output
	WindowSize int    `yaml:"window_size"`
	LogEvery   int    `yaml:"log_every"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32   float32        // Solver.DT as float32
	Walls  fluid.WallMode // parsed wall mode
	Params fluid.Params   // per-tick snapshot template (Time/Tick filled by the loop)
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if
// path is empty. Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into the same struct - only overwrites fields present in
		// the file.
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()
	return cfg, nil
}

// computeDerived calculates values derived from loaded config. Grid
// dimensions get floors instead of errors; the simulation must always be
// able to start.
func (c *Config) computeDerived() {
	if c.Grid.Width < 8 {
		c.Grid.Width = 8
	}
	if c.Grid.Height < 8 {
		c.Grid.Height = 8
	}
	if c.Grid.DyeScale < 1 {
		c.Grid.DyeScale = 1
	}
	if c.Telemetry.WindowSize < 1 {
		c.Telemetry.WindowSize = 60
	}

	c.Derived.DT32 = float32(c.Solver.DT)

	c.Derived.Walls = fluid.WallFreeSlip
	if c.Solver.Walls == "no_slip" {
		c.Derived.Walls = fluid.WallNoSlip
	}

	p := fluid.Params{
		DT:           float32(c.Solver.DT),
		Decay:        float32(c.Solver.Decay),
		Viscosity:    float32(c.Solver.Viscosity),
		VorticityEps: float32(c.Solver.VorticityEps),
		ObstacleK:    float32(c.Solver.ObstacleK),
		JacobiIters:  c.Solver.JacobiIters,
		Walls:        c.Derived.Walls,
		LiftMin:      float32(c.Transport.LiftMin),
		LiftGain:     float32(c.Transport.LiftGain),
		SedimentMin:  float32(c.Transport.SedimentMin),
		SedimentGain: float32(c.Transport.SedimentGain),
		TransferRate: float32(c.Transport.TransferRate),
		OozeRate:     float32(c.Transport.OozeRate),
		DepositScale: float32(c.Transport.DepositScale),
		Disabled:     c.Solver.Disabled,
	}
	for i, r := range c.Transport.EscapeRate {
		p.EscapeRate[i] = float32(r)
	}
	c.Derived.Params = p
}

// FluidEmitters converts the configured emitter list into solver emitters.
func (c *Config) FluidEmitters() []fluid.Emitter {
	out := make([]fluid.Emitter, 0, len(c.Emitters))
	for _, e := range c.Emitters {
		fe := fluid.Emitter{
			Enabled:  e.Enabled,
			X:        float32(e.X),
			Y:        float32(e.Y),
			DirX:     float32(e.DirX),
			DirY:     float32(e.DirY),
			Strength: float32(e.Strength),
			Radius:   float32(e.Radius),
			Jitter:   float32(e.Jitter),
		}
		for i, r := range e.DyeRate {
			fe.DyeRate[i] = float32(r)
		}
		out = append(out, fe)
	}
	return out
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
