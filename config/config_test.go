package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/undertow/fluid"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") failed: %v", err)
	}

	if cfg.Grid.Width != 128 || cfg.Grid.Height != 128 {
		t.Errorf("default grid = %dx%d, want 128x128", cfg.Grid.Width, cfg.Grid.Height)
	}
	if cfg.Solver.JacobiIters != 31 {
		t.Errorf("default jacobi_iters = %d, want 31", cfg.Solver.JacobiIters)
	}
	if math.Abs(cfg.Solver.Decay-0.9995) > 1e-9 {
		t.Errorf("default decay = %v, want 0.9995", cfg.Solver.Decay)
	}
	if len(cfg.Emitters) != 2 {
		t.Errorf("default emitter count = %d, want 2", len(cfg.Emitters))
	}
	if cfg.Derived.Walls != fluid.WallFreeSlip {
		t.Error("default walls should parse to free-slip")
	}
}

func TestLoadOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := []byte("solver:\n  decay: 0.99\n  walls: no_slip\ngrid:\n  width: 64\n")
	if err := os.WriteFile(path, body, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load(%q) failed: %v", path, err)
	}

	if cfg.Grid.Width != 64 {
		t.Errorf("overridden width = %d, want 64", cfg.Grid.Width)
	}
	// Untouched fields keep their defaults.
	if cfg.Grid.Height != 128 {
		t.Errorf("height = %d, want default 128", cfg.Grid.Height)
	}
	if math.Abs(cfg.Solver.Decay-0.99) > 1e-9 {
		t.Errorf("overridden decay = %v, want 0.99", cfg.Solver.Decay)
	}
	if cfg.Derived.Walls != fluid.WallNoSlip {
		t.Error("walls override not parsed to no-slip")
	}
}

func TestLoadClampsGridFloors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := []byte("grid:\n  width: 2\n  height: 0\n  dye_scale: 0\n")
	if err := os.WriteFile(path, body, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Grid.Width != 8 || cfg.Grid.Height != 8 {
		t.Errorf("grid floors not applied: %dx%d", cfg.Grid.Width, cfg.Grid.Height)
	}
	if cfg.Grid.DyeScale != 1 {
		t.Errorf("dye_scale floor not applied: %d", cfg.Grid.DyeScale)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/does/not/exist.yaml"); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestDerivedParams(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}

	p := cfg.Derived.Params
	if math.Abs(float64(p.DT)-cfg.Solver.DT) > 1e-6 {
		t.Errorf("derived DT = %v, want %v", p.DT, cfg.Solver.DT)
	}
	if p.JacobiIters != cfg.Solver.JacobiIters {
		t.Errorf("derived JacobiIters = %d, want %d", p.JacobiIters, cfg.Solver.JacobiIters)
	}
	if p.EscapeRate[2] != float32(cfg.Transport.EscapeRate[2]) {
		t.Error("escape rates not carried into derived params")
	}
}

func TestFluidEmitters(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}

	ems := cfg.FluidEmitters()
	if len(ems) != len(cfg.Emitters) {
		t.Fatalf("emitter count = %d, want %d", len(ems), len(cfg.Emitters))
	}
	for i, e := range ems {
		src := cfg.Emitters[i]
		if e.Enabled != src.Enabled {
			t.Errorf("emitter %d enabled mismatch", i)
		}
		if math.Abs(float64(e.Strength)-src.Strength) > 1e-6 {
			t.Errorf("emitter %d strength = %v, want %v", i, e.Strength, src.Strength)
		}
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML failed: %v", err)
	}

	back, err := Load(path)
	if err != nil {
		t.Fatalf("reloading written config failed: %v", err)
	}
	if back.Grid.Width != cfg.Grid.Width || back.Solver.JacobiIters != cfg.Solver.JacobiIters {
		t.Error("round-tripped config differs from original")
	}
}
