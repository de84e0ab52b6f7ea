package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"fluid-sim/internal/simulation"

	"github.com/spf13/pflag"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != simulation.DefaultConfig() {
		t.Errorf("Load() = %+v, want defaults %+v", cfg, simulation.DefaultConfig())
	}
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, "sph.yaml", `
particle_count: 40
grid_width: 10
time_step: 50ms
pressure_projection: legacy
restitution: 0.5
`)
	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ParticleCount != 40 || cfg.GridWidth != 10 {
		t.Errorf("layout = %d/%d", cfg.ParticleCount, cfg.GridWidth)
	}
	if cfg.TimeStep != 50*time.Millisecond {
		t.Errorf("time step = %s", cfg.TimeStep)
	}
	if cfg.Projection != simulation.ProjectLegacy {
		t.Errorf("projection = %q", cfg.Projection)
	}
	if cfg.Restitution != 0.5 || cfg.Gravity != simulation.DefaultConfig().Gravity {
		t.Errorf("restitution/gravity = %v/%v", cfg.Restitution, cfg.Gravity)
	}
}

func TestFlagsOverrideEnvAndFile(t *testing.T) {
	path := writeFile(t, "sph.toml", "gravity = 1.5\nviscosity = 4.0\nstiffness = 500.0\n")
	t.Setenv("SPH_VISCOSITY", "2")
	t.Setenv("SPH_STIFFNESS", "700")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	if err := fs.Parse([]string{"--stiffness=900", "--time-step=20ms"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	cfg, err := Load(path, fs)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Gravity != 1.5 {
		t.Errorf("gravity = %v, want file value 1.5", cfg.Gravity)
	}
	if cfg.Viscosity != 2 {
		t.Errorf("viscosity = %v, want env value 2", cfg.Viscosity)
	}
	if cfg.Stiffness != 900 {
		t.Errorf("stiffness = %v, want flag value 900", cfg.Stiffness)
	}
	if cfg.TimeStep != 20*time.Millisecond {
		t.Errorf("time step = %s, want 20ms", cfg.TimeStep)
	}
	if cfg.ParticleCount != 300 {
		t.Errorf("particle count = %d, want default", cfg.ParticleCount)
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	path := writeFile(t, "bad.yaml", "particle_count: 7\ngrid_width: 2\n")
	_, err := Load(path, nil)
	if !errors.Is(err, simulation.ErrInvalidConfig) {
		t.Fatalf("error = %v, want ErrInvalidConfig", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil); err == nil {
		t.Fatal("expected error for missing file")
	}
}
