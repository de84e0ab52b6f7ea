package simulation

import (
	"fmt"
	"math"
	"time"
)

// Projection selects how the scalar pressure slope is turned into a force.
type Projection string

const (
	// ProjectVector multiplies the slope by the unit vector between the pair.
	ProjectVector Projection = "vector"
	// ProjectLegacy reproduces the first version of the solver: the pair's
	// derivative of the legacy pressure gradient is added to both force
	// components. Kept for parity runs.
	ProjectLegacy Projection = "legacy"
)

// Config carries every physical and layout constant of a run.
type Config struct {
	// Layout: ParticleCount particles, GridWidth per row, rows growing
	// upwards from the origin.
	ParticleCount int     `mapstructure:"particle_count"`
	GridWidth     int     `mapstructure:"grid_width"`
	OriginX       float64 `mapstructure:"origin_x"`
	OriginY       float64 `mapstructure:"origin_y"`
	SpacingX      float64 `mapstructure:"spacing_x"`
	SpacingY      float64 `mapstructure:"spacing_y"`
	Mass          float64 `mapstructure:"mass"`

	SupportRadius    float64    `mapstructure:"support_radius"`
	Gravity          float64    `mapstructure:"gravity"`
	Viscosity        float64    `mapstructure:"viscosity"`
	SurfaceTension   float64    `mapstructure:"surface_tension"`
	Stiffness        float64    `mapstructure:"stiffness"`
	SurfaceThreshold float64    `mapstructure:"surface_threshold"`
	Projection       Projection `mapstructure:"pressure_projection"`

	// Container: floor, left and right walls. There is no ceiling.
	Floor       float64 `mapstructure:"floor"`
	LeftWall    float64 `mapstructure:"left_wall"`
	RightWall   float64 `mapstructure:"right_wall"`
	Restitution float64 `mapstructure:"restitution"`

	TimeStep time.Duration `mapstructure:"time_step"`
}

// DefaultConfig returns the parameters of the reference dam: 300 particles
// in a 20x15 block dropped into a 300 unit wide container.
func DefaultConfig() Config {
	return Config{
		ParticleCount:    300,
		GridWidth:        20,
		OriginX:          100,
		OriginY:          100,
		SpacingX:         10,
		SpacingY:         10,
		Mass:             1,
		SupportRadius:    10,
		Gravity:          9.8,
		Viscosity:        10,
		SurfaceTension:   1000,
		Stiffness:        100000,
		SurfaceThreshold: 0.25,
		Projection:       ProjectVector,
		Floor:            40,
		LeftWall:         50,
		RightWall:        350,
		Restitution:      0.8,
		TimeStep:         100 * time.Millisecond,
	}
}

// GridHeight returns the number of particle rows.
func (c Config) GridHeight() int {
	if c.GridWidth <= 0 {
		return 0
	}
	return c.ParticleCount / c.GridWidth
}

// Validate checks the configuration and returns a *ConfigError for the first
// problem found.
func (c Config) Validate() error {
	if c.ParticleCount <= 0 {
		return newConfigError("particle_count", fmt.Sprintf("must be positive, got %d", c.ParticleCount))
	}
	if c.GridWidth <= 0 {
		return newConfigError("grid_width", fmt.Sprintf("must be positive, got %d", c.GridWidth))
	}
	if c.ParticleCount%c.GridWidth != 0 {
		return newConfigError("particle_count",
			fmt.Sprintf("%d particles do not fill rows of %d", c.ParticleCount, c.GridWidth))
	}

	positive := []struct {
		field string
		value float64
	}{
		{"support_radius", c.SupportRadius},
		{"spacing_x", c.SpacingX},
		{"spacing_y", c.SpacingY},
		{"mass", c.Mass},
		{"surface_threshold", c.SurfaceThreshold},
	}
	for _, p := range positive {
		if !(p.value > 0) || math.IsInf(p.value, 0) {
			return newConfigError(p.field, fmt.Sprintf("must be positive and finite, got %v", p.value))
		}
	}

	finite := []struct {
		field string
		value float64
	}{
		{"origin_x", c.OriginX},
		{"origin_y", c.OriginY},
		{"gravity", c.Gravity},
		{"viscosity", c.Viscosity},
		{"surface_tension", c.SurfaceTension},
		{"stiffness", c.Stiffness},
		{"floor", c.Floor},
		{"left_wall", c.LeftWall},
		{"right_wall", c.RightWall},
	}
	for _, f := range finite {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return newConfigError(f.field, fmt.Sprintf("must be finite, got %v", f.value))
		}
	}

	if c.LeftWall >= c.RightWall {
		return newConfigError("left_wall",
			fmt.Sprintf("left wall %v must be left of right wall %v", c.LeftWall, c.RightWall))
	}
	if c.Restitution < 0 || c.Restitution > 1 || math.IsNaN(c.Restitution) {
		return newConfigError("restitution", fmt.Sprintf("must be within [0, 1], got %v", c.Restitution))
	}
	if c.TimeStep <= 0 {
		return newConfigError("time_step", fmt.Sprintf("must be positive, got %s", c.TimeStep))
	}
	switch c.Projection {
	case ProjectVector, ProjectLegacy:
	default:
		return newConfigError("pressure_projection",
			fmt.Sprintf("unknown mode %q (want %q or %q)", c.Projection, ProjectVector, ProjectLegacy))
	}
	return nil
}
