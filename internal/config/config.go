// Package config assembles a simulation.Config from defaults, an optional
// config file, SPH_* environment variables and command-line flags, in
// increasing order of precedence.
package config

import (
	"fmt"
	"strings"

	"fluid-sim/internal/simulation"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. SPH_PARTICLE_COUNT.
const EnvPrefix = "SPH"

// defaults maps every configuration key to its default value.
func defaults() map[string]interface{} {
	d := simulation.DefaultConfig()
	return map[string]interface{}{
		"particle_count":      d.ParticleCount,
		"grid_width":          d.GridWidth,
		"origin_x":            d.OriginX,
		"origin_y":            d.OriginY,
		"spacing_x":           d.SpacingX,
		"spacing_y":           d.SpacingY,
		"mass":                d.Mass,
		"support_radius":      d.SupportRadius,
		"gravity":             d.Gravity,
		"viscosity":           d.Viscosity,
		"surface_tension":     d.SurfaceTension,
		"stiffness":           d.Stiffness,
		"surface_threshold":   d.SurfaceThreshold,
		"pressure_projection": string(d.Projection),
		"floor":               d.Floor,
		"left_wall":           d.LeftWall,
		"right_wall":          d.RightWall,
		"restitution":         d.Restitution,
		"time_step":           d.TimeStep,
	}
}

// RegisterFlags adds one flag per configuration key to fs. Flag names use
// dashes, e.g. --particle-count.
func RegisterFlags(fs *pflag.FlagSet) {
	d := simulation.DefaultConfig()
	fs.Int("particle-count", d.ParticleCount, "number of particles, a multiple of --grid-width")
	fs.Int("grid-width", d.GridWidth, "particles per row of the initial block")
	fs.Float64("origin-x", d.OriginX, "x of the first particle")
	fs.Float64("origin-y", d.OriginY, "y of the first particle")
	fs.Float64("spacing-x", d.SpacingX, "horizontal particle spacing")
	fs.Float64("spacing-y", d.SpacingY, "vertical particle spacing")
	fs.Float64("mass", d.Mass, "particle mass")
	fs.Float64("support-radius", d.SupportRadius, "smoothing kernel support radius h")
	fs.Float64("gravity", d.Gravity, "gravitational acceleration")
	fs.Float64("viscosity", d.Viscosity, "viscosity coefficient")
	fs.Float64("surface-tension", d.SurfaceTension, "surface tension coefficient")
	fs.Float64("stiffness", d.Stiffness, "pressure stiffness constant")
	fs.Float64("surface-threshold", d.SurfaceThreshold, "minimum color gradient for surface tension")
	fs.String("pressure-projection", string(d.Projection), "pressure force projection: vector or legacy")
	fs.Float64("floor", d.Floor, "floor height")
	fs.Float64("left-wall", d.LeftWall, "x of the left wall")
	fs.Float64("right-wall", d.RightWall, "x of the right wall")
	fs.Float64("restitution", d.Restitution, "fraction of normal velocity kept after a wall bounce")
	fs.Duration("time-step", d.TimeStep, "simulated time per step")
}

// Load reads the configuration. path may be empty; fs may be nil.
func Load(path string, fs *pflag.FlagSet) (simulation.Config, error) {
	v := viper.New()
	known := defaults()
	for key, value := range known {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return simulation.Config{}, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	if fs != nil {
		var bindErr error
		fs.VisitAll(func(f *pflag.Flag) {
			key := strings.ReplaceAll(f.Name, "-", "_")
			if _, ok := known[key]; !ok || bindErr != nil {
				return
			}
			if err := v.BindPFlag(key, f); err != nil {
				bindErr = fmt.Errorf("binding flag --%s: %w", f.Name, err)
			}
		})
		if bindErr != nil {
			return simulation.Config{}, bindErr
		}
	}

	var cfg simulation.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return simulation.Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
