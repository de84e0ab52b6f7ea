// Package diagnostics summarizes the state of a fluid snapshot: density
// statistics, deviation from rest density, kinetic energy and the shape of
// the fluid body.
package diagnostics

import (
	"errors"
	"fmt"
	"math"

	"fluid-sim/internal/common"
	"fluid-sim/internal/simulation"

	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrNoParticles is returned for an empty snapshot.
	ErrNoParticles = errors.New("diagnostics: snapshot has no particles")
	// ErrNonFinite means a position, velocity or density became NaN or Inf.
	ErrNonFinite = errors.New("diagnostics: non-finite particle state")
)

// Report contains the summary statistics of one snapshot.
type Report struct {
	Step int
	Time float64

	MeanDensity   float64
	StdDevDensity float64
	MinDensity    float64
	MaxDensity    float64
	// DensityError is ||ρ - ρ0|| / sqrt(n), the RMS deviation from rest density.
	DensityError float64

	KineticEnergy float64
	MaxSpeed      float64
	Centroid      common.Vector2
}

// Summarize computes a Report for the snapshot. It fails with ErrNonFinite
// when the simulation has diverged.
func Summarize(snap simulation.Snapshot) (Report, error) {
	n := len(snap.Particles)
	if n == 0 {
		return Report{}, ErrNoParticles
	}

	densities := make([]float64, n)
	speeds := make([]float64, n)
	xs := make([]float64, n)
	ys := make([]float64, n)
	masses := make([]float64, n)
	kinetic := 0.0
	for i, p := range snap.Particles {
		if !common.IsFinite(p.Position) || !common.IsFinite(p.Velocity) ||
			math.IsNaN(p.Density) || math.IsInf(p.Density, 0) {
			return Report{}, fmt.Errorf("%w: particle %d at step %d: %s", ErrNonFinite, i, snap.Step, p)
		}
		densities[i] = p.Density
		speeds[i] = common.Norm(p.Velocity)
		xs[i], ys[i] = p.Position.X, p.Position.Y
		masses[i] = p.Mass
		kinetic += 0.5 * p.Mass * common.NormSq(p.Velocity)
	}

	mean, std := stat.MeanStdDev(densities, nil)
	if n == 1 {
		std = 0
	}

	// Residual vector ρ - ρ0
	deviation := make([]float64, n)
	copy(deviation, densities)
	floats.AddConst(-snap.RestDensity, deviation)
	residualNorm := blas64.Nrm2(blas64.Vector{N: n, Data: deviation, Inc: 1})

	return Report{
		Step:          snap.Step,
		Time:          snap.Time,
		MeanDensity:   mean,
		StdDevDensity: std,
		MinDensity:    floats.Min(densities),
		MaxDensity:    floats.Max(densities),
		DensityError:  residualNorm / math.Sqrt(float64(n)),
		KineticEnergy: kinetic,
		MaxSpeed:      floats.Max(speeds),
		Centroid:      common.NewVector2(stat.Mean(xs, masses), stat.Mean(ys, masses)),
	}, nil
}

// String representation for logging
func (r Report) String() string {
	return fmt.Sprintf("step %d (t=%.2fs): density %.5f±%.5f [%.5f, %.5f] err %.5f, KE %.3f, vmax %.3f, centroid %s",
		r.Step, r.Time, r.MeanDensity, r.StdDevDensity, r.MinDensity, r.MaxDensity,
		r.DensityError, r.KineticEnergy, r.MaxSpeed, common.Format(r.Centroid))
}
