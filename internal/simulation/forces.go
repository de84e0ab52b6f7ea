package simulation

import (
	"math"

	"fluid-sim/internal/common"
)

// acceleration sums the pressure, viscosity, external and surface tension
// forces on particle i and divides by its density. Densities must be current.
func (s *Simulation) acceleration(i int) common.Vector2 {
	force := s.pressureForce(i)
	force = common.Add(force, s.viscosityForce(i))
	force = common.Add(force, s.externalForce(i))
	force = common.Add(force, s.surfaceTensionForce(i))
	return common.MultiplyByScalar(force, 1/s.particles[i].Density)
}

func (s *Simulation) pressure(density float64) float64 {
	return s.cfg.Stiffness * (density - s.restDensity)
}

// pressureForce pushes particle i away from neighbours denser than rest and
// pulls it towards sparser ones.
func (s *Simulation) pressureForce(i int) common.Vector2 {
	p := &s.particles[i]
	pressureP := s.pressure(p.Density)

	sumX, sumY := 0.0, 0.0
	for j := range s.particles {
		// Our own particle has no direction to push along
		if j == i {
			continue
		}
		q := &s.particles[j]
		rx, ry := p.Position.X-q.Position.X, p.Position.Y-q.Position.Y
		if !s.kernels.IsWithinSupport(rx, ry) {
			continue
		}
		dist := math.Sqrt(rx*rx + ry*ry)
		if dist == 0 {
			continue
		}

		product := q.Mass * (pressureP + s.pressure(q.Density)) * 0.5 * q.Density

		switch s.cfg.Projection {
		case ProjectLegacy:
			// Derivative of the legacy gradient along the pair, applied to both axes.
			grad := s.kernels.LegacyPressureGradient(rx, ry)
			directional := product * (grad.X*rx/dist + grad.Y*ry/dist)
			sumX += directional
			sumY += directional
		default:
			directional := product * s.kernels.PressureSlope(dist)
			sumX += directional * rx / dist
			sumY += directional * ry / dist
		}
	}
	return common.NewVector2(-sumX, -sumY)
}

// viscosityForce drags particle i towards the velocity of its neighbours.
// The self term is included and contributes nothing.
func (s *Simulation) viscosityForce(i int) common.Vector2 {
	p := &s.particles[i]
	sumX, sumY := 0.0, 0.0
	for j := range s.particles {
		q := &s.particles[j]
		factor := s.kernels.ViscosityLaplacian(p.Position.X-q.Position.X, p.Position.Y-q.Position.Y)
		if factor == 0 {
			continue
		}
		weight := q.Mass / q.Density * factor
		sumX += weight * (q.Velocity.X - p.Velocity.X)
		sumY += weight * (q.Velocity.Y - p.Velocity.Y)
	}
	return common.NewVector2(sumX*s.cfg.Viscosity, sumY*s.cfg.Viscosity)
}

// externalForce is gravity only.
func (s *Simulation) externalForce(i int) common.Vector2 {
	return common.NewVector2(0, -s.cfg.Gravity*s.particles[i].Mass)
}

// colorGradient estimates the gradient of the color field at particle i,
// which points into the fluid near a surface.
func (s *Simulation) colorGradient(i int) common.Vector2 {
	p := &s.particles[i]
	sum := common.Zero
	for j := range s.particles {
		q := &s.particles[j]
		grad := s.kernels.DensityGradient(p.Position.X-q.Position.X, p.Position.Y-q.Position.Y)
		sum = common.Add(sum, common.MultiplyByScalar(grad, q.Mass/q.Density))
	}
	return sum
}

func (s *Simulation) colorLaplacian(i int) float64 {
	p := &s.particles[i]
	sum := 0.0
	for j := range s.particles {
		q := &s.particles[j]
		sum += q.Mass / q.Density * s.kernels.DensityLaplacian(p.Position.X-q.Position.X, p.Position.Y-q.Position.Y)
	}
	return sum
}

// surfaceTensionForce applies −σ·∇²c/|∇c|·∇c where the color gradient is at
// least the configured threshold, and nothing in the interior.
func (s *Simulation) surfaceTensionForce(i int) common.Vector2 {
	n := s.colorGradient(i)
	magN := common.Norm(n)
	if magN < s.cfg.SurfaceThreshold {
		return common.Zero
	}
	scale := -s.cfg.SurfaceTension * s.colorLaplacian(i) / magN
	return common.MultiplyByScalar(n, scale)
}
