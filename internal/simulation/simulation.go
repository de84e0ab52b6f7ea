package simulation

import (
	"fmt"
	"io"
	"log"

	"fluid-sim/internal/common"
	"fluid-sim/internal/kernel"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Simulation holds the state of a 2-D SPH fluid in a rectangular container.
// It is not safe for concurrent use; see driver.Runner for that.
type Simulation struct {
	id          string
	cfg         Config
	kernels     *kernel.Library
	walls       walls
	particles   []Particle
	restDensity float64 // density at which pressure is zero, fixed after initialization

	steps          int
	simulationTime float64 // total elapsed simulated seconds

	logger *log.Logger
}

// NewSimulation validates cfg, lays out the particle grid and calibrates the
// rest density.
func NewSimulation(cfg Config) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return newSimulationFromParticles(cfg, gridLayout(cfg))
}

// newSimulationFromParticles builds a simulation over an explicit particle set
// and sets the rest density to the largest initial density.
func newSimulationFromParticles(cfg Config, particles []Particle) (*Simulation, error) {
	if len(particles) == 0 {
		return nil, newConfigError("particle_count", "no particles to simulate")
	}
	kernels, err := kernel.New(cfg.SupportRadius)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	s := &Simulation{
		id:        fmt.Sprintf("sph-%s", uuid.NewString()[:8]),
		cfg:       cfg,
		kernels:   kernels,
		walls:     wallsFromConfig(cfg),
		particles: particles,
		logger:    log.New(io.Discard, "", 0),
	}
	s.updateDensities()
	s.restDensity = floats.Max(s.densities())
	return s, nil
}

// gridLayout places the particles row by row starting at the origin.
func gridLayout(cfg Config) []Particle {
	width, height := cfg.GridWidth, cfg.GridHeight()
	particles := make([]Particle, 0, width*height)
	for i := 0; i < height; i++ {
		for j := 0; j < width; j++ {
			pos := common.NewVector2(
				cfg.OriginX+cfg.SpacingX*float64(j),
				cfg.OriginY+cfg.SpacingY*float64(i),
			)
			particles = append(particles, NewParticle(pos, cfg.Mass))
		}
	}
	return particles
}

// SetLogger directs the simulation's log output to l.
func (s *Simulation) SetLogger(l *log.Logger) {
	if l == nil {
		l = log.New(io.Discard, "", 0)
	}
	s.logger = l
}

// ID returns the unique identifier of the run.
func (s *Simulation) ID() string {
	return s.id
}

// Config returns the configuration the simulation was built with.
func (s *Simulation) Config() Config {
	return s.cfg
}

// RestDensity returns the density calibrated at initialization.
func (s *Simulation) RestDensity() float64 {
	return s.restDensity
}

// Steps returns the number of completed steps.
func (s *Simulation) Steps() int {
	return s.steps
}

// Time returns the simulated time in seconds.
func (s *Simulation) Time() float64 {
	return s.simulationTime
}

// Particles returns a copy of all particles in insertion order.
func (s *Simulation) Particles() []Particle {
	out := make([]Particle, len(s.particles))
	copy(out, s.particles)
	return out
}

// Snapshot returns an immutable copy of the current state.
func (s *Simulation) Snapshot() Snapshot {
	return Snapshot{
		Step:        s.steps,
		Time:        s.simulationTime,
		RestDensity: s.restDensity,
		Particles:   s.Particles(),
	}
}

// Step advances the fluid by dt seconds: densities, forces, velocities,
// positions, then wall collisions.
func (s *Simulation) Step(dt float64) {
	s.updateDensities()

	for i := range s.particles {
		s.particles[i].Acceleration = s.acceleration(i)
	}

	// Semi-implicit Euler: the new velocity moves the particle.
	for i := range s.particles {
		p := &s.particles[i]
		p.Velocity = common.Add(p.Velocity, common.MultiplyByScalar(p.Acceleration, dt))
		p.Acceleration = common.Zero
	}
	for i := range s.particles {
		p := &s.particles[i]
		p.Position = common.Add(p.Position, common.MultiplyByScalar(p.Velocity, dt))
	}

	for i := range s.particles {
		s.walls.resolve(&s.particles[i])
	}

	s.steps++
	s.simulationTime += dt
}

// Run executes numSteps steps of the configured time step, logging the state
// after each one.
func (s *Simulation) Run(numSteps int) {
	dt := s.cfg.TimeStep.Seconds()
	s.logger.Printf("Starting simulation %s: %d particles, dt=%s, rest density %.5f",
		s.id, len(s.particles), s.cfg.TimeStep, s.restDensity)
	for i := 0; i < numSteps; i++ {
		s.Step(dt)
		s.logger.Printf("  %s", s)
	}
	s.logger.Printf("Simulation %s finished after %d steps", s.id, s.steps)
}

// updateDensities sums the kernel-weighted mass of every particle around
// every particle, itself included.
func (s *Simulation) updateDensities() {
	for i := range s.particles {
		p := &s.particles[i]
		sum := 0.0
		for j := range s.particles {
			q := &s.particles[j]
			sum += q.Mass * s.kernels.Density(p.Position.X-q.Position.X, p.Position.Y-q.Position.Y)
		}
		p.Density = sum
	}
}

func (s *Simulation) densities() []float64 {
	d := make([]float64, len(s.particles))
	for i, p := range s.particles {
		d[i] = p.Density
	}
	return d
}

// String representation for logging
func (s *Simulation) String() string {
	return fmt.Sprintf("Simulation[%s] Step: %d Time: %.2fs Particles: %d Mean density: %.5f (rest %.5f)",
		s.id, s.steps, s.simulationTime, len(s.particles), stat.Mean(s.densities(), nil), s.restDensity)
}
