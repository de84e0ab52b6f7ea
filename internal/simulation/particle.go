package simulation

import (
	"fmt"

	"fluid-sim/internal/common"
)

// Particle is a single fluid element. Records are owned by the Simulation
// and handed out only as copies.
type Particle struct {
	Position     common.Vector2
	Velocity     common.Vector2
	Acceleration common.Vector2
	Mass         float64
	Density      float64
}

// NewParticle creates a particle at rest.
func NewParticle(pos common.Vector2, mass float64) Particle {
	return Particle{Position: pos, Mass: mass}
}

// String representation for logging
func (p Particle) String() string {
	return fmt.Sprintf("Particle Pos: %s Vel: %s Density: %.4f",
		common.Format(p.Position), common.Format(p.Velocity), p.Density)
}

// Snapshot is an immutable copy of the particle state after a complete step.
type Snapshot struct {
	Step        int
	Time        float64 // simulated seconds
	RestDensity float64
	Particles   []Particle
}

// Positions returns the particle positions in insertion order.
func (s Snapshot) Positions() []common.Vector2 {
	positions := make([]common.Vector2, len(s.Particles))
	for i, p := range s.Particles {
		positions[i] = p.Position
	}
	return positions
}
