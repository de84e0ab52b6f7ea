package simulation

// Stepper is the surface a driver needs to advance and observe a simulation.
type Stepper interface {
	// Step advances the state by dt seconds.
	Step(dt float64)
	// Snapshot returns a copy of the state after the last complete step.
	Snapshot() Snapshot
}

var _ Stepper = (*Simulation)(nil)
