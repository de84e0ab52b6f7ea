// Package driver advances a simulation on its own goroutine and publishes a
// consistent snapshot after every complete step.
package driver

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"fluid-sim/internal/simulation"
)

// Sink receives every published snapshot. Returning an error stops the runner.
type Sink interface {
	Publish(snap simulation.Snapshot) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(snap simulation.Snapshot) error

// Publish calls f(snap).
func (f SinkFunc) Publish(snap simulation.Snapshot) error {
	return f(snap)
}

// Runner owns a Stepper. Only the goroutine calling Run, RunSteps or StepOnce
// touches the simulation; readers go through Latest.
type Runner struct {
	sim      simulation.Stepper
	dt       float64       // simulated seconds per step
	interval time.Duration // wall-clock time between steps in Run
	sinks    []Sink

	latest atomic.Pointer[simulation.Snapshot]
}

// NewRunner creates a runner stepping sim by dt seconds every interval.
func NewRunner(sim simulation.Stepper, dt float64, interval time.Duration, sinks ...Sink) (*Runner, error) {
	if sim == nil {
		return nil, fmt.Errorf("runner needs a simulation")
	}
	if !(dt > 0) {
		return nil, fmt.Errorf("time step must be positive, got %v", dt)
	}
	if interval <= 0 {
		return nil, fmt.Errorf("step interval must be positive, got %s", interval)
	}
	r := &Runner{sim: sim, dt: dt, interval: interval, sinks: sinks}
	initial := sim.Snapshot()
	r.latest.Store(&initial)
	return r, nil
}

// Latest returns the most recently published snapshot. It never observes a
// partially applied step.
func (r *Runner) Latest() simulation.Snapshot {
	return *r.latest.Load()
}

// StepOnce advances the simulation by one step and publishes the result.
func (r *Runner) StepOnce() (simulation.Snapshot, error) {
	r.sim.Step(r.dt)
	snap := r.sim.Snapshot()
	r.latest.Store(&snap)
	for _, s := range r.sinks {
		if err := s.Publish(snap); err != nil {
			return snap, fmt.Errorf("publishing step %d: %w", snap.Step, err)
		}
	}
	return snap, nil
}

// Run steps at the configured cadence until ctx is canceled or a sink fails.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := r.StepOnce(); err != nil {
				return err
			}
		}
	}
}

// RunSteps performs numSteps steps back to back, ignoring the cadence.
func (r *Runner) RunSteps(ctx context.Context, numSteps int) error {
	for i := 0; i < numSteps; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := r.StepOnce(); err != nil {
			return err
		}
	}
	return nil
}
