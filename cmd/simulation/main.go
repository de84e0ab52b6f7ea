package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fluid-sim/internal/config"
	"fluid-sim/internal/diagnostics"
	"fluid-sim/internal/driver"
	"fluid-sim/internal/simulation"
	"fluid-sim/internal/stream"
	"fluid-sim/internal/terminal"
	"fluid-sim/internal/visualization"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var logger = log.New(os.Stderr, "sph: ", log.LstdFlags)

// options shared by every subcommand
type options struct {
	configPath string
	interval   time.Duration // wall-clock time between steps
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "simulation",
		Short:         "2-D smoothed-particle hydrodynamics liquid in a box",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (yaml, toml or json)")
	root.PersistentFlags().DurationVar(&opts.interval, "interval", 10*time.Millisecond, "wall-clock time between steps")
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(
		newWindowCommand(opts),
		newHeadlessCommand(opts),
		newTerminalCommand(opts),
		newServeCommand(opts),
	)
	return root
}

// setup loads the configuration and builds the simulation.
func setup(cmd *cobra.Command, opts *options) (simulation.Config, *simulation.Simulation, error) {
	cfg, err := config.Load(opts.configPath, cmd.Flags())
	if err != nil {
		return cfg, nil, err
	}
	sim, err := simulation.NewSimulation(cfg)
	if err != nil {
		return cfg, nil, fmt.Errorf("creating simulation: %w", err)
	}
	sim.SetLogger(logger)
	logger.Printf("%s", sim)
	return cfg, sim, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// withRunner steps the runner on a background goroutine while front runs on
// the calling goroutine. Whichever finishes first stops the other.
func withRunner(ctx context.Context, runner *driver.Runner, front func(context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := runner.Run(gctx); !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	frontErr := front(gctx)
	cancel()
	if err := g.Wait(); err != nil {
		return err
	}
	return frontErr
}

func newWindowCommand(opts *options) *cobra.Command {
	var width, height int
	cmd := &cobra.Command{
		Use:   "window",
		Short: "Render the fluid in a window",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, sim, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			runner, err := driver.NewRunner(sim, cfg.TimeStep.Seconds(), opts.interval)
			if err != nil {
				return err
			}
			ctx, stop := signalContext()
			defer stop()

			renderer := visualization.NewRenderer(runner, cfg, nil)
			ebiten.SetWindowSize(width, height)
			ebiten.SetWindowTitle("Fluid Simulation")
			// ebiten must own the main goroutine.
			return withRunner(ctx, runner, func(context.Context) error {
				if err := ebiten.RunGame(renderer); err != nil && !errors.Is(err, ebiten.Termination) {
					return err
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&width, "width", 600, "window width in pixels")
	cmd.Flags().IntVar(&height, "height", 600, "window height in pixels")
	return cmd
}

func newHeadlessCommand(opts *options) *cobra.Command {
	var steps, reportEvery int
	var trace bool
	cmd := &cobra.Command{
		Use:   "headless",
		Short: "Step the fluid without rendering and log diagnostics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, sim, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			if trace {
				sim.Run(steps)
				return nil
			}

			monitor := driver.SinkFunc(func(snap simulation.Snapshot) error {
				report, err := diagnostics.Summarize(snap)
				if err != nil {
					return err
				}
				if reportEvery > 0 && snap.Step%reportEvery == 0 {
					logger.Printf("%s", report)
				}
				return nil
			})
			runner, err := driver.NewRunner(sim, cfg.TimeStep.Seconds(), opts.interval, monitor)
			if err != nil {
				return err
			}

			ctx, stop := signalContext()
			defer stop()
			start := time.Now()
			if err := runner.RunSteps(ctx, steps); err != nil {
				return fmt.Errorf("simulation %s: %w", sim.ID(), err)
			}

			final := runner.Latest()
			logger.Printf("%d steps in %s", final.Step, time.Since(start).Round(time.Millisecond))
			if spread, err := diagnostics.ComputeSpread(final); err == nil {
				logger.Printf("fluid body: major %.2f minor %.2f elongation %.2f axis %.2f,%.2f",
					spread.Major, spread.Minor, spread.Elongation(), spread.Axis.X, spread.Axis.Y)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 100, "number of steps to run")
	cmd.Flags().IntVar(&reportEvery, "report-every", 10, "log diagnostics every n steps (0 disables)")
	cmd.Flags().BoolVar(&trace, "trace", false, "log the simulation state after every step")
	return cmd
}

func newTerminalCommand(opts *options) *cobra.Command {
	var refresh time.Duration
	cmd := &cobra.Command{
		Use:   "terminal",
		Short: "Render the fluid as ASCII art in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, sim, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			// termbox owns the screen; keep log lines out of it.
			sim.SetLogger(nil)
			runner, err := driver.NewRunner(sim, cfg.TimeStep.Seconds(), opts.interval)
			if err != nil {
				return err
			}
			ctx, stop := signalContext()
			defer stop()
			term := terminal.New(runner, cfg, refresh)
			return withRunner(ctx, runner, term.Render)
		},
	}
	cmd.Flags().DurationVar(&refresh, "refresh", 50*time.Millisecond, "redraw interval")
	return cmd
}

func newServeCommand(opts *options) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Stream particle positions to websocket clients on /ws",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, sim, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			hub := stream.NewHub(logger)
			defer hub.Close()
			runner, err := driver.NewRunner(sim, cfg.TimeStep.Seconds(), opts.interval, hub)
			if err != nil {
				return err
			}

			ctx, stop := signalContext()
			defer stop()
			return withRunner(ctx, runner, func(ctx context.Context) error {
				return serve(ctx, addr, hub.Handler())
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "localhost:5000", "listen address")
	return cmd
}

// serve runs an HTTP server until ctx is done.
func serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{Addr: addr, Handler: handler}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Printf("streaming on ws://%s/ws", addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
