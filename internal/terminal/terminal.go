// Package terminal draws the fluid as ASCII art with termbox.
package terminal

import (
	"context"
	"fmt"
	"time"

	"fluid-sim/internal/common"
	"fluid-sim/internal/simulation"
	"fluid-sim/internal/visualization/viewport"

	"github.com/nsf/termbox-go"
)

const (
	wallRune  = '#'
	emptyRune = ' '
)

// densityRunes shades a cell by how many particles fall into it.
var densityRunes = []rune{'.', 'o', 'O', '@'}

// Terminal renders snapshots to the terminal at a fixed cadence.
type Terminal struct {
	source   viewport.SnapshotSource
	cfg      simulation.Config
	interval time.Duration

	backbuf  []termbox.Cell
	bbw, bbh int
}

// New creates a terminal renderer redrawing every interval.
func New(source viewport.SnapshotSource, cfg simulation.Config, interval time.Duration) *Terminal {
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}
	return &Terminal{source: source, cfg: cfg, interval: interval}
}

// Render takes over the terminal until Esc or q is pressed or ctx is done.
func (t *Terminal) Render(ctx context.Context) error {
	if err := termbox.Init(); err != nil {
		return fmt.Errorf("initializing terminal: %w", err)
	}
	defer termbox.Close()
	termbox.SetInputMode(termbox.InputEsc)

	events := make(chan termbox.Event)
	done := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		pollEvents(termbox.PollEvent, events, done)
	}()
	// Runs before Close. done must be closed first so a poller parked on
	// events goes back into PollEvent, where Interrupt is received.
	defer func() {
		close(done)
		termbox.Interrupt()
		<-exited
	}()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	t.reallocBackBuffer(termbox.Size())
	for {
		if err := t.redraw(); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			switch ev.Type {
			case termbox.EventKey:
				if ev.Key == termbox.KeyEsc || ev.Key == termbox.KeyCtrlC || ev.Ch == 'q' {
					return nil
				}
			case termbox.EventResize:
				t.reallocBackBuffer(ev.Width, ev.Height)
			case termbox.EventError:
				return fmt.Errorf("terminal event: %w", ev.Err)
			}
		case <-ticker.C:
		}
	}
}

// pollEvents forwards events from poll until it reports an interrupt. After
// done is closed events are dropped, but polling goes on until the interrupt
// arrives.
func pollEvents(poll func() termbox.Event, events chan<- termbox.Event, done <-chan struct{}) {
	for {
		ev := poll()
		if ev.Type == termbox.EventInterrupt {
			return
		}
		select {
		case events <- ev:
		case <-done:
		}
	}
}

func (t *Terminal) reallocBackBuffer(w, h int) {
	t.bbw, t.bbh = w, h
	t.backbuf = make([]termbox.Cell, w*h)
}

// redraw rasterizes the latest snapshot; the last line holds a status bar.
func (t *Terminal) redraw() error {
	if t.bbw <= 0 || t.bbh <= 1 {
		return nil
	}
	snap := t.source.Latest()
	raster := Rasterize(snap, t.cfg, t.bbw, t.bbh-1)
	for i, r := range raster {
		fg := termbox.ColorBlue
		if r == wallRune {
			fg = termbox.ColorWhite
		}
		t.backbuf[i] = termbox.Cell{Ch: r, Fg: fg, Bg: termbox.ColorDefault}
	}
	status := fmt.Sprintf(" step %d  t=%.2fs  %d particles  [q] quit", snap.Step, snap.Time, len(snap.Particles))
	row := (t.bbh - 1) * t.bbw
	for x := 0; x < t.bbw; x++ {
		ch := emptyRune
		if x < len(status) {
			ch = rune(status[x])
		}
		t.backbuf[row+x] = termbox.Cell{Ch: ch, Fg: termbox.ColorBlack, Bg: termbox.ColorWhite}
	}

	if err := termbox.Clear(termbox.ColorDefault, termbox.ColorDefault); err != nil {
		return err
	}
	copy(termbox.CellBuffer(), t.backbuf)
	return termbox.Flush()
}

// Rasterize draws snap into a width x height grid of runes, row-major, top
// row first. Cells are twice as tall as wide, so the world is projected onto
// a grid of double vertical resolution and folded.
func Rasterize(snap simulation.Snapshot, cfg simulation.Config, width, height int) []rune {
	cells := make([]rune, width*height)
	for i := range cells {
		cells[i] = emptyRune
	}
	if width <= 0 || height <= 0 {
		return cells
	}

	view := viewport.NewViewport(viewport.ContainerBounds(cfg))
	view.SetPadding(0)
	view.Resize(width, height*2)

	cell := func(world common.Vector2) (int, int, bool) {
		x, y := view.Project(world)
		col, row := int(x), int(y)/2
		if x < 0 || y < 0 || col >= width || row >= height {
			return 0, 0, false
		}
		return col, row, true
	}

	counts := make([]int, width*height)
	for _, p := range snap.Particles {
		if col, row, ok := cell(p.Position); ok {
			counts[row*width+col]++
		}
	}
	for i, n := range counts {
		if n == 0 {
			continue
		}
		if n > len(densityRunes) {
			n = len(densityRunes)
		}
		cells[i] = densityRunes[n-1]
	}

	// Walls last so clamped particles do not hide them.
	leftCol, floorRow, _ := cell(common.NewVector2(cfg.LeftWall, cfg.Floor))
	rightCol, _, _ := cell(common.NewVector2(cfg.RightWall, cfg.Floor))
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			if col == leftCol || col == rightCol || row == floorRow {
				if row <= floorRow && col >= leftCol && col <= rightCol {
					cells[row*width+col] = wallRune
				}
			}
		}
	}
	return cells
}
