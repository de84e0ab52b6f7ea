package visualization

import (
	"fmt"
	"image/color"

	"fluid-sim/internal/common"
	"fluid-sim/internal/diagnostics"
	"fluid-sim/internal/simulation"
	"fluid-sim/internal/visualization/viewport"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var (
	backgroundColor = color.RGBA{255, 255, 255, 255}
	wallColor       = color.RGBA{0, 0, 0, 255}
)

// Renderer implements ebiten.Game. The simulation is stepped elsewhere; the
// renderer only draws whatever snapshot is current.
type Renderer struct {
	source    viewport.SnapshotSource
	cfg       simulation.Config
	projector viewport.Projector

	snap   simulation.Snapshot
	report string
}

// NewRenderer creates a renderer drawing snapshots from source.
func NewRenderer(source viewport.SnapshotSource, cfg simulation.Config, projector viewport.Projector) *Renderer {
	if projector == nil {
		projector = viewport.NewViewport(viewport.ContainerBounds(cfg))
	}
	return &Renderer{source: source, cfg: cfg, projector: projector}
}

// Update is called every tick.
func (r *Renderer) Update() error {
	if ebiten.IsKeyPressed(ebiten.KeyEscape) || ebiten.IsKeyPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}
	r.snap = r.source.Latest()
	rep, err := diagnostics.Summarize(r.snap)
	if err != nil {
		// Keep drawing; the headless driver is where divergence is fatal.
		r.report = err.Error()
		return nil
	}
	r.report = rep.String()
	return nil
}

// Draw is called every frame to render the simulation.
func (r *Renderer) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)

	radius := float32(r.cfg.SupportRadius * 0.5 * r.projector.Scale())
	if radius < 1 {
		radius = 1
	}
	for i, p := range r.snap.Particles {
		x, y := r.projector.Project(p.Position)
		vector.DrawFilledCircle(screen, x, y, radius, ParticleColor(i), true)
	}

	r.drawWalls(screen)
	ebitenutil.DebugPrint(screen, fmt.Sprintf("TPS: %.1f FPS: %.1f\n%s",
		ebiten.ActualTPS(), ebiten.ActualFPS(), r.report))
}

// drawWalls paints the floor and both side walls; the top stays open.
func (r *Renderer) drawWalls(screen *ebiten.Image) {
	w, h := screen.Bounds().Dx(), screen.Bounds().Dy()
	left, floor := r.projector.Project(common.NewVector2(r.cfg.LeftWall, r.cfg.Floor))
	right, _ := r.projector.Project(common.NewVector2(r.cfg.RightWall, r.cfg.Floor))

	vector.DrawFilledRect(screen, 0, 0, left, float32(h), wallColor, false)
	vector.DrawFilledRect(screen, right, 0, float32(w)-right, float32(h), wallColor, false)
	vector.DrawFilledRect(screen, 0, floor, float32(w), float32(h)-floor, wallColor, false)
}

// Layout is called when the window size changes.
func (r *Renderer) Layout(outsideWidth, outsideHeight int) (int, int) {
	r.projector.Resize(outsideWidth, outsideHeight)
	return outsideWidth, outsideHeight
}

// ParticleColor shades particles by index so that mixing stays visible.
func ParticleColor(index int) color.RGBA {
	return color.RGBA{uint8(50 + index%205), 100, 0, 255}
}
