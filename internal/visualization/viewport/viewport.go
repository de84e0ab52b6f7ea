// Package viewport maps the simulated world onto a screen or character grid.
// It has no graphics dependencies so headless front ends can share it.
package viewport

import (
	"math"

	"fluid-sim/internal/common"
	"fluid-sim/internal/simulation"
)

// SnapshotSource provides the latest complete simulation state.
type SnapshotSource interface {
	Latest() simulation.Snapshot
}

// DefaultPadding is the screen margin around the world rectangle.
const DefaultPadding = 20.0

// Projector maps world coordinates (y up) onto a screen (y down).
type Projector interface {
	// Resize informs the projector of the current screen size.
	Resize(screenWidth, screenHeight int)
	// Project converts a world position into screen coordinates.
	Project(world common.Vector2) (float32, float32)
	// Scale returns screen pixels per world unit.
	Scale() float64
}

// Bounds is an axis-aligned world rectangle.
type Bounds struct {
	MinX, MaxX, MinY, MaxY float64
}

// ContainerBounds returns the world rectangle worth drawing for cfg: the
// container plus some headroom above the initial block.
func ContainerBounds(cfg simulation.Config) Bounds {
	margin := cfg.SupportRadius
	top := cfg.OriginY + cfg.SpacingY*float64(cfg.GridHeight())
	height := top - cfg.Floor
	return Bounds{
		MinX: cfg.LeftWall - margin,
		MaxX: cfg.RightWall + margin,
		MinY: cfg.Floor - margin,
		MaxY: top + math.Max(height*0.25, margin),
	}
}

// Viewport fits a fixed world rectangle into the screen, keeping the aspect
// ratio and centering the result.
type Viewport struct {
	world   Bounds
	padding float64

	screenWidth  int
	screenHeight int

	scale   float64
	offsetX float64
	offsetY float64
}

var _ Projector = (*Viewport)(nil)

// NewViewport creates a viewport for the world rectangle b.
func NewViewport(b Bounds) *Viewport {
	return &Viewport{world: b, padding: DefaultPadding, scale: 1}
}

// SetPadding changes the screen margin. It takes effect on the next Resize.
func (v *Viewport) SetPadding(p float64) {
	v.padding = math.Max(p, 0)
}

// Resize recalculates scale and offset for a new screen size.
func (v *Viewport) Resize(screenWidth, screenHeight int) {
	v.screenWidth, v.screenHeight = screenWidth, screenHeight

	worldWidth := v.world.MaxX - v.world.MinX
	worldHeight := v.world.MaxY - v.world.MinY
	if worldWidth <= 0 {
		worldWidth = 1
	}
	if worldHeight <= 0 {
		worldHeight = 1
	}

	pad := v.padding
	if float64(screenWidth) <= 2*pad || float64(screenHeight) <= 2*pad {
		pad = 0
	}
	scaleX := (float64(screenWidth) - 2*pad) / worldWidth
	scaleY := (float64(screenHeight) - 2*pad) / worldHeight
	v.scale = math.Min(scaleX, scaleY)
	if v.scale <= 0 || math.IsNaN(v.scale) || math.IsInf(v.scale, 0) {
		v.scale = 1
	}

	// Center the world; screen y grows downwards.
	centerX := (v.world.MinX + v.world.MaxX) / 2
	centerY := (v.world.MinY + v.world.MaxY) / 2
	v.offsetX = float64(screenWidth)/2 - centerX*v.scale
	v.offsetY = float64(screenHeight)/2 + centerY*v.scale
}

// Project converts world coordinates to screen coordinates.
func (v *Viewport) Project(world common.Vector2) (float32, float32) {
	return float32(world.X*v.scale + v.offsetX), float32(v.offsetY - world.Y*v.scale)
}

// Scale returns screen pixels per world unit.
func (v *Viewport) Scale() float64 {
	return v.scale
}
