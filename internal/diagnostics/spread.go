package diagnostics

import (
	"fmt"
	"math"

	"fluid-sim/internal/common"
	"fluid-sim/internal/simulation"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Spread describes the shape of the fluid body by principal component
// analysis of the particle positions. A dam collapsing onto the floor shows
// a growing Major/Minor ratio and an axis turning towards horizontal.
type Spread struct {
	Major, Minor float64        // standard deviations along the principal axes
	Axis         common.Vector2 // unit vector of the major axis
}

// Elongation returns Major/Minor, or +Inf for a degenerate body.
func (s Spread) Elongation() float64 {
	if s.Minor == 0 {
		return math.Inf(1)
	}
	return s.Major / s.Minor
}

// ComputeSpread runs PCA over the snapshot positions.
func ComputeSpread(snap simulation.Snapshot) (Spread, error) {
	n := len(snap.Particles)
	if n < 2 {
		return Spread{}, fmt.Errorf("spread needs at least 2 particles, got %d: %w", n, ErrNoParticles)
	}

	// Samples as rows, coordinates as columns.
	data := make([]float64, 0, n*2)
	for _, p := range snap.Particles {
		data = append(data, p.Position.X, p.Position.Y)
	}
	positions := mat.NewDense(n, 2, data)

	var pc stat.PC
	if ok := pc.PrincipalComponents(positions, nil); !ok {
		return Spread{}, fmt.Errorf("PCA computation failed")
	}
	variances := pc.VarsTo(nil)
	var vecs mat.Dense
	pc.VectorsTo(&vecs)

	axis := common.NewVector2(vecs.At(0, 0), vecs.At(1, 0))
	// PCA leaves the sign free; point the axis to +x (or +y when vertical).
	if axis.X < 0 || (axis.X == 0 && axis.Y < 0) {
		axis = common.MultiplyByScalar(axis, -1)
	}
	return Spread{
		Major: math.Sqrt(math.Max(variances[0], 0)),
		Minor: math.Sqrt(math.Max(variances[1], 0)),
		Axis:  axis,
	}, nil
}
