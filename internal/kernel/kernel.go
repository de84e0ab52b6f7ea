// Package kernel implements the smoothing kernels used by the SPH solver.
//
// Every function takes the offset (rx, ry) between two particles and returns
// exactly zero once rx²+ry² exceeds the support radius h squared.
package kernel

import (
	"errors"
	"fmt"
	"math"

	"fluid-sim/internal/common"
)

// ErrInvalidRadius is returned by New when the support radius is not a
// positive finite number.
var ErrInvalidRadius = errors.New("kernel: support radius must be positive and finite")

// densityScaling rescales the 3-D poly6 normalization into the plane.
// It is roughly 2π/9 per unit h².
const densityScaling = 0.698132

// Library holds the precomputed coefficients for a fixed support radius.
// A Library is immutable and safe for concurrent use.
type Library struct {
	h, h2 float64

	poly6     float64 // density kernel coefficient K
	spiky     float64 // pressure kernel coefficient S
	viscosity float64 // viscosity Laplacian coefficient
}

// New creates a kernel library for the support radius h.
func New(h float64) (*Library, error) {
	if h <= 0 || math.IsNaN(h) || math.IsInf(h, 0) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidRadius, h)
	}
	h2 := h * h
	return &Library{
		h:         h,
		h2:        h2,
		poly6:     315.0 / (64 * math.Pi * math.Pow(h, 9)) * densityScaling * h2,
		spiky:     15.0 / (math.Pi * math.Pow(h, 6)) * (math.Pi * h2 / 60),
		viscosity: 45.0 / (math.Pi * math.Pow(h, 6)),
	}, nil
}

// Radius returns the support radius h.
func (k *Library) Radius() float64 {
	return k.h
}

// IsWithinSupport reports whether any kernel can be non-zero at the offset.
func (k *Library) IsWithinSupport(rx, ry float64) bool {
	return rx*rx+ry*ry <= k.h2
}

// Density evaluates the poly6 kernel K·(h²−r²)³.
func (k *Library) Density(rx, ry float64) float64 {
	normSq := rx*rx + ry*ry
	if normSq > k.h2 {
		return 0
	}
	d := k.h2 - normSq
	return k.poly6 * d * d * d
}

// DensityGradient is the analytic gradient of Density, −6K(h²−r²)²·r.
// It vanishes at zero offset.
func (k *Library) DensityGradient(rx, ry float64) common.Vector2 {
	normSq := rx*rx + ry*ry
	if normSq > k.h2 {
		return common.Zero
	}
	d := k.h2 - normSq
	f := -6 * k.poly6 * d * d
	return common.NewVector2(f*rx, f*ry)
}

// DensityLaplacian is the planar Laplacian of Density, 12K(h²−r²)(3r²−h²).
func (k *Library) DensityLaplacian(rx, ry float64) float64 {
	normSq := rx*rx + ry*ry
	if normSq > k.h2 {
		return 0
	}
	return 12 * k.poly6 * (k.h2 - normSq) * (3*normSq - k.h2)
}

// PressureSlope is the radial derivative of the spiky kernel at distance r,
// −3S(h−r)². Unlike the density kernel it stays non-zero as r approaches 0.
func (k *Library) PressureSlope(r float64) float64 {
	if r > k.h || r < 0 {
		return 0
	}
	d := k.h - r
	return -3 * k.spiky * d * d
}

// PressureGradient is the spiky kernel gradient PressureSlope(r)·r̂.
// Coincident particles have no direction and yield the zero vector.
func (k *Library) PressureGradient(rx, ry float64) common.Vector2 {
	normSq := rx*rx + ry*ry
	if normSq > k.h2 || normSq == 0 {
		return common.Zero
	}
	r := math.Sqrt(normSq)
	f := k.PressureSlope(r) / r
	return common.NewVector2(f*rx, f*ry)
}

// LegacyPressureGradient is the pressure gradient of the first solver,
// 3S(r−h)²·(−1, (2r−h)/h). It does not point along the offset; only the
// legacy pressure projection reads it.
func (k *Library) LegacyPressureGradient(rx, ry float64) common.Vector2 {
	normSq := rx*rx + ry*ry
	if normSq > k.h2 {
		return common.Zero
	}
	r := math.Sqrt(normSq)
	d := r - k.h
	f := 3 * k.spiky * d * d
	return common.NewVector2(-f, f*(2*r-k.h)/k.h)
}

// ViscosityLaplacian evaluates 45/(πh⁶)·(h−r), which is non-negative
// everywhere inside the support.
func (k *Library) ViscosityLaplacian(rx, ry float64) float64 {
	normSq := rx*rx + ry*ry
	if normSq > k.h2 {
		return 0
	}
	return k.viscosity * (k.h - math.Sqrt(normSq))
}
