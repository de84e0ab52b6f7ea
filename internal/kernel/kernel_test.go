package kernel

import (
	"errors"
	"math"
	"testing"

	"fluid-sim/internal/common"
)

func newLibrary(t *testing.T, h float64) *Library {
	t.Helper()
	k, err := New(h)
	if err != nil {
		t.Fatalf("New(%v): %v", h, err)
	}
	return k
}

func closeTo(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}

func TestNewRejectsInvalidRadius(t *testing.T) {
	for _, h := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if _, err := New(h); !errors.Is(err, ErrInvalidRadius) {
			t.Errorf("New(%v) error = %v, want ErrInvalidRadius", h, err)
		}
	}
}

func TestKernelCutoff(t *testing.T) {
	k := newLibrary(t, 10)
	offsets := [][2]float64{{10.0001, 0}, {0, -10.5}, {8, 8}, {-7.1, 7.1}, {100, 100}}
	for _, o := range offsets {
		rx, ry := o[0], o[1]
		if k.IsWithinSupport(rx, ry) {
			t.Errorf("IsWithinSupport(%v, %v) = true", rx, ry)
		}
		if v := k.Density(rx, ry); v != 0 {
			t.Errorf("Density(%v, %v) = %v, want 0", rx, ry, v)
		}
		if v := k.DensityGradient(rx, ry); v.X != 0 || v.Y != 0 {
			t.Errorf("DensityGradient(%v, %v) = %v, want zero", rx, ry, v)
		}
		if v := k.DensityLaplacian(rx, ry); v != 0 {
			t.Errorf("DensityLaplacian(%v, %v) = %v, want 0", rx, ry, v)
		}
		if v := k.PressureGradient(rx, ry); v.X != 0 || v.Y != 0 {
			t.Errorf("PressureGradient(%v, %v) = %v, want zero", rx, ry, v)
		}
		if v := k.ViscosityLaplacian(rx, ry); v != 0 {
			t.Errorf("ViscosityLaplacian(%v, %v) = %v, want 0", rx, ry, v)
		}
	}
}

func TestSupportBoundaryIsInclusive(t *testing.T) {
	k := newLibrary(t, 10)
	if !k.IsWithinSupport(10, 0) {
		t.Fatal("offset at exactly h should be within support")
	}
	if v := k.Density(10, 0); v != 0 {
		t.Errorf("Density at r = h = %v, want 0", v)
	}
}

func TestSelfDensityIsPositive(t *testing.T) {
	for _, h := range []float64{0.5, 1, 10, 32} {
		k := newLibrary(t, h)
		if v := k.Density(0, 0); v <= 0 {
			t.Errorf("h=%v: Density(0, 0) = %v, want > 0", h, v)
		}
		if g := k.DensityGradient(0, 0); g.X != 0 || g.Y != 0 {
			t.Errorf("h=%v: DensityGradient(0, 0) = %v, want zero", h, g)
		}
	}
}

func TestDensityGradientMatchesFiniteDifference(t *testing.T) {
	k := newLibrary(t, 10)
	const eps = 1e-5
	for _, o := range [][2]float64{{1, 2}, {-3, 4}, {5, -5}, {0.5, 0}} {
		rx, ry := o[0], o[1]
		g := k.DensityGradient(rx, ry)
		dx := (k.Density(rx+eps, ry) - k.Density(rx-eps, ry)) / (2 * eps)
		dy := (k.Density(rx, ry+eps) - k.Density(rx, ry-eps)) / (2 * eps)
		if !closeTo(g.X, dx, 1e-5) || !closeTo(g.Y, dy, 1e-5) {
			t.Errorf("gradient at (%v, %v) = %v, finite difference = (%v, %v)", rx, ry, g, dx, dy)
		}
	}
}

func TestDensityLaplacianMatchesFiniteDifference(t *testing.T) {
	k := newLibrary(t, 10)
	const eps = 1e-3
	for _, o := range [][2]float64{{1, 2}, {-3, 4}, {5, -5}, {0, 0}} {
		rx, ry := o[0], o[1]
		c := k.Density(rx, ry)
		lap := (k.Density(rx+eps, ry) + k.Density(rx-eps, ry) +
			k.Density(rx, ry+eps) + k.Density(rx, ry-eps) - 4*c) / (eps * eps)
		if got := k.DensityLaplacian(rx, ry); !closeTo(got, lap, 1e-4) {
			t.Errorf("laplacian at (%v, %v) = %v, finite difference = %v", rx, ry, got, lap)
		}
	}
}

func TestPressureGradientPointsTowardNeighbour(t *testing.T) {
	k := newLibrary(t, 10)
	g := k.PressureGradient(3, 4)
	if g.X >= 0 || g.Y >= 0 {
		t.Errorf("PressureGradient(3, 4) = %v, want both components negative", g)
	}
	if !closeTo(math.Hypot(g.X, g.Y), -k.PressureSlope(5), 1e-12) {
		t.Errorf("gradient magnitude %v != |slope| %v", math.Hypot(g.X, g.Y), k.PressureSlope(5))
	}
}

func TestPressureSlopeDoesNotVanishNearZero(t *testing.T) {
	k := newLibrary(t, 10)
	if s := k.PressureSlope(1e-9); s >= 0 {
		t.Errorf("PressureSlope near zero = %v, want < 0", s)
	}
	if g := k.PressureGradient(0, 0); g.X != 0 || g.Y != 0 {
		t.Errorf("PressureGradient(0, 0) = %v, want zero", g)
	}
	if s := k.PressureSlope(10); s != 0 {
		t.Errorf("PressureSlope(h) = %v, want 0", s)
	}
}

func TestViscosityLaplacianIsNonNegative(t *testing.T) {
	k := newLibrary(t, 10)
	for r := 0.0; r <= 10; r += 0.25 {
		if v := k.ViscosityLaplacian(r, 0); v < 0 {
			t.Errorf("ViscosityLaplacian(%v, 0) = %v, want >= 0", r, v)
		}
	}
	if k.ViscosityLaplacian(0, 0) <= k.ViscosityLaplacian(5, 0) {
		t.Error("viscosity Laplacian should decrease with distance")
	}
}

func TestLegacyPressureGradient(t *testing.T) {
	k := newLibrary(t, 10)
	tests := []struct {
		rx, ry float64
		want   common.Vector2
	}{
		// 45/(πh⁶)·(r−h)²·πh²/60 is 0.001875 at r = 5 and 0.0075 at r = 0.
		{3, 4, common.NewVector2(-0.001875, 0)},
		{0, 0, common.NewVector2(-0.0075, -0.0075)},
		{8, 8, common.Zero},
	}
	for _, tt := range tests {
		got := k.LegacyPressureGradient(tt.rx, tt.ry)
		if !closeTo(got.X, tt.want.X, 1e-12) || !closeTo(got.Y, tt.want.Y, 1e-12) {
			t.Errorf("LegacyPressureGradient(%v, %v) = %v, want %v", tt.rx, tt.ry, got, tt.want)
		}
	}
}
