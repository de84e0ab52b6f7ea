package common

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Vector2 represents a point, velocity or force in the 2-D simulation plane.
// It is a plain value; every operation returns a new vector.
type Vector2 = r2.Vec

// Zero is returned whenever a computation degenerates to "no force".
var Zero = Vector2{}

// NewVector2 creates a vector from its components.
func NewVector2(x, y float64) Vector2 {
	return Vector2{X: x, Y: y}
}

// Add returns a + b.
func Add(a, b Vector2) Vector2 {
	return r2.Add(a, b)
}

// Subtract returns a - b.
func Subtract(a, b Vector2) Vector2 {
	return r2.Sub(a, b)
}

// MultiplyByScalar multiplies the vector by a scalar value.
func MultiplyByScalar(v Vector2, scalar float64) Vector2 {
	return r2.Scale(scalar, v)
}

// Norm returns the Euclidean length of v.
func Norm(v Vector2) float64 {
	return r2.Norm(v)
}

// NormSq calculates the squared Euclidean norm of the vector.
func NormSq(v Vector2) float64 {
	return r2.Norm2(v)
}

// IsFinite reports whether both components are neither NaN nor infinite.
func IsFinite(v Vector2) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

// Format returns a string representation of the vector.
func Format(v Vector2) string {
	// Limited precision for cleaner log output
	return fmt.Sprintf("[%.3f, %.3f]", v.X, v.Y)
}
