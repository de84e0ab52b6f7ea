package common

import "testing"

func TestVectorArithmetic(t *testing.T) {
	a := NewVector2(1, 2)
	b := NewVector2(3, -4)

	if got := Add(a, b); got != NewVector2(4, -2) {
		t.Errorf("Add = %v, want [4, -2]", got)
	}
	if got := Subtract(a, b); got != NewVector2(-2, 6) {
		t.Errorf("Subtract = %v, want [-2, 6]", got)
	}
	if got := MultiplyByScalar(b, 0.5); got != NewVector2(1.5, -2) {
		t.Errorf("MultiplyByScalar = %v, want [1.5, -2]", got)
	}
	if got := Norm(b); got != 5 {
		t.Errorf("Norm = %v, want 5", got)
	}
	if got := NormSq(b); got != 25 {
		t.Errorf("NormSq = %v, want 25", got)
	}
}

func TestZeroIsZero(t *testing.T) {
	if Zero.X != 0 || Zero.Y != 0 {
		t.Fatalf("Zero = %v", Zero)
	}
	if Format(NewVector2(1, -0.5)) != "[1.000, -0.500]" {
		t.Errorf("unexpected format %q", Format(NewVector2(1, -0.5)))
	}
}
