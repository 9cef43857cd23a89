package math

import "golang.org/x/exp/constraints"

// Number is any integer or float type.
type Number interface {
	constraints.Integer | constraints.Float
}

// Clamp returns v clamped to [low, high].
func Clamp[T constraints.Ordered](v, low, high T) T {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}

// Lerp returns a + (b-a)*t.
func Lerp[T constraints.Float](a, b, t T) T {
	return a + (b-a)*t
}

// RangePct returns where v lies within [low, high] as a fraction.
// A degenerate range yields 0.
func RangePct[T constraints.Float](low, high, v T) T {
	d := high - low
	if d == 0 {
		return 0
	}
	return (v - low) / d
}

// Abs returns the absolute value of v.
func Abs[T Number](v T) T {
	if v < 0 {
		return -v
	}
	return v
}

// NearlyZero reports whether |v| is below 1e-8, the grid sampling tolerance.
func NearlyZero(v float32) bool {
	return Abs(v) <= 1e-8
}
