package math

import "golang.org/x/exp/constraints"

// Clamp returns the value `f` clamped to the range [low, high].
// It works for any numeric type (integers and floats).
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

// Lerp linearly blends a towards b. Lerp(a, a, t) is exactly a.
func Lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}
