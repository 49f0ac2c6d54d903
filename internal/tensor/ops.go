package tensor

import "math"

// MaxAbsDiff returns the largest absolute element-wise difference between
// a and b, which must have equal length.
func MaxAbsDiff(a, b []float32) float64 {
	var maxAbs float64
	for i := range a {
		d := math.Abs(float64(a[i] - b[i]))
		if d > maxAbs {
			maxAbs = d
		}
	}
	return maxAbs
}

// Finite reports whether v is neither NaN nor infinite.
func Finite(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// FirstNonFinite returns the index of the first NaN or infinite element of
// x, or -1.
func FirstNonFinite(x []float32) int {
	for i, v := range x {
		if !Finite(v) {
			return i
		}
	}
	return -1
}
