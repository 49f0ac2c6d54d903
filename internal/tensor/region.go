package tensor

// Region is a half-open block [Row0,Row1) × [Col0,Col1) × [Ch0,Ch1) of a
// shape's index space.
type Region struct {
	Row0, Row1 int
	Col0, Col1 int
	Ch0, Ch1   int
}

// Full returns the region covering the whole shape.
func (s Shape) Full() Region {
	return Region{Row1: s.Rows, Col1: s.Cols, Ch1: s.Channels}
}

// Clip intersects r with the index space of s.
func (r Region) Clip(s Shape) Region {
	r.Row0, r.Row1 = clampRange(r.Row0, r.Row1, s.Rows)
	r.Col0, r.Col1 = clampRange(r.Col0, r.Col1, s.Cols)
	r.Ch0, r.Ch1 = clampRange(r.Ch0, r.Ch1, s.Channels)
	return r
}

// Len returns the number of elements in r.
func (r Region) Len() int {
	if r.Empty() {
		return 0
	}
	return (r.Row1 - r.Row0) * (r.Col1 - r.Col0) * (r.Ch1 - r.Ch0)
}

// Empty reports whether r contains no elements.
func (r Region) Empty() bool {
	return r.Row1 <= r.Row0 || r.Col1 <= r.Col0 || r.Ch1 <= r.Ch0
}

func clampRange(lo, hi, n int) (int, int) {
	lo = max(lo, 0)
	hi = min(hi, n)
	if hi < lo {
		hi = lo
	}
	return lo, hi
}
