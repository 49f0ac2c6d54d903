// Package warp holds the projective mapping type and the warp-sample-blend
// kernel that accumulates weighted source samples into an output buffer.
package warp

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Kind classifies a mapping by its degrees of freedom.
type Kind int

const (
	Unknown Kind = iota
	Translational
	Affine
	Projective
)

// NumParams returns the number of free parameters of the kind.
func (k Kind) NumParams() int {
	switch k {
	case Translational:
		return 2
	case Affine:
		return 6
	case Projective:
		return 8
	default:
		return 0
	}
}

func (k Kind) String() string {
	switch k {
	case Translational:
		return "translational"
	case Affine:
		return "affine"
	case Projective:
		return "projective"
	default:
		return "unknown"
	}
}

// Mapping is a row-major 3×3 projective matrix. It takes homogeneous
// destination coordinates (col, row, 1) to source coordinates.
type Mapping [9]float32

// Point is a 2-D coordinate in pixel units, x along columns.
type Point struct {
	X, Y float64
}

var (
	ErrParamCount = errors.New("warp: expected 2, 6 or 8 parameters")
	ErrSingular   = errors.New("warp: mapping is not invertible")
)

// Identity returns the identity mapping.
func Identity() Mapping {
	return Mapping{1, 0, 0, 0, 1, 0, 0, 0, 1}
}

// Shift returns a translation by (dx, dy).
func Shift(dx, dy float32) Mapping {
	return Mapping{1, 0, dx, 0, 1, dy, 0, 0, 1}
}

// Scale returns an axis-aligned scaling.
func Scale(sx, sy float32) Mapping {
	return Mapping{sx, 0, 0, 0, sy, 0, 0, 0, 1}
}

// FromParams builds a mapping from a parameter vector. Two parameters are a
// translation (dx, dy); six are an affine warp and eight a projective warp,
// both expressed as offsets from the identity:
//
//	[p1+1  p3   p5]
//	[p2   p4+1  p6]
//	[p7    p8    1]
func FromParams(p []float32) (Mapping, Kind, error) {
	switch len(p) {
	case 2:
		return Shift(p[0], p[1]), Translational, nil
	case 6:
		return Mapping{p[0] + 1, p[2], p[4], p[1], p[3] + 1, p[5], 0, 0, 1}, Affine, nil
	case 8:
		return Mapping{p[0] + 1, p[2], p[4], p[1], p[3] + 1, p[5], p[6], p[7], 1}, Projective, nil
	default:
		return Mapping{}, Unknown, fmt.Errorf("%w, got %d", ErrParamCount, len(p))
	}
}

// Params is the inverse of FromParams for the given kind. The matrix is
// normalised by its bottom-right element first.
func (m Mapping) Params(kind Kind) []float32 {
	p := m.normalized()
	switch kind {
	case Translational:
		return []float32{p[2], p[5]}
	case Affine:
		return []float32{p[0] - 1, p[3], p[1], p[4] - 1, p[2], p[5]}
	default:
		return []float32{p[0] - 1, p[3], p[1], p[4] - 1, p[2], p[5], p[6], p[7]}
	}
}

// kindEps is the tolerance below which a matrix entry counts as equal to
// its identity value when inferring a Kind.
const kindEps = 1e-7

// Kind infers the smallest kind that represents m.
func (m Mapping) Kind() Kind {
	p := m.normalized()
	near := func(v, want float32) bool {
		return math.Abs(float64(v-want)) <= kindEps
	}
	switch {
	case !near(p[6], 0) || !near(p[7], 0):
		return Projective
	case !near(p[0], 1) || !near(p[1], 0) || !near(p[3], 0) || !near(p[4], 1):
		return Affine
	default:
		return Translational
	}
}

// IsIdentity reports whether m is within 1e-8 of the identity.
func (m Mapping) IsIdentity() bool {
	id := Identity()
	for i := range m {
		if math.Abs(float64(m[i]-id[i])) > 1e-8 {
			return false
		}
	}
	return true
}

func (m Mapping) normalized() Mapping {
	if m[8] == 0 || m[8] == 1 {
		return m
	}
	for i := range m {
		m[i] /= m[8]
	}
	return m
}

// Source applies m to destination pixel (col, row) with a plain perspective
// divide. This is the coordinate transform the kernel uses; it may return
// non-finite values when the homogeneous term is zero.
func (m Mapping) Source(col, row int) (x, y float32) {
	c, r := float32(col), float32(row)
	xh := m[0]*c + m[1]*r + m[2]
	yh := m[3]*c + m[4]*r + m[5]
	v := m[6]*c + m[7]*r + m[8]
	return xh / v, yh / v
}

// Apply maps a point through m. The homogeneous term is clamped to 1e-8 so
// that points at or behind the horizon stay finite.
func (m Mapping) Apply(p Point) Point {
	if m.IsIdentity() {
		return p
	}
	xh := float64(m[0])*p.X + float64(m[1])*p.Y + float64(m[2])
	yh := float64(m[3])*p.X + float64(m[4])*p.Y + float64(m[5])
	v := math.Max(float64(m[6])*p.X+float64(m[7])*p.Y+float64(m[8]), 1e-8)
	return Point{X: xh / v, Y: yh / v}
}

func (m Mapping) dense() *mat.Dense {
	data := make([]float64, 9)
	for i, v := range m {
		data[i] = float64(v)
	}
	return mat.NewDense(3, 3, data)
}

func fromDense(d mat.Matrix) Mapping {
	var m Mapping
	for r := range 3 {
		for c := range 3 {
			m[r*3+c] = float32(d.At(r, c))
		}
	}
	return m
}

// Inverse returns the matrix inverse of m.
func (m Mapping) Inverse() (Mapping, error) {
	var inv mat.Dense
	if err := inv.Inverse(m.dense()); err != nil {
		return Mapping{}, fmt.Errorf("%w: %v", ErrSingular, err)
	}
	return fromDense(&inv), nil
}

// Compose returns lhs·m·rhs. Nil operands are treated as the identity.
func (m Mapping) Compose(lhs, rhs *Mapping) Mapping {
	out := m.dense()
	if lhs != nil {
		var t mat.Dense
		t.Mul(lhs.dense(), out)
		out = &t
	}
	if rhs != nil {
		var t mat.Dense
		t.Mul(out, rhs.dense())
		out = &t
	}
	return fromDense(out)
}

// Rescale expresses m in a coordinate frame scaled by s, e.g. to reuse a
// mapping estimated on a downscaled image at full resolution with s < 1.
func (m Mapping) Rescale(s float32) Mapping {
	lhs := Scale(1/s, 1/s)
	rhs := Scale(s, s)
	return m.Compose(&lhs, &rhs)
}

// Corners returns where the corners of a w×h source image land in the
// destination frame, in the order top-left, top-right, bottom-right,
// bottom-left.
func (m Mapping) Corners(w, h int) ([4]Point, error) {
	inv, err := m.Inverse()
	if err != nil {
		return [4]Point{}, err
	}
	fw, fh := float64(w), float64(h)
	src := [4]Point{{0, 0}, {fw, 0}, {fw, fh}, {0, fh}}
	var out [4]Point
	for i, p := range src {
		out[i] = inv.Apply(p)
	}
	return out, nil
}

// Extent returns the bounding box of a w×h source image in the destination
// frame.
func (m Mapping) Extent(w, h int) (lo, hi Point, err error) {
	corners, err := m.Corners(w, h)
	if err != nil {
		return Point{}, Point{}, err
	}
	lo = Point{math.Inf(1), math.Inf(1)}
	hi = Point{math.Inf(-1), math.Inf(-1)}
	for _, c := range corners {
		lo.X, lo.Y = math.Min(lo.X, c.X), math.Min(lo.Y, c.Y)
		hi.X, hi.Y = math.Max(hi.X, c.X), math.Max(hi.Y, c.Y)
	}
	return lo, hi, nil
}

// Size is an image size in pixels.
type Size struct {
	W, H int
}

// MaximumExtent returns the size of the box enclosing every mapped image and
// the translation that takes the box's top-left corner to the origin of the
// shared frame. sizes holds either one size per mapping or a single size
// shared by all of them.
func MaximumExtent(maps []Mapping, sizes []Size) (extent Point, offset Mapping, err error) {
	if len(maps) == 0 {
		return Point{}, Identity(), errors.New("warp: no mappings")
	}
	if len(sizes) != 1 && len(sizes) != len(maps) {
		return Point{}, Identity(), fmt.Errorf("warp: %d sizes for %d mappings", len(sizes), len(maps))
	}
	lo := Point{math.Inf(1), math.Inf(1)}
	hi := Point{math.Inf(-1), math.Inf(-1)}
	for i, m := range maps {
		sz := sizes[0]
		if len(sizes) > 1 {
			sz = sizes[i]
		}
		l, h, err := m.Extent(sz.W, sz.H)
		if err != nil {
			return Point{}, Identity(), fmt.Errorf("mapping %d: %w", i, err)
		}
		lo.X, lo.Y = math.Min(lo.X, l.X), math.Min(lo.Y, l.Y)
		hi.X, hi.Y = math.Max(hi.X, h.X), math.Max(hi.Y, h.Y)
	}
	extent = Point{X: hi.X - lo.X, Y: hi.Y - lo.Y}
	return extent, Shift(float32(lo.X), float32(lo.Y)), nil
}

// FromCorrespondences solves for the projective mapping that takes each
// src[i] to dst[i]. The four points must be in general position.
func FromCorrespondences(src, dst [4]Point) (Mapping, error) {
	a := mat.NewDense(8, 8, nil)
	b := mat.NewDense(8, 1, nil)
	for i := range 4 {
		sx, sy := src[i].X, src[i].Y
		dx, dy := dst[i].X, dst[i].Y
		r := 2 * i
		a.SetRow(r, []float64{sx, sy, 1, 0, 0, 0, -sx * dx, -sy * dx})
		a.SetRow(r+1, []float64{0, 0, 0, sx, sy, 1, -sx * dy, -sy * dy})
		b.Set(r, 0, dx)
		b.Set(r+1, 0, dy)
	}
	var h mat.Dense
	if err := h.Solve(a, b); err != nil {
		return Mapping{}, fmt.Errorf("%w: degenerate correspondences: %v", ErrSingular, err)
	}
	var m Mapping
	for i := range 8 {
		m[i] = float32(h.At(i, 0))
	}
	m[8] = 1
	return m, nil
}
