package warp

import (
	"math"

	"github.com/samcharles93/mosaic/internal/tensor"
)

// At returns the input sample at integer pixel (px, py) and channel ch, or 0
// when the pixel lies outside the buffer. Zero padding is applied to each
// corner independently.
func At(in *tensor.Buffer, px, py, ch int) float32 {
	return atOr(in, px, py, ch, 0)
}

func atOr(in *tensor.Buffer, px, py, ch int, fill float32) float32 {
	s := in.Shape
	if px < 0 || px >= s.Cols || py < 0 || py >= s.Rows {
		return fill
	}
	return in.Data[s.Index(py, px, ch)]
}

// Bilinear interpolates channel ch of in at the fractional source coordinate
// (x, y) from its four integer neighbours.
func Bilinear(in *tensor.Buffer, x, y float32, ch int) float32 {
	return bilinearOr(in, x, y, ch, 0)
}

// bilinearOr is Bilinear with out-of-bounds corners reading fill.
func bilinearOr(in *tensor.Buffer, x, y float32, ch int, fill float32) float32 {
	left := float32(math.Floor(float64(x)))
	top := float32(math.Floor(float64(y)))
	rightWeight := x - left
	leftWeight := 1 - rightWeight
	bottomWeight := y - top
	topWeight := 1 - bottomWeight

	l, t := int(left), int(top)
	r, b := l+1, t+1

	return topWeight*leftWeight*atOr(in, l, t, ch, fill) +
		topWeight*rightWeight*atOr(in, r, t, ch, fill) +
		bottomWeight*leftWeight*atOr(in, l, b, ch, fill) +
		bottomWeight*rightWeight*atOr(in, r, b, ch, fill)
}

// inRange reports whether v lies in [-pad, n-1+pad]. NaN is never in range.
func inRange(v float32, n int, pad float32) bool {
	return v >= -pad && v <= float32(n-1)+pad
}
