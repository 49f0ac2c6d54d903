package warp

import "github.com/samcharles93/mosaic/internal/tensor"

// BlendElement is the per-worker kernel: it accumulates the contribution of
// in to out at destination (row, col, ch).
//
// Destination elements outside out's shape, and destinations whose source
// coordinate falls outside [0, cols-1]×[0, rows-1] of in, are left untouched.
// Otherwise the weight channel receives the interpolated source weight w and
// every other channel receives w times the interpolated source value.
//
// in and out must have the same channel count; callers validate that before
// dispatch.
func BlendElement(m Mapping, in, out *tensor.Buffer, row, col, ch int) {
	if !out.Shape.Contains(row, col, ch) {
		return
	}
	x, y := m.Source(col, row)
	if !inRange(x, in.Shape.Cols, 0) || !inRange(y, in.Shape.Rows, 0) {
		return
	}
	wc := in.Shape.WeightChannel()
	w := Bilinear(in, x, y, wc)
	idx := out.Shape.Index(row, col, ch)
	if ch == wc {
		out.Data[idx] += w
		return
	}
	out.Data[idx] += w * Bilinear(in, x, y, ch)
}

// BlendTile runs the kernel over every element of region r, clipped to out's
// shape. The source coordinate and weight sample are computed once per pixel
// and shared by its channels; the arithmetic is identical to calling
// BlendElement for each element.
func BlendTile(m Mapping, in, out *tensor.Buffer, r tensor.Region) {
	r = r.Clip(out.Shape)
	if r.Empty() {
		return
	}
	wc := in.Shape.WeightChannel()
	for row := r.Row0; row < r.Row1; row++ {
		for col := r.Col0; col < r.Col1; col++ {
			x, y := m.Source(col, row)
			if !inRange(x, in.Shape.Cols, 0) || !inRange(y, in.Shape.Rows, 0) {
				continue
			}
			w := Bilinear(in, x, y, wc)
			base := out.Shape.Index(row, col, 0)
			for ch := r.Ch0; ch < r.Ch1; ch++ {
				if ch == wc {
					out.Data[base+ch] += w
					continue
				}
				out.Data[base+ch] += w * Bilinear(in, x, y, ch)
			}
		}
	}
}

// Blend runs the kernel sequentially over the whole destination.
func Blend(m Mapping, in, out *tensor.Buffer) {
	BlendTile(m, in, out, out.Shape.Full())
}
