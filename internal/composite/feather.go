package composite

import (
	"fmt"

	"github.com/samcharles93/mosaic/internal/tensor"
)

// FeatherWeights returns a rows×cols weight map that falls off linearly
// towards the image border. Each weight is the distance, in pixels, to the
// nearest edge (1 on the outermost ring) divided by the largest such
// distance, so every weight lies in (0, 1].
func FeatherWeights(rows, cols int) []float32 {
	if rows <= 0 || cols <= 0 {
		return nil
	}
	out := make([]float32, rows*cols)
	peak := min((rows+1)/2, (cols+1)/2)
	inv := 1 / float32(peak)
	for r := range rows {
		dr := min(r+1, rows-r)
		for c := range cols {
			d := min(dr, c+1, cols-c)
			out[r*cols+c] = float32(d) * inv
		}
	}
	return out
}

// UniformWeights returns a rows×cols weight map of ones.
func UniformWeights(rows, cols int) []float32 {
	if rows <= 0 || cols <= 0 {
		return nil
	}
	out := make([]float32, rows*cols)
	for i := range out {
		out[i] = 1
	}
	return out
}

// WithWeights appends weights as a new trailing channel of img. img holds
// color channels only; the result has one more channel than img.
func WithWeights(img *tensor.Buffer, weights []float32) (*tensor.Buffer, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	s := img.Shape
	if len(weights) != s.Rows*s.Cols {
		return nil, fmt.Errorf("%w: %d weights for a %dx%d image", tensor.ErrLengthMismatch, len(weights), s.Rows, s.Cols)
	}
	out, err := tensor.NewBuffer(tensor.Shape{Rows: s.Rows, Cols: s.Cols, Channels: s.Channels + 1})
	if err != nil {
		return nil, err
	}
	for row := range s.Rows {
		for col := range s.Cols {
			dst := out.Pixel(row, col)
			copy(dst, img.Pixel(row, col))
			dst[s.Channels] = weights[row*s.Cols+col]
		}
	}
	return out, nil
}
