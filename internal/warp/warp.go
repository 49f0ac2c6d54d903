package warp

import (
	"errors"
	"fmt"

	"github.com/samcharles93/mosaic/internal/tensor"
)

var ErrChannels = errors.New("warp: input and output channel counts differ")

// Warp resamples in through m into out by assignment, one whole pixel at a
// time, and reports which output pixels were sampled from in.
//
// Without a background, pixels whose source coordinate falls outside
// [0, cols-1]×[0, rows-1] are left untouched. With a background (one value
// per channel) the accepted range grows by one pixel on every side,
// out-of-bounds corners read the background, and pixels outside the range are
// set to it, so edges fade into the background instead of stepping.
func Warp(m Mapping, in, out *tensor.Buffer, background []float32) ([]bool, error) {
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("warp input: %w", err)
	}
	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("warp output: %w", err)
	}
	ch := in.Shape.Channels
	if out.Shape.Channels != ch {
		return nil, fmt.Errorf("%w: %d != %d", ErrChannels, ch, out.Shape.Channels)
	}
	var pad float32
	if background != nil {
		if len(background) != ch {
			return nil, fmt.Errorf("warp: background has %d values for %d channels", len(background), ch)
		}
		pad = 1
	}

	valid := make([]bool, out.Shape.Rows*out.Shape.Cols)
	for row := range out.Shape.Rows {
		for col := range out.Shape.Cols {
			px := out.Pixel(row, col)
			x, y := m.Source(col, row)
			if !inRange(x, in.Shape.Cols, pad) || !inRange(y, in.Shape.Rows, pad) {
				if background != nil {
					copy(px, background)
				}
				continue
			}
			for c := range px {
				var fill float32
				if background != nil {
					fill = background[c]
				}
				px[c] = bilinearOr(in, x, y, c, fill)
			}
			valid[row*out.Shape.Cols+col] = true
		}
	}
	return valid, nil
}
