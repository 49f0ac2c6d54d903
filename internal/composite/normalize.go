package composite

import "github.com/samcharles93/mosaic/internal/tensor"

// Normalize divides every color channel of a finished accumulator by its
// weight channel and returns the result as a new buffer of the same shape.
// The trailing channel of the result is a coverage mask: 1 where any weight
// landed, 0 elsewhere.
//
// Pixels whose accumulated weight is zero, negative or non-finite produce 0
// in every channel, never NaN.
func Normalize(acc *tensor.Buffer) (*tensor.Buffer, error) {
	if err := acc.Validate(); err != nil {
		return nil, &ConfigError{Frame: -1, Err: err}
	}
	out := acc.Clone()
	normalize(out)
	return out, nil
}

// NormalizeInPlace is Normalize without the copy.
func NormalizeInPlace(acc *tensor.Buffer) error {
	if err := acc.Validate(); err != nil {
		return &ConfigError{Frame: -1, Err: err}
	}
	normalize(acc)
	return nil
}

func normalize(b *tensor.Buffer) {
	s := b.Shape
	wc := s.WeightChannel()
	for row := range s.Rows {
		for col := range s.Cols {
			px := b.Pixel(row, col)
			w := px[wc]
			if !(w > 0) || !tensor.Finite(w) {
				clear(px)
				continue
			}
			for ch := range wc {
				px[ch] /= w
			}
			px[wc] = 1
		}
	}
}
