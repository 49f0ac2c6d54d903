package tensor

import "fmt"

// Shape describes a flattened rows×cols×channels array laid out row-major,
// channel-minor. The trailing channel of every image buffer is its weight.
type Shape struct {
	Rows, Cols, Channels int
}

// Len returns the number of elements a buffer of this shape holds.
func (s Shape) Len() int {
	return s.Rows * s.Cols * s.Channels
}

// Index ravels (row, col, ch) into a flat offset. It performs no bounds
// checking; use Contains first when the triple may be out of range.
func (s Shape) Index(row, col, ch int) int {
	return row*(s.Cols*s.Channels) + col*s.Channels + ch
}

// Unravel is the inverse of Index.
func (s Shape) Unravel(idx int) (row, col, ch int) {
	stride := s.Cols * s.Channels
	row = idx / stride
	rem := idx % stride
	return row, rem / s.Channels, rem % s.Channels
}

// Contains reports whether (row, col, ch) addresses an element of the shape.
func (s Shape) Contains(row, col, ch int) bool {
	return row >= 0 && row < s.Rows &&
		col >= 0 && col < s.Cols &&
		ch >= 0 && ch < s.Channels
}

// WeightChannel returns the index of the trailing (weight) channel.
func (s Shape) WeightChannel() int {
	return s.Channels - 1
}

// Validate rejects negative and zero-valued dimensions.
func (s Shape) Validate() error {
	if s.Rows < 0 || s.Cols < 0 || s.Channels < 0 {
		return fmt.Errorf("%w: %s", ErrNegativeDimension, s)
	}
	if s.Rows == 0 || s.Cols == 0 || s.Channels == 0 {
		return fmt.Errorf("%w: %s", ErrZeroDimension, s)
	}
	want := s.Rows * s.Cols
	if want/s.Rows != s.Cols || (want*s.Channels)/s.Channels != want {
		return fmt.Errorf("%w: %s", ErrShapeTooLarge, s)
	}
	return nil
}

// Words returns the 3 × u32 wire form (rows, cols, channels).
func (s Shape) Words() [3]uint32 {
	return [3]uint32{uint32(s.Rows), uint32(s.Cols), uint32(s.Channels)}
}

// ShapeFromWords builds a Shape from its wire form.
func ShapeFromWords(w [3]uint32) Shape {
	return Shape{Rows: int(w[0]), Cols: int(w[1]), Channels: int(w[2])}
}

func (s Shape) String() string {
	return fmt.Sprintf("%dx%dx%d", s.Rows, s.Cols, s.Channels)
}

var (
	ErrNegativeDimension = fmtError("negative dimension")
	ErrZeroDimension     = fmtError("zero-valued dimension")
	ErrShapeTooLarge     = fmtError("shape too large")
	ErrLengthMismatch    = fmtError("buffer length does not match shape")
)

type fmtError string

func (e fmtError) Error() string { return string(e) }
