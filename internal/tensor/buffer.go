package tensor

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Buffer is a flat float32 image buffer paired with the shape that describes
// it. Data is laid out as Shape.Index describes; Buffer never relies on
// anything but that formula to locate an element.
type Buffer struct {
	Shape Shape
	Data  []float32
}

// NewBuffer allocates a zero-initialised buffer for the given shape.
func NewBuffer(s Shape) (*Buffer, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &Buffer{Shape: s, Data: make([]float32, s.Len())}, nil
}

// NewBufferFromData wraps existing data. The length must match the shape.
func NewBufferFromData(s Shape, data []float32) (*Buffer, error) {
	b := &Buffer{Shape: s, Data: data}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// NewBufferFromRaw decodes little-endian float32 samples, the byte layout of
// the host buffer contract.
func NewBufferFromRaw(s Shape, raw []byte) (*Buffer, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	want := s.Len() * 4
	if want/4 != s.Len() {
		return nil, fmt.Errorf("%w: %s", ErrShapeTooLarge, s)
	}
	if len(raw) != want {
		return nil, fmt.Errorf("%w: %s needs %d bytes, got %d", ErrLengthMismatch, s, want, len(raw))
	}
	data := make([]float32, s.Len())
	for i := range data {
		data[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return &Buffer{Shape: s, Data: data}, nil
}

// Validate checks the shape and that the data length agrees with it.
func (b *Buffer) Validate() error {
	if err := b.Shape.Validate(); err != nil {
		return err
	}
	if len(b.Data) != b.Shape.Len() {
		return fmt.Errorf("%w: %s needs %d elements, got %d", ErrLengthMismatch, b.Shape, b.Shape.Len(), len(b.Data))
	}
	return nil
}

// At returns the element at (row, col, ch). Out-of-range indices panic.
func (b *Buffer) At(row, col, ch int) float32 {
	return b.Data[b.Shape.Index(row, col, ch)]
}

// Set stores v at (row, col, ch).
func (b *Buffer) Set(row, col, ch int, v float32) {
	b.Data[b.Shape.Index(row, col, ch)] = v
}

// Pixel returns a view of all channels of one pixel.
func (b *Buffer) Pixel(row, col int) []float32 {
	start := b.Shape.Index(row, col, 0)
	return b.Data[start : start+b.Shape.Channels]
}

// Zero resets every element to 0.
func (b *Buffer) Zero() {
	clear(b.Data)
}

// Clone returns a deep copy.
func (b *Buffer) Clone() *Buffer {
	data := make([]float32, len(b.Data))
	copy(data, b.Data)
	return &Buffer{Shape: b.Shape, Data: data}
}

// Raw encodes the samples as little-endian float32 bytes.
func (b *Buffer) Raw() []byte {
	out := make([]byte, len(b.Data)*4)
	for i, v := range b.Data {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}
