// Package wbuf implements the weighted buffer file format.
//
// A wbuf file stores one flat float32 image buffer together with its shape:
// a fixed little-endian header followed by rows*cols*channels float32
// samples, row-major and channel-minor. The payload is the host buffer
// contract byte for byte, so it can be memory-mapped and handed to a
// dispatcher without conversion.
package wbuf

// Format constants must never change.
const (
	// Magic is the file magic, "WBF\0".
	Magic = "WBF\x00"

	// CurrentMajor changes only on breaking format changes.
	CurrentMajor uint16 = 1

	// CurrentMinor changes when optional header fields are added.
	CurrentMinor uint16 = 0

	// HeaderSize is the size of the fixed header. The payload starts here.
	HeaderSize = 32

	// FlagNormalized marks a payload whose trailing channel is a coverage
	// mask rather than an accumulated weight.
	FlagNormalized uint32 = 1 << 0
)

// Header is the fixed file header.
//
//	offset size field
//	0      4    magic
//	4      2    major
//	6      2    minor
//	8      4    header size
//	12     4    rows
//	16     4    cols
//	20     4    channels
//	24     4    flags
//	28     4    reserved
type Header struct {
	Magic      [4]byte
	Major      uint16
	Minor      uint16
	HeaderSize uint32
	Rows       uint32
	Cols       uint32
	Channels   uint32
	Flags      uint32
}

// Elements returns rows*cols*channels, or false on overflow.
func (h *Header) Elements() (uint64, bool) {
	n := uint64(h.Rows) * uint64(h.Cols)
	if h.Rows != 0 && n/uint64(h.Rows) != uint64(h.Cols) {
		return 0, false
	}
	m := n * uint64(h.Channels)
	if h.Channels != 0 && m/uint64(h.Channels) != n {
		return 0, false
	}
	return m, true
}

// Valid checks the magic and that no dimension is zero.
func (h *Header) Valid() bool {
	if string(h.Magic[:]) != Magic {
		return false
	}
	if h.HeaderSize < HeaderSize {
		return false
	}
	return h.Rows != 0 && h.Cols != 0 && h.Channels != 0
}

func (h *Header) Compatible() bool {
	return h.Major == CurrentMajor
}
