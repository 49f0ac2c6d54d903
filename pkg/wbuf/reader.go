package wbuf

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"golang.org/x/sys/unix"
)

type File struct {
	Data    []byte
	Header  *Header
	mmapped bool
}

// Open reads a wbuf file and validates its header. The file is mapped
// read-only when the platform allows it and read into memory otherwise.
// The returned file must be closed to release any mapping.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := stat.Size()
	if size < HeaderSize || size > math.MaxInt {
		return nil, fmt.Errorf("%w: file is %d bytes", ErrCorruptFile, size)
	}

	if data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED); err == nil {
		wf, err := decode(data, true)
		if err != nil {
			_ = unix.Munmap(data)
		}
		return wf, err
	}

	data := make([]byte, size)
	if _, err := io.ReadFull(f, data); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return decode(data, false)
}

// decode validates data as a complete wbuf file. Checks run in order: magic,
// major version, header fields, then payload length against the shape.
func decode(data []byte, mmapped bool) (*File, error) {
	hdr, ok := decodeHeader(data)
	if !ok {
		return nil, ErrCorruptFile
	}
	switch {
	case string(hdr.Magic[:]) != Magic:
		return nil, ErrInvalidMagic
	case !hdr.Compatible():
		return nil, fmt.Errorf("%w: %d.%d", ErrUnsupportedMajor, hdr.Major, hdr.Minor)
	case !hdr.Valid() || uint64(hdr.HeaderSize) > uint64(len(data)):
		return nil, fmt.Errorf("%w: bad header (size %d, shape %dx%dx%d)",
			ErrCorruptFile, hdr.HeaderSize, hdr.Rows, hdr.Cols, hdr.Channels)
	}

	n, ok := hdr.Elements()
	if !ok || n > math.MaxInt64/4 {
		return nil, fmt.Errorf("%w: shape overflows", ErrCorruptFile)
	}
	if payload := uint64(len(data)) - uint64(hdr.HeaderSize); payload != 4*n {
		return nil, fmt.Errorf("%w: payload is %d bytes, shape needs %d", ErrCorruptFile, payload, 4*n)
	}
	return &File{Data: data, Header: &hdr, mmapped: mmapped}, nil
}
// Shape returns the (rows, cols, channels) words of the stored buffer.
func (f *File) Shape() [3]uint32 {
	return [3]uint32{f.Header.Rows, f.Header.Cols, f.Header.Channels}
}

// Payload returns a zero-copy slice of the little-endian float32 samples.
// The caller must not retain this slice after File.Close().
func (f *File) Payload() []byte {
	if f == nil || f.Data == nil || f.Header == nil {
		return nil
	}
	return f.Data[f.Header.HeaderSize:]
}

// Float32s decodes the payload into a new slice.
func (f *File) Float32s() []float32 {
	p := f.Payload()
	out := make([]float32, len(p)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(p[i*4:]))
	}
	return out
}

// Close releases file resources and any mmap backing.
func (f *File) Close() error {
	if f == nil || f.Data == nil {
		return nil
	}
	var err error
	if f.mmapped {
		err = unix.Munmap(f.Data)
	}
	f.Data = nil
	f.Header = nil
	f.mmapped = false
	return err
}
