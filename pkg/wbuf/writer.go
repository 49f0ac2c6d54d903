package wbuf

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
)

// Encode writes a buffer of the given (rows, cols, channels) shape to w.
func Encode(w io.Writer, shape [3]uint32, flags uint32, data []float32) error {
	h := Header{
		Major:      CurrentMajor,
		Minor:      CurrentMinor,
		HeaderSize: HeaderSize,
		Rows:       shape[0],
		Cols:       shape[1],
		Channels:   shape[2],
		Flags:      flags,
	}
	copy(h.Magic[:], Magic)
	if !h.Valid() {
		return fmt.Errorf("wbuf: invalid shape %dx%dx%d", shape[0], shape[1], shape[2])
	}
	n, ok := h.Elements()
	if !ok || n != uint64(len(data)) {
		return fmt.Errorf("wbuf: shape %dx%dx%d does not match %d samples", shape[0], shape[1], shape[2], len(data))
	}

	bw := bufio.NewWriterSize(w, 1<<16)
	if _, err := bw.Write(encodeHeader(&h)); err != nil {
		return err
	}
	var word [4]byte
	for _, v := range data {
		binary.LittleEndian.PutUint32(word[:], math.Float32bits(v))
		if _, err := bw.Write(word[:]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteFile encodes a buffer to path. The file is written to a temporary
// name in the same directory and renamed into place.
func WriteFile(path string, shape [3]uint32, flags uint32, data []float32) (err error) {
	if path == "" {
		return errors.New("wbuf: empty path")
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".wbuf-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()
	if err = Encode(tmp, shape, flags, data); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
