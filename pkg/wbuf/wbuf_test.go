package wbuf

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFileOpenRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "acc.wbuf")
	data := []float32{0, 1, 2.5, -3, 4, 5e-3}
	if err := WriteFile(path, [3]uint32{1, 3, 2}, FlagNormalized, data); err != nil {
		t.Fatalf("write: %v", err)
	}

	f, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			t.Fatalf("close: %v", cerr)
		}
	}()

	if f.Shape() != [3]uint32{1, 3, 2} {
		t.Fatalf("unexpected shape %v", f.Shape())
	}
	if f.Header.Flags&FlagNormalized == 0 {
		t.Fatalf("normalized flag lost")
	}
	if len(f.Payload()) != len(data)*4 {
		t.Fatalf("expected %d payload bytes, got %d", len(data)*4, len(f.Payload()))
	}
	got := f.Float32s()
	for i := range data {
		if got[i] != data[i] {
			t.Fatalf("sample %d: expected %v, got %v", i, data[i], got[i])
		}
	}
}

func TestEncodeLayout(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := Encode(&buf, [3]uint32{1, 1, 1}, 0, []float32{1}); err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := []byte{
		'W', 'B', 'F', 0,
		1, 0, 0, 0, // major, minor
		32, 0, 0, 0,
		1, 0, 0, 0,
		1, 0, 0, 0,
		1, 0, 0, 0,
		0, 0, 0, 0,
		0, 0, 0, 0,
		0x00, 0x00, 0x80, 0x3f,
	}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("unexpected bytes\n got %v\nwant %v", buf.Bytes(), want)
	}
}

func TestDecodeInMemory(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := Encode(&buf, [3]uint32{2, 1, 2}, FlagNormalized, []float32{1, 2, 3, 4}); err != nil {
		t.Fatalf("encode: %v", err)
	}
	f, err := decode(buf.Bytes(), false)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if f.Header.Flags&FlagNormalized == 0 {
		t.Fatalf("flags lost: %#x", f.Header.Flags)
	}
	if got := f.Float32s(); got[3] != 4 {
		t.Fatalf("unexpected samples %v", got)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if f.Payload() != nil {
		t.Fatalf("payload should be nil after close")
	}
}

func TestOpenRejectsCorruptFiles(t *testing.T) {
	t.Parallel()

	var good bytes.Buffer
	if err := Encode(&good, [3]uint32{1, 2, 2}, 0, []float32{1, 2, 3, 4}); err != nil {
		t.Fatalf("encode: %v", err)
	}
	mutate := func(f func(b []byte) []byte) []byte {
		b := append([]byte(nil), good.Bytes()...)
		return f(b)
	}

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"short", good.Bytes()[:10], ErrCorruptFile},
		{"magic", mutate(func(b []byte) []byte { b[0] = 'X'; return b }), ErrInvalidMagic},
		{"major", mutate(func(b []byte) []byte { b[4] = 2; return b }), ErrUnsupportedMajor},
		{"zero rows", mutate(func(b []byte) []byte { b[12] = 0; return b }), ErrCorruptFile},
		{"truncated payload", good.Bytes()[:good.Len()-4], ErrCorruptFile},
		{"trailing bytes", append(append([]byte(nil), good.Bytes()...), 0), ErrCorruptFile},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(t.TempDir(), "bad.wbuf")
			if err := os.WriteFile(path, tc.data, 0o644); err != nil {
				t.Fatalf("write: %v", err)
			}
			if _, err := Open(path); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestEncodeRejectsMismatch(t *testing.T) {
	t.Parallel()

	if err := Encode(&bytes.Buffer{}, [3]uint32{2, 2, 2}, 0, []float32{1}); err == nil {
		t.Fatal("expected error for short data")
	}
	if err := Encode(&bytes.Buffer{}, [3]uint32{0, 2, 2}, 0, nil); err == nil {
		t.Fatal("expected error for zero dimension")
	}
}
