package warp

import (
	"math/rand"
	"testing"

	"github.com/samcharles93/mosaic/internal/tensor"
)

// randomImage fills a buffer with colors in [0,1) and weights in (0,1].
func randomImage(t *testing.T, s tensor.Shape, seed int64) *tensor.Buffer {
	t.Helper()
	b, err := tensor.NewBuffer(s)
	if err != nil {
		t.Fatal(err)
	}
	rng := rand.New(rand.NewSource(seed))
	for i := range b.Data {
		_, _, ch := s.Unravel(i)
		if ch == s.WeightChannel() {
			b.Data[i] = 1 - rng.Float32()
		} else {
			b.Data[i] = rng.Float32()
		}
	}
	return b
}

func zeros(t *testing.T, s tensor.Shape) *tensor.Buffer {
	t.Helper()
	b, err := tensor.NewBuffer(s)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestBlendAdditivity(t *testing.T) {
	t.Parallel()
	in := randomImage(t, tensor.Shape{Rows: 9, Cols: 11, Channels: 3}, 1)
	m, _, err := FromParams([]float32{0.05, -0.03, 0.02, -0.04, 1.3, 0.7, 0.001, 0.002})
	if err != nil {
		t.Fatal(err)
	}

	once := zeros(t, tensor.Shape{Rows: 8, Cols: 10, Channels: 3})
	Blend(m, in, once)

	twice := zeros(t, once.Shape)
	Blend(m, in, twice)
	Blend(m, in, twice)

	nonZero := 0
	for i := range once.Data {
		if twice.Data[i] != 2*once.Data[i] {
			t.Fatalf("element %d: expected %v, got %v", i, 2*once.Data[i], twice.Data[i])
		}
		if once.Data[i] != 0 {
			nonZero++
		}
	}
	if nonZero == 0 {
		t.Fatal("mapping produced no contributions; test is vacuous")
	}
}

func TestBlendIdentity(t *testing.T) {
	t.Parallel()
	s := tensor.Shape{Rows: 5, Cols: 6, Channels: 4}
	in := randomImage(t, s, 2)
	out := zeros(t, s)
	Blend(Identity(), in, out)

	wc := s.WeightChannel()
	for r := 0; r < s.Rows; r++ {
		for c := 0; c < s.Cols; c++ {
			w := in.At(r, c, wc)
			if got := out.At(r, c, wc); got != w {
				t.Fatalf("(%d,%d) weight: expected %v, got %v", r, c, w, got)
			}
			for ch := 0; ch < wc; ch++ {
				want := in.At(r, c, ch) * w
				if got := out.At(r, c, ch); got != want {
					t.Fatalf("(%d,%d,%d): expected %v, got %v", r, c, ch, want, got)
				}
			}
		}
	}
}

func TestBlendIntegerTranslation(t *testing.T) {
	t.Parallel()
	s := tensor.Shape{Rows: 6, Cols: 7, Channels: 2}
	in := randomImage(t, s, 3)
	out := zeros(t, s)
	// Destination (col,row) samples source (col+2, row+1).
	Blend(Shift(2, 1), in, out)

	for r := 0; r < s.Rows; r++ {
		for c := 0; c < s.Cols; c++ {
			sr, sc := r+1, c+2
			if sr >= s.Rows || sc >= s.Cols {
				if out.At(r, c, 0) != 0 || out.At(r, c, 1) != 0 {
					t.Fatalf("(%d,%d) maps outside the source but was written", r, c)
				}
				continue
			}
			w := in.At(sr, sc, 1)
			if out.At(r, c, 1) != w || out.At(r, c, 0) != in.At(sr, sc, 0)*w {
				t.Fatalf("(%d,%d): expected exact copy of source (%d,%d)", r, c, sr, sc)
			}
		}
	}
}

func TestBlendOutOfRangeLeavesAccumulator(t *testing.T) {
	t.Parallel()
	in := randomImage(t, tensor.Shape{Rows: 4, Cols: 4, Channels: 2}, 4)
	for _, m := range []Mapping{Shift(100, 0), Shift(0, -100), Shift(-4.5, 0), {1, 0, 0, 0, 1, 0, 0, 0, 0}} {
		out := zeros(t, tensor.Shape{Rows: 4, Cols: 4, Channels: 2})
		Blend(m, in, out)
		for i, v := range out.Data {
			if v != 0 {
				t.Fatalf("mapping %v wrote %v at %d", m, v, i)
			}
		}
	}
}

func TestBlendPreservesExistingContributions(t *testing.T) {
	t.Parallel()
	in := randomImage(t, tensor.Shape{Rows: 3, Cols: 3, Channels: 2}, 5)
	out := zeros(t, in.Shape)
	for i := range out.Data {
		out.Data[i] = 7
	}
	Blend(Shift(50, 50), in, out)
	for i, v := range out.Data {
		if v != 7 {
			t.Fatalf("element %d changed to %v", i, v)
		}
	}
}

func TestBilinearMidpoint(t *testing.T) {
	t.Parallel()
	// One row, two pixels: values 1 and 3, weight 1 everywhere.
	in, err := tensor.NewBufferFromData(tensor.Shape{Rows: 1, Cols: 2, Channels: 2}, []float32{1, 1, 3, 1})
	if err != nil {
		t.Fatal(err)
	}
	if got := Bilinear(in, 0.5, 0, 0); got != 2 {
		t.Fatalf("expected interpolated value 2, got %v", got)
	}

	out := zeros(t, tensor.Shape{Rows: 1, Cols: 1, Channels: 2})
	Blend(Shift(0.5, 0), in, out)
	if out.Data[0] != 2 || out.Data[1] != 1 {
		t.Fatalf("expected [2 1], got %v", out.Data)
	}
}

func TestBilinearZeroPadding(t *testing.T) {
	t.Parallel()
	in, err := tensor.NewBufferFromData(tensor.Shape{Rows: 2, Cols: 2, Channels: 1}, []float32{
		1, 2,
		3, 4,
	})
	if err != nil {
		t.Fatal(err)
	}

	// Right column is outside: only the left corners contribute.
	x, y := float32(1.25), float32(0.5)
	want := (1-0.25)*(1-0.5)*float32(2) + (1-0.25)*0.5*float32(4)
	if got := Bilinear(in, x, y, 0); got != want {
		t.Fatalf("pair padding: expected %v, got %v", want, got)
	}

	// Right column and bottom row outside: a single in-bounds corner.
	x, y = 1.5, 1.25
	want = (1 - 0.5) * (1 - 0.25) * float32(4)
	if got := Bilinear(in, x, y, 0); got != want {
		t.Fatalf("corner padding: expected %v, got %v", want, got)
	}

	// Negative side pads too.
	if got := Bilinear(in, -0.5, 0, 0); got != 0.5*1 {
		t.Fatalf("left padding: expected 0.5, got %v", got)
	}
}

func TestBlendLastColumnIsExact(t *testing.T) {
	t.Parallel()
	in := randomImage(t, tensor.Shape{Rows: 3, Cols: 3, Channels: 2}, 6)
	out := zeros(t, tensor.Shape{Rows: 1, Cols: 1, Channels: 2})
	// Lands exactly on the bottom-right pixel; three corners are padded
	// but carry zero bilinear weight.
	Blend(Shift(2, 2), in, out)
	w := in.At(2, 2, 1)
	if out.Data[1] != w || out.Data[0] != in.At(2, 2, 0)*w {
		t.Fatalf("expected exact edge sample, got %v", out.Data)
	}
}

func TestBlendElementMatchesTile(t *testing.T) {
	t.Parallel()
	in := randomImage(t, tensor.Shape{Rows: 7, Cols: 5, Channels: 3}, 7)
	m, _, err := FromParams([]float32{0.1, 0.02, -0.05, 0.1, 0.4, -0.3})
	if err != nil {
		t.Fatal(err)
	}
	s := tensor.Shape{Rows: 6, Cols: 6, Channels: 3}
	a := zeros(t, s)
	b := zeros(t, s)
	Blend(m, in, a)
	for r := -1; r <= s.Rows; r++ {
		for c := -1; c <= s.Cols; c++ {
			for ch := -1; ch <= s.Channels; ch++ {
				BlendElement(m, in, b, r, c, ch)
			}
		}
	}
	if d := tensor.MaxAbsDiff(a.Data, b.Data); d != 0 {
		t.Fatalf("per-element and tiled kernels differ by %g", d)
	}
}
