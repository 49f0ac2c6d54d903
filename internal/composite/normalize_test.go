package composite

import (
	"errors"
	"math"
	"testing"

	"github.com/samcharles93/mosaic/internal/tensor"
	"github.com/samcharles93/mosaic/internal/warp"
)

func TestNormalizeZeroWeightPolicy(t *testing.T) {
	t.Parallel()
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))
	acc, err := tensor.NewBufferFromData(tensor.Shape{Rows: 1, Cols: 6, Channels: 3}, []float32{
		6, 3, 3, // weighted
		5, 5, 0, // zero weight
		1, 1, -2, // negative weight
		1, 1, nan,
		1, 1, inf,
		0, 0, 0, // untouched
	})
	if err != nil {
		t.Fatal(err)
	}
	out, err := Normalize(acc)
	if err != nil {
		t.Fatal(err)
	}
	want := []float32{2, 1, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	for i, v := range out.Data {
		if v != want[i] {
			t.Fatalf("element %d: expected %v, got %v", i, want[i], v)
		}
	}
	if acc.Data[0] != 6 {
		t.Fatal("Normalize modified its input")
	}
	if out.Shape != acc.Shape {
		t.Fatalf("shape changed: %s", out.Shape)
	}
}

func TestNormalizeInPlace(t *testing.T) {
	t.Parallel()
	acc, _ := tensor.NewBufferFromData(tensor.Shape{Rows: 1, Cols: 2, Channels: 2}, []float32{3, 1.5, 0, 0})
	if err := NormalizeInPlace(acc); err != nil {
		t.Fatal(err)
	}
	if acc.Data[0] != 2 || acc.Data[1] != 1 || acc.Data[2] != 0 || acc.Data[3] != 0 {
		t.Fatalf("unexpected result %v", acc.Data)
	}
}

func TestNormalizeRejectsInvalidBuffer(t *testing.T) {
	t.Parallel()
	bad := &tensor.Buffer{Shape: tensor.Shape{Rows: 1, Cols: 1, Channels: 2}, Data: []float32{1}}
	if _, err := Normalize(bad); !errors.Is(err, ErrInvalidConfig) || !errors.Is(err, tensor.ErrLengthMismatch) {
		t.Fatalf("expected length mismatch, got %v", err)
	}
}

func TestFeatherWeights(t *testing.T) {
	t.Parallel()
	w := FeatherWeights(4, 5)
	if len(w) != 20 {
		t.Fatalf("expected 20 weights, got %d", len(w))
	}
	var peak float32
	for i, v := range w {
		if !(v > 0 && v <= 1) {
			t.Fatalf("weight %d out of (0,1]: %v", i, v)
		}
		peak = max(peak, v)
	}
	if peak != 1 {
		t.Fatalf("expected peak weight 1, got %v", peak)
	}
	// Outer ring sits at half the peak for a 4-row image.
	if w[0] != 0.5 || w[1*5+2] != 1 {
		t.Fatalf("unexpected profile %v", w)
	}
	if FeatherWeights(0, 3) != nil {
		t.Fatal("expected nil for empty image")
	}
}

func TestWithWeights(t *testing.T) {
	t.Parallel()
	img, _ := tensor.NewBufferFromData(tensor.Shape{Rows: 1, Cols: 2, Channels: 2}, []float32{1, 2, 3, 4})
	out, err := WithWeights(img, []float32{0.5, 0.25})
	if err != nil {
		t.Fatal(err)
	}
	want := []float32{1, 2, 0.5, 3, 4, 0.25}
	if out.Shape.Channels != 3 {
		t.Fatalf("expected 3 channels, got %d", out.Shape.Channels)
	}
	for i := range want {
		if out.Data[i] != want[i] {
			t.Fatalf("element %d: expected %v, got %v", i, want[i], out.Data[i])
		}
	}
	if _, err := WithWeights(img, []float32{1}); !errors.Is(err, tensor.ErrLengthMismatch) {
		t.Fatalf("expected length mismatch, got %v", err)
	}
}

func TestPlanCanvasProjective(t *testing.T) {
	t.Parallel()
	img, _ := tensor.NewBuffer(tensor.Shape{Rows: 10, Cols: 20, Channels: 2})
	// Places the image at (-5, 3) in the shared frame.
	frames := []Frame{
		{Mapping: warp.Shift(5, -3), Image: img},
		{Mapping: warp.Identity(), Image: img},
	}
	c, err := PlanCanvas(frames)
	if err != nil {
		t.Fatal(err)
	}
	if c.Cols != 25 || c.Rows != 13 {
		t.Fatalf("expected 13x25 canvas, got %dx%d", c.Rows, c.Cols)
	}
	placed := c.Place(frames)
	// Canvas column 0 is the first frame's left edge.
	x, y := placed[0].Mapping.Source(0, 0)
	if x != 0 || y != -3 {
		t.Fatalf("expected (0,-3), got (%v,%v)", x, y)
	}
	x, y = placed[1].Mapping.Source(0, 0)
	if x != -5 || y != 0 {
		t.Fatalf("expected (-5,0), got (%v,%v)", x, y)
	}
	if frames[0].Mapping != warp.Shift(5, -3) {
		t.Fatal("Place modified its input")
	}
}

func TestPlanCanvasErrors(t *testing.T) {
	t.Parallel()
	if _, err := PlanCanvas(nil); err == nil {
		t.Fatal("expected error for no frames")
	}
	img, _ := tensor.NewBuffer(tensor.Shape{Rows: 2, Cols: 2, Channels: 2})
	if _, err := PlanCanvas([]Frame{{Mapping: warp.Mapping{}, Image: img}}); err == nil {
		t.Fatal("expected error for singular mapping")
	}
}
