package imageio

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/samcharles93/mosaic/internal/tensor"
)

func checker(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			v := uint8(0)
			if (x+y)%2 == 0 {
				v = 255
			}
			img.SetNRGBA(x, y, color.NRGBA{R: v, G: 255 - v, B: 51, A: 255})
		}
	}
	return img
}

func TestToBuffer(t *testing.T) {
	t.Parallel()
	img := checker(3, 2)
	rgb := ToBuffer(img, false)
	if rgb.Shape != (tensor.Shape{Rows: 2, Cols: 3, Channels: 3}) {
		t.Fatalf("unexpected shape %s", rgb.Shape)
	}
	px := rgb.Pixel(0, 0)
	if px[0] != 1 || px[1] != 0 || px[2] != 0.2 {
		t.Fatalf("unexpected pixel %v", px)
	}
	gray := ToBuffer(img, true)
	if gray.Shape.Channels != 1 {
		t.Fatalf("expected one channel, got %d", gray.Shape.Channels)
	}
	for _, v := range gray.Data {
		if v < 0 || v > 1 {
			t.Fatalf("gray sample out of range: %v", v)
		}
	}
}

func TestAlpha(t *testing.T) {
	t.Parallel()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{A: 255})
	a := Alpha(img)
	if a[0] != 1 || a[1] != 0 {
		t.Fatalf("unexpected alpha %v", a)
	}
}

func TestFromBuffer(t *testing.T) {
	t.Parallel()
	buf, _ := tensor.NewBufferFromData(tensor.Shape{Rows: 1, Cols: 2, Channels: 4}, []float32{
		1, 0.5, 0, 1,
		0, 0, 0, 0,
	})
	img, err := FromBuffer(buf)
	if err != nil {
		t.Fatal(err)
	}
	nrgba, ok := img.(*image.NRGBA)
	if !ok {
		t.Fatalf("expected *image.NRGBA, got %T", img)
	}
	if got := nrgba.NRGBAAt(0, 0); got != (color.NRGBA{R: 255, G: 128, B: 0, A: 255}) {
		t.Fatalf("unexpected pixel %v", got)
	}
	if got := nrgba.NRGBAAt(1, 0); got.A != 0 {
		t.Fatalf("uncovered pixel should be transparent, got %v", got)
	}

	gbuf, _ := tensor.NewBufferFromData(tensor.Shape{Rows: 1, Cols: 2, Channels: 2}, []float32{0.5, 1, 0.7, 0})
	gimg, err := FromBuffer(gbuf)
	if err != nil {
		t.Fatal(err)
	}
	g := gimg.(*image.Gray)
	if g.GrayAt(0, 0).Y != 128 || g.GrayAt(1, 0).Y != 0 {
		t.Fatalf("unexpected gray pixels %v", g.Pix)
	}

	bad, _ := tensor.NewBuffer(tensor.Shape{Rows: 1, Cols: 1, Channels: 3})
	if _, err := FromBuffer(bad); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()
	img := checker(4, 3)
	dir := t.TempDir()
	for _, name := range []string{"out.png", "out.bmp", "out.tiff"} {
		path := filepath.Join(dir, name)
		if err := Save(path, img); err != nil {
			t.Fatalf("%s: save: %v", name, err)
		}
		got, err := Load(path)
		if err != nil {
			t.Fatalf("%s: load: %v", name, err)
		}
		if got.Bounds() != img.Bounds() {
			t.Fatalf("%s: bounds %v, expected %v", name, got.Bounds(), img.Bounds())
		}
		r, g, b, _ := got.At(1, 0).RGBA()
		if r>>8 != 0 || g>>8 != 255 || b>>8 != 51 {
			t.Fatalf("%s: unexpected pixel (%d,%d,%d)", name, r>>8, g>>8, b>>8)
		}
	}
}

func TestEncodeUnsupported(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	if err := Encode(&buf, checker(1, 1), "xcf"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if FormatFromPath("/tmp/a.JPEG") != "jpeg" {
		t.Fatal("extension not lower-cased")
	}
}

func TestDownscale(t *testing.T) {
	t.Parallel()
	img := checker(10, 6)
	if Downscale(img, 1) != image.Image(img) {
		t.Fatal("factor 1 should return the input")
	}
	small := Downscale(img, 2)
	if small.Bounds().Dx() != 5 || small.Bounds().Dy() != 3 {
		t.Fatalf("unexpected size %v", small.Bounds())
	}
}
