// Package imageio converts between encoded images and flat float32 buffers.
package imageio

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/samcharles93/mosaic/internal/tensor"
)

var ErrUnsupportedFormat = errors.New("unsupported image format")

// Decode reads any registered format (png, jpeg, gif, bmp, tiff, webp).
func Decode(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	return img, format, nil
}

// Load decodes the image at path.
func Load(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	img, _, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// Encode writes img to w in the named format.
func Encode(w io.Writer, img image.Image, format string) error {
	switch strings.ToLower(format) {
	case "png":
		return png.Encode(w, img)
	case "jpg", "jpeg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 92})
	case "tif", "tiff":
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	case "bmp":
		return bmp.Encode(w, img)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// FormatFromPath returns the output format implied by the file extension.
func FormatFromPath(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}

// Save encodes img to path, choosing the format from the extension.
func Save(path string, img image.Image) (err error) {
	format := FormatFromPath(path)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return Encode(f, img, format)
}

// ToBuffer converts img to a color-only buffer with samples in [0, 1].
// Gray produces one channel (luma), otherwise three (RGB, un-premultiplied).
func ToBuffer(img image.Image, gray bool) *tensor.Buffer {
	b := img.Bounds()
	ch := 3
	if gray {
		ch = 1
	}
	s := tensor.Shape{Rows: b.Dy(), Cols: b.Dx(), Channels: ch}
	out := &tensor.Buffer{Shape: s, Data: make([]float32, s.Len())}
	for y := range s.Rows {
		for x := range s.Cols {
			px := out.Pixel(y, x)
			c := img.At(b.Min.X+x, b.Min.Y+y)
			if gray {
				g := color.Gray16Model.Convert(c).(color.Gray16)
				px[0] = float32(g.Y) / 0xffff
				continue
			}
			n := color.NRGBA64Model.Convert(c).(color.NRGBA64)
			px[0] = float32(n.R) / 0xffff
			px[1] = float32(n.G) / 0xffff
			px[2] = float32(n.B) / 0xffff
		}
	}
	return out
}

// Alpha returns the alpha channel of img as a rows×cols map in [0, 1].
func Alpha(img image.Image) []float32 {
	b := img.Bounds()
	out := make([]float32, b.Dx()*b.Dy())
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			_, _, _, a := img.At(x, y).RGBA()
			out[i] = float32(a) / 0xffff
			i++
		}
	}
	return out
}

// FromBuffer converts a normalized buffer back into an image. The trailing
// channel is the coverage mask. Two channels give *image.Gray with uncovered
// pixels black; four give *image.NRGBA with the mask as alpha.
func FromBuffer(buf *tensor.Buffer) (image.Image, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	s := buf.Shape
	rect := image.Rect(0, 0, s.Cols, s.Rows)
	switch s.Channels {
	case 2:
		img := image.NewGray(rect)
		for y := range s.Rows {
			for x := range s.Cols {
				px := buf.Pixel(y, x)
				img.Pix[y*img.Stride+x] = to8(px[0] * px[1])
			}
		}
		return img, nil
	case 4:
		img := image.NewNRGBA(rect)
		for y := range s.Rows {
			for x := range s.Cols {
				px := buf.Pixel(y, x)
				o := y*img.Stride + x*4
				img.Pix[o+0] = to8(px[0])
				img.Pix[o+1] = to8(px[1])
				img.Pix[o+2] = to8(px[2])
				img.Pix[o+3] = to8(px[3])
			}
		}
		return img, nil
	default:
		return nil, fmt.Errorf("%w: %d channels (expected 2 or 4)", ErrUnsupportedFormat, s.Channels)
	}
}

func to8(v float32) uint8 {
	if !(v > 0) {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

// Downscale shrinks img by factor using Catmull-Rom resampling. Factors at
// or below 1 return img unchanged.
func Downscale(img image.Image, factor float64) image.Image {
	if factor <= 1 {
		return img
	}
	b := img.Bounds()
	w := max(int(float64(b.Dx())/factor), 1)
	h := max(int(float64(b.Dy())/factor), 1)
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
