package project

import (
	"context"
	"fmt"
	"image"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/samcharles93/mosaic/internal/composite"
	"github.com/samcharles93/mosaic/internal/imageio"
	"github.com/samcharles93/mosaic/internal/logger"
	"github.com/samcharles93/mosaic/internal/tensor"
	"github.com/samcharles93/mosaic/internal/warp"
	"github.com/samcharles93/mosaic/pkg/wbuf"
)

// Job is a manifest with its frames loaded and placed on the canvas.
type Job struct {
	Manifest *Manifest
	Frames   []composite.Frame
	Canvas   composite.Canvas
	Channels int
}

// Shape returns the accumulator shape of the job.
func (j *Job) Shape() tensor.Shape {
	return j.Canvas.Shape(j.Channels)
}

// Load decodes every frame concurrently and plans the canvas. Frames keep
// manifest order.
func Load(ctx context.Context, m *Manifest, log logger.Logger) (*Job, error) {
	log = logger.OrDiscard(log).With("component", "project")
	frames := make([]composite.Frame, len(m.Frames))

	start := time.Now()
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, fs := range m.Frames {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			f, err := m.loadFrame(fs)
			if err != nil {
				return fmt.Errorf("frame %d (%s): %w", i, fs.Path, err)
			}
			frames[i] = f
			log.Debug("frame loaded", "frame", i, "path", fs.Path, "shape", f.Image.Shape.String())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	canvas, err := m.canvas(frames)
	if err != nil {
		return nil, err
	}
	job := &Job{
		Manifest: m,
		Frames:   canvas.Place(frames),
		Canvas:   canvas,
		Channels: frames[0].Image.Shape.Channels,
	}
	log.Info("frames loaded",
		"frames", len(frames), "canvas", fmt.Sprintf("%dx%d", canvas.Rows, canvas.Cols),
		"elapsed", time.Since(start))
	return job, nil
}

func (m *Manifest) canvas(frames []composite.Frame) (composite.Canvas, error) {
	if m.Canvas == nil {
		return composite.PlanCanvas(frames)
	}
	return composite.Canvas{
		Rows:   m.Canvas.Rows,
		Cols:   m.Canvas.Cols,
		Offset: warp.Shift(m.Canvas.Origin[0], m.Canvas.Origin[1]),
	}, nil
}

func (m *Manifest) resolve(path string) string {
	if filepath.IsAbs(path) || m.Dir == "" {
		return path
	}
	return filepath.Join(m.Dir, path)
}

func (m *Manifest) loadFrame(fs FrameSpec) (composite.Frame, error) {
	path := m.resolve(fs.Path)
	var (
		img  *tensor.Buffer
		full image.Point
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".wbuf") {
		if m.Downscale > 1 {
			return composite.Frame{}, fmt.Errorf("%w: downscale does not apply to raw frames", ErrInvalidManifest)
		}
		img, err = loadRaw(path)
		if img != nil {
			full = image.Pt(img.Shape.Cols, img.Shape.Rows)
		}
	} else {
		img, full, err = m.loadImage(path)
	}
	if err != nil {
		return composite.Frame{}, err
	}

	if fs.Weight != nil && *fs.Weight != 1 {
		s := img.Shape
		wc := s.WeightChannel()
		for row := range s.Rows {
			for col := range s.Cols {
				img.Pixel(row, col)[wc] *= *fs.Weight
			}
		}
	}

	// Mappings are given at full resolution.
	mapping, err := fs.Mapping(full.X, full.Y)
	if err != nil {
		return composite.Frame{}, err
	}
	if m.Downscale > 1 {
		mapping = mapping.Rescale(float32(m.Downscale))
	}
	return composite.Frame{Name: filepath.Base(path), Mapping: mapping, Image: img}, nil
}

// loadImage decodes an encoded image and attaches its weight channel. Image
// alpha multiplies the feather weights so transparent pixels never
// contribute.
func (m *Manifest) loadImage(path string) (*tensor.Buffer, image.Point, error) {
	src, err := imageio.Load(path)
	if err != nil {
		return nil, image.Point{}, err
	}
	full := src.Bounds().Size()
	src = imageio.Downscale(src, m.Downscale)
	colors := imageio.ToBuffer(src, m.Gray)

	rows, cols := colors.Shape.Rows, colors.Shape.Cols
	weights := composite.UniformWeights(rows, cols)
	if m.FeatherEnabled() {
		weights = composite.FeatherWeights(rows, cols)
	}
	for i, a := range imageio.Alpha(src) {
		weights[i] *= a
	}
	buf, err := composite.WithWeights(colors, weights)
	return buf, full, err
}

// loadRaw reads a buffer file. Its trailing channel is already a weight.
func loadRaw(path string) (*tensor.Buffer, error) {
	f, err := wbuf.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return tensor.NewBufferFromRaw(tensor.ShapeFromWords(f.Shape()), f.Payload())
}
