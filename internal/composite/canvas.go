package composite

import (
	"errors"
	"fmt"
	"math"

	"github.com/samcharles93/mosaic/internal/tensor"
	"github.com/samcharles93/mosaic/internal/warp"
)

// extentSlack absorbs float32 rounding in the mapped corners before the
// extent is rounded up to whole pixels.
const extentSlack = 1e-3

// maxCanvasSide rejects extents produced by frames mapped across the horizon.
const maxCanvasSide = 1 << 16

// Canvas is the output frame enclosing every mapped source image.
type Canvas struct {
	Rows, Cols int
	// Offset takes canvas coordinates to the shared destination frame.
	Offset warp.Mapping
}

// PlanCanvas computes the smallest canvas that holds every frame once the
// frames are shifted by the returned offset. Frame images need only a valid
// shape.
func PlanCanvas(frames []Frame) (Canvas, error) {
	if len(frames) == 0 {
		return Canvas{}, errors.New("plan canvas: no frames")
	}
	maps := make([]warp.Mapping, len(frames))
	sizes := make([]warp.Size, len(frames))
	for i, f := range frames {
		if f.Image == nil {
			return Canvas{}, &ConfigError{Frame: i, Name: f.Name, Err: errors.New("nil image")}
		}
		maps[i] = f.Mapping
		sizes[i] = warp.Size{W: f.Image.Shape.Cols, H: f.Image.Shape.Rows}
	}
	extent, offset, err := warp.MaximumExtent(maps, sizes)
	if err != nil {
		return Canvas{}, fmt.Errorf("plan canvas: %w", err)
	}
	if !(extent.X > extentSlack && extent.Y > extentSlack) || extent.X > maxCanvasSide || extent.Y > maxCanvasSide {
		return Canvas{}, fmt.Errorf("plan canvas: %w: degenerate extent %.1fx%.1f", tensor.ErrZeroDimension, extent.X, extent.Y)
	}
	return Canvas{
		Rows:   int(math.Ceil(extent.Y - extentSlack)),
		Cols:   int(math.Ceil(extent.X - extentSlack)),
		Offset: offset,
	}, nil
}

// Shape returns the accumulator shape for the canvas.
func (c Canvas) Shape(channels int) tensor.Shape {
	return tensor.Shape{Rows: c.Rows, Cols: c.Cols, Channels: channels}
}

// Place returns copies of frames whose mappings start from canvas
// coordinates.
func (c Canvas) Place(frames []Frame) []Frame {
	out := make([]Frame, len(frames))
	for i, f := range frames {
		f.Mapping = f.Mapping.Compose(nil, &c.Offset)
		out[i] = f
	}
	return out
}
