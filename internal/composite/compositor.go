// Package composite sequences kernel invocations into a shared accumulator
// and turns the finished accumulator into a weight-averaged image.
package composite

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/samcharles93/mosaic/internal/backend"
	"github.com/samcharles93/mosaic/internal/logger"
	"github.com/samcharles93/mosaic/internal/tensor"
	"github.com/samcharles93/mosaic/internal/warp"
)

// Frame is one source image of a composite. Mapping takes accumulator
// coordinates to Image coordinates.
type Frame struct {
	Name    string
	Mapping warp.Mapping
	Image   *tensor.Buffer
}

// Compositor runs frames through a backend one invocation at a time.
// Fallback, when set, is tried once after Backend fails.
type Compositor struct {
	Backend  backend.Backend
	Fallback backend.Backend
	Logger   logger.Logger
}

var errNoBackend = errors.New("no backend configured")

// NewAccumulator allocates a zeroed accumulator of the given shape.
func NewAccumulator(s tensor.Shape) (*tensor.Buffer, error) {
	acc, err := tensor.NewBuffer(s)
	if err != nil {
		return nil, &ConfigError{Frame: -1, Err: err}
	}
	return acc, nil
}

// Run validates the inputs, zeroes acc and accumulates every frame in order.
// Validation errors wrap ErrInvalidConfig and leave acc untouched. Runtime
// errors are returned as *Failure; acc is undefined afterwards.
func (c *Compositor) Run(ctx context.Context, frames []Frame, acc *tensor.Buffer) error {
	if c.Backend == nil {
		return &ConfigError{Frame: -1, Err: errNoBackend}
	}
	if err := Validate(frames, acc); err != nil {
		return err
	}
	log := logger.OrDiscard(c.Logger).With("component", "composite")

	err := c.runOn(ctx, c.Backend, frames, acc, log)
	if err == nil || c.Fallback == nil || ctx.Err() != nil {
		return err
	}
	log.Warn("composite failed, retrying on fallback backend",
		"backend", c.Backend.Name(), "fallback", c.Fallback.Name(), "error", err)
	return c.runOn(ctx, c.Fallback, frames, acc, log)
}

func (c *Compositor) runOn(ctx context.Context, b backend.Backend, frames []Frame, acc *tensor.Buffer, log logger.Logger) error {
	acc.Zero()
	start := time.Now()
	for i, f := range frames {
		if err := ctx.Err(); err != nil {
			return &Failure{Frame: i, Backend: b.Name(), Err: err}
		}
		t0 := time.Now()
		if err := b.Dispatch(ctx, f.Mapping, f.Image, acc); err != nil {
			return &Failure{Frame: i, Backend: b.Name(), Err: err}
		}
		if log.Enabled(slog.LevelDebug) {
			log.Debug("frame accumulated",
				"frame", i, "name", f.Name, "shape", f.Image.Shape.String(),
				"kind", f.Mapping.Kind().String(), "elapsed", time.Since(t0))
		}
	}
	log.Info("composite complete",
		"frames", len(frames), "backend", b.Name(), "shape", acc.Shape.String(),
		"elapsed", time.Since(start))
	return nil
}
