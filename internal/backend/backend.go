// Package backend dispatches the warp-sample-blend kernel over a tiled
// destination grid. Every backend produces the same accumulator; they differ
// only in how tiles are scheduled.
package backend

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/samcharles93/mosaic/internal/logger"
	"github.com/samcharles93/mosaic/internal/tensor"
	"github.com/samcharles93/mosaic/internal/warp"
)

const (
	Serial = "serial"
	CPU    = "cpu"
	Auto   = "auto"
)

// Backend runs one kernel invocation covering the full destination shape.
// Dispatch returns only after every write of the invocation is visible to the
// caller. A failed dispatch leaves out in an undefined state.
type Backend interface {
	Name() string
	Dispatch(ctx context.Context, m warp.Mapping, in, out *tensor.Buffer) error
	Close() error
}

// Options configures a backend.
type Options struct {
	Tiles   Tiles
	Workers int
	Logger  logger.Logger
}

func Normalize(name string) (string, error) {
	backend := strings.ToLower(strings.TrimSpace(name))
	if backend == "" {
		return Auto, nil
	}
	switch backend {
	case Serial, CPU, Auto:
		return backend, nil
	default:
		return "", fmt.Errorf("unknown backend %q (expected auto, cpu, or serial)", backend)
	}
}

// New constructs the named backend. "auto" resolves to the pooled cpu
// backend.
func New(name string, opts Options) (Backend, error) {
	name, err := Normalize(name)
	if err != nil {
		return nil, err
	}
	opts.Tiles = opts.Tiles.OrDefault()
	if err := opts.Tiles.Validate(); err != nil {
		return nil, err
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	log := logger.OrDiscard(opts.Logger).With("component", "backend")

	switch name {
	case Serial:
		log.Debug("backend ready", "name", Serial, "tiles", opts.Tiles.String())
		return &serialBackend{tiles: opts.Tiles}, nil
	default:
		log.Debug("backend ready", "name", CPU, "tiles", opts.Tiles.String(),
			"workers", opts.Workers, "features", strings.Join(Features(), ","))
		return newCPUBackend(opts.Tiles, opts.Workers), nil
	}
}

// serialBackend walks the grid on the calling goroutine. It is the reference
// every other backend is checked against.
type serialBackend struct {
	tiles Tiles
}

func (b *serialBackend) Name() string { return Serial }

func (b *serialBackend) Close() error { return nil }

func (b *serialBackend) Dispatch(ctx context.Context, m warp.Mapping, in, out *tensor.Buffer) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = executionError(Serial, rec)
		}
	}()
	grid := NewGrid(out.Shape, b.tiles)
	for i := range grid.Len() {
		warp.BlendTile(m, in, out, grid.Tile(i))
	}
	return nil
}
