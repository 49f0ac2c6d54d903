package main

import (
	"github.com/samcharles93/mosaic/internal/backend"
	"github.com/samcharles93/mosaic/internal/composite"
	"github.com/samcharles93/mosaic/internal/logger"
)

// newCompositor builds the configured backend, plus a serial fallback unless
// the primary is already serial or fallback is disabled. The returned
// closer releases both.
func newCompositor(log logger.Logger) (*composite.Compositor, func(), error) {
	opts := backend.Options{Tiles: flagTiles(), Workers: int(workers), Logger: log}
	primary, err := backend.New(backendName, opts)
	if err != nil {
		return nil, nil, err
	}
	c := &composite.Compositor{Backend: primary, Logger: log}
	if !noFallback && primary.Name() != backend.Serial {
		fallback, err := backend.New(backend.Serial, opts)
		if err != nil {
			_ = primary.Close()
			return nil, nil, err
		}
		c.Fallback = fallback
	}
	closer := func() {
		_ = c.Backend.Close()
		if c.Fallback != nil {
			_ = c.Fallback.Close()
		}
	}
	return c, closer, nil
}
