package backend

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/samcharles93/mosaic/internal/tensor"
	"github.com/samcharles93/mosaic/internal/warp"
)

// invocation is the shared state of one dispatch. Workers claim tile indices
// with an atomic counter, so tiles of uneven cost balance across the pool.
// Each tile owns a disjoint block of the output; no locking is needed.
type invocation struct {
	m       warp.Mapping
	in, out *tensor.Buffer
	grid    Grid
	n       int
	next    atomic.Int64
	failure atomic.Pointer[ExecutionError]
	wg      sync.WaitGroup
}

func (inv *invocation) run() {
	defer inv.wg.Done()
	defer func() {
		if rec := recover(); rec != nil {
			inv.failure.CompareAndSwap(nil, &ExecutionError{Backend: CPU, Value: rec})
		}
	}()
	for {
		i := int(inv.next.Add(1)) - 1
		if i >= inv.n || inv.failure.Load() != nil {
			return
		}
		warp.BlendTile(inv.m, inv.in, inv.out, inv.grid.Tile(i))
	}
}

// tilePool is a persistent set of worker goroutines fed one invocation per
// worker slot.
type tilePool struct {
	size      int
	tasks     chan *invocation
	closeOnce sync.Once
	closed    atomic.Bool
}

func newTilePool(size int) *tilePool {
	if size < 1 {
		size = 1
	}
	p := &tilePool{
		size:  size,
		tasks: make(chan *invocation, size*2),
	}
	for range size {
		go func() {
			for inv := range p.tasks {
				inv.run()
			}
		}()
	}
	return p
}

func (p *tilePool) close() {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		close(p.tasks)
	})
}

type cpuBackend struct {
	tiles Tiles
	pool  *tilePool
	mu    sync.Mutex
}

func newCPUBackend(tiles Tiles, workers int) *cpuBackend {
	return &cpuBackend{
		tiles: tiles,
		pool:  newTilePool(workers),
	}
}

func (b *cpuBackend) Name() string { return CPU }

// Close stops the worker goroutines. Dispatch after Close runs the
// invocation on the calling goroutine.
func (b *cpuBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pool.close()
	return nil
}

// Dispatch is safe for concurrent use, but concurrent dispatches into the
// same output buffer race; callers serialise invocations per accumulator.
func (b *cpuBackend) Dispatch(ctx context.Context, m warp.Mapping, in, out *tensor.Buffer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	grid := NewGrid(out.Shape, b.tiles)
	inv := &invocation{m: m, in: in, out: out, grid: grid, n: grid.Len()}
	if inv.n == 0 {
		return nil
	}

	workers := min(b.pool.size, inv.n)

	b.mu.Lock()
	if b.pool.closed.Load() || workers <= 1 {
		b.mu.Unlock()
		inv.wg.Add(1)
		inv.run()
	} else {
		inv.wg.Add(workers)
		for range workers {
			b.pool.tasks <- inv
		}
		b.mu.Unlock()
		inv.wg.Wait()
	}

	if f := inv.failure.Load(); f != nil {
		return f
	}
	return nil
}
