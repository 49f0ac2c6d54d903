package backend

import (
	"fmt"

	"github.com/samcharles93/mosaic/internal/tensor"
)

// Tiles holds the dispatch tuning options. X tiles columns, Y tiles rows and
// Z tiles channels; Z=1 gives one tile layer per channel. Tile sizes affect
// scheduling only, never the accumulated result.
type Tiles struct {
	X int `yaml:"tile_size_x" json:"tile_size_x"`
	Y int `yaml:"tile_size_y" json:"tile_size_y"`
	Z int `yaml:"tile_size_z" json:"tile_size_z"`
}

// DefaultTiles returns 16×16 spatial tiles, one channel per layer.
func DefaultTiles() Tiles {
	return Tiles{X: 16, Y: 16, Z: 1}
}

// Validate rejects non-positive tile sizes.
func (t Tiles) Validate() error {
	if t.X <= 0 || t.Y <= 0 || t.Z <= 0 {
		return fmt.Errorf("tile sizes must be positive, got %dx%dx%d", t.X, t.Y, t.Z)
	}
	return nil
}

// OrDefault fills zero-valued sizes from DefaultTiles.
func (t Tiles) OrDefault() Tiles {
	d := DefaultTiles()
	if t.X == 0 {
		t.X = d.X
	}
	if t.Y == 0 {
		t.Y = d.Y
	}
	if t.Z == 0 {
		t.Z = d.Z
	}
	return t
}

func (t Tiles) String() string {
	return fmt.Sprintf("%dx%dx%d", t.X, t.Y, t.Z)
}

// Grid partitions a destination shape into tiles. NX, NY and NZ are the tile
// counts along columns, rows and channels.
type Grid struct {
	Shape      tensor.Shape
	Tiles      Tiles
	NX, NY, NZ int
}

// NewGrid computes the dispatch grid ceil(cols/X) × ceil(rows/Y) ×
// ceil(channels/Z). Tiles must be valid.
func NewGrid(s tensor.Shape, t Tiles) Grid {
	return Grid{
		Shape: s,
		Tiles: t,
		NX:    ceilDiv(s.Cols, t.X),
		NY:    ceilDiv(s.Rows, t.Y),
		NZ:    ceilDiv(s.Channels, t.Z),
	}
}

// Len returns the number of tiles.
func (g Grid) Len() int {
	return g.NX * g.NY * g.NZ
}

// Tile returns tile i, enumerated channel layer first, then row, then column.
// Tiles on the far edges are clipped to the shape.
func (g Grid) Tile(i int) tensor.Region {
	tx := i % g.NX
	ty := (i / g.NX) % g.NY
	tz := i / (g.NX * g.NY)
	r := tensor.Region{
		Row0: ty * g.Tiles.Y, Row1: (ty + 1) * g.Tiles.Y,
		Col0: tx * g.Tiles.X, Col1: (tx + 1) * g.Tiles.X,
		Ch0: tz * g.Tiles.Z, Ch1: (tz + 1) * g.Tiles.Z,
	}
	return r.Clip(g.Shape)
}

func ceilDiv(n, d int) int {
	return (n + d - 1) / d
}
