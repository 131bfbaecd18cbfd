// Package block partitions a channel into fixed-size tiles and reassembles
// them. Tiles on the bottom and right edges are truncated to the remainder,
// never padded.
package block

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/davesmith10/dctcodec/internal/ir"
)

// Shape is the nominal tile size in samples.
type Shape struct {
	Rows int
	Cols int
}

// DefaultShape is the 8x8 block used by the transform stage.
var DefaultShape = Shape{Rows: 8, Cols: 8}

// Grid is the number of tile rows and columns a channel was split into.
// A flat tile list does not determine it, so it travels alongside the tiles.
type Grid struct {
	Rows int
	Cols int
}

// Len returns the number of tiles in the grid.
func (g Grid) Len() int { return g.Rows * g.Cols }

// Policy selects how Split treats dimensions that are not multiples of the
// block shape.
type Policy int

const (
	// Truncate cuts the trailing row/column of tiles to the remainder.
	Truncate Policy = iota
	// Strict rejects uneven dimensions with ir.ErrShapeMismatch.
	Strict
)

func (s Shape) validate() error {
	if s.Rows <= 0 || s.Cols <= 0 {
		return fmt.Errorf("%w: block shape %dx%d", ir.ErrInvalidArgument, s.Rows, s.Cols)
	}
	return nil
}

// GridOf returns the grid Split produces for a rows x cols channel.
func GridOf(rows, cols int, s Shape) Grid {
	return Grid{
		Rows: (rows + s.Rows - 1) / s.Rows,
		Cols: (cols + s.Cols - 1) / s.Cols,
	}
}

// TileShape returns the size of the tile at grid position (gy, gx) for a
// rows x cols channel split with s.
func TileShape(rows, cols int, s Shape, gy, gx int) Shape {
	return Shape{
		Rows: min(s.Rows, rows-gy*s.Rows),
		Cols: min(s.Cols, cols-gx*s.Cols),
	}
}

// Split cuts p into tiles in row-major grid order.
func Split(p *ir.Plane, s Shape, policy Policy) ([]*ir.Plane, Grid, error) {
	if err := s.validate(); err != nil {
		return nil, Grid{}, err
	}
	if p == nil || p.Rows == 0 || p.Cols == 0 {
		return nil, Grid{}, fmt.Errorf("%w: empty channel", ir.ErrShapeMismatch)
	}
	if policy == Strict && (p.Rows%s.Rows != 0 || p.Cols%s.Cols != 0) {
		return nil, Grid{}, fmt.Errorf("%w: %dx%d channel is not a multiple of %dx%d blocks",
			ir.ErrShapeMismatch, p.Rows, p.Cols, s.Rows, s.Cols)
	}

	grid := GridOf(p.Rows, p.Cols, s)
	tiles := make([]*ir.Plane, 0, grid.Len())
	for gy := 0; gy < grid.Rows; gy++ {
		for gx := 0; gx < grid.Cols; gx++ {
			ts := TileShape(p.Rows, p.Cols, s, gy, gx)
			tile := ir.NewPlane(ts.Rows, ts.Cols)
			for y := 0; y < ts.Rows; y++ {
				src := p.Row(gy*s.Rows + y)[gx*s.Cols:]
				copy(tile.Row(y), src[:ts.Cols])
			}
			tiles = append(tiles, tile)
		}
	}
	return tiles, grid, nil
}

// Unsplit reassembles tiles produced by Split. Tiles are concatenated
// horizontally within each grid row, then the rows are stacked.
func Unsplit(tiles []*ir.Plane, grid Grid) (*ir.Plane, error) {
	if grid.Rows <= 0 || grid.Cols <= 0 {
		return nil, fmt.Errorf("%w: grid shape %dx%d", ir.ErrInvalidArgument, grid.Rows, grid.Cols)
	}
	if len(tiles) != grid.Len() {
		return nil, fmt.Errorf("%w: grid %dx%d needs %d tiles, got %d",
			ir.ErrInvalidArgument, grid.Rows, grid.Cols, grid.Len(), len(tiles))
	}
	if _, i, found := lo.FindIndexOf(tiles, func(t *ir.Plane) bool { return t == nil }); found {
		return nil, fmt.Errorf("%w: tile %d is nil", ir.ErrInvalidArgument, i)
	}

	at := func(gy, gx int) *ir.Plane { return tiles[gy*grid.Cols+gx] }

	heights := make([]int, grid.Rows)
	for gy := range heights {
		heights[gy] = at(gy, 0).Rows
		for gx := 1; gx < grid.Cols; gx++ {
			if h := at(gy, gx).Rows; h != heights[gy] {
				return nil, fmt.Errorf("%w: grid row %d mixes tile heights %d and %d",
					ir.ErrInvalidArgument, gy, heights[gy], h)
			}
		}
	}
	widths := make([]int, grid.Cols)
	for gx := range widths {
		widths[gx] = at(0, gx).Cols
		for gy := 1; gy < grid.Rows; gy++ {
			if w := at(gy, gx).Cols; w != widths[gx] {
				return nil, fmt.Errorf("%w: grid column %d mixes tile widths %d and %d",
					ir.ErrInvalidArgument, gx, widths[gx], w)
			}
		}
	}

	out := ir.NewPlane(lo.Sum(heights), lo.Sum(widths))
	y0 := 0
	for gy := 0; gy < grid.Rows; gy++ {
		x0 := 0
		for gx := 0; gx < grid.Cols; gx++ {
			tile := at(gy, gx)
			for y := 0; y < tile.Rows; y++ {
				copy(out.Row(y0 + y)[x0:], tile.Row(y))
			}
			x0 += widths[gx]
		}
		y0 += heights[gy]
	}
	return out, nil
}
