// Package grid implements the uniform-cell spatial index used for
// neighbor candidate lookup.
//
// Cells are keyed by integer coordinates in a map of flat id slices and
// rebuilt from scratch each sub-step; there is no incremental update
// path. With the cell edge set to the interaction radius a query scans
// at most a 3x3x3 block, so candidate count stays O(1) per particle for
// roughly uniform lattices.
package grid

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type cellKey [3]int

// Index maps cell coordinates to the particle ids inside each cell.
type Index struct {
	cell  float64
	cells map[cellKey][]int
}

// New builds an empty index with the given cell edge length, normally
// the kernel support radius.
func New(cell float64) *Index {
	return &Index{cell: cell, cells: make(map[cellKey][]int)}
}

// CellSize reports the cell edge length.
func (g *Index) CellSize() float64 { return g.cell }

func (g *Index) keyOf(p mgl64.Vec3) cellKey {
	return cellKey{
		int(math.Floor(p.X() / g.cell)),
		int(math.Floor(p.Y() / g.cell)),
		int(math.Floor(p.Z() / g.cell)),
	}
}

// Rebuild clears the index and re-inserts every position, id by slice
// offset. Buckets are reused across rebuilds to keep allocation flat.
func (g *Index) Rebuild(pos []mgl64.Vec3) {
	for k, ids := range g.cells {
		g.cells[k] = ids[:0]
	}
	for i, p := range pos {
		k := g.keyOf(p)
		g.cells[k] = append(g.cells[k], i)
	}
}

// Query calls fn for every id whose cell intersects the cube of the
// given radius around p. Callers filter by exact distance; the index
// only bounds the candidate set.
func (g *Index) Query(p mgl64.Vec3, radius float64, fn func(id int)) {
	lo := g.keyOf(p.Sub(mgl64.Vec3{radius, radius, radius}))
	hi := g.keyOf(p.Add(mgl64.Vec3{radius, radius, radius}))
	for x := lo[0]; x <= hi[0]; x++ {
		for y := lo[1]; y <= hi[1]; y++ {
			for z := lo[2]; z <= hi[2]; z++ {
				for _, id := range g.cells[cellKey{x, y, z}] {
					fn(id)
				}
			}
		}
	}
}
