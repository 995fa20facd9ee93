package cluster

import (
	"math"

	"github.com/rnleach/satfire/internal/geo"
)

// spatialIndex buckets pixel centroids into a regular lon/lat grid so the
// connected-components pass only has to test pairs whose cells are close,
// instead of every pair in the granule. It is purely an optimization of the
// O(n²) reference algorithm: it narrows candidates, it never decides
// membership itself.
type spatialIndex struct {
	cellSize float64
	grid     map[int64][]int
}

// newSpatialIndex builds an index over pixel centroids. The cell size is
// sized generously off the widest pixel bounding-box extent seen (or the
// clustering epsilon, whichever is larger) so that any pair whose bounding
// boxes could plausibly intersect or be adjacent lands in the same or a
// neighboring cell.
func newSpatialIndex(pixels []geo.SatPixel, centers []geo.Coord, eps float64) *spatialIndex {
	maxExtent := eps
	for _, p := range pixels {
		bb := p.BoundingBox()
		if d := bb.UpperRight.Lat - bb.LowerLeft.Lat; d > maxExtent {
			maxExtent = d
		}
		if d := bb.UpperRight.Lon - bb.LowerLeft.Lon; d > maxExtent {
			maxExtent = d
		}
	}

	cellSize := maxExtent * 3
	if cellSize <= 0 {
		cellSize = 1
	}

	idx := &spatialIndex{
		cellSize: cellSize,
		grid:     make(map[int64][]int, len(pixels)),
	}

	for i, c := range centers {
		id := idx.cellIDFor(c.Lon, c.Lat)
		idx.grid[id] = append(idx.grid[id], i)
	}

	return idx
}

// cellIDFor computes the grid cell identifier for a lon/lat point using
// Szudzik's pairing function over zigzag-encoded cell coordinates, so
// negative coordinates map correctly alongside positive ones.
func (idx *spatialIndex) cellIDFor(lon, lat float64) int64 {
	return idx.cellID(int64(math.Floor(lon/idx.cellSize)), int64(math.Floor(lat/idx.cellSize)))
}

func (idx *spatialIndex) cellID(cellX, cellY int64) int64 {
	a := zigzag(cellX)
	b := zigzag(cellY)
	if a >= b {
		return a*a + a + b
	}
	return a + b*b
}

func zigzag(v int64) int64 {
	if v >= 0 {
		return 2 * v
	}
	return -2*v - 1
}

// candidates returns the indices registered in the 3x3 block of cells
// surrounding the cell containing (lon,lat). The nine cells are distinct, so
// no index appears twice.
func (idx *spatialIndex) candidates(lon, lat float64) []int {
	cellX := int64(math.Floor(lon / idx.cellSize))
	cellY := int64(math.Floor(lat / idx.cellSize))

	var out []int
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			id := idx.cellID(cellX+dx, cellY+dy)
			out = append(out, idx.grid[id]...)
		}
	}
	return out
}
