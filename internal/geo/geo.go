package geo

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
)

// EarthRadiusKm is the mean radius of a spherical Earth used for
// great-circle distance calculations.
const EarthRadiusKm = 6371.0090

// ErrDegenerateQuad is returned by Centroid when the supplied SatPixel has
// zero area (its corners are colinear or coincident). Callers must not pass
// degenerate quads; this is a caller contract violation, not a recoverable
// runtime condition.
var ErrDegenerateQuad = errors.New("geo: degenerate quadrilateral has no centroid")

// Coord is a geographic point in decimal degrees on WGS-84.
type Coord struct {
	Lat float64
	Lon float64
}

// Close reports whether a and b are within epsilon of each other, using
// squared-Euclidean distance in degree space: (Δlat)² + (Δlon)² ≤ ε².
func Close(a, b Coord, eps float64) bool {
	dLat := a.Lat - b.Lat
	dLon := a.Lon - b.Lon
	return dLat*dLat+dLon*dLon <= eps*eps
}

// BoundingBox is an axis-aligned lat/lon box with a strict (open) "inside"
// test.
type BoundingBox struct {
	LowerLeft  Coord
	UpperRight Coord
}

// Inside reports whether c lies strictly within the box (open interval on
// all four sides).
func (bb BoundingBox) Inside(c Coord) bool {
	return c.Lat > bb.LowerLeft.Lat && c.Lat < bb.UpperRight.Lat &&
		c.Lon > bb.LowerLeft.Lon && c.Lon < bb.UpperRight.Lon
}

// Intersects reports whether two bounding boxes overlap at all (closed
// comparison — used only as a cheap reject before the exact geometry test).
func (bb BoundingBox) Intersects(other BoundingBox) bool {
	if bb.UpperRight.Lat < other.LowerLeft.Lat || other.UpperRight.Lat < bb.LowerLeft.Lat {
		return false
	}
	if bb.UpperRight.Lon < other.LowerLeft.Lon || other.UpperRight.Lon < bb.LowerLeft.Lon {
		return false
	}
	return true
}

// SatPixel is the convex-quadrilateral footprint of a single raster cell.
// Corners are listed in a consistent winding order (upper-left, upper-right,
// lower-right, lower-left) following the geostationary grid convention:
// UL.Lat >= LL.Lat and UR.Lon >= UL.Lon.
type SatPixel struct {
	UL, UR, LR, LL Coord
	PowerMW        float64
	TempK          float64
	AreaKM2        float64
	FireMask       int16
}

// corners returns the four vertices in winding order.
func (p SatPixel) corners() [4]Coord {
	return [4]Coord{p.UL, p.UR, p.LR, p.LL}
}

// edge is a directed segment between two adjacent corners.
type edge struct {
	a, b Coord
}

// edges returns the four directed edges of the quad in winding order.
func (p SatPixel) edges() [4]edge {
	c := p.corners()
	return [4]edge{
		{c[0], c[1]},
		{c[1], c[2]},
		{c[2], c[3]},
		{c[3], c[0]},
	}
}

// BoundingBox returns the axis-aligned bounding box of the pixel's corners.
func (p SatPixel) BoundingBox() BoundingBox {
	c := p.corners()
	lats := make([]float64, len(c))
	lons := make([]float64, len(c))
	for i, pt := range c {
		lats[i] = pt.Lat
		lons[i] = pt.Lon
	}
	return BoundingBox{
		LowerLeft:  Coord{Lat: floats.Min(lats), Lon: floats.Min(lons)},
		UpperRight: Coord{Lat: floats.Max(lats), Lon: floats.Max(lons)},
	}
}

// segmentIntersection describes the result of intersecting two line segments.
type segmentIntersection struct {
	Point      Coord
	Exists     bool
	WithinBoth bool
	EndpointsOnly bool
}

// endpointEps is the tolerance used to decide whether a computed
// intersection point coincides with a segment endpoint. Segment endpoints
// here are always pixel corners derived from the same grid, so this only
// needs to absorb floating-point round-off, not physical-world slop.
const endpointEps = 1e-9

// intersectSegments finds the intersection of segment (a1,a2) with segment
// (b1,b2) in lon/lat space. Parallel or colinear segments are treated as
// non-intersecting by design: colinear overlap is detected separately by the
// vertex-containment leg of Overlap.
func intersectSegments(a1, a2, b1, b2 Coord) segmentIntersection {
	x1, y1 := a1.Lon, a1.Lat
	x2, y2 := a2.Lon, a2.Lat
	x3, y3 := b1.Lon, b1.Lat
	x4, y4 := b2.Lon, b2.Lat

	denom := (x1-x2)*(y3-y4) - (y1-y2)*(x3-x4)
	if denom == 0 {
		return segmentIntersection{}
	}

	t := ((x1-x3)*(y3-y4) - (y1-y3)*(x3-x4)) / denom
	u := ((x1-x3)*(y1-y2) - (y1-y3)*(x1-x2)) / denom

	point := Coord{
		Lat: y1 + t*(y2-y1),
		Lon: x1 + t*(x2-x1),
	}

	withinBoth := t >= 0 && t <= 1 && u >= 0 && u <= 1

	touchesA := closeF(t, 0) || closeF(t, 1)
	touchesB := closeF(u, 0) || closeF(u, 1)

	return segmentIntersection{
		Point:         point,
		Exists:        true,
		WithinBoth:    withinBoth,
		EndpointsOnly: touchesA && touchesB,
	}
}

func closeF(v, target float64) bool {
	return math.Abs(v-target) <= endpointEps
}

// triangleCentroid returns the arithmetic centroid of a triangle.
func triangleCentroid(a, b, c Coord) Coord {
	return Coord{
		Lat: (a.Lat + b.Lat + c.Lat) / 3,
		Lon: (a.Lon + b.Lon + c.Lon) / 3,
	}
}

// Centroid computes the exact centroid of a convex quadrilateral as the
// intersection of the two lines connecting the centroids of the two
// triangulations of the quad (one per diagonal). This is exact for any
// convex quadrilateral and stable when opposite edges are parallel.
// Degenerate (zero-area) inputs return ErrDegenerateQuad; callers must not
// pass degenerate quads.
func Centroid(p SatPixel) (Coord, error) {
	// Diagonal ul-lr splits the quad into (ul,ur,lr) and (ul,lr,ll).
	c1a := triangleCentroid(p.UL, p.UR, p.LR)
	c1b := triangleCentroid(p.UL, p.LR, p.LL)

	// Diagonal ur-ll splits the quad into (ur,lr,ll) and (ur,ll,ul).
	c2a := triangleCentroid(p.UR, p.LR, p.LL)
	c2b := triangleCentroid(p.UR, p.LL, p.UL)

	if c1a == c1b || c2a == c2b {
		return Coord{}, ErrDegenerateQuad
	}

	inter := intersectSegments(c1a, c1b, c2a, c2b)
	if !inter.Exists {
		return Coord{}, ErrDegenerateQuad
	}

	return inter.Point, nil
}

// Contains reports whether c lies within the convex quadrilateral p. It
// fast-rejects using the axis-aligned bounding box (strict/open) and
// otherwise shoots a segment from c to each of the four quad vertices,
// checking for a crossing with any of the four edges. A crossing that is
// merely an endpoint touch does not disqualify containment; any other
// crossing means c lies outside.
func Contains(p SatPixel, c Coord) bool {
	if !p.BoundingBox().Inside(c) {
		return false
	}

	corners := p.corners()
	edges := p.edges()

	for _, v := range corners {
		for _, e := range edges {
			inter := intersectSegments(c, v, e.a, e.b)
			if inter.Exists && inter.WithinBoth && !inter.EndpointsOnly {
				return false
			}
		}
	}
	return true
}

// ApproxEqual reports whether all four corresponding corners of a and b are
// within eps of each other.
func ApproxEqual(a, b SatPixel, eps float64) bool {
	return Close(a.UL, b.UL, eps) && Close(a.UR, b.UR, eps) &&
		Close(a.LR, b.LR, eps) && Close(a.LL, b.LL, eps)
}

// Overlap reports whether two pixel footprints overlap: they are
// approximately equal, any edge of one strictly crosses (not merely touches
// at an endpoint) any edge of the other, or any vertex of one lies strictly
// inside the other. The three-part test also catches the rare case where
// one quad is wholly contained within the other.
func Overlap(a, b SatPixel, eps float64) bool {
	if ApproxEqual(a, b, eps) {
		return true
	}

	if !a.BoundingBox().Intersects(b.BoundingBox()) {
		return false
	}

	edgesA := a.edges()
	edgesB := b.edges()
	for _, ea := range edgesA {
		for _, eb := range edgesB {
			inter := intersectSegments(ea.a, ea.b, eb.a, eb.b)
			if inter.Exists && inter.WithinBoth && !inter.EndpointsOnly {
				return true
			}
		}
	}

	for _, v := range a.corners() {
		if Contains(b, v) {
			return true
		}
	}
	for _, v := range b.corners() {
		if Contains(a, v) {
			return true
		}
	}

	return false
}

// Adjacent reports whether a and b share at least one edge (within eps) but
// do not overlap in their interiors: two vertices of one are approximately
// equal to two vertices of the other, in reversed winding order.
func Adjacent(a, b SatPixel, eps float64) bool {
	if Overlap(a, b, eps) {
		return false
	}

	edgesA := a.edges()
	edgesB := b.edges()
	for _, ea := range edgesA {
		for _, eb := range edgesB {
			if Close(ea.a, eb.b, eps) && Close(ea.b, eb.a, eps) {
				return true
			}
		}
	}
	return false
}

// GreatCircleDistanceKm returns the haversine great-circle distance in
// kilometres between two lat/lon points (in degrees) on a sphere of radius
// EarthRadiusKm.
func GreatCircleDistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := radians(lat1)
	phi2 := radians(lat2)
	dPhi := radians(lat2 - lat1)
	dLambda := radians(lon2 - lon1)

	sinDPhi := math.Sin(dPhi / 2)
	sinDLambda := math.Sin(dLambda / 2)

	h := sinDPhi*sinDPhi + math.Cos(phi1)*math.Cos(phi2)*sinDLambda*sinDLambda
	h = math.Min(1, math.Max(0, h))

	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(h))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
