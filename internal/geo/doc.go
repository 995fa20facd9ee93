// Package geo implements the convex-quadrilateral geometry kernel used to
// represent GOES FDC pixel footprints: coordinate closeness, centroid via
// diagonal-triangulation intersection, containment, overlap, adjacency, and
// great-circle distance. Every function here is pure and stateless.
package geo
