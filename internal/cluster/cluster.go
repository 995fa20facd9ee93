// Package cluster implements the connected-components grouping of fire
// pixels within one granule into Clusters, and the ClusterList container
// that the pipeline driver hands off to the persistence layer.
package cluster

import (
	"time"

	"github.com/rnleach/satfire/internal/geo"
	"github.com/rnleach/satfire/internal/pixellist"
)

// Cluster is a maximal set of fire pixels connected by overlap-or-adjacency
// within one granule, plus its cached aggregates.
type Cluster struct {
	Pixels      *pixellist.PixelList
	TotalPowerMW float64
	PixelCount  int
	Centroid    geo.Coord
	BoundingBox geo.BoundingBox
}

// ClusterList is the set of Clusters found in one granule, tagged with the
// granule's identity. Flagged marks a decode failure: the writer must drop
// a flagged list rather than persist it.
type ClusterList struct {
	Satellite string
	Sector    string
	ScanStart time.Time
	ScanEnd   time.Time
	Clusters  []Cluster
	Flagged   bool
}

// MidpointTime returns the midpoint between ScanStart and ScanEnd, persisted
// as mid_point_time on each cluster row.
func (cl ClusterList) MidpointTime() time.Time {
	return cl.ScanStart.Add(cl.ScanEnd.Sub(cl.ScanStart) / 2)
}

// Flag returns a ClusterList marked as flagged, carrying the granule's
// identity but no clusters. Used by the raster loader when the granule
// fails to decode cleanly.
func Flag(satellite, sector string, scanStart, scanEnd time.Time) ClusterList {
	return ClusterList{
		Satellite: satellite,
		Sector:    sector,
		ScanStart: scanStart,
		ScanEnd:   scanEnd,
		Flagged:   true,
	}
}

// Build runs the connected-components clustering algorithm over pixels:
// union-find over the overlap-or-adjacency relation, grid-prefiltered
// instead of the O(n²) reference comparison. Pixels with zero or negative
// power have already been discarded by the caller (the raster loader), per
// the spec's definition of the clustering input set.
func Build(pixels []geo.SatPixel, eps float64) ([]Cluster, error) {
	if len(pixels) == 0 {
		return nil, nil
	}

	centers := make([]geo.Coord, len(pixels))
	for i, p := range pixels {
		c, err := geo.Centroid(p)
		if err != nil {
			return nil, err
		}
		centers[i] = c
	}

	idx := newSpatialIndex(pixels, centers, eps)
	uf := newUnionFind(len(pixels))

	for i, c := range centers {
		for _, j := range idx.candidates(c.Lon, c.Lat) {
			if j <= i {
				continue
			}
			if geo.Overlap(pixels[i], pixels[j], eps) || geo.Adjacent(pixels[i], pixels[j], eps) {
				uf.union(i, j)
			}
		}
	}

	groups := uf.groups()
	clusters := make([]Cluster, 0, len(groups))
	for _, members := range groups {
		pl := pixellist.NewWithCapacity(len(members))
		for _, m := range members {
			pl.Append(pixels[m])
		}
		c, err := newClusterFromMembers(pl)
		if err != nil {
			return nil, err
		}
		clusters = append(clusters, c)
	}

	return clusters, nil
}

func newClusterFromMembers(pl *pixellist.PixelList) (Cluster, error) {
	var total float64
	members := pl.All()
	bb := members[0].BoundingBox()
	for _, p := range members {
		total += p.PowerMW
		pbb := p.BoundingBox()
		if pbb.LowerLeft.Lat < bb.LowerLeft.Lat {
			bb.LowerLeft.Lat = pbb.LowerLeft.Lat
		}
		if pbb.LowerLeft.Lon < bb.LowerLeft.Lon {
			bb.LowerLeft.Lon = pbb.LowerLeft.Lon
		}
		if pbb.UpperRight.Lat > bb.UpperRight.Lat {
			bb.UpperRight.Lat = pbb.UpperRight.Lat
		}
		if pbb.UpperRight.Lon > bb.UpperRight.Lon {
			bb.UpperRight.Lon = pbb.UpperRight.Lon
		}
	}

	centroid, err := pl.Centroid()
	if err != nil {
		return Cluster{}, err
	}

	return Cluster{
		Pixels:       pl,
		TotalPowerMW: total,
		PixelCount:   pl.Len(),
		Centroid:     centroid,
		BoundingBox:  bb,
	}, nil
}
