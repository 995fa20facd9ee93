// Package pixellist implements PixelList, the growable collection of fire
// pixel footprints that underlies a Cluster, along with its compact binary
// wire format and its KML sidecar emission.
package pixellist

import (
	"errors"

	"github.com/rnleach/satfire/internal/geo"
	"gonum.org/v1/gonum/floats"
)

// ErrEmpty is returned by Centroid when the list has no members.
var ErrEmpty = errors.New("pixellist: centroid of empty list")

// PixelList is an ordered, growable collection of SatPixels. Append copies
// the pixel value in; the list owns its storage.
type PixelList struct {
	pixels []geo.SatPixel
}

// New returns an empty PixelList.
func New() *PixelList {
	return &PixelList{}
}

// NewWithCapacity returns an empty PixelList pre-sized to hold capacity
// pixels without reallocating.
func NewWithCapacity(capacity int) *PixelList {
	return &PixelList{pixels: make([]geo.SatPixel, 0, capacity)}
}

// Append adds a copy of p to the end of the list.
func (pl *PixelList) Append(p geo.SatPixel) {
	pl.pixels = append(pl.pixels, p)
}

// Clear empties the list while retaining its underlying storage.
func (pl *PixelList) Clear() {
	pl.pixels = pl.pixels[:0]
}

// Len reports the number of pixels in the list.
func (pl *PixelList) Len() int {
	return len(pl.pixels)
}

// At returns the pixel at index i.
func (pl *PixelList) At(i int) geo.SatPixel {
	return pl.pixels[i]
}

// All returns the underlying pixel slice. Callers must not mutate it.
func (pl *PixelList) All() []geo.SatPixel {
	return pl.pixels
}

// Centroid returns the power-weighted centroid of the list's member
// centroids: Σ(centroid·power)/Σpower when total power is positive, or the
// unweighted mean of member centroids when it is zero. Returns ErrEmpty for
// an empty list.
func (pl *PixelList) Centroid() (geo.Coord, error) {
	n := len(pl.pixels)
	if n == 0 {
		return geo.Coord{}, ErrEmpty
	}

	lats := make([]float64, n)
	lons := make([]float64, n)
	powers := make([]float64, n)

	for i, p := range pl.pixels {
		c, err := geo.Centroid(p)
		if err != nil {
			return geo.Coord{}, err
		}
		lats[i] = c.Lat
		lons[i] = c.Lon
		powers[i] = p.PowerMW
	}

	totalPower := floats.Sum(powers)
	if totalPower > 0 {
		weightedLats := make([]float64, n)
		weightedLons := make([]float64, n)
		for i := range lats {
			weightedLats[i] = lats[i] * powers[i]
			weightedLons[i] = lons[i] * powers[i]
		}
		return geo.Coord{
			Lat: floats.Sum(weightedLats) / totalPower,
			Lon: floats.Sum(weightedLons) / totalPower,
		}, nil
	}

	return geo.Coord{
		Lat: floats.Sum(lats) / float64(n),
		Lon: floats.Sum(lons) / float64(n),
	}, nil
}
