package raster

import (
	"fmt"

	"github.com/rnleach/satfire/internal/cluster"
	"github.com/rnleach/satfire/internal/geo"
)

// ErrMesoSector is returned by Load when the granule's filename names a
// Meso sector; Meso granules are rejected outright, not merely filtered.
var ErrMesoSector = fmt.Errorf("raster: meso-sector granules are not ingested")

// NewGranuleReader is a constructor seam so tests and future formats can
// substitute a different GranuleReader without changing Load's signature.
var NewGranuleReader = func() GranuleReader { return &GeostationaryRaster{} }

// Load implements the combined §4.4/§4.3 loader stage: parse the filename,
// reject Meso sectors, open and decode the granule, reconstruct the
// power-positive pixel footprints, and run them through the cluster engine.
// Any decode failure yields a flagged ClusterList that the writer must drop
// rather than an error the caller has to special-case.
func Load(path string, clusterEps float64) (cluster.ClusterList, error) {
	id, err := ParseFilename(path)
	if err != nil {
		return cluster.ClusterList{}, fmt.Errorf("raster: %w", err)
	}
	if id.IsMeso() {
		return cluster.ClusterList{}, ErrMesoSector
	}

	reader := NewGranuleReader()
	if err := reader.Open(path); err != nil {
		return cluster.Flag(id.Satellite, id.Sector, id.ScanStart, id.ScanEnd), nil
	}
	defer reader.Close()

	pixels, err := decodePixels(reader)
	if err != nil {
		return cluster.Flag(id.Satellite, id.Sector, id.ScanStart, id.ScanEnd), nil
	}

	clusters, err := cluster.Build(pixels, clusterEps)
	if err != nil {
		return cluster.Flag(id.Satellite, id.Sector, id.ScanStart, id.ScanEnd), nil
	}

	return cluster.ClusterList{
		Satellite: id.Satellite,
		Sector:    id.Sector,
		ScanStart: id.ScanStart,
		ScanEnd:   id.ScanEnd,
		Clusters:  clusters,
	}, nil
}

// decodePixels reconstructs every power-positive pixel's footprint from the
// reader's bands and grid metadata.
func decodePixels(r GranuleReader) ([]geo.SatPixel, error) {
	rows, cols := r.Dimensions()

	power, err := r.ReadBand(BandPower)
	if err != nil {
		return nil, err
	}
	temp, err := r.ReadBand(BandTemperature)
	if err != nil {
		return nil, err
	}
	area, err := r.ReadBand(BandArea)
	if err != nil {
		return nil, err
	}

	var pixels []geo.SatPixel
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			idx := row*cols + col
			if power[idx] <= 0 {
				continue
			}

			ul, ur, lr, ll, err := r.GridCornersOfPixel(row, col)
			if err != nil {
				return nil, err
			}
			mask, err := r.FireMaskOfPixel(row, col)
			if err != nil {
				return nil, err
			}

			pixels = append(pixels, geo.SatPixel{
				UL: ul, UR: ur, LR: lr, LL: ll,
				PowerMW:  power[idx],
				TempK:    temp[idx],
				AreaKM2:  area[idx],
				FireMask: mask,
			})
		}
	}

	return pixels, nil
}
