package raster

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilenameCONUS(t *testing.T) {
	id, err := ParseFilename("OR_ABI-L2-FDCC-M6_G16_s20202381500207_e20202381502580_c20202381503136.nc")
	require.NoError(t, err)

	assert.Equal(t, "G16", id.Satellite)
	assert.Equal(t, SectorCONUS, id.Sector)
	assert.False(t, id.IsMeso())
	assert.Equal(t, 2020, id.ScanStart.Year())
	assert.Equal(t, time.UTC, id.ScanStart.Location())
}

func TestParseFilenameFullDisk(t *testing.T) {
	id, err := ParseFilename("OR_ABI-L2-FDCF-M6_G17_s20202381500207_e20202381509580.nc")
	require.NoError(t, err)
	assert.Equal(t, SectorFullDisk, id.Sector)
}

func TestParseFilenameMeso(t *testing.T) {
	id, err := ParseFilename("OR_ABI-L2-FDCM1-M6_G16_s20202381500207_e20202381500264.nc")
	require.NoError(t, err)
	assert.True(t, id.IsMeso())
}

func TestParseFilenameRejectsWrongExtension(t *testing.T) {
	_, err := ParseFilename("OR_ABI-L2-FDCC-M6_G16_s20202381500207_e20202381502580.txt")
	assert.Error(t, err)
}

func TestParseFilenameMissingTokens(t *testing.T) {
	_, err := ParseFilename("not_a_granule_name.nc")
	assert.Error(t, err)
}

func TestParseScanTokenStartAndEnd(t *testing.T) {
	id, err := ParseFilename("OR_ABI-L2-FDCC-M6_G16_s20202381500000_e20202381503000.nc")
	require.NoError(t, err)

	assert.Equal(t, 238, id.ScanStart.YearDay())
	assert.Equal(t, 15, id.ScanStart.Hour())
	assert.Equal(t, 15, id.ScanEnd.Hour())
	assert.Equal(t, 3, id.ScanEnd.Minute())
}
