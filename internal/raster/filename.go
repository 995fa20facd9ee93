package raster

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Sector names, canonical internal form (as opposed to the filename token).
const (
	SectorCONUS    = "CONUS"
	SectorFullDisk = "FullDisk"
	SectorMeso1    = "Meso1"
	SectorMeso2    = "Meso2"
)

var sectorTokens = map[string]string{
	"ABI-L2-FDCC":  SectorCONUS,
	"ABI-L2-FDCF":  SectorFullDisk,
	"ABI-L2-FDCM1": SectorMeso1,
	"ABI-L2-FDCM2": SectorMeso2,
}

var satelliteToken = regexp.MustCompile(`^G\d\d$`)
var scanTimeToken = regexp.MustCompile(`^[se](\d{14})$`)

// GranuleExt is the expected extension of a self-describing raster granule.
const GranuleExt = ".nc"

// Identity is the information extracted from a granule filename: the
// satellite, the canonical sector name, and the scan start/end timestamps.
type Identity struct {
	Satellite string
	Sector    string
	ScanStart time.Time
	ScanEnd   time.Time
}

// IsMeso reports whether the identity names a Meso sector, which the loader
// rejects outright.
func (id Identity) IsMeso() bool {
	return id.Sector == SectorMeso1 || id.Sector == SectorMeso2
}

// ParseFilename extracts satellite, sector, and scan start/end from a
// granule path per the archive's underscore-delimited naming convention,
// e.g. "OR_ABI-L2-FDCC-M6_G16_s20202381500207_e20202381502580.nc".
func ParseFilename(path string) (Identity, error) {
	base := filepath.Base(path)
	if filepath.Ext(base) != GranuleExt {
		return Identity{}, fmt.Errorf("raster: %q does not have extension %s", base, GranuleExt)
	}

	trimmed := strings.TrimSuffix(base, GranuleExt)
	parts := strings.Split(trimmed, "_")

	var id Identity
	var haveSat, haveSector, haveStart, haveEnd bool

	for _, part := range parts {
		switch {
		case satelliteToken.MatchString(part):
			id.Satellite = part
			haveSat = true
		case !haveSector && sectorFromToken(part) != "":
			id.Sector = sectorFromToken(part)
			haveSector = true
		case strings.HasPrefix(part, "s") && scanTimeToken.MatchString(part):
			t, err := parseScanToken(part[1:])
			if err != nil {
				return Identity{}, fmt.Errorf("raster: parsing scan start in %q: %w", base, err)
			}
			id.ScanStart = t
			haveStart = true
		case strings.HasPrefix(part, "e") && scanTimeToken.MatchString(part):
			t, err := parseScanToken(part[1:])
			if err != nil {
				return Identity{}, fmt.Errorf("raster: parsing scan end in %q: %w", base, err)
			}
			id.ScanEnd = t
			haveEnd = true
		}
	}

	if !haveSat || !haveSector || !haveStart || !haveEnd {
		return Identity{}, fmt.Errorf("raster: %q is missing required filename tokens", base)
	}

	return id, nil
}

// sectorFromToken matches a filename sector token against the known
// sector prefixes, tolerating a trailing mode suffix like "-M6".
func sectorFromToken(part string) string {
	for token, sector := range sectorTokens {
		if part == token || strings.HasPrefix(part, token+"-") {
			return sector
		}
	}
	return ""
}

// parseScanToken parses the 14-digit YYYYDOYhhmmssf payload of an s/e token
// as a UTC timestamp. The trailing digit is tenths of a second.
func parseScanToken(digits string) (time.Time, error) {
	if len(digits) != 14 {
		return time.Time{}, fmt.Errorf("expected 14 digits, got %q", digits)
	}

	year, err := strconv.Atoi(digits[0:4])
	if err != nil {
		return time.Time{}, err
	}
	doy, err := strconv.Atoi(digits[4:7])
	if err != nil {
		return time.Time{}, err
	}
	hour, err := strconv.Atoi(digits[7:9])
	if err != nil {
		return time.Time{}, err
	}
	minute, err := strconv.Atoi(digits[9:11])
	if err != nil {
		return time.Time{}, err
	}
	sec, err := strconv.Atoi(digits[11:13])
	if err != nil {
		return time.Time{}, err
	}
	tenths, err := strconv.Atoi(digits[13:14])
	if err != nil {
		return time.Time{}, err
	}

	base := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	base = base.AddDate(0, 0, doy-1)
	return base.Add(time.Duration(hour)*time.Hour +
		time.Duration(minute)*time.Minute +
		time.Duration(sec)*time.Second +
		time.Duration(tenths)*100*time.Millisecond), nil
}
