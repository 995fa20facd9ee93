package pipeline

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// encodeTestGranule writes a synthetic granule in the GeostationaryRaster
// wire format described in internal/raster's package doc comment, standing
// in for a real NOAA download in pipeline-level tests.
func encodeTestGranule(t *testing.T, rows, cols int, originLat, originLon, cellLat, cellLon float64, scanStart, scanEnd time.Time, power, temp, area []float64, mask []int16) []byte {
	t.Helper()

	var buf bytes.Buffer
	buf.WriteString("SFGR")

	var u32 [4]byte
	binary.LittleEndian.PutUint32(u32[:], uint32(rows))
	buf.Write(u32[:])
	binary.LittleEndian.PutUint32(u32[:], uint32(cols))
	buf.Write(u32[:])

	writeF64 := func(v float64) {
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
		buf.Write(b[:])
	}
	writeF64(originLat)
	writeF64(originLon)
	writeF64(cellLat)
	writeF64(cellLon)

	var i64 [8]byte
	binary.LittleEndian.PutUint64(i64[:], uint64(scanStart.UnixNano()))
	buf.Write(i64[:])
	binary.LittleEndian.PutUint64(i64[:], uint64(scanEnd.UnixNano()))
	buf.Write(i64[:])

	for _, v := range power {
		writeF64(v)
	}
	for _, v := range temp {
		writeF64(v)
	}
	for _, v := range area {
		writeF64(v)
	}
	for _, m := range mask {
		var b [2]byte
		binary.LittleEndian.PutUint16(b[:], uint16(m))
		buf.Write(b[:])
	}

	return buf.Bytes()
}

func writeTestGranule(t *testing.T, dir, name string, contents []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, contents, 0o644))
	return path
}
