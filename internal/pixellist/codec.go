package pixellist

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/rnleach/satfire/internal/geo"
)

// recordSize is the fixed width, in bytes, of one serialized pixel: eight
// float64 corner values (ul, ur, lr, ll, each lon then lat), one float64
// power, one int16 fire-mask code, and 6 bytes of reserved zero padding.
// Temperature and area are not part of the wire format; the raster loader
// reads them from the granule, and Deserialize leaves them zero.
const recordSize = 8*8 + 8 + 2 + 6

// headerSize is the width, in bytes, of the leading pixel-count field.
const headerSize = 8

// ErrUndersizedBuffer is returned by Deserialize when the buffer is shorter
// than its declared count requires.
var ErrUndersizedBuffer = fmt.Errorf("pixellist: buffer too short for declared pixel count")

// ErrTrailingGarbage is returned by Deserialize when the buffer is longer
// than its declared count requires.
var ErrTrailingGarbage = fmt.Errorf("pixellist: trailing bytes after declared pixel count")

// SerializedSize reports the exact number of bytes Serialize will produce
// for a list of this length.
func (pl *PixelList) SerializedSize() int {
	return headerSize + len(pl.pixels)*recordSize
}

// Serialize packs the list into the compact little-endian binary format: an
// 8-byte pixel count followed by one fixed-width record per pixel.
func (pl *PixelList) Serialize() []byte {
	buf := make([]byte, pl.SerializedSize())
	binary.LittleEndian.PutUint64(buf[0:8], uint64(len(pl.pixels)))

	for i, p := range pl.pixels {
		off := headerSize + i*recordSize
		putPixel(buf[off:off+recordSize], p)
	}
	return buf
}

func putPixel(b []byte, p geo.SatPixel) {
	corners := [8]float64{
		p.UL.Lon, p.UL.Lat,
		p.UR.Lon, p.UR.Lat,
		p.LR.Lon, p.LR.Lat,
		p.LL.Lon, p.LL.Lat,
	}
	for i, v := range corners {
		binary.LittleEndian.PutUint64(b[i*8:i*8+8], math.Float64bits(v))
	}
	binary.LittleEndian.PutUint64(b[64:72], math.Float64bits(p.PowerMW))
	binary.LittleEndian.PutUint16(b[72:74], uint16(p.FireMask))
	// b[74:80] left zero: reserved padding.
}

func getPixel(b []byte) geo.SatPixel {
	var corners [8]float64
	for i := range corners {
		corners[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8 : i*8+8]))
	}
	power := math.Float64frombits(binary.LittleEndian.Uint64(b[64:72]))
	mask := int16(binary.LittleEndian.Uint16(b[72:74]))

	return geo.SatPixel{
		UL:       geo.Coord{Lon: corners[0], Lat: corners[1]},
		UR:       geo.Coord{Lon: corners[2], Lat: corners[3]},
		LR:       geo.Coord{Lon: corners[4], Lat: corners[5]},
		LL:       geo.Coord{Lon: corners[6], Lat: corners[7]},
		PowerMW:  power,
		FireMask: mask,
	}
}

// Deserialize decodes buf into a new PixelList. It validates the declared
// count against the buffer length; both undersize and trailing-garbage
// buffers are rejected.
func Deserialize(buf []byte) (*PixelList, error) {
	if len(buf) < headerSize {
		return nil, ErrUndersizedBuffer
	}

	count := binary.LittleEndian.Uint64(buf[0:8])
	want := headerSize + int(count)*recordSize

	if len(buf) < want {
		return nil, ErrUndersizedBuffer
	}
	if len(buf) > want {
		return nil, ErrTrailingGarbage
	}

	pl := NewWithCapacity(int(count))
	for i := 0; i < int(count); i++ {
		off := headerSize + i*recordSize
		pl.Append(getPixel(buf[off : off+recordSize]))
	}
	return pl, nil
}
