package pixellist

import (
	"fmt"
	"io"

	"github.com/rnleach/satfire/internal/geo"
)

// WriteKML writes one <Polygon> element per pixel in the list to w, each as
// an outerBoundaryIs/LinearRing with the four corners repeated to close the
// ring and altitude fixed at 0.
func (pl *PixelList) WriteKML(w io.Writer) error {
	for _, p := range pl.pixels {
		if err := writePixelPolygon(w, p); err != nil {
			return fmt.Errorf("pixellist: writing KML polygon: %w", err)
		}
	}
	return nil
}

func writePixelPolygon(w io.Writer, p geo.SatPixel) error {
	ring := []geo.Coord{p.UL, p.UR, p.LR, p.LL, p.UL}

	if _, err := fmt.Fprint(w, "<Polygon><outerBoundaryIs><LinearRing><coordinates>"); err != nil {
		return err
	}
	for i, c := range ring {
		if i > 0 {
			if _, err := fmt.Fprint(w, " "); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "%f,%f,0", c.Lon, c.Lat); err != nil {
			return err
		}
	}
	_, err := fmt.Fprint(w, "</coordinates></LinearRing></outerBoundaryIs></Polygon>")
	return err
}
