package pipeline

import (
	"log"
	"path/filepath"

	"github.com/rnleach/satfire/internal/raster"
	"github.com/rnleach/satfire/internal/store"
)

// Filter implements the §4.6 path-filter stage: it drops non-granule
// files, Meso-sector granules, and granules already present in the store,
// forwarding every survivor unchanged.
type Filter struct {
	db  *store.DB
	in  *Courier[string]
	out *Courier[string]
}

// NewFilter builds a Filter reading from in and writing survivors to out.
func NewFilter(db *store.DB, in, out *Courier[string]) *Filter {
	return &Filter{db: db, in: in, out: out}
}

// Run drains in until end-of-stream, forwarding surviving paths to out. Any
// of the four fan-out instances may run this concurrently; it registers and
// retires itself as a sender/receiver around the loop.
func (f *Filter) Run() {
	f.in.RegisterReceiver()
	defer f.in.DoneReceiving()
	f.out.RegisterSender()
	defer f.out.DoneSending()

	for {
		path, ok := f.in.Receive()
		if !ok {
			return
		}
		if f.accept(path) {
			if !f.out.Send(path) {
				return
			}
		}
	}
}

func (f *Filter) accept(path string) bool {
	if filepath.Ext(path) != raster.GranuleExt {
		return false
	}

	id, err := raster.ParseFilename(path)
	if err != nil {
		return false
	}
	if id.IsMeso() {
		return false
	}

	count, err := f.db.IsPresent(id.Satellite, id.Sector, id.ScanStart, id.ScanEnd)
	if err != nil {
		log.Printf("pipeline: filter: checking presence of %s: %v", path, err)
		return false
	}
	return count == 0
}
