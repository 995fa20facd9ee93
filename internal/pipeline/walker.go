package pipeline

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rnleach/satfire/internal/raster"
	"github.com/rnleach/satfire/internal/store"
)

// satSector identifies one (satellite, sector) pair for the --new pruning
// snapshot.
type satSector struct {
	satellite, sector string
}

// pathState carries the satellite/sector/year/day-of-year parsed so far as
// the walker descends the NOAA archive shape
// SAT/SECTOR/YEAR/DAY_OF_YEAR/HOUR/file.
type pathState struct {
	sat, sector string
	year, doy   int
}

// Walker performs the depth-first directory traversal described in §4.6,
// pruning subtrees that cannot contain anything newer than the store's
// recorded newest scan when newOnly is set. It is the pipeline's sole
// producer of granule paths, run on a single goroutine.
type Walker struct {
	root    string
	newOnly bool
	db      *store.DB
	out     *Courier[string]

	snapshot map[satSector]time.Time
}

// NewWalker builds a Walker rooted at archiveRoot, sending discovered
// granule paths to out. When newOnly is true, db is queried (lazily, once
// per (satellite, sector) pair) for the newest scan already stored, and
// subtrees entirely older than that are pruned.
func NewWalker(archiveRoot string, newOnly bool, db *store.DB, out *Courier[string]) *Walker {
	return &Walker{
		root:     archiveRoot,
		newOnly:  newOnly,
		db:       db,
		out:      out,
		snapshot: make(map[satSector]time.Time),
	}
}

// Run walks the archive root to completion, sending every discovered path
// to its output courier, then calls DoneSending. It registers itself as a
// sender on out before walking and never returns an error: per-directory
// read failures are logged and that subtree is simply skipped, matching the
// localized-I/O-error policy in §7.
func (w *Walker) Run() {
	w.out.RegisterSender()
	defer w.out.DoneSending()

	w.walk(w.root, 0, pathState{})
}

func (w *Walker) walk(dir string, depth int, st pathState) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Printf("pipeline: walker: reading %s: %v", dir, err)
		return
	}

	for _, e := range entries {
		full := filepath.Join(dir, e.Name())

		if !e.IsDir() {
			if !w.out.Send(full) {
				return
			}
			continue
		}

		next := st
		switch depth {
		case 0:
			next.sat = e.Name()
		case 1:
			// The store keys rows by canonical sector name, not by the
			// archive's directory token.
			next.sector = e.Name()
			switch e.Name() {
			case "ABI-L2-FDCC":
				next.sector = raster.SectorCONUS
			case "ABI-L2-FDCF":
				next.sector = raster.SectorFullDisk
			}
		case 2:
			if y, perr := strconv.Atoi(e.Name()); perr == nil {
				next.year = y
				if w.pruneYear(next.sat, next.sector, y) {
					continue
				}
			}
		case 3:
			if d, perr := strconv.Atoi(e.Name()); perr == nil {
				next.doy = d
				if w.pruneDOY(next.sat, next.sector, st.year, d) {
					continue
				}
			}
		case 4:
			if h, perr := strconv.Atoi(e.Name()); perr == nil {
				if w.pruneHour(next.sat, next.sector, st.year, st.doy, h) {
					continue
				}
			}
		}

		w.walk(full, depth+1, next)
	}
}

// pruneYear reports whether an entire YEAR subtree is older than the newest
// scan already recorded for (sat, sector).
func (w *Walker) pruneYear(sat, sector string, year int) bool {
	mr, ok := w.newestFor(sat, sector)
	if !ok {
		return false
	}
	return year < mr.Year()
}

// pruneDOY reports whether an entire DAY_OF_YEAR subtree under a given year
// is older than the newest scan already recorded.
func (w *Walker) pruneDOY(sat, sector string, year, doy int) bool {
	mr, ok := w.newestFor(sat, sector)
	if !ok {
		return false
	}
	if year != mr.Year() {
		return year < mr.Year()
	}
	return doy < mr.YearDay()
}

// pruneHour reports whether an entire HOUR subtree is older than the newest
// scan already recorded.
func (w *Walker) pruneHour(sat, sector string, year, doy, hour int) bool {
	mr, ok := w.newestFor(sat, sector)
	if !ok {
		return false
	}
	if year != mr.Year() {
		return year < mr.Year()
	}
	if doy != mr.YearDay() {
		return doy < mr.YearDay()
	}
	return hour < mr.Hour()
}

// newestFor returns the cached (or freshly queried) newest scan start for
// (sat, sector), and false if pruning is disabled entirely.
func (w *Walker) newestFor(sat, sector string) (time.Time, bool) {
	if !w.newOnly {
		return time.Time{}, false
	}

	key := satSector{sat, sector}
	if t, ok := w.snapshot[key]; ok {
		return t, true
	}

	t, err := w.db.NewestScanStart(sat, sector)
	if err != nil {
		log.Printf("pipeline: walker: reading newest scan start for %s/%s: %v", sat, sector, err)
		return time.Time{}, false
	}
	w.snapshot[key] = t
	return t, true
}
