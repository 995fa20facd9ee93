package pipeline

import (
	"fmt"
	"os"
	"sync"

	"github.com/rnleach/satfire/internal/cluster"
	"github.com/rnleach/satfire/internal/config"
	"github.com/rnleach/satfire/internal/store"
)

const (
	filterFanOut    = 4
	loaderFanOut    = 4
	courierDepth    = 64
	defaultPixelEps = 1e-9
)

// Run wires the directory walker, path filter, loader, and writer stages
// together over bounded couriers with the §5 fan-out (1 walker, 4 filters,
// 4 loaders, 1 writer) and blocks until every stage has drained. It returns
// the writer's final accumulators so the caller can print the shutdown
// summary and, optionally, the KML sidecar described in §6.
func Run(cfg config.Config, db *store.DB) *Writer {
	paths := NewCourier[string](courierDepth)
	filtered := NewCourier[string](courierDepth)
	results := NewCourier[cluster.ClusterList](courierDepth)

	walker := NewWalker(cfg.SatArchive, cfg.New, db, paths)
	writer := NewWriter(db, results)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		walker.Run()
	}()

	for i := 0; i < filterFanOut; i++ {
		f := NewFilter(db, paths, filtered)
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.Run()
		}()
	}

	for i := 0; i < loaderFanOut; i++ {
		l := NewLoaderWorker(defaultPixelEps, filtered, results)
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Run()
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		writer.Run()
	}()

	wg.Wait()
	return writer
}

// WriteKMLSidecar emits the optional $CLUSTER_DB.kml file summarizing the
// single most-powerful cluster observed during the run, as described in §6.
// It is a no-op if no cluster was observed.
func WriteKMLSidecar(path string, stats ClusterStats) error {
	c, ok := stats.MostPowerful()
	if !ok {
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("pipeline: creating KML sidecar %s: %w", path, err)
	}
	defer f.Close()

	if err := c.Pixels.WriteKML(f); err != nil {
		return fmt.Errorf("pipeline: writing KML sidecar %s: %w", path, err)
	}
	return nil
}
