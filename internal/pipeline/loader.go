package pipeline

import (
	"log"

	"github.com/rnleach/satfire/internal/cluster"
	"github.com/rnleach/satfire/internal/raster"
)

// LoaderWorker implements the §4.6 loader stage: it calls the raster loader
// (§4.4) and forwards whatever ClusterList (possibly flagged) comes back.
type LoaderWorker struct {
	clusterEps float64
	in         *Courier[string]
	out        *Courier[cluster.ClusterList]
}

// NewLoaderWorker builds a LoaderWorker reading granule paths from in and
// writing ClusterLists to out, clustering pixels within clusterEps of each
// other or overlapping/adjacent.
func NewLoaderWorker(clusterEps float64, in *Courier[string], out *Courier[cluster.ClusterList]) *LoaderWorker {
	return &LoaderWorker{clusterEps: clusterEps, in: in, out: out}
}

// Run drains in until end-of-stream, loading and clustering each granule in
// turn. A load error (distinct from a flagged ClusterList, which is still
// forwarded) is logged and the granule is skipped, per the per-granule I/O
// error policy in §7.
func (l *LoaderWorker) Run() {
	l.in.RegisterReceiver()
	defer l.in.DoneReceiving()
	l.out.RegisterSender()
	defer l.out.DoneSending()

	for {
		path, ok := l.in.Receive()
		if !ok {
			return
		}

		list, err := raster.Load(path, l.clusterEps)
		if err != nil {
			log.Printf("pipeline: loader: loading %s: %v", path, err)
			continue
		}

		if !l.out.Send(list) {
			return
		}
	}
}
