package pipeline

import (
	"log"

	"github.com/rnleach/satfire/internal/cluster"
	"github.com/rnleach/satfire/internal/store"
)

// Writer implements the §4.6 writer stage: the single goroutine that
// mutates the store. It consumes ClusterLists, commits each in its own
// transaction (store.AddClusterList is idempotent and self-contained), and
// folds the run's statistics accumulators.
type Writer struct {
	db *store.DB
	in *Courier[cluster.ClusterList]

	Cluster ClusterStats
	Granule GranuleStats
}

// NewWriter builds a Writer reading ClusterLists from in.
func NewWriter(db *store.DB, in *Courier[cluster.ClusterList]) *Writer {
	return &Writer{db: db, in: in}
}

// Run drains in until end-of-stream, persisting and accumulating each
// ClusterList. A store error other than a uniqueness collision (already
// handled inside AddClusterList) is logged and that granule's transaction
// is abandoned; the pipeline continues, per §7.
func (w *Writer) Run() {
	w.in.RegisterReceiver()
	defer w.in.DoneReceiving()

	for {
		list, ok := w.in.Receive()
		if !ok {
			return
		}

		if err := w.db.AddClusterList(list); err != nil {
			log.Printf("pipeline: writer: storing cluster list: %v", err)
			continue
		}

		tag := granuleTag(list)
		w.Granule = w.Granule.Fold(list)
		for _, c := range list.Clusters {
			w.Cluster = w.Cluster.Fold(c, tag)
		}
	}
}

// Summary returns the printable shutdown report described in §4.7.
func (w *Writer) Summary() string {
	return w.Cluster.String() + "\n" + w.Granule.String()
}
