// Command fdcingest walks a NOAA GOES-R Fire/Hot Spot Characterization
// archive, clusters fire-detecting pixels into connected components per
// granule, and records them in a SQLite store for downstream consumers.
package main

import (
	"log"
	"os"
	"time"

	"github.com/rnleach/satfire/internal/config"
	"github.com/rnleach/satfire/internal/pipeline"
	"github.com/rnleach/satfire/internal/store"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("fdcingest: configuration error: %v", err)
	}

	if cfg.Verbose {
		log.Printf("fdcingest: starting run against archive %s, store %s (new-only=%v)",
			cfg.SatArchive, cfg.ClusterDB, cfg.New)
	}

	db, err := store.Open(cfg.ClusterDB)
	if err != nil {
		log.Fatalf("fdcingest: opening store: %v", err)
	}
	defer db.Close()

	if err := db.MarkRunStarted(time.Now()); err != nil {
		log.Printf("fdcingest: recording run start: %v", err)
	}

	writer := pipeline.Run(cfg, db)

	if err := db.MarkRunCompleted(time.Now()); err != nil {
		log.Printf("fdcingest: recording run completion: %v", err)
	}

	log.Print(writer.Summary())

	sidecar := cfg.ClusterDB + ".kml"
	if err := pipeline.WriteKMLSidecar(sidecar, writer.Cluster); err != nil {
		log.Printf("fdcingest: writing KML sidecar: %v", err)
	} else if _, wrote := writer.Cluster.MostPowerful(); wrote && cfg.Verbose {
		log.Printf("fdcingest: wrote KML sidecar %s", sidecar)
	}
}
