// Package config assembles the ingestion pipeline's immutable,
// initialization-time configuration: the two required environment
// variables and the command-line flags, forced into UTC once at startup.
package config

import (
	"flag"
	"fmt"
	"os"
	"time"
)

// Config is the read-only configuration value threaded into every pipeline
// stage. It is built once at startup and never mutated afterward.
type Config struct {
	// ClusterDB is the path to the SQLite store, from $CLUSTER_DB.
	ClusterDB string
	// SatArchive is the root of the NOAA-shaped granule archive, from
	// $SAT_ARCHIVE.
	SatArchive string
	// New restricts ingestion to granules newer than the per-(satellite,
	// sector) maximum already in the store.
	New bool
	// Verbose enables extra log lines at startup and when the KML sidecar
	// is written. Individual granules are not logged.
	Verbose bool
}

// Load reads environment variables and parses args with its own flag set
// (flag.CommandLine is left untouched), forcing the
// process timezone to UTC. It returns an error describing the first missing
// or invalid setting rather than exiting, so callers (and tests) control
// how a configuration failure is reported.
func Load(args []string) (Config, error) {
	time.Local = time.UTC

	fs := flag.NewFlagSet("fdcingest", flag.ContinueOnError)
	newOnly := fs.Bool("new", false, "only process granules newer than the newest already stored per (satellite, sector)")
	fs.BoolVar(newOnly, "n", false, "shorthand for --new")
	verbose := fs.Bool("verbose", false, "log extra run progress at startup and shutdown")
	fs.BoolVar(verbose, "v", false, "shorthand for --verbose")

	if err := fs.Parse(args); err != nil {
		return Config{}, fmt.Errorf("config: parsing flags: %w", err)
	}

	clusterDB := os.Getenv("CLUSTER_DB")
	if clusterDB == "" {
		return Config{}, fmt.Errorf("config: CLUSTER_DB environment variable is required")
	}

	satArchive := os.Getenv("SAT_ARCHIVE")
	if satArchive == "" {
		return Config{}, fmt.Errorf("config: SAT_ARCHIVE environment variable is required")
	}

	return Config{
		ClusterDB:  clusterDB,
		SatArchive: satArchive,
		New:        *newOnly,
		Verbose:    *verbose,
	}, nil
}
