package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Fire is one tracked fire time series: the temporal consumer's unit of
// record, built by associating clusters across granules.
type Fire struct {
	ID           string
	Satellite    string
	LastObserved time.Time
	OriginLat    float64
	OriginLon    float64
	Perimeter    []byte
}

// Association links one persisted cluster row to the fire it was folded
// into.
type Association struct {
	ClusterRowID int64
	FireID       string
}

// TrackStore is the contract the external, temporal "connect fires"
// consumer is expected to implement against. The ingestion pipeline never
// calls these methods itself — fires and associations are declared in the
// schema but populated only by that separate process — but this package
// ships a SQLite-backed implementation for completeness and so the
// contract can be exercised in tests.
type TrackStore interface {
	ListFires(satellite string) ([]Fire, error)
	GetFire(id string) (Fire, error)
	ListAssociations(fireID string) ([]Association, error)
	InsertFire(f Fire) (string, error)
	InsertAssociation(a Association) error
}

var _ TrackStore = (*DB)(nil)

// InsertFire inserts f, assigning it a new uuid if ID is empty, and returns
// the ID used.
func (db *DB) InsertFire(f Fire) (string, error) {
	id := f.ID
	if id == "" {
		id = uuid.NewString()
	}

	_, err := db.Exec(
		`INSERT INTO fires(id, satellite, last_observed, origin_lat, origin_lon, perimeter)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, f.Satellite, f.LastObserved.UTC().Format(timeLayout), f.OriginLat, f.OriginLon, f.Perimeter,
	)
	if err != nil {
		return "", fmt.Errorf("store: inserting fire: %w", err)
	}
	return id, nil
}

// InsertAssociation links a persisted cluster row to a fire.
func (db *DB) InsertAssociation(a Association) error {
	_, err := db.Exec(
		`INSERT INTO associations(cluster_row_id, fire_id) VALUES (?, ?)`,
		a.ClusterRowID, a.FireID,
	)
	if err != nil {
		return fmt.Errorf("store: inserting association: %w", err)
	}
	return nil
}

// GetFire returns the fire with the given id.
func (db *DB) GetFire(id string) (Fire, error) {
	var f Fire
	var lastObserved string
	var perimeter []byte

	err := db.QueryRow(
		`SELECT id, satellite, last_observed, origin_lat, origin_lon, perimeter FROM fires WHERE id = ?`,
		id,
	).Scan(&f.ID, &f.Satellite, &lastObserved, &f.OriginLat, &f.OriginLon, &perimeter)
	if err != nil {
		return Fire{}, fmt.Errorf("store: reading fire %s: %w", id, err)
	}

	f.LastObserved, err = time.Parse(timeLayout, lastObserved)
	if err != nil {
		return Fire{}, fmt.Errorf("store: parsing last_observed for fire %s: %w", id, err)
	}
	f.Perimeter = perimeter
	return f, nil
}

// ListFires returns every fire recorded for a satellite.
func (db *DB) ListFires(satellite string) ([]Fire, error) {
	rows, err := db.Query(
		`SELECT id, satellite, last_observed, origin_lat, origin_lon, perimeter FROM fires WHERE satellite = ?`,
		satellite,
	)
	if err != nil {
		return nil, fmt.Errorf("store: listing fires for %s: %w", satellite, err)
	}
	defer rows.Close()

	var out []Fire
	for rows.Next() {
		var f Fire
		var lastObserved string
		var perimeter []byte
		if err := rows.Scan(&f.ID, &f.Satellite, &lastObserved, &f.OriginLat, &f.OriginLon, &perimeter); err != nil {
			return nil, fmt.Errorf("store: scanning fire row: %w", err)
		}
		f.LastObserved, err = time.Parse(timeLayout, lastObserved)
		if err != nil {
			return nil, fmt.Errorf("store: parsing last_observed: %w", err)
		}
		f.Perimeter = perimeter
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterating fires: %w", err)
	}
	return out, nil
}

// ListAssociations returns every cluster row associated with a fire.
func (db *DB) ListAssociations(fireID string) ([]Association, error) {
	rows, err := db.Query(`SELECT cluster_row_id, fire_id FROM associations WHERE fire_id = ?`, fireID)
	if err != nil {
		return nil, fmt.Errorf("store: listing associations for %s: %w", fireID, err)
	}
	defer rows.Close()

	var out []Association
	for rows.Next() {
		var a Association
		if err := rows.Scan(&a.ClusterRowID, &a.FireID); err != nil {
			return nil, fmt.Errorf("store: scanning association row: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterating associations: %w", err)
	}
	return out, nil
}
