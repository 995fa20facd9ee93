package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rnleach/satfire/internal/cluster"
	"github.com/rnleach/satfire/internal/pixellist"
)

const timeLayout = time.RFC3339Nano

// IsPresent reports the count of existing rows matching a granule's
// signature; a positive count means the caller should skip re-ingesting it.
func (db *DB) IsPresent(satellite, sector string, scanStart, scanEnd time.Time) (int, error) {
	mid := midpoint(scanStart, scanEnd)

	var count int
	err := db.QueryRow(
		`SELECT COUNT(*) FROM clusters WHERE satellite = ? AND sector = ? AND mid_point_time = ?`,
		satellite, sector, mid.Format(timeLayout),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("store: checking presence of %s/%s/%s: %w", satellite, sector, mid, err)
	}
	return count, nil
}

// NewestScanStart returns the maximum mid_point_time recorded for
// (satellite, sector), or the Unix epoch if there are no rows yet.
func (db *DB) NewestScanStart(satellite, sector string) (time.Time, error) {
	var raw sql.NullString
	err := db.QueryRow(
		`SELECT MAX(mid_point_time) FROM clusters WHERE satellite = ? AND sector = ?`,
		satellite, sector,
	).Scan(&raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("store: reading newest scan start for %s/%s: %w", satellite, sector, err)
	}
	if !raw.Valid {
		return time.Unix(0, 0).UTC(), nil
	}

	t, err := time.Parse(timeLayout, raw.String)
	if err != nil {
		return time.Time{}, fmt.Errorf("store: parsing stored mid_point_time %q: %w", raw.String, err)
	}
	return t, nil
}

// AddClusterList inserts every cluster in list within a single transaction.
// Rows that collide with the uniqueness index are silently skipped — that
// is what makes repeated ingestion of the same granule idempotent. Any
// other per-row error aborts the whole transaction.
func (db *DB) AddClusterList(list cluster.ClusterList) error {
	if list.Flagged || len(list.Clusters) == 0 {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("store: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO clusters(satellite, sector, mid_point_time, lat, lon, power, cell_count, perimeter)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("store: preparing insert: %w", err)
	}
	defer stmt.Close()

	mid := list.MidpointTime().Format(timeLayout)

	for _, c := range list.Clusters {
		perimeter := c.Pixels.Serialize()
		_, err := stmt.Exec(list.Satellite, list.Sector, mid, c.Centroid.Lat, c.Centroid.Lon, c.TotalPowerMW, c.PixelCount, perimeter)
		if err != nil {
			if isUniqueConstraintErr(err) {
				continue
			}
			return fmt.Errorf("store: inserting cluster: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: committing cluster insert transaction: %w", err)
	}
	return nil
}

func isUniqueConstraintErr(err error) bool {
	return strings.Contains(strings.ToUpper(err.Error()), "UNIQUE CONSTRAINT")
}

func midpoint(start, end time.Time) time.Time {
	return start.Add(end.Sub(start) / 2)
}

// ClusterRow is one row read back from the clusters table by QueryRows.
type ClusterRow struct {
	RowID         int64
	Satellite     string
	Sector        string
	MidPointTime  time.Time
	Lat, Lon      float64
	PowerMW       float64
	PixelCount    int
	Pixels        *pixellist.PixelList
}

// RowCursor streams ClusterRows matching a query, for the temporal
// consumer. Callers must call Close when done.
type RowCursor struct {
	rows *sql.Rows
}

// QueryRows opens a streaming cursor over clusters for (satellite, sector)
// whose mid_point_time falls in [start,end] and whose centroid falls
// within bbox (inclusive on all four sides, unlike the open BoundingBox
// test used by the geometry kernel — this is a storage-layer range query,
// not a containment predicate).
func (db *DB) QueryRows(satellite, sector string, start, end time.Time, minLat, minLon, maxLat, maxLon float64) (*RowCursor, error) {
	rows, err := db.Query(
		`SELECT rowid, satellite, sector, mid_point_time, lat, lon, power, cell_count, perimeter
		 FROM clusters
		 WHERE satellite = ? AND sector = ?
		   AND mid_point_time BETWEEN ? AND ?
		   AND lat BETWEEN ? AND ?
		   AND lon BETWEEN ? AND ?
		 ORDER BY mid_point_time ASC`,
		satellite, sector, start.Format(timeLayout), end.Format(timeLayout), minLat, maxLat, minLon, maxLon,
	)
	if err != nil {
		return nil, fmt.Errorf("store: querying clusters: %w", err)
	}
	return &RowCursor{rows: rows}, nil
}

// Next advances the cursor, returning (row, true, nil) on success, (_,
// false, nil) at end-of-stream, or (_, false, err) on a read error.
func (c *RowCursor) Next() (ClusterRow, bool, error) {
	if !c.rows.Next() {
		if err := c.rows.Err(); err != nil {
			return ClusterRow{}, false, fmt.Errorf("store: reading cursor: %w", err)
		}
		return ClusterRow{}, false, nil
	}

	var row ClusterRow
	var midRaw string
	var perimeter []byte

	err := c.rows.Scan(&row.RowID, &row.Satellite, &row.Sector, &midRaw, &row.Lat, &row.Lon, &row.PowerMW, &row.PixelCount, &perimeter)
	if err != nil {
		return ClusterRow{}, false, fmt.Errorf("store: scanning cluster row: %w", err)
	}

	row.MidPointTime, err = time.Parse(timeLayout, midRaw)
	if err != nil {
		return ClusterRow{}, false, fmt.Errorf("store: parsing mid_point_time %q: %w", midRaw, err)
	}

	row.Pixels, err = pixellist.Deserialize(perimeter)
	if err != nil {
		return ClusterRow{}, false, fmt.Errorf("store: decoding perimeter: %w", err)
	}

	return row, true, nil
}

// Close releases the cursor's underlying rows.
func (c *RowCursor) Close() error {
	if err := c.rows.Close(); err != nil {
		return fmt.Errorf("store: closing cursor: %w", err)
	}
	return nil
}
