// Package store implements the cluster/fire/association persistence layer:
// a single SQLite file opened with an idempotent embedded schema, prepared
// operations for the ingestion pipeline (exists/insert/newest-scan/query),
// and a TrackStore contract for the external temporal consumer.
package store

import (
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// SchemaVersion is recorded in the meta table on every open so a later
// temporal consumer can tell which schema shape it is reading.
const SchemaVersion = "1"

// DB wraps a SQLite connection with the ingestion pipeline's operations.
type DB struct {
	*sql.DB
}

// Open creates (if necessary) and opens the cluster store at path, applying
// the embedded schema and the pragmas every connection needs.
func Open(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: opening %s: %w", path, err)
	}

	db := &DB{sqlDB}

	if err := applyPragmas(sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("store: applying pragmas: %w", err)
	}

	if _, err := sqlDB.Exec(schemaSQL); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("store: applying schema: %w", err)
	}

	if err := db.recordSchemaVersion(); err != nil {
		sqlDB.Close()
		return nil, err
	}

	return db, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("executing %q: %w", p, err)
		}
	}
	return nil
}

func (db *DB) recordSchemaVersion() error {
	_, err := db.Exec(
		`INSERT INTO meta(item_name, item_value) VALUES ('schema_version', ?)
		 ON CONFLICT(item_name) DO UPDATE SET item_value = excluded.item_value`,
		SchemaVersion,
	)
	if err != nil {
		return fmt.Errorf("store: recording schema version: %w", err)
	}
	return nil
}

// MarkRunStarted records the run-start marker in meta, in UTC RFC3339.
func (db *DB) MarkRunStarted(t time.Time) error {
	return db.setMeta("last_run_started_at", t.UTC().Format(time.RFC3339))
}

// MarkRunCompleted records the run-completion marker in meta, in UTC RFC3339.
func (db *DB) MarkRunCompleted(t time.Time) error {
	return db.setMeta("last_run_completed_at", t.UTC().Format(time.RFC3339))
}

func (db *DB) setMeta(name, value string) error {
	_, err := db.Exec(
		`INSERT INTO meta(item_name, item_value) VALUES (?, ?)
		 ON CONFLICT(item_name) DO UPDATE SET item_value = excluded.item_value`,
		name, value,
	)
	if err != nil {
		return fmt.Errorf("store: writing meta %q: %w", name, err)
	}
	return nil
}
