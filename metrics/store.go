// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: store.go — periodic SQLite persistence of counter snapshots
//
// Purpose:
//   - Persists Collector snapshots to a local SQLite database on an interval
//     the caller drives, the same sql.Open("sqlite3", ...) pattern main.go
//     uses to load pool data — here used to write observability history
//     instead of read table contents.
//
// Notes:
//   - This never touches table keys/values; it is strictly the metrics.Stats
//     counter history, keeping persistence of table contents itself out of
//     scope.
//
// ─────────────────────────────────────────────────────────────────────────────

package metrics

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sugawarayuuta/sonnet"
)

// Store persists periodic Stats snapshots to a SQLite database.
type Store struct {
	db *sql.DB
}

// OpenStore opens (creating if absent) the SQLite database at dbPath and
// ensures its snapshot table exists.
func OpenStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS snapshots (
			ts_unix_ms      INTEGER NOT NULL,
			active          INTEGER NOT NULL,
			occupancy_json  TEXT NOT NULL,
			transitions_json TEXT NOT NULL,
			spin_json       TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Flush writes one snapshot row. tsUnixMS is passed in by the caller rather
// than read from time.Now() here, so the store stays trivially testable.
func (s *Store) Flush(tsUnixMS int64, stats Stats) error {
	occupancyJSON, err := sonnet.Marshal(stats.Occupancy)
	if err != nil {
		return err
	}
	transitionsJSON, err := sonnet.Marshal(stats.Transitions)
	if err != nil {
		return err
	}
	spinJSON, err := sonnet.Marshal(stats.Spin)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO snapshots (ts_unix_ms, active, occupancy_json, transitions_json, spin_json) VALUES (?, ?, ?, ?, ?)`,
		tsUnixMS, stats.Active, string(occupancyJSON), string(transitionsJSON), string(spinJSON),
	)
	return err
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }
