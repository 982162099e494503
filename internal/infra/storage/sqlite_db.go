// Package storage provides durable persistence: the JSON world-state
// document, the sqlite ledger of events and agent rows, and compressed
// day archives.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// InitSQLite opens (creating if needed) the ledger database at path and
// ensures the schema exists.
func InitSQLite(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// The ledger is written by one process; a single connection avoids
	// SQLITE_BUSY churn under concurrent appends.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS events (
		id         TEXT PRIMARY KEY,
		ts         TEXT NOT NULL,
		type       TEXT NOT NULL,
		actor_id   TEXT NOT NULL,
		target_id  TEXT,
		payload    TEXT,
		game_day   INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_events_actor ON events(actor_id);
	CREATE INDEX IF NOT EXISTS idx_events_day   ON events(game_day);

	CREATE TABLE IF NOT EXISTS agents (
		name        TEXT PRIMARY KEY,
		x           INTEGER NOT NULL,
		y           INTEGER NOT NULL,
		online      INTEGER NOT NULL,
		last_update REAL NOT NULL,
		status      TEXT,
		needs       TEXT
	);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return db, nil
}

// BackupSQLite copies the ledger file to destPath using sqlite's VACUUM INTO,
// which produces a consistent snapshot without stopping writers.
func BackupSQLite(db *sql.DB, destPath string) error {
	os.Remove(destPath)
	if _, err := db.Exec(`VACUUM INTO ?`, destPath); err != nil {
		return fmt.Errorf("backup ledger: %w", err)
	}
	return nil
}
