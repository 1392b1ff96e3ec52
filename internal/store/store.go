package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the SQLite data access layer for icon snapshots.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database at dbPath with WAL mode enabled.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates the snapshot tables and indexes. Idempotent.
func (s *Store) Migrate() error {
	_, err := s.db.Exec(schemaDDL)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS snapshots (
  id              INTEGER PRIMARY KEY,
  root            TEXT NOT NULL,
  label           TEXT,
  scopes          TEXT,
  taken_at        TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS snapshot_icons (
  id              INTEGER PRIMARY KEY,
  snapshot_id     INTEGER NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
  position        INTEGER NOT NULL,
  scope           TEXT NOT NULL,
  kind            TEXT NOT NULL,
  icon_type       TEXT NOT NULL,
  path            TEXT NOT NULL,
  caption         TEXT,
  hash            TEXT
);

CREATE INDEX IF NOT EXISTS idx_snapshots_root ON snapshots(root, taken_at);
CREATE INDEX IF NOT EXISTS idx_snapshot_icons_snapshot ON snapshot_icons(snapshot_id, position);
CREATE INDEX IF NOT EXISTS idx_snapshot_icons_path ON snapshot_icons(path);
`
