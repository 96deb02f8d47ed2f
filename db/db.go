package db

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

const schema = `
CREATE TABLE IF NOT EXISTS events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	kind TEXT NOT NULL,
	sleep_seconds INTEGER NOT NULL DEFAULT 0,
	occurred_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS events_kind_idx ON events (kind);
`

// Open opens the journal database at path and creates the schema if needed.
func Open(path string) (*sql.DB, error) {
	dbConn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a single connection keeps ":memory:" databases shared and serializes writers
	dbConn.SetMaxOpenConns(1)

	if err := ApplySchema(dbConn); err != nil {
		dbConn.Close()
		return nil, err
	}

	log.Info().Str("path", path).Msg("Event journal opened")
	return dbConn, nil
}

func ApplySchema(dbConn *sql.DB) error {
	if _, err := dbConn.Exec(schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
