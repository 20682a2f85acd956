package library

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// schemaSQL is the DDL executed when creating a new library database.
const schemaSQL = `
-- Library metadata (key-value for flexibility)
CREATE TABLE IF NOT EXISTS library_settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

-- === SKETCHES ===

CREATE TABLE IF NOT EXISTS sketches (
    id             TEXT PRIMARY KEY,
    title          TEXT NOT NULL,
    description    TEXT,
    prompt         TEXT,
    ai_context     TEXT,
    canvas_width   REAL NOT NULL,
    canvas_height  REAL NOT NULL,
    source         TEXT NOT NULL,
    design_json    TEXT NOT NULL,
    svg            TEXT NOT NULL,
    svg_path       TEXT,
    markdown_path  TEXT,
    created_at     TEXT NOT NULL,
    updated_at     TEXT NOT NULL
);

-- Flattened element index so views and semantic roles can be listed
-- without decoding design_json.
CREATE TABLE IF NOT EXISTS sketch_elements (
    sketch_id  TEXT NOT NULL REFERENCES sketches(id) ON DELETE CASCADE,
    element_id TEXT NOT NULL,
    kind       TEXT NOT NULL,
    name       TEXT,
    meaning    TEXT,
    parent     TEXT,
    sort_order INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (sketch_id, sort_order)
);

-- Schema versioning for future migrations
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY
);
INSERT OR IGNORE INTO schema_version (version) VALUES (1);
`

// currentSchemaVersion is the latest schema version this code supports.
const currentSchemaVersion = 1

// OpenDB opens (or creates) a SQLite database at filePath and returns the
// connection. It enables foreign keys and WAL journal mode.
func OpenDB(filePath string) (*sql.DB, error) {
	if filePath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
			return nil, fmt.Errorf("create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", filePath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection keeps pragmas and :memory: databases consistent.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if filePath != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("set WAL mode: %w", err)
		}
	}
	return db, nil
}

// InitSchema creates all tables if they do not already exist.
func InitSchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// MigrateSchema checks the stored schema version and applies incremental
// migrations. Returns an error if the file version is newer than supported.
func MigrateSchema(db *sql.DB) error {
	var version int
	err := db.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&version)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("library version %d is newer than supported version %d, please update Sketch Studio", version, currentSchemaVersion)
	}
	return nil
}
