// Package index provides the SQLite-backed persisted model with optional
// FTS5 full-text search. The whole model is replaced atomically on every
// build pass; queries serve the HTTP and MCP surfaces between builds.
package index

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS documents (
	id          TEXT PRIMARY KEY,
	path        TEXT NOT NULL DEFAULT '',
	title       TEXT NOT NULL DEFAULT '',
	type        TEXT NOT NULL DEFAULT '',
	tags        TEXT NOT NULL DEFAULT '[]',
	aliases     TEXT NOT NULL DEFAULT '[]',
	summary     TEXT NOT NULL DEFAULT '',
	body        TEXT NOT NULL DEFAULT '',
	checksum    TEXT NOT NULL DEFAULT '',
	created_at  DATETIME NOT NULL,
	modified_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS links (
	source TEXT NOT NULL,
	target TEXT NOT NULL,
	UNIQUE(source, target)
);

CREATE TABLE IF NOT EXISTS broken_refs (
	source TEXT NOT NULL,
	line   INTEGER NOT NULL,
	token  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_links_source ON links(source);
CREATE INDEX IF NOT EXISTS idx_links_target ON links(target);
CREATE INDEX IF NOT EXISTS idx_broken_source ON broken_refs(source);
`

// DB wraps a sql.DB with model-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
