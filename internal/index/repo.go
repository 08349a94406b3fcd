package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/starward/gwiki/internal/apperr"
	"github.com/starward/gwiki/internal/models"
)

// Doc is a persisted document row: the registry record plus its backing
// source path and content checksum.
type Doc struct {
	models.DocumentRecord
	Path     string `json:"path"`
	Checksum string `json:"checksum"`
}

// Input carries everything a build pass persists for one document. Body is
// only stored for full-text search.
type Input struct {
	Doc  Doc
	Body string
}

// SearchResult represents one full-text search hit.
type SearchResult struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// ReplaceModel atomically swaps the whole persisted model for the output of
// one build pass. Readers either see the previous complete model or the new
// one, never a mix.
func (db *DB) ReplaceModel(docs []Input, edges []models.Edge, broken []models.BrokenReference) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	for _, table := range []string{"documents", "links", "broken_refs"} {
		if _, err := tx.Exec(`DELETE FROM ` + table); err != nil {
			return fmt.Errorf("index: clear %s: %w", table, err)
		}
	}
	if err := ftsClear(tx); err != nil {
		return err
	}

	docStmt, err := tx.Prepare(`
		INSERT INTO documents (id, path, title, type, tags, aliases, summary, body, checksum, created_at, modified_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("index: prepare doc insert: %w", err)
	}
	defer docStmt.Close()

	for _, in := range docs {
		d := in.Doc
		tagsJSON, _ := json.Marshal(nonNil(d.Tags))
		aliasesJSON, _ := json.Marshal(nonNil(d.Aliases))
		if _, err := docStmt.Exec(d.ID, d.Path, d.Title, d.Type, string(tagsJSON), string(aliasesJSON),
			d.Summary, in.Body, d.Checksum, d.CreatedAt, d.ModifiedAt); err != nil {
			return fmt.Errorf("index: insert document %s: %w", d.ID, err)
		}
		if err := ftsInsert(tx, d.ID, d.Title, in.Body, d.Tags); err != nil {
			return err
		}
	}

	linkStmt, err := tx.Prepare(`INSERT OR IGNORE INTO links (source, target) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("index: prepare link insert: %w", err)
	}
	defer linkStmt.Close()
	for _, e := range edges {
		if _, err := linkStmt.Exec(e.Source, e.Target); err != nil {
			return fmt.Errorf("index: insert link: %w", err)
		}
	}

	brokenStmt, err := tx.Prepare(`INSERT INTO broken_refs (source, line, token) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("index: prepare broken insert: %w", err)
	}
	defer brokenStmt.Close()
	for _, b := range broken {
		if _, err := brokenStmt.Exec(b.SourceID, b.SourceLine, b.TargetToken); err != nil {
			return fmt.Errorf("index: insert broken ref: %w", err)
		}
	}

	return tx.Commit()
}

// GetDocument returns one persisted document by id.
func (db *DB) GetDocument(id string) (*Doc, error) {
	row := db.conn.QueryRow(`
		SELECT id, path, title, type, tags, aliases, summary, checksum, created_at, modified_at
		FROM documents WHERE id = ?
	`, id)
	d, err := scanDoc(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("index: get document: %w", err)
	}
	return d, nil
}

// ListDocuments returns every persisted document ordered by id.
func (db *DB) ListDocuments() ([]Doc, error) {
	rows, err := db.conn.Query(`
		SELECT id, path, title, type, tags, aliases, summary, checksum, created_at, modified_at
		FROM documents ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("index: list documents: %w", err)
	}
	defer rows.Close()

	var out []Doc
	for rows.Next() {
		d, err := scanDoc(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// Graph returns all persisted nodes and edges.
func (db *DB) Graph() ([]Doc, []models.Edge, error) {
	docs, err := db.ListDocuments()
	if err != nil {
		return nil, nil, err
	}

	rows, err := db.conn.Query(`SELECT source, target FROM links ORDER BY source, target`)
	if err != nil {
		return nil, nil, fmt.Errorf("index: graph links: %w", err)
	}
	defer rows.Close()

	var edges []models.Edge
	for rows.Next() {
		var e models.Edge
		if err := rows.Scan(&e.Source, &e.Target); err != nil {
			return nil, nil, err
		}
		edges = append(edges, e)
	}
	return docs, edges, rows.Err()
}

// Backlinks returns the ids of documents linking to target, self-links
// excluded, ordered for stable output.
func (db *DB) Backlinks(target string) ([]string, error) {
	rows, err := db.conn.Query(`
		SELECT source FROM links WHERE target = ? AND source != ? ORDER BY source
	`, target, target)
	if err != nil {
		return nil, fmt.Errorf("index: backlinks: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// BrokenRefs returns all persisted broken references ordered by source id
// then line.
func (db *DB) BrokenRefs() ([]models.BrokenReference, error) {
	rows, err := db.conn.Query(`SELECT source, line, token FROM broken_refs ORDER BY source, line`)
	if err != nil {
		return nil, fmt.Errorf("index: broken refs: %w", err)
	}
	defer rows.Close()

	var out []models.BrokenReference
	for rows.Next() {
		var b models.BrokenReference
		if err := rows.Scan(&b.SourceID, &b.SourceLine, &b.TargetToken); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDoc(row rowScanner) (*Doc, error) {
	var d Doc
	var tagsJSON, aliasesJSON string
	if err := row.Scan(&d.ID, &d.Path, &d.Title, &d.Type, &tagsJSON, &aliasesJSON,
		&d.Summary, &d.Checksum, &d.CreatedAt, &d.ModifiedAt); err != nil {
		return nil, err
	}
	_ = json.Unmarshal([]byte(tagsJSON), &d.Tags)
	_ = json.Unmarshal([]byte(aliasesJSON), &d.Aliases)
	return &d, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
