// Package models defines the domain types for GWiki.
package models

import "time"

// Document kinds, assigned per scan root when a note does not declare one.
const (
	TypeArticle = "article"
	TypeWiki    = "wiki"
	TypeNote    = "note"
)

// DocumentRecord is the registry entry for one source document.
//
// ID is the filename stem (case-preserving, spaces allowed) and never changes
// for the lifetime of the document. CreatedAt comes from the creation ledger
// and is sticky across builds; ModifiedAt is recomputed from the file system
// on every build.
type DocumentRecord struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Type       string    `json:"type,omitempty"`
	Tags       []string  `json:"tags,omitempty"`
	Aliases    []string  `json:"aliases,omitempty"`
	Summary    string    `json:"summary,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
}

// Reference is one cross-reference occurrence found in a document body.
// TargetToken is the raw directive argument and may carry a "#section"
// suffix; Target is the base identifier with any suffix stripped.
type Reference struct {
	SourceID    string `json:"source"`
	SourceLine  int    `json:"line"` // 1-based
	TargetToken string `json:"token"`
	Target      string `json:"target"`
	DisplayText string `json:"display,omitempty"`
}

// BrokenReference is a Reference whose target resolves to no known
// document id or alias.
type BrokenReference struct {
	SourceID    string `json:"source"`
	SourceLine  int    `json:"line"`
	TargetToken string `json:"token"`
}

// Edge is a resolved directed link between two documents.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Source is one discovered input document handed to the registry builder.
type Source struct {
	ID        string
	Path      string
	Type      string
	Content   []byte
	Checksum  string
	BirthTime time.Time // best-effort; zero when the platform has no birth time
	ModTime   time.Time
}
