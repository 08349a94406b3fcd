// Package wikiservice coordinates builds and serves the query surface over
// the most recent completed model.
package wikiservice

import (
	"context"
	"sync"

	"github.com/starward/gwiki/internal/apperr"
	"github.com/starward/gwiki/internal/builder"
	"github.com/starward/gwiki/internal/completion"
	"github.com/starward/gwiki/internal/graph"
	"github.com/starward/gwiki/internal/index"
	"github.com/starward/gwiki/internal/models"
	"github.com/starward/gwiki/internal/storage"
	"github.com/starward/gwiki/internal/validator"
	"github.com/starward/gwiki/internal/views"
)

// DocumentDetail is the full representation of one document.
type DocumentDetail struct {
	models.DocumentRecord
	Path      string   `json:"path"`
	Content   string   `json:"content,omitempty"`
	Backlinks []string `json:"backlinks"`
	Outgoing  []string `json:"outgoing"`
}

// Service owns the latest build result. Builds run sequentially; readers
// see either the previous complete model or the new one.
type Service struct {
	b     *builder.Builder
	store storage.Provider
	db    *index.DB

	buildMu sync.Mutex   // serializes Rebuild
	mu      sync.RWMutex // guards cur
	cur     *builder.Result
}

// New creates a Service. The first Rebuild populates the model; queries
// before that return apperr.ErrNotBuilt.
func New(b *builder.Builder, store storage.Provider, db *index.DB) *Service {
	return &Service{b: b, store: store, db: db}
}

// Rebuild runs one full build pass and swaps in the result.
func (s *Service) Rebuild(_ context.Context) error {
	s.buildMu.Lock()
	defer s.buildMu.Unlock()

	res, err := s.b.Run()
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.cur = res
	s.mu.Unlock()
	return nil
}

func (s *Service) current() (*builder.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cur == nil {
		return nil, apperr.ErrNotBuilt
	}
	return s.cur, nil
}

// Document returns one record enriched with its content, backlinks and
// outgoing links.
func (s *Service) Document(_ context.Context, id string) (*DocumentDetail, error) {
	cur, err := s.current()
	if err != nil {
		return nil, err
	}
	rec, ok := cur.Registry.Get(id)
	if !ok {
		return nil, apperr.ErrNotFound
	}
	path, _ := cur.Registry.PathOf(id)

	// Content is read on demand; a file deleted since the last build just
	// yields an empty body rather than an error.
	var content string
	if data, readErr := s.store.Read(path); readErr == nil {
		content = string(data)
	}

	detail := &DocumentDetail{
		DocumentRecord: *rec,
		Path:           path,
		Content:        content,
		Backlinks:      cur.Backlinks[id],
		Outgoing:       cur.Graph.Outgoing(id),
	}
	if detail.Backlinks == nil {
		detail.Backlinks = []string{}
	}
	if detail.Outgoing == nil {
		detail.Outgoing = []string{}
	}
	return detail, nil
}

// List returns every record ordered by id.
func (s *Service) List(_ context.Context) ([]*models.DocumentRecord, error) {
	cur, err := s.current()
	if err != nil {
		return nil, err
	}
	return cur.Registry.All(), nil
}

// Alphabetical returns the first-letter grouped view.
func (s *Service) Alphabetical(_ context.Context) ([]views.LetterGroup, error) {
	cur, err := s.current()
	if err != nil {
		return nil, err
	}
	return views.Alphabetical(cur.Registry), nil
}

// ByTag returns the tag-grouped view.
func (s *Service) ByTag(_ context.Context) ([]views.TagGroup, error) {
	cur, err := s.current()
	if err != nil {
		return nil, err
	}
	return views.ByTag(cur.Registry), nil
}

// Chronological returns the creation-date view, newest first.
func (s *Service) Chronological(_ context.Context) ([]views.YearGroup, error) {
	cur, err := s.current()
	if err != nil {
		return nil, err
	}
	return views.Chronological(cur.Registry), nil
}

// SearchDocs returns the flattened search records, optionally filtered.
func (s *Service) SearchDocs(_ context.Context, query string) ([]views.SearchDoc, error) {
	cur, err := s.current()
	if err != nil {
		return nil, err
	}
	return views.Filter(views.SearchDocs(cur.Registry), query), nil
}

// Search delegates full-text search to the persisted index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	if _, err := s.current(); err != nil {
		return nil, err
	}
	return s.db.Search(query, limit)
}

// Graph returns all nodes and resolved edges.
func (s *Service) Graph(_ context.Context) ([]*models.DocumentRecord, []models.Edge, error) {
	cur, err := s.current()
	if err != nil {
		return nil, nil, err
	}
	return cur.Registry.All(), cur.Graph.Edges, nil
}

// Backlinks returns the ids referencing target.
func (s *Service) Backlinks(_ context.Context, target string) ([]string, error) {
	cur, err := s.current()
	if err != nil {
		return nil, err
	}
	if _, ok := cur.Registry.Get(target); !ok {
		return nil, apperr.ErrNotFound
	}
	bl := cur.Backlinks[target]
	if bl == nil {
		bl = []string{}
	}
	return bl, nil
}

// Complete returns ranked completion candidates for a partial reference.
func (s *Service) Complete(_ context.Context, partial string) ([]completion.Entry, error) {
	cur, err := s.current()
	if err != nil {
		return nil, err
	}
	return cur.Completions.Query(partial), nil
}

// Validate returns the broken-reference reports of the current model.
func (s *Service) Validate(_ context.Context) ([]validator.Report, error) {
	cur, err := s.current()
	if err != nil {
		return nil, err
	}
	return cur.Reports, nil
}

// Ambiguities returns the alias ambiguity warnings of the current model.
func (s *Service) Ambiguities(_ context.Context) ([]graph.Ambiguity, error) {
	cur, err := s.current()
	if err != nil {
		return nil, err
	}
	return cur.Graph.Ambiguities, nil
}
