// Package registry builds the per-run collection of document records from
// scanned sources and the creation ledger.
package registry

import (
	"log/slog"
	"sort"
	"time"

	"github.com/starward/gwiki/internal/ledger"
	"github.com/starward/gwiki/internal/models"
	"github.com/starward/gwiki/internal/scanner"
)

// createdFormats are the author-facing date layouts accepted in metadata,
// most specific first.
var createdFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"January 2, 2006",
}

// Registry holds one DocumentRecord per discovered document, keyed by its
// stable id, plus each document's raw reference occurrences. It is rebuilt
// from scratch on every build pass and owns its records for the run.
type Registry struct {
	docs  map[string]*models.DocumentRecord
	refs  map[string][]models.Reference
	paths map[string]string
}

// Build scans every source, resolves creation dates through the ledger and
// assembles the registry. Duplicate ids keep the first occurrence in input
// order; later ones are dropped with a warning, deterministically for a
// fixed input order.
func Build(sources []models.Source, led *ledger.Ledger, logger *slog.Logger) *Registry {
	r := &Registry{
		docs:  make(map[string]*models.DocumentRecord, len(sources)),
		refs:  make(map[string][]models.Reference, len(sources)),
		paths: make(map[string]string, len(sources)),
	}

	for _, src := range sources {
		if prev, ok := r.paths[src.ID]; ok {
			logger.Warn("registry: duplicate id dropped",
				slog.String("id", src.ID),
				slog.String("kept", prev),
				slog.String("dropped", src.Path))
			continue
		}

		res := scanner.Scan(src.Content)

		rec := &models.DocumentRecord{
			ID:         src.ID,
			Title:      res.Meta.Title,
			Type:       res.Meta.Type,
			Tags:       res.Meta.Tags,
			Aliases:    res.Meta.Aliases,
			Summary:    res.Meta.Summary,
			ModifiedAt: src.ModTime,
		}
		if rec.Title == "" {
			rec.Title = src.ID
		}
		if rec.Type == "" {
			rec.Type = src.Type
		}

		// The author-declared creation date, when present and parseable,
		// is the observation offered to the ledger; otherwise the file
		// system birth time. Either way the ledger's stored value wins
		// on every build after the first.
		observed := src.BirthTime
		if res.Meta.Created != "" {
			if t, ok := parseCreated(res.Meta.Created); ok {
				observed = t
			} else {
				logger.Warn("registry: unparseable creation date",
					slog.String("id", src.ID),
					slog.String("date", res.Meta.Created))
			}
		}
		rec.CreatedAt = led.GetOrCreate(src.ID, observed)

		refs := res.References
		for i := range refs {
			refs[i].SourceID = src.ID
		}

		r.docs[src.ID] = rec
		r.refs[src.ID] = refs
		r.paths[src.ID] = src.Path
	}

	return r
}

// Get returns the record for id.
func (r *Registry) Get(id string) (*models.DocumentRecord, bool) {
	rec, ok := r.docs[id]
	return rec, ok
}

// PathOf returns the source path backing id.
func (r *Registry) PathOf(id string) (string, bool) {
	p, ok := r.paths[id]
	return p, ok
}

// Len returns the number of registered documents.
func (r *Registry) Len() int { return len(r.docs) }

// IDs returns all document ids in ascending order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.docs))
	for id := range r.docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// All returns every record ordered by id.
func (r *Registry) All() []*models.DocumentRecord {
	out := make([]*models.DocumentRecord, 0, len(r.docs))
	for _, id := range r.IDs() {
		out = append(out, r.docs[id])
	}
	return out
}

// References returns document id → its reference occurrences in document
// order.
func (r *Registry) References() map[string][]models.Reference {
	return r.refs
}

func parseCreated(raw string) (time.Time, bool) {
	for _, layout := range createdFormats {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
