// Package artifacts writes the JSON index files consumed by external
// renderers. Every file is written atomically (tmp → fsync → rename) and
// contains no timestamps, so rebuilding from unchanged input produces
// byte-for-byte identical output.
package artifacts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/starward/gwiki/internal/completion"
	"github.com/starward/gwiki/internal/graph"
	"github.com/starward/gwiki/internal/models"
	"github.com/starward/gwiki/internal/registry"
	"github.com/starward/gwiki/internal/validator"
	"github.com/starward/gwiki/internal/views"
)

// Writer emits build artifacts into one output directory.
type Writer struct {
	dir string
}

// NewWriter creates a Writer rooted at dir, creating it if needed.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("artifacts: mkdir %s: %w", dir, err)
	}
	return &Writer{dir: dir}, nil
}

// Dir returns the output directory.
func (w *Writer) Dir() string { return w.dir }

// masterIndex is the top-level index.json document.
type masterIndex struct {
	Stats     stats                             `json:"stats"`
	Documents map[string]*models.DocumentRecord `json:"documents"`
}

type stats struct {
	Total  int `json:"total"`
	Tags   int `json:"tags"`
	Broken int `json:"broken"`
}

// WriteAll emits every artifact for one completed build pass.
func (w *Writer) WriteAll(reg *registry.Registry, g *graph.Graph, broken []models.BrokenReference,
	comp *completion.Index, reports []validator.Report) error {

	if reports == nil {
		reports = []validator.Report{}
	}
	backlinks := g.Backlinks()
	tagGroups := views.ByTag(reg)

	docs := make(map[string]*models.DocumentRecord, reg.Len())
	for _, id := range reg.IDs() {
		rec, _ := reg.Get(id)
		docs[id] = rec
	}

	master := masterIndex{
		Stats: stats{
			Total:  reg.Len(),
			Tags:   countTags(tagGroups),
			Broken: len(broken),
		},
		Documents: docs,
	}

	type artifact struct {
		name string
		data any
	}
	files := []artifact{
		{"index.json", master},
		{"alphabetical.json", views.Alphabetical(reg)},
		{"tags.json", tagGroups},
		{"chronological.json", views.Chronological(reg)},
		{"search.json", views.SearchDocs(reg)},
		{"backlinks.json", backlinks},
		{"graph.json", map[string]any{"nodes": reg.All(), "edges": g.Edges}},
		{"completions.json", map[string]any{"count": comp.Len(), "completions": comp.Query("")}},
		{"broken-links.json", reports},
	}
	for _, f := range files {
		if err := w.writeJSON(f.name, f.data); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) writeJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("artifacts: marshal %s: %w", name, err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(w.dir, ".gwiki-artifact-*")
	if err != nil {
		return fmt.Errorf("artifacts: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("artifacts: write %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("artifacts: fsync %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("artifacts: close %s: %w", name, err)
	}
	if err := os.Rename(tmpName, filepath.Join(w.dir, name)); err != nil {
		return fmt.Errorf("artifacts: rename %s: %w", name, err)
	}
	success = true
	return nil
}

func countTags(groups []views.TagGroup) int {
	n := 0
	for _, g := range groups {
		if g.Tag != views.UntaggedBucket {
			n++
		}
	}
	return n
}
