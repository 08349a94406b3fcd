// Package builder runs one full build pass: scan every source, assemble
// the registry, resolve the link graph, derive views and completions, then
// commit the persisted model, the artifacts and the creation ledger.
//
// Builds are all-or-nothing: a fatal failure (unreadable tree, unwritable
// ledger) aborts before anything is committed, leaving prior artifacts and
// the ledger untouched. Broken references and malformed metadata only warn.
package builder

import (
	"fmt"
	"log/slog"

	"github.com/starward/gwiki/internal/artifacts"
	"github.com/starward/gwiki/internal/completion"
	"github.com/starward/gwiki/internal/graph"
	"github.com/starward/gwiki/internal/index"
	"github.com/starward/gwiki/internal/ledger"
	"github.com/starward/gwiki/internal/models"
	"github.com/starward/gwiki/internal/registry"
	"github.com/starward/gwiki/internal/storage"
	"github.com/starward/gwiki/internal/validator"
)

// Builder carries the fixed dependencies of a build pass. Both db and
// artifacts may be nil to skip the respective commit stage (the validate
// command needs neither).
type Builder struct {
	store      storage.Provider
	db         *index.DB
	art        *artifacts.Writer
	ledgerPath string
	logger     *slog.Logger
}

// Result is the stabilized in-memory model of one completed build.
type Result struct {
	Registry    *registry.Registry
	Graph       *graph.Graph
	Backlinks   map[string][]string
	Broken      []models.BrokenReference
	Completions *completion.Index
	Reports     []validator.Report
}

// New creates a Builder.
func New(store storage.Provider, db *index.DB, art *artifacts.Writer, ledgerPath string, logger *slog.Logger) *Builder {
	return &Builder{store: store, db: db, art: art, ledgerPath: ledgerPath, logger: logger}
}

// Run executes one sequential build pass and commits its outputs.
// The ledger is saved first: losing creation history is the one mistake
// the engine must never make, so nothing else is committed if that fails.
func (b *Builder) Run() (*Result, error) {
	sources, err := b.store.List()
	if err != nil {
		return nil, fmt.Errorf("builder: list sources: %w", err)
	}

	led := ledger.Load(b.ledgerPath, b.logger)
	reg := registry.Build(sources, led, b.logger)
	g, broken := graph.Build(reg, b.logger)

	res := &Result{
		Registry:    reg,
		Graph:       g,
		Backlinks:   g.Backlinks(),
		Broken:      broken,
		Completions: completion.BuildIndex(reg),
		Reports:     validator.Validate(reg),
	}

	if err := led.Save(); err != nil {
		return nil, fmt.Errorf("builder: commit ledger: %w", err)
	}

	if b.db != nil {
		if err := b.db.ReplaceModel(inputs(reg, sources), g.Edges, broken); err != nil {
			return nil, fmt.Errorf("builder: persist model: %w", err)
		}
	}

	if b.art != nil {
		if err := b.art.WriteAll(reg, g, broken, res.Completions, res.Reports); err != nil {
			return nil, fmt.Errorf("builder: write artifacts: %w", err)
		}
	}

	b.logStats(res)
	return res, nil
}

// inputs pairs each registered record with its source path, checksum and
// body. Sources dropped as duplicate ids are not persisted.
func inputs(reg *registry.Registry, sources []models.Source) []index.Input {
	byPath := make(map[string]models.Source, len(sources))
	for _, s := range sources {
		byPath[s.Path] = s
	}

	out := make([]index.Input, 0, reg.Len())
	for _, id := range reg.IDs() {
		rec, _ := reg.Get(id)
		path, _ := reg.PathOf(id)
		src := byPath[path]
		out = append(out, index.Input{
			Doc: index.Doc{
				DocumentRecord: *rec,
				Path:           path,
				Checksum:       src.Checksum,
			},
			Body: string(src.Content),
		})
	}
	return out
}

func (b *Builder) logStats(res *Result) {
	tags := make(map[string]struct{})
	for _, rec := range res.Registry.All() {
		for _, t := range rec.Tags {
			tags[t] = struct{}{}
		}
	}

	mostReferenced, most := "", 0
	for target, sources := range res.Backlinks {
		if len(sources) > most || (len(sources) == most && target < mostReferenced) {
			mostReferenced, most = target, len(sources)
		}
	}

	attrs := []any{
		slog.Int("documents", res.Registry.Len()),
		slog.Int("tags", len(tags)),
		slog.Int("edges", len(res.Graph.Edges)),
		slog.Int("broken", len(res.Broken)),
		slog.Int("ambiguous", len(res.Graph.Ambiguities)),
	}
	if mostReferenced != "" {
		attrs = append(attrs,
			slog.String("most_referenced", mostReferenced),
			slog.Int("backlinks", most))
	}
	b.logger.Info("builder: pass complete", attrs...)
}
