// Package graph resolves raw references against the registry and derives
// the directed link graph and its backlink transpose.
package graph

import (
	"log/slog"
	"sort"

	"github.com/starward/gwiki/internal/ident"
	"github.com/starward/gwiki/internal/models"
	"github.com/starward/gwiki/internal/registry"
)

// Ambiguity records an alias that matched more than one document. The
// reference still resolves (to the lexicographically smallest id); the
// ambiguity is surfaced as a warning, not a broken reference.
type Ambiguity struct {
	SourceID    string   `json:"source"`
	SourceLine  int      `json:"line"`
	TargetToken string   `json:"token"`
	Candidates  []string `json:"candidates"`
	Chosen      string   `json:"chosen"`
}

// Graph is the resolved directed multigraph over document ids. One edge is
// recorded per resolved reference occurrence; set semantics are applied
// where views need them (backlinks, outgoing targets).
type Graph struct {
	Edges       []models.Edge
	Ambiguities []Ambiguity
}

// Resolver maps normalized tokens to document ids. Tables are precomputed
// once per registry rebuild; resolution is two map lookups.
type Resolver struct {
	byID    map[string]string
	byAlias map[string][]string
}

// NewResolver builds the normalized id and alias lookup tables for reg.
func NewResolver(reg *registry.Registry) *Resolver {
	r := &Resolver{
		byID:    make(map[string]string, reg.Len()),
		byAlias: make(map[string][]string),
	}
	// IDs() is sorted, so on a normalized-key collision the smallest id
	// wins deterministically.
	for _, id := range reg.IDs() {
		key := ident.Normalize(id)
		if _, taken := r.byID[key]; !taken {
			r.byID[key] = id
		}
		rec, _ := reg.Get(id)
		for _, alias := range rec.Aliases {
			ak := ident.Normalize(alias)
			r.byAlias[ak] = append(r.byAlias[ak], id)
		}
	}
	for _, ids := range r.byAlias {
		sort.Strings(ids)
	}
	return r
}

// Resolve maps a reference's base target to a document id. An exact id
// match always beats an alias match. ambiguous is true when several
// documents share the alias; the smallest id is returned in that case.
func (r *Resolver) Resolve(target string) (id string, ambiguous, ok bool) {
	key := ident.Normalize(target)
	if id, ok := r.byID[key]; ok {
		return id, false, true
	}
	if ids := r.byAlias[key]; len(ids) > 0 {
		return ids[0], len(ids) > 1, true
	}
	return "", false, false
}

// Build resolves every reference occurrence and returns the link graph plus
// the broken references, each retaining its source id and 1-based line for
// reporting. Resolution failures never stop the build.
func Build(reg *registry.Registry, logger *slog.Logger) (*Graph, []models.BrokenReference) {
	res := NewResolver(reg)
	g := &Graph{}
	var broken []models.BrokenReference

	refs := reg.References()
	for _, sourceID := range reg.IDs() {
		for _, ref := range refs[sourceID] {
			target, ambiguous, ok := res.Resolve(ref.Target)
			if !ok {
				broken = append(broken, models.BrokenReference{
					SourceID:    ref.SourceID,
					SourceLine:  ref.SourceLine,
					TargetToken: ref.TargetToken,
				})
				continue
			}
			if ambiguous {
				amb := Ambiguity{
					SourceID:    ref.SourceID,
					SourceLine:  ref.SourceLine,
					TargetToken: ref.TargetToken,
					Candidates:  res.byAlias[ident.Normalize(ref.Target)],
					Chosen:      target,
				}
				g.Ambiguities = append(g.Ambiguities, amb)
				logger.Warn("graph: ambiguous alias",
					slog.String("source", ref.SourceID),
					slog.Int("line", ref.SourceLine),
					slog.String("token", ref.TargetToken),
					slog.String("chosen", target))
			}
			g.Edges = append(g.Edges, models.Edge{Source: sourceID, Target: target})
		}
	}
	return g, broken
}

// Backlinks returns the transpose of the graph: target id → sorted set of
// ids that reference it. Self-edges are excluded and repeated references
// from the same source collapse to one entry.
func (g *Graph) Backlinks() map[string][]string {
	sets := make(map[string]map[string]struct{})
	for _, e := range g.Edges {
		if e.Source == e.Target {
			continue
		}
		if sets[e.Target] == nil {
			sets[e.Target] = make(map[string]struct{})
		}
		sets[e.Target][e.Source] = struct{}{}
	}
	out := make(map[string][]string, len(sets))
	for target, srcs := range sets {
		sorted := make([]string, 0, len(srcs))
		for s := range srcs {
			sorted = append(sorted, s)
		}
		sort.Strings(sorted)
		out[target] = sorted
	}
	return out
}

// Outgoing returns the sorted set of distinct targets source links to,
// self-links included.
func (g *Graph) Outgoing(source string) []string {
	set := make(map[string]struct{})
	for _, e := range g.Edges {
		if e.Source == source {
			set[e.Target] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
