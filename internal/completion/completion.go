// Package completion maintains the ranked reference-completion index
// consumed by editor integrations on every keystroke. Normalized match
// keys are precomputed at build time so queries stay in the
// single-digit-millisecond range for registries of a few thousand
// documents.
package completion

import (
	"fmt"
	"sort"
	"strings"

	"github.com/starward/gwiki/internal/ident"
	"github.com/starward/gwiki/internal/registry"
)

// Entry is one completion candidate. Documents get one entry per id and one
// additional entry per alias; alias entries keep the id as insertion text
// with the alias as display override.
type Entry struct {
	Label      string `json:"label"`
	InsertText string `json:"insertText"`
	Display    string `json:"display,omitempty"`
	Detail     string `json:"detail,omitempty"`
	SortText   string `json:"sortText"`

	normLabel  string
	normInsert string
}

// Snippet renders the reference directive this entry inserts.
func (e Entry) Snippet() string {
	if e.Display != "" {
		return fmt.Sprintf(`\wref{%s}[%s]`, e.InsertText, e.Display)
	}
	return fmt.Sprintf(`\wref{%s}`, e.InsertText)
}

// Index is the precomputed completion table, ranked by document recency.
type Index struct {
	entries []Entry
}

// BuildIndex ranks documents by ModifiedAt descending (id ascending on
// ties) and emits entries in rank order with zero-padded sort keys, so a
// dumb lexicographic sort on SortText reproduces the ranking.
func BuildIndex(reg *registry.Registry) *Index {
	docs := reg.All()
	sort.SliceStable(docs, func(i, j int) bool {
		if !docs[i].ModifiedAt.Equal(docs[j].ModifiedAt) {
			return docs[i].ModifiedAt.After(docs[j].ModifiedAt)
		}
		return docs[i].ID < docs[j].ID
	})

	ix := &Index{}
	rank := 0
	add := func(label, insert, display, detail string) {
		ix.entries = append(ix.entries, Entry{
			Label:      label,
			InsertText: insert,
			Display:    display,
			Detail:     detail,
			SortText:   fmt.Sprintf("%04d", rank),
			normLabel:  ident.Normalize(label),
			normInsert: ident.Normalize(insert),
		})
		rank++
	}

	for _, rec := range docs {
		detail, _ := reg.PathOf(rec.ID)
		add(rec.Title, rec.ID, "", detail)
		for _, alias := range rec.Aliases {
			add(alias, rec.ID, alias, detail)
		}
	}
	return ix
}

// Len returns the number of entries.
func (ix *Index) Len() int { return len(ix.entries) }

// Query returns entries whose normalized label or insertion text contains
// the normalized partial, in rank order. The normalization makes matching
// tolerant of spaces and hyphens the stored identifier does not carry. An
// empty (or all-punctuation) partial returns every entry.
func (ix *Index) Query(partial string) []Entry {
	key := ident.Normalize(partial)
	if key == "" {
		out := make([]Entry, len(ix.entries))
		copy(out, ix.entries)
		return out
	}
	var out []Entry
	for _, e := range ix.entries {
		if strings.Contains(e.normLabel, key) || strings.Contains(e.normInsert, key) {
			out = append(out, e)
		}
	}
	return out
}
