package views

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/starward/gwiki/internal/ledger"
	"github.com/starward/gwiki/internal/models"
	"github.com/starward/gwiki/internal/registry"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func buildRegistry(t *testing.T, sources ...models.Source) *registry.Registry {
	t.Helper()
	led := ledger.Load(filepath.Join(t.TempDir(), "ledger.json"), discard())
	return registry.Build(sources, led, discard())
}

func note(id, content string, born time.Time) models.Source {
	return models.Source{
		ID:        id,
		Path:      id + ".tex",
		Type:      models.TypeNote,
		Content:   []byte(content),
		BirthTime: born,
		ModTime:   born,
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAlphabetical_GroupingAndOrder(t *testing.T) {
	reg := buildRegistry(t,
		note("b1", `\Title{banach space}`, day(2024, 1, 1)),
		note("a1", `\Title{Arzela-Ascoli}`, day(2024, 1, 1)),
		note("a2", `\Title{adjoint}`, day(2024, 1, 1)),
		note("num", `\Title{2-categories}`, day(2024, 1, 1)),
	)
	groups := Alphabetical(reg)
	if len(groups) != 3 {
		t.Fatalf("groups = %d, want 3", len(groups))
	}
	if groups[0].Letter != NonLetterBucket || groups[0].Docs[0].ID != "num" {
		t.Errorf("group[0] = %+v", groups[0])
	}
	if groups[1].Letter != "A" || len(groups[1].Docs) != 2 {
		t.Fatalf("group[1] = %+v", groups[1])
	}
	// Case-insensitive title order: adjoint before Arzela-Ascoli.
	if groups[1].Docs[0].Title != "adjoint" {
		t.Errorf("A group order = [%s, %s]", groups[1].Docs[0].Title, groups[1].Docs[1].Title)
	}
}

func TestByTag_Scenario(t *testing.T) {
	reg := buildRegistry(t,
		note("a", `\Tags{x}`, day(2024, 1, 1)),
		note("b", `\Tags{x, y}`, day(2024, 1, 1)),
		note("c", "", day(2024, 1, 1)),
	)
	groups := ByTag(reg)
	if len(groups) != 3 {
		t.Fatalf("groups = %+v", groups)
	}
	if groups[0].Tag != "x" || len(groups[0].Docs) != 2 || groups[0].Docs[0].ID != "a" || groups[0].Docs[1].ID != "b" {
		t.Errorf("x group = %+v", groups[0])
	}
	if groups[1].Tag != "y" || len(groups[1].Docs) != 1 || groups[1].Docs[0].ID != "b" {
		t.Errorf("y group = %+v", groups[1])
	}
	if groups[2].Tag != UntaggedBucket || groups[2].Docs[0].ID != "c" {
		t.Errorf("untagged group = %+v", groups[2])
	}
}

func TestChronological_OrderAndYearGroups(t *testing.T) {
	reg := buildRegistry(t,
		note("old", "", day(2022, 5, 1)),
		note("newer", "", day(2024, 2, 2)),
		note("tie-b", "", day(2024, 2, 2)),
		note("a-tie", "", day(2024, 2, 2)),
	)
	groups := Chronological(reg)
	if len(groups) != 2 || groups[0].Year != "2024" || groups[1].Year != "2022" {
		t.Fatalf("groups = %+v", groups)
	}
	got := groups[0].Docs
	// Same date: id ascending.
	if got[0].ID != "a-tie" || got[1].ID != "newer" || got[2].ID != "tie-b" {
		t.Errorf("2024 order = [%s %s %s]", got[0].ID, got[1].ID, got[2].ID)
	}
}

func TestViews_UnionCoversRegistry(t *testing.T) {
	for _, n := range []int{0, 1, 5} {
		var sources []models.Source
		for i := 0; i < n; i++ {
			id := string(rune('a' + i))
			content := ""
			if i%2 == 0 {
				content = `\Tags{even}`
			}
			sources = append(sources, note(id, content, day(2020+i, 1, 1)))
		}
		reg := buildRegistry(t, sources...)

		seen := make(map[string]bool)
		for _, g := range Alphabetical(reg) {
			for _, d := range g.Docs {
				seen[d.ID] = true
			}
		}
		checkUnion(t, reg, seen, "alphabetical")

		seen = make(map[string]bool)
		for _, g := range ByTag(reg) {
			for _, d := range g.Docs {
				seen[d.ID] = true
			}
		}
		checkUnion(t, reg, seen, "by-tag")

		seen = make(map[string]bool)
		for _, g := range Chronological(reg) {
			for _, d := range g.Docs {
				seen[d.ID] = true
			}
		}
		checkUnion(t, reg, seen, "chronological")

		if len(SearchDocs(reg)) != reg.Len() {
			t.Errorf("search docs dropped a document (n=%d)", n)
		}
	}
}

func checkUnion(t *testing.T, reg *registry.Registry, seen map[string]bool, view string) {
	t.Helper()
	for _, id := range reg.IDs() {
		if !seen[id] {
			t.Errorf("%s view dropped %q", view, id)
		}
	}
	if len(seen) != reg.Len() {
		t.Errorf("%s view has %d docs, registry has %d", view, len(seen), reg.Len())
	}
}

func TestFilter_CaseInsensitiveSubstring(t *testing.T) {
	docs := []SearchDoc{
		{ID: "a", Title: "Banach Space", Tags: []string{"analysis"}},
		{ID: "b", Title: "Compactness", Summary: "closed and bounded"},
		{ID: "c", Title: "Graph Theory", Tags: []string{"combinatorics"}},
	}
	if got := Filter(docs, "BANACH"); len(got) != 1 || got[0].ID != "a" {
		t.Errorf("title match = %+v", got)
	}
	if got := Filter(docs, "naly"); len(got) != 1 || got[0].ID != "a" {
		t.Errorf("tag match = %+v", got)
	}
	if got := Filter(docs, "bounded"); len(got) != 1 || got[0].ID != "b" {
		t.Errorf("summary match = %+v", got)
	}
	if got := Filter(docs, ""); len(got) != 3 {
		t.Errorf("empty query = %+v", got)
	}
}
