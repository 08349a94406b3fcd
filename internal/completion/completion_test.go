package completion

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

func buildIndex(t *testing.T, sources ...models.Source) *Index {
	t.Helper()
	led := ledger.Load(filepath.Join(t.TempDir(), "ledger.json"), discard())
	return BuildIndex(registry.Build(sources, led, discard()))
}

func note(id, content string, modified time.Time) models.Source {
	return models.Source{
		ID:      id,
		Path:    id + ".tex",
		Type:    models.TypeNote,
		Content: []byte(content),
		ModTime: modified,
	}
}

func TestBuildIndex_OneEntryPerIDPlusAliases(t *testing.T) {
	ix := buildIndex(t,
		note("category", `\Title{Category}\Aliases{categories, cats}`, time.Unix(100, 0)),
		note("functor", `\Title{Functor}`, time.Unix(200, 0)),
	)
	if ix.Len() != 4 {
		t.Fatalf("len = %d, want 4 (2 ids + 2 aliases)", ix.Len())
	}
}

func TestBuildIndex_RecencyRanking(t *testing.T) {
	ix := buildIndex(t,
		note("older", `\Title{Older}`, time.Unix(100, 0)),
		note("newest", `\Title{Newest}`, time.Unix(300, 0)),
		note("middle", `\Title{Middle}`, time.Unix(200, 0)),
	)
	all := ix.Query("")
	if all[0].InsertText != "newest" || all[0].SortText != "0000" {
		t.Errorf("rank 0 = %+v", all[0])
	}
	if all[1].InsertText != "middle" || all[2].InsertText != "older" {
		t.Errorf("order = %s, %s", all[1].InsertText, all[2].InsertText)
	}
	if all[2].SortText != "0002" {
		t.Errorf("sortText = %q", all[2].SortText)
	}
}

func TestQuery_ToleratesSpacesAndHyphens(t *testing.T) {
	ix := buildIndex(t,
		note("greenfunction", `\Title{Green Function}`, time.Unix(100, 0)),
	)
	for _, q := range []string{"green func", "green-func", "GREEN_FUN", "greenfu"} {
		if got := ix.Query(q); len(got) != 1 {
			t.Errorf("Query(%q) = %d entries, want 1", q, len(got))
		}
	}
}

func TestQuery_MatchesLabelOrInsertText(t *testing.T) {
	ix := buildIndex(t,
		note("ck-spaces", `\Title{Spaces of Continuous Functions}`, time.Unix(100, 0)),
	)
	if got := ix.Query("continuous"); len(got) != 1 {
		t.Errorf("label match failed: %+v", got)
	}
	if got := ix.Query("ck-sp"); len(got) != 1 {
		t.Errorf("insert-text match failed: %+v", got)
	}
	if got := ix.Query("nomatch"); len(got) != 0 {
		t.Errorf("unexpected match: %+v", got)
	}
}

func TestAliasEntry_SnippetCarriesDisplayOverride(t *testing.T) {
	ix := buildIndex(t,
		note("category", `\Title{Category}\Aliases{categories}`, time.Unix(100, 0)),
	)
	got := ix.Query("categories")
	var alias *Entry
	for i := range got {
		if got[i].Display != "" {
			alias = &got[i]
		}
	}
	if alias == nil {
		t.Fatalf("no alias entry in %+v", got)
	}
	if alias.InsertText != "category" || alias.Snippet() != `\wref{category}[categories]` {
		t.Errorf("alias = %+v, snippet = %s", alias, alias.Snippet())
	}
}
