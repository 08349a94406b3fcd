package registry

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/starward/gwiki/internal/ledger"
	"github.com/starward/gwiki/internal/models"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testLedger(t *testing.T) *ledger.Ledger {
	t.Helper()
	return ledger.Load(filepath.Join(t.TempDir(), "ledger.json"), discard())
}

func src(id, path, content string) models.Source {
	return models.Source{
		ID:      id,
		Path:    path,
		Type:    models.TypeNote,
		Content: []byte(content),
		ModTime: time.Date(2025, 2, 3, 10, 0, 0, 0, time.UTC),
	}
}

func TestBuild_TitleFallsBackToID(t *testing.T) {
	r := Build([]models.Source{src("bare note", "bare note.tex", "no directives here")}, testLedger(t), discard())
	rec, ok := r.Get("bare note")
	if !ok {
		t.Fatal("record missing")
	}
	if rec.Title != "bare note" {
		t.Errorf("title = %q, want id fallback", rec.Title)
	}
}

func TestBuild_DuplicateIDKeepsFirst(t *testing.T) {
	sources := []models.Source{
		src("dup", "articles/dup.tex", `\Title{First}`),
		src("dup", "wiki/dup.tex", `\Title{Second}`),
	}
	r := Build(sources, testLedger(t), discard())
	if r.Len() != 1 {
		t.Fatalf("len = %d, want 1", r.Len())
	}
	rec, _ := r.Get("dup")
	if rec.Title != "First" {
		t.Errorf("title = %q, want the first in input order", rec.Title)
	}
	if p, _ := r.PathOf("dup"); p != "articles/dup.tex" {
		t.Errorf("path = %q", p)
	}
}

func TestBuild_DeclaredCreationDateSeedsLedger(t *testing.T) {
	led := testLedger(t)
	s := src("dated", "dated.tex", `\GWikiDate{2020-06-15}`)
	s.BirthTime = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	r := Build([]models.Source{s}, led, discard())
	rec, _ := r.Get("dated")
	if rec.CreatedAt.Format(ledger.DateFormat) != "2020-06-15" {
		t.Errorf("createdAt = %v, want declared date", rec.CreatedAt)
	}
}

func TestBuild_CreatedAtStableAcrossBuilds(t *testing.T) {
	led := testLedger(t)
	s := src("stable", "stable.tex", "body")
	s.BirthTime = time.Date(2024, 4, 4, 12, 0, 0, 0, time.UTC)

	r1 := Build([]models.Source{s}, led, discard())
	first, _ := r1.Get("stable")

	// Second build with a bumped file-system time.
	s.BirthTime = time.Date(2025, 8, 8, 12, 0, 0, 0, time.UTC)
	s.ModTime = s.BirthTime
	r2 := Build([]models.Source{s}, led, discard())
	second, _ := r2.Get("stable")

	if !first.CreatedAt.Equal(second.CreatedAt) {
		t.Errorf("createdAt changed across builds: %v vs %v", first.CreatedAt, second.CreatedAt)
	}
	if !second.ModifiedAt.Equal(s.ModTime) {
		t.Errorf("modifiedAt = %v, want current fs time", second.ModifiedAt)
	}
}

func TestBuild_ReferencesCarrySourceID(t *testing.T) {
	r := Build([]models.Source{src("linker", "linker.tex", `See \wref{target-a}.`)}, testLedger(t), discard())
	refs := r.References()["linker"]
	if len(refs) != 1 || refs[0].SourceID != "linker" || refs[0].Target != "target-a" {
		t.Errorf("refs = %+v", refs)
	}
}

func TestBuild_UnparseableDateFallsBackToBirthTime(t *testing.T) {
	led := testLedger(t)
	s := src("odd", "odd.tex", `\GWikiDate{sometime last spring}`)
	s.BirthTime = time.Date(2023, 2, 1, 9, 0, 0, 0, time.UTC)
	r := Build([]models.Source{s}, led, discard())
	rec, _ := r.Get("odd")
	if rec.CreatedAt.Format(ledger.DateFormat) != "2023-02-01" {
		t.Errorf("createdAt = %v, want birth time fallback", rec.CreatedAt)
	}
}

func TestIDs_Sorted(t *testing.T) {
	r := Build([]models.Source{
		src("b", "b.tex", ""),
		src("a", "a.tex", ""),
		src("c", "c.tex", ""),
	}, testLedger(t), discard())
	ids := r.IDs()
	if len(ids) != 3 || ids[0] != "a" || ids[2] != "c" {
		t.Errorf("ids = %v", ids)
	}
}
