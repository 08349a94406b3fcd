package wikiservice

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/starward/gwiki/internal/apperr"
	"github.com/starward/gwiki/internal/builder"
	"github.com/starward/gwiki/internal/testutil"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newService(t *testing.T) (*Service, string) {
	t.Helper()
	root, store := testutil.TestWiki(t)
	db := testutil.TestDB(t)
	ledgerPath := filepath.Join(t.TempDir(), "ledger.json")
	b := builder.New(store, db, nil, ledgerPath, discard())
	return New(b, store, db), root
}

func TestQueriesBeforeFirstBuild(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	if _, err := svc.List(ctx); !errors.Is(err, apperr.ErrNotBuilt) {
		t.Errorf("List err = %v, want ErrNotBuilt", err)
	}
	if _, err := svc.Document(ctx, "alpha"); !errors.Is(err, apperr.ErrNotBuilt) {
		t.Errorf("Document err = %v, want ErrNotBuilt", err)
	}
	if _, err := svc.Complete(ctx, "al"); !errors.Is(err, apperr.ErrNotBuilt) {
		t.Errorf("Complete err = %v, want ErrNotBuilt", err)
	}
}

func TestDocumentDetail(t *testing.T) {
	svc, root := newService(t)
	ctx := context.Background()

	testutil.WriteNote(t, root, "wiki/alpha.tex", "\\Title{Alpha}\nSee \\wref{beta}.\n")
	testutil.WriteNote(t, root, "wiki/beta.tex", "\\Title{Beta}\nBack to \\wref{alpha}.\n")
	if err := svc.Rebuild(ctx); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	doc, err := svc.Document(ctx, "alpha")
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	if doc.Title != "Alpha" {
		t.Errorf("title = %q", doc.Title)
	}
	if doc.Content == "" {
		t.Error("content not loaded")
	}
	if len(doc.Backlinks) != 1 || doc.Backlinks[0] != "beta" {
		t.Errorf("backlinks = %v", doc.Backlinks)
	}
	if len(doc.Outgoing) != 1 || doc.Outgoing[0] != "beta" {
		t.Errorf("outgoing = %v", doc.Outgoing)
	}

	if _, err := svc.Document(ctx, "gamma"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("unknown id err = %v, want ErrNotFound", err)
	}
}

func TestRebuildSwapsModel(t *testing.T) {
	svc, root := newService(t)
	ctx := context.Background()

	testutil.WriteNote(t, root, "wiki/alpha.tex", "\\Title{Alpha}\n")
	if err := svc.Rebuild(ctx); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	docs, err := svc.List(ctx)
	if err != nil || len(docs) != 1 {
		t.Fatalf("List = %v, %v", docs, err)
	}

	testutil.WriteNote(t, root, "wiki/beta.tex", "\\Title{Beta}\nSee \\wref{alpha}.\n")
	if err := svc.Rebuild(ctx); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	docs, err = svc.List(ctx)
	if err != nil || len(docs) != 2 {
		t.Fatalf("List after rebuild = %v, %v", docs, err)
	}

	bl, err := svc.Backlinks(ctx, "alpha")
	if err != nil {
		t.Fatalf("Backlinks: %v", err)
	}
	if len(bl) != 1 || bl[0] != "beta" {
		t.Errorf("backlinks = %v", bl)
	}
}

func TestValidateAndComplete(t *testing.T) {
	svc, root := newService(t)
	ctx := context.Background()

	testutil.WriteNote(t, root, "wiki/alpha.tex", "\\Title{Alpha}\n\\wref{ghost}\n")
	if err := svc.Rebuild(ctx); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	reports, err := svc.Validate(ctx)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(reports) != 1 || reports[0].TargetToken != "ghost" {
		t.Errorf("reports = %v", reports)
	}

	entries, err := svc.Complete(ctx, "alp")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if len(entries) != 1 || entries[0].InsertText != "alpha" {
		t.Errorf("entries = %v", entries)
	}
}
