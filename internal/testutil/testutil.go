// Package testutil provides shared test helpers for setting up wikis and
// databases.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starward/gwiki/internal/index"
	"github.com/starward/gwiki/internal/storage"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "gwiki-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestWiki creates a temporary wiki directory with a storage provider.
func TestWiki(t *testing.T) (string, *storage.FS) {
	t.Helper()
	root := t.TempDir()
	store, err := storage.NewFS(root, ".tex")
	if err != nil {
		t.Fatal(err)
	}
	return root, store
}

// WriteNote writes a note file under root, creating parent directories.
func WriteNote(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
