package ledger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGetOrCreate_FirstObservationSticks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	l := Load(path, discard())

	first := time.Date(2024, 3, 1, 15, 30, 0, 0, time.UTC)
	got := l.GetOrCreate("note-a", first)
	if got.Format(DateFormat) != "2024-03-01" {
		t.Errorf("first = %v", got)
	}

	// A later observation with a different time must be ignored.
	later := time.Date(2025, 7, 9, 0, 0, 0, 0, time.UTC)
	got = l.GetOrCreate("note-a", later)
	if got.Format(DateFormat) != "2024-03-01" {
		t.Errorf("second call = %v, want original date", got)
	}
}

func TestGetOrCreate_ZeroObservedUsesBuildTime(t *testing.T) {
	l := Load(filepath.Join(t.TempDir(), "ledger.json"), discard())
	got := l.GetOrCreate("fresh", time.Time{})
	if got.IsZero() {
		t.Error("expected a non-zero date for zero observation")
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	l := Load(path, discard())
	l.GetOrCreate("b", time.Date(2022, 1, 2, 0, 0, 0, 0, time.UTC))
	l.GetOrCreate("a", time.Date(2023, 5, 6, 0, 0, 0, 0, time.UTC))
	if !l.Dirty() {
		t.Fatal("expected dirty ledger")
	}
	if err := l.Save(); err != nil {
		t.Fatal(err)
	}
	if l.Dirty() {
		t.Error("save should clear dirty flag")
	}

	reloaded := Load(path, discard())
	if reloaded.Len() != 2 {
		t.Fatalf("len = %d, want 2", reloaded.Len())
	}
	got, ok := reloaded.Get("b")
	if !ok || got.Format(DateFormat) != "2022-01-02" {
		t.Errorf("b = %v, %v", got, ok)
	}
}

func TestSave_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	l := Load(path, discard())
	l.GetOrCreate("x", time.Date(2021, 9, 9, 0, 0, 0, 0, time.UTC))
	if err := l.Save(); err != nil {
		t.Fatal(err)
	}
	first, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := l.Save(); err != nil {
		t.Fatal(err)
	}
	second, _ := os.ReadFile(path)
	if string(first) != string(second) {
		t.Error("repeated saves differ byte-for-byte")
	}
}

func TestLoad_CorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	l := Load(path, discard())
	if l.Len() != 0 {
		t.Errorf("len = %d, want 0 for corrupt file", l.Len())
	}
}

func TestLoad_BadDateEntryDropped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	content := `{"creation_dates": {"ok": "2020-02-02", "bad": "yesterday"}}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	l := Load(path, discard())
	if l.Len() != 1 {
		t.Errorf("len = %d, want 1", l.Len())
	}
	if _, ok := l.Get("bad"); ok {
		t.Error("bad entry should be dropped")
	}
}
