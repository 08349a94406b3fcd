// Package ledger persists first-seen creation dates across builds.
//
// The on-disk format is the .gwiki-metadata.json mapping used by existing
// wikis: {"creation_dates": {"<id>": "YYYY-MM-DD", ...}} with sorted keys.
// Entries are append-only; once a date is recorded for an id it is never
// reassigned, regardless of what the file system reports later.
package ledger

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// DateFormat is the stored date layout.
const DateFormat = "2006-01-02"

type fileFormat struct {
	CreationDates map[string]string `json:"creation_dates"`
}

// Ledger maps document id to its first-observed creation date.
// Single-writer: one build loads, mutates and saves it sequentially.
type Ledger struct {
	path  string
	dates map[string]time.Time
	dirty bool
}

// Load reads the ledger file at path. A missing or corrupt file yields an
// empty ledger (all documents look new) and a warning, never an error.
func Load(path string, logger *slog.Logger) *Ledger {
	l := &Ledger{path: path, dates: make(map[string]time.Time)}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("ledger: unreadable, starting empty", slog.String("path", path), slog.String("error", err.Error()))
		}
		return l
	}

	var ff fileFormat
	if err := json.Unmarshal(data, &ff); err != nil {
		logger.Warn("ledger: corrupt, starting empty", slog.String("path", path), slog.String("error", err.Error()))
		return l
	}

	for id, raw := range ff.CreationDates {
		t, err := time.Parse(DateFormat, raw)
		if err != nil {
			logger.Warn("ledger: bad date, entry dropped", slog.String("id", id), slog.String("date", raw))
			continue
		}
		l.dates[id] = t
	}
	return l
}

// GetOrCreate returns the recorded creation date for id, recording observed
// (truncated to a calendar date) on first sight. A zero observed time falls
// back to the current build time. Subsequent calls ignore observed entirely.
func (l *Ledger) GetOrCreate(id string, observed time.Time) time.Time {
	if t, ok := l.dates[id]; ok {
		return t
	}
	if observed.IsZero() {
		observed = time.Now()
	}
	day, _ := time.Parse(DateFormat, observed.Format(DateFormat))
	l.dates[id] = day
	l.dirty = true
	return day
}

// Get returns the recorded date for id without recording anything.
func (l *Ledger) Get(id string) (time.Time, bool) {
	t, ok := l.dates[id]
	return t, ok
}

// Len returns the number of recorded entries.
func (l *Ledger) Len() int { return len(l.dates) }

// Dirty reports whether GetOrCreate recorded any new entry since Load.
func (l *Ledger) Dirty() bool { return l.dirty }

// Save writes the ledger back atomically (tmp file → fsync → rename).
// An unwritable ledger is a hard error: silently losing creation history
// would break the append-only guarantee.
func (l *Ledger) Save() error {
	// encoding/json sorts map keys, so repeated saves of the same state
	// are byte-for-byte identical.
	ff := fileFormat{CreationDates: make(map[string]string, len(l.dates))}
	for id, t := range l.dates {
		ff.CreationDates[id] = t.Format(DateFormat)
	}
	data, err := json.MarshalIndent(ff, "", "  ")
	if err != nil {
		return fmt.Errorf("ledger: marshal: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ledger: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".gwiki-ledger-*")
	if err != nil {
		return fmt.Errorf("ledger: create temp: %w", err)
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
		return fmt.Errorf("ledger: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("ledger: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("ledger: close temp: %w", err)
	}
	if err := os.Rename(tmpName, l.path); err != nil {
		return fmt.Errorf("ledger: rename: %w", err)
	}
	success = true
	l.dirty = false
	return nil
}
