//go:build !darwin

package storage

import (
	"os"
	"time"
)

// birthTime falls back to the modification time on platforms without a
// recorded birth time. The creation ledger makes the first observation
// sticky, so the fallback only matters for a document's very first build.
func birthTime(info os.FileInfo) time.Time {
	return info.ModTime()
}
