// Package watcher triggers rebuilds when source files change on disk.
package watcher

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Rebuild is called after a debounced batch of file changes.
type Rebuild func()

// Watch starts an fsnotify watcher on the wiki root and processes file
// change events until ctx is cancelled. Any create, write, remove or rename
// touching a source file schedules rebuild, debounced so a burst of events
// (editor save patterns, bulk moves) collapses into a single pass.
//
// New directories created at runtime are automatically added to the watch
// list. Hidden directories are never watched.
func Watch(ctx context.Context, root, ext string, debounce time.Duration, logger *slog.Logger, rebuild Rebuild) error {
	if ext == "" {
		ext = ".tex"
	}
	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root), slog.String("ext", ext))

	var timer *time.Timer
	var timerCh <-chan time.Time

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			timerCh = timer.C
		} else {
			timer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-timerCh:
			if rebuild != nil {
				rebuild()
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			// New directories join the watch list; their contents are
			// picked up by the rebuild like any other change.
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if hidden(filepath.Base(ev.Name)) {
						continue
					}
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					} else {
						logger.Debug("watcher: watching new dir", slog.String("path", ev.Name))
					}
					schedule()
					continue
				}
			}

			if !strings.HasSuffix(ev.Name, ext) {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			logger.Debug("watcher: change", slog.String("path", ev.Name), slog.String("op", ev.Op.String()))
			schedule()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}

// addDirsRecursive adds root and all its non-hidden subdirectories to the
// watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && hidden(d.Name()) {
			return fs.SkipDir
		}
		return w.Add(path)
	})
}
