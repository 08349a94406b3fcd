package storage

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/starward/gwiki/internal/checksum"
	"github.com/starward/gwiki/internal/models"
)

// FS implements Provider backed by the local file system.
type FS struct {
	root string // absolute path to the wiki directory
	ext  string // note file extension, e.g. ".tex"
}

// NewFS creates a new FS provider rooted at the given directory.
// The directory must already exist. ext defaults to ".tex" when empty.
func NewFS(root, ext string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	if ext == "" {
		ext = ".tex"
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return &FS{root: abs, ext: ext}, nil
}

// Root returns the absolute wiki root.
func (f *FS) Root() string { return f.root }

// Ext returns the note file extension, including the leading dot.
func (f *FS) Ext() string { return f.ext }

// safePath resolves a relative path against the wiki root and rejects
// any result that escapes it (directory traversal).
func (f *FS) safePath(rel string) (string, error) {
	if rel == "" {
		return f.root, nil
	}
	cleaned := filepath.Clean(rel)
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("storage: absolute paths not allowed: %s", rel)
	}
	joined := filepath.Join(f.root, cleaned)
	abs, err := filepath.Abs(joined)
	if err != nil {
		return "", fmt.Errorf("storage: resolve path: %w", err)
	}
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) && abs != f.root {
		return "", fmt.Errorf("storage: path escapes wiki root: %s", rel)
	}
	return abs, nil
}

// List walks the wiki tree and returns one Source per note file, sorted by
// relative path so builds are deterministic. An unreadable tree or file is a
// hard error: the build must see either the whole tree or nothing.
func (f *FS) List() ([]models.Source, error) {
	var out []models.Source
	err := filepath.WalkDir(f.root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			// Hidden directories (.git, .vscode, build output) are not notes.
			if p != f.root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), f.ext) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(f.root, p)
		out = append(out, models.Source{
			ID:        strings.TrimSuffix(d.Name(), f.ext),
			Path:      filepath.ToSlash(rel),
			Type:      typeForPath(rel),
			Content:   data,
			Checksum:  checksum.Sum(data),
			BirthTime: birthTime(info),
			ModTime:   info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// Read returns the raw bytes of a wiki file.
func (f *FS) Read(path string) ([]byte, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", path, err)
	}
	return data, nil
}

// typeForPath derives the default document type from the top-level directory
// a note lives in, matching the historical articles/ and wiki/ layout.
// Notes elsewhere default to "note".
func typeForPath(rel string) string {
	switch strings.SplitN(filepath.ToSlash(rel), "/", 2)[0] {
	case "articles":
		return models.TypeArticle
	case "wiki":
		return models.TypeWiki
	default:
		return models.TypeNote
	}
}
