// Package storage defines the wiki source-tree abstraction.
package storage

import "github.com/starward/gwiki/internal/models"

// Provider is the interface for reading the wiki source tree.
// The engine is a read-model over an author-managed tree; it never writes
// into it.
type Provider interface {
	// List walks the tree and returns one Source per note file, in
	// deterministic (path-sorted) order.
	List() ([]models.Source, error)
	// Read returns the raw bytes of the file at path (relative to the root).
	Read(path string) ([]byte, error)
}
