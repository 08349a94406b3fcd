// Package apperr defines sentinel errors shared across layers.
package apperr

import "errors"

var (
	// ErrNotFound is returned when a document id resolves to nothing.
	ErrNotFound = errors.New("not found")
	// ErrNotBuilt is returned when a query arrives before the first
	// successful build pass has populated the model.
	ErrNotBuilt = errors.New("model not built yet")
)
