package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starward/gwiki/internal/wikiservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// rebuild, if non-nil, replaces the service's own rebuild for POST /rebuild.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *wikiservice.Service, authEnabled bool, token string, rebuild RebuildFunc, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc, rebuild)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Documents.
	r.Get("/documents", h.ListDocuments)
	r.Get("/documents/{id}", h.GetDocument)
	r.Get("/documents/{id}/backlinks", h.Backlinks)

	// Generated views.
	r.Get("/views/alphabetical", h.Alphabetical)
	r.Get("/views/tags", h.Tags)
	r.Get("/views/chronological", h.Chronological)
	r.Get("/views/search", h.SearchDocs)

	// Search.
	r.Get("/search", h.Search)

	// Graph.
	r.Get("/graph", h.Graph)

	// Completions.
	r.Get("/completions", h.Completions)

	// Link validation.
	r.Get("/validate", h.Validate)

	// Rebuild trigger.
	r.Post("/rebuild", h.Rebuild)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
