package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starward/gwiki/internal/apperr"
	"github.com/starward/gwiki/internal/wikiservice"
)

// RebuildFunc triggers one full rebuild pass.
type RebuildFunc func() error

// Handler holds API route handlers.
type Handler struct {
	svc     *wikiservice.Service
	rebuild RebuildFunc
}

// NewHandler creates a new Handler. rebuild may be nil, in which case the
// rebuild endpoint calls the service directly.
func NewHandler(svc *wikiservice.Service, rebuild RebuildFunc) *Handler {
	return &Handler{svc: svc, rebuild: rebuild}
}

// writeErr maps domain errors to HTTP responses.
func writeErr(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrNotBuilt):
		writeJSON(w, http.StatusServiceUnavailable, errorBody("index not built yet"))
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// ListDocuments handles GET /api/documents.
//
//	@Summary		List all indexed documents
//	@Tags			documents
//	@Produce		json
//	@Param			tag	query		string	false	"Filter by tag"
//	@Success		200	{object}	DocumentListResponse
//	@Security		BearerAuth
//	@Router			/documents [get]
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.svc.List(r.Context())
	if err != nil {
		writeErr(w, "list documents", err)
		return
	}
	if tag := r.URL.Query().Get("tag"); tag != "" {
		filtered := docs[:0:0]
		for _, d := range docs {
			for _, t := range d.Tags {
				if t == tag {
					filtered = append(filtered, d)
					break
				}
			}
		}
		docs = filtered
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"documents": docs,
		"total":     len(docs),
	})
}

// GetDocument handles GET /api/documents/{id}.
//
//	@Summary		Get a single document by id
//	@Tags			documents
//	@Produce		json
//	@Param			id	path		string	true	"Document id"
//	@Success		200	{object}	DocumentDetail
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents/{id} [get]
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("id is required"))
		return
	}
	doc, err := h.svc.Document(r.Context(), id)
	if err != nil {
		writeErr(w, "get document", err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// Backlinks handles GET /api/documents/{id}/backlinks.
//
//	@Summary		List documents referencing the given id
//	@Tags			documents
//	@Produce		json
//	@Param			id	path		string	true	"Document id"
//	@Success		200	{object}	BacklinksResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents/{id}/backlinks [get]
func (h *Handler) Backlinks(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("id is required"))
		return
	}
	bl, err := h.svc.Backlinks(r.Context(), id)
	if err != nil {
		writeErr(w, "backlinks", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"target":    id,
		"backlinks": bl,
	})
}

// Alphabetical handles GET /api/views/alphabetical.
//
//	@Summary		Documents grouped by first letter of title
//	@Tags			views
//	@Produce		json
//	@Success		200	{object}	AlphabeticalResponse
//	@Security		BearerAuth
//	@Router			/views/alphabetical [get]
func (h *Handler) Alphabetical(w http.ResponseWriter, r *http.Request) {
	groups, err := h.svc.Alphabetical(r.Context())
	if err != nil {
		writeErr(w, "alphabetical view", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"groups": groups})
}

// Tags handles GET /api/views/tags.
//
//	@Summary		Documents grouped by tag
//	@Tags			views
//	@Produce		json
//	@Success		200	{object}	TagsResponse
//	@Security		BearerAuth
//	@Router			/views/tags [get]
func (h *Handler) Tags(w http.ResponseWriter, r *http.Request) {
	groups, err := h.svc.ByTag(r.Context())
	if err != nil {
		writeErr(w, "tags view", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"groups": groups})
}

// Chronological handles GET /api/views/chronological.
//
//	@Summary		Documents grouped by creation year, newest first
//	@Tags			views
//	@Produce		json
//	@Success		200	{object}	ChronologicalResponse
//	@Security		BearerAuth
//	@Router			/views/chronological [get]
func (h *Handler) Chronological(w http.ResponseWriter, r *http.Request) {
	groups, err := h.svc.Chronological(r.Context())
	if err != nil {
		writeErr(w, "chronological view", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"groups": groups})
}

// SearchDocs handles GET /api/views/search.
//
//	@Summary		Flattened search records with optional substring filter
//	@Tags			views
//	@Produce		json
//	@Param			q	query		string	false	"Filter on title, tags and summary"
//	@Success		200	{object}	SearchDocsResponse
//	@Security		BearerAuth
//	@Router			/views/search [get]
func (h *Handler) SearchDocs(w http.ResponseWriter, r *http.Request) {
	docs, err := h.svc.SearchDocs(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeErr(w, "search docs view", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across document bodies
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		writeErr(w, "search", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

// Graph handles GET /api/graph.
//
//	@Summary		Get the link graph
//	@Tags			graph
//	@Produce		json
//	@Success		200	{object}	GraphResponse
//	@Security		BearerAuth
//	@Router			/graph [get]
func (h *Handler) Graph(w http.ResponseWriter, r *http.Request) {
	recs, edges, err := h.svc.Graph(r.Context())
	if err != nil {
		writeErr(w, "graph", err)
		return
	}
	nodes := make([]GraphNode, 0, len(recs))
	for _, rec := range recs {
		nodes = append(nodes, GraphNode{ID: rec.ID, Title: rec.Title, Type: rec.Type})
	}
	links := make([]GraphLink, 0, len(edges))
	for _, e := range edges {
		links = append(links, GraphLink{Source: e.Source, Target: e.Target})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"nodes": nodes,
		"links": links,
	})
}

// Completions handles GET /api/completions.
//
//	@Summary		Ranked reference completion candidates
//	@Tags			completions
//	@Produce		json
//	@Param			q	query		string	false	"Partial reference"
//	@Success		200	{object}	CompletionsResponse
//	@Security		BearerAuth
//	@Router			/completions [get]
func (h *Handler) Completions(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.Complete(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeErr(w, "completions", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"completions": entries})
}

// Validate handles GET /api/validate.
//
//	@Summary		Broken-reference reports for the current model
//	@Tags			validate
//	@Produce		json
//	@Success		200	{object}	ValidateResponse
//	@Security		BearerAuth
//	@Router			/validate [get]
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	reports, err := h.svc.Validate(r.Context())
	if err != nil {
		writeErr(w, "validate", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"broken":  reports,
		"summary": fmt.Sprintf("%d broken link(s)", len(reports)),
	})
}

// Rebuild handles POST /api/rebuild.
//
//	@Summary		Trigger a full rebuild pass
//	@Tags			build
//	@Produce		json
//	@Success		202	"Rebuild completed"
//	@Security		BearerAuth
//	@Router			/rebuild [post]
func (h *Handler) Rebuild(w http.ResponseWriter, r *http.Request) {
	run := h.rebuild
	if run == nil {
		run = func() error { return h.svc.Rebuild(r.Context()) }
	}
	if err := run(); err != nil {
		writeErr(w, "rebuild", err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
