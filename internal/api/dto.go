package api

import (
	"github.com/starward/gwiki/internal/completion"
	"github.com/starward/gwiki/internal/index"
	"github.com/starward/gwiki/internal/models"
	"github.com/starward/gwiki/internal/validator"
	"github.com/starward/gwiki/internal/views"
	"github.com/starward/gwiki/internal/wikiservice"
)

// DocumentDetail is the full document response type (aliased from the domain layer).
type DocumentDetail = wikiservice.DocumentDetail

// DocumentListResponse wraps document listings.
type DocumentListResponse struct {
	Documents []*models.DocumentRecord `json:"documents" validate:"required"`
	Total     int                      `json:"total" example:"42" validate:"required"`
}

// BacklinksResponse wraps the ids referencing one document.
type BacklinksResponse struct {
	Target    string   `json:"target" example:"hashlife" validate:"required"`
	Backlinks []string `json:"backlinks" validate:"required"`
}

// SearchResponse wraps full-text search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results" validate:"required"`
}

// GraphNode is a node in the link graph.
type GraphNode struct {
	ID    string `json:"id" example:"hashlife" validate:"required"`
	Title string `json:"title,omitempty" example:"Hashlife"`
	Type  string `json:"type,omitempty" example:"wiki"`
}

// GraphLink is an edge in the link graph.
type GraphLink struct {
	Source string `json:"source" example:"gameoflife" validate:"required"`
	Target string `json:"target" example:"hashlife" validate:"required"`
}

// GraphResponse wraps the link graph.
type GraphResponse struct {
	Nodes []GraphNode `json:"nodes" validate:"required"`
	Links []GraphLink `json:"links" validate:"required"`
}

// CompletionsResponse wraps ranked completion candidates.
type CompletionsResponse struct {
	Completions []completion.Entry `json:"completions" validate:"required"`
}

// ValidateResponse wraps the broken-reference reports of the current model.
type ValidateResponse struct {
	Broken  []validator.Report `json:"broken" validate:"required"`
	Summary string             `json:"summary" example:"2 broken link(s)" validate:"required"`
}

// AlphabeticalResponse wraps the first-letter grouped view.
type AlphabeticalResponse struct {
	Groups []views.LetterGroup `json:"groups" validate:"required"`
}

// TagsResponse wraps the tag-grouped view.
type TagsResponse struct {
	Groups []views.TagGroup `json:"groups" validate:"required"`
}

// ChronologicalResponse wraps the creation-date view.
type ChronologicalResponse struct {
	Groups []views.YearGroup `json:"groups" validate:"required"`
}

// SearchDocsResponse wraps the flattened search records.
type SearchDocsResponse struct {
	Documents []views.SearchDoc `json:"documents" validate:"required"`
}
