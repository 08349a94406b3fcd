// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes GWiki tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starward/gwiki/internal/validator"
	"github.com/starward/gwiki/internal/wikiservice"
)

// Server wraps the MCP server with GWiki tools.
type Server struct {
	mcp *server.MCPServer
	svc *wikiservice.Service
}

// New creates a new MCP server with all GWiki tools registered.
func New(svc *wikiservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"GWiki",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_documents",
		mcp.WithDescription("Full-text search through document bodies, titles and tags."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchDocuments)

	s.mcp.AddTool(mcp.NewTool("read_document",
		mcp.WithDescription("Read a document: its metadata, source content, backlinks and outgoing links."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Document identifier (file name stem, e.g. hashlife)")),
	), s.readDocument)

	s.mcp.AddTool(mcp.NewTool("list_documents",
		mcp.WithDescription("List all indexed documents with their titles, types and tags."),
		mcp.WithString("tag", mcp.Description("Optional tag to filter by")),
	), s.listDocuments)

	s.mcp.AddTool(mcp.NewTool("get_backlinks",
		mcp.WithDescription("Find all documents that reference the specified document."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Identifier of the document to find backlinks for")),
	), s.getBacklinks)

	s.mcp.AddTool(mcp.NewTool("validate_links",
		mcp.WithDescription("Report every reference whose target does not resolve to a known document."),
	), s.validateLinks)

	s.mcp.AddTool(mcp.NewTool("complete_reference",
		mcp.WithDescription("Suggest completion candidates for a partial reference, most recently modified first."),
		mcp.WithString("partial", mcp.Required(), mcp.Description("Partial identifier, title or alias")),
	), s.completeReference)

	s.mcp.AddTool(mcp.NewTool("get_note_contract",
		mcp.WithDescription("Returns the canonical GWiki source format contract. "+
			"Call this before writing source files to ensure correct structure."),
	), s.getNoteContract)

	// Resource: source format contract.
	s.mcp.AddResource(
		mcp.NewResource("gwiki://note-format", "Source Format Contract",
			mcp.WithResourceDescription("Canonical GWiki source format that all documents must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readNoteFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) searchDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := s.svc.Document(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	out, _ := json.MarshalIndent(doc, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tag := ""
	if v, err := req.RequireString("tag"); err == nil {
		tag = v
	}

	docs, err := s.svc.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var lines []string
	for _, d := range docs {
		if tag != "" && !contains(d.Tags, tag) {
			continue
		}
		line := fmt.Sprintf("%s\t%s\t%s", d.ID, d.Type, d.Title)
		if len(d.Tags) > 0 {
			line += "\t[" + strings.Join(d.Tags, ", ") + "]"
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return mcp.NewToolResultText("no documents"), nil
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) getBacklinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	bl, err := s.svc.Backlinks(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(bl) == 0 {
		return mcp.NewToolResultText("no backlinks found"), nil
	}
	return mcp.NewToolResultText(strings.Join(bl, "\n")), nil
}

func (s *Server) validateLinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	reports, err := s.svc.Validate(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text := validator.Render(reports)
	if text == "" {
		text = "no broken links"
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) completeReference(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	partial, err := req.RequireString("partial")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	entries, err := s.svc.Complete(ctx, partial)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(entries, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getNoteContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(SourceFormatContract), nil
}

func (s *Server) readNoteFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "gwiki://note-format",
			MIMEType: "text/markdown",
			Text:     SourceFormatContract,
		},
	}, nil
}

func contains(ss []string, want string) bool {
	for _, s := range ss {
		if s == want {
			return true
		}
	}
	return false
}
