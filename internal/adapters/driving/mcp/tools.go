package mcp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/scandex-labs/scandex-cli/internal/core/domain"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query      string `json:"query" jsonschema:"the search query to find in document text"`
	Mode       string `json:"mode,omitempty" jsonschema:"match mode: exact (default) or fuzzy"`
	DocumentID string `json:"document_id,omitempty" jsonschema:"restrict the search to one document"`
	Limit      int    `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 10)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	DocumentID   string  `json:"document_id"`
	DocumentName string  `json:"document_name"`
	PageNumber   int     `json:"page_number"`
	Snippet      string  `json:"snippet,omitempty"`
	Relevance    float64 `json:"relevance"`
}

// IngestInput is the input schema for the ingest_file tool.
type IngestInput struct {
	Path string `json:"path" jsonschema:"path to a PDF file on the machine running the server"`
}

// IngestOutput is the output schema for the ingest_file tool.
type IngestOutput struct {
	DocumentID string `json:"document_id"`
	Name       string `json:"name"`
	Pages      int    `json:"pages"`
}

// PageTextInput is the input schema for the get_page_text tool.
type PageTextInput struct {
	DocumentID string `json:"document_id" jsonschema:"the document to read"`
	Page       int    `json:"page" jsonschema:"the 1-based page number"`
}

// PageTextOutput is the output schema for the get_page_text tool.
type PageTextOutput struct {
	DocumentID string `json:"document_id"`
	Page       int    `json:"page"`
	Text       string `json:"text"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Search the extracted text of all ingested documents",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ingest_file",
		Description: "Ingest a PDF file into the document catalog",
	}, s.handleIngest)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_page_text",
		Description: "Read the extracted text of one page of an ingested document",
	}, s.handlePageText)
}

// handleIngest handles the ingest_file tool invocation.
func (s *Server) handleIngest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	if s.ports.Ingest == nil {
		return nil, IngestOutput{}, errors.New("ingest service not available")
	}

	data, err := os.ReadFile(input.Path)
	if err != nil {
		return nil, IngestOutput{}, fmt.Errorf("reading file: %w", err)
	}

	doc, err := s.ports.Ingest.Ingest(ctx, data, filepath.Base(input.Path))
	if err != nil {
		return nil, IngestOutput{}, err
	}

	return nil, IngestOutput{
		DocumentID: doc.ID,
		Name:       doc.Name,
		Pages:      doc.PageCount,
	}, nil
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	mode, err := domain.ParseMatchMode(input.Mode)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	scope := domain.ScopeCorpus()
	if input.DocumentID != "" {
		scope = domain.ScopeDocument(input.DocumentID)
	}

	results, err := s.ports.Search.Search(ctx, input.Query, mode, scope)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	limit := input.Limit
	if limit <= 0 {
		limit = 10
	}
	if len(results) > limit {
		results = results[:limit]
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}

	for i := range results {
		output.Results[i] = SearchResultOutput{
			DocumentID:   results[i].DocumentID,
			DocumentName: results[i].DocumentName,
			PageNumber:   results[i].PageNumber,
			Snippet:      results[i].Snippet,
			Relevance:    results[i].Relevance,
		}
	}

	return nil, output, nil
}

// handlePageText handles the get_page_text tool invocation.
func (s *Server) handlePageText(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input PageTextInput,
) (*mcp.CallToolResult, PageTextOutput, error) {
	if s.ports.Document == nil {
		return nil, PageTextOutput{}, errors.New("document service not available")
	}

	text, err := s.ports.Document.PageText(ctx, input.DocumentID, input.Page)
	if err != nil {
		return nil, PageTextOutput{}, err
	}

	return nil, PageTextOutput{
		DocumentID: input.DocumentID,
		Page:       input.Page,
		Text:       text,
	}, nil
}
