package mcp

import (
	"github.com/scandex-labs/scandex-cli/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search provides full-text search over ingested documents.
	Search driving.SearchService

	// Ingest runs the extraction pipeline for new documents.
	Ingest driving.IngestService

	// Document provides read access to the catalog.
	Document driving.DocumentService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	// Ingest and Document are optional; the matching tools and
	// resources degrade when they are absent.
	return nil
}
