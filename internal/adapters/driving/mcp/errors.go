// Package mcp provides an MCP (Model Context Protocol) server adapter for
// Scandex. It enables AI assistants like Claude to search and read the
// locally ingested document catalog.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")
