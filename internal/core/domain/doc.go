// Package domain defines the core business entities for Scandex.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An ingested PDF with metadata
//   - PageText: The extracted text of a single page
//   - DocumentText: The per-page extraction artifact written at ingestion
//   - SearchResult: A ranked, page-located match
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
