package domain

import (
	"fmt"
	"strings"
)

// MatchMode selects how a query is matched against page text.
type MatchMode string

const (
	// MatchExact matches the query as a case-insensitive literal substring.
	MatchExact MatchMode = "exact"

	// MatchFuzzy treats the query as a pattern: case-insensitive and
	// whitespace-insensitive, so the query tokens may match across word
	// boundaries and line breaks.
	MatchFuzzy MatchMode = "fuzzy"
)

// ParseMatchMode converts a user-supplied string into a MatchMode.
func ParseMatchMode(s string) (MatchMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(MatchExact):
		return MatchExact, nil
	case string(MatchFuzzy):
		return MatchFuzzy, nil
	default:
		return "", fmt.Errorf("%w: unknown match mode %q", ErrInvalidInput, s)
	}
}

// Scope is the search target: a single document or the whole corpus.
// The zero value means the whole corpus.
type Scope struct {
	// DocumentID restricts the search to one document when non-empty.
	DocumentID string
}

// ScopeDocument returns a scope targeting a single document.
func ScopeDocument(documentID string) Scope {
	return Scope{DocumentID: documentID}
}

// ScopeCorpus returns a scope targeting every ingested document.
func ScopeCorpus() Scope {
	return Scope{}
}

// IsCorpus reports whether the scope covers the whole corpus.
func (s Scope) IsCorpus() bool {
	return s.DocumentID == ""
}

// Position is an approximate on-page location for highlight overlays.
// It is derived from the character offset using a fixed layout heuristic,
// not from real PDF glyph coordinates. The only guarantee is monotonicity:
// within one page, a larger offset never maps before a smaller one.
type Position struct {
	// X is the approximate horizontal position in points.
	X float64

	// Y is the approximate vertical position in points.
	Y float64
}

// SearchResult is one query-time match. Results are ephemeral and never
// persisted.
type SearchResult struct {
	// DocumentID identifies the matched document.
	DocumentID string

	// DocumentName is the document's original filename.
	DocumentName string

	// PageNumber is the 1-based page the match occurred on.
	PageNumber int

	// Snippet is a bounded excerpt of page text surrounding the match.
	Snippet string

	// Offset is the character offset of the match start within the page text.
	Offset int

	// Relevance is a non-negative score; higher is better.
	Relevance float64

	// Position is the approximate on-page location, nil when unavailable.
	Position *Position
}
