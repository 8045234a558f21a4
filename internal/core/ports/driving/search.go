package driving

import (
	"context"

	"github.com/scandex-labs/scandex-cli/internal/core/domain"
)

// SearchService answers full-text queries over ingested documents.
type SearchService interface {
	// Search scans the stored page text of every document in scope and
	// returns ranked, page-located results: relevance descending, ties
	// broken by (documentID, pageNumber, offset) ascending. Zero matches
	// yield an empty slice, not an error.
	// Returns domain.ErrInvalidQuery for a blank query and
	// domain.ErrNotFound when the scope names an unknown document.
	Search(ctx context.Context, query string, mode domain.MatchMode, scope domain.Scope) ([]domain.SearchResult, error)
}
