package driving

import (
	"context"

	"github.com/scandex-labs/scandex-cli/internal/core/domain"
)

// DocumentService provides read access to catalogued documents.
type DocumentService interface {
	// List returns all catalogued documents.
	List(ctx context.Context) ([]domain.Document, error)

	// Get retrieves a document's metadata by ID.
	Get(ctx context.Context, documentID string) (*domain.Document, error)

	// PageText returns the stored text of one 1-based page, for a caller
	// that wants to highlight a specific result.
	PageText(ctx context.Context, documentID string, pageNumber int) (string, error)

	// Delete removes a document, its extracted text, and its stored bytes.
	Delete(ctx context.Context, documentID string) error
}
