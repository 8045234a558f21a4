package driven

import (
	"context"

	"github.com/scandex-labs/scandex-cli/internal/core/domain"
)

// Catalog persists document metadata and the per-page extraction artifact.
// Backed by SQLite for metadata storage.
type Catalog interface {
	// SaveDocument stores or updates a document's metadata.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument retrieves a document by ID.
	// Returns domain.ErrNotFound when the id is unknown.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// ListDocuments returns all catalogued documents.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// ListDocumentIDs returns the ids of all catalogued documents.
	// Used by corpus-scoped searches.
	ListDocumentIDs(ctx context.Context) ([]string, error)

	// DeleteDocument removes a document and its extracted text.
	DeleteDocument(ctx context.Context, id string) error

	// PutDocumentText stores the extraction artifact for a document.
	// Called exactly once per pipeline run, after assembly completes.
	// The write is atomic: either every page lands or none does.
	PutDocumentText(ctx context.Context, text *domain.DocumentText) error

	// GetDocumentText retrieves the extraction artifact for a document.
	// A catalogued document with no extracted pages yields an empty
	// artifact; domain.ErrNotFound means the id is unknown.
	GetDocumentText(ctx context.Context, documentID string) (*domain.DocumentText, error)
}
