package services

import (
	"context"
	"fmt"

	"github.com/scandex-labs/scandex-cli/internal/core/domain"
	"github.com/scandex-labs/scandex-cli/internal/core/ports/driven"
	"github.com/scandex-labs/scandex-cli/internal/core/ports/driving"
	"github.com/scandex-labs/scandex-cli/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService provides read access to catalogued documents and
// their stored page text.
type DocumentService struct {
	catalog driven.Catalog
	blobs   driven.BlobStore
}

// NewDocumentService creates a new document service.
func NewDocumentService(catalog driven.Catalog, blobs driven.BlobStore) *DocumentService {
	return &DocumentService{catalog: catalog, blobs: blobs}
}

// List returns all catalogued documents.
func (s *DocumentService) List(ctx context.Context) ([]domain.Document, error) {
	return s.catalog.ListDocuments(ctx)
}

// Get retrieves a document's metadata by ID.
func (s *DocumentService) Get(ctx context.Context, documentID string) (*domain.Document, error) {
	return s.catalog.GetDocument(ctx, documentID)
}

// PageText returns the stored text of one 1-based page.
func (s *DocumentService) PageText(ctx context.Context, documentID string, pageNumber int) (string, error) {
	if pageNumber < 1 {
		return "", fmt.Errorf("%w: page number %d", domain.ErrInvalidInput, pageNumber)
	}

	text, err := s.catalog.GetDocumentText(ctx, documentID)
	if err != nil {
		return "", fmt.Errorf("get document text: %w", err)
	}

	page, ok := text.Page(pageNumber)
	if !ok {
		return "", fmt.Errorf("page %d of document %s: %w", pageNumber, documentID, domain.ErrNotFound)
	}
	return page.Text, nil
}

// Delete removes a document, its extracted text, and its stored bytes.
func (s *DocumentService) Delete(ctx context.Context, documentID string) error {
	doc, err := s.catalog.GetDocument(ctx, documentID)
	if err != nil {
		return fmt.Errorf("get document: %w", err)
	}

	if err := s.catalog.DeleteDocument(ctx, documentID); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	// The catalog entry is gone; a stale blob is only wasted space.
	if err := s.blobs.Delete(ctx, doc.StorageRef); err != nil {
		logger.Warn("Blob delete for %s failed: %v", doc.StorageRef, err)
	}

	return nil
}
