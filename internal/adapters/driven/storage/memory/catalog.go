// Package memory provides in-memory implementations of the driven
// storage ports, used by service tests and as a lightweight fallback.
package memory

import (
	"context"
	"sync"

	"github.com/scandex-labs/scandex-cli/internal/core/domain"
	"github.com/scandex-labs/scandex-cli/internal/core/ports/driven"
)

// Ensure Catalog implements the interface.
var _ driven.Catalog = (*Catalog)(nil)

// Catalog is an in-memory implementation of driven.Catalog.
type Catalog struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
	texts     map[string]domain.DocumentText
}

// NewCatalog creates a new in-memory catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		documents: make(map[string]domain.Document),
		texts:     make(map[string]domain.DocumentText),
	}
}

// SaveDocument stores or updates a document's metadata.
func (c *Catalog) SaveDocument(_ context.Context, doc *domain.Document) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.documents[doc.ID] = *doc
	return nil
}

// GetDocument retrieves a document by ID.
func (c *Catalog) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	doc, ok := c.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// ListDocuments returns all catalogued documents.
func (c *Catalog) ListDocuments(_ context.Context) ([]domain.Document, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	docs := make([]domain.Document, 0, len(c.documents))
	for _, doc := range c.documents {
		docs = append(docs, doc)
	}
	return docs, nil
}

// ListDocumentIDs returns the ids of all catalogued documents.
func (c *Catalog) ListDocumentIDs(_ context.Context) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]string, 0, len(c.documents))
	for id := range c.documents {
		ids = append(ids, id)
	}
	return ids, nil
}

// DeleteDocument removes a document and its extracted text.
func (c *Catalog) DeleteDocument(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.documents, id)
	delete(c.texts, id)
	return nil
}

// PutDocumentText stores the extraction artifact for a document.
func (c *Catalog) PutDocumentText(_ context.Context, text *domain.DocumentText) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	stored := domain.DocumentText{
		DocumentID: text.DocumentID,
		Pages:      append([]domain.PageText(nil), text.Pages...),
		FullText:   text.FullText,
	}
	c.texts[text.DocumentID] = stored
	return nil
}

// GetDocumentText retrieves the extraction artifact for a document.
func (c *Catalog) GetDocumentText(_ context.Context, documentID string) (*domain.DocumentText, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	text, ok := c.texts[documentID]
	if !ok {
		if _, exists := c.documents[documentID]; exists {
			// Catalogued but nothing extracted yet: empty artifact.
			return &domain.DocumentText{DocumentID: documentID}, nil
		}
		return nil, domain.ErrNotFound
	}
	copied := domain.DocumentText{
		DocumentID: text.DocumentID,
		Pages:      append([]domain.PageText(nil), text.Pages...),
		FullText:   text.FullText,
	}
	return &copied, nil
}
