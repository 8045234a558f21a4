package mcp

import (
	"context"

	"github.com/scandex-labs/scandex-cli/internal/core/domain"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	results []domain.SearchResult
	err     error

	lastQuery string
	lastMode  domain.MatchMode
	lastScope domain.Scope
}

func (m *mockSearchService) Search(
	_ context.Context,
	query string,
	mode domain.MatchMode,
	scope domain.Scope,
) ([]domain.SearchResult, error) {
	m.lastQuery = query
	m.lastMode = mode
	m.lastScope = scope
	return m.results, m.err
}

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	document *domain.Document
	err      error

	lastData []byte
	lastName string
}

func (m *mockIngestService) Ingest(_ context.Context, data []byte, name string) (*domain.Document, error) {
	m.lastData = data
	m.lastName = name
	return m.document, m.err
}

func (m *mockIngestService) Reingest(_ context.Context, _ string) error {
	return m.err
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []domain.Document
	document  *domain.Document
	pageTexts map[int]string
	err       error
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockDocumentService) Get(_ context.Context, _ string) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockDocumentService) PageText(_ context.Context, _ string, page int) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	text, ok := m.pageTexts[page]
	if !ok {
		return "", domain.ErrNotFound
	}
	return text, nil
}

func (m *mockDocumentService) Delete(_ context.Context, _ string) error {
	return m.err
}
