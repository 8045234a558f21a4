package mcp

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scandex-labs/scandex-cli/internal/core/domain"
)

func TestServer_handleSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("returns search results", func(t *testing.T) {
		mockSearch := &mockSearchService{
			results: []domain.SearchResult{
				{
					DocumentID:   "doc-1",
					DocumentName: "report.pdf",
					PageNumber:   3,
					Snippet:      "...matched text...",
					Relevance:    2,
				},
			},
		}

		ports := &Ports{Search: mockSearch}
		server, err := NewServer(ports)
		require.NoError(t, err)

		input := SearchInput{Query: "matched", Limit: 10}
		_, output, err := server.handleSearch(ctx, nil, input)

		require.NoError(t, err)
		assert.Equal(t, 1, output.Count)
		require.Len(t, output.Results, 1)
		assert.Equal(t, "doc-1", output.Results[0].DocumentID)
		assert.Equal(t, "report.pdf", output.Results[0].DocumentName)
		assert.Equal(t, 3, output.Results[0].PageNumber)
		assert.Equal(t, "...matched text...", output.Results[0].Snippet)
		assert.Equal(t, 2.0, output.Results[0].Relevance)
	})

	t.Run("mode defaults to exact", func(t *testing.T) {
		mockSearch := &mockSearchService{}
		server, err := NewServer(&Ports{Search: mockSearch})
		require.NoError(t, err)

		_, _, err = server.handleSearch(ctx, nil, SearchInput{Query: "q"})
		require.NoError(t, err)
		assert.Equal(t, domain.MatchExact, mockSearch.lastMode)
		assert.True(t, mockSearch.lastScope.IsCorpus())
	})

	t.Run("document scope is forwarded", func(t *testing.T) {
		mockSearch := &mockSearchService{}
		server, err := NewServer(&Ports{Search: mockSearch})
		require.NoError(t, err)

		input := SearchInput{Query: "q", Mode: "fuzzy", DocumentID: "doc-7"}
		_, _, err = server.handleSearch(ctx, nil, input)
		require.NoError(t, err)
		assert.Equal(t, domain.MatchFuzzy, mockSearch.lastMode)
		assert.Equal(t, "doc-7", mockSearch.lastScope.DocumentID)
	})

	t.Run("invalid mode returns error", func(t *testing.T) {
		server, err := NewServer(&Ports{Search: &mockSearchService{}})
		require.NoError(t, err)

		_, _, err = server.handleSearch(ctx, nil, SearchInput{Query: "q", Mode: "regex"})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("limit truncates results", func(t *testing.T) {
		results := make([]domain.SearchResult, 5)
		for i := range results {
			results[i] = domain.SearchResult{DocumentID: "doc-1", PageNumber: i + 1}
		}
		server, err := NewServer(&Ports{Search: &mockSearchService{results: results}})
		require.NoError(t, err)

		_, output, err := server.handleSearch(ctx, nil, SearchInput{Query: "q", Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, 2, output.Count)
	})

	t.Run("returns error on search failure", func(t *testing.T) {
		mockSearch := &mockSearchService{
			err: errors.New("search failed"),
		}

		server, err := NewServer(&Ports{Search: mockSearch})
		require.NoError(t, err)

		_, _, err = server.handleSearch(ctx, nil, SearchInput{Query: "q"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "search failed")
	})
}

func TestServer_handleIngest(t *testing.T) {
	ctx := context.Background()

	t.Run("ingests the file at the given path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "report.pdf")
		require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 fake"), 0o644))

		ingest := &mockIngestService{
			document: &domain.Document{ID: "doc-1", Name: "report.pdf", PageCount: 4},
		}
		server, err := NewServer(&Ports{Search: &mockSearchService{}, Ingest: ingest})
		require.NoError(t, err)

		_, output, err := server.handleIngest(ctx, nil, IngestInput{Path: path})
		require.NoError(t, err)
		assert.Equal(t, "doc-1", output.DocumentID)
		assert.Equal(t, "report.pdf", output.Name)
		assert.Equal(t, 4, output.Pages)
		assert.Equal(t, "report.pdf", ingest.lastName)
		assert.Equal(t, []byte("%PDF-1.4 fake"), ingest.lastData)
	})

	t.Run("missing file returns error", func(t *testing.T) {
		server, err := NewServer(&Ports{Search: &mockSearchService{}, Ingest: &mockIngestService{}})
		require.NoError(t, err)

		_, _, err = server.handleIngest(ctx, nil, IngestInput{Path: filepath.Join(t.TempDir(), "nope.pdf")})
		assert.Error(t, err)
	})

	t.Run("ingest failure is forwarded", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "broken.pdf")
		require.NoError(t, os.WriteFile(path, []byte("not a pdf"), 0o644))

		ingest := &mockIngestService{err: domain.ErrMalformedDocument}
		server, err := NewServer(&Ports{Search: &mockSearchService{}, Ingest: ingest})
		require.NoError(t, err)

		_, _, err = server.handleIngest(ctx, nil, IngestInput{Path: path})
		assert.ErrorIs(t, err, domain.ErrMalformedDocument)
	})

	t.Run("missing ingest service returns error", func(t *testing.T) {
		server, err := NewServer(&Ports{Search: &mockSearchService{}})
		require.NoError(t, err)

		_, _, err = server.handleIngest(ctx, nil, IngestInput{Path: "any.pdf"})
		assert.Error(t, err)
	})
}

func TestServer_handlePageText(t *testing.T) {
	ctx := context.Background()

	t.Run("returns page text", func(t *testing.T) {
		docs := &mockDocumentService{
			pageTexts: map[int]string{2: "page two text"},
		}
		server, err := NewServer(&Ports{Search: &mockSearchService{}, Document: docs})
		require.NoError(t, err)

		_, output, err := server.handlePageText(ctx, nil, PageTextInput{DocumentID: "doc-1", Page: 2})
		require.NoError(t, err)
		assert.Equal(t, "doc-1", output.DocumentID)
		assert.Equal(t, 2, output.Page)
		assert.Equal(t, "page two text", output.Text)
	})

	t.Run("unknown page returns error", func(t *testing.T) {
		docs := &mockDocumentService{pageTexts: map[int]string{}}
		server, err := NewServer(&Ports{Search: &mockSearchService{}, Document: docs})
		require.NoError(t, err)

		_, _, err = server.handlePageText(ctx, nil, PageTextInput{DocumentID: "doc-1", Page: 9})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("missing document service returns error", func(t *testing.T) {
		server, err := NewServer(&Ports{Search: &mockSearchService{}})
		require.NoError(t, err)

		_, _, err = server.handlePageText(ctx, nil, PageTextInput{DocumentID: "doc-1", Page: 1})
		assert.Error(t, err)
	})
}
