package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scandex-labs/scandex-cli/internal/core/domain"
)

func TestDocumentCmd_Use(t *testing.T) {
	assert.Equal(t, "document", documentCmd.Use)
}

func TestDocumentListCmd_Empty(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	out, err := executeCommand("document", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "No documents ingested yet.")
}

func TestDocumentListCmd_ListsDocuments(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()
	seedSearchable(t, "doc-1", "report.pdf", "some text")

	out, err := executeCommand("document", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "doc-1")
	assert.Contains(t, out, "report.pdf")
	assert.Contains(t, out, "Total: 1 documents")
}

func TestDocumentListCmd_JSON(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()
	seedSearchable(t, "doc-1", "report.pdf", "some text")

	out, err := executeCommand("document", "list", "--json")

	require.NoError(t, err)
	assert.Contains(t, out, `"ID": "doc-1"`)
}

func TestDocumentGetCmd_ShowsDocument(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()
	seedSearchable(t, "doc-1", "report.pdf", "some text")

	out, err := executeCommand("document", "get", "doc-1")

	require.NoError(t, err)
	assert.Contains(t, out, "Document: doc-1")
	assert.Contains(t, out, "report.pdf")
}

func TestDocumentGetCmd_Unknown(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	_, err := executeCommand("document", "get", "missing")
	assert.Error(t, err)
}

func TestDocumentTextCmd_PrintsPage(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()
	seedSearchable(t, "doc-1", "report.pdf", "page one content")

	out, err := executeCommand("document", "text", "doc-1", "1")

	require.NoError(t, err)
	assert.Contains(t, out, "page one content")
}

func TestDocumentTextCmd_BadPageNumber(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()
	seedSearchable(t, "doc-1", "report.pdf", "text")

	_, err := executeCommand("document", "text", "doc-1", "two")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid page number")
}

func TestDocumentDeleteCmd_DeletesDocument(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()
	seedSearchable(t, "doc-1", "report.pdf", "text")

	out, err := executeCommand("document", "delete", "doc-1")

	require.NoError(t, err)
	assert.Contains(t, out, "deleted")

	_, err = testCatalog.GetDocument(context.Background(), "doc-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
