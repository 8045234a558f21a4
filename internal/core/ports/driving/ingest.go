package driving

import (
	"context"

	"github.com/scandex-labs/scandex-cli/internal/core/domain"
)

// IngestService runs the one-shot extraction pipeline for a document.
type IngestService interface {
	// Ingest stores the raw bytes, extracts per-page text (falling back
	// to OCR for pages without a text layer), and writes the catalog
	// entry. Returns domain.ErrMalformedDocument on unparsable input;
	// in that case nothing is written.
	Ingest(ctx context.Context, data []byte, name string) (*domain.Document, error)

	// Reingest re-runs the pipeline over a document's stored bytes,
	// replacing its extraction artifact. At most one ingestion may be
	// in flight per document id; a concurrent call returns
	// domain.ErrIngestInProgress.
	Reingest(ctx context.Context, documentID string) error
}
