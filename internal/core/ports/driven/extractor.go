package driven

import "context"

// TextExtractor pulls per-page plain text out of a PDF's embedded text
// layer. It never renders or runs OCR.
type TextExtractor interface {
	// Extract returns one string per physical page, in page order.
	// A page with no embedded text layer yields an empty string; that is
	// the signal (not an error) that the page needs the OCR fallback.
	// Returns domain.ErrMalformedDocument when the bytes cannot be parsed
	// as a PDF container at all.
	Extract(ctx context.Context, data []byte) ([]string, error)
}

// PageRenderer rasterizes a single PDF page for the OCR fallback.
type PageRenderer interface {
	// Render returns a PNG-encoded image of the given 1-based page.
	Render(ctx context.Context, data []byte, pageNumber int) ([]byte, error)
}
