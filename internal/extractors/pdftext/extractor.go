// Package pdftext extracts per-page plain text from a PDF's embedded
// text layer. It never renders pages or runs OCR; a page without a text
// layer simply yields an empty string, which is the caller's signal to
// fall back to OCR for that page.
package pdftext

import (
	"bytes"
	"context"
	"fmt"

	"github.com/ledongthuc/pdf"

	"github.com/scandex-labs/scandex-cli/internal/core/domain"
	"github.com/scandex-labs/scandex-cli/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// pdfMagic is the header every parsable PDF container starts with.
const pdfMagic = "%PDF-"

// Extractor reads the embedded text layer using the pure-Go pdf library.
// Extraction is a pure function of the input bytes: identical bytes
// always produce identical page sequences.
type Extractor struct{}

// New creates a new text-layer extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract returns one string per physical page, in page order.
func (e *Extractor) Extract(ctx context.Context, data []byte) ([]string, error) {
	if len(data) == 0 || !bytes.HasPrefix(data, []byte(pdfMagic)) {
		return nil, domain.ErrMalformedDocument
	}

	reader, err := newReader(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedDocument, err)
	}

	total := numPages(reader)
	if total < 0 {
		return nil, fmt.Errorf("%w: unreadable page tree", domain.ErrMalformedDocument)
	}

	pages := make([]string, 0, total)
	for i := 1; i <= total; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		pages = append(pages, pageText(reader, i))
	}
	return pages, nil
}

// newReader opens the PDF container. The library may panic on malformed
// cross-reference tables, so the panic is converted into a parse error.
func newReader(data []byte) (r *pdf.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r = nil
			err = fmt.Errorf("parse pdf: %v", rec)
		}
	}()
	return pdf.NewReader(bytes.NewReader(data), int64(len(data)))
}

// numPages returns the physical page count, or -1 when the page tree is
// unreadable.
func numPages(reader *pdf.Reader) (n int) {
	defer func() {
		if rec := recover(); rec != nil {
			n = -1
		}
	}()
	return reader.NumPage()
}

// pageText returns the embedded text of one page. Page-local failures
// yield an empty string: a page whose content streams cannot be decoded
// is indistinguishable from one with no text layer, and both route to
// the OCR fallback.
func pageText(reader *pdf.Reader, pageNumber int) (text string) {
	defer func() {
		if rec := recover(); rec != nil {
			text = ""
		}
	}()

	page := reader.Page(pageNumber)
	if page.V.IsNull() {
		return ""
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return text
}
