package domain

import (
	"strings"
	"time"
)

// PageBoundary separates pages in the concatenated full text of a document.
// It matches the form-feed separator PDF text layers conventionally emit
// between pages.
const PageBoundary = "\f"

// Document represents an ingested PDF with its catalog metadata.
// Documents are immutable once ingested; re-ingestion is a new pipeline
// run that replaces the extraction artifact, never an in-place edit.
type Document struct {
	// ID is the unique identifier, assigned at creation.
	ID string

	// Name is the original filename.
	Name string

	// StorageRef is the opaque blob-store handle for the raw bytes.
	StorageRef string

	// PageCount is the physical page count of the PDF.
	PageCount int

	// CreatedAt is when the document was ingested.
	CreatedAt time.Time
}

// TextSource records how a page's text was produced.
type TextSource string

const (
	// TextSourceLayer means the text came from the PDF's embedded text layer.
	TextSourceLayer TextSource = "text_layer"

	// TextSourceOCR means the page had no usable text layer and the text
	// came from optical character recognition of the rendered page.
	TextSourceOCR TextSource = "ocr"

	// TextSourceEmpty means both the text layer and OCR produced nothing.
	// Empty text is a valid terminal state for a page, not an error.
	TextSourceEmpty TextSource = "empty"
)

// PageText is the extracted plain text of a single page.
type PageText struct {
	// PageNumber is 1-based and matches the PDF's physical page order.
	PageNumber int

	// Text is the plain text content. May be empty when extraction and
	// OCR both produced nothing.
	Text string

	// Source records which extraction path produced Text.
	Source TextSource
}

// DocumentText is the per-page extraction artifact produced once at
// ingestion. Search only ever reads this; it never re-extracts.
type DocumentText struct {
	// DocumentID links back to the Document.
	DocumentID string

	// Pages holds one entry per physical page, in page order.
	// No page is skipped even when its text is empty.
	Pages []PageText

	// FullText is all pages joined in order by PageBoundary.
	FullText string
}

// JoinPages builds the concatenated full text from the page sequence.
func JoinPages(pages []PageText) string {
	texts := make([]string, len(pages))
	for i, p := range pages {
		texts[i] = p.Text
	}
	return strings.Join(texts, PageBoundary)
}

// Page returns the text of the given 1-based page, and whether it exists.
func (dt *DocumentText) Page(pageNumber int) (PageText, bool) {
	if pageNumber < 1 || pageNumber > len(dt.Pages) {
		return PageText{}, false
	}
	return dt.Pages[pageNumber-1], true
}

// DegradedPages returns the page numbers that fell back to OCR or ended
// up empty. Used for reporting; a degraded page never fails ingestion.
func (dt *DocumentText) DegradedPages() []int {
	var pages []int
	for _, p := range dt.Pages {
		if p.Source != TextSourceLayer {
			pages = append(pages, p.PageNumber)
		}
	}
	return pages
}
