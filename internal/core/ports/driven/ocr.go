package driven

import "context"

// OCRInput encapsulates a single page image submitted for recognition.
// The engine only ever sees one page at a time; batching whole documents
// is deliberately impossible so that a failing page stays isolated.
type OCRInput struct {
	// Image is the PNG-encoded page image.
	Image []byte

	// Languages is a list of trained-data hints (e.g. "eng", "deu").
	Languages []string

	// DPI is the effective dots-per-inch of the image; zero means unknown.
	DPI int

	// Variables carries engine-specific knobs (e.g. Tesseract's
	// "tessedit_pageseg_mode") without hard-coding them into the port.
	Variables map[string]string
}

// OCREngine recognizes text in a rasterized page image.
// Implementations must honour context cancellation; a cancelled or timed
// out call is treated by the caller exactly like a failed one.
type OCREngine interface {
	// Name returns the engine identifier (e.g. "tesseract").
	Name() string

	// Recognize returns best-effort text for one page image. The result
	// may be empty when the page is blank or confidence yields nothing.
	Recognize(ctx context.Context, input OCRInput) (string, error)
}
