package domain

// IngestStage identifies a step in the per-page ingestion pipeline.
type IngestStage string

const (
	// StageExtracted means the page text came from the embedded text layer.
	StageExtracted IngestStage = "extracted"

	// StageOCRStarted means the page had no text layer and was handed to OCR.
	StageOCRStarted IngestStage = "ocr_started"

	// StageOCRDone means OCR produced text for the page.
	StageOCRDone IngestStage = "ocr_done"

	// StageDegraded means the page ended up with empty text: the text
	// layer was missing and OCR failed, timed out, or recognized nothing.
	// Degraded pages are reported, never fatal.
	StageDegraded IngestStage = "degraded"
)

// IngestEvent reports per-page progress during ingestion. Events are
// delivered best-effort on an optional subscriber channel; ingestion
// correctness never depends on anyone consuming them.
type IngestEvent struct {
	// DocumentID is the document being ingested.
	DocumentID string

	// Page is the 1-based page the event concerns.
	Page int

	// Stage is the pipeline step reached.
	Stage IngestStage

	// Detail carries a human-readable note, e.g. the recovered OCR error.
	Detail string
}
