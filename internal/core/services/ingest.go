package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/scandex-labs/scandex-cli/internal/core/domain"
	"github.com/scandex-labs/scandex-cli/internal/core/ports/driven"
	"github.com/scandex-labs/scandex-cli/internal/core/ports/driving"
	"github.com/scandex-labs/scandex-cli/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// Defaults for the OCR fallback.
const (
	// DefaultOCRTimeout bounds a single page's render+recognize call.
	// A timed-out page is recorded with empty text, never fatal.
	DefaultOCRTimeout = 60 * time.Second

	// DefaultOCRWorkers is the fan-out for documents with many
	// OCR-eligible pages. Page order in the result is always preserved
	// regardless of completion order.
	DefaultOCRWorkers = 2

	// defaultRenderDPI is the resolution pages are rasterized at before
	// recognition.
	defaultRenderDPI = 150
)

// IngestService assembles the per-page extraction artifact for a
// document: embedded text layer first, OCR fallback for pages whose
// candidate text is empty after trimming. This is the only place
// extraction happens; search reads the persisted result and never
// re-extracts or re-runs OCR.
type IngestService struct {
	blobs     driven.BlobStore
	catalog   driven.Catalog
	extractor driven.TextExtractor
	renderer  driven.PageRenderer
	ocr       driven.OCREngine

	languages  []string
	ocrTimeout time.Duration
	workers    int
	limiter    *rate.Limiter
	progress   chan<- domain.IngestEvent

	// At-most-one in-flight ingestion per document id.
	mu     sync.Mutex
	active map[string]struct{}
}

// IngestOption configures the ingest service.
type IngestOption func(*IngestService)

// WithLanguages sets the OCR language hints (default "eng").
func WithLanguages(langs ...string) IngestOption {
	return func(s *IngestService) {
		if len(langs) > 0 {
			s.languages = append([]string(nil), langs...)
		}
	}
}

// WithOCRTimeout bounds each page's OCR fallback call.
func WithOCRTimeout(d time.Duration) IngestOption {
	return func(s *IngestService) {
		if d > 0 {
			s.ocrTimeout = d
		}
	}
}

// WithOCRWorkers sets the worker pool size for OCR-eligible pages.
func WithOCRWorkers(n int) IngestOption {
	return func(s *IngestService) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithOCRRate caps OCR invocations per second across a document.
// Zero or negative means unlimited.
func WithOCRRate(pagesPerSecond float64) IngestOption {
	return func(s *IngestService) {
		if pagesPerSecond > 0 {
			s.limiter = rate.NewLimiter(rate.Limit(pagesPerSecond), 1)
		}
	}
}

// WithProgress subscribes a channel to per-page progress events.
// Delivery is best-effort and non-blocking; correctness never depends
// on anyone consuming the events.
func WithProgress(ch chan<- domain.IngestEvent) IngestOption {
	return func(s *IngestService) { s.progress = ch }
}

// NewIngestService creates a new ingest service.
func NewIngestService(
	blobs driven.BlobStore,
	catalog driven.Catalog,
	extractor driven.TextExtractor,
	renderer driven.PageRenderer,
	ocr driven.OCREngine,
	opts ...IngestOption,
) *IngestService {
	s := &IngestService{
		blobs:      blobs,
		catalog:    catalog,
		extractor:  extractor,
		renderer:   renderer,
		ocr:        ocr,
		languages:  []string{"eng"},
		ocrTimeout: DefaultOCRTimeout,
		workers:    DefaultOCRWorkers,
		limiter:    rate.NewLimiter(rate.Inf, 1),
		active:     make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ingest runs the one-shot pipeline for new bytes. Assembly happens
// before any write, so a malformed document leaves no trace in the
// catalog or the blob store.
func (s *IngestService) Ingest(ctx context.Context, data []byte, name string) (*domain.Document, error) {
	logger.Section("Ingestion")
	logger.Debug("Ingesting %q (%d bytes)", name, len(data))

	docID := uuid.New().String()
	if err := s.acquire(docID); err != nil {
		return nil, err
	}
	defer s.release(docID)

	pages, err := s.assemble(ctx, docID, data)
	if err != nil {
		return nil, err
	}

	ref, err := s.blobs.Put(ctx, docID, data)
	if err != nil {
		return nil, fmt.Errorf("store blob: %w", err)
	}

	doc := &domain.Document{
		ID:         docID,
		Name:       name,
		StorageRef: ref,
		PageCount:  len(pages),
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.write(ctx, doc, pages); err != nil {
		// Keep the no-partial-write promise: undo what landed.
		if derr := s.catalog.DeleteDocument(ctx, docID); derr != nil {
			logger.Warn("Rollback of document %s failed: %v", docID, derr)
		}
		if derr := s.blobs.Delete(ctx, ref); derr != nil {
			logger.Warn("Rollback of blob %s failed: %v", ref, derr)
		}
		return nil, err
	}

	logger.Info("Ingested %q: %d page(s), id %s", name, len(pages), docID)
	return doc, nil
}

// Reingest re-runs the pipeline over a document's stored bytes. The run
// replaces the extraction artifact; it is a fresh pipeline run, not an
// in-place edit of page text.
func (s *IngestService) Reingest(ctx context.Context, documentID string) error {
	doc, err := s.catalog.GetDocument(ctx, documentID)
	if err != nil {
		return fmt.Errorf("get document: %w", err)
	}

	if err := s.acquire(documentID); err != nil {
		return err
	}
	defer s.release(documentID)

	data, err := s.blobs.Get(ctx, doc.StorageRef)
	if err != nil {
		return fmt.Errorf("fetch blob %s: %w", doc.StorageRef, err)
	}

	pages, err := s.assemble(ctx, documentID, data)
	if err != nil {
		return err
	}

	doc.PageCount = len(pages)
	if err := s.write(ctx, doc, pages); err != nil {
		return err
	}

	logger.Info("Re-ingested %s: %d page(s)", documentID, len(pages))
	return nil
}

// write persists metadata and the extraction artifact. PutDocumentText
// is atomic in the catalog, so pages either all land or none do.
func (s *IngestService) write(ctx context.Context, doc *domain.Document, pages []domain.PageText) error {
	if err := s.catalog.SaveDocument(ctx, doc); err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	text := &domain.DocumentText{
		DocumentID: doc.ID,
		Pages:      pages,
		FullText:   domain.JoinPages(pages),
	}
	if err := s.catalog.PutDocumentText(ctx, text); err != nil {
		return fmt.Errorf("save document text: %w", err)
	}
	return nil
}

// assemble produces the final ordered page sequence: text layer per
// page, OCR fallback for pages that are empty after trimming.
func (s *IngestService) assemble(ctx context.Context, docID string, data []byte) ([]domain.PageText, error) {
	texts, err := s.extractor.Extract(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("extract text layer: %w", err)
	}

	pages := make([]domain.PageText, len(texts))
	var needsOCR []int
	for i, t := range texts {
		trimmed := strings.TrimSpace(t)
		pages[i] = domain.PageText{PageNumber: i + 1, Text: trimmed}
		if trimmed == "" {
			needsOCR = append(needsOCR, i)
			continue
		}
		pages[i].Source = domain.TextSourceLayer
		s.emit(domain.IngestEvent{DocumentID: docID, Page: i + 1, Stage: domain.StageExtracted})
	}

	if len(needsOCR) == 0 {
		logger.Debug("All %d page(s) have a text layer, no OCR needed", len(pages))
		return pages, nil
	}
	logger.Info("OCR fallback for %d of %d page(s)", len(needsOCR), len(pages))

	if err := s.runOCR(ctx, docID, data, pages, needsOCR); err != nil {
		return nil, err
	}
	return pages, nil
}

// runOCR fans the OCR-eligible pages out across a bounded worker pool.
// Workers write into the page slice by index, so the final sequence
// preserves page order regardless of completion order. Per-page failures
// are recovered locally; only caller cancellation aborts the document.
func (s *IngestService) runOCR(ctx context.Context, docID string, data []byte, pages []domain.PageText, needsOCR []int) error {
	workers := s.workers
	if workers > len(needsOCR) {
		workers = len(needsOCR)
	}

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for _, idx := range needsOCR {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if err := s.limiter.Wait(ctx); err != nil {
				return // caller cancelled; reported below via ctx.Err
			}
			pages[idx] = s.ocrPage(ctx, docID, data, idx+1)
		}(idx)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("ingestion cancelled: %w", err)
	}
	return nil
}

// ocrPage renders and recognizes one page. Every failure path resolves
// to empty text for that page; one unreadable page must not block the
// rest of the document.
func (s *IngestService) ocrPage(ctx context.Context, docID string, data []byte, pageNumber int) domain.PageText {
	s.emit(domain.IngestEvent{DocumentID: docID, Page: pageNumber, Stage: domain.StageOCRStarted})

	pageCtx, cancel := context.WithTimeout(ctx, s.ocrTimeout)
	defer cancel()

	degraded := func(reason string) domain.PageText {
		logger.Warn("Page %d degraded: %s", pageNumber, reason)
		s.emit(domain.IngestEvent{DocumentID: docID, Page: pageNumber, Stage: domain.StageDegraded, Detail: reason})
		return domain.PageText{PageNumber: pageNumber, Source: domain.TextSourceEmpty}
	}

	image, err := s.renderer.Render(pageCtx, data, pageNumber)
	if err != nil {
		return degraded(fmt.Sprintf("render: %v", err))
	}

	text, err := s.ocr.Recognize(pageCtx, driven.OCRInput{
		Image:     image,
		Languages: s.languages,
		DPI:       defaultRenderDPI,
	})
	if err != nil {
		return degraded(fmt.Sprintf("ocr: %v", err))
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return degraded("ocr recognized no text")
	}

	s.emit(domain.IngestEvent{DocumentID: docID, Page: pageNumber, Stage: domain.StageOCRDone})
	return domain.PageText{PageNumber: pageNumber, Text: text, Source: domain.TextSourceOCR}
}

// emit delivers a progress event without ever blocking the pipeline.
func (s *IngestService) emit(ev domain.IngestEvent) {
	if s.progress == nil {
		return
	}
	select {
	case s.progress <- ev:
	default:
	}
}

// acquire registers an in-flight ingestion for a document id.
func (s *IngestService) acquire(documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, running := s.active[documentID]; running {
		return fmt.Errorf("document %s: %w", documentID, domain.ErrIngestInProgress)
	}
	s.active[documentID] = struct{}{}
	return nil
}

// release clears the in-flight marker.
func (s *IngestService) release(documentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.active, documentID)
}
