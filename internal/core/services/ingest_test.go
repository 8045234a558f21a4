package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scandex-labs/scandex-cli/internal/adapters/driven/storage/memory"
	"github.com/scandex-labs/scandex-cli/internal/core/domain"
	"github.com/scandex-labs/scandex-cli/internal/core/ports/driven"
)

// fakeExtractor returns a fixed page sequence.
type fakeExtractor struct {
	mu    sync.Mutex
	pages []string
	err   error
	calls int
}

func (f *fakeExtractor) Extract(_ context.Context, _ []byte) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return append([]string(nil), f.pages...), nil
}

// fakeRenderer produces a synthetic image tagged with the page number.
type fakeRenderer struct {
	mu       sync.Mutex
	err      error
	rendered []int
}

func (f *fakeRenderer) Render(_ context.Context, _ []byte, pageNumber int) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.rendered = append(f.rendered, pageNumber)
	return []byte(fmt.Sprintf("img-%d", pageNumber)), nil
}

// fakeOCR maps synthetic images to recognized text.
type fakeOCR struct {
	mu    sync.Mutex
	texts map[string]string // image payload -> recognized text
	err   error
	calls int
}

func (f *fakeOCR) Name() string { return "fake" }

func (f *fakeOCR) Recognize(_ context.Context, input driven.OCRInput) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.texts[string(input.Image)], nil
}

func (f *fakeOCR) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type ingestFixture struct {
	blobs     *memory.BlobStore
	catalog   *memory.Catalog
	extractor *fakeExtractor
	renderer  *fakeRenderer
	ocr       *fakeOCR
}

func newIngestFixture(pages ...string) *ingestFixture {
	return &ingestFixture{
		blobs:     memory.NewBlobStore(),
		catalog:   memory.NewCatalog(),
		extractor: &fakeExtractor{pages: pages},
		renderer:  &fakeRenderer{},
		ocr:       &fakeOCR{texts: make(map[string]string)},
	}
}

func (f *ingestFixture) service(opts ...IngestOption) *IngestService {
	return NewIngestService(f.blobs, f.catalog, f.extractor, f.renderer, f.ocr, opts...)
}

func TestIngestService_TextLayerOnly(t *testing.T) {
	f := newIngestFixture("page one text", "  page two text  ", "page three")
	svc := f.service()
	ctx := context.Background()

	doc, err := svc.Ingest(ctx, []byte("%PDF-fake"), "report.pdf")
	require.NoError(t, err)

	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, "report.pdf", doc.Name)
	assert.Equal(t, 3, doc.PageCount)
	assert.False(t, doc.CreatedAt.IsZero())

	// No empty pages, so OCR never ran.
	assert.Zero(t, f.ocr.callCount())
	assert.Empty(t, f.renderer.rendered)

	text, err := f.catalog.GetDocumentText(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, text.Pages, 3)
	for i, page := range text.Pages {
		assert.Equal(t, i+1, page.PageNumber)
		assert.Equal(t, domain.TextSourceLayer, page.Source)
	}
	// Stored text is trimmed, pages joined on the page boundary.
	assert.Equal(t, "page two text", text.Pages[1].Text)
	assert.Equal(t, "page one text\fpage two text\fpage three", text.FullText)

	// Raw bytes survive for re-ingestion.
	stored, err := f.blobs.Get(ctx, doc.StorageRef)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-fake"), stored)
}

func TestIngestService_OCRFallbackForEmptyPages(t *testing.T) {
	f := newIngestFixture("text layer page", "   ", "")
	f.ocr.texts["img-2"] = "  recognized two  "
	f.ocr.texts["img-3"] = "recognized three"
	svc := f.service()
	ctx := context.Background()

	doc, err := svc.Ingest(ctx, []byte("data"), "scan.pdf")
	require.NoError(t, err)
	require.Equal(t, 3, doc.PageCount)

	// OCR ran once per empty page, never for the text-layer page.
	assert.Equal(t, 2, f.ocr.callCount())
	assert.ElementsMatch(t, []int{2, 3}, f.renderer.rendered)

	text, err := f.catalog.GetDocumentText(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TextSourceLayer, text.Pages[0].Source)
	assert.Equal(t, domain.TextSourceOCR, text.Pages[1].Source)
	assert.Equal(t, domain.TextSourceOCR, text.Pages[2].Source)
	assert.Equal(t, "recognized two", text.Pages[1].Text)
	assert.Equal(t, "recognized three", text.Pages[2].Text)
}

func TestIngestService_PageOrderPreserved(t *testing.T) {
	pages := make([]string, 8)
	f := newIngestFixture(pages...) // all pages empty
	for i := 1; i <= 8; i++ {
		f.ocr.texts[fmt.Sprintf("img-%d", i)] = fmt.Sprintf("content %d", i)
	}
	svc := f.service(WithOCRWorkers(4))

	doc, err := svc.Ingest(context.Background(), []byte("data"), "scan.pdf")
	require.NoError(t, err)

	text, err := f.catalog.GetDocumentText(context.Background(), doc.ID)
	require.NoError(t, err)
	require.Len(t, text.Pages, 8)
	for i, page := range text.Pages {
		assert.Equal(t, i+1, page.PageNumber)
		assert.Equal(t, fmt.Sprintf("content %d", i+1), page.Text)
	}
}

func TestIngestService_DegradedPages(t *testing.T) {
	t.Run("ocr error", func(t *testing.T) {
		f := newIngestFixture("fine", "")
		f.ocr.err = errors.New("tesseract exploded")
		svc := f.service()

		doc, err := svc.Ingest(context.Background(), []byte("data"), "scan.pdf")
		require.NoError(t, err)

		text, err := f.catalog.GetDocumentText(context.Background(), doc.ID)
		require.NoError(t, err)
		assert.Empty(t, text.Pages[1].Text)
		assert.Equal(t, domain.TextSourceEmpty, text.Pages[1].Source)
		assert.Equal(t, []int{2}, text.DegradedPages())
	})

	t.Run("render error", func(t *testing.T) {
		f := newIngestFixture("fine", "")
		f.renderer.err = errors.New("rasterizer failed")
		svc := f.service()

		doc, err := svc.Ingest(context.Background(), []byte("data"), "scan.pdf")
		require.NoError(t, err)
		assert.Zero(t, f.ocr.callCount())

		text, err := f.catalog.GetDocumentText(context.Background(), doc.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.TextSourceEmpty, text.Pages[1].Source)
	})

	t.Run("ocr recognizes nothing", func(t *testing.T) {
		f := newIngestFixture("fine", "")
		f.ocr.texts["img-2"] = "   \n  "
		svc := f.service()

		doc, err := svc.Ingest(context.Background(), []byte("data"), "scan.pdf")
		require.NoError(t, err)

		text, err := f.catalog.GetDocumentText(context.Background(), doc.ID)
		require.NoError(t, err)
		assert.Empty(t, text.Pages[1].Text)
		assert.Equal(t, domain.TextSourceEmpty, text.Pages[1].Source)
	})
}

func TestIngestService_MalformedDocumentWritesNothing(t *testing.T) {
	f := newIngestFixture()
	f.extractor.err = fmt.Errorf("parse pdf: %w", domain.ErrMalformedDocument)
	svc := f.service()
	ctx := context.Background()

	_, err := svc.Ingest(ctx, []byte("not a pdf"), "bad.pdf")
	require.ErrorIs(t, err, domain.ErrMalformedDocument)

	docs, err := f.catalog.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

// failingTextCatalog rejects the text artifact write to exercise rollback.
type failingTextCatalog struct {
	*memory.Catalog
}

func (c *failingTextCatalog) PutDocumentText(context.Context, *domain.DocumentText) error {
	return errors.New("disk full")
}

func TestIngestService_RollbackOnWriteFailure(t *testing.T) {
	f := newIngestFixture("some text")
	broken := &failingTextCatalog{Catalog: f.catalog}
	svc := NewIngestService(f.blobs, broken, f.extractor, f.renderer, f.ocr)
	ctx := context.Background()

	_, err := svc.Ingest(ctx, []byte("data"), "doomed.pdf")
	require.Error(t, err)

	// No partial catalog state survives the failed write.
	docs, err := f.catalog.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestIngestService_ProgressEvents(t *testing.T) {
	f := newIngestFixture("has text", "")
	f.ocr.texts["img-2"] = "ocr text"
	events := make(chan domain.IngestEvent, 16)
	svc := f.service(WithProgress(events))

	doc, err := svc.Ingest(context.Background(), []byte("data"), "scan.pdf")
	require.NoError(t, err)
	close(events)

	stagesByPage := make(map[int][]domain.IngestStage)
	for ev := range events {
		assert.Equal(t, doc.ID, ev.DocumentID)
		stagesByPage[ev.Page] = append(stagesByPage[ev.Page], ev.Stage)
	}
	assert.Equal(t, []domain.IngestStage{domain.StageExtracted}, stagesByPage[1])
	assert.Equal(t, []domain.IngestStage{domain.StageOCRStarted, domain.StageOCRDone}, stagesByPage[2])
}

func TestIngestService_ProgressNeverBlocks(t *testing.T) {
	f := newIngestFixture("one", "two", "three")
	events := make(chan domain.IngestEvent) // unbuffered, nobody reading
	svc := f.service(WithProgress(events))

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := svc.Ingest(context.Background(), []byte("data"), "scan.pdf")
		assert.NoError(t, err)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("ingestion blocked on progress delivery")
	}
}

// stallingOCR blocks recognition until released.
type stallingOCR struct {
	started  chan struct{}
	release  chan struct{}
	startOne sync.Once
}

func (s *stallingOCR) Name() string { return "stalling" }

func (s *stallingOCR) Recognize(ctx context.Context, _ driven.OCRInput) (string, error) {
	s.startOne.Do(func() { close(s.started) })
	select {
	case <-s.release:
		return "late text", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func TestIngestService_ReingestRejectsConcurrentRun(t *testing.T) {
	f := newIngestFixture("")
	f.ocr.texts["img-1"] = "first pass"
	svc := f.service()
	ctx := context.Background()

	doc, err := svc.Ingest(ctx, []byte("data"), "scan.pdf")
	require.NoError(t, err)

	// Swap in an OCR engine that stalls so the first re-ingestion stays
	// in flight while the second one is attempted.
	f.extractor.pages = []string{""}
	stalling := &stallingOCR{started: make(chan struct{}), release: make(chan struct{})}
	slow := NewIngestService(f.blobs, f.catalog, f.extractor, f.renderer, stalling)

	firstDone := make(chan error, 1)
	go func() { firstDone <- slow.Reingest(ctx, doc.ID) }()

	<-stalling.started
	err = slow.Reingest(ctx, doc.ID)
	assert.ErrorIs(t, err, domain.ErrIngestInProgress)

	close(stalling.release)
	require.NoError(t, <-firstDone)
}

func TestIngestService_Reingest(t *testing.T) {
	f := newIngestFixture("original text")
	svc := f.service()
	ctx := context.Background()

	doc, err := svc.Ingest(ctx, []byte("data"), "scan.pdf")
	require.NoError(t, err)

	// A later run sees improved extraction for the same bytes.
	f.extractor.pages = []string{"original text", "newly found page"}
	require.NoError(t, svc.Reingest(ctx, doc.ID))

	updated, err := f.catalog.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.PageCount)

	text, err := f.catalog.GetDocumentText(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, text.Pages, 2)
	assert.Equal(t, "newly found page", text.Pages[1].Text)
}

func TestIngestService_ReingestUnknownDocument(t *testing.T) {
	f := newIngestFixture("text")
	svc := f.service()

	err := svc.Reingest(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIngestService_CancelledDuringOCR(t *testing.T) {
	f := newIngestFixture("", "")
	stalling := &stallingOCR{started: make(chan struct{}), release: make(chan struct{})}
	svc := NewIngestService(f.blobs, f.catalog, f.extractor, f.renderer, stalling, WithOCRWorkers(1))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := svc.Ingest(ctx, []byte("data"), "scan.pdf")
		done <- err
	}()

	<-stalling.started
	cancel()

	err := <-done
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	// Cancellation aborts before any write.
	docs, lerr := f.catalog.ListDocuments(context.Background())
	require.NoError(t, lerr)
	assert.Empty(t, docs)
}
