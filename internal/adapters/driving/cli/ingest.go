package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/scandex-labs/scandex-cli/internal/core/domain"
	"github.com/scandex-labs/scandex-cli/internal/logger"
)

var ingestJSON bool

var ingestCmd = &cobra.Command{
	Use:   "ingest [file...]",
	Short: "Ingest PDF documents into the catalog",
	Long: `Reads one or more PDF files, extracts their text page by page, and
stores them in the local catalog. Pages without an embedded text layer
are run through OCR; pages that stay unreadable are recorded as empty
so the rest of the document remains searchable.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

var reingestCmd = &cobra.Command{
	Use:   "reingest [doc-id]",
	Short: "Re-run extraction for an ingested document",
	Long: `Re-runs text extraction and OCR over a document's stored bytes,
replacing its extracted text. Useful after changing OCR settings.`,
	Args: cobra.ExactArgs(1),
	RunE: runReingest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "output ingested documents as JSON")
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(reingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	ctx := context.Background()
	var ingested []domain.Document
	var failed int

	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Error("Reading %s: %v", path, err)
			failed++
			continue
		}

		doc, err := ingestService.Ingest(ctx, data, filepath.Base(path))
		if err != nil {
			if errors.Is(err, domain.ErrMalformedDocument) {
				logger.Error("Skipping %s: not a readable PDF", path)
			} else {
				logger.Error("Ingesting %s: %v", path, err)
			}
			failed++
			continue
		}

		ingested = append(ingested, *doc)
		if !ingestJSON {
			cmd.Printf("Ingested %s (%d pages) as %s\n", doc.Name, doc.PageCount, doc.ID)
		}
	}

	if ingestJSON {
		data, err := json.MarshalIndent(ingested, "", "  ")
		if err != nil {
			return fmt.Errorf("marshalling documents: %w", err)
		}
		cmd.Println(string(data))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) failed", failed, len(args))
	}
	return nil
}

func runReingest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	docID := args[0]
	if err := ingestService.Reingest(context.Background(), docID); err != nil {
		return fmt.Errorf("re-ingesting %s: %w", docID, err)
	}

	cmd.Printf("Document %s re-ingested.\n", docID)
	return nil
}
