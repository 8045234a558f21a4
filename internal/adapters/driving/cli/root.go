// Package cli provides the cobra command tree for the scandex binary.
package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/scandex-labs/scandex-cli/internal/adapters/driven/blob/filesystem"
	"github.com/scandex-labs/scandex-cli/internal/adapters/driven/blob/s3"
	"github.com/scandex-labs/scandex-cli/internal/adapters/driven/config/file"
	"github.com/scandex-labs/scandex-cli/internal/adapters/driven/ocr/tesseract"
	"github.com/scandex-labs/scandex-cli/internal/adapters/driven/storage/sqlite"
	"github.com/scandex-labs/scandex-cli/internal/core/ports/driven"
	"github.com/scandex-labs/scandex-cli/internal/core/ports/driving"
	"github.com/scandex-labs/scandex-cli/internal/core/services"
	"github.com/scandex-labs/scandex-cli/internal/extractors/pdfrender"
	"github.com/scandex-labs/scandex-cli/internal/extractors/pdftext"
	"github.com/scandex-labs/scandex-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services wired by initServices and consumed by the commands.
var (
	ingestService   driving.IngestService
	searchService   driving.SearchService
	documentService driving.DocumentService
	configStore     driven.ConfigStore
)

var (
	verboseFlag bool
	dataDirFlag string
)

var rootCmd = &cobra.Command{
	Use:   "scandex",
	Short: "Local PDF ingestion and full-text search",
	Long: `Scandex ingests PDF documents into a local catalog, extracting text
page by page and falling back to OCR for scanned pages, then answers
full-text queries against the stored text.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verboseFlag)
		// The version command must work even on a broken install.
		if cmd.Name() == "version" {
			return nil
		}
		return initServices()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "data directory (default ~/.scandex)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// initServices wires the adapters and core services. Tests replace the
// service variables directly and never call this.
func initServices() error {
	if ingestService != nil {
		return nil
	}

	cfg, err := file.NewConfigStore(dataDirFlag)
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	configStore = cfg

	// Precedence: flag, then persisted setting, then ~/.scandex.
	baseDir := dataDirFlag
	if baseDir == "" {
		baseDir = cfg.GetString(driven.SettingDataDir)
	}
	storageDir, blobDir := "", ""
	if baseDir != "" {
		storageDir = filepath.Join(baseDir, "data")
		blobDir = filepath.Join(baseDir, "data", "blobs")
	}

	store, err := sqlite.NewStore(storageDir)
	if err != nil {
		return fmt.Errorf("opening catalog: %w", err)
	}
	catalog := store.Catalog()

	blobs, err := newBlobStore(cfg, blobDir)
	if err != nil {
		return fmt.Errorf("opening blob store: %w", err)
	}

	var renderOpts []pdfrender.Option
	if dpi := cfg.GetInt(driven.SettingOCRDPI); dpi > 0 {
		renderOpts = append(renderOpts, pdfrender.WithDPI(float64(dpi)))
	}

	ingestService = services.NewIngestService(
		blobs,
		catalog,
		pdftext.New(),
		pdfrender.New(renderOpts...),
		tesseract.New(),
		ingestOptions(cfg)...,
	)
	searchService = services.NewSearchService(catalog)
	documentService = services.NewDocumentService(catalog, blobs)

	return nil
}

// newBlobStore picks S3 storage when an endpoint is configured and the
// local filesystem otherwise.
func newBlobStore(cfg driven.ConfigStore, blobDir string) (driven.BlobStore, error) {
	endpoint := cfg.GetString(driven.SettingS3Endpoint)
	if endpoint == "" {
		return filesystem.New(blobDir)
	}

	logger.Debug("Using S3 blob storage at %s", endpoint)
	store, err := s3.New(s3.Config{
		Endpoint:        endpoint,
		Bucket:          cfg.GetString(driven.SettingS3Bucket),
		AccessKeyID:     cfg.GetString(driven.SettingS3AccessKey),
		SecretAccessKey: cfg.GetString(driven.SettingS3SecretKey),
		UseSSL:          cfg.GetBool(driven.SettingS3UseSSL),
	})
	if err != nil {
		return nil, err
	}
	if err := store.EnsureBucket(context.Background()); err != nil {
		return nil, fmt.Errorf("ensuring bucket: %w", err)
	}
	return store, nil
}

// ingestOptions translates persisted settings into service options.
func ingestOptions(cfg driven.ConfigStore) []services.IngestOption {
	var opts []services.IngestOption
	if langs := cfg.GetStringSlice(driven.SettingOCRLangs); len(langs) > 0 {
		opts = append(opts, services.WithLanguages(langs...))
	}
	if secs := cfg.GetInt(driven.SettingOCRTimeout); secs > 0 {
		opts = append(opts, services.WithOCRTimeout(time.Duration(secs)*time.Second))
	}
	if workers := cfg.GetInt(driven.SettingOCRWorkers); workers > 0 {
		opts = append(opts, services.WithOCRWorkers(workers))
	}
	if pagesPerSecond := cfg.GetFloat(driven.SettingOCRRate); pagesPerSecond > 0 {
		opts = append(opts, services.WithOCRRate(pagesPerSecond))
	}
	return opts
}
