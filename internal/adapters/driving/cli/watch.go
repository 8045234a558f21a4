package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/scandex-labs/scandex-cli/internal/logger"
)

// watchSettleDelay is how long a file must stay quiet before it is
// ingested, so half-written downloads are not picked up mid-copy.
const watchSettleDelay = 2 * time.Second

var watchCmd = &cobra.Command{
	Use:   "watch [directory]",
	Short: "Watch a directory and ingest new PDFs",
	Long: `Watches a directory and ingests every PDF that is created or
modified in it. Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	dir := args[0]
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("watch directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch target %s is not a directory", dir)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.Printf("Watching %s for PDFs (ctrl-c to stop)...\n", dir)
	return watchLoop(ctx, cmd, watcher)
}

// watchLoop debounces filesystem events per path and ingests each PDF
// once it has settled.
func watchLoop(ctx context.Context, cmd *cobra.Command, watcher *fsnotify.Watcher) error {
	var mu sync.Mutex
	pending := make(map[string]*time.Timer)

	defer func() {
		mu.Lock()
		defer mu.Unlock()
		for _, timer := range pending {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
				continue
			}
			if !strings.EqualFold(filepath.Ext(event.Name), ".pdf") {
				continue
			}

			path := event.Name
			mu.Lock()
			if timer, exists := pending[path]; exists {
				timer.Reset(watchSettleDelay)
				mu.Unlock()
				continue
			}
			pending[path] = time.AfterFunc(watchSettleDelay, func() {
				mu.Lock()
				delete(pending, path)
				mu.Unlock()
				ingestWatched(ctx, cmd, path)
			})
			mu.Unlock()
		}
	}
}

// ingestWatched ingests one settled file, logging failures instead of
// stopping the watch.
func ingestWatched(ctx context.Context, cmd *cobra.Command, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Error("Reading %s: %v", path, err)
		return
	}

	doc, err := ingestService.Ingest(ctx, data, filepath.Base(path))
	if err != nil {
		logger.Error("Ingesting %s: %v", path, err)
		return
	}
	cmd.Printf("Ingested %s (%d pages) as %s\n", doc.Name, doc.PageCount, doc.ID)
}
