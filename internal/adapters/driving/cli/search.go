package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scandex-labs/scandex-cli/internal/core/domain"
)

var (
	searchMode  string
	searchDoc   string
	searchLimit int
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search ingested documents",
	Long: `Searches the stored page text of ingested documents.

Exact mode (default) finds case-insensitive literal occurrences of the
query. Fuzzy mode matches the query words across line breaks and ranks
results by how much of the query appears near each match.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchMode, "mode", "m", "exact", "match mode: exact or fuzzy")
	searchCmd.Flags().StringVarP(&searchDoc, "doc", "d", "", "restrict the search to one document id")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum number of results (0 = unlimited)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	if searchService == nil {
		return errors.New("search service not configured")
	}

	mode, err := domain.ParseMatchMode(searchMode)
	if err != nil {
		return fmt.Errorf("invalid --mode: %w", err)
	}

	scope := domain.ScopeCorpus()
	if searchDoc != "" {
		scope = domain.ScopeDocument(searchDoc)
	}

	results, err := searchService.Search(context.Background(), query, mode, scope)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchLimit > 0 && len(results) > searchLimit {
		results = results[:searchLimit]
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	return outputSearchTable(cmd, results)
}

func outputSearchJSON(cmd *cobra.Command, results []domain.SearchResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.SearchResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		cmd.Printf("  [%d] %s, page %d (%.2f)\n",
			i+1, results[i].DocumentName, results[i].PageNumber, results[i].Relevance)
		if results[i].Snippet != "" {
			cmd.Printf("      %s\n", results[i].Snippet)
		}
		cmd.Println()
	}

	return nil
}
