package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/scandex-labs/scandex-cli/internal/core/domain"
	"github.com/scandex-labs/scandex-cli/internal/core/ports/driven"
	"github.com/scandex-labs/scandex-cli/internal/core/ports/driving"
	"github.com/scandex-labs/scandex-cli/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// SearchService answers full-text queries by scanning the extraction
// artifacts stored in the catalog. Extraction never happens here; every
// query is a pure in-memory string operation over persisted page text,
// so repeated searches against an unchanged corpus are deterministic.
//
// There is no shared mutable state: all per-call buffers are local, and
// concurrent searches never block each other.
type SearchService struct {
	catalog driven.Catalog
}

// NewSearchService creates a new search service.
func NewSearchService(catalog driven.Catalog) *SearchService {
	return &SearchService{catalog: catalog}
}

// Search scans every document in scope for the query under the given
// match mode and returns ranked, page-located results.
func (s *SearchService) Search(
	ctx context.Context, query string, mode domain.MatchMode, scope domain.Scope,
) ([]domain.SearchResult, error) {
	logger.Section("Search Execution")
	logger.Debug("Query: %q, mode: %s", query, mode)

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrInvalidQuery
	}

	docIDs, err := s.resolveScope(ctx, scope)
	if err != nil {
		return nil, err
	}
	logger.Debug("Scope: %d document(s)", len(docIDs))

	matcher, err := newMatcher(query, mode)
	if err != nil {
		return nil, err
	}

	results := make([]domain.SearchResult, 0)
	for _, id := range docIDs {
		docResults, err := s.searchDocument(ctx, id, matcher)
		if err != nil {
			return nil, err
		}
		results = append(results, docResults...)
	}

	// Descending relevance; ties broken by (documentID, pageNumber,
	// offset) ascending so identical queries always order identically.
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Relevance != results[j].Relevance {
			return results[i].Relevance > results[j].Relevance
		}
		if results[i].DocumentID != results[j].DocumentID {
			return results[i].DocumentID < results[j].DocumentID
		}
		if results[i].PageNumber != results[j].PageNumber {
			return results[i].PageNumber < results[j].PageNumber
		}
		return results[i].Offset < results[j].Offset
	})

	logger.Info("Search: %d result(s)", len(results))
	return results, nil
}

// resolveScope expands the scope into a deterministic document id list.
func (s *SearchService) resolveScope(ctx context.Context, scope domain.Scope) ([]string, error) {
	if !scope.IsCorpus() {
		// Surface an unknown id as a typed failure before scanning.
		if _, err := s.catalog.GetDocument(ctx, scope.DocumentID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("document %s: %w", scope.DocumentID, domain.ErrNotFound)
			}
			return nil, fmt.Errorf("get document: %w", err)
		}
		return []string{scope.DocumentID}, nil
	}

	ids, err := s.catalog.ListDocumentIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}

// searchDocument scans one document's stored pages for matches.
func (s *SearchService) searchDocument(
	ctx context.Context, documentID string, m *matcher,
) ([]domain.SearchResult, error) {
	doc, err := s.catalog.GetDocument(ctx, documentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document %s: %w", documentID, err)
	}

	text, err := s.catalog.GetDocumentText(ctx, documentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Deleted between listing and read: zero matches, not an error.
			logger.Debug("Document %s has no extracted text", documentID)
			return nil, nil
		}
		return nil, fmt.Errorf("get document text %s: %w", documentID, err)
	}

	var results []domain.SearchResult
	for _, page := range text.Pages {
		for _, match := range m.find(page.Text) {
			results = append(results, domain.SearchResult{
				DocumentID:   doc.ID,
				DocumentName: doc.Name,
				PageNumber:   page.PageNumber,
				Snippet:      match.snippet,
				Offset:       match.offset,
				Relevance:    match.relevance,
				Position:     approxPosition(match.offset),
			})
		}
	}

	if m.mode == domain.MatchExact {
		// Exact relevance is the occurrence count across the whole
		// document, applied uniformly to each of its matches.
		count := float64(len(results))
		for i := range results {
			results[i].Relevance = count
		}
	}

	logger.Debug("Document %s: %d match(es)", documentID, len(results))
	return results, nil
}

// pageMatch is one occurrence within a single page.
type pageMatch struct {
	offset    int
	snippet   string
	relevance float64
}

// matcher holds the per-query compiled state shared across pages.
type matcher struct {
	mode        domain.MatchMode
	pattern     *regexp.Regexp
	queryTokens []string // lowercased, fuzzy mode
}

// newMatcher compiles the query for the given mode.
func newMatcher(query string, mode domain.MatchMode) (*matcher, error) {
	switch mode {
	case domain.MatchExact:
		// Case folding can change a rune's byte length, so matching must
		// run over the original text to keep offsets valid. A quoted
		// case-insensitive pattern gives literal matching without a
		// lowered copy of the page.
		pattern, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(query))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidQuery, err)
		}
		return &matcher{mode: mode, pattern: pattern}, nil

	case domain.MatchFuzzy:
		fields := strings.Fields(query)
		escaped := make([]string, len(fields))
		tokens := make([]string, len(fields))
		for i, f := range fields {
			escaped[i] = regexp.QuoteMeta(f)
			tokens[i] = strings.ToLower(f)
		}
		// Query tokens may be separated by any run of whitespace in the
		// page text, so a phrase still matches across line breaks.
		pattern, err := regexp.Compile(`(?i)` + strings.Join(escaped, `\s+`))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidQuery, err)
		}
		return &matcher{mode: mode, pattern: pattern, queryTokens: tokens}, nil

	default:
		return nil, fmt.Errorf("%w: unknown match mode %q", domain.ErrInvalidInput, mode)
	}
}

// find returns all non-overlapping occurrences within one page's text.
func (m *matcher) find(pageText string) []pageMatch {
	if m.mode == domain.MatchExact {
		return m.findExact(pageText)
	}
	return m.findFuzzy(pageText)
}

func (m *matcher) findExact(pageText string) []pageMatch {
	locs := m.pattern.FindAllStringIndex(pageText, -1)
	if len(locs) == 0 {
		return nil
	}

	matches := make([]pageMatch, 0, len(locs))
	for _, loc := range locs {
		matches = append(matches, pageMatch{
			offset:  loc[0],
			snippet: exactSnippet(pageText, loc[0], loc[1]-loc[0]),
		})
	}
	return matches
}

func (m *matcher) findFuzzy(pageText string) []pageMatch {
	locs := m.pattern.FindAllStringIndex(pageText, -1)
	if len(locs) == 0 {
		return nil
	}

	tokens := tokenize(pageText)
	matches := make([]pageMatch, 0, len(locs))
	for _, loc := range locs {
		idx := tokenIndexAt(tokens, loc[0])
		matches = append(matches, pageMatch{
			offset:    loc[0],
			snippet:   fuzzySnippet(tokens, idx),
			relevance: windowOverlap(tokens, idx, m.queryTokens),
		})
	}
	return matches
}
