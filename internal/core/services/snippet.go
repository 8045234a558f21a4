package services

import (
	"strings"
	"unicode/utf8"

	"github.com/scandex-labs/scandex-cli/internal/core/domain"
)

// Snippet and position constants. The layout values mirror the fixed
// page model used for highlight placement: 80 characters per line at a
// 10pt advance, 15pt line height. This is a heuristic, not a glyph-level
// coordinate mapping; the only guarantee is offset monotonicity.
const (
	snippetRadius     = 40 // characters either side of an exact match
	snippetTokenSpan  = 10 // tokens either side of a fuzzy match
	layoutCharsPerRow = 80
	layoutCharWidth   = 10.0
	layoutLineHeight  = 15.0
	truncationMarker  = "..."
)

// token is a whitespace-delimited run of text with its byte offset.
type token struct {
	text  string
	start int
}

// tokenize splits text on whitespace, keeping byte offsets so a match
// offset can be mapped back to a token index.
func tokenize(text string) []token {
	var tokens []token
	start := -1
	for i, r := range text {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f' || r == '\v' {
			if start >= 0 {
				tokens = append(tokens, token{text: text[start:i], start: start})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		tokens = append(tokens, token{text: text[start:], start: start})
	}
	return tokens
}

// tokenIndexAt returns the index of the token containing or nearest
// before the byte offset. Returns 0 for offsets before the first token.
func tokenIndexAt(tokens []token, offset int) int {
	idx := 0
	for i, tok := range tokens {
		if tok.start > offset {
			break
		}
		idx = i
	}
	return idx
}

// exactSnippet returns a fixed character radius around the match,
// with truncation markers on any clipped edge.
func exactSnippet(pageText string, offset, matchLen int) string {
	start := offset - snippetRadius
	if start < 0 {
		start = 0
	}
	end := offset + matchLen + snippetRadius
	if end > len(pageText) {
		end = len(pageText)
	}

	// Never split a multi-byte rune at either edge.
	for start > 0 && !utf8.RuneStart(pageText[start]) {
		start--
	}
	for end < len(pageText) && !utf8.RuneStart(pageText[end]) {
		end++
	}

	snippet := pageText[start:end]
	if start > 0 {
		snippet = truncationMarker + snippet
	}
	if end < len(pageText) {
		snippet += truncationMarker
	}
	return snippet
}

// fuzzySnippet returns the ±snippetTokenSpan token window around the
// match, the same window fuzzy scoring uses, with truncation markers on
// any clipped edge.
func fuzzySnippet(tokens []token, matchIdx int) string {
	if len(tokens) == 0 {
		return ""
	}
	start := matchIdx - snippetTokenSpan
	if start < 0 {
		start = 0
	}
	end := matchIdx + snippetTokenSpan + 1
	if end > len(tokens) {
		end = len(tokens)
	}

	words := make([]string, 0, end-start)
	for _, tok := range tokens[start:end] {
		words = append(words, tok.text)
	}

	snippet := strings.Join(words, " ")
	if start > 0 {
		snippet = truncationMarker + snippet
	}
	if end < len(tokens) {
		snippet += truncationMarker
	}
	return snippet
}

// windowOverlap scores how many of the query's tokens appear within
// ±snippetTokenSpan tokens of the match, as a fraction of the query
// token count. More overlapping tokens never score lower.
func windowOverlap(tokens []token, matchIdx int, queryTokens []string) float64 {
	if len(queryTokens) == 0 {
		return 0
	}
	start := matchIdx - snippetTokenSpan
	if start < 0 {
		start = 0
	}
	end := matchIdx + snippetTokenSpan + 1
	if end > len(tokens) {
		end = len(tokens)
	}

	matched := 0
	for _, q := range queryTokens {
		for _, tok := range tokens[start:end] {
			if strings.Contains(strings.ToLower(tok.text), q) {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(queryTokens))
}

// approxPosition maps a character offset to an approximate on-page
// location using the fixed layout model. Within one page, a larger
// offset never maps before a smaller one: the line is non-decreasing in
// the offset, and the column increases within a line.
func approxPosition(offset int) *domain.Position {
	if offset < 0 {
		return nil
	}
	col := offset % layoutCharsPerRow
	line := offset / layoutCharsPerRow
	return &domain.Position{
		X: float64(col) * layoutCharWidth,
		Y: float64(line) * layoutLineHeight,
	}
}
