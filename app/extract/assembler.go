package extract

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/clipperhouse/uax29/v2/words"

	"github.com/bjpl/openlearn/app/sources"
)

// Enrichment carries the outputs of content analysis attached to an article
// after successful extraction.
type Enrichment struct {
	Entities        []string
	DifficultyScore float64
}

// Enricher analyzes article body text. Implementations are injected into the
// Assembler at construction time so tests can substitute fakes.
type Enricher interface {
	Enrich(ctx context.Context, content string) (Enrichment, error)
}

// Assembler turns one fetched page into a canonical article, or an explicit
// failure. Structured data is tried first; the publisher's fallback selectors
// second. Every parse problem is absorbed here: the only outcome crossing the
// component boundary is a Result, never a panic or a fatal error, so one bad
// page can never halt a batch.
//
// The Assembler holds no mutable state and is safe for concurrent use.
type Assembler struct {
	structured *StructuredExtractor
	fallback   *FallbackExtractor
	enricher   Enricher
}

func NewAssembler(enricher Enricher) *Assembler {
	return &Assembler{
		structured: NewStructuredExtractor(),
		fallback:   NewFallbackExtractor(),
		enricher:   enricher,
	}
}

func (a *Assembler) Run(ctx context.Context, page RawPage, source *sources.Config) Result {
	if err := ctx.Err(); err != nil {
		return Result{URL: page.URL, Reason: err.Error()}
	}

	if !looksLikeHTML(page.HTML) {
		slog.Warn("Fetched payload is not HTML", "url", page.URL, "source", source.Name)
		return Result{URL: page.URL, Reason: ErrNotHTML.Error()}
	}

	article, structuredErr := a.structured.Run(page, source.Locale)
	if structuredErr != nil {
		slog.Debug("Structured extraction failed, trying fallback selectors", "url", page.URL, "error", structuredErr)

		var fallbackErr error
		article, fallbackErr = a.fallback.Run(page, source.Selectors, source.Locale)
		if fallbackErr != nil {
			reason := fmt.Sprintf("structured: %v; fallback: %v", structuredErr, fallbackErr)
			return Result{URL: page.URL, Reason: reason}
		}
	}

	article.Source = source.Name
	article.WordCount = countWords(article.Content)
	a.enrich(ctx, article)

	return Result{Article: article, URL: page.URL}
}

// enrich attaches analysis outputs. Enrichment failure degrades to an
// un-enriched article; it never invalidates an otherwise valid extraction.
func (a *Assembler) enrich(ctx context.Context, article *Article) {
	if a.enricher == nil {
		return
	}

	enrichment, err := a.enricher.Enrich(ctx, article.Content)
	if err != nil {
		slog.Warn("Enrichment failed, storing article without analysis", "url", article.SourceURL, "error", err)
		return
	}

	article.Entities = enrichment.Entities
	article.DifficultyScore = enrichment.DifficultyScore
}

// countWords counts word tokens using Unicode word segmentation, so that
// Spanish punctuation and diacritics are handled correctly.
func countWords(content string) int {
	count := 0
	tokens := words.FromString(content)
	for tokens.Next() {
		if isWordToken(tokens.Value()) {
			count++
		}
	}
	return count
}

// isWordToken filters out the whitespace and punctuation tokens the segmenter
// also yields.
func isWordToken(token string) bool {
	for _, r := range token {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// looksLikeHTML is a cheap markup sniff: it distinguishes HTML pages from
// JSON, plain text, or binary payloads without a full parse. Any markup-like
// payload still goes through both extraction strategies.
func looksLikeHTML(payload []byte) bool {
	trimmed := bytes.TrimLeft(payload, " \t\r\n")
	if len(trimmed) == 0 {
		return false
	}
	if trimmed[0] == '<' {
		return true
	}

	head := trimmed
	if len(head) > 512 {
		head = head[:512]
	}
	lower := strings.ToLower(string(head))
	return strings.Contains(lower, "<html") || strings.Contains(lower, "<!doctype")
}
