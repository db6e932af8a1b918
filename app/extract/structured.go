package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Schema.org type families accepted as article descriptions.
var articleTypes = map[string]bool{
	"Article":               true,
	"NewsArticle":           true,
	"ReportageNewsArticle":  true,
	"BackgroundNewsArticle": true,
	"AnalysisNewsArticle":   true,
	"OpinionNewsArticle":    true,
	"ReviewNewsArticle":     true,
	"LiveBlogPosting":       false, // running feeds, not a single article body
}

// StructuredExtractor recovers article fields from embedded JSON-LD blocks.
// The first structurally valid block of a recognized article type wins;
// blocks are never merged.
type StructuredExtractor struct{}

func NewStructuredExtractor() *StructuredExtractor {
	return &StructuredExtractor{}
}

func (e *StructuredExtractor) Run(page RawPage, locale string) (*Article, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.HTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var article *Article

	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(i int, s *goquery.Selection) bool {
		blocks, err := decodeLinkedData(s.Text())
		if err != nil {
			slog.Debug("Skipping malformed linked data block", "url", page.URL, "block", i, "error", err)
			return true
		}

		for _, block := range blocks {
			if !isArticleType(block["@type"]) {
				continue
			}

			candidate, err := e.mapBlock(block, page, locale)
			if err != nil {
				slog.Debug("Skipping incomplete article block", "url", page.URL, "block", i, "error", err)
				continue
			}

			article = candidate
			return false
		}
		return true
	})

	if article == nil {
		return nil, ErrNoStructuredData
	}
	return article, nil
}

// mapBlock maps a single linked data object into an article draft. Headline
// and body are mandatory; everything else is best-effort.
func (e *StructuredExtractor) mapBlock(block map[string]any, page RawPage, locale string) (*Article, error) {
	title := strings.TrimSpace(stringField(block["headline"]))
	body := strings.TrimSpace(stringField(block["articleBody"]))
	if title == "" || body == "" {
		return nil, fmt.Errorf("%w: headline or articleBody empty", ErrMissingFields)
	}

	article := &Article{
		SourceURL:   page.URL,
		Title:       title,
		Content:     body,
		Subtitle:    strings.TrimSpace(stringField(block["description"])),
		Category:    strings.TrimSpace(stringField(block["articleSection"])),
		Author:      firstAuthorName(block["author"]),
		Tags:        keywordList(block["keywords"]),
		ImageURLs:   imageURLList(block["image"]),
		PublishedAt: NormalizeDate(stringField(block["datePublished"]), locale),
	}

	return article, nil
}

// decodeLinkedData parses a script payload into a flat list of candidate
// objects, unwrapping top-level arrays and @graph containers.
func decodeLinkedData(raw string) ([]map[string]any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("empty linked data payload")
	}

	var root any
	if err := json.Unmarshal([]byte(raw), &root); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	var blocks []map[string]any
	collect := func(v any) {
		if m, ok := v.(map[string]any); ok {
			blocks = append(blocks, m)
			if graph, ok := m["@graph"].([]any); ok {
				for _, g := range graph {
					if gm, ok := g.(map[string]any); ok {
						blocks = append(blocks, gm)
					}
				}
			}
		}
	}

	switch v := root.(type) {
	case []any:
		for _, item := range v {
			collect(item)
		}
	default:
		collect(v)
	}

	if len(blocks) == 0 {
		return nil, fmt.Errorf("no objects in linked data payload")
	}
	return blocks, nil
}

// isArticleType accepts @type values given as a string or an array of strings.
func isArticleType(v any) bool {
	switch t := v.(type) {
	case string:
		return articleTypes[t]
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && articleTypes[s] {
				return true
			}
		}
	}
	return false
}

// stringField tolerates values given as a bare string or a one-element array,
// both seen in publisher markup.
func stringField(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		if len(t) > 0 {
			if s, ok := t[0].(string); ok {
				return s
			}
		}
	}
	return ""
}

// firstAuthorName handles the author field's common shapes: a person object,
// an array of person objects or names, or a bare name string.
func firstAuthorName(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case map[string]any:
		return strings.TrimSpace(stringField(t["name"]))
	case []any:
		for _, item := range t {
			if name := firstAuthorName(item); name != "" {
				return name
			}
		}
	}
	return ""
}

// keywordList handles keywords given as a comma-separated string or an array.
func keywordList(v any) []string {
	var raw []string
	switch t := v.(type) {
	case string:
		raw = strings.Split(t, ",")
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok {
				raw = append(raw, s)
			}
		}
	}

	var tags []string
	for _, k := range raw {
		if k = strings.TrimSpace(k); k != "" {
			tags = append(tags, k)
		}
	}
	return tags
}

// imageURLList handles images given as a URL string, an ImageObject, or an
// array of either. Order is preserved; the first entry is the primary image.
func imageURLList(v any) []string {
	var urls []string
	switch t := v.(type) {
	case string:
		if t = strings.TrimSpace(t); t != "" {
			urls = append(urls, t)
		}
	case map[string]any:
		if u := strings.TrimSpace(stringField(t["url"])); u != "" {
			urls = append(urls, u)
		}
	case []any:
		for _, item := range t {
			urls = append(urls, imageURLList(item)...)
		}
	}
	return urls
}
