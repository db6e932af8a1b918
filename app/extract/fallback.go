package extract

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"

	readability "codeberg.org/readeck/go-readability"
	"github.com/PuerkitoBio/goquery"

	"github.com/bjpl/openlearn/app/sources"
)

// FallbackExtractor recovers article fields from page markup using a
// publisher-specific selector set. It is used when a page carries no valid
// structured data. Only title and body are mandatory for a found result;
// missing optional fields never cause an error.
type FallbackExtractor struct{}

func NewFallbackExtractor() *FallbackExtractor {
	return &FallbackExtractor{}
}

func (e *FallbackExtractor) Run(page RawPage, sel sources.Selectors, locale string) (*Article, error) {
	if sel.Empty() {
		return nil, fmt.Errorf("%w: no fallback selectors configured", ErrNotFound)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.HTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	title := selectText(doc, sel.Title)
	body := e.selectBody(doc, page, sel, title != "")

	// A bare <h1> may stand in for the title, but only once the body
	// selector has matched. Without a single selector hit the page shows
	// no article signal, and generic recovery would promote category and
	// listing pages to pseudo-articles.
	if title == "" && body != "" {
		title = strings.TrimSpace(doc.Find("h1").First().Text())
	}
	if title == "" || body == "" {
		return nil, fmt.Errorf("%w: title or body not recoverable", ErrNotFound)
	}

	article := &Article{
		SourceURL: page.URL,
		Title:     title,
		Content:   body,
		Subtitle:  selectText(doc, sel.Subtitle),
		Author:    cleanAuthor(selectText(doc, sel.Author)),
		Category:  selectText(doc, sel.Category),
		Tags:      selectTextAll(doc, sel.Tags),
		ImageURLs: selectAttrAll(doc, sel.Image, "src"),
	}

	if rawDate := e.selectDate(doc, sel); rawDate != "" {
		article.PublishedAt = NormalizeDate(rawDate, locale)
	}

	return article, nil
}

// selectBody joins the text of all body-selector matches. When the selector
// recovers nothing and the strategy allows it, generic readability extraction
// is attempted as a last resort. Readability runs only when the configured
// title selector matched: that match is the signal the page is an article
// and not a listing whose navigation would extract as body text.
func (e *FallbackExtractor) selectBody(doc *goquery.Document, page RawPage, sel sources.Selectors, titleMatched bool) string {
	var paragraphs []string
	if sel.Body != "" {
		doc.Find(sel.Body).Each(func(_ int, s *goquery.Selection) {
			if text := strings.TrimSpace(s.Text()); text != "" {
				paragraphs = append(paragraphs, text)
			}
		})
	}
	if len(paragraphs) > 0 {
		return strings.Join(paragraphs, "\n\n")
	}

	if !sel.UseReadability || !titleMatched {
		return ""
	}

	article, err := readability.FromReader(bytes.NewReader(page.HTML), nil)
	if err != nil {
		slog.Debug("Readability recovery failed", "url", page.URL, "error", err)
		return ""
	}
	return strings.TrimSpace(article.TextContent)
}

func (e *FallbackExtractor) selectDate(doc *goquery.Document, sel sources.Selectors) string {
	if sel.Date == "" {
		return ""
	}

	match := doc.Find(sel.Date).First()
	if sel.DateAttr != "" {
		if v, ok := match.Attr(sel.DateAttr); ok {
			return strings.TrimSpace(v)
		}
		return ""
	}
	return strings.TrimSpace(match.Text())
}

func selectText(doc *goquery.Document, selector string) string {
	if selector == "" {
		return ""
	}
	return strings.TrimSpace(doc.Find(selector).First().Text())
}

func selectTextAll(doc *goquery.Document, selector string) []string {
	if selector == "" {
		return nil
	}

	var values []string
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			values = append(values, text)
		}
	})
	return values
}

func selectAttrAll(doc *goquery.Document, selector, attr string) []string {
	if selector == "" {
		return nil
	}

	var values []string
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		if v, ok := s.Attr(attr); ok {
			if v = strings.TrimSpace(v); v != "" {
				values = append(values, v)
			}
		}
	})
	return values
}

// cleanAuthor strips common byline prefixes like "Por:" or "By".
func cleanAuthor(author string) string {
	for _, prefix := range []string{"Por:", "Por ", "By:", "By "} {
		if strings.HasPrefix(author, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(author, prefix))
		}
	}
	return author
}
