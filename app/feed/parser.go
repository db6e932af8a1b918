package feed

import (
	"bytes"
	"fmt"
	"time"

	"github.com/mmcdole/gofeed"
)

// Candidate is one article URL discovered in a publisher's feed, with the
// hints the feed itself provides. The page content is always re-extracted
// from the article URL; feed hints only help scheduling and audit.
type Candidate struct {
	URL         string
	Title       string
	PublishedAt *time.Time
	Categories  []string
}

// Parser discovers candidate article URLs from a publisher's RSS/Atom feed.
type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

func (p *Parser) Run(data []byte) ([]Candidate, error) {
	parsed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	candidates := make([]Candidate, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		link := coalesce(item.Link, item.GUID)
		if link == "" {
			continue
		}

		candidate := Candidate{
			URL:        link,
			Title:      item.Title,
			Categories: item.Categories,
		}
		if item.PublishedParsed != nil {
			candidate.PublishedAt = item.PublishedParsed
		}

		candidates = append(candidates, candidate)
	}

	return candidates, nil
}

// coalesce returns the first non-empty string from the provided values
func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
