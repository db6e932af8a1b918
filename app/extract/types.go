package extract

import (
	"errors"
	"time"
)

// RawPage is one fetched page: the HTML payload plus its originating URL.
// It is owned by a single extraction attempt and discarded afterwards.
type RawPage struct {
	URL  string
	HTML []byte
}

// Article is the canonical, source-agnostic record produced by a successful
// extraction. Title and Content are always non-empty; PublishedAt is nil when
// the publication date could not be parsed from source data. Records are
// immutable after assembly; the persistence layer assigns storage identity.
type Article struct {
	Source      string
	SourceURL   string
	Category    string
	Title       string
	Subtitle    string
	Content     string
	Author      string
	PublishedAt *time.Time
	Tags        []string
	ImageURLs   []string

	// Enrichment
	WordCount       int
	DifficultyScore float64
	Entities        []string
}

// Result is the per-URL extraction outcome. A failed result carries the
// candidate URL and a human-readable reason for audit and retry.
type Result struct {
	Article *Article
	URL     string
	Reason  string
}

func (r Result) OK() bool {
	return r.Article != nil
}

var (
	// ErrNoStructuredData means no qualifying linked data block was found.
	ErrNoStructuredData = errors.New("no structured data block found")
	// ErrMissingFields means a block or page lacked title or body content.
	ErrMissingFields = errors.New("required article fields missing")
	// ErrNotFound means the fallback selectors recovered no article.
	ErrNotFound = errors.New("no article found")
	// ErrNotHTML means the payload does not look like an HTML document.
	ErrNotHTML = errors.New("payload is not HTML")
)
