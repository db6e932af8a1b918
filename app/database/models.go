package database

import (
	"time"
)

// Source represents a news source record in the database
type Source struct {
	ID            string // Database UUID
	Name          string // Configuration source name
	Publisher     string
	FeedURL       string
	URL           string
	Enabled       bool
	LastFetchedAt *time.Time
	NextFetchAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Article represents a stored article record
type Article struct {
	ID              string
	Source          string
	SourceURL       string
	Category        string
	Title           string
	Subtitle        string
	Content         string
	Author          string
	PublishedAt     *time.Time
	Tags            []string
	ImageURLs       []string
	Entities        []string
	WordCount       int
	DifficultyScore float64
	FetchedAt       time.Time
	CreatedAt       time.Time
}

// ExtractionFailure records a page that could not be turned into an article
type ExtractionFailure struct {
	ID         string
	Source     string
	URL        string
	Reason     string
	OccurredAt time.Time
}
