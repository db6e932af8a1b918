package database

import (
	"time"

	"github.com/bjpl/openlearn/app/extract"
)

type SourceRepository interface {
	GetSource(name string) (*Source, error)
	GetSources() ([]Source, error)
	GetSourceCount() (int, error)

	UpsertSource(name, publisher, feedURL, siteURL string, enabled bool) error
	UpdateFetchSchedule(name string, lastFetched time.Time, nextFetch time.Time) error
}

type ArticleRepository interface {
	HasArticle(sourceURL string) (bool, error)
	UpsertArticle(article extract.Article) error

	GetArticle(id string) (*Article, error)
	GetRecentArticles(source string, category string, limit int) ([]Article, error)
	GetArticleCount() (int, error)
	GetArticleCountBySource() (map[string]int, error)

	RecordFailure(source string, url string, reason string) error
	GetFailureCount() (int, error)
	GetRecentFailures(limit int) ([]ExtractionFailure, error)
}
