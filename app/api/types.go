package api

import (
	"time"

	"github.com/bjpl/openlearn/app/database"
	"github.com/bjpl/openlearn/app/extract"
	"github.com/bjpl/openlearn/app/feed"
	"github.com/bjpl/openlearn/app/fetch"
	"github.com/bjpl/openlearn/app/sources"
	"github.com/bjpl/openlearn/app/tasks"
)

type Handler struct {
	sourceRepo  database.SourceRepository
	articleRepo database.ArticleRepository
	configCache *sources.ConfigCache
	scheduler   tasks.TaskSchedulerInterface
	fetcher     *fetch.Client
	parser      *feed.Parser
	assembler   *extract.Assembler
}

// ArticleResponse is the JSON shape of one extracted article.
// PublishedAt is null when the publication date could not be recovered
// from source data.
type ArticleResponse struct {
	ID              string     `json:"id"`
	Source          string     `json:"source"`
	SourceURL       string     `json:"source_url"`
	Category        string     `json:"category,omitempty"`
	Title           string     `json:"title"`
	Subtitle        string     `json:"subtitle,omitempty"`
	Content         string     `json:"content"`
	Author          string     `json:"author,omitempty"`
	PublishedAt     *time.Time `json:"published_at"`
	Tags            []string   `json:"tags,omitempty"`
	ImageURLs       []string   `json:"image_urls,omitempty"`
	Entities        []string   `json:"entities,omitempty"`
	WordCount       int        `json:"word_count"`
	DifficultyScore float64    `json:"difficulty_score"`
	FetchedAt       time.Time  `json:"fetched_at"`
}

func articleResponse(a database.Article) ArticleResponse {
	return ArticleResponse{
		ID:              a.ID,
		Source:          a.Source,
		SourceURL:       a.SourceURL,
		Category:        a.Category,
		Title:           a.Title,
		Subtitle:        a.Subtitle,
		Content:         a.Content,
		Author:          a.Author,
		PublishedAt:     a.PublishedAt,
		Tags:            a.Tags,
		ImageURLs:       a.ImageURLs,
		Entities:        a.Entities,
		WordCount:       a.WordCount,
		DifficultyScore: a.DifficultyScore,
		FetchedAt:       a.FetchedAt,
	}
}
