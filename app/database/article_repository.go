package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bjpl/openlearn/app/extract"
)

// ArticleRepositoryImpl handles database operations for extracted articles
type ArticleRepositoryImpl struct {
	db *DB
}

// NewArticleRepository creates a new article repository
func NewArticleRepository(db *DB) *ArticleRepositoryImpl {
	return &ArticleRepositoryImpl{db: db}
}

// HasArticle reports whether an article with the given source URL is already stored
func (r *ArticleRepositoryImpl) HasArticle(sourceURL string) (bool, error) {
	var id string
	err := r.db.QueryRow("SELECT id FROM articles WHERE source_url = ? LIMIT 1", sourceURL).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check article: %w", err)
	}
	return true, nil
}

// UpsertArticle stores an extracted article, replacing any earlier
// extraction of the same page
func (r *ArticleRepositoryImpl) UpsertArticle(article extract.Article) error {
	now := encodeTime(time.Now())
	_, err := r.db.Exec(`
		INSERT INTO articles (
			id, source, source_url, category, title, subtitle, content,
			author, published_at, tags, image_urls, entities,
			word_count, difficulty_score, fetched_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (source_url) DO UPDATE SET
			category = excluded.category,
			title = excluded.title,
			subtitle = excluded.subtitle,
			content = excluded.content,
			author = excluded.author,
			published_at = excluded.published_at,
			tags = excluded.tags,
			image_urls = excluded.image_urls,
			entities = excluded.entities,
			word_count = excluded.word_count,
			difficulty_score = excluded.difficulty_score,
			fetched_at = excluded.fetched_at
	`, uuid.New().String(), article.Source, article.SourceURL, article.Category,
		article.Title, article.Subtitle, article.Content, article.Author,
		encodeNullTime(article.PublishedAt), encodeList(article.Tags),
		encodeList(article.ImageURLs), encodeList(article.Entities),
		article.WordCount, article.DifficultyScore, now, now)

	if err != nil {
		return fmt.Errorf("failed to upsert article: %w", err)
	}

	return nil
}

// GetArticle returns a stored article by id
func (r *ArticleRepositoryImpl) GetArticle(id string) (*Article, error) {
	row := r.db.QueryRow(articleSelect+" WHERE id = ?", id)

	article, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get article: %w", err)
	}

	return article, nil
}

// GetRecentArticles returns the most recent articles, optionally filtered
// by source and category. Articles without a publication date sort by the
// time they were fetched.
func (r *ArticleRepositoryImpl) GetRecentArticles(source string, category string, limit int) ([]Article, error) {
	query := articleSelect + " WHERE 1=1"
	var args []interface{}

	if source != "" {
		query += " AND source = ?"
		args = append(args, source)
	}
	if category != "" {
		query += " AND category = ?"
		args = append(args, category)
	}

	query += " ORDER BY COALESCE(published_at, fetched_at) DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent articles: %w", err)
	}
	defer rows.Close()

	var articles []Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article row: %w", err)
		}
		articles = append(articles, *article)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating article rows: %w", err)
	}

	return articles, nil
}

// GetArticleCount returns the total number of stored articles
func (r *ArticleRepositoryImpl) GetArticleCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM articles").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get article count: %w", err)
	}
	return count, nil
}

// GetArticleCountBySource returns per-source article counts
func (r *ArticleRepositoryImpl) GetArticleCountBySource() (map[string]int, error) {
	rows, err := r.db.Query("SELECT source, COUNT(*) FROM articles GROUP BY source")
	if err != nil {
		return nil, fmt.Errorf("failed to get article counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var source string
		var count int
		if err := rows.Scan(&source, &count); err != nil {
			return nil, fmt.Errorf("failed to scan count row: %w", err)
		}
		counts[source] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating count rows: %w", err)
	}

	return counts, nil
}

// RecordFailure stores an extraction failure for later inspection
func (r *ArticleRepositoryImpl) RecordFailure(source string, url string, reason string) error {
	_, err := r.db.Exec(`
		INSERT INTO extraction_failures (id, source, url, reason, occurred_at)
		VALUES (?, ?, ?, ?, ?)
	`, uuid.New().String(), source, url, reason, encodeTime(time.Now()))

	if err != nil {
		return fmt.Errorf("failed to record failure: %w", err)
	}

	return nil
}

// GetFailureCount returns the total number of recorded extraction failures
func (r *ArticleRepositoryImpl) GetFailureCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM extraction_failures").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get failure count: %w", err)
	}
	return count, nil
}

// GetRecentFailures returns the most recent extraction failures
func (r *ArticleRepositoryImpl) GetRecentFailures(limit int) ([]ExtractionFailure, error) {
	rows, err := r.db.Query(`
		SELECT id, source, url, reason, occurred_at
		FROM extraction_failures
		ORDER BY occurred_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent failures: %w", err)
	}
	defer rows.Close()

	var failures []ExtractionFailure
	for rows.Next() {
		var f ExtractionFailure
		var occurredAt string
		if err := rows.Scan(&f.ID, &f.Source, &f.URL, &f.Reason, &occurredAt); err != nil {
			return nil, fmt.Errorf("failed to scan failure row: %w", err)
		}
		f.OccurredAt = decodeTime(occurredAt)
		failures = append(failures, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating failure rows: %w", err)
	}

	return failures, nil
}

const articleSelect = `
	SELECT id, source, source_url, category, title, subtitle, content,
	       author, published_at, tags, image_urls, entities,
	       word_count, difficulty_score, fetched_at, created_at
	FROM articles`

func scanArticle(row rowScanner) (*Article, error) {
	var article Article
	var publishedAt sql.NullString
	var tags, imageURLs, entities string
	var fetchedAt, createdAt string

	err := row.Scan(
		&article.ID, &article.Source, &article.SourceURL, &article.Category,
		&article.Title, &article.Subtitle, &article.Content, &article.Author,
		&publishedAt, &tags, &imageURLs, &entities,
		&article.WordCount, &article.DifficultyScore, &fetchedAt, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	article.PublishedAt = decodeNullTime(publishedAt)
	article.Tags = decodeList(tags)
	article.ImageURLs = decodeList(imageURLs)
	article.Entities = decodeList(entities)
	article.FetchedAt = decodeTime(fetchedAt)
	article.CreatedAt = decodeTime(createdAt)

	return &article, nil
}
