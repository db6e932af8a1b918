package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SourceRepositoryImpl handles database operations for news sources
type SourceRepositoryImpl struct {
	db *DB
}

// NewSourceRepository creates a new source repository
func NewSourceRepository(db *DB) *SourceRepositoryImpl {
	return &SourceRepositoryImpl{db: db}
}

// UpsertSource inserts a source row or refreshes its configuration fields
func (r *SourceRepositoryImpl) UpsertSource(name, publisher, feedURL, siteURL string, enabled bool) error {
	now := encodeTime(time.Now())
	_, err := r.db.Exec(`
		INSERT INTO sources (id, name, publisher, feed_url, url, enabled, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET
			publisher = excluded.publisher,
			feed_url = excluded.feed_url,
			url = excluded.url,
			enabled = excluded.enabled,
			updated_at = excluded.updated_at
	`, uuid.New().String(), name, publisher, feedURL, siteURL, enabled, now, now)

	if err != nil {
		return fmt.Errorf("failed to upsert source: %w", err)
	}

	return nil
}

// GetSource returns a source by its configuration name
func (r *SourceRepositoryImpl) GetSource(name string) (*Source, error) {
	row := r.db.QueryRow(`
		SELECT id, name, publisher, feed_url, url, enabled,
		       last_fetched_at, next_fetch_at, created_at, updated_at
		FROM sources
		WHERE name = ?
	`, name)

	source, err := scanSource(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get source: %w", err)
	}

	return source, nil
}

// GetSources returns all known sources ordered by name
func (r *SourceRepositoryImpl) GetSources() ([]Source, error) {
	rows, err := r.db.Query(`
		SELECT id, name, publisher, feed_url, url, enabled,
		       last_fetched_at, next_fetch_at, created_at, updated_at
		FROM sources
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get sources: %w", err)
	}
	defer rows.Close()

	var sources []Source
	for rows.Next() {
		source, err := scanSource(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan source row: %w", err)
		}
		sources = append(sources, *source)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating source rows: %w", err)
	}

	return sources, nil
}

// GetSourceCount returns the total number of sources
func (r *SourceRepositoryImpl) GetSourceCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM sources").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get source count: %w", err)
	}
	return count, nil
}

// UpdateFetchSchedule records a completed fetch and when the next one is due
func (r *SourceRepositoryImpl) UpdateFetchSchedule(name string, lastFetched time.Time, nextFetch time.Time) error {
	_, err := r.db.Exec(`
		UPDATE sources
		SET last_fetched_at = ?, next_fetch_at = ?, updated_at = ?
		WHERE name = ?
	`, encodeTime(lastFetched), encodeTime(nextFetch), encodeTime(time.Now()), name)

	if err != nil {
		return fmt.Errorf("failed to update fetch schedule: %w", err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSource(row rowScanner) (*Source, error) {
	var source Source
	var lastFetched, nextFetch sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(
		&source.ID, &source.Name, &source.Publisher, &source.FeedURL,
		&source.URL, &source.Enabled, &lastFetched, &nextFetch,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	source.LastFetchedAt = decodeNullTime(lastFetched)
	source.NextFetchAt = decodeNullTime(nextFetch)
	source.CreatedAt = decodeTime(createdAt)
	source.UpdatedAt = decodeTime(updatedAt)

	return &source, nil
}
