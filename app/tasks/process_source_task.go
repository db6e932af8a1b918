package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bjpl/openlearn/app/database"
	"github.com/bjpl/openlearn/app/extract"
	"github.com/bjpl/openlearn/app/feed"
	"github.com/bjpl/openlearn/app/fetch"
	"github.com/bjpl/openlearn/app/sources"
)

// ProcessSourceTask fetches a source's feed, extracts every new article
// page it links to and stores the results. A single bad page never aborts
// the batch; failures are recorded per URL.
type ProcessSourceTask struct {
	Task
	SourceConfig *sources.Config
	fetcher      *fetch.Client
	parser       *feed.Parser
	assembler    *extract.Assembler
	sourceRepo   database.SourceRepository
	articleRepo  database.ArticleRepository
}

func NewProcessSourceTask(sourceName string, sourceConfig *sources.Config, fetcher *fetch.Client,
	parser *feed.Parser, assembler *extract.Assembler,
	sourceRepo database.SourceRepository, articleRepo database.ArticleRepository) *ProcessSourceTask {
	return &ProcessSourceTask{
		Task:         NewTask(TaskTypeProcessSource, sourceName),
		SourceConfig: sourceConfig,
		fetcher:      fetcher,
		parser:       parser,
		assembler:    assembler,
		sourceRepo:   sourceRepo,
		articleRepo:  articleRepo,
	}
}

func (t *ProcessSourceTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.SourceConfig.Settings.Enabled {
		slog.Debug("Source disabled, skipping", "source", t.SourceName)
		return nil
	}

	fetchCtx, cancel := context.WithTimeout(ctx, time.Duration(t.SourceConfig.Settings.Timeout)*time.Second)
	data, err := t.fetcher.Get(fetchCtx, t.SourceConfig.FeedURL)
	cancel()
	if err != nil {
		return fmt.Errorf("failed to fetch feed: %w", err)
	}

	candidates, err := t.parser.Run(data)
	if err != nil {
		return fmt.Errorf("failed to parse feed: %w", err)
	}

	if max := t.SourceConfig.Settings.MaxArticles; max > 0 && len(candidates) > max {
		candidates = candidates[:max]
	}

	skippedCount := 0
	storedCount := 0
	failedCount := 0

	for _, candidate := range candidates {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		exists, err := t.articleRepo.HasArticle(candidate.URL)
		if err != nil {
			return fmt.Errorf("failed to check stored articles: %w", err)
		}
		if exists {
			skippedCount++
			continue
		}

		if t.processCandidate(ctx, candidate) {
			storedCount++
		} else {
			failedCount++
		}
	}

	if err := t.updateSchedule(); err != nil {
		return err
	}

	slog.Info("Task completed",
		"type", "ProcessSource",
		"source", t.SourceName,
		"duration", t.GetDuration(),
		"total", len(candidates),
		"skipped", skippedCount,
		"stored", storedCount,
		"failed", failedCount)

	return nil
}

// processCandidate handles one candidate URL end to end and reports
// whether an article was stored. Failures are recorded, never propagated,
// so one broken page cannot take down the rest of the batch.
func (t *ProcessSourceTask) processCandidate(ctx context.Context, candidate feed.Candidate) bool {
	fetchCtx, cancel := context.WithTimeout(ctx, time.Duration(t.SourceConfig.Settings.Timeout)*time.Second)
	defer cancel()

	html, err := t.fetcher.Get(fetchCtx, candidate.URL)
	if err != nil {
		slog.Warn("Failed to fetch article page", "source", t.SourceName, "url", candidate.URL, "error", err)
		t.recordFailure(candidate.URL, fmt.Sprintf("fetch failed: %s", err))
		return false
	}

	result := t.assembler.Run(ctx, extract.RawPage{URL: candidate.URL, HTML: html}, t.SourceConfig)
	if !result.OK() {
		slog.Warn("Extraction failed", "source", t.SourceName, "url", result.URL, "reason", result.Reason)
		t.recordFailure(result.URL, result.Reason)
		return false
	}

	article := *result.Article
	if article.Category == "" && len(candidate.Categories) > 0 {
		article.Category = candidate.Categories[0]
	}
	// The feed's pubDate is publisher data too; use it when the page
	// itself carried no parseable date
	if article.PublishedAt == nil && candidate.PublishedAt != nil {
		article.PublishedAt = candidate.PublishedAt
	}

	if err := t.articleRepo.UpsertArticle(article); err != nil {
		slog.Error("Failed to store article", "source", t.SourceName, "url", article.SourceURL, "error", err)
		t.recordFailure(article.SourceURL, fmt.Sprintf("store failed: %s", err))
		return false
	}

	return true
}

func (t *ProcessSourceTask) recordFailure(url, reason string) {
	if err := t.articleRepo.RecordFailure(t.SourceName, url, reason); err != nil {
		slog.Error("Failed to record extraction failure", "source", t.SourceName, "url", url, "error", err)
	}
}

func (t *ProcessSourceTask) updateSchedule() error {
	now := time.Now().UTC()
	nextFetch := now.Add(time.Duration(t.SourceConfig.Settings.RefreshInterval) * time.Second)

	if err := t.sourceRepo.UpdateFetchSchedule(t.SourceName, now, nextFetch); err != nil {
		return fmt.Errorf("failed to update fetch schedule: %w", err)
	}

	return nil
}
