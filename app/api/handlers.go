package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bjpl/openlearn/app/database"
	"github.com/bjpl/openlearn/app/extract"
	"github.com/bjpl/openlearn/app/feed"
	"github.com/bjpl/openlearn/app/fetch"
	"github.com/bjpl/openlearn/app/sources"
	"github.com/bjpl/openlearn/app/tasks"
)

const defaultArticleLimit = 50
const maxArticleLimit = 200

func NewHandler(configCache *sources.ConfigCache, sourceRepo database.SourceRepository,
	articleRepo database.ArticleRepository, scheduler tasks.TaskSchedulerInterface,
	fetcher *fetch.Client, parser *feed.Parser, assembler *extract.Assembler) *Handler {
	return &Handler{
		sourceRepo:  sourceRepo,
		articleRepo: articleRepo,
		configCache: configCache,
		scheduler:   scheduler,
		fetcher:     fetcher,
		parser:      parser,
		assembler:   assembler,
	}
}

func (h *Handler) GetArticles(c *gin.Context) {
	source := c.Query("source")
	category := c.Query("category")

	limit := defaultArticleLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter"})
			return
		}
		limit = parsed
	}
	if limit > maxArticleLimit {
		limit = maxArticleLimit
	}

	articles, err := h.articleRepo.GetRecentArticles(source, category, limit)
	if err != nil {
		slog.Error("Database error", "operation", "get_articles", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	responses := make([]ArticleResponse, 0, len(articles))
	for _, article := range articles {
		responses = append(responses, articleResponse(article))
	}

	c.JSON(http.StatusOK, gin.H{
		"articles": responses,
		"total":    len(responses),
	})
}

func (h *Handler) GetArticle(c *gin.Context) {
	id := c.Param("id")

	article, err := h.articleRepo.GetArticle(id)
	if err != nil {
		slog.Error("Database error", "operation", "get_article", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if article == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
		return
	}

	c.JSON(http.StatusOK, articleResponse(*article))
}

func (h *Handler) GetSources(c *gin.Context) {
	configs := h.configCache.GetConfigs()

	sourceInfos := make([]map[string]interface{}, 0, len(configs))
	for _, sourceConfig := range configs {
		info := map[string]interface{}{
			"name":             sourceConfig.Name,
			"publisher":        sourceConfig.Publisher,
			"feed_url":         sourceConfig.FeedURL,
			"enabled":          sourceConfig.Settings.Enabled,
			"max_articles":     sourceConfig.Settings.MaxArticles,
			"refresh_interval": (time.Duration(sourceConfig.Settings.RefreshInterval) * time.Second).String(),
		}

		if source, err := h.sourceRepo.GetSource(sourceConfig.Name); err == nil && source != nil {
			info["last_fetched_at"] = source.LastFetchedAt
			info["next_fetch_at"] = source.NextFetchAt
		}

		sourceInfos = append(sourceInfos, info)
	}

	c.JSON(http.StatusOK, gin.H{
		"sources": sourceInfos,
		"total":   len(sourceInfos),
	})
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if sourceCount, err := h.sourceRepo.GetSourceCount(); err == nil {
		health["sources"] = sourceCount
	}

	health["loaded_configurations"] = h.configCache.GetConfigCount()

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats := map[string]interface{}{}

	if total, err := h.articleRepo.GetArticleCount(); err == nil {
		stats["articles"] = total
	}
	if bySource, err := h.articleRepo.GetArticleCountBySource(); err == nil {
		stats["articles_by_source"] = bySource
	}
	if failures, err := h.articleRepo.GetFailureCount(); err == nil {
		stats["extraction_failures"] = failures
	}

	if recent, err := h.articleRepo.GetRecentFailures(10); err == nil {
		failureInfos := make([]map[string]interface{}, 0, len(recent))
		for _, f := range recent {
			failureInfos = append(failureInfos, map[string]interface{}{
				"source":      f.Source,
				"url":         f.URL,
				"reason":      f.Reason,
				"occurred_at": f.OccurredAt,
			})
		}
		stats["recent_failures"] = failureInfos
	}

	c.JSON(http.StatusOK, stats)
}

// APIRefreshSource enqueues an immediate fetch of one source, bypassing
// its refresh schedule
func (h *Handler) APIRefreshSource(c *gin.Context) {
	name := c.Param("name")

	sourceConfig, err := h.configCache.GetConfig(name)
	if err != nil {
		slog.Error("Source configuration not found", "source", name, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Source configuration not found"})
		return
	}

	if !sourceConfig.Settings.Enabled {
		c.JSON(http.StatusConflict, gin.H{"error": "Source is disabled"})
		return
	}

	task := tasks.NewProcessSourceTask(name, sourceConfig, h.fetcher, h.parser, h.assembler, h.sourceRepo, h.articleRepo)
	if err := h.scheduler.EnqueueTask(task); err != nil {
		slog.Error("Failed to enqueue refresh task", "source", name, "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Task queue is full"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message": "Refresh scheduled",
		"source":  name,
	})
}
