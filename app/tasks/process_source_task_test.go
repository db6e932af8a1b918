package tasks

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bjpl/openlearn/app/database"
	"github.com/bjpl/openlearn/app/enrich"
	"github.com/bjpl/openlearn/app/extract"
	"github.com/bjpl/openlearn/app/feed"
	"github.com/bjpl/openlearn/app/fetch"
	"github.com/bjpl/openlearn/app/sources"
)

type mockSourceRepo struct {
	upserted  []string
	schedules map[string]time.Time
}

var _ database.SourceRepository = (*mockSourceRepo)(nil)

func newMockSourceRepo() *mockSourceRepo {
	return &mockSourceRepo{schedules: make(map[string]time.Time)}
}

func (m *mockSourceRepo) GetSource(name string) (*database.Source, error) {
	return nil, nil
}

func (m *mockSourceRepo) GetSources() ([]database.Source, error) {
	return nil, nil
}

func (m *mockSourceRepo) GetSourceCount() (int, error) {
	return len(m.upserted), nil
}

func (m *mockSourceRepo) UpsertSource(name, publisher, feedURL, siteURL string, enabled bool) error {
	m.upserted = append(m.upserted, name)
	return nil
}

func (m *mockSourceRepo) UpdateFetchSchedule(name string, lastFetched time.Time, nextFetch time.Time) error {
	m.schedules[name] = nextFetch
	return nil
}

type mockArticleRepo struct {
	articles map[string]extract.Article
	failures []database.ExtractionFailure
}

var _ database.ArticleRepository = (*mockArticleRepo)(nil)

func newMockArticleRepo() *mockArticleRepo {
	return &mockArticleRepo{articles: make(map[string]extract.Article)}
}

func (m *mockArticleRepo) HasArticle(sourceURL string) (bool, error) {
	_, ok := m.articles[sourceURL]
	return ok, nil
}

func (m *mockArticleRepo) UpsertArticle(article extract.Article) error {
	m.articles[article.SourceURL] = article
	return nil
}

func (m *mockArticleRepo) GetArticle(id string) (*database.Article, error) {
	return nil, nil
}

func (m *mockArticleRepo) GetRecentArticles(source, category string, limit int) ([]database.Article, error) {
	return nil, nil
}

func (m *mockArticleRepo) GetArticleCount() (int, error) {
	return len(m.articles), nil
}

func (m *mockArticleRepo) GetArticleCountBySource() (map[string]int, error) {
	return nil, nil
}

func (m *mockArticleRepo) RecordFailure(source, url, reason string) error {
	m.failures = append(m.failures, database.ExtractionFailure{Source: source, URL: url, Reason: reason})
	return nil
}

func (m *mockArticleRepo) GetFailureCount() (int, error) {
	return len(m.failures), nil
}

func (m *mockArticleRepo) GetRecentFailures(limit int) ([]database.ExtractionFailure, error) {
	return m.failures, nil
}

const taskTestArticleHTML = `<!DOCTYPE html>
<html><head>
<script type="application/ld+json">
{
  "@type": "NewsArticle",
  "headline": "%s",
  "articleBody": "El gobierno nacional presentó el nuevo plan de desarrollo para los próximos cuatro años.",
  "datePublished": "2025-10-28T10:00:00-05:00",
  "author": {"@type": "Person", "name": "Laura Gómez"}
}
</script>
</head><body><p>contenido</p></body></html>`

func newSourceServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "User-agent: *\nAllow: /\n")
	})
	mux.HandleFunc("/articulo/", func(w http.ResponseWriter, r *http.Request) {
		title := strings.TrimPrefix(r.URL.Path, "/articulo/")
		fmt.Fprintf(w, taskTestArticleHTML, "Artículo "+title)
	})
	mux.HandleFunc("/listado", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<!DOCTYPE html><html><body><ul><li>enlace</li></ul></body></html>")
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	mux.HandleFunc("/feed.xml", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<?xml version="1.0"?>
<rss version="2.0"><channel>
<title>Noticias</title>
<item><title>Uno</title><link>%s/articulo/uno</link></item>
<item><title>Dos</title><link>%s/articulo/dos</link></item>
<item><title>Listado</title><link>%s/listado</link></item>
</channel></rss>`, server.URL, server.URL, server.URL)
	})

	return server
}

func newTestSourceConfig(name, feedURL string) *sources.Config {
	return &sources.Config{
		Name:      name,
		Publisher: "Prensa de Prueba",
		FeedURL:   feedURL,
		Locale:    "es",
		Settings: sources.Settings{
			Enabled:         true,
			RefreshInterval: 3600,
			MaxArticles:     50,
			Timeout:         10,
		},
	}
}

func newTestTask(config *sources.Config, sourceRepo database.SourceRepository, articleRepo database.ArticleRepository) *ProcessSourceTask {
	fetcher := fetch.NewClient(fetch.DefaultHTTPClient(), "OpenLearn Colombia/1.0", 100, 10)
	assembler := extract.NewAssembler(enrich.NewAnalyzer())
	return NewProcessSourceTask(config.Name, config, fetcher, feed.NewParser(), assembler, sourceRepo, articleRepo)
}

func TestProcessSourceTaskStoresArticles(t *testing.T) {
	server := newSourceServer(t)
	sourceRepo := newMockSourceRepo()
	articleRepo := newMockArticleRepo()

	config := newTestSourceConfig("prueba", server.URL+"/feed.xml")
	task := newTestTask(config, sourceRepo, articleRepo)
	task.Start()

	if err := task.Execute(context.Background()); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	if len(articleRepo.articles) != 2 {
		t.Errorf("Expected 2 stored articles, got %d", len(articleRepo.articles))
	}

	stored, ok := articleRepo.articles[server.URL+"/articulo/uno"]
	if !ok {
		t.Fatal("Expected article for /articulo/uno")
	}
	if stored.Source != "prueba" {
		t.Errorf("Expected source prueba, got %q", stored.Source)
	}
	if stored.Title != "Artículo uno" {
		t.Errorf("Expected title from structured data, got %q", stored.Title)
	}
	if stored.PublishedAt == nil {
		t.Error("Expected published date from structured data")
	}

	// The listing page has no extractable article and must be recorded
	// as a failure without aborting the batch
	if len(articleRepo.failures) != 1 {
		t.Fatalf("Expected 1 failure, got %d", len(articleRepo.failures))
	}
	if articleRepo.failures[0].URL != server.URL+"/listado" {
		t.Errorf("Expected failure for listing page, got %q", articleRepo.failures[0].URL)
	}

	if _, ok := sourceRepo.schedules["prueba"]; !ok {
		t.Error("Expected fetch schedule to be updated")
	}
}

func TestProcessSourceTaskSkipsStoredArticles(t *testing.T) {
	server := newSourceServer(t)
	sourceRepo := newMockSourceRepo()
	articleRepo := newMockArticleRepo()
	articleRepo.articles[server.URL+"/articulo/uno"] = extract.Article{SourceURL: server.URL + "/articulo/uno"}

	config := newTestSourceConfig("prueba", server.URL+"/feed.xml")
	task := newTestTask(config, sourceRepo, articleRepo)
	task.Start()

	if err := task.Execute(context.Background()); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	// The already stored article keeps its empty placeholder title,
	// proving it was not refetched
	if articleRepo.articles[server.URL+"/articulo/uno"].Title != "" {
		t.Error("Expected already stored article to be skipped")
	}
	if articleRepo.articles[server.URL+"/articulo/dos"].Title != "Artículo dos" {
		t.Error("Expected new article to be stored")
	}
}

func TestProcessSourceTaskDisabledSource(t *testing.T) {
	sourceRepo := newMockSourceRepo()
	articleRepo := newMockArticleRepo()

	config := newTestSourceConfig("prueba", "http://127.0.0.1:0/feed.xml")
	config.Settings.Enabled = false
	task := newTestTask(config, sourceRepo, articleRepo)
	task.Start()

	if err := task.Execute(context.Background()); err != nil {
		t.Fatalf("Execute() error for disabled source: %v", err)
	}
	if len(articleRepo.articles) != 0 {
		t.Error("Expected no articles for disabled source")
	}
}

func TestProcessSourceTaskMaxArticles(t *testing.T) {
	server := newSourceServer(t)
	sourceRepo := newMockSourceRepo()
	articleRepo := newMockArticleRepo()

	config := newTestSourceConfig("prueba", server.URL+"/feed.xml")
	config.Settings.MaxArticles = 1
	task := newTestTask(config, sourceRepo, articleRepo)
	task.Start()

	if err := task.Execute(context.Background()); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	if len(articleRepo.articles) != 1 {
		t.Errorf("Expected 1 stored article with max_articles=1, got %d", len(articleRepo.articles))
	}
}

func TestProcessSourceTaskFeedFetchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			fmt.Fprint(w, "User-agent: *\nAllow: /\n")
			return
		}
		http.Error(w, "gone", http.StatusGone)
	}))
	defer server.Close()

	sourceRepo := newMockSourceRepo()
	articleRepo := newMockArticleRepo()

	config := newTestSourceConfig("prueba", server.URL+"/feed.xml")
	task := newTestTask(config, sourceRepo, articleRepo)
	task.Start()

	err := task.Execute(context.Background())
	if err == nil {
		t.Fatal("Expected error when feed fetch fails")
	}
	if !strings.Contains(err.Error(), "failed to fetch feed") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestSyncSourceConfigTask(t *testing.T) {
	sourceRepo := newMockSourceRepo()

	config := newTestSourceConfig("eltiempo", "https://www.eltiempo.com/rss/colombia.xml")
	task := NewSyncSourceConfigTask("eltiempo", config, sourceRepo)
	task.Start()

	if err := task.Execute(context.Background()); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	if len(sourceRepo.upserted) != 1 || sourceRepo.upserted[0] != "eltiempo" {
		t.Errorf("Expected source to be upserted, got %v", sourceRepo.upserted)
	}
}

func TestTaskRetryBookkeeping(t *testing.T) {
	task := NewTask(TaskTypeProcessSource, "prueba")

	if task.GetRetryCount() != 0 {
		t.Errorf("Expected retry count 0, got %d", task.GetRetryCount())
	}
	if !task.CanRetry() {
		t.Error("Expected a fresh task to be retryable")
	}

	for i := 0; i < DefaultMaxRetries; i++ {
		task.IncrementRetryCount()
	}
	if task.CanRetry() {
		t.Error("Expected task to be exhausted after max retries")
	}

	other := NewTask(TaskTypeProcessSource, "prueba")
	if task.GetID() == other.GetID() {
		t.Error("Expected distinct task IDs")
	}
}
