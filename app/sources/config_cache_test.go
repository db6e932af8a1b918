package sources

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigCacheLoadValidConfig(t *testing.T) {
	tempDir := t.TempDir()

	content := `
publisher: "El Tiempo"
url: "https://www.eltiempo.com"
feed_url: "https://www.eltiempo.com/rss/colombia.xml"
locale: "es"

settings:
  enabled: true
  refresh_interval: 1800
  max_articles: 25
  timeout: 15

selectors:
  title: "h1.titulo"
  body: "div.articulo-contenido p"
  author: "span.autor"
  date: "time"
  date_attr: "datetime"
`

	err := os.WriteFile(filepath.Join(tempDir, "eltiempo.yml"), []byte(content), 0644)
	if err != nil {
		t.Fatal(err)
	}

	configCache := NewConfigCache(tempDir)
	err = configCache.Run()
	if err != nil {
		t.Fatal(err)
	}

	if configCache.GetConfigCount() != 1 {
		t.Errorf("Expected 1 source config, got %d", configCache.GetConfigCount())
	}

	sourceConfig, err := configCache.GetConfig("eltiempo")
	if err != nil {
		t.Fatal(err)
	}

	if sourceConfig.Name != "eltiempo" {
		t.Errorf("Expected name 'eltiempo', got '%s'", sourceConfig.Name)
	}
	if sourceConfig.Publisher != "El Tiempo" {
		t.Errorf("Expected publisher 'El Tiempo', got '%s'", sourceConfig.Publisher)
	}
	if sourceConfig.FeedURL != "https://www.eltiempo.com/rss/colombia.xml" {
		t.Errorf("Unexpected feed URL '%s'", sourceConfig.FeedURL)
	}
	if sourceConfig.Settings.RefreshInterval != 1800 {
		t.Errorf("Expected refresh interval 1800, got %d", sourceConfig.Settings.RefreshInterval)
	}
	if sourceConfig.Settings.MaxArticles != 25 {
		t.Errorf("Expected max articles 25, got %d", sourceConfig.Settings.MaxArticles)
	}
	if sourceConfig.Selectors.Title != "h1.titulo" {
		t.Errorf("Expected title selector 'h1.titulo', got '%s'", sourceConfig.Selectors.Title)
	}
	if sourceConfig.Selectors.DateAttr != "datetime" {
		t.Errorf("Expected date attr 'datetime', got '%s'", sourceConfig.Selectors.DateAttr)
	}
}

func TestConfigCacheLoadConfigWithDefaults(t *testing.T) {
	tempDir := t.TempDir()

	content := `
publisher: "El Espectador"
feed_url: "https://www.elespectador.com/rss/"
settings:
  enabled: true
selectors:
  title: "h1"
  body: "article p"
`

	err := os.WriteFile(filepath.Join(tempDir, "elespectador.yml"), []byte(content), 0644)
	if err != nil {
		t.Fatal(err)
	}

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	sourceConfig, err := configCache.GetConfig("elespectador")
	if err != nil {
		t.Fatal(err)
	}

	if sourceConfig.Settings.RefreshInterval != 3600 {
		t.Errorf("Expected default refresh interval 3600, got %d", sourceConfig.Settings.RefreshInterval)
	}
	if sourceConfig.Settings.MaxArticles != 50 {
		t.Errorf("Expected default max articles 50, got %d", sourceConfig.Settings.MaxArticles)
	}
	if sourceConfig.Settings.Timeout != 30 {
		t.Errorf("Expected default timeout 30, got %d", sourceConfig.Settings.Timeout)
	}
	if sourceConfig.Locale != "es" {
		t.Errorf("Expected default locale 'es', got '%s'", sourceConfig.Locale)
	}
}

func TestConfigCacheMissingRequiredFields(t *testing.T) {
	tempDir := t.TempDir()

	content := `
url: "https://example.com"
settings:
  enabled: true
`

	err := os.WriteFile(filepath.Join(tempDir, "broken.yml"), []byte(content), 0644)
	if err != nil {
		t.Fatal(err)
	}

	configCache := NewConfigCache(tempDir)
	err = configCache.Run()
	if err == nil {
		t.Error("Expected error for config missing publisher and feed URL")
	}
}

func TestConfigCacheEnabledConfigs(t *testing.T) {
	tempDir := t.TempDir()

	enabled := `
publisher: "Semana"
feed_url: "https://www.semana.com/rss/"
settings:
  enabled: true
selectors:
  title: "h1"
  body: "article p"
`
	disabled := `
publisher: "La República"
feed_url: "https://www.larepublica.co/rss"
settings:
  enabled: false
selectors:
  title: "h1"
  body: "article p"
`

	if err := os.WriteFile(filepath.Join(tempDir, "semana.yml"), []byte(enabled), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tempDir, "larepublica.yml"), []byte(disabled), 0644); err != nil {
		t.Fatal(err)
	}

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	if configCache.GetConfigCount() != 2 {
		t.Errorf("Expected 2 configs, got %d", configCache.GetConfigCount())
	}

	enabledConfigs := configCache.GetEnabledConfigs()
	if len(enabledConfigs) != 1 {
		t.Fatalf("Expected 1 enabled config, got %d", len(enabledConfigs))
	}
	if _, ok := enabledConfigs["semana"]; !ok {
		t.Error("Expected 'semana' to be enabled")
	}
}

func TestSelectorsEmpty(t *testing.T) {
	var s Selectors
	if !s.Empty() {
		t.Error("Expected zero-value selectors to be empty")
	}

	s.Body = "article p"
	if s.Empty() {
		t.Error("Expected selectors with a body query to be non-empty")
	}
}
