package feed

import (
	"testing"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
	<title>Colombia - El Tiempo</title>
	<link>https://www.eltiempo.com/colombia</link>
	<item>
		<title>Tras la pista de una banda de apartamenteros</title>
		<link>https://www.eltiempo.com/colombia/cali/nota-1</link>
		<guid>https://www.eltiempo.com/colombia/cali/nota-1</guid>
		<pubDate>Tue, 28 Oct 2025 19:21:59 -0500</pubDate>
		<category>Cali</category>
		<category>Judicial</category>
	</item>
	<item>
		<title>Nota sin enlace directo</title>
		<guid>https://www.eltiempo.com/colombia/nota-2</guid>
	</item>
	<item>
		<title>Entrada vacía</title>
	</item>
</channel>
</rss>`

func TestParserDiscoversCandidates(t *testing.T) {
	parser := NewParser()

	candidates, err := parser.Run([]byte(sampleRSS))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(candidates) != 2 {
		t.Fatalf("Expected 2 candidates (entry without URL skipped), got %d", len(candidates))
	}

	first := candidates[0]
	if first.URL != "https://www.eltiempo.com/colombia/cali/nota-1" {
		t.Errorf("Unexpected URL: %s", first.URL)
	}
	if first.Title != "Tras la pista de una banda de apartamenteros" {
		t.Errorf("Unexpected title: %s", first.Title)
	}
	if first.PublishedAt == nil {
		t.Error("Expected published date from pubDate")
	}
	if len(first.Categories) != 2 || first.Categories[0] != "Cali" {
		t.Errorf("Unexpected categories: %v", first.Categories)
	}

	// GUID used when link is absent
	if candidates[1].URL != "https://www.eltiempo.com/colombia/nota-2" {
		t.Errorf("Expected GUID as URL, got: %s", candidates[1].URL)
	}
}

func TestParserInvalidFeed(t *testing.T) {
	parser := NewParser()
	if _, err := parser.Run([]byte("this is not xml")); err == nil {
		t.Error("Expected error for invalid feed data")
	}
}
