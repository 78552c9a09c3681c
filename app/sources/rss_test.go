package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const sparseFeedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Sparse Feed</title>
    <item>
      <title>Dated Story</title>
      <link>https://example.com/dated</link>
      <description>Has everything</description>
      <pubDate>Mon, 02 Jun 2025 10:00:00 GMT</pubDate>
    </item>
    <item>
      <link>https://example.com/bare</link>
    </item>
    <item>
      <title>No Link Story</title>
      <description>This entry has no link and must be dropped</description>
    </item>
  </channel>
</rss>`

func TestRSSAdapter_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(sparseFeedXML))
	}))
	defer srv.Close()

	adapter := NewRSSAdapter("test-agent")
	articles, err := adapter.Fetch(context.Background(), Feed{Name: "Sparse Feed", URL: srv.URL})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if len(articles) != 2 {
		t.Fatalf("Expected 2 articles (link-less entry dropped), got %d", len(articles))
	}

	dated := articles[0]
	if dated.Title != "Dated Story" {
		t.Errorf("Expected title 'Dated Story', got '%s'", dated.Title)
	}
	if dated.Channel != "Sparse Feed" || dated.Source != "RSS" {
		t.Errorf("Unexpected provenance: channel '%s', source '%s'", dated.Channel, dated.Source)
	}
	if dated.PublishedAt == nil {
		t.Fatal("pubDate should be parsed")
	}
	if dated.PublishedRaw == "" {
		t.Error("Raw pubDate string should be preserved")
	}

	bare := articles[1]
	if bare.Title != "No Title" {
		t.Errorf("Missing title should become the placeholder, got '%s'", bare.Title)
	}
	if bare.PublishedAt == nil {
		t.Error("Feed entry without a date should get the ingestion time")
	}
}

func TestRSSAdapter_FetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	adapter := NewRSSAdapter("test-agent")
	if _, err := adapter.Fetch(context.Background(), Feed{Name: "Broken", URL: srv.URL}); err == nil {
		t.Error("Expected error for unreachable feed")
	}
}
