package sources

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFeeds_Defaults(t *testing.T) {
	feeds, err := LoadFeeds("")
	if err != nil {
		t.Fatalf("LoadFeeds failed: %v", err)
	}
	if len(feeds) != 18 {
		t.Errorf("Expected the 18 built-in feeds, got %d", len(feeds))
	}
	if feeds[0].Name != "BBC World" {
		t.Errorf("Feed order matters for merge output; expected 'BBC World' first, got '%s'", feeds[0].Name)
	}
}

func TestLoadFeeds_Override(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feeds.yml")
	content := `feeds:
  - name: "Local Feed"
    url: "https://example.com/rss.xml"
  - name: "Another Feed"
    url: "https://example.org/feed"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write feeds file: %v", err)
	}

	feeds, err := LoadFeeds(path)
	if err != nil {
		t.Fatalf("LoadFeeds failed: %v", err)
	}
	if len(feeds) != 2 {
		t.Fatalf("Expected 2 feeds, got %d", len(feeds))
	}
	if feeds[0].Name != "Local Feed" || feeds[1].URL != "https://example.org/feed" {
		t.Errorf("Unexpected feeds: %+v", feeds)
	}
}

func TestLoadFeeds_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty list", "feeds: []\n"},
		{"missing name", "feeds:\n  - url: \"https://example.com/rss\"\n"},
		{"missing url", "feeds:\n  - name: \"Nameless\"\n"},
		{"malformed yaml", "feeds: [unclosed\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "feeds.yml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatalf("Failed to write feeds file: %v", err)
			}
			if _, err := LoadFeeds(path); err == nil {
				t.Error("Expected error for invalid feeds file")
			}
		})
	}
}

func TestLoadFeeds_MissingFile(t *testing.T) {
	if _, err := LoadFeeds("/nonexistent/feeds.yml"); err == nil {
		t.Error("Expected error for missing feeds file")
	}
}
