package database

import (
	"path/filepath"
	"testing"
	"time"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewConnection(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, _, err := RunMigrations(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return db
}

func TestUpsertArticle_InsertAndNoOp(t *testing.T) {
	repo := NewArticleRepository(newTestDB(t))

	article := Article{
		URL:         "https://example.com/story",
		Title:       "First Title",
		Description: "Original description",
		Channel:     "BBC World",
		Source:      "RSS",
	}

	inserted, err := repo.UpsertArticle(article)
	if err != nil {
		t.Fatalf("First upsert failed: %v", err)
	}
	if !inserted {
		t.Error("First upsert should report inserted=true")
	}

	// Second call with changed content must be a no-op
	article.Title = "Changed Title"
	inserted, err = repo.UpsertArticle(article)
	if err != nil {
		t.Fatalf("Second upsert failed: %v", err)
	}
	if inserted {
		t.Error("Second upsert should report inserted=false")
	}

	stored, err := repo.GetArticleByURL(article.URL)
	if err != nil {
		t.Fatalf("GetArticleByURL failed: %v", err)
	}
	if stored == nil {
		t.Fatal("Article should be stored")
	}
	if stored.Title != "First Title" {
		t.Errorf("Stored article must keep first-write content, got title '%s'", stored.Title)
	}
	if stored.SavedAt == nil {
		t.Error("SavedAt should be set at first insert")
	}

	count, err := repo.GetArticleCount()
	if err != nil {
		t.Fatalf("GetArticleCount failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected exactly 1 stored article, got %d", count)
	}
}

func TestUpsertArticle_EmptyURL(t *testing.T) {
	repo := NewArticleRepository(newTestDB(t))

	if _, err := repo.UpsertArticle(Article{Title: "No URL"}); err == nil {
		t.Error("Expected error for article without URL")
	}
}

func TestUpsertArticle_TitlePlaceholder(t *testing.T) {
	repo := NewArticleRepository(newTestDB(t))

	if _, err := repo.UpsertArticle(Article{URL: "https://example.com/untitled"}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	stored, err := repo.GetArticleByURL("https://example.com/untitled")
	if err != nil {
		t.Fatalf("GetArticleByURL failed: %v", err)
	}
	if stored.Title != "No Title" {
		t.Errorf("Expected placeholder title, got '%s'", stored.Title)
	}
}

func TestIncrementCounters_StubRow(t *testing.T) {
	repo := NewArticleRepository(newTestDB(t))
	url := "https://example.com/not-yet-saved"

	// Engagement recorded before the article body exists
	if err := repo.IncrementCounters(url, CounterDeltas{Share: 1}); err != nil {
		t.Fatalf("IncrementCounters failed: %v", err)
	}

	stub, err := repo.GetArticleByURL(url)
	if err != nil {
		t.Fatalf("GetArticleByURL failed: %v", err)
	}
	if stub == nil {
		t.Fatal("Counter-only stub row should exist")
	}
	if stub.ShareCount != 1 {
		t.Errorf("Expected share_count 1, got %d", stub.ShareCount)
	}
	if stub.SavedAt != nil {
		t.Error("Stub row should have no saved_at timestamp")
	}
}

func TestIncrementCounters_FlooredAtZero(t *testing.T) {
	repo := NewArticleRepository(newTestDB(t))
	url := "https://example.com/floored"

	if _, err := repo.UpsertArticle(Article{URL: url, Title: "Floored"}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	// Decrement from zero must not go negative
	if err := repo.IncrementCounters(url, CounterDeltas{Like: 1, Dislike: -1}); err != nil {
		t.Fatalf("IncrementCounters failed: %v", err)
	}

	stored, err := repo.GetArticleByURL(url)
	if err != nil {
		t.Fatalf("GetArticleByURL failed: %v", err)
	}
	if stored.LikeCount != 1 {
		t.Errorf("Expected like_count 1, got %d", stored.LikeCount)
	}
	if stored.DislikeCount != 0 {
		t.Errorf("Expected dislike_count floored at 0, got %d", stored.DislikeCount)
	}
}

func TestGetTrending_Ordering(t *testing.T) {
	repo := NewArticleRepository(newTestDB(t))

	// Insert order fixes saved_at order: c is saved last
	seed := []struct {
		url        string
		engagement int
	}{
		{"https://example.com/a", 5},
		{"https://example.com/b", 10},
		{"https://example.com/c", 10},
	}
	for _, s := range seed {
		if _, err := repo.UpsertArticle(Article{URL: s.url, Title: s.url}); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
		if err := repo.IncrementCounters(s.url, CounterDeltas{Share: s.engagement}); err != nil {
			t.Fatalf("IncrementCounters failed: %v", err)
		}
		time.Sleep(5 * time.Millisecond)
	}

	trending, err := repo.GetTrending(48*time.Hour, 2)
	if err != nil {
		t.Fatalf("GetTrending failed: %v", err)
	}
	if len(trending) != 2 {
		t.Fatalf("Expected 2 trending articles, got %d", len(trending))
	}
	if trending[0].URL != "https://example.com/c" {
		t.Errorf("Engagement tie should break to most recent saved_at, got '%s' first", trending[0].URL)
	}
	if trending[1].URL != "https://example.com/b" {
		t.Errorf("Expected 'b' second, got '%s'", trending[1].URL)
	}
}

func TestGetTrending_ColdStart(t *testing.T) {
	repo := NewArticleRepository(newTestDB(t))

	// Only a counter stub exists: no saved_at anywhere, so no time window
	if err := repo.IncrementCounters("https://example.com/stub", CounterDeltas{Like: 3}); err != nil {
		t.Fatalf("IncrementCounters failed: %v", err)
	}

	trending, err := repo.GetTrending(48*time.Hour, 10)
	if err != nil {
		t.Fatalf("GetTrending failed: %v", err)
	}
	if len(trending) != 1 {
		t.Fatalf("Cold start should consider the whole corpus, got %d articles", len(trending))
	}
	if trending[0].Engagement() != 3 {
		t.Errorf("Expected engagement 3, got %d", trending[0].Engagement())
	}
}

func TestGetTrending_WindowExcludesStubs(t *testing.T) {
	repo := NewArticleRepository(newTestDB(t))

	if _, err := repo.UpsertArticle(Article{URL: "https://example.com/saved", Title: "Saved"}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := repo.IncrementCounters("https://example.com/stub-only", CounterDeltas{Like: 100}); err != nil {
		t.Fatalf("IncrementCounters failed: %v", err)
	}

	trending, err := repo.GetTrending(48*time.Hour, 10)
	if err != nil {
		t.Fatalf("GetTrending failed: %v", err)
	}
	if len(trending) != 1 {
		t.Fatalf("Expected only the saved article inside the window, got %d", len(trending))
	}
	if trending[0].URL != "https://example.com/saved" {
		t.Errorf("Expected the saved article, got '%s'", trending[0].URL)
	}
}

func TestSearch_KeywordRelevance(t *testing.T) {
	repo := NewArticleRepository(newTestDB(t))

	articles := []Article{
		{URL: "https://example.com/1", Title: "Election results announced", Description: "The election results are in"},
		{URL: "https://example.com/2", Title: "Sports roundup", Description: "Football scores from the weekend"},
		{URL: "https://example.com/3", Title: "Weather forecast", Description: "Rain expected, election coverage continues"},
	}
	for _, a := range articles {
		if _, err := repo.UpsertArticle(a); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}

	results, err := repo.Search(SearchQuery{Keywords: "election"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 matches for 'election', got %d", len(results))
	}
	for _, res := range results {
		if res.URL == "https://example.com/2" {
			t.Error("Sports article should not match 'election'")
		}
	}
}

func TestSearch_NoKeywordsOrdersByPublishedAt(t *testing.T) {
	repo := NewArticleRepository(newTestDB(t))

	older := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	newer := time.Date(2025, 6, 3, 12, 0, 0, 0, time.UTC)

	seed := []Article{
		{URL: "https://example.com/old", Title: "Old", PublishedAt: &older},
		{URL: "https://example.com/new", Title: "New", PublishedAt: &newer},
	}
	for _, a := range seed {
		if _, err := repo.UpsertArticle(a); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}

	results, err := repo.Search(SearchQuery{})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if results[0].URL != "https://example.com/new" {
		t.Errorf("Without keywords, newest published article should come first, got '%s'", results[0].URL)
	}
}

func TestSearch_DateRangeAndChannel(t *testing.T) {
	repo := NewArticleRepository(newTestDB(t))

	dates := []time.Time{
		time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
	}
	channels := []string{"BBC World", "CNN World", "BBC World"}
	for i := range dates {
		a := Article{
			URL:         "https://example.com/dated-" + channels[i] + dates[i].Format("2006-01-02"),
			Title:       "Dated",
			PublishedAt: &dates[i],
			Channel:     channels[i],
		}
		if _, err := repo.UpsertArticle(a); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}

	start := time.Date(2025, 5, 15, 0, 0, 0, 0, time.UTC)
	results, err := repo.Search(SearchQuery{StartDate: &start, Channel: "BBC World"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected 1 result after date+channel filter, got %d", len(results))
	}
	if !results[0].PublishedAt.Equal(dates[2]) {
		t.Errorf("Expected the July BBC article, got published_at %v", results[0].PublishedAt)
	}
}

func TestGetArticlesByURLs_PreservesOrder(t *testing.T) {
	repo := NewArticleRepository(newTestDB(t))

	for _, u := range []string{"https://example.com/x", "https://example.com/y"} {
		if _, err := repo.UpsertArticle(Article{URL: u, Title: u}); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}

	articles, err := repo.GetArticlesByURLs([]string{
		"https://example.com/y",
		"https://example.com/missing",
		"https://example.com/x",
	})
	if err != nil {
		t.Fatalf("GetArticlesByURLs failed: %v", err)
	}
	if len(articles) != 2 {
		t.Fatalf("Expected 2 articles (missing URL skipped), got %d", len(articles))
	}
	if articles[0].URL != "https://example.com/y" || articles[1].URL != "https://example.com/x" {
		t.Errorf("Results should follow input URL order, got %s, %s", articles[0].URL, articles[1].URL)
	}
}

func TestFtsQuery_QuotesTokens(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"single word", "election", `"election"`},
		{"multiple words", "election results", `"election" "results"`},
		{"fts operator neutralized", "cats OR dogs", `"cats" "OR" "dogs"`},
		{"embedded quote", `say "hi"`, `"say" """hi"""`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ftsQuery(tt.input); got != tt.expected {
				t.Errorf("ftsQuery(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}
