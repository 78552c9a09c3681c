package news

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/phishnews/newshub/app/database"
	"github.com/phishnews/newshub/app/sources"
	"github.com/phishnews/newshub/app/summarize"
)

const (
	trendingLimit  = 10
	trendingWindow = 48 * time.Hour

	defaultSearchLimit = 20

	// How many recent stored articles the preference matcher scans.
	personalizedScanLimit = 200
)

// Status of a personalized article relative to the user's reading history.
const (
	StatusRecommended = "Recommended"
	StatusRead        = "Read"
)

// Service ties the provider adapters to the store: live fetches, saved
// ingestion runs, trending, search and per-user views.
type Service struct {
	aggregator *sources.Aggregator
	articles   database.ArticleRepository
	users      database.UserRepository
	summarizer *summarize.Client
	extractor  *summarize.ContentExtractor
	httpClient *http.Client
}

func NewService(aggregator *sources.Aggregator, articles database.ArticleRepository, users database.UserRepository, summarizer *summarize.Client) *Service {
	return &Service{
		aggregator: aggregator,
		articles:   articles,
		users:      users,
		summarizer: summarizer,
		extractor:  summarize.NewContentExtractor(),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Fetch returns live, deduplicated headlines without persisting anything.
func (s *Service) Fetch(ctx context.Context, opts sources.FetchOptions) []sources.Article {
	return s.aggregator.Fetch(ctx, opts)
}

// SaveHeadlines fetches headlines for opts, summarizes and stores them.
// Per-item failures are logged and skipped; the returned count reflects
// newly inserted rows only, so a re-run over known URLs saves zero.
func (s *Service) SaveHeadlines(ctx context.Context, opts sources.FetchOptions) (int, error) {
	articles := s.aggregator.Fetch(ctx, opts)

	saved := 0
	for _, article := range articles {
		summary := s.summarizeArticle(ctx, article)

		inserted, err := s.articles.UpsertArticle(toStored(article, opts.Country, summary))
		if err != nil {
			slog.Warn("Failed to save article", "url", article.URL, "error", err)
			continue
		}
		if inserted {
			saved++
		}
	}

	slog.Info("Saved headlines", "fetched", len(articles), "saved", saved, "selector", opts.Selector)

	return saved, nil
}

// RefreshFeeds ingests every configured RSS feed. Failing feeds contribute
// nothing; the run itself only errors when the store is unreachable.
func (s *Service) RefreshFeeds(ctx context.Context, country string) (int, error) {
	return s.SaveHeadlines(ctx, sources.FetchOptions{
		Selector: sources.SelectorRSS,
		Country:  country,
	})
}

// summarizeArticle summarizes the provider description when it is long
// enough; otherwise it fetches the article page and summarizes the extracted
// readable text. Both paths are best-effort.
func (s *Service) summarizeArticle(ctx context.Context, article sources.Article) *string {
	if summary := s.summarizer.Summarize(ctx, article.Description); summary != nil {
		return summary
	}
	if !s.summarizer.Enabled() || len(article.Description) >= summarize.MinInputLength {
		return nil
	}

	text, err := s.extractText(ctx, article.URL)
	if err != nil {
		slog.Debug("Content extraction failed", "url", article.URL, "error", err)
		return nil
	}

	return s.summarizer.Summarize(ctx, text)
}

func (s *Service) extractText(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	return s.extractor.Run(data)
}

// Trending returns the most engaged stored articles, windowed to the last
// 48 hours once the corpus has dated rows.
func (s *Service) Trending() ([]database.Article, error) {
	articles, err := s.articles.GetTrending(trendingWindow, trendingLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load trending articles: %w", err)
	}
	return articles, nil
}

// Search runs a keyword/date/channel query over the stored corpus.
func (s *Service) Search(query database.SearchQuery) ([]database.Article, error) {
	if query.Limit <= 0 {
		query.Limit = defaultSearchLimit
	}

	articles, err := s.articles.Search(query)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	return articles, nil
}

// PersonalizedArticle is a stored article annotated with its relation to the
// requesting user.
type PersonalizedArticle struct {
	database.Article
	Status string
}

// Personalized matches the user's preferences against recent stored articles.
// Topics match title or description, sources match the provider or channel,
// countries match the ingestion country; all matching is case-insensitive
// substring. With no preferences set, the latest articles come back as-is.
func (s *Service) Personalized(email string) ([]PersonalizedArticle, error) {
	user, err := s.users.GetUserByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %s not found", email)
	}

	recent, err := s.articles.Search(database.SearchQuery{Limit: personalizedScanLimit})
	if err != nil {
		return nil, fmt.Errorf("failed to load articles: %w", err)
	}

	read := make(map[string]bool, len(user.ReadingHistory))
	for _, url := range user.ReadingHistory {
		read[url] = true
	}

	prefs := user.Preferences
	hasPrefs := len(prefs.Topics)+len(prefs.Sources)+len(prefs.Countries) > 0

	var matched []PersonalizedArticle
	for _, article := range recent {
		if hasPrefs && !matchesPreferences(article, prefs) {
			continue
		}

		status := StatusRecommended
		if read[article.URL] {
			status = StatusRead
		}
		matched = append(matched, PersonalizedArticle{Article: article, Status: status})
	}

	return matched, nil
}

func matchesPreferences(article database.Article, prefs database.Preferences) bool {
	title := strings.ToLower(article.Title)
	description := strings.ToLower(article.Description)
	for _, topic := range prefs.Topics {
		topic = strings.ToLower(topic)
		if topic != "" && (strings.Contains(title, topic) || strings.Contains(description, topic)) {
			return true
		}
	}

	source := strings.ToLower(article.Source)
	channel := strings.ToLower(article.Channel)
	for _, pref := range prefs.Sources {
		pref = strings.ToLower(pref)
		if pref != "" && (strings.Contains(source, pref) || strings.Contains(channel, pref)) {
			return true
		}
	}

	country := strings.ToLower(article.UserCountry)
	for _, pref := range prefs.Countries {
		if pref != "" && strings.EqualFold(pref, country) {
			return true
		}
	}

	return false
}

// Bookmarks returns the user's bookmarked articles, oldest bookmark first.
func (s *Service) Bookmarks(email string) ([]database.Article, error) {
	return s.setArticles(email, database.SetBookmark, false)
}

// RecentlyViewed returns the user's reading history, most recent first.
func (s *Service) RecentlyViewed(email string) ([]database.Article, error) {
	return s.setArticles(email, database.SetHistory, true)
}

func (s *Service) setArticles(email string, kind database.SetKind, newestFirst bool) ([]database.Article, error) {
	urls, err := s.users.GetSet(email, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s set: %w", kind, err)
	}
	if len(urls) == 0 {
		return nil, nil
	}

	if newestFirst {
		for i, j := 0, len(urls)-1; i < j; i, j = i+1, j-1 {
			urls[i], urls[j] = urls[j], urls[i]
		}
	}

	articles, err := s.articles.GetArticlesByURLs(urls)
	if err != nil {
		return nil, fmt.Errorf("failed to load articles: %w", err)
	}
	return articles, nil
}

func toStored(article sources.Article, country string, summary *string) database.Article {
	return database.Article{
		URL:          article.URL,
		Title:        article.Title,
		Description:  article.Description,
		Summary:      summary,
		PublishedAt:  article.PublishedAt,
		PublishedRaw: article.PublishedRaw,
		Channel:      article.Channel,
		Source:       article.Source,
		UserCountry:  country,
	}
}
