package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

const newsAPIBaseURL = "https://newsapi.org/v2/top-headlines"

// NewsAPIClient fetches top headlines from NewsAPI.org.
type NewsAPIClient struct {
	BaseURL   string
	apiKey    string
	userAgent string
	client    *http.Client
}

func NewNewsAPIClient(apiKey, userAgent string) *NewsAPIClient {
	return &NewsAPIClient{
		BaseURL:   newsAPIBaseURL,
		apiKey:    apiKey,
		userAgent: userAgent,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled reports whether an API key is configured.
func (c *NewsAPIClient) Enabled() bool {
	return c.apiKey != ""
}

type newsAPIResponse struct {
	Status   string `json:"status"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Content     string `json:"content"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
	} `json:"articles"`
}

// TopHeadlines fetches and normalizes headlines. Category and query are optional.
func (c *NewsAPIClient) TopHeadlines(ctx context.Context, country, category, query string) ([]Article, error) {
	params := url.Values{}
	params.Set("apiKey", c.apiKey)
	params.Set("country", country)
	params.Set("pageSize", "10")
	if category != "" {
		params.Set("category", category)
	}
	if query != "" {
		params.Set("q", query)
	}

	var resp newsAPIResponse
	if err := getJSON(ctx, c.client, c.BaseURL+"?"+params.Encode(), c.userAgent, &resp); err != nil {
		return nil, fmt.Errorf("newsapi request failed: %w", err)
	}

	articles := make([]Article, 0, len(resp.Articles))
	for _, raw := range resp.Articles {
		articles = append(articles, Article{
			URL:          raw.URL,
			Title:        fallback(strings.TrimSpace(raw.Title), placeholderTitle),
			Description:  fallback(raw.Description, raw.Content, raw.Title),
			PublishedAt:  parsePublished(raw.PublishedAt),
			PublishedRaw: raw.PublishedAt,
			Channel:      raw.Source.Name,
			Source:       "NewsAPI",
		})
	}

	return articles, nil
}

// parsePublished normalizes a provider timestamp string; the raw string is
// kept separately for display. API articles with no usable date stay nil,
// matching the source behavior.
func parsePublished(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	t, err := dateparse.ParseAny(raw)
	if err != nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}

func fallback(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func getJSON(ctx context.Context, client *http.Client, rawURL, userAgent string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
