package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const gnewsBaseURL = "https://gnews.io/api/v4/top-headlines"

// GNewsClient fetches top headlines from the GNews API.
type GNewsClient struct {
	BaseURL   string
	apiKey    string
	userAgent string
	client    *http.Client
}

func NewGNewsClient(apiKey, userAgent string) *GNewsClient {
	return &GNewsClient{
		BaseURL:   gnewsBaseURL,
		apiKey:    apiKey,
		userAgent: userAgent,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *GNewsClient) Enabled() bool {
	return c.apiKey != ""
}

type gnewsResponse struct {
	Articles []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Content     string `json:"content"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
		Source      struct {
			Name string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
}

// TopHeadlines fetches and normalizes headlines. GNews calls the category
// parameter "topic"; the selector API is kept uniform with NewsAPI.
func (c *GNewsClient) TopHeadlines(ctx context.Context, country, category, query string) ([]Article, error) {
	params := url.Values{}
	params.Set("token", c.apiKey)
	params.Set("lang", "en")
	params.Set("country", country)
	params.Set("max", "10")
	if category != "" {
		params.Set("topic", category)
	}
	if query != "" {
		params.Set("q", query)
	}

	var resp gnewsResponse
	if err := getJSON(ctx, c.client, c.BaseURL+"?"+params.Encode(), c.userAgent, &resp); err != nil {
		return nil, fmt.Errorf("gnews request failed: %w", err)
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
			Source:       "GNews",
		})
	}

	return articles, nil
}
