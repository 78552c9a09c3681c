package sources

import (
	"time"
)

// Article is the common shape every provider adapter normalizes into.
// URL is the identity used for dedup and for persistence.
type Article struct {
	URL          string     `json:"url"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	PublishedAt  *time.Time `json:"published_at,omitempty"`
	PublishedRaw string     `json:"publishedAt,omitempty"` // provider string, format not normalized across sources
	Channel      string     `json:"channel"`
	Source       string     `json:"source"`
}

// Feed is one RSS source from the configured feed list.
type Feed struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Source selector values for the aggregate fetch.
const (
	SelectorAPI   = "api"
	SelectorGNews = "gnews"
	SelectorRSS   = "rss"
	SelectorAll   = "all"
)

const placeholderTitle = "No Title"
