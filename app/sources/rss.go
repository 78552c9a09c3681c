package sources

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// RSSAdapter fetches and normalizes one RSS/Atom feed at a time.
type RSSAdapter struct {
	parser *gofeed.Parser
}

func NewRSSAdapter(userAgent string) *RSSAdapter {
	parser := gofeed.NewParser()
	parser.UserAgent = userAgent

	return &RSSAdapter{parser: parser}
}

// Fetch parses the feed and normalizes its entries. Entries without a link
// are dropped here; everything else is normalized leniently.
func (a *RSSAdapter) Fetch(ctx context.Context, feed Feed) ([]Article, error) {
	parsed, err := a.parser.ParseURLWithContext(feed.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed %s: %w", feed.Name, err)
	}

	now := time.Now().UTC()
	articles := make([]Article, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item.Link == "" {
			continue
		}

		article := Article{
			URL:          item.Link,
			Title:        fallback(strings.TrimSpace(item.Title), placeholderTitle),
			Description:  fallback(item.Description, item.Content, item.Title),
			PublishedRaw: item.Published,
			Channel:      feed.Name,
			Source:       "RSS",
		}

		// Feed entries missing a date get the ingestion time; commercial API
		// articles keep a null date instead. Inherited inconsistency.
		if item.PublishedParsed != nil {
			t := item.PublishedParsed.UTC()
			article.PublishedAt = &t
		} else {
			article.PublishedAt = &now
		}

		articles = append(articles, article)
	}

	return articles, nil
}
