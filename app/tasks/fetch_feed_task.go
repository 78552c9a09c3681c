package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phishnews/newshub/app/database"
	"github.com/phishnews/newshub/app/sources"
	"github.com/phishnews/newshub/app/summarize"
)

// FetchFeedTask ingests a single RSS feed: fetch, summarize, upsert. Articles
// already stored are left untouched, so repeated runs only add new ones.
type FetchFeedTask struct {
	Task
	Feed       sources.Feed
	rss        *sources.RSSAdapter
	articles   database.ArticleRepository
	summarizer *summarize.Client
	country    string
}

func NewFetchFeedTask(feed sources.Feed, rss *sources.RSSAdapter, articles database.ArticleRepository, summarizer *summarize.Client, country string) *FetchFeedTask {
	return &FetchFeedTask{
		Task:       NewTask(TaskTypeFetchFeed, feed.Name),
		Feed:       feed,
		rss:        rss,
		articles:   articles,
		summarizer: summarizer,
		country:    country,
	}
}

func (t *FetchFeedTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	items, err := t.rss.Fetch(ctx, t.Feed)
	if err != nil {
		return fmt.Errorf("failed to fetch feed: %w", err)
	}

	saved := 0
	failed := 0

	for _, item := range sources.Dedup(items) {
		summary := t.summarizer.Summarize(ctx, item.Description)

		inserted, err := t.articles.UpsertArticle(database.Article{
			URL:          item.URL,
			Title:        item.Title,
			Description:  item.Description,
			Summary:      summary,
			PublishedAt:  item.PublishedAt,
			PublishedRaw: item.PublishedRaw,
			Channel:      item.Channel,
			Source:       item.Source,
			UserCountry:  t.country,
		})
		if err != nil {
			slog.Warn("Failed to store feed article", "feed", t.Feed.Name, "url", item.URL, "error", err)
			failed++
			continue
		}
		if inserted {
			saved++
		}
	}

	slog.Info("Task completed",
		"type", "FetchFeed",
		"feed", t.Feed.Name,
		"duration", t.GetDuration(),
		"total", len(items),
		"new", saved,
		"failed", failed)

	return nil
}
