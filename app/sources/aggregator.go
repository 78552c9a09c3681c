package sources

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Aggregator fans out to the selected provider adapters and merges their
// output into one deduplicated sequence. Adapter failures are logged and
// contribute zero results; they never surface to the caller.
type Aggregator struct {
	newsAPI *NewsAPIClient
	gnews   *GNewsClient
	rss     *RSSAdapter
	feeds   []Feed
}

func NewAggregator(newsAPI *NewsAPIClient, gnews *GNewsClient, rss *RSSAdapter, feeds []Feed) *Aggregator {
	return &Aggregator{
		newsAPI: newsAPI,
		gnews:   gnews,
		rss:     rss,
		feeds:   feeds,
	}
}

type FetchOptions struct {
	Selector string // api, gnews, rss, or all
	Country  string
	Category string
	Query    string
}

func (a *Aggregator) Feeds() []Feed {
	return a.feeds
}

// Fetch runs the selected adapters concurrently but concatenates their
// results in the fixed order NewsAPI, GNews, then RSS feeds in configured
// list order, so dedup and callers see a deterministic sequence.
func (a *Aggregator) Fetch(ctx context.Context, opts FetchOptions) []Article {
	selector := opts.Selector
	if selector == "" {
		selector = SelectorAPI
	}

	// Fixed slots: 0 NewsAPI, 1 GNews, 2.. RSS feeds
	results := make([][]Article, 2+len(a.feeds))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)

	if (selector == SelectorAPI || selector == SelectorAll) && a.newsAPI.Enabled() {
		g.Go(func() error {
			articles, err := a.newsAPI.TopHeadlines(gctx, opts.Country, opts.Category, opts.Query)
			if err != nil {
				slog.Warn("NewsAPI fetch failed", "error", err)
				return nil
			}
			results[0] = articles
			return nil
		})
	}

	if (selector == SelectorGNews || selector == SelectorAll) && a.gnews.Enabled() {
		g.Go(func() error {
			articles, err := a.gnews.TopHeadlines(gctx, opts.Country, opts.Category, opts.Query)
			if err != nil {
				slog.Warn("GNews fetch failed", "error", err)
				return nil
			}
			results[1] = articles
			return nil
		})
	}

	if selector == SelectorRSS || selector == SelectorAll {
		for i, feed := range a.feeds {
			g.Go(func() error {
				articles, err := a.rss.Fetch(gctx, feed)
				if err != nil {
					slog.Warn("RSS fetch failed", "feed", feed.Name, "error", err)
					return nil
				}
				results[2+i] = articles
				return nil
			})
		}
	}

	// Workers swallow their own failures, so Wait never reports one
	_ = g.Wait()

	var merged []Article
	for _, batch := range results {
		merged = append(merged, batch...)
	}

	return Dedup(merged)
}

// Dedup removes duplicate articles by URL, keeping the first occurrence.
// Articles without a URL are dropped. Operates purely on this invocation's
// input; persisted articles are not consulted.
func Dedup(articles []Article) []Article {
	seen := make(map[string]bool, len(articles))
	deduped := make([]Article, 0, len(articles))

	for _, article := range articles {
		if article.URL == "" || seen[article.URL] {
			continue
		}
		seen[article.URL] = true
		deduped = append(deduped, article)
	}

	return deduped
}
