package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phishnews/newshub/app/news"
	"github.com/phishnews/newshub/app/sources"
)

// FetchHeadlinesTask pulls top headlines from the commercial providers and
// stores them, keeping the corpus warm between explicit save requests.
type FetchHeadlinesTask struct {
	Task
	service *news.Service
	opts    sources.FetchOptions
}

func NewFetchHeadlinesTask(service *news.Service, opts sources.FetchOptions) *FetchHeadlinesTask {
	return &FetchHeadlinesTask{
		Task:    NewTask(TaskTypeFetchHeadlines, opts.Selector),
		service: service,
		opts:    opts,
	}
}

func (t *FetchHeadlinesTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	saved, err := t.service.SaveHeadlines(ctx, t.opts)
	if err != nil {
		return fmt.Errorf("failed to save headlines: %w", err)
	}

	slog.Info("Task completed",
		"type", "FetchHeadlines",
		"selector", t.opts.Selector,
		"duration", t.GetDuration(),
		"new", saved)

	return nil
}
