package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/phishnews/newshub/app/cfg"
	"github.com/phishnews/newshub/app/database"
	"github.com/phishnews/newshub/app/news"
	"github.com/phishnews/newshub/app/sources"
	"github.com/phishnews/newshub/app/summarize"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

// Scheduler runs periodic ingestion over a bounded worker pool: one fetch
// task per configured RSS feed plus a commercial-headlines sweep, re-enqueued
// every interval. An interval of zero disables background refresh entirely.
type Scheduler struct {
	service     *news.Service
	rss         *sources.RSSAdapter
	feeds       []sources.Feed
	articles    database.ArticleRepository
	summarizer  *summarize.Client
	country     string
	interval    time.Duration
	workerCount int
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	taskQueue   chan TaskInterface
}

func NewScheduler(service *news.Service, rss *sources.RSSAdapter, feeds []sources.Feed,
	articles database.ArticleRepository, summarizer *summarize.Client) TaskSchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	return &Scheduler{
		service:     service,
		rss:         rss,
		feeds:       feeds,
		articles:    articles,
		summarizer:  summarizer,
		country:     cfg.FallbackCountry,
		interval:    time.Duration(cfg.SchedulerInterval) * time.Second,
		workerCount: cfg.WorkerCount,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, 300),
	}
}

func (s *Scheduler) Start() {
	if s.interval <= 0 {
		slog.Info("Background refresh disabled")
		return
	}

	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueTasks()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	close(s.taskQueue)
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) enqueueTasks() {
	if len(s.feeds) == 0 {
		slog.Debug("No feeds configured")
	}

	for _, feed := range s.feeds {
		task := NewFetchFeedTask(feed, s.rss, s.articles, s.summarizer, s.country)
		if err := s.EnqueueTask(task); err != nil {
			slog.Warn("Failed to enqueue FetchFeedTask", "feed", feed.Name, "error", err)
		}
	}

	headlines := NewFetchHeadlinesTask(s.service, sources.FetchOptions{
		Selector: sources.SelectorAPI,
		Country:  s.country,
	})
	if err := s.EnqueueTask(headlines); err != nil {
		slog.Warn("Failed to enqueue FetchHeadlinesTask", "error", err)
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)

	if err != nil {
		slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

		if task.CanRetry() {
			task.IncrementRetryCount()
			retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
			if retryDelay > 30*time.Second {
				retryDelay = 30 * time.Second
			}

			slog.Warn("Task retry scheduled", "type", string(task.GetType()), "name", task.GetName(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

			go func() {
				time.Sleep(retryDelay)
				select {
				case <-s.ctx.Done():
					slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
					return
				default:
					if retryErr := s.EnqueueTask(task); retryErr != nil {
						slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
					}
				}
			}()
		} else {
			slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		}
	}
}
