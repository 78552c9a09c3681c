package tasks

// TaskSchedulerInterface defines the interface for background refresh
// scheduling. Used by the main application to run periodic feed ingestion.
// Example usage:
//
//	scheduler := NewScheduler(rss, feeds, articleRepo, summarizer)
//	scheduler.Start()
//	defer scheduler.Stop()
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}
