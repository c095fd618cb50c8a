package tasks

// TaskSchedulerInterface defines the interface for background task
// processing. The scheduler polls for unprocessed articles on an
// interval and fans them out to a worker pool.
// Example usage:
//
//	scheduler := NewScheduler(articleRepo, orchestrator)
//	scheduler.Start()
//	defer scheduler.Stop()
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}
