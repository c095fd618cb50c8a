package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/localpulse/pulse/app/cfg"
	"github.com/localpulse/pulse/app/database"
)

const pollBatchSize = 100

var _ TaskSchedulerInterface = (*Scheduler)(nil)

type Scheduler struct {
	articleRepo database.ArticleRepository
	processor   ArticleProcessor
	interval    time.Duration
	workerCount int
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	taskQueue   chan TaskInterface

	// Articles queued or running, keyed by article ID. Prevents a poll
	// tick from re-enqueueing work that is already in flight.
	mu       sync.Mutex
	inFlight map[string]bool
}

func NewScheduler(articleRepo database.ArticleRepository, processor ArticleProcessor) TaskSchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	return &Scheduler{
		articleRepo: articleRepo,
		processor:   processor,
		interval:    time.Duration(cfg.SchedulerInterval) * time.Second,
		workerCount: cfg.WorkerCount,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, 300),
		inFlight:    make(map[string]bool),
	}
}

func (s *Scheduler) Start() {
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
	pollCtx, cancel := context.WithTimeout(s.ctx, 30*time.Second)
	defer cancel()

	articles, err := s.articleRepo.GetUnprocessedArticles(pollCtx, pollBatchSize)
	if err != nil {
		slog.Error("Failed to poll for unprocessed articles", "error", err)
		return
	}

	if len(articles) == 0 {
		slog.Debug("No unprocessed articles found")
		return
	}

	slog.Debug("Scheduling article processing", "count", len(articles))

	for _, article := range articles {
		if !s.markInFlight(article.ID) {
			continue
		}

		task := NewProcessArticleTask(article.ID, s.processor)
		if err := s.EnqueueTask(task); err != nil {
			s.clearInFlight(article.ID)
			slog.Warn("Failed to enqueue ProcessArticleTask", "article_id", article.ID, "error", err)
		}
	}
}

func (s *Scheduler) markInFlight(articleID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[articleID] {
		return false
	}
	s.inFlight[articleID] = true
	return true
}

func (s *Scheduler) clearInFlight(articleID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, articleID)
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
	meta := task.Meta()
	meta.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)

	if err == nil {
		s.clearInFlight(meta.ArticleID)
		return
	}

	slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(meta.Type), "id", meta.ID, "retry_count", meta.RetryCount, "error", err)

	if !meta.CanRetry() {
		s.clearInFlight(meta.ArticleID)
		slog.Error("Task failed after maximum retries", "type", string(meta.Type), "id", meta.ID, "retry_count", meta.RetryCount, "max_retries", meta.MaxRetries, "last_error", err)
		return
	}

	meta.IncrementRetryCount()
	retryDelay := time.Duration(1<<uint(meta.RetryCount-1)) * time.Second
	if retryDelay > 30*time.Second {
		retryDelay = 30 * time.Second
	}

	slog.Warn("Task retry scheduled", "type", string(meta.Type), "article_id", meta.ArticleID, "retry_count", meta.RetryCount, "max_retries", meta.MaxRetries, "delay", retryDelay.String())

	go func() {
		time.Sleep(retryDelay)
		select {
		case <-s.ctx.Done():
			slog.Debug("Scheduler stopped, skipping task retry", "type", string(meta.Type), "id", meta.ID)
			return
		default:
			if retryErr := s.EnqueueTask(task); retryErr != nil {
				s.clearInFlight(meta.ArticleID)
				slog.Error("Failed to re-enqueue task for retry", "type", string(meta.Type), "id", meta.ID, "retry_count", meta.RetryCount, "error", retryErr)
			}
		}
	}()
}
