package tasks

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type TaskType string

const TaskTypeProcessArticle TaskType = "process_article"

const DefaultMaxRetries = 3

// TaskInterface is a queued unit of work. Meta exposes the shared
// bookkeeping so the scheduler can drive retries without knowing the
// concrete task.
type TaskInterface interface {
	Execute(ctx context.Context) error
	Meta() *Task
}

// Task carries the bookkeeping common to every queued task. Concrete
// tasks embed it and implement Execute.
type Task struct {
	ID         string
	Type       TaskType
	ArticleID  string
	RetryCount int
	MaxRetries int
	StartedAt  *time.Time
}

func NewTask(taskType TaskType, articleID string) Task {
	return Task{
		ID:         uuid.NewString(),
		Type:       taskType,
		ArticleID:  articleID,
		MaxRetries: DefaultMaxRetries,
	}
}

func (t *Task) Meta() *Task { return t }

func (t *Task) Start() {
	now := time.Now()
	t.StartedAt = &now
}

func (t *Task) CanRetry() bool {
	return t.RetryCount < t.MaxRetries
}

func (t *Task) IncrementRetryCount() {
	t.RetryCount++
}

// GetDuration reports time elapsed since Start, or zero for a task that
// never ran.
func (t *Task) GetDuration() time.Duration {
	if t.StartedAt == nil {
		return 0
	}
	return time.Since(*t.StartedAt)
}
