package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/localpulse/pulse/app/pipeline"
)

// ArticleProcessor is the pipeline entry point the task invokes.
type ArticleProcessor interface {
	Process(ctx context.Context, articleID string) (*pipeline.Result, error)
}

type ProcessArticleTask struct {
	Task
	processor ArticleProcessor
}

func NewProcessArticleTask(articleID string, processor ArticleProcessor) *ProcessArticleTask {
	return &ProcessArticleTask{
		Task:      NewTask(TaskTypeProcessArticle, articleID),
		processor: processor,
	}
}

func (t *ProcessArticleTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	result, err := t.processor.Process(ctx, t.ArticleID)
	if err != nil {
		return fmt.Errorf("failed to process article: %w", err)
	}

	slog.Info("Task completed",
		"type", "ProcessArticle",
		"article_id", t.ArticleID,
		"duration", t.GetDuration(),
		"processed", result.Processed,
		"suitability", result.SuitabilityScore,
		"matches", result.MatchingBusinesses,
		"recommendations", result.RecommendationsCreated)

	return nil
}
