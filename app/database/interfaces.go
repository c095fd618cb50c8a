package database

import (
	"context"
)

type ArticleRepository interface {
	GetArticle(ctx context.Context, id string) (*Article, error)
	GetUnprocessedArticles(ctx context.Context, limit int) ([]Article, error)
	GetArticleCount(ctx context.Context) (int, error)
	SetProcessingError(ctx context.Context, id, message string) error
}

type BusinessRepository interface {
	GetActiveBusinesses(ctx context.Context) ([]Business, error)
	GetReferenceBusiness(ctx context.Context, city string) (*Business, error)
}

type RecommendationRepository interface {
	GetRecommendations(ctx context.Context, articleID, businessID string) ([]Recommendation, error)
	CountForArticle(ctx context.Context, articleID string) (int, error)
}

// TaxonomyRepository supplies raw taxonomy rows for snapshot construction
// and validates the singleton broadcastability config on write.
type TaxonomyRepository interface {
	GetEventTypes(ctx context.Context) ([]EventType, error)
	GetEventSubtypes(ctx context.Context) ([]EventSubtype, error)
	GetExtractionPatterns(ctx context.Context) ([]ExtractionPattern, error)
	GetSportTypes(ctx context.Context) ([]SportType, error)
	GetCompetitionLevels(ctx context.Context) ([]CompetitionLevel, error)
	GetHypeIndicators(ctx context.Context) ([]HypeIndicator, error)
	GetBusinessTypeKeywords(ctx context.Context) ([]BusinessTypeKeyword, error)
	GetBroadcastConfig(ctx context.Context) (*BroadcastConfig, error)
	SaveBroadcastConfig(ctx context.Context, cfg BroadcastConfig) error
}

// RunStore is the transactional view of the store used by one article run.
// All its mutations commit or roll back together.
type RunStore interface {
	SaveExtraction(ctx context.Context, a *Article) error
	SaveScores(ctx context.Context, a *Article) error
	ReconcileRecommendations(ctx context.Context, articleID, businessID string, recs []Recommendation) error
}

// UnitOfWork runs fn inside a single database transaction.
type UnitOfWork interface {
	Run(ctx context.Context, fn func(tx RunStore) error) error
}
