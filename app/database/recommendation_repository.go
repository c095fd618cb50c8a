package database

import (
	"context"
	"fmt"
)

// RecommendationRepo handles read-side database operations for
// recommendations. Writes go through the transactional RunStore.
type RecommendationRepo struct {
	db *DB
}

var _ RecommendationRepository = (*RecommendationRepo)(nil)

func NewRecommendationRepo(db *DB) *RecommendationRepo {
	return &RecommendationRepo{db: db}
}

func (r *RecommendationRepo) GetRecommendations(ctx context.Context, articleID, businessID string) ([]Recommendation, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, article_id, business_id, slot, title, description,
			rec_category, action_type, priority,
			confidence_score, impact_score, effort_score,
			recommended_start, recommended_end, estimated_hours, reasoning,
			created_at
		FROM recommendations
		WHERE article_id = $1 AND business_id = $2
		ORDER BY slot`, articleID, businessID)
	if err != nil {
		return nil, fmt.Errorf("failed to get recommendations: %w", err)
	}
	defer rows.Close()

	var recs []Recommendation
	for rows.Next() {
		var rec Recommendation
		err := rows.Scan(
			&rec.ID, &rec.ArticleID, &rec.BusinessID, &rec.Slot, &rec.Title, &rec.Description,
			&rec.Category, &rec.ActionType, &rec.Priority,
			&rec.ConfidenceScore, &rec.ImpactScore, &rec.EffortScore,
			&rec.RecommendedStart, &rec.RecommendedEnd, &rec.EstimatedHours, &rec.Reasoning,
			&rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recommendation row: %w", err)
		}
		recs = append(recs, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recommendation rows: %w", err)
	}

	return recs, nil
}

func (r *RecommendationRepo) CountForArticle(ctx context.Context, articleID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM recommendations WHERE article_id = $1`, articleID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count recommendations: %w", err)
	}
	return count, nil
}
