package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// TxRunner implements UnitOfWork on top of a sql transaction. One article
// run maps to exactly one transaction: all of its mutations commit or roll
// back together.
type TxRunner struct {
	db *DB
}

var _ UnitOfWork = (*TxRunner)(nil)

func NewTxRunner(db *DB) *TxRunner {
	return &TxRunner{db: db}
}

func (r *TxRunner) Run(ctx context.Context, fn func(tx RunStore) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(&txRunStore{tx: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

type txRunStore struct {
	tx *sql.Tx
}

var _ RunStore = (*txRunStore)(nil)

// SaveExtraction persists every extracted feature together with the
// suitability score and clears any prior error. Pipeline-owned fields are
// fully overwritten so reprocessing the same article is safe.
func (s *txRunStore) SaveExtraction(ctx context.Context, a *Article) error {
	_, err := s.tx.ExecContext(ctx, `
		UPDATE news_articles SET
			event_type = $2, event_subtype = $3, category = $4, subcategory = $5,
			sport_type = $6, competition_level = $7,
			city = $8, neighborhood = $9, venue = $10, country = $11,
			latitude = $12, longitude = $13,
			event_start = $14, event_end = $15, duration_hours = $16,
			expected_attendance = $17, event_scale = $18, local_involvement = $19,
			suitability_score = $20, completeness_score = $21,
			processed = $22, last_error = '', updated_at = NOW()
		WHERE id = $1
	`, a.ID, a.EventType, a.EventSubtype, a.Category, a.Subcategory,
		a.SportType, a.CompetitionLevel,
		a.City, a.Neighborhood, a.Venue, a.Country,
		a.Latitude, a.Longitude,
		a.EventStart, a.EventEnd, a.DurationHours,
		a.ExpectedAttendance, a.Scale, a.LocalInvolvement,
		a.SuitabilityScore, a.CompletenessScore, a.Processed)

	if err != nil {
		return fmt.Errorf("failed to save extraction: %w", err)
	}

	return nil
}

// SaveScores persists the broadcastability and relevance results computed
// after extraction.
func (s *txRunStore) SaveScores(ctx context.Context, a *Article) error {
	_, err := s.tx.ExecContext(ctx, `
		UPDATE news_articles SET
			sport_type = $2, competition_level = $3,
			broadcastability_score = $4, hype_score = $5, is_broadcastable = $6,
			relevance_score = $7, processed = $8, updated_at = NOW()
		WHERE id = $1
	`, a.ID, a.SportType, a.CompetitionLevel,
		a.BroadcastabilityScore, a.HypeScore, a.IsBroadcastable,
		a.RelevanceScore, a.Processed)

	if err != nil {
		return fmt.Errorf("failed to save scores: %w", err)
	}

	return nil
}

// ReconcileRecommendations replaces the recommendation set for one
// (article, business) pair: rows are upserted by slot and rows whose slot
// is no longer produced are pruned. Reprocessing therefore replaces rather
// than accumulates.
func (s *txRunStore) ReconcileRecommendations(ctx context.Context, articleID, businessID string, recs []Recommendation) error {
	slots := make([]int64, 0, len(recs))
	for _, rec := range recs {
		slots = append(slots, int64(rec.Slot))

		_, err := s.tx.ExecContext(ctx, `
			INSERT INTO recommendations (
				article_id, business_id, slot, title, description,
				rec_category, action_type, priority,
				confidence_score, impact_score, effort_score,
				recommended_start, recommended_end, estimated_hours, reasoning
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
			ON CONFLICT (article_id, business_id, slot) DO UPDATE SET
				title = EXCLUDED.title,
				description = EXCLUDED.description,
				rec_category = EXCLUDED.rec_category,
				action_type = EXCLUDED.action_type,
				priority = EXCLUDED.priority,
				confidence_score = EXCLUDED.confidence_score,
				impact_score = EXCLUDED.impact_score,
				effort_score = EXCLUDED.effort_score,
				recommended_start = EXCLUDED.recommended_start,
				recommended_end = EXCLUDED.recommended_end,
				estimated_hours = EXCLUDED.estimated_hours,
				reasoning = EXCLUDED.reasoning
		`, articleID, businessID, rec.Slot, rec.Title, rec.Description,
			rec.Category, rec.ActionType, rec.Priority,
			rec.ConfidenceScore, rec.ImpactScore, rec.EffortScore,
			rec.RecommendedStart, rec.RecommendedEnd, rec.EstimatedHours, rec.Reasoning)

		if err != nil {
			return fmt.Errorf("failed to upsert recommendation: %w", err)
		}
	}

	_, err := s.tx.ExecContext(ctx, `
		DELETE FROM recommendations
		WHERE article_id = $1 AND business_id = $2 AND slot != ALL($3)
	`, articleID, businessID, pq.Array(slots))

	if err != nil {
		return fmt.Errorf("failed to prune stale recommendations: %w", err)
	}

	return nil
}
