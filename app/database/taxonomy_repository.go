package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// TaxonomyRepo reads the database-backed taxonomy rows that snapshot
// construction consumes. All queries include inactive-row filtering so the
// snapshot only ever sees live configuration.
type TaxonomyRepo struct {
	db *DB
}

var _ TaxonomyRepository = (*TaxonomyRepo)(nil)

func NewTaxonomyRepo(db *DB) *TaxonomyRepo {
	return &TaxonomyRepo{db: db}
}

func (r *TaxonomyRepo) GetEventTypes(ctx context.Context) ([]EventType, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, code, name, relevance_category, display_category, display_subcategory, is_active
		FROM event_types
		WHERE is_active
		ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("failed to get event types: %w", err)
	}
	defer rows.Close()

	var types []EventType
	for rows.Next() {
		var t EventType
		err := rows.Scan(&t.ID, &t.Code, &t.Name, &t.RelevanceCategory,
			&t.DisplayCategory, &t.DisplaySubcategory, &t.Active)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event type row: %w", err)
		}
		types = append(types, t)
	}

	return types, rows.Err()
}

func (r *TaxonomyRepo) GetEventSubtypes(ctx context.Context) ([]EventSubtype, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, event_type_id, code, name, is_active
		FROM event_subtypes
		WHERE is_active
		ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("failed to get event subtypes: %w", err)
	}
	defer rows.Close()

	var subtypes []EventSubtype
	for rows.Next() {
		var s EventSubtype
		if err := rows.Scan(&s.ID, &s.EventTypeID, &s.Code, &s.Name, &s.Active); err != nil {
			return nil, fmt.Errorf("failed to scan event subtype row: %w", err)
		}
		subtypes = append(subtypes, s)
	}

	return subtypes, rows.Err()
}

func (r *TaxonomyRepo) GetExtractionPatterns(ctx context.Context) ([]ExtractionPattern, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, target, COALESCE(event_type_id::text, ''), COALESCE(event_subtype_id::text, ''),
			pattern, weight, is_active
		FROM extraction_patterns
		WHERE is_active
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to get extraction patterns: %w", err)
	}
	defer rows.Close()

	var patterns []ExtractionPattern
	for rows.Next() {
		var p ExtractionPattern
		err := rows.Scan(&p.ID, &p.Target, &p.EventTypeID, &p.EventSubtypeID,
			&p.Pattern, &p.Weight, &p.Active)
		if err != nil {
			return nil, fmt.Errorf("failed to scan extraction pattern row: %w", err)
		}
		patterns = append(patterns, p)
	}

	return patterns, rows.Err()
}

func (r *TaxonomyRepo) GetSportTypes(ctx context.Context) ([]SportType, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, code, name, appeal, keywords, is_active
		FROM sport_types
		WHERE is_active
		ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("failed to get sport types: %w", err)
	}
	defer rows.Close()

	var sports []SportType
	for rows.Next() {
		var s SportType
		err := rows.Scan(&s.ID, &s.Code, &s.Name, &s.Appeal, pq.Array(&s.Keywords), &s.Active)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sport type row: %w", err)
		}
		sports = append(sports, s)
	}

	return sports, rows.Err()
}

func (r *TaxonomyRepo) GetCompetitionLevels(ctx context.Context) ([]CompetitionLevel, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, code, name, sport_code, broadcast_multiplier, keywords, is_active
		FROM competition_levels
		WHERE is_active
		ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("failed to get competition levels: %w", err)
	}
	defer rows.Close()

	var levels []CompetitionLevel
	for rows.Next() {
		var l CompetitionLevel
		err := rows.Scan(&l.ID, &l.Code, &l.Name, &l.SportCode,
			&l.BroadcastMultiplier, pq.Array(&l.Keywords), &l.Active)
		if err != nil {
			return nil, fmt.Errorf("failed to scan competition level row: %w", err)
		}
		levels = append(levels, l)
	}

	return levels, rows.Err()
}

func (r *TaxonomyRepo) GetHypeIndicators(ctx context.Context) ([]HypeIndicator, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, pattern, boost, hype_category, is_active
		FROM hype_indicators
		WHERE is_active
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to get hype indicators: %w", err)
	}
	defer rows.Close()

	var indicators []HypeIndicator
	for rows.Next() {
		var h HypeIndicator
		if err := rows.Scan(&h.ID, &h.Pattern, &h.Boost, &h.Category, &h.Active); err != nil {
			return nil, fmt.Errorf("failed to scan hype indicator row: %w", err)
		}
		indicators = append(indicators, h)
	}

	return indicators, rows.Err()
}

func (r *TaxonomyRepo) GetBusinessTypeKeywords(ctx context.Context) ([]BusinessTypeKeyword, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, business_type, keyword, weight, keyword_category, is_active
		FROM business_type_keywords
		WHERE is_active
		ORDER BY business_type, keyword`)
	if err != nil {
		return nil, fmt.Errorf("failed to get business type keywords: %w", err)
	}
	defer rows.Close()

	var keywords []BusinessTypeKeyword
	for rows.Next() {
		var k BusinessTypeKeyword
		err := rows.Scan(&k.ID, &k.BusinessType, &k.Keyword, &k.Weight, &k.Category, &k.Active)
		if err != nil {
			return nil, fmt.Errorf("failed to scan business type keyword row: %w", err)
		}
		keywords = append(keywords, k)
	}

	return keywords, rows.Err()
}

func (r *TaxonomyRepo) GetBroadcastConfig(ctx context.Context) (*BroadcastConfig, error) {
	var c BroadcastConfig
	err := r.db.QueryRowContext(ctx, `
		SELECT sport_appeal_weight, competition_level_weight, hype_weight, attendance_weight,
			min_score, attendance_small, attendance_medium, attendance_large, requires_screens
		FROM broadcastability_config
		WHERE id = 1`).Scan(
		&c.SportAppealWeight, &c.CompetitionLevelWeight, &c.HypeWeight, &c.AttendanceWeight,
		&c.MinScore, &c.AttendanceSmall, &c.AttendanceMedium, &c.AttendanceLarge, &c.RequiresScreens)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get broadcastability config: %w", err)
	}

	return &c, nil
}

func (r *TaxonomyRepo) SaveBroadcastConfig(ctx context.Context, cfg BroadcastConfig) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO broadcastability_config (
			id, sport_appeal_weight, competition_level_weight, hype_weight, attendance_weight,
			min_score, attendance_small, attendance_medium, attendance_large, requires_screens,
			updated_at
		) VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		ON CONFLICT (id) DO UPDATE SET
			sport_appeal_weight = EXCLUDED.sport_appeal_weight,
			competition_level_weight = EXCLUDED.competition_level_weight,
			hype_weight = EXCLUDED.hype_weight,
			attendance_weight = EXCLUDED.attendance_weight,
			min_score = EXCLUDED.min_score,
			attendance_small = EXCLUDED.attendance_small,
			attendance_medium = EXCLUDED.attendance_medium,
			attendance_large = EXCLUDED.attendance_large,
			requires_screens = EXCLUDED.requires_screens,
			updated_at = NOW()
	`, cfg.SportAppealWeight, cfg.CompetitionLevelWeight, cfg.HypeWeight, cfg.AttendanceWeight,
		cfg.MinScore, cfg.AttendanceSmall, cfg.AttendanceMedium, cfg.AttendanceLarge, cfg.RequiresScreens)

	if err != nil {
		return fmt.Errorf("failed to save broadcastability config: %w", err)
	}

	return nil
}
