package database

import (
	"context"
	"fmt"

	"github.com/lib/pq"
)

// SeedStore is the write-side interface used to populate taxonomy tables
// from the bundled seed files on first start.
type SeedStore interface {
	CountTaxonomyRows(ctx context.Context) (int, error)
	InsertEventType(ctx context.Context, t EventType) (string, error)
	InsertEventSubtype(ctx context.Context, s EventSubtype) (string, error)
	InsertExtractionPattern(ctx context.Context, p ExtractionPattern) error
	InsertSportType(ctx context.Context, s SportType) error
	InsertCompetitionLevel(ctx context.Context, l CompetitionLevel) error
	InsertHypeIndicator(ctx context.Context, h HypeIndicator) error
	InsertBusinessTypeKeyword(ctx context.Context, k BusinessTypeKeyword) error
}

var _ SeedStore = (*TaxonomyRepo)(nil)

// CountTaxonomyRows reports how many event types exist. Zero means the
// taxonomy has never been seeded.
func (r *TaxonomyRepo) CountTaxonomyRows(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM event_types`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count taxonomy rows: %w", err)
	}
	return count, nil
}

func (r *TaxonomyRepo) InsertEventType(ctx context.Context, t EventType) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO event_types (code, name, relevance_category, display_category, display_subcategory)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, t.Code, t.Name, t.RelevanceCategory, t.DisplayCategory, t.DisplaySubcategory).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to insert event type %q: %w", t.Code, err)
	}
	return id, nil
}

func (r *TaxonomyRepo) InsertEventSubtype(ctx context.Context, s EventSubtype) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO event_subtypes (event_type_id, code, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (event_type_id, code) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, s.EventTypeID, s.Code, s.Name).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to insert event subtype %q: %w", s.Code, err)
	}
	return id, nil
}

func (r *TaxonomyRepo) InsertExtractionPattern(ctx context.Context, p ExtractionPattern) error {
	var typeID, subtypeID any
	if p.EventTypeID != "" {
		typeID = p.EventTypeID
	}
	if p.EventSubtypeID != "" {
		subtypeID = p.EventSubtypeID
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO extraction_patterns (target, event_type_id, event_subtype_id, pattern, weight)
		VALUES ($1, $2, $3, $4, $5)
	`, p.Target, typeID, subtypeID, p.Pattern, p.Weight)
	if err != nil {
		return fmt.Errorf("failed to insert extraction pattern %q: %w", p.Pattern, err)
	}
	return nil
}

func (r *TaxonomyRepo) InsertSportType(ctx context.Context, s SportType) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sport_types (code, name, appeal, keywords)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (code) DO UPDATE SET
			name = EXCLUDED.name, appeal = EXCLUDED.appeal, keywords = EXCLUDED.keywords
	`, s.Code, s.Name, s.Appeal, pq.Array(s.Keywords))
	if err != nil {
		return fmt.Errorf("failed to insert sport type %q: %w", s.Code, err)
	}
	return nil
}

func (r *TaxonomyRepo) InsertCompetitionLevel(ctx context.Context, l CompetitionLevel) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO competition_levels (code, name, sport_code, broadcast_multiplier, keywords)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (code) DO UPDATE SET
			name = EXCLUDED.name, sport_code = EXCLUDED.sport_code,
			broadcast_multiplier = EXCLUDED.broadcast_multiplier, keywords = EXCLUDED.keywords
	`, l.Code, l.Name, l.SportCode, l.BroadcastMultiplier, pq.Array(l.Keywords))
	if err != nil {
		return fmt.Errorf("failed to insert competition level %q: %w", l.Code, err)
	}
	return nil
}

func (r *TaxonomyRepo) InsertHypeIndicator(ctx context.Context, h HypeIndicator) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO hype_indicators (pattern, boost, hype_category)
		VALUES ($1, $2, $3)
		ON CONFLICT (pattern, hype_category) DO UPDATE SET boost = EXCLUDED.boost
	`, h.Pattern, h.Boost, h.Category)
	if err != nil {
		return fmt.Errorf("failed to insert hype indicator %q: %w", h.Pattern, err)
	}
	return nil
}

func (r *TaxonomyRepo) InsertBusinessTypeKeyword(ctx context.Context, k BusinessTypeKeyword) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO business_type_keywords (business_type, keyword, weight, keyword_category)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (business_type, keyword) DO UPDATE SET
			weight = EXCLUDED.weight, keyword_category = EXCLUDED.keyword_category
	`, k.BusinessType, k.Keyword, k.Weight, k.Category)
	if err != nil {
		return fmt.Errorf("failed to insert business type keyword %q: %w", k.Keyword, err)
	}
	return nil
}
