package database

import (
	"context"
	"database/sql"
	"fmt"
)

// BusinessRepo handles read-side database operations for businesses and
// their per-business keywords.
type BusinessRepo struct {
	db *DB
}

var _ BusinessRepository = (*BusinessRepo)(nil)

func NewBusinessRepo(db *DB) *BusinessRepo {
	return &BusinessRepo{db: db}
}

const businessColumns = `
	id, owner, name, business_type, city, country, neighborhood,
	latitude, longitude, radius_km,
	include_citywide, include_national, has_screens, is_active,
	created_at, updated_at`

func scanBusiness(row interface{ Scan(...any) error }) (*Business, error) {
	var b Business
	err := row.Scan(
		&b.ID, &b.Owner, &b.Name, &b.Type, &b.City, &b.Country, &b.Neighborhood,
		&b.Latitude, &b.Longitude, &b.RadiusKm,
		&b.IncludeCitywide, &b.IncludeNational, &b.HasScreens, &b.Active,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// GetActiveBusinesses returns every active business with its keywords
// attached, so a pipeline run consults the database once up front.
func (r *BusinessRepo) GetActiveBusinesses(ctx context.Context) ([]Business, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+businessColumns+` FROM businesses WHERE is_active ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to get active businesses: %w", err)
	}
	defer rows.Close()

	var businesses []Business
	index := map[string]int{}
	for rows.Next() {
		business, err := scanBusiness(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan business row: %w", err)
		}
		index[business.ID] = len(businesses)
		businesses = append(businesses, *business)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating business rows: %w", err)
	}

	if len(businesses) == 0 {
		return businesses, nil
	}

	kwRows, err := r.db.QueryContext(ctx, `
		SELECT k.id, k.business_id, k.keyword, k.weight, k.is_negative
		FROM business_keywords k
		JOIN businesses b ON b.id = k.business_id
		WHERE b.is_active`)
	if err != nil {
		return nil, fmt.Errorf("failed to get business keywords: %w", err)
	}
	defer kwRows.Close()

	for kwRows.Next() {
		var kw BusinessKeyword
		if err := kwRows.Scan(&kw.ID, &kw.BusinessID, &kw.Keyword, &kw.Weight, &kw.IsNegative); err != nil {
			return nil, fmt.Errorf("failed to scan business keyword row: %w", err)
		}
		if i, ok := index[kw.BusinessID]; ok {
			businesses[i].Keywords = append(businesses[i].Keywords, kw)
		}
	}
	if err := kwRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating business keyword rows: %w", err)
	}

	return businesses, nil
}

// GetReferenceBusiness returns one active business in the given city, used
// as the geographic reference point when an article names no city of its
// own.
func (r *BusinessRepo) GetReferenceBusiness(ctx context.Context, city string) (*Business, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+businessColumns+`
		 FROM businesses
		 WHERE is_active AND city = $1
		 ORDER BY created_at
		 LIMIT 1`, city)

	business, err := scanBusiness(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reference business: %w", err)
	}

	return business, nil
}
