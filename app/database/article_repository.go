package database

import (
	"context"
	"database/sql"
	"fmt"
)

// ArticleRepo handles read-side database operations for news articles.
type ArticleRepo struct {
	db *DB
}

var _ ArticleRepository = (*ArticleRepo)(nil)

func NewArticleRepo(db *DB) *ArticleRepo {
	return &ArticleRepo{db: db}
}

const articleColumns = `
	id, source_id, title, content, url, author, published_at,
	event_type, event_subtype, category, subcategory, sport_type, competition_level,
	city, neighborhood, venue, country, latitude, longitude,
	event_start, event_end, duration_hours, expected_attendance, event_scale, local_involvement,
	broadcastability_score, hype_score, is_broadcastable,
	suitability_score, relevance_score, completeness_score,
	processed, last_error, created_at, updated_at`

func scanArticle(row interface{ Scan(...any) error }) (*Article, error) {
	var a Article
	err := row.Scan(
		&a.ID, &a.SourceID, &a.Title, &a.Content, &a.URL, &a.Author, &a.PublishedAt,
		&a.EventType, &a.EventSubtype, &a.Category, &a.Subcategory, &a.SportType, &a.CompetitionLevel,
		&a.City, &a.Neighborhood, &a.Venue, &a.Country, &a.Latitude, &a.Longitude,
		&a.EventStart, &a.EventEnd, &a.DurationHours, &a.ExpectedAttendance, &a.Scale, &a.LocalInvolvement,
		&a.BroadcastabilityScore, &a.HypeScore, &a.IsBroadcastable,
		&a.SuitabilityScore, &a.RelevanceScore, &a.CompletenessScore,
		&a.Processed, &a.LastError, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *ArticleRepo) GetArticle(ctx context.Context, id string) (*Article, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+articleColumns+` FROM news_articles WHERE id = $1`, id)

	article, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get article: %w", err)
	}

	return article, nil
}

func (r *ArticleRepo) GetUnprocessedArticles(ctx context.Context, limit int) ([]Article, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+articleColumns+`
		 FROM news_articles
		 WHERE NOT processed AND last_error = ''
		 ORDER BY published_at DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get unprocessed articles: %w", err)
	}
	defer rows.Close()

	var articles []Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article row: %w", err)
		}
		articles = append(articles, *article)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating article rows: %w", err)
	}

	return articles, nil
}

func (r *ArticleRepo) GetArticleCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM news_articles`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get article count: %w", err)
	}
	return count, nil
}

// SetProcessingError records a failure message outside the failed
// transaction, so the article keeps its last-known-good state plus a
// human-readable error string.
func (r *ArticleRepo) SetProcessingError(ctx context.Context, id, message string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE news_articles SET last_error = $2, updated_at = NOW() WHERE id = $1`,
		id, message)
	if err != nil {
		return fmt.Errorf("failed to set processing error: %w", err)
	}
	return nil
}
