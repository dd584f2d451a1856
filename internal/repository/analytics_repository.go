package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/maheshrc27/postpilot/internal/models"
)

type analyticsRepository struct {
	db *sql.DB
}

func NewAnalyticsRepository(db *sql.DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) GetByAccountID(ctx context.Context, accountID string) (*models.Analytics, error) {
	query := `SELECT account_id, best_times_to_post, hourly_insights, source_object, last_updated
		FROM analytics WHERE account_id = $1`

	var a models.Analytics
	var best, hourly []byte
	err := r.db.QueryRowContext(ctx, query, accountID).
		Scan(&a.AccountID, &best, &hourly, &a.SourceObject, &a.LastUpdated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get analytics: %w", err)
	}

	if err := json.Unmarshal(best, &a.BestTimesToPost); err != nil {
		return nil, fmt.Errorf("decode best times: %w", err)
	}
	if err := json.Unmarshal(hourly, &a.HourlyInsights); err != nil {
		return nil, fmt.Errorf("decode hourly insights: %w", err)
	}
	return &a, nil
}

func (r *analyticsRepository) Upsert(ctx context.Context, a *models.Analytics) error {
	best, err := json.Marshal(nonNilInsights(a.BestTimesToPost))
	if err != nil {
		return fmt.Errorf("encode best times: %w", err)
	}
	hourly, err := json.Marshal(nonNilInsights(a.HourlyInsights))
	if err != nil {
		return fmt.Errorf("encode hourly insights: %w", err)
	}

	query := `
		INSERT INTO analytics (account_id, best_times_to_post, hourly_insights, source_object, last_updated)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (account_id) DO UPDATE SET
			best_times_to_post = EXCLUDED.best_times_to_post,
			hourly_insights = EXCLUDED.hourly_insights,
			source_object = EXCLUDED.source_object,
			last_updated = EXCLUDED.last_updated
	`
	if _, err := r.db.ExecContext(ctx, query, a.AccountID, best, hourly, a.SourceObject, a.LastUpdated); err != nil {
		return fmt.Errorf("upsert analytics: %w", err)
	}
	return nil
}

func nonNilInsights(in []models.HourlyInsight) []models.HourlyInsight {
	if in == nil {
		return []models.HourlyInsight{}
	}
	return in
}
