package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/maheshrc27/postpilot/internal/models"
)

type preferenceRepository struct {
	db *sql.DB
}

func NewPreferenceRepository(db *sql.DB) PreferenceRepository {
	return &preferenceRepository{db: db}
}

func (r *preferenceRepository) GetByAccountID(ctx context.Context, accountID string) (*models.Preference, error) {
	query := `SELECT account_id, preferred_post_times, created_at, updated_at FROM preferences WHERE account_id = $1`

	var pref models.Preference
	err := r.db.QueryRowContext(ctx, query, accountID).
		Scan(&pref.AccountID, pq.Array(&pref.PreferredPostTimes), &pref.CreatedAt, &pref.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get preferences: %w", err)
	}
	return &pref, nil
}

func (r *preferenceRepository) Upsert(ctx context.Context, pref *models.Preference) error {
	times := pref.PreferredPostTimes
	if times == nil {
		times = []string{}
	}

	query := `
		INSERT INTO preferences (account_id, preferred_post_times, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (account_id) DO UPDATE SET
			preferred_post_times = EXCLUDED.preferred_post_times,
			updated_at = EXCLUDED.updated_at
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, pref.AccountID, pq.Array(times), time.Now()).
		Scan(&pref.CreatedAt, &pref.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert preferences: %w", err)
	}
	pref.PreferredPostTimes = times
	return nil
}
