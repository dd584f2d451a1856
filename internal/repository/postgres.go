package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	"github.com/maheshrc27/postpilot/pkg/utils"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

//go:embed schema.sql
var postgresSchema string

// NewPostgresRepositories wires every store onto one *sql.DB. Tokens are
// sealed with cipher before they reach the accounts table.
func NewPostgresRepositories(db *sql.DB, cipher *utils.Cipher) *Repositories {
	return &Repositories{
		Accounts:    NewAccountRepository(db, cipher),
		Posts:       NewPostRepository(db),
		Preferences: NewPreferenceRepository(db),
		Analytics:   NewAnalyticsRepository(db),
	}
}

// EnsurePostgresSchema creates missing tables and indexes.
func EnsurePostgresSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, postgresSchema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func newID() (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	return id, nil
}
