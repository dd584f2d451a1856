package repository

import (
	"context"
	"errors"
	"time"

	"github.com/maheshrc27/postpilot/internal/models"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrPostNotPending is returned when a terminal write targets a post that
	// already left the pending state.
	ErrPostNotPending = errors.New("post is not pending")
	ErrPostNotFailed  = errors.New("post is not failed")
	// ErrCredentialConflict is returned when the account's credentials were
	// replaced since they were read.
	ErrCredentialConflict = errors.New("account credentials changed concurrently")
	// ErrCorruptRecord marks a row that was read but cannot be used, such as
	// a token sealed under a different key.
	ErrCorruptRecord = errors.New("corrupt record")
)

type AccountRepository interface {
	GetByID(ctx context.Context, id string) (*models.Account, error)
	GetByExternalID(ctx context.Context, externalID string) (*models.Account, error)
	// Upsert creates the account or refreshes its profile and credentials,
	// keyed by external id. It fills in acc.ID and acc.CredentialVersion.
	Upsert(ctx context.Context, acc *models.Account) (created bool, err error)
	// ReplaceCredentials atomically swaps all credential fields when the
	// stored credential version still equals version.
	ReplaceCredentials(ctx context.Context, id string, version int64, creds models.Credentials) error
}

type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	ListByAccountID(ctx context.Context, accountID string) ([]*models.Post, error)
	// ListDue returns pending posts scheduled at or before now, oldest
	// schedule first, ties broken by creation order.
	ListDue(ctx context.Context, now time.Time) ([]*models.Post, error)
	MarkSent(ctx context.Context, id, externalID string, at time.Time) error
	MarkFailed(ctx context.Context, id, reason string, at time.Time) error
	Requeue(ctx context.Context, id string, at time.Time) error
}

type PreferenceRepository interface {
	GetByAccountID(ctx context.Context, accountID string) (*models.Preference, error)
	Upsert(ctx context.Context, pref *models.Preference) error
}

type AnalyticsRepository interface {
	GetByAccountID(ctx context.Context, accountID string) (*models.Analytics, error)
	Upsert(ctx context.Context, a *models.Analytics) error
}

// Repositories bundles the stores of one storage driver.
type Repositories struct {
	Accounts    AccountRepository
	Posts       PostRepository
	Preferences PreferenceRepository
	Analytics   AnalyticsRepository
}
