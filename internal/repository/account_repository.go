package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/maheshrc27/postpilot/internal/models"
	"github.com/maheshrc27/postpilot/pkg/utils"
)

type accountRepository struct {
	db     *sql.DB
	cipher *utils.Cipher
}

func NewAccountRepository(db *sql.DB, cipher *utils.Cipher) AccountRepository {
	return &accountRepository{db: db, cipher: cipher}
}

const accountColumns = `id, external_id, username, name, profile_image_url, access_token,
	refresh_token, hashed_refresh_token, token_expiry, credential_version, created_at, updated_at`

func (r *accountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *accountRepository) GetByExternalID(ctx context.Context, externalID string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE external_id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, externalID))
}

func (r *accountRepository) Upsert(ctx context.Context, acc *models.Account) (bool, error) {
	id, err := newID()
	if err != nil {
		return false, err
	}

	accessToken, refreshToken, err := r.seal(acc.AccessToken, acc.RefreshToken)
	if err != nil {
		return false, err
	}

	query := `
		INSERT INTO accounts (
			id,
			external_id,
			username,
			name,
			profile_image_url,
			access_token,
			refresh_token,
			hashed_refresh_token,
			token_expiry
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (external_id) DO UPDATE SET
			username = EXCLUDED.username,
			name = EXCLUDED.name,
			profile_image_url = EXCLUDED.profile_image_url,
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			hashed_refresh_token = EXCLUDED.hashed_refresh_token,
			token_expiry = EXCLUDED.token_expiry,
			credential_version = accounts.credential_version + 1,
			updated_at = NOW()
		RETURNING id, credential_version, created_at, updated_at, (xmax = 0) AS inserted
	`

	var created bool
	err = r.db.QueryRowContext(ctx, query,
		id,
		acc.ExternalID,
		acc.Username,
		acc.Name,
		acc.ProfileImageURL,
		accessToken,
		refreshToken,
		acc.HashedRefreshToken,
		acc.TokenExpiry,
	).Scan(&acc.ID, &acc.CredentialVersion, &acc.CreatedAt, &acc.UpdatedAt, &created)
	if err != nil {
		return false, fmt.Errorf("upsert account: %w", err)
	}
	return created, nil
}

func (r *accountRepository) ReplaceCredentials(ctx context.Context, id string, version int64, creds models.Credentials) error {
	accessToken, refreshToken, err := r.seal(creds.AccessToken, creds.RefreshToken)
	if err != nil {
		return err
	}

	query := `
		UPDATE accounts
		SET
			access_token = $3,
			refresh_token = $4,
			hashed_refresh_token = $5,
			token_expiry = $6,
			credential_version = credential_version + 1,
			updated_at = $7
		WHERE id = $1 AND credential_version = $2
	`
	result, err := r.db.ExecContext(ctx, query, id, version,
		accessToken, refreshToken, creds.HashedRefreshToken, creds.TokenExpiry, time.Now())
	if err != nil {
		return fmt.Errorf("replace credentials: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("replace credentials: %w", err)
	}
	if affected != 1 {
		return ErrCredentialConflict
	}
	return nil
}

func (r *accountRepository) scanOne(row *sql.Row) (*models.Account, error) {
	var acc models.Account
	err := row.Scan(&acc.ID, &acc.ExternalID, &acc.Username, &acc.Name, &acc.ProfileImageURL,
		&acc.AccessToken, &acc.RefreshToken, &acc.HashedRefreshToken, &acc.TokenExpiry,
		&acc.CredentialVersion, &acc.CreatedAt, &acc.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan account: %w", err)
	}

	if acc.AccessToken, err = r.cipher.Decrypt(acc.AccessToken); err != nil {
		return nil, fmt.Errorf("%w: decrypt access token: %w", ErrCorruptRecord, err)
	}
	if acc.RefreshToken, err = r.cipher.Decrypt(acc.RefreshToken); err != nil {
		return nil, fmt.Errorf("%w: decrypt refresh token: %w", ErrCorruptRecord, err)
	}
	return &acc, nil
}

func (r *accountRepository) seal(accessToken, refreshToken string) (string, string, error) {
	sealedAccess, err := r.cipher.Encrypt(accessToken)
	if err != nil {
		return "", "", fmt.Errorf("encrypt access token: %w", err)
	}
	sealedRefresh, err := r.cipher.Encrypt(refreshToken)
	if err != nil {
		return "", "", fmt.Errorf("encrypt refresh token: %w", err)
	}
	return sealedAccess, sealedRefresh, nil
}
