package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/maheshrc27/postpilot/internal/models"
	"github.com/maheshrc27/postpilot/internal/provider"
	"github.com/maheshrc27/postpilot/internal/repository"
	"github.com/maheshrc27/postpilot/pkg/utils"
	"go.uber.org/zap"
)

// RefreshError reports why an account's credential could not be renewed.
// Reason is one of models.ReasonNoRefreshToken or models.ReasonRefreshRejected.
type RefreshError struct {
	Reason string
	Err    error
}

func (e *RefreshError) Error() string {
	if e.Err == nil {
		return e.Reason
	}
	return fmt.Sprintf("%s: %v", e.Reason, e.Err)
}

func (e *RefreshError) Unwrap() error { return e.Err }

type TokenService interface {
	// EnsureValid returns an access token that has not expired, refreshing
	// the account first when needed.
	EnsureValid(ctx context.Context, acc *models.Account) (string, error)
	// Refresh unconditionally renews the account's credentials, persists
	// them and then updates acc in place.
	Refresh(ctx context.Context, acc *models.Account) (string, error)
}

type tokenService struct {
	accounts repository.AccountRepository
	client   provider.Client
	lifetime time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

func NewTokenService(accounts repository.AccountRepository, client provider.Client, lifetime time.Duration, logger *zap.Logger) TokenService {
	return &tokenService{
		accounts: accounts,
		client:   client,
		lifetime: lifetime,
		now:      time.Now,
		logger:   logger,
	}
}

func (s *tokenService) EnsureValid(ctx context.Context, acc *models.Account) (string, error) {
	if !acc.Expired(s.now()) {
		return acc.AccessToken, nil
	}

	s.logger.Info("access token expired, refreshing",
		zap.String("account_id", acc.ID),
		zap.Time("token_expiry", acc.TokenExpiry))
	return s.Refresh(ctx, acc)
}

func (s *tokenService) Refresh(ctx context.Context, acc *models.Account) (string, error) {
	if acc.RefreshToken == "" {
		return "", &RefreshError{Reason: models.ReasonNoRefreshToken}
	}

	pair, err := s.client.Refresh(ctx, acc.RefreshToken)
	if err != nil {
		return "", &RefreshError{Reason: models.ReasonRefreshRejected, Err: err}
	}
	if pair.AccessToken == "" {
		return "", &RefreshError{Reason: models.ReasonRefreshRejected, Err: errors.New("provider returned an empty access token")}
	}

	refreshToken := pair.RefreshToken
	if refreshToken == "" {
		// the provider did not rotate the refresh token
		refreshToken = acc.RefreshToken
	}

	hashed, err := utils.HashToken(refreshToken)
	if err != nil {
		return "", fmt.Errorf("hash refresh token: %w", err)
	}

	creds := models.Credentials{
		AccessToken:        pair.AccessToken,
		RefreshToken:       refreshToken,
		HashedRefreshToken: hashed,
		TokenExpiry:        s.now().Add(s.lifetime),
	}
	if err := s.accounts.ReplaceCredentials(ctx, acc.ID, acc.CredentialVersion, creds); err != nil {
		return "", fmt.Errorf("persist refreshed credentials: %w", err)
	}
	acc.Apply(creds)

	s.logger.Info("refreshed credentials",
		zap.String("account_id", acc.ID),
		zap.Time("token_expiry", creds.TokenExpiry))
	return creds.AccessToken, nil
}
