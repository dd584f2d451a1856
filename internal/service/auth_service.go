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
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

var ErrInvalidState = errors.New("invalid or expired login state")

// StateStore correlates a login redirect with its PKCE verifier.
type StateStore interface {
	SaveState(ctx context.Context, state, verifier string, ttl time.Duration) error
	TakeState(ctx context.Context, state string) (string, bool, error)
}

type AuthConfig struct {
	SecretKey     string
	SessionTTL    time.Duration
	TokenLifetime time.Duration
	StateTTL      time.Duration
}

type AuthService interface {
	LoginURL(ctx context.Context) (string, error)
	// LoginCallback finishes the login and returns the account with a
	// session token for it.
	LoginCallback(ctx context.Context, state, code string) (*models.Account, string, error)
}

type authService struct {
	cfg         AuthConfig
	auth        provider.Authenticator
	client      provider.Client
	accounts    repository.AccountRepository
	preferences PreferenceService
	states      StateStore
	logger      *zap.Logger
}

func NewAuthService(
	cfg AuthConfig,
	auth provider.Authenticator,
	client provider.Client,
	accounts repository.AccountRepository,
	preferences PreferenceService,
	states StateStore,
	logger *zap.Logger) AuthService {
	return &authService{
		cfg:         cfg,
		auth:        auth,
		client:      client,
		accounts:    accounts,
		preferences: preferences,
		states:      states,
		logger:      logger,
	}
}

func (s *authService) LoginURL(ctx context.Context) (string, error) {
	state, err := gonanoid.New(32)
	if err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	verifier := oauth2.GenerateVerifier()

	if err := s.states.SaveState(ctx, state, verifier, s.cfg.StateTTL); err != nil {
		return "", err
	}
	return s.auth.AuthCodeURL(state, verifier), nil
}

func (s *authService) LoginCallback(ctx context.Context, state, code string) (*models.Account, string, error) {
	if state == "" || code == "" {
		return nil, "", ErrInvalidState
	}

	verifier, ok, err := s.states.TakeState(ctx, state)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		return nil, "", ErrInvalidState
	}

	pair, err := s.auth.Exchange(ctx, code, verifier)
	if err != nil {
		return nil, "", err
	}

	identity, err := s.client.VerifyIdentity(ctx, pair.AccessToken)
	if err != nil {
		return nil, "", fmt.Errorf("load profile: %w", err)
	}

	var hashed string
	if pair.RefreshToken != "" {
		if hashed, err = utils.HashToken(pair.RefreshToken); err != nil {
			return nil, "", fmt.Errorf("hash refresh token: %w", err)
		}
	}

	acc := &models.Account{
		ExternalID:         identity.ID,
		Username:           identity.Username,
		Name:               identity.Name,
		ProfileImageURL:    identity.ProfileImageURL,
		AccessToken:        pair.AccessToken,
		RefreshToken:       pair.RefreshToken,
		HashedRefreshToken: hashed,
		TokenExpiry:        time.Now().Add(s.cfg.TokenLifetime),
	}
	created, err := s.accounts.Upsert(ctx, acc)
	if err != nil {
		return nil, "", err
	}
	if created {
		if err := s.preferences.EnsureDefaults(ctx, acc.ID); err != nil {
			return nil, "", err
		}
	}

	token, err := utils.GenerateToken(s.cfg.SecretKey, acc.ID, s.cfg.SessionTTL)
	if err != nil {
		return nil, "", fmt.Errorf("issue session: %w", err)
	}

	s.logger.Info("account logged in",
		zap.String("account_id", acc.ID),
		zap.String("username", acc.Username),
		zap.Bool("created", created))
	return acc, token, nil
}
