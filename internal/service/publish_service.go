package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/maheshrc27/postpilot/internal/models"
	"github.com/maheshrc27/postpilot/internal/provider"
	"github.com/maheshrc27/postpilot/internal/repository"
	"go.uber.org/zap"
)

// Outcome is the terminal result recorded for one post.
type Outcome struct {
	Status     string
	ExternalID string
	Reason     string
	// Stale is set when the post had already left the pending state and the
	// write was dropped.
	Stale bool
}

type PublishService interface {
	// Process drives one due post to a terminal state. acc may be nil when
	// the owning account no longer exists. A returned error means the store
	// failed and the post is still pending.
	Process(ctx context.Context, post *models.Post, acc *models.Account) (*Outcome, error)
}

type publishService struct {
	posts  repository.PostRepository
	tokens TokenService
	client provider.Client
	now    func() time.Time
	logger *zap.Logger
}

func NewPublishService(posts repository.PostRepository, tokens TokenService, client provider.Client, logger *zap.Logger) PublishService {
	return &publishService{
		posts:  posts,
		tokens: tokens,
		client: client,
		now:    time.Now,
		logger: logger,
	}
}

func (s *publishService) Process(ctx context.Context, post *models.Post, acc *models.Account) (*Outcome, error) {
	log := s.logger.With(zap.String("post_id", post.ID), zap.String("account_id", post.AccountID))

	if acc == nil || acc.AccessToken == "" {
		return s.fail(ctx, log, post, models.ReasonMissingCredential)
	}

	token, err := s.tokens.EnsureValid(ctx, acc)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var rerr *RefreshError
		if errors.As(err, &rerr) {
			log.Warn("proactive refresh failed", zap.String("reason", rerr.Reason), zap.Error(rerr.Err))
			return s.fail(ctx, log, post, rerr.Reason)
		}
		return nil, err
	}

	if _, err := s.client.VerifyIdentity(ctx, token); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Warn("identity verification failed", zap.Error(err))
		return s.recover(ctx, log, post, acc)
	}

	externalID, err := s.client.Publish(ctx, token, post.Text)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		reason := ClassifyFailure(err)
		log.Warn("publish failed", zap.String("reason", reason), zap.Error(err))
		return s.fail(ctx, log, post, reason)
	}
	return s.sent(ctx, log, post, externalID)
}

// recover handles a token that looked valid but was refused by the provider:
// one emergency refresh, then one publish attempt with the new token.
func (s *publishService) recover(ctx context.Context, log *zap.Logger, post *models.Post, acc *models.Account) (*Outcome, error) {
	if acc.RefreshToken == "" {
		return s.fail(ctx, log, post, models.ReasonInvalidCredentialNoRefresh)
	}

	token, err := s.tokens.Refresh(ctx, acc)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var rerr *RefreshError
		if !errors.As(err, &rerr) {
			return nil, err
		}
		log.Warn("emergency refresh failed", zap.String("reason", rerr.Reason), zap.Error(rerr.Err))
		return s.fail(ctx, log, post, models.ReasonInvalidCredential)
	}

	externalID, err := s.client.Publish(ctx, token, post.Text)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Warn("publish after emergency refresh failed",
			zap.String("classified_as", ClassifyFailure(err)),
			zap.Error(err))
		return s.fail(ctx, log, post, models.ReasonInvalidCredential)
	}
	return s.sent(ctx, log, post, externalID)
}

func (s *publishService) sent(ctx context.Context, log *zap.Logger, post *models.Post, externalID string) (*Outcome, error) {
	outcome := &Outcome{Status: models.PostStatusSent, ExternalID: externalID}
	err := s.posts.MarkSent(ctx, post.ID, externalID, s.now())
	return s.settle(log, outcome, err)
}

func (s *publishService) fail(ctx context.Context, log *zap.Logger, post *models.Post, reason string) (*Outcome, error) {
	outcome := &Outcome{Status: models.PostStatusFailed, Reason: reason}
	err := s.posts.MarkFailed(ctx, post.ID, reason, s.now())
	return s.settle(log, outcome, err)
}

func (s *publishService) settle(log *zap.Logger, outcome *Outcome, err error) (*Outcome, error) {
	switch {
	case err == nil:
		log.Info("post settled",
			zap.String("status", outcome.Status),
			zap.String("external_id", outcome.ExternalID),
			zap.String("reason", outcome.Reason))
		return outcome, nil
	case errors.Is(err, repository.ErrPostNotPending):
		log.Warn("post left pending state before settling, dropping write", zap.String("status", outcome.Status))
		outcome.Stale = true
		return outcome, nil
	default:
		return nil, fmt.Errorf("record %s outcome: %w", outcome.Status, err)
	}
}
