package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/maheshrc27/postpilot/internal/models"
	"github.com/maheshrc27/postpilot/internal/repository"
	"github.com/maheshrc27/postpilot/internal/transfer"
	"go.uber.org/zap"
)

type PostService interface {
	Schedule(ctx context.Context, accountID string, pc *transfer.PostCreation) (*models.Post, error)
	Create(ctx context.Context, accountID, text string, scheduledDate time.Time, source string) (*models.Post, error)
	List(ctx context.Context, accountID string) ([]*models.Post, error)
	PostInfo(ctx context.Context, accountID, postID string) (*models.Post, error)
	Requeue(ctx context.Context, accountID, postID string) (*models.Post, error)
}

type postService struct {
	pr     repository.PostRepository
	logger *zap.Logger
}

func NewPostService(pr repository.PostRepository, logger *zap.Logger) PostService {
	return &postService{pr: pr, logger: logger}
}

func (s *postService) Schedule(ctx context.Context, accountID string, pc *transfer.PostCreation) (*models.Post, error) {
	if pc == nil {
		return nil, fmt.Errorf("%w: post creation data is nil", ErrInvalidInput)
	}

	scheduledDate, err := time.Parse(time.RFC3339, strings.TrimSpace(pc.ScheduledDate))
	if err != nil {
		return nil, fmt.Errorf("%w: scheduledDate must be an RFC3339 timestamp", ErrInvalidInput)
	}

	return s.Create(ctx, accountID, pc.Text, scheduledDate, models.PostSourceManual)
}

func (s *postService) Create(ctx context.Context, accountID, text string, scheduledDate time.Time, source string) (*models.Post, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: text cannot be empty", ErrInvalidInput)
	}
	if utf8.RuneCountInString(text) > models.MaxPostLength {
		return nil, fmt.Errorf("%w: text exceeds %d characters", ErrInvalidInput, models.MaxPostLength)
	}

	post := &models.Post{
		AccountID:     accountID,
		Text:          text,
		ScheduledDate: scheduledDate.UTC(),
		Status:        models.PostStatusPending,
		Source:        source,
	}
	if err := s.pr.Create(ctx, post); err != nil {
		return nil, err
	}

	s.logger.Info("post scheduled",
		zap.String("post_id", post.ID),
		zap.String("account_id", accountID),
		zap.String("source", source),
		zap.Time("scheduled_date", post.ScheduledDate))
	return post, nil
}

func (s *postService) List(ctx context.Context, accountID string) ([]*models.Post, error) {
	posts, err := s.pr.ListByAccountID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []*models.Post{}
	}
	return posts, nil
}

func (s *postService) PostInfo(ctx context.Context, accountID, postID string) (*models.Post, error) {
	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	// other accounts' posts are reported as missing
	if post.AccountID != accountID {
		return nil, repository.ErrNotFound
	}
	return post, nil
}

func (s *postService) Requeue(ctx context.Context, accountID, postID string) (*models.Post, error) {
	if _, err := s.PostInfo(ctx, accountID, postID); err != nil {
		return nil, err
	}

	if err := s.pr.Requeue(ctx, postID, time.Now()); err != nil {
		if errors.Is(err, repository.ErrPostNotFailed) {
			return nil, fmt.Errorf("%w: only failed posts can be requeued", ErrConflict)
		}
		return nil, err
	}

	s.logger.Info("post requeued", zap.String("post_id", postID), zap.String("account_id", accountID))
	return s.pr.GetByID(ctx, postID)
}
