package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/maheshrc27/postpilot/internal/models"
	"go.uber.org/zap"
)

var (
	ErrNoPreferredTime = errors.New("account has not set a preferred posting time")
	ErrNoTrends        = errors.New("no relevant trends or queries found for the given keyword")
)

// DraftService turns a keyword into a scheduled, automatically written post.
type DraftService interface {
	Draft(ctx context.Context, accountID, keyword, geo string) (*models.Post, error)
}

type draftService struct {
	trends      TrendsService
	content     ContentService
	preferences PreferenceService
	posts       PostService
	now         func() time.Time
	logger      *zap.Logger
}

func NewDraftService(trends TrendsService, content ContentService, preferences PreferenceService, posts PostService, logger *zap.Logger) DraftService {
	return &draftService{
		trends:      trends,
		content:     content,
		preferences: preferences,
		posts:       posts,
		now:         time.Now,
		logger:      logger,
	}
}

func (s *draftService) Draft(ctx context.Context, accountID, keyword, geo string) (*models.Post, error) {
	analysis, err := s.trends.Analyze(ctx, []string{keyword}, geo)
	if err != nil {
		return nil, err
	}
	if len(analysis) == 0 {
		return nil, ErrNoTrends
	}

	pref, err := s.preferences.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if len(pref.PreferredPostTimes) == 0 {
		return nil, ErrNoPreferredTime
	}

	first := analysis[0]
	rising := make([]string, 0, len(first.RisingQueries))
	for _, q := range first.RisingQueries {
		rising = append(rising, q.Query)
	}
	top := make([]string, 0, len(first.TopQueries))
	for _, q := range first.TopQueries {
		top = append(top, q.Query)
	}
	topic := fmt.Sprintf("The main keyword is %q. Rising queries include: %s. Top related queries are: %s.",
		keyword, strings.Join(rising, ", "), strings.Join(top, ", "))

	text, err := s.content.DraftTweet(ctx, topic)
	if err != nil {
		return nil, err
	}

	scheduledDate, err := NextOccurrence(pref.PreferredPostTimes[0], s.now())
	if err != nil {
		return nil, err
	}

	post, err := s.posts.Create(ctx, accountID, text, scheduledDate, models.PostSourceAutomated)
	if err != nil {
		return nil, err
	}

	s.logger.Info("drafted post",
		zap.String("account_id", accountID),
		zap.String("keyword", keyword),
		zap.String("post_id", post.ID))
	return post, nil
}
