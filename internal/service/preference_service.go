package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/maheshrc27/postpilot/internal/models"
	"github.com/maheshrc27/postpilot/internal/repository"
	"github.com/maheshrc27/postpilot/internal/transfer"
)

const postTimeLayout = "15:04"

type PreferenceService interface {
	Get(ctx context.Context, accountID string) (*models.Preference, error)
	Update(ctx context.Context, accountID string, upd *transfer.PreferenceUpdate) (*models.Preference, error)
	EnsureDefaults(ctx context.Context, accountID string) error
}

type preferenceService struct {
	pr repository.PreferenceRepository
}

func NewPreferenceService(pr repository.PreferenceRepository) PreferenceService {
	return &preferenceService{pr: pr}
}

func (s *preferenceService) Get(ctx context.Context, accountID string) (*models.Preference, error) {
	pref, err := s.pr.GetByAccountID(ctx, accountID)
	if errors.Is(err, repository.ErrNotFound) {
		return &models.Preference{AccountID: accountID, PreferredPostTimes: []string{}}, nil
	}
	return pref, err
}

func (s *preferenceService) Update(ctx context.Context, accountID string, upd *transfer.PreferenceUpdate) (*models.Preference, error) {
	if upd == nil {
		return nil, fmt.Errorf("%w: preferences are required", ErrInvalidInput)
	}

	raw := upd.PreferredPostTimes
	if upd.PreferredPostTime != "" {
		raw = append([]string{upd.PreferredPostTime}, raw...)
	}

	times := make([]string, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, t := range raw {
		normalized, err := ParsePostTime(t)
		if err != nil {
			return nil, err
		}
		if !seen[normalized] {
			seen[normalized] = true
			times = append(times, normalized)
		}
	}

	pref := &models.Preference{AccountID: accountID, PreferredPostTimes: times}
	if err := s.pr.Upsert(ctx, pref); err != nil {
		return nil, err
	}
	return pref, nil
}

func (s *preferenceService) EnsureDefaults(ctx context.Context, accountID string) error {
	_, err := s.pr.GetByAccountID(ctx, accountID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	return s.pr.Upsert(ctx, &models.Preference{AccountID: accountID, PreferredPostTimes: []string{}})
}

// ParsePostTime validates an HH:MM wall-clock time and returns it zero padded.
func ParsePostTime(value string) (string, error) {
	value = strings.TrimSpace(value)
	if len(value) == 4 && value[1] == ':' {
		value = "0" + value
	}
	t, err := time.Parse(postTimeLayout, value)
	if err != nil {
		return "", fmt.Errorf("%w: %q is not a valid HH:MM time", ErrInvalidInput, value)
	}
	return t.Format(postTimeLayout), nil
}

// NextOccurrence returns the next time the wall clock reads hhmm in now's
// location: today when that moment has not passed yet, otherwise tomorrow.
func NextOccurrence(hhmm string, now time.Time) (time.Time, error) {
	normalized, err := ParsePostTime(hhmm)
	if err != nil {
		return time.Time{}, err
	}
	t, _ := time.Parse(postTimeLayout, normalized)

	next := time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location())
	if next.Before(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next, nil
}
