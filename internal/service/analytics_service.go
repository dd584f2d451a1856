package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/h2non/filetype"
	"github.com/maheshrc27/postpilot/internal/models"
	"github.com/maheshrc27/postpilot/internal/repository"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
)

const bestTimesCount = 3

// timestamp layouts seen in analytics exports
var analyticsTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"Mon Jan 02 15:04:05 -0700 2006",
	"01/02/2006 15:04",
	"01/02/2006 15:04:05",
}

var ErrNoInsights = errors.New("no analytics insights found, upload a CSV file first")

type AnalyticsService interface {
	Upload(ctx context.Context, accountID string, content []byte) (*models.Analytics, error)
	Insights(ctx context.Context, accountID string) (*models.Analytics, error)
}

type analyticsService struct {
	ar     repository.AnalyticsRepository
	store  ObjectStore
	loc    *time.Location
	logger *zap.Logger
}

// NewAnalyticsService builds the service. store may be nil, in which case
// uploads are not archived.
func NewAnalyticsService(ar repository.AnalyticsRepository, store ObjectStore, logger *zap.Logger) AnalyticsService {
	return &analyticsService{ar: ar, store: store, loc: time.Local, logger: logger}
}

func (s *analyticsService) Upload(ctx context.Context, accountID string, content []byte) (*models.Analytics, error) {
	kind, err := filetype.Match(content)
	if err == nil && kind != filetype.Unknown {
		return nil, fmt.Errorf("%w: expected a CSV file, got %s", ErrInvalidInput, kind.MIME.Value)
	}

	hourly, err := s.hourlyInsights(content)
	if err != nil {
		return nil, err
	}

	best := hourly
	if len(best) > bestTimesCount {
		best = best[:bestTimesCount]
	}

	analytics := &models.Analytics{
		AccountID:       accountID,
		BestTimesToPost: append([]models.HourlyInsight{}, best...),
		HourlyInsights:  hourly,
		LastUpdated:     time.Now().UTC(),
	}

	if s.store != nil {
		key, err := archiveKey(accountID)
		if err != nil {
			return nil, err
		}
		if err := s.store.Put(ctx, key, content, "text/csv"); err != nil {
			return nil, err
		}
		analytics.SourceObject = key
	}

	if err := s.ar.Upsert(ctx, analytics); err != nil {
		return nil, err
	}

	s.logger.Info("analytics processed",
		zap.String("account_id", accountID),
		zap.Int("hours", len(hourly)),
		zap.String("source_object", analytics.SourceObject))
	return analytics, nil
}

func (s *analyticsService) Insights(ctx context.Context, accountID string) (*models.Analytics, error) {
	analytics, err := s.ar.GetByAccountID(ctx, accountID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNoInsights
	}
	return analytics, err
}

// hourlyInsights averages engagements per hour of day, best hour first.
// Rows with a missing or unparsable time are skipped.
func (s *analyticsService) hourlyInsights(content []byte) ([]models.HourlyInsight, error) {
	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []models.HourlyInsight{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse CSV file: %v", ErrInvalidInput, err)
	}

	timeCol, engagementCol := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "time":
			timeCol = i
		case "engagements":
			engagementCol = i
		}
	}
	if timeCol < 0 {
		return nil, fmt.Errorf("%w: CSV file has no time column", ErrInvalidInput)
	}

	type bucket struct {
		engagements float64
		posts       int
	}
	byHour := map[int]*bucket{}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: failed to parse CSV file: %v", ErrInvalidInput, err)
		}
		if timeCol >= len(record) {
			continue
		}

		at, ok := s.parseTime(record[timeCol])
		if !ok {
			continue
		}

		var engagement float64
		if engagementCol >= 0 && engagementCol < len(record) {
			engagement = parseEngagement(record[engagementCol])
		}

		b := byHour[at.Hour()]
		if b == nil {
			b = &bucket{}
			byHour[at.Hour()] = b
		}
		b.engagements += engagement
		b.posts++
	}

	insights := make([]models.HourlyInsight, 0, len(byHour))
	for hour, b := range byHour {
		insights = append(insights, models.HourlyInsight{
			Hour:              hour,
			AverageEngagement: b.engagements / float64(b.posts),
		})
	}
	sort.Slice(insights, func(i, j int) bool {
		if insights[i].AverageEngagement != insights[j].AverageEngagement {
			return insights[i].AverageEngagement > insights[j].AverageEngagement
		}
		return insights[i].Hour < insights[j].Hour
	})
	return insights, nil
}

func (s *analyticsService) parseTime(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range analyticsTimeLayouts {
		if t, err := time.ParseInLocation(layout, value, s.loc); err == nil {
			return t.In(s.loc), true
		}
	}
	return time.Time{}, false
}

// parseEngagement reads the leading integer of value; anything else counts as 0.
func parseEngagement(value string) float64 {
	value = strings.TrimSpace(value)
	end := 0
	for end < len(value) && (value[end] >= '0' && value[end] <= '9' || end == 0 && value[end] == '-') {
		end++
	}
	n, err := strconv.Atoi(value[:end])
	if err != nil {
		return 0
	}
	return float64(n)
}

func archiveKey(accountID string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate object key: %w", err)
	}
	return fmt.Sprintf("analytics/%s/%s.csv", accountID, id), nil
}
