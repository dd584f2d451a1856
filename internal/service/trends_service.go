package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/maheshrc27/postpilot/internal/transfer"
	"go.uber.org/zap"
)

var ErrTrendsUnavailable = errors.New("trends service unavailable")

// TrendsService is a client for the trends microservice.
type TrendsService interface {
	GeneralTrending(ctx context.Context, geo string, limit int) (json.RawMessage, error)
	AnalyzeRaw(ctx context.Context, keywords []string, geo string) (json.RawMessage, error)
	Analyze(ctx context.Context, keywords []string, geo string) ([]transfer.KeywordAnalysis, error)
}

type trendsService struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewTrendsService(baseURL string, timeout time.Duration, logger *zap.Logger) TrendsService {
	return &trendsService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (s *trendsService) GeneralTrending(ctx context.Context, geo string, limit int) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("geo", defaultGeo(geo))
	params.Set("limit", strconv.Itoa(limit))

	var out transfer.TrendingResponse
	if err := s.get(ctx, "/trending", params, &out); err != nil {
		return nil, err
	}
	return out.TrendingSearches, nil
}

func (s *trendsService) AnalyzeRaw(ctx context.Context, keywords []string, geo string) (json.RawMessage, error) {
	cleaned := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			cleaned = append(cleaned, k)
		}
	}
	if len(cleaned) == 0 {
		return nil, fmt.Errorf("%w: at least one keyword is required", ErrInvalidInput)
	}

	params := url.Values{}
	params.Set("keywords", strings.Join(cleaned, ","))
	params.Set("geo", defaultGeo(geo))

	var out transfer.AnalyzeResponse
	if err := s.get(ctx, "/analyze", params, &out); err != nil {
		return nil, err
	}
	return out.Analysis, nil
}

func (s *trendsService) Analyze(ctx context.Context, keywords []string, geo string) ([]transfer.KeywordAnalysis, error) {
	raw, err := s.AnalyzeRaw(ctx, keywords, geo)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var analysis []transfer.KeywordAnalysis
	if err := json.Unmarshal(raw, &analysis); err != nil {
		return nil, fmt.Errorf("decode keyword analysis: %w", err)
	}
	return analysis, nil
}

func (s *trendsService) get(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build trends request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Error("trends request failed", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrTrendsUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		s.logger.Error("trends service returned an error",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body))
		return fmt.Errorf("%w: status %d", ErrTrendsUnavailable, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode trends response: %w", err)
	}
	return nil
}

func defaultGeo(geo string) string {
	if geo == "" {
		return "US"
	}
	return strings.ToUpper(geo)
}
