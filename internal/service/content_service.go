package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/maheshrc27/postpilot/internal/models"
	"github.com/maheshrc27/postpilot/internal/transfer"
	"go.uber.org/zap"
)

const draftSystemPrompt = "You are a content creation bot. Your only task is to draft a single, engaging tweet based on a given topic. " +
	"The tweet must be under 280 characters and include a relevant hashtag. " +
	"You must return ONLY the tweet content and nothing else. No conversational text, no intro, no outro."

var ErrEmptyDraft = errors.New("model returned no content")

// ContentService drafts post text with an OpenRouter chat model.
type ContentService interface {
	DraftTweet(ctx context.Context, topic string) (string, error)
}

type contentService struct {
	apiKey     string
	model      string
	url        string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewContentService(apiKey, model, url string, timeout time.Duration, logger *zap.Logger) ContentService {
	return &contentService{
		apiKey:     apiKey,
		model:      model,
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (s *contentService) DraftTweet(ctx context.Context, topic string) (string, error) {
	payload, err := json.Marshal(transfer.ChatCompletionRequest{
		Model: s.model,
		Messages: []transfer.ChatMessage{
			{Role: "system", Content: draftSystemPrompt},
			{Role: "user", Content: fmt.Sprintf("Draft a tweet about the topic: %q.", topic)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("encode completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build completion request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read completion response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		s.logger.Error("openrouter returned an error", zap.Int("status", resp.StatusCode), zap.ByteString("body", body))
		return "", fmt.Errorf("completion request returned status %d", resp.StatusCode)
	}

	var out transfer.ChatCompletionResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decode completion response: %w", err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("completion failed: %s", out.Error.Message)
	}
	if len(out.Choices) == 0 || out.Choices[0].Message == nil {
		return "", ErrEmptyDraft
	}

	text := truncateRunes(strings.TrimSpace(out.Choices[0].Message.Content), models.MaxPostLength)
	if text == "" {
		return "", ErrEmptyDraft
	}
	return text, nil
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return strings.TrimSpace(string(runes[:n]))
}
