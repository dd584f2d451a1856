package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/maheshrc27/postpilot/internal/models"
	"github.com/maheshrc27/postpilot/internal/repository"
	"github.com/maheshrc27/postpilot/internal/transfer"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func trendsServer(t *testing.T, analysis string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/analyze":
			require.Equal(t, "golang", r.URL.Query().Get("keywords"))
			require.Equal(t, "IN", r.URL.Query().Get("geo"))
			_, _ = w.Write([]byte(`{"analysis":` + analysis + `}`))
		case "/trending":
			_, _ = w.Write([]byte(`{"trending_searches":["go","rust"]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func openRouterServer(t *testing.T, content string, prompts *[]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer or-key", r.Header.Get("Authorization"))

		var req transfer.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 2)
		if prompts != nil {
			*prompts = append(*prompts, req.Messages[1].Content)
		}

		resp := map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"role": "assistant", "content": content}}},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

type draftHarness struct {
	repos *repository.Repositories
	prefs PreferenceService
	svc   *draftService
}

func newDraftHarness(t *testing.T, analysis, content string, prompts *[]string) *draftHarness {
	t.Helper()
	repos := repository.NewMemoryRepositories()
	prefs := NewPreferenceService(repos.Preferences)
	trends := NewTrendsService(trendsServer(t, analysis).URL, time.Second, zap.NewNop())
	drafts := NewContentService("or-key", "test-model", openRouterServer(t, content, prompts).URL, time.Second, zap.NewNop())
	posts := NewPostService(repos.Posts, zap.NewNop())

	svc := NewDraftService(trends, drafts, prefs, posts, zap.NewNop()).(*draftService)
	return &draftHarness{repos: repos, prefs: prefs, svc: svc}
}

const sampleAnalysis = `[{"keyword":"golang","rising_queries":[{"query":"go 1.23","value":250}],"top_queries":[{"query":"golang tutorial","value":100}]}]`

func TestDraftSchedulesAtPreferredTime(t *testing.T) {
	var prompts []string
	h := newDraftHarness(t, sampleAnalysis, "  Go 1.23 is out! #golang  ", &prompts)
	h.svc.now = func() time.Time { return time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC) }

	_, err := h.prefs.Update(context.Background(), "acc", &transfer.PreferenceUpdate{PreferredPostTime: "09:30"})
	require.NoError(t, err)

	post, err := h.svc.Draft(context.Background(), "acc", "golang", "in")
	require.NoError(t, err)
	require.Equal(t, "Go 1.23 is out! #golang", post.Text)
	require.Equal(t, models.PostSourceAutomated, post.Source)
	require.Equal(t, models.PostStatusPending, post.Status)
	require.True(t, post.ScheduledDate.Equal(time.Date(2026, 3, 11, 9, 30, 0, 0, time.UTC)))

	require.Len(t, prompts, 1)
	require.Contains(t, prompts[0], "go 1.23")
	require.Contains(t, prompts[0], "golang tutorial")
}

func TestDraftTruncatesLongText(t *testing.T) {
	h := newDraftHarness(t, sampleAnalysis, strings.Repeat("x", 400), nil)
	_, err := h.prefs.Update(context.Background(), "acc", &transfer.PreferenceUpdate{PreferredPostTime: "09:30"})
	require.NoError(t, err)

	post, err := h.svc.Draft(context.Background(), "acc", "golang", "IN")
	require.NoError(t, err)
	require.Len(t, post.Text, models.MaxPostLength)
}

func TestDraftWithoutPreferredTime(t *testing.T) {
	h := newDraftHarness(t, sampleAnalysis, "tweet", nil)

	_, err := h.svc.Draft(context.Background(), "acc", "golang", "IN")
	require.ErrorIs(t, err, ErrNoPreferredTime)
}

func TestDraftWithoutTrends(t *testing.T) {
	h := newDraftHarness(t, `[]`, "tweet", nil)
	_, err := h.prefs.Update(context.Background(), "acc", &transfer.PreferenceUpdate{PreferredPostTime: "09:30"})
	require.NoError(t, err)

	_, err = h.svc.Draft(context.Background(), "acc", "golang", "IN")
	require.ErrorIs(t, err, ErrNoTrends)

	posts, err := h.repos.Posts.ListByAccountID(context.Background(), "acc")
	require.NoError(t, err)
	require.Empty(t, posts)
}

func TestGeneralTrending(t *testing.T) {
	svc := NewTrendsService(trendsServer(t, sampleAnalysis).URL, time.Second, zap.NewNop())

	raw, err := svc.GeneralTrending(context.Background(), "", 20)
	require.NoError(t, err)
	require.JSONEq(t, `["go","rust"]`, string(raw))
}

func TestTrendsServiceUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	svc := NewTrendsService(srv.URL, time.Second, zap.NewNop())
	_, err := svc.AnalyzeRaw(context.Background(), []string{"go"}, "US")
	require.ErrorIs(t, err, ErrTrendsUnavailable)

	_, err = svc.AnalyzeRaw(context.Background(), []string{" ", ""}, "US")
	require.Error(t, err)
}

func TestDraftTweetEmptyChoice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	svc := NewContentService("k", "m", srv.URL, time.Second, zap.NewNop())
	_, err := svc.DraftTweet(context.Background(), "topic")
	require.ErrorIs(t, err, ErrEmptyDraft)
}
