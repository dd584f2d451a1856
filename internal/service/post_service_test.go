package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/maheshrc27/postpilot/internal/models"
	"github.com/maheshrc27/postpilot/internal/repository"
	"github.com/maheshrc27/postpilot/internal/transfer"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestScheduleValidatesInput(t *testing.T) {
	svc := NewPostService(repository.NewMemoryPostRepository(), zap.NewNop())
	ctx := context.Background()
	at := time.Now().Add(time.Hour).Format(time.RFC3339)

	_, err := svc.Schedule(ctx, "acc", &transfer.PostCreation{Text: "  ", ScheduledDate: at})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Schedule(ctx, "acc", &transfer.PostCreation{Text: strings.Repeat("a", 281), ScheduledDate: at})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Schedule(ctx, "acc", &transfer.PostCreation{Text: "hi", ScheduledDate: "tomorrow"})
	require.ErrorIs(t, err, ErrInvalidInput)

	post, err := svc.Schedule(ctx, "acc", &transfer.PostCreation{Text: strings.Repeat("é", 280), ScheduledDate: at})
	require.NoError(t, err)
	require.Equal(t, models.PostStatusPending, post.Status)
	require.Equal(t, models.PostSourceManual, post.Source)
}

func TestPostInfoHidesOtherAccounts(t *testing.T) {
	svc := NewPostService(repository.NewMemoryPostRepository(), zap.NewNop())
	ctx := context.Background()

	post, err := svc.Create(ctx, "owner", "hello", time.Now(), models.PostSourceManual)
	require.NoError(t, err)

	_, err = svc.PostInfo(ctx, "intruder", post.ID)
	require.ErrorIs(t, err, repository.ErrNotFound)

	got, err := svc.PostInfo(ctx, "owner", post.ID)
	require.NoError(t, err)
	require.Equal(t, "hello", got.Text)
}

func TestListReturnsEmptySlice(t *testing.T) {
	svc := NewPostService(repository.NewMemoryPostRepository(), zap.NewNop())
	posts, err := svc.List(context.Background(), "nobody")
	require.NoError(t, err)
	require.NotNil(t, posts)
	require.Empty(t, posts)
}

func TestRequeue(t *testing.T) {
	repo := repository.NewMemoryPostRepository()
	svc := NewPostService(repo, zap.NewNop())
	ctx := context.Background()

	post, err := svc.Create(ctx, "owner", "hello", time.Now(), models.PostSourceManual)
	require.NoError(t, err)

	_, err = svc.Requeue(ctx, "owner", post.ID)
	require.ErrorIs(t, err, ErrConflict)

	require.NoError(t, repo.MarkFailed(ctx, post.ID, "permission_denied", time.Now()))
	requeued, err := svc.Requeue(ctx, "owner", post.ID)
	require.NoError(t, err)
	require.Equal(t, models.PostStatusPending, requeued.Status)
	require.Empty(t, requeued.Error)
}
