package repository

import (
	"context"
	"testing"
	"time"

	"github.com/maheshrc27/postpilot/internal/models"
	"github.com/stretchr/testify/require"
)

func TestMemoryAccountUpsert(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryAccountRepository()

	acc := &models.Account{ExternalID: "42", Username: "jack", AccessToken: "tok1"}
	created, err := repo.Upsert(ctx, acc)
	require.NoError(t, err)
	require.True(t, created)
	require.NotEmpty(t, acc.ID)
	require.EqualValues(t, 1, acc.CredentialVersion)

	again := &models.Account{ExternalID: "42", Username: "jack2", AccessToken: "tok9"}
	created, err = repo.Upsert(ctx, again)
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, acc.ID, again.ID)
	require.EqualValues(t, 2, again.CredentialVersion)

	stored, err := repo.GetByExternalID(ctx, "42")
	require.NoError(t, err)
	require.Equal(t, "tok9", stored.AccessToken)

	_, err = repo.GetByID(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryReplaceCredentialsVersionGuard(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryAccountRepository()

	acc := &models.Account{ExternalID: "42", AccessToken: "tok1", RefreshToken: "rtok1"}
	_, err := repo.Upsert(ctx, acc)
	require.NoError(t, err)

	creds := models.Credentials{AccessToken: "tok2", RefreshToken: "rtok2", TokenExpiry: time.Now().Add(time.Hour)}
	require.NoError(t, repo.ReplaceCredentials(ctx, acc.ID, acc.CredentialVersion, creds))
	require.ErrorIs(t, repo.ReplaceCredentials(ctx, acc.ID, acc.CredentialVersion, creds), ErrCredentialConflict)

	stored, err := repo.GetByID(ctx, acc.ID)
	require.NoError(t, err)
	require.Equal(t, "tok2", stored.AccessToken)
	require.Equal(t, "rtok2", stored.RefreshToken)
	require.Equal(t, acc.CredentialVersion+1, stored.CredentialVersion)
}

func TestMemoryListDueOrdering(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryPostRepository()
	now := time.Now().UTC()

	same := now.Add(-time.Minute)
	first := &models.Post{AccountID: "a", Text: "first", ScheduledDate: same, Status: models.PostStatusPending}
	second := &models.Post{AccountID: "a", Text: "second", ScheduledDate: same, Status: models.PostStatusPending}
	earliest := &models.Post{AccountID: "a", Text: "earliest", ScheduledDate: now.Add(-time.Hour), Status: models.PostStatusPending}
	future := &models.Post{AccountID: "a", Text: "future", ScheduledDate: now.Add(time.Hour), Status: models.PostStatusPending}
	for _, p := range []*models.Post{first, second, earliest, future} {
		require.NoError(t, repo.Create(ctx, p))
	}

	due, err := repo.ListDue(ctx, now)
	require.NoError(t, err)
	require.Len(t, due, 3)
	require.Equal(t, "earliest", due[0].Text)
	require.Equal(t, "first", due[1].Text)
	require.Equal(t, "second", due[2].Text)
}

func TestMemoryPostTransitions(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryPostRepository()
	now := time.Now().UTC()

	post := &models.Post{AccountID: "a", Text: "hi", ScheduledDate: now, Status: models.PostStatusPending}
	require.NoError(t, repo.Create(ctx, post))

	require.NoError(t, repo.MarkFailed(ctx, post.ID, "boom", now))
	require.ErrorIs(t, repo.MarkSent(ctx, post.ID, "999", now), ErrPostNotPending)
	require.ErrorIs(t, repo.MarkFailed(ctx, post.ID, "again", now), ErrPostNotPending)

	require.NoError(t, repo.Requeue(ctx, post.ID, now))
	stored, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	require.Equal(t, models.PostStatusPending, stored.Status)
	require.Empty(t, stored.Error)

	require.NoError(t, repo.MarkSent(ctx, post.ID, "999", now))
	require.ErrorIs(t, repo.Requeue(ctx, post.ID, now), ErrPostNotFailed)

	stored, err = repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	require.Equal(t, models.PostStatusSent, stored.Status)
	require.Equal(t, "999", stored.ExternalID)
	require.NotNil(t, stored.SentAt)
}

func TestMemoryPreferencesCopy(t *testing.T) {
	ctx := context.Background()
	repos := NewMemoryRepositories()

	pref := &models.Preference{AccountID: "a", PreferredPostTimes: []string{"09:00"}}
	require.NoError(t, repos.Preferences.Upsert(ctx, pref))
	pref.PreferredPostTimes[0] = "23:00"

	stored, err := repos.Preferences.GetByAccountID(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, []string{"09:00"}, stored.PreferredPostTimes)
}

func TestOpenStorageRejectsUnknownDriver(t *testing.T) {
	_, err := OpenStorage(context.Background(), StorageConfig{Driver: "dynamodb"}, nil)
	require.ErrorContains(t, err, "unsupported storage driver")

	s, err := OpenStorage(context.Background(), StorageConfig{Driver: "memory"}, nil)
	require.NoError(t, err)
	require.NoError(t, s.Close(context.Background()))
}
