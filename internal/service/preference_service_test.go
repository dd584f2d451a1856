package service

import (
	"context"
	"testing"
	"time"

	"github.com/maheshrc27/postpilot/internal/repository"
	"github.com/maheshrc27/postpilot/internal/transfer"
	"github.com/stretchr/testify/require"
)

func TestParsePostTime(t *testing.T) {
	got, err := ParsePostTime("9:05")
	require.NoError(t, err)
	require.Equal(t, "09:05", got)

	for _, bad := range []string{"", "24:00", "12:60", "noon", "12-30"} {
		_, err := ParsePostTime(bad)
		require.ErrorIs(t, err, ErrInvalidInput, bad)
	}
}

func TestNextOccurrence(t *testing.T) {
	loc := time.FixedZone("test", 2*60*60)
	now := time.Date(2026, 3, 10, 14, 30, 0, 0, loc)

	later, err := NextOccurrence("18:00", now)
	require.NoError(t, err)
	require.Equal(t, time.Date(2026, 3, 10, 18, 0, 0, 0, loc), later)

	earlier, err := NextOccurrence("09:15", now)
	require.NoError(t, err)
	require.Equal(t, time.Date(2026, 3, 11, 9, 15, 0, 0, loc), earlier)

	same, err := NextOccurrence("14:30", now)
	require.NoError(t, err)
	require.True(t, same.Equal(now))
}

func TestPreferenceUpdate(t *testing.T) {
	repos := repository.NewMemoryRepositories()
	svc := NewPreferenceService(repos.Preferences)
	ctx := context.Background()

	empty, err := svc.Get(ctx, "acc")
	require.NoError(t, err)
	require.Empty(t, empty.PreferredPostTimes)

	pref, err := svc.Update(ctx, "acc", &transfer.PreferenceUpdate{
		PreferredPostTime:  "8:00",
		PreferredPostTimes: []string{"18:30", "08:00"},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"08:00", "18:30"}, pref.PreferredPostTimes)

	_, err = svc.Update(ctx, "acc", &transfer.PreferenceUpdate{PreferredPostTimes: []string{"25:00"}})
	require.ErrorIs(t, err, ErrInvalidInput)

	stored, err := svc.Get(ctx, "acc")
	require.NoError(t, err)
	require.Equal(t, []string{"08:00", "18:30"}, stored.PreferredPostTimes)
}

func TestEnsureDefaultsKeepsExisting(t *testing.T) {
	repos := repository.NewMemoryRepositories()
	svc := NewPreferenceService(repos.Preferences)
	ctx := context.Background()

	_, err := svc.Update(ctx, "acc", &transfer.PreferenceUpdate{PreferredPostTime: "10:00"})
	require.NoError(t, err)
	require.NoError(t, svc.EnsureDefaults(ctx, "acc"))

	pref, err := svc.Get(ctx, "acc")
	require.NoError(t, err)
	require.Equal(t, []string{"10:00"}, pref.PreferredPostTimes)

	require.NoError(t, svc.EnsureDefaults(ctx, "new"))
	_, err = repos.Preferences.GetByAccountID(ctx, "new")
	require.NoError(t, err)
}
