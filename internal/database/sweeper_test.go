package database

import (
	"context"
	"testing"
	"time"

	"github.com/nfrund/goonies/internal/domain"
	"github.com/nfrund/goonies/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

func at(t time.Time) *surrealmodels.CustomDateTime {
	return &surrealmodels.CustomDateTime{Time: t}
}

func seedSweepData(t *testing.T, now time.Time) (*testutils.MemoryEvents, *testutils.MemoryResets) {
	t.Helper()
	ctx := context.Background()
	owner := surrealmodels.NewRecordID("user", "owner")

	events := testutils.NewMemoryEvents()
	for _, end := range []time.Time{now.Add(-time.Hour), now.Add(time.Hour)} {
		_, err := events.Create(ctx, &domain.Event{
			Title:     "e",
			ImageURL:  "https://img.example/e.png",
			StartAt:   at(end.Add(-2 * time.Hour)),
			EndAt:     at(end),
			CreatedBy: &owner,
		})
		require.NoError(t, err)
	}

	resets := testutils.NewMemoryResets()
	for _, exp := range []time.Time{now.Add(-time.Minute), now.Add(-time.Second), now.Add(time.Hour)} {
		_, err := resets.Create(ctx, &domain.PasswordReset{UserID: &owner, TokenHash: exp.String(), ExpiresAt: at(exp)})
		require.NoError(t, err)
	}
	return events, resets
}

func TestSweeper_Sweep(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	events, resets := seedSweepData(t, now)

	s := NewSweeper(events, resets, WithClock(func() time.Time { return now }))
	res, err := s.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SweepResult{Events: 1, Resets: 2}, res)

	remaining, _ := events.List(context.Background())
	assert.Len(t, remaining, 1)
	assert.Equal(t, 1, resets.Len())
}

func TestSweeper_SkipsWhenLocked(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	events, resets := seedSweepData(t, now)
	_, client := newTestRedis(t)
	ctx := context.Background()

	holder := NewRedisLock(client, "sweep", time.Minute)
	ok, err := holder.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	s := NewSweeper(events, resets,
		WithClock(func() time.Time { return now }),
		WithLock(NewRedisLock(client, "sweep", time.Minute)))

	res, err := s.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, SweepResult{}, res)
	assert.Equal(t, 3, resets.Len())

	require.NoError(t, holder.Release(ctx))
	res, err = s.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, SweepResult{Events: 1, Resets: 2}, res)
}

func TestSweeper_StartRejectsBadSchedule(t *testing.T) {
	s := NewSweeper(testutils.NewMemoryEvents(), testutils.NewMemoryResets())
	assert.Error(t, s.Start("not a schedule"))

	require.NoError(t, s.Start("@every 1h"))
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}
