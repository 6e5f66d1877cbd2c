package database

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/nfrund/goonies/internal/domain"
	"github.com/nfrund/goonies/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

func setupIntegration(t *testing.T) (*Connection, Timeouts) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	cfg := testutils.ConfigForTests(t)

	conn := NewConnection(cfg)
	require.NoError(t, conn.Connect(context.Background()), "failed to connect to test database")
	t.Cleanup(func() { _ = conn.Close(context.Background()) })

	timeouts := TimeoutsFrom(cfg)
	require.NoError(t, EnsureSchema(context.Background(), conn, timeouts))
	return conn, timeouts
}

func TestUserStore_Integration(t *testing.T) {
	conn, timeouts := setupIntegration(t)
	store, err := NewUserStore(conn, timeouts)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	username := fmt.Sprintf("goonie_%d", time.Now().UnixNano())
	created, err := store.Create(ctx, &domain.User{Username: username, PasswordHash: "hash", DisplayName: "Mikey"})
	require.NoError(t, err)
	require.NotNil(t, created.ID)
	t.Cleanup(func() { _ = store.Delete(context.Background(), created.IDString()) })
	assert.Equal(t, domain.RoleMember, created.Role)

	_, err = store.Create(ctx, &domain.User{Username: username, PasswordHash: "hash"})
	assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)

	byName, err := store.FindByUsername(ctx, username)
	require.NoError(t, err)
	assert.Equal(t, created.IDString(), byName.IDString())

	byID, err := store.FindByID(ctx, created.IDString())
	require.NoError(t, err)
	assert.Equal(t, username, byID.Username)

	bio := "Never say die"
	updated, err := store.Update(ctx, created.IDString(), domain.UserPatch{Bio: &bio, Titles: []string{"a", "b"}})
	require.NoError(t, err)
	assert.Equal(t, bio, updated.Bio)
	assert.Equal(t, []string{"a", "b"}, updated.Titles)
	assert.Equal(t, "Mikey", updated.DisplayName)

	page, total, err := store.List(ctx, domain.UserQuery{Search: username[:10], Page: 1, Limit: 9})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, total, int64(1))
	assert.NotEmpty(t, page)

	_, err = store.FindByID(ctx, "user:doesnotexist")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAllowStore_Integration(t *testing.T) {
	conn, timeouts := setupIntegration(t)
	store, err := NewAllowStore(conn, timeouts)
	require.NoError(t, err)
	ctx := context.Background()

	name := fmt.Sprintf("allowed-%d", time.Now().UnixNano())
	_, err = store.Upsert(ctx, name)
	require.NoError(t, err)
	_, err = store.Upsert(ctx, name)
	require.NoError(t, err, "upsert is idempotent")
	t.Cleanup(func() { _ = store.Delete(context.Background(), name) })

	ok, err := store.IsAllowed(ctx, name)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, store.Delete(ctx, name))
	ok, err = store.IsAllowed(ctx, name)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEventStore_Integration(t *testing.T) {
	conn, timeouts := setupIntegration(t)
	store, err := NewEventStore(conn, timeouts)
	require.NoError(t, err)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	owner := surrealmodels.NewRecordID("user", "integration")
	ev, err := store.Create(ctx, &domain.Event{
		Title:     "Treasure hunt",
		ImageURL:  "https://img.example/map.png",
		StartAt:   &surrealmodels.CustomDateTime{Time: now.Add(-time.Hour)},
		EndAt:     &surrealmodels.CustomDateTime{Time: now.Add(time.Hour)},
		CreatedBy: &owner,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Delete(context.Background(), ev.ID.String()) })

	active, err := store.Active(ctx, now, domain.ActiveEventsLimit)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(active), domain.ActiveEventsLimit)

	removed, err := store.DeleteEnded(ctx, now.Add(2*time.Hour))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, removed, 1)

	_, err = store.FindByID(ctx, ev.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
