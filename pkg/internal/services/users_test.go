package services

import (
	"context"
	"testing"
	"time"

	"git.solsynth.dev/hypernet/calling/pkg/internal/models"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDirectory(t *testing.T) (*UserDirectory, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewUserDirectory(client), mr
}

func TestUpsertCreatesUser(t *testing.T) {
	dir, _ := newTestDirectory(t)
	ctx := context.Background()

	res, err := dir.UpsertUsers(ctx, []models.User{{
		ID:     "u1",
		Name:   "Alice",
		Image:  "https://example.com/alice.png",
		Custom: map[string]any{"team": "core"},
	}})
	require.NoError(t, err)

	user := res["u1"]
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "Alice", user.Name)
	assert.Equal(t, defaultUserRole, user.Role)
	assert.False(t, user.CreatedAt.IsZero())
	assert.Equal(t, "core", user.Custom["team"])
}

func TestUpsertMergesOntoExistingUser(t *testing.T) {
	dir, _ := newTestDirectory(t)
	ctx := context.Background()

	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	dir.now = func() time.Time { return created }
	_, err := dir.UpsertUsers(ctx, []models.User{{ID: "u1", Name: "Alice", Image: "https://example.com/a.png", Role: "admin"}})
	require.NoError(t, err)

	dir.now = func() time.Time { return created.Add(time.Hour) }
	res, err := dir.UpsertUsers(ctx, []models.User{{ID: "u1", Name: "Alice B."}})
	require.NoError(t, err)

	user := res["u1"]
	assert.Equal(t, "Alice B.", user.Name)
	assert.Equal(t, "https://example.com/a.png", user.Image)
	assert.Equal(t, "admin", user.Role)
	assert.True(t, user.CreatedAt.Equal(created))
	assert.True(t, user.UpdatedAt.Equal(created.Add(time.Hour)))
}

func TestQueryUsersByID(t *testing.T) {
	dir, _ := newTestDirectory(t)
	ctx := context.Background()

	_, err := dir.UpsertUsers(ctx, []models.User{{ID: "u1"}, {ID: "u2"}})
	require.NoError(t, err)

	users, err := dir.QueryUsers(ctx, models.UserQuery{ID: "u2"})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "u2", users[0].ID)

	users, err = dir.QueryUsers(ctx, models.UserQuery{ID: "nobody"})
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)
}

func TestQueryUsersPaging(t *testing.T) {
	dir, _ := newTestDirectory(t)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c", "d", "e"} {
		at := base.Add(time.Duration(i) * time.Second)
		dir.now = func() time.Time { return at }
		_, err := dir.UpsertUsers(ctx, []models.User{{ID: id}})
		require.NoError(t, err)
	}

	users, err := dir.QueryUsers(ctx, models.UserQuery{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "b", users[0].ID)
	assert.Equal(t, "c", users[1].ID)

	users, err = dir.QueryUsers(ctx, models.UserQuery{Limit: 10, Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestDeleteUsers(t *testing.T) {
	dir, mr := newTestDirectory(t)
	ctx := context.Background()

	_, err := dir.UpsertUsers(ctx, []models.User{{ID: "u1"}, {ID: "u2"}})
	require.NoError(t, err)

	require.NoError(t, dir.DeleteUsers(ctx, []string{"u1"}))
	assert.False(t, mr.Exists(userKey("u1")))

	users, err := dir.QueryUsers(ctx, models.UserQuery{})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "u2", users[0].ID)

	// Deleting an unknown user is not an error.
	assert.NoError(t, dir.DeleteUsers(ctx, []string{"ghost"}))
}

func TestDirectoryPing(t *testing.T) {
	dir, mr := newTestDirectory(t)

	assert.NoError(t, dir.PingDirectory(context.Background()))

	mr.SetError("LOADING dataset in memory")
	assert.Error(t, dir.PingDirectory(context.Background()))
}
