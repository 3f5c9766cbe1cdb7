package route

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStore_SaveAndGet(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	r := &Route{ID: "r1", DistanceMeters: 1000, BikeType: BikeCity}
	require.NoError(t, store.Save(ctx, r))

	got, err := store.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)

	// Reads are copies: mutating the result must not affect the store.
	got.Favorite = true
	again, err := store.Get(ctx, "r1")
	require.NoError(t, err)
	assert.False(t, again.Favorite)
}

func TestInMemoryStore_GetMissing(t *testing.T) {
	store := NewInMemoryStore()

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrRouteNotFound)
}

func TestInMemoryStore_FetchRecentOrdersNewestFirst(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		require.NoError(t, store.Save(ctx, &Route{
			ID:        id,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	got, err := store.FetchRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "new", got[0].ID)
	assert.Equal(t, "mid", got[1].ID)
}

func TestInMemoryStore_Delete(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &Route{ID: "r1"}))
	require.NoError(t, store.Delete(ctx, "r1"))

	_, err := store.Get(ctx, "r1")
	assert.ErrorIs(t, err, ErrRouteNotFound)
}

func TestInMemoryStore_ToggleFavoriteReplaces(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	original := &Route{ID: "r1", Favorite: false}
	require.NoError(t, store.Save(ctx, original))

	toggled, err := store.ToggleFavorite(ctx, "r1")
	require.NoError(t, err)
	assert.True(t, toggled.Favorite)

	// The caller's original copy is untouched: toggling replaces, never mutates.
	assert.False(t, original.Favorite)

	stored, err := store.Get(ctx, "r1")
	require.NoError(t, err)
	assert.True(t, stored.Favorite)

	back, err := store.ToggleFavorite(ctx, "r1")
	require.NoError(t, err)
	assert.False(t, back.Favorite)
}

func TestInMemoryStore_ToggleFavoriteMissing(t *testing.T) {
	store := NewInMemoryStore()

	_, err := store.ToggleFavorite(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrRouteNotFound)
}
