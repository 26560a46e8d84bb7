package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codyseavey/mtg-tracker/backend/internal/models"
)

func TestCacheFilename(t *testing.T) {
	tests := []struct {
		key  models.ItemKey
		want string
	}{
		{models.NewItemKey("neo", "123"), "neo__123.json"},
		{models.NewItemKey("plst", "A/1"), "plst__a_1.json"},
		{models.NewItemKey("sld", `7\b`), "sld__7_b.json"},
		{models.NewItemKey("pneo", "1 s"), "pneo__1s.json"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CacheFilename(tt.key))
	}
}

// exercisePayloadStore checks the contract every backend shares.
func exercisePayloadStore(t *testing.T, store PayloadStore) {
	t.Helper()
	ctx := context.Background()
	key := models.NewItemKey("neo", "123")

	_, ok, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Put(ctx, key, []byte(`{"v":1}`)))
	data, ok, err := store.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"v":1}`, string(data))

	require.NoError(t, store.Put(ctx, key, []byte(`{"v":2}`)))
	data, ok, err = store.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"v":2}`, string(data))

	_, ok, err = store.Get(ctx, models.NewItemKey("neo", "124"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache", "scryfall")
	store := NewFileStore(dir)
	exercisePayloadStore(t, store)

	_, err := os.Stat(filepath.Join(dir, "neo__123.json"))
	assert.NoError(t, err)
}

func TestMemoryStore(t *testing.T) {
	store, err := NewMemoryStore(8)
	require.NoError(t, err)
	exercisePayloadStore(t, store)
}

func TestMemoryStoreEvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	store, err := NewMemoryStore(2)
	require.NoError(t, err)

	a, b, c := models.NewItemKey("a", "1"), models.NewItemKey("b", "1"), models.NewItemKey("c", "1")
	require.NoError(t, store.Put(ctx, a, []byte("{}")))
	require.NoError(t, store.Put(ctx, b, []byte("{}")))
	_, _, _ = store.Get(ctx, a)
	require.NoError(t, store.Put(ctx, c, []byte("{}")))

	_, ok, _ := store.Get(ctx, b)
	assert.False(t, ok, "b should have been evicted")
	_, ok, _ = store.Get(ctx, a)
	assert.True(t, ok)
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	exercisePayloadStore(t, NewRedisStore(client))

	assert.True(t, mr.Exists("scryfall:card:neo:123"))
	assert.Zero(t, mr.TTL("scryfall:card:neo:123"))
}

func TestRedisStoreUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	_, _, err := NewRedisStore(client).Get(context.Background(), models.NewItemKey("neo", "1"))
	assert.Error(t, err)
}
