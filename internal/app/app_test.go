package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codyseavey/mtg-tracker/backend/internal/config"
	"github.com/codyseavey/mtg-tracker/backend/internal/services"
)

func testConfig(t *testing.T, backend string) config.Config {
	t.Helper()
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "collection.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("set,collector_number,qty,finish\nneo,1,2,foil\n"), 0o644))

	cfg := config.Config{
		Env:            "test",
		CollectionPath: csvPath,
		Database:       config.Database{Driver: "sqlite", DSN: filepath.Join(dir, "prices.sqlite")},
		Cache: config.Cache{
			Backend:    backend,
			Dir:        filepath.Join(dir, "cache"),
			TTL:        services.DefaultCacheTTL,
			MemorySize: 8,
		},
		Catalog: config.Catalog{
			BaseURL:           "http://127.0.0.1:0",
			RequestsPerSecond: 10,
			FetchConcurrency:  1,
		},
		Snapshot: config.Snapshot{Hour: 23},
	}
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestNewWiresEveryBackend(t *testing.T) {
	mr := miniredis.RunT(t)

	for _, backend := range []string{"file", "memory", "redis"} {
		t.Run(backend, func(t *testing.T) {
			cfg := testConfig(t, backend)
			cfg.Cache.RedisURL = "redis://" + mr.Addr() + "/0"

			a, err := New(context.Background(), cfg)
			require.NoError(t, err)
			defer a.Close()

			assert.NotNil(t, a.Dashboard)
			assert.NotNil(t, a.Snapshots)
			assert.NotNil(t, a.Fixtures)

			_, err = a.Store.Dates(context.Background())
			assert.NoError(t, err)
		})
	}
}

func TestNewFailsWhenRedisIsDown(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t, "redis")
	cfg.Cache.RedisURL = "redis://" + mr.Addr() + "/0"
	mr.Close()

	_, err := New(context.Background(), cfg)
	assert.ErrorContains(t, err, "redis")
}

func TestFileCollection(t *testing.T) {
	cfg := testConfig(t, "memory")

	positions, err := FileCollection(cfg.CollectionPath)(context.Background())
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.Equal(t, 2, positions[0].Quantity)

	_, err = FileCollection(filepath.Join(t.TempDir(), "missing.csv"))(context.Background())
	assert.ErrorIs(t, err, services.ErrInvalidCollection)
}
