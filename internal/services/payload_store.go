package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"

	"github.com/codyseavey/mtg-tracker/backend/internal/models"
)

// PayloadStore keeps one opaque record per printing. Freshness is not the store's
// concern; PriceCache decides that from the record itself.
type PayloadStore interface {
	Get(ctx context.Context, key models.ItemKey) ([]byte, bool, error)
	Put(ctx context.Context, key models.ItemKey, data []byte) error
}

// FileStore writes one JSON file per printing under dir.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// CacheFilename is the on-disk name for key: {set}__{safe_cn}.json, where slashes
// in the collector number become underscores and spaces are dropped.
func CacheFilename(key models.ItemKey) string {
	safe := strings.NewReplacer("/", "_", `\`, "_", " ", "").Replace(key.CollectorNumber)
	return key.SetCode + "__" + safe + ".json"
}

func (s *FileStore) Get(_ context.Context, key models.ItemKey) ([]byte, bool, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, CacheFilename(key)))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache file: %w", err)
	}
	return data, true, nil
}

func (s *FileStore) Put(_ context.Context, key models.ItemKey, data []byte) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache dir: %w", err)
	}

	// Write then rename so a reader never sees half a record.
	path := filepath.Join(s.dir, CacheFilename(key))
	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace cache file: %w", err)
	}
	return nil
}

// MemoryStore is a bounded in-process store; the least recently used record is
// evicted when full.
type MemoryStore struct {
	cache *lru.Cache[models.ItemKey, []byte]
}

func NewMemoryStore(size int) (*MemoryStore, error) {
	cache, err := lru.New[models.ItemKey, []byte](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create LRU cache: %w", err)
	}
	return &MemoryStore{cache: cache}, nil
}

func (s *MemoryStore) Get(_ context.Context, key models.ItemKey) ([]byte, bool, error) {
	data, ok := s.cache.Get(key)
	return data, ok, nil
}

func (s *MemoryStore) Put(_ context.Context, key models.ItemKey, data []byte) error {
	s.cache.Add(key, data)
	return nil
}

// RedisStore shares payloads between processes. Keys never expire server-side.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func redisKey(key models.ItemKey) string {
	return "scryfall:card:" + key.SetCode + ":" + key.CollectorNumber
}

func (s *RedisStore) Get(ctx context.Context, key models.ItemKey) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return data, true, nil
}

func (s *RedisStore) Put(ctx context.Context, key models.ItemKey, data []byte) error {
	if err := s.client.Set(ctx, redisKey(key), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
