package services

import (
	"context"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"golang.org/x/sync/singleflight"

	"github.com/codyseavey/mtg-tracker/backend/internal/logger"
	"github.com/codyseavey/mtg-tracker/backend/internal/metrics"
	"github.com/codyseavey/mtg-tracker/backend/internal/models"
)

// DefaultCacheTTL is how long a fetched payload counts as fresh.
const DefaultCacheTTL = 12 * time.Hour

const fetchedAtField = "_fetched_at_epoch"

// PriceCache fronts the catalog with a PayloadStore. Each stored record is the
// catalog JSON with the fetch time injected as fractional epoch seconds.
type PriceCache struct {
	store   PayloadStore
	fetcher CardFetcher
	now     func() time.Time
	group   singleflight.Group
}

func NewPriceCache(store PayloadStore, fetcher CardFetcher) *PriceCache {
	return &PriceCache{
		store:   store,
		fetcher: fetcher,
		now:     time.Now,
	}
}

// Get returns the stored payload for key when it is at most ttl old. Missing,
// stale and unreadable records all report ok=false; only a failing store errors.
func (c *PriceCache) Get(ctx context.Context, key models.ItemKey, ttl time.Duration) (*models.CachedCard, bool, error) {
	data, found, err := c.store.Get(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if !found {
		metrics.CacheLookupsTotal.WithLabelValues("miss").Inc()
		return nil, false, nil
	}

	cached, err := decodeCachedCard(data)
	if err != nil {
		metrics.CacheLookupsTotal.WithLabelValues("corrupt").Inc()
		logger.Get().Debugw("ignoring unreadable cache record", "key", key.String(), "error", err)
		return nil, false, nil
	}

	if cached.Age(c.now()) > ttl {
		metrics.CacheLookupsTotal.WithLabelValues("stale").Inc()
		return nil, false, nil
	}

	metrics.CacheLookupsTotal.WithLabelValues("hit").Inc()
	return cached, true, nil
}

// Put stores raw with the current time stamped into it, replacing any record for key.
func (c *PriceCache) Put(ctx context.Context, key models.ItemKey, raw []byte) (*models.CachedCard, error) {
	data, err := encodeCachedCard(raw, c.now())
	if err != nil {
		return nil, err
	}
	cached, err := decodeCachedCard(data)
	if err != nil {
		return nil, err
	}
	if err := c.store.Put(ctx, key, data); err != nil {
		return nil, fmt.Errorf("failed to store payload for %s: %w", key, err)
	}
	return cached, nil
}

// Resolve returns a fresh payload, fetching from the catalog at most once when
// the cache cannot serve it. Concurrent calls for the same key share one fetch.
// Fetch errors are returned as-is and nothing is cached.
func (c *PriceCache) Resolve(ctx context.Context, key models.ItemKey, ttl time.Duration) (*models.CachedCard, models.FetchSource, error) {
	cached, ok, err := c.Get(ctx, key, ttl)
	if err != nil {
		return nil, "", err
	}
	if ok {
		return cached, models.FetchCacheHit, nil
	}

	v, err, _ := c.group.Do(key.String(), func() (any, error) {
		raw, err := c.fetcher.FetchCard(ctx, key)
		if err != nil {
			return nil, err
		}
		return c.Put(ctx, key, raw)
	})
	if err != nil {
		return nil, "", err
	}

	logger.Get().Debugw("fetched card from scryfall", "key", key.String())
	return v.(*models.CachedCard), models.FetchCacheMiss, nil
}

func encodeCachedCard(raw []byte, fetchedAt time.Time) ([]byte, error) {
	var record map[string]jsoniter.RawMessage
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("%w: catalog payload is not a JSON object: %v", ErrCatalogUnavailable, err)
	}
	if record == nil {
		return nil, fmt.Errorf("%w: catalog payload is empty", ErrCatalogUnavailable)
	}

	stamp, err := json.Marshal(float64(fetchedAt.UnixNano()) / float64(time.Second))
	if err != nil {
		return nil, err
	}
	record[fetchedAtField] = stamp

	return json.Marshal(record)
}

func decodeCachedCard(data []byte) (*models.CachedCard, error) {
	var stamp struct {
		FetchedAt *float64 `json:"_fetched_at_epoch"`
	}
	if err := json.Unmarshal(data, &stamp); err != nil {
		return nil, err
	}
	if stamp.FetchedAt == nil {
		return nil, fmt.Errorf("record has no %s", fetchedAtField)
	}

	var card models.CatalogCard
	if err := json.Unmarshal(data, &card); err != nil {
		return nil, err
	}

	secs := *stamp.FetchedAt
	return &models.CachedCard{
		Card:      card,
		Raw:       data,
		FetchedAt: time.Unix(0, int64(secs*float64(time.Second))),
	}, nil
}
