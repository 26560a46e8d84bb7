package services

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/codyseavey/mtg-tracker/backend/internal/database"
	"github.com/codyseavey/mtg-tracker/backend/internal/models"
)

func newTestStore(t *testing.T) *GormSnapshotStore {
	t.Helper()

	db, err := database.Open("sqlite", filepath.Join(t.TempDir(), "prices.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	store := NewGormSnapshotStore(db)
	require.NoError(t, store.EnsureSchema(context.Background()))
	return store
}

// cardJSON renders a minimal Scryfall card record. Empty prices become null.
func cardJSON(id, set, cn, name, rarity, typeLine, usd, usdFoil string) []byte {
	price := func(s string) string {
		if s == "" {
			return "null"
		}
		return `"` + s + `"`
	}
	return []byte(fmt.Sprintf(
		`{"object":"card","id":%q,"name":%q,"set":%q,"collector_number":%q,"rarity":%q,"type_line":%q,"prices":{"usd":%s,"usd_foil":%s}}`,
		id, name, set, cn, rarity, typeLine, price(usd), price(usdFoil)))
}

// fakeFetcher serves canned payloads and counts calls per key.
type fakeFetcher struct {
	mu       sync.Mutex
	payloads map[models.ItemKey][]byte
	errs     map[models.ItemKey]error
	calls    map[models.ItemKey]int
	delay    time.Duration
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		payloads: map[models.ItemKey][]byte{},
		errs:     map[models.ItemKey]error{},
		calls:    map[models.ItemKey]int{},
	}
}

func (f *fakeFetcher) add(key models.ItemKey, payload []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads[key] = payload
}

func (f *fakeFetcher) fail(key models.ItemKey, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[key] = err
}

func (f *fakeFetcher) FetchCard(_ context.Context, key models.ItemKey) ([]byte, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[key]++
	if err, ok := f.errs[key]; ok {
		return nil, err
	}
	p, ok := f.payloads[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCardNotFound, key)
	}
	return p, nil
}

func (f *fakeFetcher) callsFor(key models.ItemKey) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[key]
}

func (f *fakeFetcher) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

func newMemoryCache(t *testing.T, fetcher CardFetcher) *PriceCache {
	t.Helper()
	store, err := NewMemoryStore(64)
	require.NoError(t, err)
	return NewPriceCache(store, fetcher)
}

func usd(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func snapshotRow(date, id, set, cn string, finish models.Finish, price decimal.NullDecimal) models.PriceSnapshot {
	return models.PriceSnapshot{
		SnapshotDate:    date,
		ScryfallID:      id,
		SetCode:         set,
		CollectorNumber: cn,
		Finish:          finish,
		Name:            "Card " + id,
		Rarity:          "rare",
		TypeLine:        "Creature — Test",
		USD:             price,
	}
}

func position(set, cn string, finish models.Finish, qty int) models.Position {
	return models.Position{Key: models.NewItemKey(set, cn), Finish: finish, Quantity: qty}
}
