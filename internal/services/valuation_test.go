package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codyseavey/mtg-tracker/backend/internal/models"
)

func TestValueLiveResolvesEachPrintingOnce(t *testing.T) {
	ctx := context.Background()
	fetcher := newFakeFetcher()
	fetcher.add(models.NewItemKey("neo", "1"), cardJSON("a", "neo", "1", "Alpha", "Rare", "Artifact Creature — Golem", "2.00", "6.00"))
	fetcher.add(models.NewItemKey("neo", "2"), cardJSON("b", "neo", "2", "Beta", "common", "Instant", "", ""))
	fetcher.add(models.NewItemKey("neo", "3"), cardJSON("c", "neo", "3", "Gamma", "uncommon", "Sorcery", "", "1.50"))

	svc := NewValuationService(newMemoryCache(t, fetcher), newTestStore(t), time.Hour, 1)
	positions := []models.Position{
		position("neo", "1", models.FinishFoil, 2),
		position("neo", "1", models.FinishNonfoil, 1),
		position("neo", "2", models.FinishNonfoil, 4),
		position("neo", "3", models.FinishNonfoil, 1),
		position("neo", "1", models.FinishFoil, 1),
	}

	v, err := svc.ValueLive(ctx, positions)
	require.NoError(t, err)

	assert.Equal(t, models.PricingLive, v.Mode)
	assert.Equal(t, 1, fetcher.callsFor(models.NewItemKey("neo", "1")))
	assert.Equal(t, 3, fetcher.totalCalls())
	require.Len(t, v.Holdings, 5, "duplicate rows are kept and null-priced rows retained")

	assert.True(t, v.Holdings[0].Value.Decimal.Equal(dec("12")))
	assert.Equal(t, models.PriceNoteOK, v.Holdings[0].PriceNote)
	assert.Equal(t, "rare", v.Holdings[0].Rarity)
	assert.False(t, v.Holdings[2].UnitPrice.Valid)
	assert.False(t, v.Holdings[2].Value.Valid)
	assert.Equal(t, models.PriceNoteMissing, v.Holdings[2].PriceNote)
	assert.Equal(t, models.PriceNoteFallbackUSDFoil, v.Holdings[3].PriceNote)

	// 12 + 2 + 1.50 + 6
	assert.True(t, v.TotalValue.Equal(dec("21.50")), "got %s", v.TotalValue)
}

func TestValueLiveConcurrentPrefetch(t *testing.T) {
	ctx := context.Background()
	fetcher := newFakeFetcher()
	var positions []models.Position
	for _, cn := range []string{"1", "2", "3", "4", "5", "6"} {
		fetcher.add(models.NewItemKey("mh3", cn), cardJSON("id"+cn, "mh3", cn, "Card "+cn, "rare", "", "1.00", ""))
		positions = append(positions, position("mh3", cn, models.FinishNonfoil, 1), position("mh3", cn, models.FinishNonfoil, 1))
	}

	svc := NewValuationService(newMemoryCache(t, fetcher), newTestStore(t), time.Hour, 3)
	v, err := svc.ValueLive(ctx, positions)
	require.NoError(t, err)

	assert.Equal(t, 6, fetcher.totalCalls())
	assert.True(t, v.TotalValue.Equal(dec("12")))
	assert.Equal(t, "mh3", v.Holdings[0].Key.SetCode, "input order preserved")
}

func TestValueLiveLookupFailureAborts(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.add(models.NewItemKey("neo", "1"), cardJSON("a", "neo", "1", "Alpha", "rare", "", "1", ""))

	svc := NewValuationService(newMemoryCache(t, fetcher), newTestStore(t), time.Hour, 1)
	_, err := svc.ValueLive(context.Background(), []models.Position{
		position("neo", "1", models.FinishNonfoil, 1),
		position("neo", "999", models.FinishNonfoil, 1),
	})
	assert.ErrorIs(t, err, ErrCardNotFound)
}

func TestValueFromSnapshot(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	fetcher := newFakeFetcher()
	svc := NewValuationService(newMemoryCache(t, fetcher), store, time.Hour, 1)

	positions := []models.Position{
		position("neo", "1", models.FinishFoil, 2),
		position("neo", "1", models.FinishNonfoil, 1),
		position("neo", "2", models.FinishNonfoil, 3),
	}

	_, err := svc.ValueFromSnapshot(ctx, positions)
	assert.ErrorIs(t, err, ErrNoSnapshots)

	_, err = store.PutMany(ctx, []models.PriceSnapshot{
		snapshotRow("2025-03-01", "a", "neo", "1", models.FinishFoil, usd("9.00")),
		snapshotRow("2025-03-08", "a", "neo", "1", models.FinishFoil, usd("5.00")),
		snapshotRow("2025-03-08", "b", "neo", "2", models.FinishNonfoil, decimal.NullDecimal{}),
	})
	require.NoError(t, err)

	v, err := svc.ValueFromSnapshot(ctx, positions)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-08", v.AsOf)
	require.Len(t, v.Holdings, 2, "nonfoil neo/1 has no row and is dropped")
	assert.True(t, v.TotalValue.Equal(dec("10")))
	assert.False(t, v.Holdings[1].Value.Valid)
	assert.Equal(t, models.FetchFromSnapshot, v.Holdings[0].FetchSource)
	assert.Zero(t, fetcher.totalCalls())
}

func TestTopHoldings(t *testing.T) {
	h := func(name string, value string) models.Holding {
		hold := models.Holding{Name: name}
		if value != "" {
			hold.Value = usd(value)
		}
		return hold
	}
	holdings := []models.Holding{h("a", "1"), h("b", "5"), h("c", ""), h("d", "5"), h("e", "3")}

	top := TopHoldings(holdings, 3)
	require.Len(t, top, 3)
	assert.Equal(t, "b", top[0].Name)
	assert.Equal(t, "d", top[1].Name, "ties keep input order")
	assert.Equal(t, "e", top[2].Name)

	all := TopHoldings(holdings, 10)
	assert.Len(t, all, 4, "null values are excluded")
}
