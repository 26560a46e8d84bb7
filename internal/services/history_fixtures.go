package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/shopspring/decimal"

	"github.com/codyseavey/mtg-tracker/backend/internal/logger"
	"github.com/codyseavey/mtg-tracker/backend/internal/models"
)

// Backfill defaults: three months of roughly ±2% daily moves, reproducible.
const (
	DefaultBackfillDays = 90
	DefaultDailyVol     = 0.02
	DefaultBackfillSeed = 42
)

var minSimulatedPrice = decimal.RequireFromString("0.01")

// ErrFixtureTargetMissing means an override matched no snapshot row.
var ErrFixtureTargetMissing = errors.New("no snapshot row matches")

// HistoryFixtures fabricates past snapshots so movers and charts can be
// exercised before real history accumulates. Not for production data.
type HistoryFixtures struct {
	store SnapshotStore
}

func NewHistoryFixtures(store SnapshotStore) *HistoryFixtures {
	return &HistoryFixtures{store: store}
}

// Backfill walks back daysBack days from the latest snapshot, applying a
// multiplicative normal price move per day. Dates that already exist are left
// alone and do not advance the walk. Returns the number of dates created.
func (f *HistoryFixtures) Backfill(ctx context.Context, daysBack int, dailyVol float64, seed int64) (int, error) {
	latest, err := f.store.LatestDate(ctx)
	if err != nil {
		return 0, err
	}
	current, err := f.store.RowsForDate(ctx, latest)
	if err != nil {
		return 0, err
	}
	if len(current) == 0 {
		return 0, fmt.Errorf("latest snapshot %s has no rows", latest)
	}

	rng := rand.New(rand.NewSource(seed))
	created := 0
	for i := 1; i <= daysBack; i++ {
		date := models.ShiftDate(latest, -i)
		exists, err := f.store.HasDate(ctx, date)
		if err != nil {
			return created, err
		}
		if exists {
			continue
		}

		current = randomWalk(current, rng, dailyVol, date)
		if _, err := f.store.PutMany(ctx, current); err != nil {
			return created, err
		}
		created++
	}

	logger.Get().Infow("backfilled snapshot history", "from", latest, "days_back", daysBack, "created", created)
	return created, nil
}

func randomWalk(rows []models.PriceSnapshot, rng *rand.Rand, dailyVol float64, date string) []models.PriceSnapshot {
	next := make([]models.PriceSnapshot, len(rows))
	for i, r := range rows {
		r.SnapshotDate = date
		if r.USD.Valid {
			noise := rng.NormFloat64() * dailyVol
			moved := math.Max(minSimulatedPrice.InexactFloat64(), r.USD.Decimal.InexactFloat64()*(1+noise))
			r.USD = decimal.NewNullDecimal(decimal.NewFromFloat(moved).Round(2))
		}
		next[i] = r
	}
	return next
}

// CloneResult reports a CloneLatest run.
type CloneResult struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Copied int    `json:"copied"`
}

// CloneLatest copies the latest snapshot onto dst, or onto the day before it when
// dst is empty. Rows already on dst are replaced.
func (f *HistoryFixtures) CloneLatest(ctx context.Context, dst string) (*CloneResult, error) {
	latest, err := f.store.LatestDate(ctx)
	if err != nil {
		return nil, err
	}
	if dst == "" {
		dst = models.ShiftDate(latest, -1)
	}
	copied, err := f.store.CloneDate(ctx, latest, dst)
	if err != nil {
		return nil, err
	}
	logger.Get().Infow("cloned snapshot", "source", latest, "target", dst, "rows", copied)
	return &CloneResult{Source: latest, Target: dst, Copied: copied}, nil
}

// OverridePrice forces the stored price of one row, typically on a baseline date
// to make a mover appear.
func (f *HistoryFixtures) OverridePrice(ctx context.Context, date, scryfallID string, finish models.Finish, price decimal.Decimal) error {
	ok, err := f.store.OverridePrice(ctx, date, scryfallID, finish, decimal.NewNullDecimal(price))
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s %s %s", ErrFixtureTargetMissing, date, scryfallID, finish)
	}
	return nil
}
