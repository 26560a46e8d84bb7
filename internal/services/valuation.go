package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/codyseavey/mtg-tracker/backend/internal/logger"
	"github.com/codyseavey/mtg-tracker/backend/internal/metrics"
	"github.com/codyseavey/mtg-tracker/backend/internal/models"
)

// CardResolver returns a fresh catalog payload for a printing.
type CardResolver interface {
	Resolve(ctx context.Context, key models.ItemKey, ttl time.Duration) (*models.CachedCard, models.FetchSource, error)
}

// ValuationService prices owned positions either live from the catalog (through
// the cache) or from the latest stored snapshot.
type ValuationService struct {
	resolver    CardResolver
	store       SnapshotStore
	ttl         time.Duration
	concurrency int
	now         func() time.Time
}

// NewValuationService wires the price sources. concurrency bounds parallel catalog
// lookups in live mode; 1 resolves printings one after another.
func NewValuationService(resolver CardResolver, store SnapshotStore, ttl time.Duration, concurrency int) *ValuationService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &ValuationService{
		resolver:    resolver,
		store:       store,
		ttl:         ttl,
		concurrency: concurrency,
		now:         time.Now,
	}
}

type resolvedCard struct {
	card   *models.CachedCard
	source models.FetchSource
}

// resolveDistinct resolves every distinct printing among positions exactly once,
// at most concurrency at a time. The first failure cancels outstanding lookups.
func resolveDistinct(ctx context.Context, resolver CardResolver, positions []models.Position, ttl time.Duration, concurrency int) (map[models.ItemKey]resolvedCard, error) {
	keys := lo.Uniq(lo.Map(positions, func(p models.Position, _ int) models.ItemKey { return p.Key }))

	var mu sync.Mutex
	resolved := make(map[models.ItemKey]resolvedCard, len(keys))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, key := range keys {
		key := key
		g.Go(func() error {
			card, source, err := resolver.Resolve(gctx, key, ttl)
			if err != nil {
				return fmt.Errorf("resolve %s: %w", key, err)
			}
			mu.Lock()
			resolved[key] = resolvedCard{card: card, source: source}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return resolved, nil
}

// ValueLive prices every position from current catalog data. Positions without any
// usable price stay in the result with a null value.
func (s *ValuationService) ValueLive(ctx context.Context, positions []models.Position) (*models.Valuation, error) {
	resolved, err := resolveDistinct(ctx, s.resolver, positions, s.ttl, s.concurrency)
	if err != nil {
		return nil, err
	}

	holdings := make([]models.Holding, 0, len(positions))
	hits := 0
	for _, p := range positions {
		r := resolved[p.Key]
		price, note := models.ChooseUnitPrice(r.card.Card, p.Finish)
		h := models.Holding{
			Position:    p,
			ScryfallID:  r.card.Card.ID,
			Name:        r.card.Card.Name,
			Rarity:      r.card.Card.NormalizedRarity(),
			TypeLine:    r.card.Card.TypeLine,
			UnitPrice:   price,
			PriceNote:   note,
			FetchSource: r.source,
		}
		h.Value = positionValue(price, p.Quantity)
		holdings = append(holdings, h)
		if r.source == models.FetchCacheHit {
			hits++
		}
	}

	v := &models.Valuation{
		Mode:       models.PricingLive,
		AsOf:       models.FormatDate(s.now()),
		Holdings:   holdings,
		TotalValue: TotalValue(holdings),
	}
	metrics.CollectionValueUSD.WithLabelValues(string(v.Mode)).Set(v.TotalValue.InexactFloat64())
	logger.Get().Infow("valued collection from live prices",
		"positions", len(holdings), "printings", len(resolved), "cache_hits", hits, "total_usd", v.TotalValue.StringFixed(2))
	return v, nil
}

// ValueFromSnapshot prices positions from the most recent snapshot. Positions with
// no row on that date are left out entirely. An empty store is ErrNoSnapshots.
func (s *ValuationService) ValueFromSnapshot(ctx context.Context, positions []models.Position) (*models.Valuation, error) {
	latest, err := s.store.LatestDate(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.store.RowsForDate(ctx, latest)
	if err != nil {
		return nil, err
	}

	v := &models.Valuation{
		Mode:     models.PricingSnapshot,
		AsOf:     latest,
		Holdings: JoinSnapshot(positions, rows),
	}
	v.TotalValue = TotalValue(v.Holdings)
	metrics.CollectionValueUSD.WithLabelValues(string(v.Mode)).Set(v.TotalValue.InexactFloat64())
	return v, nil
}

// JoinSnapshot inner-joins positions to one date's rows on printing and finish.
func JoinSnapshot(positions []models.Position, rows []models.PriceSnapshot) []models.Holding {
	byKey := lo.KeyBy(rows, func(r models.PriceSnapshot) models.PrintingFinish { return r.PrintingFinish() })

	holdings := make([]models.Holding, 0, len(positions))
	for _, p := range positions {
		row, ok := byKey[p.PrintingFinish()]
		if !ok {
			continue
		}
		holdings = append(holdings, models.Holding{
			Position:    p,
			ScryfallID:  row.ScryfallID,
			Name:        row.Name,
			Rarity:      row.Rarity,
			TypeLine:    row.TypeLine,
			UnitPrice:   row.USD,
			Value:       positionValue(row.USD, p.Quantity),
			FetchSource: models.FetchFromSnapshot,
		})
	}
	return holdings
}

func positionValue(price decimal.NullDecimal, qty int) decimal.NullDecimal {
	if !price.Valid {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(price.Decimal.Mul(decimal.NewFromInt(int64(qty))))
}

// TotalValue sums the non-null position values.
func TotalValue(holdings []models.Holding) decimal.Decimal {
	total := decimal.Zero
	for _, h := range holdings {
		if h.Value.Valid {
			total = total.Add(h.Value.Decimal)
		}
	}
	return total
}

// TopHoldings returns the n most valuable priced holdings. Equal values keep
// their input order.
func TopHoldings(holdings []models.Holding, n int) []models.Holding {
	priced := lo.Filter(holdings, func(h models.Holding, _ int) bool { return h.Value.Valid })
	sort.SliceStable(priced, func(i, j int) bool {
		return priced[i].Value.Decimal.GreaterThan(priced[j].Value.Decimal)
	})
	if n >= 0 && len(priced) > n {
		priced = priced[:n]
	}
	return priced
}
