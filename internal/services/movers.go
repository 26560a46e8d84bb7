package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/codyseavey/mtg-tracker/backend/internal/models"
)

// ParseRankBy accepts "delta" or "percent" (also "abs" and "pct").
func ParseRankBy(s string) (models.RankBy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "delta", "abs":
		return models.RankByDelta, nil
	case "percent", "pct":
		return models.RankByPercent, nil
	default:
		return "", fmt.Errorf("invalid rank_by %q (allowed: delta, percent)", s)
	}
}

// MoverService compares current holdings against an older snapshot.
type MoverService struct {
	store SnapshotStore
}

func NewMoverService(store SnapshotStore) *MoverService {
	return &MoverService{store: store}
}

// BaselineDate picks the snapshot windowDays before the latest one, or the nearest
// earlier date. ok is false when history does not reach back that far.
func (s *MoverService) BaselineDate(ctx context.Context, windowDays int) (latest, baseline string, ok bool, err error) {
	latest, err = s.store.LatestDate(ctx)
	if err != nil {
		return "", "", false, err
	}
	baseline, ok, err = s.store.NearestOnOrBefore(ctx, models.ShiftDate(latest, -windowDays))
	if err != nil {
		return latest, "", false, err
	}
	return latest, baseline, ok, nil
}

// Movers builds gainers and losers for current over the window. Missing history
// yields an empty report with no Baseline; an empty store is ErrNoSnapshots.
func (s *MoverService) Movers(ctx context.Context, current []models.Holding, windowDays int, rankBy models.RankBy, n int) (*models.MoverReport, error) {
	latest, baseline, ok, err := s.BaselineDate(ctx, windowDays)
	if err != nil {
		return nil, err
	}

	report := &models.MoverReport{
		Latest:  latest,
		RankBy:  rankBy,
		Gainers: []models.Mover{},
		Losers:  []models.Mover{},
	}
	if !ok {
		return report, nil
	}

	rows, err := s.store.RowsForDate(ctx, baseline)
	if err != nil {
		return nil, err
	}

	gainers, losers, err := ComputeMovers(current, rows, rankBy, n)
	if err != nil {
		return nil, err
	}
	report.Baseline = baseline
	report.Gainers = gainers
	report.Losers = losers
	return report, nil
}

type idFinish struct {
	id     string
	finish models.Finish
}

// ComputeMovers joins holdings to baseline rows on scryfall id and finish. Pairs
// missing either price are skipped, as are unchanged prices. Gainers come back
// largest first and losers most negative first, by rankBy, at most n of each.
func ComputeMovers(current []models.Holding, baseline []models.PriceSnapshot, rankBy models.RankBy, n int) ([]models.Mover, []models.Mover, error) {
	if rankBy != models.RankByDelta && rankBy != models.RankByPercent {
		return nil, nil, fmt.Errorf("invalid rank_by %q", rankBy)
	}

	base := make(map[idFinish]decimal.NullDecimal, len(baseline))
	for _, r := range baseline {
		base[idFinish{r.ScryfallID, r.Finish}] = r.USD
	}

	gainers := []models.Mover{}
	losers := []models.Mover{}
	for _, h := range current {
		b, ok := base[idFinish{h.ScryfallID, h.Finish}]
		if !ok || !b.Valid || !h.UnitPrice.Valid {
			continue
		}

		m := models.Mover{
			Holding:     h,
			BaselineUSD: b.Decimal,
			CurrentUSD:  h.UnitPrice.Decimal,
			Delta:       h.UnitPrice.Decimal.Sub(b.Decimal),
		}
		if !b.Decimal.IsZero() {
			m.Percent = decimal.NewNullDecimal(m.Delta.Mul(decimal.NewFromInt(100)).DivRound(b.Decimal, 4))
		}

		switch m.Delta.Sign() {
		case 1:
			gainers = append(gainers, m)
		case -1:
			losers = append(losers, m)
		}
	}

	sort.SliceStable(gainers, func(i, j int) bool { return moverLess(gainers[j], gainers[i], rankBy, true) })
	sort.SliceStable(losers, func(i, j int) bool { return moverLess(losers[i], losers[j], rankBy, false) })

	return truncate(gainers, n), truncate(losers, n), nil
}

// moverLess orders a before b by the ranking key. Null percents always go last,
// so for gainers (sorted descending) a null is treated as smaller than anything.
func moverLess(a, b models.Mover, rankBy models.RankBy, nullSmallest bool) bool {
	if rankBy == models.RankByDelta {
		return a.Delta.LessThan(b.Delta)
	}
	switch {
	case a.Percent.Valid && b.Percent.Valid:
		return a.Percent.Decimal.LessThan(b.Percent.Decimal)
	case a.Percent.Valid:
		return !nullSmallest
	case b.Percent.Valid:
		return nullSmallest
	default:
		return false
	}
}

func truncate[T any](s []T, n int) []T {
	if n >= 0 && len(s) > n {
		return s[:n]
	}
	return s
}
