package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/codyseavey/mtg-tracker/backend/internal/logger"
	"github.com/codyseavey/mtg-tracker/backend/internal/models"
)

// DashboardOptions selects the views built by DashboardService.Build.
type DashboardOptions struct {
	WindowDays  int
	TopN        int
	LivePrices  bool
	RankBy      models.RankBy
	Granularity models.Granularity
}

func (o DashboardOptions) validate() error {
	if o.WindowDays < 0 {
		return fmt.Errorf("window days must not be negative, got %d", o.WindowDays)
	}
	if o.TopN < 0 {
		return fmt.Errorf("top n must not be negative, got %d", o.TopN)
	}
	if _, err := ParseRankBy(string(o.RankBy)); err != nil {
		return err
	}
	if _, err := ParseGranularity(string(o.Granularity)); err != nil {
		return err
	}
	return nil
}

// DashboardService assembles every derived view of the collection in one pass.
type DashboardService struct {
	valuation *ValuationService
	movers    *MoverService
	store     SnapshotStore
}

func NewDashboardService(valuation *ValuationService, movers *MoverService, store SnapshotStore) *DashboardService {
	return &DashboardService{
		valuation: valuation,
		movers:    movers,
		store:     store,
	}
}

// Build values positions and derives movers, breakdowns and the value history.
// With live prices an empty snapshot store only leaves the history views empty;
// in snapshot mode it is ErrNoSnapshots.
func (s *DashboardService) Build(ctx context.Context, positions []models.Position, opts DashboardOptions) (*models.Dashboard, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	rankBy, _ := ParseRankBy(string(opts.RankBy))
	granularity, _ := ParseGranularity(string(opts.Granularity))

	var (
		valuation *models.Valuation
		err       error
	)
	if opts.LivePrices {
		valuation, err = s.valuation.ValueLive(ctx, positions)
	} else {
		valuation, err = s.valuation.ValueFromSnapshot(ctx, positions)
	}
	if err != nil {
		return nil, err
	}

	report, err := s.movers.Movers(ctx, valuation.Holdings, opts.WindowDays, rankBy, opts.TopN)
	switch {
	case errors.Is(err, ErrNoSnapshots) && opts.LivePrices:
		logger.Get().Infow("no snapshots yet; dashboard has no movers or history")
		report = &models.MoverReport{RankBy: rankBy, Gainers: []models.Mover{}, Losers: []models.Mover{}}
	case err != nil:
		return nil, err
	}

	series, err := s.History(ctx, positions, granularity)
	if err != nil {
		return nil, err
	}

	return &models.Dashboard{
		PricingMode:         valuation.Mode,
		PricingAsOf:         valuation.AsOf,
		LatestSnapshot:      report.Latest,
		BaselineSnapshot:    report.Baseline,
		WindowDays:          opts.WindowDays,
		TotalValue:          valuation.TotalValue,
		NumPositions:        len(valuation.Holdings),
		Holdings:            valuation.Holdings,
		TopHoldings:         TopHoldings(valuation.Holdings, opts.TopN),
		RankBy:              rankBy,
		Gainers:             report.Gainers,
		Losers:              report.Losers,
		RarityBreakdown:     RarityBreakdown(valuation.Holdings),
		CategoryBreakdown:   CategoryBreakdown(valuation.Holdings),
		Granularity:         granularity,
		TimeSeries:          series,
		InsufficientHistory: InsufficientHistory(series),
	}, nil
}

// History is the value of positions at every stored date, resampled to g.
func (s *DashboardService) History(ctx context.Context, positions []models.Position, g models.Granularity) ([]models.TimeSeriesPoint, error) {
	dates, err := s.store.Dates(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.store.PricedRows(ctx)
	if err != nil {
		return nil, err
	}
	return Resample(BuildTimeSeries(positions, dates, rows), g), nil
}
