package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/codyseavey/mtg-tracker/backend/internal/logger"
	"github.com/codyseavey/mtg-tracker/backend/internal/metrics"
	"github.com/codyseavey/mtg-tracker/backend/internal/models"
)

// CollectionSource loads the owned positions for a snapshot run.
type CollectionSource func(ctx context.Context) ([]models.Position, error)

// SnapshotResult summarizes one snapshot run.
type SnapshotResult struct {
	Date          string `json:"snapshot_date"`
	RowsWritten   int    `json:"rows_written"`
	MissingPrices int    `json:"missing_prices"`
}

// SnapshotService records the daily price ledger, either on demand or from a
// background loop.
type SnapshotService struct {
	mu            sync.Mutex
	resolver      CardResolver
	store         SnapshotStore
	collection    CollectionSource
	ttl           time.Duration
	concurrency   int
	lastSnapshot  time.Time
	snapshotHour  int // Hour of day to take snapshot (0-23)
	checkInterval time.Duration
	now           func() time.Time
}

// NewSnapshotService creates a new snapshot service
func NewSnapshotService(resolver CardResolver, store SnapshotStore, collection CollectionSource, ttl time.Duration, concurrency int) *SnapshotService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &SnapshotService{
		resolver:      resolver,
		store:         store,
		collection:    collection,
		ttl:           ttl,
		concurrency:   concurrency,
		snapshotHour:  23, // Default: 11 PM
		checkInterval: 15 * time.Minute,
		now:           time.Now,
	}
}

// SetSchedule overrides the hour after which the daily snapshot is due and how
// often the loop checks.
func (s *SnapshotService) SetSchedule(hour int, checkInterval time.Duration) {
	s.snapshotHour = hour
	if checkInterval > 0 {
		s.checkInterval = checkInterval
	}
}

// Start begins the background snapshot worker
func (s *SnapshotService) Start(ctx context.Context) {
	log := logger.Get()
	log.Infow("snapshot service started", "hour", s.snapshotHour, "check_interval", s.checkInterval.String())

	// Check if we need to take a snapshot for today on startup
	s.checkAndSnapshot(ctx)

	ticker := time.NewTicker(s.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Infow("snapshot service stopping")
			return
		case <-ticker.C:
			s.checkAndSnapshot(ctx)
		}
	}
}

// checkAndSnapshot takes today's snapshot when it is due and missing.
func (s *SnapshotService) checkAndSnapshot(ctx context.Context) {
	now := s.now()
	today := models.FormatDate(now)

	exists, err := s.store.HasDate(ctx, today)
	if err != nil {
		logger.Get().Warnw("snapshot check failed", "date", today, "error", err)
		return
	}
	if exists || now.Hour() < s.snapshotHour {
		return
	}

	positions, err := s.collection(ctx)
	if err != nil {
		logger.Get().Errorw("failed to load collection for snapshot", "error", err)
		return
	}
	if _, err := s.TakeSnapshot(ctx, positions, today); err != nil {
		logger.Get().Errorw("failed to take snapshot", "date", today, "error", err)
	}
}

// TakeSnapshot writes one row per distinct (printing, finish) among positions for
// date. Re-running for the same date replaces the rows. A failed lookup aborts the
// run before anything is written.
func (s *SnapshotService) TakeSnapshot(ctx context.Context, positions []models.Position, date string) (*SnapshotResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	resolved, err := resolveDistinct(ctx, s.resolver, positions, s.ttl, s.concurrency)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", date, err)
	}

	pairs := lo.Uniq(lo.Map(positions, func(p models.Position, _ int) models.PrintingFinish { return p.PrintingFinish() }))
	rows := make([]models.PriceSnapshot, 0, len(pairs))
	missing := 0
	for _, pf := range pairs {
		cached := resolved[pf.Key].card
		usd, note := models.ChooseUnitPrice(cached.Card, pf.Finish)
		if note == models.PriceNoteMissing {
			missing++
		}
		rows = append(rows, models.NewPriceSnapshot(date, pf.Key, pf.Finish, cached, usd))
	}

	written, err := s.store.PutMany(ctx, rows)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", date, err)
	}

	s.lastSnapshot = s.now()
	metrics.SnapshotRowsWritten.Add(float64(written))
	metrics.SnapshotDuration.Observe(time.Since(start).Seconds())
	logger.Get().Infow("recorded price snapshot",
		"date", date, "rows", written, "missing_prices", missing, "duration", time.Since(start).String())

	return &SnapshotResult{Date: date, RowsWritten: written, MissingPrices: missing}, nil
}

// ForceTakeSnapshot snapshots the current collection for today regardless of timing.
func (s *SnapshotService) ForceTakeSnapshot(ctx context.Context) (*SnapshotResult, error) {
	positions, err := s.collection(ctx)
	if err != nil {
		return nil, err
	}
	return s.TakeSnapshot(ctx, positions, models.FormatDate(s.now()))
}

// LastSnapshot is when this process last recorded a snapshot; zero if never.
func (s *SnapshotService) LastSnapshot() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSnapshot
}
