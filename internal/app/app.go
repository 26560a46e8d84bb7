// Package app wires the tracker's services from configuration. Both the HTTP
// server and the CLI start from here.
package app

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/codyseavey/mtg-tracker/backend/internal/config"
	"github.com/codyseavey/mtg-tracker/backend/internal/database"
	"github.com/codyseavey/mtg-tracker/backend/internal/logger"
	"github.com/codyseavey/mtg-tracker/backend/internal/models"
	"github.com/codyseavey/mtg-tracker/backend/internal/services"
)

type App struct {
	Config     config.Config
	DB         *gorm.DB
	Store      *services.GormSnapshotStore
	Scryfall   *services.ScryfallService
	Cache      *services.PriceCache
	Valuation  *services.ValuationService
	Movers     *services.MoverService
	Dashboard  *services.DashboardService
	Snapshots  *services.SnapshotService
	Fixtures   *services.HistoryFixtures
	Collection services.CollectionSource

	redis *redis.Client
}

// New opens the database, ensures the schema and builds every service.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := database.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	a := &App{Config: cfg, DB: db}

	a.Store = services.NewGormSnapshotStore(db)
	if err := a.Store.EnsureSchema(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	payloads, err := a.payloadStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Scryfall = services.NewScryfallService(cfg.Catalog.BaseURL, cfg.Catalog.Timeout, cfg.Catalog.RequestsPerSecond)
	a.Cache = services.NewPriceCache(payloads, a.Scryfall)
	a.Collection = FileCollection(cfg.CollectionPath)

	a.Valuation = services.NewValuationService(a.Cache, a.Store, cfg.Cache.TTL, cfg.Catalog.FetchConcurrency)
	a.Movers = services.NewMoverService(a.Store)
	a.Dashboard = services.NewDashboardService(a.Valuation, a.Movers, a.Store)
	a.Snapshots = services.NewSnapshotService(a.Cache, a.Store, a.Collection, cfg.Cache.TTL, cfg.Catalog.FetchConcurrency)
	a.Snapshots.SetSchedule(cfg.Snapshot.Hour, cfg.Snapshot.CheckInterval)
	a.Fixtures = services.NewHistoryFixtures(a.Store)

	return a, nil
}

func (a *App) payloadStore(ctx context.Context) (services.PayloadStore, error) {
	log := logger.Get()
	switch a.Config.Cache.Backend {
	case "memory":
		log.Infow("price cache backend", "backend", "memory", "size", a.Config.Cache.MemorySize)
		return services.NewMemoryStore(a.Config.Cache.MemorySize)
	case "redis":
		opts, err := redis.ParseURL(a.Config.Cache.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		a.redis = redis.NewClient(opts)
		if err := a.redis.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("failed to reach redis: %w", err)
		}
		log.Infow("price cache backend", "backend", "redis", "addr", opts.Addr)
		return services.NewRedisStore(a.redis), nil
	default:
		log.Infow("price cache backend", "backend", "file", "dir", a.Config.Cache.Dir)
		return services.NewFileStore(a.Config.Cache.Dir), nil
	}
}

// Close releases the database and redis connections.
func (a *App) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			logger.Get().Warnw("failed to close redis client", "error", err)
		}
	}
	if a.DB != nil {
		if err := database.Close(a.DB); err != nil {
			logger.Get().Warnw("failed to close database", "error", err)
		}
	}
}

// FileCollection re-reads the collection CSV on every call so edits are picked
// up without a restart.
func FileCollection(path string) services.CollectionSource {
	return func(context.Context) ([]models.Position, error) {
		return services.LoadCollection(path)
	}
}
