package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/codyseavey/mtg-tracker/backend/internal/database"
	"github.com/codyseavey/mtg-tracker/backend/internal/models"
)

// SnapshotStore is the append-mostly ledger of daily resolved prices.
type SnapshotStore interface {
	EnsureSchema(ctx context.Context) error
	Put(ctx context.Context, row models.PriceSnapshot) error
	PutMany(ctx context.Context, rows []models.PriceSnapshot) (int, error)
	LatestDate(ctx context.Context) (string, error)
	NearestOnOrBefore(ctx context.Context, date string) (string, bool, error)
	RowsForDate(ctx context.Context, date string) ([]models.PriceSnapshot, error)
	Dates(ctx context.Context) ([]string, error)
	PricedRows(ctx context.Context) ([]models.PriceSnapshot, error)
	HasDate(ctx context.Context, date string) (bool, error)
	CloneDate(ctx context.Context, src, dst string) (int, error)
	OverridePrice(ctx context.Context, date, scryfallID string, finish models.Finish, price decimal.NullDecimal) (bool, error)
}

const upsertBatchSize = 500

var snapshotPK = []clause.Column{{Name: "snapshot_date"}, {Name: "scryfall_id"}, {Name: "finish"}}

// GormSnapshotStore keeps price_snapshots in any gorm dialect (sqlite, postgres).
type GormSnapshotStore struct {
	db *gorm.DB
}

func NewGormSnapshotStore(db *gorm.DB) *GormSnapshotStore {
	return &GormSnapshotStore{db: db}
}

func (s *GormSnapshotStore) EnsureSchema(ctx context.Context) error {
	if err := database.EnsureSchema(s.db.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to migrate price_snapshots: %w", err)
	}
	return nil
}

// Put inserts row, replacing any row with the same (date, scryfall id, finish).
func (s *GormSnapshotStore) Put(ctx context.Context, row models.PriceSnapshot) error {
	_, err := s.PutMany(ctx, []models.PriceSnapshot{row})
	return err
}

func (s *GormSnapshotStore) PutMany(ctx context.Context, rows []models.PriceSnapshot) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	return len(rows), upsert(s.db.WithContext(ctx), rows)
}

func upsert(db *gorm.DB, rows []models.PriceSnapshot) error {
	err := db.Clauses(clause.OnConflict{Columns: snapshotPK, UpdateAll: true}).
		CreateInBatches(&rows, upsertBatchSize).Error
	if err != nil {
		return fmt.Errorf("failed to upsert snapshot rows: %w", err)
	}
	return nil
}

// LatestDate returns the most recent snapshot date, or ErrNoSnapshots.
func (s *GormSnapshotStore) LatestDate(ctx context.Context) (string, error) {
	var latest sql.NullString
	err := s.db.WithContext(ctx).Model(&models.PriceSnapshot{}).
		Select("MAX(snapshot_date)").Row().Scan(&latest)
	if err != nil {
		return "", fmt.Errorf("failed to read latest snapshot date: %w", err)
	}
	if !latest.Valid || latest.String == "" {
		return "", ErrNoSnapshots
	}
	return latest.String, nil
}

// NearestOnOrBefore returns the greatest stored date not after date.
func (s *GormSnapshotStore) NearestOnOrBefore(ctx context.Context, date string) (string, bool, error) {
	var nearest sql.NullString
	err := s.db.WithContext(ctx).Model(&models.PriceSnapshot{}).
		Select("MAX(snapshot_date)").
		Where("snapshot_date <= ?", date).
		Row().Scan(&nearest)
	if err != nil {
		return "", false, fmt.Errorf("failed to find snapshot on or before %s: %w", date, err)
	}
	if !nearest.Valid || nearest.String == "" {
		return "", false, nil
	}
	return nearest.String, true, nil
}

func (s *GormSnapshotStore) RowsForDate(ctx context.Context, date string) ([]models.PriceSnapshot, error) {
	var rows []models.PriceSnapshot
	err := s.db.WithContext(ctx).
		Where("snapshot_date = ?", date).
		Order("set_code, collector_number, finish").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", date, err)
	}
	return rows, nil
}

// Dates lists every stored snapshot date, oldest first.
func (s *GormSnapshotStore) Dates(ctx context.Context) ([]string, error) {
	var dates []string
	err := s.db.WithContext(ctx).Model(&models.PriceSnapshot{}).
		Distinct().
		Order("snapshot_date ASC").
		Pluck("snapshot_date", &dates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshot dates: %w", err)
	}
	return dates, nil
}

// PricedRows returns every row that carries a price, oldest date first.
func (s *GormSnapshotStore) PricedRows(ctx context.Context) ([]models.PriceSnapshot, error) {
	var rows []models.PriceSnapshot
	err := s.db.WithContext(ctx).
		Where("usd IS NOT NULL").
		Order("snapshot_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read priced snapshot rows: %w", err)
	}
	return rows, nil
}

func (s *GormSnapshotStore) HasDate(ctx context.Context, date string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.PriceSnapshot{}).
		Where("snapshot_date = ?", date).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check snapshot %s: %w", date, err)
	}
	return count > 0, nil
}

// CloneDate copies every row of src to dst, replacing rows already on dst.
func (s *GormSnapshotStore) CloneDate(ctx context.Context, src, dst string) (int, error) {
	var copied int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rows []models.PriceSnapshot
		if err := tx.Where("snapshot_date = ?", src).Find(&rows).Error; err != nil {
			return fmt.Errorf("failed to read snapshot %s: %w", src, err)
		}
		if len(rows) == 0 {
			return nil
		}
		for i := range rows {
			rows[i].SnapshotDate = dst
		}
		copied = len(rows)
		return upsert(tx, rows)
	})
	if err != nil {
		return 0, err
	}
	return copied, nil
}

// OverridePrice sets usd on one existing row. It reports false when no row matched.
func (s *GormSnapshotStore) OverridePrice(ctx context.Context, date, scryfallID string, finish models.Finish, price decimal.NullDecimal) (bool, error) {
	result := s.db.WithContext(ctx).Model(&models.PriceSnapshot{}).
		Where("snapshot_date = ? AND scryfall_id = ? AND finish = ?", date, scryfallID, finish).
		Update("usd", price)
	if result.Error != nil {
		return false, fmt.Errorf("failed to override price: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}
