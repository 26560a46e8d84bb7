package database

import (
	"gorm.io/gorm"

	"github.com/codyseavey/mtg-tracker/backend/internal/models"
)

// EnsureSchema creates price_snapshots with its date and (scryfall_id, finish)
// indexes when missing. AutoMigrate only adds what is absent, so this is safe to
// run on every start.
func EnsureSchema(db *gorm.DB) error {
	return db.AutoMigrate(&models.PriceSnapshot{})
}
