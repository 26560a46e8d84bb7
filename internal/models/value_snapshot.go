package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the snapshot date format. Dates compare correctly as strings.
const DateLayout = "2006-01-02"

// FormatDate renders t as a snapshot date in t's location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ShiftDate moves a snapshot date by days. It panics on malformed input, so
// only pass dates read back from the store or produced by FormatDate.
func ShiftDate(date string, days int) string {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		panic("models: malformed snapshot date " + date)
	}
	return t.AddDate(0, 0, days).Format(DateLayout)
}

// PriceSnapshot is one resolved price of one printing+finish on one day.
// (snapshot_date, scryfall_id, finish) is the primary key; writing the same key
// again replaces the row.
type PriceSnapshot struct {
	SnapshotDate    string              `json:"snapshot_date" gorm:"primaryKey;type:text;not null;index:idx_snapshots_date"`
	ScryfallID      string              `json:"scryfall_id" gorm:"primaryKey;type:text;not null;index:idx_snapshots_scryfall_finish,priority:1"`
	SetCode         string              `json:"set_code" gorm:"type:text;not null"`
	CollectorNumber string              `json:"collector_number" gorm:"type:text;not null"`
	Finish          Finish              `json:"finish" gorm:"primaryKey;type:text;not null;index:idx_snapshots_scryfall_finish,priority:2"`
	Name            string              `json:"name" gorm:"type:text"`
	Rarity          string              `json:"rarity" gorm:"type:text"`
	TypeLine        string              `json:"type_line" gorm:"type:text"`
	USD             decimal.NullDecimal `json:"usd" gorm:"column:usd;type:decimal(12,2)"`
	FetchedAtEpoch  *float64            `json:"fetched_at_epoch" gorm:"type:double precision"`
}

func (PriceSnapshot) TableName() string {
	return "price_snapshots"
}

func (s PriceSnapshot) Key() ItemKey {
	return NewItemKey(s.SetCode, s.CollectorNumber)
}

func (s PriceSnapshot) PrintingFinish() PrintingFinish {
	return PrintingFinish{Key: s.Key(), Finish: s.Finish}
}

// NewPriceSnapshot builds the row recorded for a cached payload on date.
func NewPriceSnapshot(date string, key ItemKey, finish Finish, cached *CachedCard, usd decimal.NullDecimal) PriceSnapshot {
	fetchedAt := cached.FetchedAtEpoch()
	return PriceSnapshot{
		SnapshotDate:    date,
		ScryfallID:      cached.Card.ID,
		SetCode:         key.SetCode,
		CollectorNumber: key.CollectorNumber,
		Finish:          finish,
		Name:            cached.Card.Name,
		Rarity:          cached.Card.NormalizedRarity(),
		TypeLine:        cached.Card.TypeLine,
		USD:             usd,
		FetchedAtEpoch:  &fetchedAt,
	}
}
