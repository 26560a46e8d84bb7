package models

import (
	"github.com/shopspring/decimal"
)

// Position is one owned row of the collection. Rows for the same printing and
// finish are kept separate; their quantities add up wherever they are valued.
type Position struct {
	Key           ItemKey             `json:"key"`
	Finish        Finish              `json:"finish"`
	Quantity      int                 `json:"qty"`
	AcquiredPrice decimal.NullDecimal `json:"acquired_price_usd"`
}

// PrintingFinish addresses one price series: a printing in one finish.
type PrintingFinish struct {
	Key    ItemKey
	Finish Finish
}

func (p Position) PrintingFinish() PrintingFinish {
	return PrintingFinish{Key: p.Key, Finish: p.Finish}
}

// CollectionRow is a raw CSV row before validation. qty and finish are custom
// validators registered by the collection loader.
type CollectionRow struct {
	Line             int    `csv:"-" validate:"-"`
	Set              string `csv:"set" validate:"required"`
	CollectorNumber  string `csv:"collector_number" validate:"required"`
	Qty              string `csv:"qty" validate:"required,qty"`
	Finish           string `csv:"finish" validate:"required,finish"`
	AcquiredPriceUSD string `csv:"acquired_price_usd" validate:"-"`
}
