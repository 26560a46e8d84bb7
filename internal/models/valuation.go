package models

import (
	"github.com/shopspring/decimal"
)

// PricingMode selects where current prices come from.
type PricingMode string

const (
	PricingLive     PricingMode = "live"
	PricingSnapshot PricingMode = "snapshot"
)

// FetchSource tells whether a live payload came from the cache or the catalog.
type FetchSource string

const (
	FetchCacheHit     FetchSource = "cache_hit"
	FetchCacheMiss    FetchSource = "cache_miss_fetched"
	FetchFromSnapshot FetchSource = "snapshot"
)

// Holding is a position with its resolved unit price. UnitPrice and Value are
// null when no usable price exists; such holdings are listed but never summed.
type Holding struct {
	Position
	ScryfallID  string              `json:"scryfall_id"`
	Name        string              `json:"name"`
	Rarity      string              `json:"rarity"`
	TypeLine    string              `json:"type_line"`
	UnitPrice   decimal.NullDecimal `json:"usd"`
	Value       decimal.NullDecimal `json:"position_value_usd"`
	PriceNote   PriceNote           `json:"price_note,omitempty"`
	FetchSource FetchSource         `json:"fetch_source,omitempty"`
}

// Valuation is the valued collection for one pricing mode.
type Valuation struct {
	Mode       PricingMode     `json:"pricing_mode"`
	AsOf       string          `json:"pricing_asof"`
	Holdings   []Holding       `json:"holdings"`
	TotalValue decimal.Decimal `json:"total_value_usd"`
}

// RankBy chooses the ordering key for movers.
type RankBy string

const (
	RankByDelta   RankBy = "delta"
	RankByPercent RankBy = "percent"
)

// Mover is one holding whose price differs from its baseline snapshot.
type Mover struct {
	Holding
	BaselineUSD decimal.Decimal     `json:"usd_baseline"`
	CurrentUSD  decimal.Decimal     `json:"usd_current"`
	Delta       decimal.Decimal     `json:"delta_usd"`
	Percent     decimal.NullDecimal `json:"pct_change"`
}

// MoverReport holds gainers and losers against a baseline snapshot. An empty
// Baseline means there was not enough history to pick one.
type MoverReport struct {
	Latest   string  `json:"latest_snapshot"`
	Baseline string  `json:"baseline_snapshot"`
	RankBy   RankBy  `json:"rank_by"`
	Gainers  []Mover `json:"gainers"`
	Losers   []Mover `json:"losers"`
}

// BreakdownRow is one group of a rarity or category breakdown.
type BreakdownRow struct {
	Key   string          `json:"key"`
	Count int             `json:"count"`
	Value decimal.Decimal `json:"value_usd"`
}

// TimeSeriesPoint is the value of today's holdings priced on Date.
type TimeSeriesPoint struct {
	Date       string          `json:"snapshot_date"`
	TotalValue decimal.Decimal `json:"total_value_usd"`
}

// Granularity controls time-series resampling.
type Granularity string

const (
	GranularityDaily   Granularity = "daily"
	GranularityWeekly  Granularity = "weekly"
	GranularityMonthly Granularity = "monthly"
)

// Dashboard is the result bundle handed to the presentation layer.
type Dashboard struct {
	PricingMode         PricingMode       `json:"pricing_mode"`
	PricingAsOf         string            `json:"pricing_asof"`
	LatestSnapshot      string            `json:"latest_snapshot"`
	BaselineSnapshot    string            `json:"baseline_snapshot,omitempty"`
	WindowDays          int               `json:"window_days"`
	TotalValue          decimal.Decimal   `json:"total_value_usd"`
	NumPositions        int               `json:"num_positions"`
	Holdings            []Holding         `json:"latest_owned"`
	TopHoldings         []Holding         `json:"top_holdings"`
	RankBy              RankBy            `json:"rank_by"`
	Gainers             []Mover           `json:"gainers"`
	Losers              []Mover           `json:"losers"`
	RarityBreakdown     []BreakdownRow    `json:"rarity_breakdown"`
	CategoryBreakdown   []BreakdownRow    `json:"type_breakdown"`
	Granularity         Granularity       `json:"granularity"`
	TimeSeries          []TimeSeriesPoint `json:"portfolio_ts"`
	InsufficientHistory bool              `json:"insufficient_history"`
}
