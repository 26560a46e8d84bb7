package models

import (
	"fmt"
	"strings"
	"time"
)

// ItemKey identifies a distinct printing: a Scryfall set code plus collector number.
type ItemKey struct {
	SetCode         string `json:"set_code"`
	CollectorNumber string `json:"collector_number"`
}

// NewItemKey builds a normalized key (trimmed, lower-cased).
func NewItemKey(setCode, collectorNumber string) ItemKey {
	return ItemKey{
		SetCode:         strings.ToLower(strings.TrimSpace(setCode)),
		CollectorNumber: strings.ToLower(strings.TrimSpace(collectorNumber)),
	}
}

func (k ItemKey) String() string {
	return k.SetCode + "/" + k.CollectorNumber
}

// Finish is the surface variant of an owned printing.
type Finish string

const (
	FinishNonfoil Finish = "nonfoil"
	FinishFoil    Finish = "foil"
)

// ParseFinish normalizes s and rejects anything other than foil/nonfoil.
func ParseFinish(s string) (Finish, error) {
	switch f := Finish(strings.ToLower(strings.TrimSpace(s))); f {
	case FinishFoil, FinishNonfoil:
		return f, nil
	default:
		return "", fmt.Errorf("invalid finish %q (allowed: nonfoil, foil)", s)
	}
}

// CatalogPrices holds the Scryfall price fields. Scryfall sends decimal strings
// or null, so absent prices decode to nil.
type CatalogPrices struct {
	USD     *string `json:"usd"`
	USDFoil *string `json:"usd_foil"`
}

// CatalogCard is the subset of a Scryfall card object the tracker relies on.
type CatalogCard struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Set             string        `json:"set"`
	SetName         string        `json:"set_name"`
	CollectorNumber string        `json:"collector_number"`
	Rarity          string        `json:"rarity"`
	TypeLine        string        `json:"type_line"`
	Finishes        []string      `json:"finishes"`
	ReleasedAt      string        `json:"released_at"`
	ScryfallURI     string        `json:"scryfall_uri"`
	Prices          CatalogPrices `json:"prices"`
}

// NormalizedRarity returns the lower-cased rarity, "unknown" when missing.
func (c CatalogCard) NormalizedRarity() string {
	r := strings.ToLower(strings.TrimSpace(c.Rarity))
	if r == "" {
		return "unknown"
	}
	return r
}

// CachedCard is a catalog payload together with the time it was fetched.
// Raw keeps the complete upstream record so nothing Scryfall sent is lost.
type CachedCard struct {
	Card      CatalogCard `json:"card"`
	Raw       []byte      `json:"-"`
	FetchedAt time.Time   `json:"fetched_at"`
}

// Age reports how old the payload is at now.
func (c *CachedCard) Age(now time.Time) time.Duration {
	return now.Sub(c.FetchedAt)
}

// FetchedAtEpoch returns the fetch time as fractional unix seconds.
func (c *CachedCard) FetchedAtEpoch() float64 {
	return float64(c.FetchedAt.UnixNano()) / float64(time.Second)
}

type CardSearchResult struct {
	Cards      []CatalogCard `json:"cards"`
	TotalCount int           `json:"total_count"`
	HasMore    bool          `json:"has_more"`
}
