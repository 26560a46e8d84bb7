package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// PriceNote records how a unit price was chosen for a finish.
type PriceNote string

const (
	PriceNoteOK              PriceNote = "ok"
	PriceNoteFallbackUSD     PriceNote = "fallback_used:usd"
	PriceNoteFallbackUSDFoil PriceNote = "fallback_used:usd_foil"
	PriceNoteMissing         PriceNote = "missing_price_usd"
)

// IsFallback reports whether the price came from the other finish's field.
func (n PriceNote) IsFallback() bool {
	return strings.HasPrefix(string(n), "fallback_used:")
}

// ParsePrice converts a Scryfall price string. nil, "" and "null" are absent.
// Unparseable values are treated as absent too.
func ParsePrice(s *string) decimal.NullDecimal {
	if s == nil {
		return decimal.NullDecimal{}
	}
	v := strings.TrimSpace(*s)
	if v == "" || v == "null" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

// ChooseUnitPrice picks the USD unit price for a finish. The finish's own field
// wins; otherwise the other finish's field is used and the note says so.
func ChooseUnitPrice(card CatalogCard, finish Finish) (decimal.NullDecimal, PriceNote) {
	usd := ParsePrice(card.Prices.USD)
	usdFoil := ParsePrice(card.Prices.USDFoil)

	if finish == FinishFoil {
		if usdFoil.Valid {
			return usdFoil, PriceNoteOK
		}
		if usd.Valid {
			return usd, PriceNoteFallbackUSD
		}
		return decimal.NullDecimal{}, PriceNoteMissing
	}

	if usd.Valid {
		return usd, PriceNoteOK
	}
	if usdFoil.Valid {
		return usdFoil, PriceNoteFallbackUSDFoil
	}
	return decimal.NullDecimal{}, PriceNoteMissing
}
