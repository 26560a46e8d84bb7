package services

import (
	"sort"
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/codyseavey/mtg-tracker/backend/internal/models"
)

const unknownCategory = "Unknown"

// RarityBreakdown groups holdings by rarity.
func RarityBreakdown(holdings []models.Holding) []models.BreakdownRow {
	return breakdown(holdings, func(h models.Holding) []string {
		if h.Rarity == "" {
			return []string{"unknown"}
		}
		return []string{h.Rarity}
	})
}

// CategoryBreakdown groups holdings by type-line token. A holding counts fully in
// every category it has, so group totals may exceed the collection total.
func CategoryBreakdown(holdings []models.Holding) []models.BreakdownRow {
	return breakdown(holdings, func(h models.Holding) []string {
		return CategoryTokens(h.TypeLine)
	})
}

// CategoryTokens splits the part of a type line before the dash into words:
// "Artifact Creature — Golem" gives Artifact and Creature.
func CategoryTokens(typeLine string) []string {
	left := typeLine
	if i := strings.IndexAny(left, "—–"); i >= 0 {
		left = left[:i]
	}
	tokens := strings.Fields(left)
	if len(tokens) == 0 {
		return []string{unknownCategory}
	}
	return lo.Uniq(tokens)
}

// breakdown sums quantity and value per group, most valuable group first. Null
// values add nothing to a group's value but their quantity still counts.
func breakdown(holdings []models.Holding, groupsOf func(models.Holding) []string) []models.BreakdownRow {
	index := make(map[string]int)
	rows := []models.BreakdownRow{}

	for _, h := range holdings {
		for _, key := range groupsOf(h) {
			i, ok := index[key]
			if !ok {
				i = len(rows)
				index[key] = i
				rows = append(rows, models.BreakdownRow{Key: key, Value: decimal.Zero})
			}
			rows[i].Count += h.Quantity
			if h.Value.Valid {
				rows[i].Value = rows[i].Value.Add(h.Value.Decimal)
			}
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Value.GreaterThan(rows[j].Value)
	})
	return rows
}
