package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codyseavey/mtg-tracker/backend/internal/models"
)

func TestCategoryTokens(t *testing.T) {
	tests := []struct {
		typeLine string
		want     []string
	}{
		{"Artifact Creature — Golem", []string{"Artifact", "Creature"}},
		{"Legendary Planeswalker — Jace", []string{"Legendary", "Planeswalker"}},
		{"Instant", []string{"Instant"}},
		{"Basic Land – Forest", []string{"Basic", "Land"}},
		{"", []string{"Unknown"}},
		{"   ", []string{"Unknown"}},
		{"— Golem", []string{"Unknown"}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CategoryTokens(tt.typeLine), tt.typeLine)
	}
}

func valued(rarity, typeLine string, qty int, value string) models.Holding {
	h := models.Holding{
		Position: models.Position{Quantity: qty},
		Rarity:   rarity,
		TypeLine: typeLine,
	}
	if value != "" {
		h.Value = usd(value)
	}
	return h
}

func TestRarityBreakdown(t *testing.T) {
	rows := RarityBreakdown([]models.Holding{
		valued("common", "", 4, "1.00"),
		valued("rare", "", 1, "10.00"),
		valued("common", "", 2, ""),
		valued("mythic", "", 1, "10.00"),
		valued("", "", 1, "0.10"),
	})

	require.Len(t, rows, 4)
	assert.Equal(t, "rare", rows[0].Key)
	assert.Equal(t, "mythic", rows[1].Key, "ties keep first-seen order")
	assert.Equal(t, "common", rows[2].Key)
	assert.Equal(t, 6, rows[2].Count, "null-valued quantity still counts")
	assert.True(t, rows[2].Value.Equal(dec("1")))
	assert.Equal(t, "unknown", rows[3].Key)
}

func TestCategoryBreakdownMultiMembership(t *testing.T) {
	rows := CategoryBreakdown([]models.Holding{
		valued("rare", "Artifact Creature — Golem", 2, "8.00"),
		valued("common", "Creature — Elf", 1, "1.00"),
		valued("common", "", 1, "0.50"),
	})

	byKey := map[string]models.BreakdownRow{}
	for _, r := range rows {
		byKey[r.Key] = r
	}
	assert.True(t, byKey["Artifact"].Value.Equal(dec("8")))
	assert.True(t, byKey["Creature"].Value.Equal(dec("9")))
	assert.Equal(t, 3, byKey["Creature"].Count)
	assert.Equal(t, 1, byKey["Unknown"].Count)
	assert.Equal(t, "Creature", rows[0].Key)
}
