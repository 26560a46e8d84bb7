package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codyseavey/mtg-tracker/backend/internal/models"
)

func TestBuildTimeSeries(t *testing.T) {
	positions := []models.Position{
		position("neo", "1", models.FinishFoil, 2),
		position("neo", "1", models.FinishFoil, 1),
		position("neo", "2", models.FinishNonfoil, 1),
	}
	rows := []models.PriceSnapshot{
		snapshotRow("2025-03-02", "a", "neo", "1", models.FinishFoil, usd("5.00")),
		snapshotRow("2025-03-02", "b", "neo", "2", models.FinishNonfoil, usd("1.00")),
		snapshotRow("2025-03-01", "a", "neo", "1", models.FinishFoil, usd("4.00")),
		snapshotRow("2025-03-01", "a", "neo", "1", models.FinishNonfoil, usd("100.00")),
		snapshotRow("2025-03-01", "z", "dmu", "9", models.FinishFoil, usd("50.00")),
	}
	dates := []string{"2025-02-28", "2025-03-01", "2025-03-02"}

	points := BuildTimeSeries(positions, dates, rows)
	require.Len(t, points, 3)
	assert.Equal(t, "2025-02-28", points[0].Date)
	assert.True(t, points[0].TotalValue.IsZero())
	assert.Equal(t, "2025-03-01", points[1].Date)
	assert.True(t, points[1].TotalValue.Equal(dec("12")), "got %s", points[1].TotalValue)
	assert.True(t, points[2].TotalValue.Equal(dec("16")), "got %s", points[2].TotalValue)

	assert.False(t, InsufficientHistory(points))
	assert.True(t, InsufficientHistory(points[:1]))
	assert.True(t, InsufficientHistory(nil))
}

func TestResample(t *testing.T) {
	pt := func(date, v string) models.TimeSeriesPoint {
		return models.TimeSeriesPoint{Date: date, TotalValue: dec(v)}
	}
	// 2025-03-03 is a Monday.
	points := []models.TimeSeriesPoint{
		pt("2025-02-27", "1"),
		pt("2025-03-02", "2"),
		pt("2025-03-03", "3"),
		pt("2025-03-04", "4"),
		pt("2025-03-31", "5"),
		pt("2025-04-01", "6"),
	}

	assert.Equal(t, points, Resample(points, models.GranularityDaily))

	weekly := Resample(points, models.GranularityWeekly)
	require.Len(t, weekly, 4)
	assert.Equal(t, pt("2025-03-03", "3"), weekly[0])
	assert.Equal(t, pt("2025-03-10", "4"), weekly[1])
	assert.Equal(t, pt("2025-03-31", "5"), weekly[2])
	assert.Equal(t, pt("2025-04-07", "6"), weekly[3])

	monthly := Resample(points, models.GranularityMonthly)
	require.Len(t, monthly, 3)
	assert.Equal(t, pt("2025-02-28", "1"), monthly[0])
	assert.Equal(t, pt("2025-03-31", "5"), monthly[1])
	assert.Equal(t, pt("2025-04-30", "6"), monthly[2])
}

func TestParseGranularity(t *testing.T) {
	g, err := ParseGranularity("")
	require.NoError(t, err)
	assert.Equal(t, models.GranularityDaily, g)

	g, err = ParseGranularity("Weekly")
	require.NoError(t, err)
	assert.Equal(t, models.GranularityWeekly, g)

	_, err = ParseGranularity("hourly")
	assert.Error(t, err)
}
