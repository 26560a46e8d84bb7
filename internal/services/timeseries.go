package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/codyseavey/mtg-tracker/backend/internal/models"
)

// BuildTimeSeries values today's positions at every stored date: for each date,
// sum qty × usd over rows matching a position's printing and finish. Dates where
// nothing matches get a zero point. rows should only carry priced rows.
func BuildTimeSeries(positions []models.Position, dates []string, rows []models.PriceSnapshot) []models.TimeSeriesPoint {
	qty := make(map[models.PrintingFinish]int64)
	for _, p := range positions {
		qty[p.PrintingFinish()] += int64(p.Quantity)
	}

	totals := make(map[string]decimal.Decimal, len(dates))
	for _, d := range dates {
		totals[d] = decimal.Zero
	}
	for _, r := range rows {
		if !r.USD.Valid {
			continue
		}
		q, ok := qty[r.PrintingFinish()]
		if !ok {
			continue
		}
		totals[r.SnapshotDate] = totals[r.SnapshotDate].Add(r.USD.Decimal.Mul(decimal.NewFromInt(q)))
	}

	points := make([]models.TimeSeriesPoint, 0, len(totals))
	for d, v := range totals {
		points = append(points, models.TimeSeriesPoint{Date: d, TotalValue: v})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points
}

// InsufficientHistory reports whether a series is too short to chart.
func InsufficientHistory(points []models.TimeSeriesPoint) bool {
	return len(points) < 2
}

// ParseGranularity accepts daily, weekly or monthly; empty means daily.
func ParseGranularity(s string) (models.Granularity, error) {
	switch g := models.Granularity(strings.ToLower(strings.TrimSpace(s))); g {
	case "", models.GranularityDaily:
		return models.GranularityDaily, nil
	case models.GranularityWeekly, models.GranularityMonthly:
		return g, nil
	default:
		return "", fmt.Errorf("invalid granularity %q (allowed: daily, weekly, monthly)", s)
	}
}

// Resample keeps the last point of each period. Weekly periods end on Monday and
// monthly ones on the last day of the month; each point is relabelled with its
// period end. points must be in chronological order.
func Resample(points []models.TimeSeriesPoint, g models.Granularity) []models.TimeSeriesPoint {
	var periodEnd func(time.Time) time.Time
	switch g {
	case models.GranularityWeekly:
		periodEnd = func(t time.Time) time.Time {
			return t.AddDate(0, 0, (int(time.Monday)-int(t.Weekday())+7)%7)
		}
	case models.GranularityMonthly:
		periodEnd = func(t time.Time) time.Time {
			return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC)
		}
	default:
		return points
	}

	out := []models.TimeSeriesPoint{}
	for _, p := range points {
		t, err := time.Parse(models.DateLayout, p.Date)
		if err != nil {
			continue
		}
		label := models.FormatDate(periodEnd(t))
		if n := len(out); n > 0 && out[n-1].Date == label {
			out[n-1].TotalValue = p.TotalValue
			continue
		}
		out = append(out, models.TimeSeriesPoint{Date: label, TotalValue: p.TotalValue})
	}
	return out
}
