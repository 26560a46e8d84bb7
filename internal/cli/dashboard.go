package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/codyseavey/mtg-tracker/backend/internal/app"
	"github.com/codyseavey/mtg-tracker/backend/internal/models"
	"github.com/codyseavey/mtg-tracker/backend/internal/services"
)

type dashboardCmd struct {
	days        int
	top         int
	live        bool
	rankBy      string
	granularity string
	asJSON      bool
}

func (*dashboardCmd) Name() string     { return "dashboard" }
func (*dashboardCmd) Synopsis() string { return "summarize collection value, movers and history" }
func (*dashboardCmd) Usage() string {
	return `dashboard [-days 7] [-top 5] [-live=true] [-rank-by delta|percent] [-granularity daily|weekly|monthly] [-json]

  Values the collection with live prices (or the latest snapshot with -live=false)
  and prints the total, top holdings, gainers and losers over the window, the
  breakdowns and the value history. -json prints the full dashboard bundle.
`
}

func (c *dashboardCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.days, "days", 7, "mover window in days")
	f.IntVar(&c.top, "top", 5, "number of top holdings, gainers and losers")
	f.BoolVar(&c.live, "live", true, "price from the catalog instead of the latest snapshot")
	f.StringVar(&c.rankBy, "rank-by", string(models.RankByDelta), "mover ranking: delta or percent")
	f.StringVar(&c.granularity, "granularity", string(models.GranularityDaily), "history resolution: daily, weekly or monthly")
	f.BoolVar(&c.asJSON, "json", false, "print the dashboard as JSON")
}

func (c *dashboardCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	rankBy, err := services.ParseRankBy(c.rankBy)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	granularity, err := services.ParseGranularity(c.granularity)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	return withApp(ctx, func(a *app.App) error {
		positions, err := a.Collection(ctx)
		if err != nil {
			return err
		}
		d, err := a.Dashboard.Build(ctx, positions, services.DashboardOptions{
			WindowDays:  c.days,
			TopN:        c.top,
			LivePrices:  c.live,
			RankBy:      rankBy,
			Granularity: granularity,
		})
		if err != nil {
			return err
		}
		if c.asJSON {
			return printJSON(d)
		}
		printDashboard(d)
		return nil
	})
}

func printDashboard(d *models.Dashboard) {
	fmt.Fprintf(stdout, "Total value: %s (%d positions, %s prices as of %s)\n",
		usd(d.TotalValue), d.NumPositions, d.PricingMode, d.PricingAsOf)

	fmt.Fprintln(stdout, "\nTop holdings:")
	printHoldings(d.TopHoldings)

	if d.BaselineSnapshot == "" {
		fmt.Fprintln(stdout, "\nNot enough history for movers yet.")
	} else {
		fmt.Fprintf(stdout, "\nMovers %s -> %s (by %s):\n", d.BaselineSnapshot, d.LatestSnapshot, d.RankBy)
		printMovers("gainer", d.Gainers)
		printMovers("loser", d.Losers)
	}

	fmt.Fprintln(stdout, "\nBy rarity:")
	printBreakdown(d.RarityBreakdown)
	fmt.Fprintln(stdout, "\nBy type:")
	printBreakdown(d.CategoryBreakdown)

	fmt.Fprintf(stdout, "\nHistory (%s):\n", d.Granularity)
	if d.InsufficientHistory {
		fmt.Fprintln(stdout, "  not enough snapshots for a chart")
	}
	printSeries(d.TimeSeries)
}

func printHoldings(holdings []models.Holding) {
	for _, h := range holdings {
		fmt.Fprintf(stdout, "  %-40s %s/%s %-7s x%d  %s each  %s\n",
			h.Name, h.Key.SetCode, h.Key.CollectorNumber, h.Finish, h.Quantity,
			nullUSD(h.UnitPrice), nullUSD(h.Value))
	}
}

func printMovers(label string, movers []models.Mover) {
	for _, m := range movers {
		fmt.Fprintf(stdout, "  %-6s %-40s %s/%s %-7s %s -> %s  %s  %s\n",
			label, m.Name, m.Key.SetCode, m.Key.CollectorNumber, m.Finish,
			usd(m.BaselineUSD), usd(m.CurrentUSD), signedUSD(m.Delta), percent(m.Percent))
	}
}

func printBreakdown(rows []models.BreakdownRow) {
	for _, r := range rows {
		fmt.Fprintf(stdout, "  %-20s %4d  %s\n", r.Key, r.Count, usd(r.Value))
	}
}

func printSeries(points []models.TimeSeriesPoint) {
	for _, p := range points {
		fmt.Fprintf(stdout, "  %s  %s\n", p.Date, usd(p.TotalValue))
	}
}
