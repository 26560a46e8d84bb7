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

type moversCmd struct {
	days   int
	top    int
	rankBy string
	asJSON bool
}

func (*moversCmd) Name() string     { return "movers" }
func (*moversCmd) Synopsis() string { return "biggest price gainers and losers between snapshots" }
func (*moversCmd) Usage() string {
	return `movers [-days 7] [-top 5] [-rank-by delta|percent] [-json]

  Compares the latest snapshot with the nearest snapshot at least -days older.
  Only holdings priced on both dates are ranked.
`
}

func (c *moversCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.days, "days", 7, "window in days")
	f.IntVar(&c.top, "top", 5, "number of gainers and losers")
	f.StringVar(&c.rankBy, "rank-by", string(models.RankByDelta), "ranking: delta or percent")
	f.BoolVar(&c.asJSON, "json", false, "print the report as JSON")
}

func (c *moversCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	rankBy, err := services.ParseRankBy(c.rankBy)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if c.days < 0 || c.top < 0 {
		fmt.Fprintln(stderr, "Error: -days and -top must not be negative")
		return subcommands.ExitUsageError
	}

	return withApp(ctx, func(a *app.App) error {
		positions, err := a.Collection(ctx)
		if err != nil {
			return err
		}
		valuation, err := a.Valuation.ValueFromSnapshot(ctx, positions)
		if err != nil {
			return err
		}
		report, err := a.Movers.Movers(ctx, valuation.Holdings, c.days, rankBy, c.top)
		if err != nil {
			return err
		}

		if c.asJSON {
			return printJSON(report)
		}
		if report.Baseline == "" {
			fmt.Fprintf(stdout, "No snapshot at least %d days before %s yet.\n", c.days, report.Latest)
			return nil
		}
		fmt.Fprintf(stdout, "Movers %s -> %s (by %s):\n", report.Baseline, report.Latest, report.RankBy)
		printMovers("gainer", report.Gainers)
		printMovers("loser", report.Losers)
		return nil
	})
}
