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

type historyCmd struct {
	granularity string
	asJSON      bool
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "value of today's collection at every snapshot date" }
func (*historyCmd) Usage() string {
	return `history [-granularity daily|weekly|monthly] [-json]

  Prices the current collection at each stored snapshot date. Weekly buckets end
  on Monday and monthly buckets on the last day of the month; each keeps its
  last value.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.granularity, "granularity", string(models.GranularityDaily), "daily, weekly or monthly")
	f.BoolVar(&c.asJSON, "json", false, "print the series as JSON")
}

func (c *historyCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
		points, err := a.Dashboard.History(ctx, positions, granularity)
		if err != nil {
			return err
		}
		if c.asJSON {
			return printJSON(points)
		}
		if services.InsufficientHistory(points) {
			fmt.Fprintln(stderr, "Not enough snapshots for a chart yet.")
		}
		printSeries(points)
		return nil
	})
}
