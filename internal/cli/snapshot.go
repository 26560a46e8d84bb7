package cli

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/google/subcommands"

	"github.com/codyseavey/mtg-tracker/backend/internal/app"
	"github.com/codyseavey/mtg-tracker/backend/internal/models"
)

type snapshotCmd struct {
	date   string
	asJSON bool
}

func (*snapshotCmd) Name() string     { return "snapshot" }
func (*snapshotCmd) Synopsis() string { return "record today's price of every owned printing" }
func (*snapshotCmd) Usage() string {
	return `snapshot [-date YYYY-MM-DD] [-json]

  Resolves every distinct printing and finish in the collection through the price
  cache and writes one row per printing to the snapshot store. Re-running a date
  replaces its rows.
`
}

func (c *snapshotCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "date", "", "snapshot date, defaults to today")
	f.BoolVar(&c.asJSON, "json", false, "print the result as JSON")
}

func (c *snapshotCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	date := c.date
	if date == "" {
		date = models.FormatDate(time.Now())
	}
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		fmt.Fprintf(stderr, "Error: invalid -date %q, want YYYY-MM-DD\n", c.date)
		return subcommands.ExitUsageError
	}

	return withApp(ctx, func(a *app.App) error {
		positions, err := a.Collection(ctx)
		if err != nil {
			return err
		}
		result, err := a.Snapshots.TakeSnapshot(ctx, positions, date)
		if err != nil {
			return err
		}
		if c.asJSON {
			return printJSON(result)
		}
		fmt.Fprintf(stdout, "Snapshot %s: %d rows written, %d without a price\n", result.Date, result.RowsWritten, result.MissingPrices)
		return nil
	})
}
