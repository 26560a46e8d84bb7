package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/codyseavey/mtg-tracker/backend/internal/app"
	"github.com/codyseavey/mtg-tracker/backend/internal/models"
)

type listCmd struct {
	live   bool
	asJSON bool
}

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "list every owned position with its price" }
func (*listCmd) Usage() string {
	return `list [-live=true] [-json]

  Prints each collection row with its unit price and position value. Holdings
  without a usable price are listed with n/a and left out of the total.
`
}

func (c *listCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.live, "live", true, "price from the catalog instead of the latest snapshot")
	f.BoolVar(&c.asJSON, "json", false, "print the valuation as JSON")
}

func (c *listCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(ctx, func(a *app.App) error {
		positions, err := a.Collection(ctx)
		if err != nil {
			return err
		}

		var valuation *models.Valuation
		if c.live {
			valuation, err = a.Valuation.ValueLive(ctx, positions)
		} else {
			valuation, err = a.Valuation.ValueFromSnapshot(ctx, positions)
		}
		if err != nil {
			return err
		}

		if c.asJSON {
			return printJSON(valuation)
		}
		printHoldings(valuation.Holdings)
		fmt.Fprintf(stdout, "Total: %s (%s prices as of %s)\n", usd(valuation.TotalValue), valuation.Mode, valuation.AsOf)
		return nil
	})
}
