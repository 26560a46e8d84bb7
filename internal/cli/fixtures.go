package cli

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/codyseavey/mtg-tracker/backend/internal/app"
	"github.com/codyseavey/mtg-tracker/backend/internal/models"
	"github.com/codyseavey/mtg-tracker/backend/internal/services"
)

type backfillCmd struct {
	days int
	vol  float64
	seed int64
}

func (*backfillCmd) Name() string     { return "backfill" }
func (*backfillCmd) Synopsis() string { return "fabricate past snapshots from the latest one" }
func (*backfillCmd) Usage() string {
	return `backfill [-days 90] [-vol 0.02] [-seed 42]

  Walks back from the latest snapshot, moving each price by a random daily
  return. Existing dates are kept. For testing charts and movers only.
`
}

func (c *backfillCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.days, "days", services.DefaultBackfillDays, "days to generate before the latest snapshot")
	f.Float64Var(&c.vol, "vol", services.DefaultDailyVol, "daily volatility of the random walk")
	f.Int64Var(&c.seed, "seed", services.DefaultBackfillSeed, "random seed")
}

func (c *backfillCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.days < 1 || c.vol < 0 {
		fmt.Fprintln(stderr, "Error: -days must be positive and -vol must not be negative")
		return subcommands.ExitUsageError
	}

	return withApp(ctx, func(a *app.App) error {
		created, err := a.Fixtures.Backfill(ctx, c.days, c.vol, c.seed)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Backfilled %d snapshot dates\n", created)
		return nil
	})
}

type cloneCmd struct {
	date string
}

func (*cloneCmd) Name() string     { return "clone" }
func (*cloneCmd) Synopsis() string { return "copy the latest snapshot to another date" }
func (*cloneCmd) Usage() string {
	return `clone [-date YYYY-MM-DD]

  Copies every row of the latest snapshot to -date, replacing rows already
  there. Defaults to the day before the latest snapshot.
`
}

func (c *cloneCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "date", "", "target date, defaults to the day before the latest snapshot")
}

func (c *cloneCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.date != "" {
		if _, err := time.Parse(models.DateLayout, c.date); err != nil {
			fmt.Fprintf(stderr, "Error: invalid -date %q, want YYYY-MM-DD\n", c.date)
			return subcommands.ExitUsageError
		}
	}

	return withApp(ctx, func(a *app.App) error {
		result, err := a.Fixtures.CloneLatest(ctx, c.date)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Cloned %d rows from %s to %s\n", result.Copied, result.Source, result.Target)
		return nil
	})
}

type overrideCmd struct {
	date   string
	id     string
	finish string
	price  string
}

func (*overrideCmd) Name() string     { return "override" }
func (*overrideCmd) Synopsis() string { return "set one snapshot price by hand" }
func (*overrideCmd) Usage() string {
	return `override -date YYYY-MM-DD -id <scryfall id> -finish foil|nonfoil -price <usd>

  Replaces the price of one stored row. Fails if no row matches.
`
}

func (c *overrideCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "date", "", "snapshot date (required)")
	f.StringVar(&c.id, "id", "", "Scryfall card id (required)")
	f.StringVar(&c.finish, "finish", string(models.FinishNonfoil), "foil or nonfoil")
	f.StringVar(&c.price, "price", "", "new USD price (required)")
}

func (c *overrideCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.date == "" || c.id == "" || c.price == "" {
		fmt.Fprintln(stderr, "Error: -date, -id and -price are required")
		return subcommands.ExitUsageError
	}
	finish, err := models.ParseFinish(c.finish)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	price, err := decimal.NewFromString(c.price)
	if err != nil || price.IsNegative() {
		fmt.Fprintf(stderr, "Error: invalid -price %q\n", c.price)
		return subcommands.ExitUsageError
	}

	return withApp(ctx, func(a *app.App) error {
		if err := a.Fixtures.OverridePrice(ctx, c.date, c.id, finish, price); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Set %s %s on %s to %s\n", c.id, finish, c.date, usd(price))
		return nil
	})
}
