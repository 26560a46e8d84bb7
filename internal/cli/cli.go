// Package cli implements the tcgprice command line tool.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/Rhymond/go-money"
	"github.com/google/subcommands"
	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"

	"github.com/codyseavey/mtg-tracker/backend/internal/app"
	"github.com/codyseavey/mtg-tracker/backend/internal/config"
	"github.com/codyseavey/mtg-tracker/backend/internal/logger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Output streams. Tests swap them.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// Register the subcommands.
func Register(c *subcommands.Commander) {
	c.Register(c.HelpCommand(), "")
	c.Register(c.FlagsCommand(), "")

	c.Register(&snapshotCmd{}, "prices")
	c.Register(&searchCmd{}, "prices")

	c.Register(&dashboardCmd{}, "reports")
	c.Register(&listCmd{}, "reports")
	c.Register(&moversCmd{}, "reports")
	c.Register(&historyCmd{}, "reports")

	c.Register(&backfillCmd{}, "fixtures")
	c.Register(&cloneCmd{}, "fixtures")
	c.Register(&overrideCmd{}, "fixtures")
}

// openApp loads the configuration and wires the services. Callers Close it.
func openApp(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger.Init(cfg.Env)
	return app.New(ctx, cfg)
}

// withApp runs fn against a freshly wired app and maps its error to an exit status.
func withApp(ctx context.Context, fn func(*app.App) error) subcommands.ExitStatus {
	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	if err := fn(a); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func printJSON(v any) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// usd formats an amount as US dollars, rounded to the cent.
func usd(d decimal.Decimal) string {
	cents := d.Shift(2).Round(0).IntPart()
	return money.New(cents, money.USD).Display()
}

// nullUSD formats a possibly unknown amount.
func nullUSD(d decimal.NullDecimal) string {
	if !d.Valid {
		return "n/a"
	}
	return usd(d.Decimal)
}

func signedUSD(d decimal.Decimal) string {
	if d.IsPositive() {
		return "+" + usd(d)
	}
	return usd(d)
}

func percent(d decimal.NullDecimal) string {
	if !d.Valid {
		return "n/a"
	}
	if d.Decimal.IsPositive() {
		return "+" + d.Decimal.StringFixed(2) + "%"
	}
	return d.Decimal.StringFixed(2) + "%"
}
