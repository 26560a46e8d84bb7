package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/google/subcommands"

	"github.com/codyseavey/mtg-tracker/backend/internal/app"
	"github.com/codyseavey/mtg-tracker/backend/internal/models"
)

type searchCmd struct {
	limit  int
	asJSON bool
}

func (*searchCmd) Name() string     { return "search" }
func (*searchCmd) Synopsis() string { return "list the printings of a card, newest first" }
func (*searchCmd) Usage() string {
	return `search [-limit N] [-json] <card name or scryfall query>

  A bare card name is matched exactly. Anything containing Scryfall search
  syntax (':', '!' or '"') is sent as-is.
`
}

func (c *searchCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.limit, "limit", 20, "maximum printings to list")
	f.BoolVar(&c.asJSON, "json", false, "print the result as JSON")
}

func (c *searchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	query := strings.TrimSpace(strings.Join(f.Args(), " "))
	if query == "" {
		fmt.Fprintln(stderr, "Error: a card name or query is required")
		return subcommands.ExitUsageError
	}

	return withApp(ctx, func(a *app.App) error {
		result, err := a.Scryfall.SearchCardPrintings(ctx, query, c.limit)
		if err != nil {
			return err
		}
		if c.asJSON {
			return printJSON(result)
		}
		for _, card := range result.Cards {
			fmt.Fprintf(stdout, "%s\t%s\t%s\t%s\t%s\t%s\n",
				card.Set, card.CollectorNumber, card.Name, card.ReleasedAt,
				catalogPrice(card.Prices.USD), catalogPrice(card.Prices.USDFoil))
		}
		if result.HasMore {
			fmt.Fprintf(stderr, "%d of %d printings shown\n", len(result.Cards), result.TotalCount)
		}
		return nil
	})
}

func catalogPrice(p *string) string {
	return nullUSD(models.ParsePrice(p))
}
