package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"

	"github.com/codyseavey/mtg-tracker/backend/internal/cli"
	"github.com/codyseavey/mtg-tracker/backend/internal/logger"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	cli.Register(commander)

	flag.Parse()
	status := commander.Execute(context.Background())
	logger.Sync()
	os.Exit(int(status))
}
