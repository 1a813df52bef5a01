package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version kong.VersionFlag `help:"Show version"`
	Play    PlayCmd          `cmd:"" help:"Play simulated rounds on a host table"`
	Verify  VerifyCmd        `cmd:"" help:"Replay a seed pair and print the deterministic trace"`
	Serve   ServeCmd         `cmd:"" help:"Run a host table with the spectator feed attached"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("chaosjack"),
		kong.Description("Chaos blackjack round-resolution engine"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
