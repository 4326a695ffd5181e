package main

import (
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"
)

var (
	// Version information (set via ldflags during build)
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "solexport",
		Usage: "Export the transaction ledger of a Solana wallet",
		Description: `A command-line tool for building priced, de-duplicated ledgers of Solana wallets.

Run the pipeline in-process with "fetch", or talk to a running server with "client".`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Commands: []*cli.Command{
			fetchCommand(),
			// Client commands (HTTP API)
			clientCommands(),
			// Symbol and price lookups
			{
				Name:  "lookup",
				Usage: "Query the symbol and price services directly",
				Subcommands: []*cli.Command{
					lookupSymbolCommand(),
					lookupPriceCommand(),
				},
			},
			// Server utility commands
			{
				Name:  "server",
				Usage: "Server utility commands",
				Subcommands: []*cli.Command{
					healthCommand(),
					versionCommand(),
				},
			},
		},
		// Global flags available to all commands
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server-url",
				Usage:   "Server URL for client and health commands",
				EnvVars: []string{"SOLEXPORT_SERVER_URL"},
				Value:   "http://localhost:8080",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level for diagnostics on stderr",
				EnvVars: []string{"LOG_LEVEL"},
				Value:   "error",
			},
		},
	}
}
