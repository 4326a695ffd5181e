package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Jeanclaudech98/Sol-txns-exporter/service/app"
	"github.com/Jeanclaudech98/Sol-txns-exporter/service/config"
	"github.com/Jeanclaudech98/Sol-txns-exporter/service/export"
	"github.com/Jeanclaudech98/Sol-txns-exporter/service/ledger"
	"github.com/urfave/cli/v2"
)

// ledgerFlags are shared by every command that selects a date range.
func ledgerFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "start",
			Usage:    "First day of the range (YYYY-MM-DD)",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "end",
			Usage:    "Last day of the range (YYYY-MM-DD)",
			Required: true,
		},
		&cli.StringFlag{
			Name:    "out",
			Aliases: []string{"o"},
			Usage:   "CSV output path (default: solana_transactions_<timestamp>.csv)",
		},
		&cli.BoolFlag{
			Name:  "no-file",
			Usage: "Skip writing the CSV file",
		},
		&cli.BoolFlag{
			Name:    "json",
			Aliases: []string{"j"},
			Usage:   "Print records as JSON instead of a preview table",
		},
		&cli.StringSliceFlag{
			Name:  "must-jq",
			Usage: "Keep only records for which this jq expression is truthy (repeatable)",
		},
	}
}

func fetchCommand() *cli.Command {
	return &cli.Command{
		Name:      "fetch",
		Usage:     "Build the ledger of a wallet in-process",
		ArgsUsage: "WALLET_ADDRESS",
		Description: `Reads SOLANA_RPC_URL, PRICE_API_KEY and the other server settings from the
environment (or a .env file) and runs the full pipeline locally. Flags go before
the address:

   solexport fetch --start 2024-01-01 --end 2024-03-31 WALLET_ADDRESS`,
		Flags: ledgerFlags(),
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("wallet address is required")
			}
			address := strings.TrimSpace(c.Args().Get(0))

			codes, err := compileFilters(c.StringSlice("must-jq"))
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			logger := newLogger(c)
			ctx := context.Background()

			pipeline, err := app.New(ctx, cfg, nil, logger)
			if err != nil {
				return err
			}
			defer pipeline.Close()

			fmt.Fprintf(os.Stderr, "Fetching transactions for %s (%s to %s)...\n", address, c.String("start"), c.String("end"))
			records, err := pipeline.Fetcher.Fetch(ctx, address, c.String("start"), c.String("end"))
			if err != nil {
				return err
			}

			records, err = filterRecords(records, codes)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				return fmt.Errorf("no records matched the filters")
			}

			return emitRecords(c, records)
		},
	}
}

// emitRecords writes the CSV file unless disabled, then prints the records.
func emitRecords(c *cli.Context, records []ledger.Record) error {
	if !c.Bool("no-file") {
		path := c.String("out")
		if path == "" {
			path = export.FileName(time.Now())
		}
		if err := writeCSVFile(path, records); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Saved %d records to %s\n", len(records), path)
	}

	if c.Bool("json") {
		return printJSON(c.App.Writer, records)
	}
	return printPreview(c.App.Writer, records)
}

func newLogger(c *cli.Context) *slog.Logger {
	cfg := config.Config{LogLevel: c.String("log-level")}
	return app.NewLogger(cfg.SlogLevel())
}
