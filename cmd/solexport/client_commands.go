package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Jeanclaudech98/Sol-txns-exporter/client"
	"github.com/Jeanclaudech98/Sol-txns-exporter/service/export"
	"github.com/urfave/cli/v2"
)

func clientCommands() *cli.Command {
	return &cli.Command{
		Name:  "client",
		Usage: "HTTP client commands for interacting with a running server",
		Subcommands: []*cli.Command{
			clientFetchCommand(),
			clientExportCommand(),
		},
	}
}

func timeoutFlag() cli.Flag {
	return &cli.DurationFlag{
		Name:    "timeout",
		Aliases: []string{"t"},
		Value:   10 * time.Minute,
		Usage:   "Request timeout; a full 1000-signature fetch takes several minutes",
	}
}

func newClient(c *cli.Context) *client.Client {
	return client.NewClient(c.String("server-url"), nil, newLogger(c))
}

func clientFetchCommand() *cli.Command {
	return &cli.Command{
		Name:      "fetch",
		Usage:     "Fetch the ledger of a wallet from the server",
		ArgsUsage: "WALLET_ADDRESS",
		Flags:     append(ledgerFlags(), timeoutFlag()),
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("wallet address is required")
			}
			address := strings.TrimSpace(c.Args().Get(0))

			codes, err := compileFilters(c.StringSlice("must-jq"))
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), c.Duration("timeout"))
			defer cancel()

			l, err := newClient(c).FetchLedger(ctx, address, c.String("start"), c.String("end"))
			if err != nil {
				return err
			}

			records, err := filterRecords(l.Records, codes)
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

func clientExportCommand() *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Download the CSV export of a wallet from the server",
		ArgsUsage: "WALLET_ADDRESS",
		Flags: []cli.Flag{
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
				Usage:   "Output path (default: the server's suggested filename)",
			},
			timeoutFlag(),
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("wallet address is required")
			}
			address := strings.TrimSpace(c.Args().Get(0))

			ctx, cancel := context.WithTimeout(context.Background(), c.Duration("timeout"))
			defer cancel()

			var buf bytes.Buffer
			filename, err := newClient(c).ExportCSV(ctx, address, c.String("start"), c.String("end"), &buf)
			if err != nil {
				return err
			}

			path := c.String("out")
			if path == "" {
				path = filename
			}
			if path == "" {
				path = export.FileName(time.Now())
			}
			if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}

			fmt.Fprintf(c.App.Writer, "Saved %s (%d bytes)\n", path, buf.Len())
			return nil
		},
	}
}
