package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Jeanclaudech98/Sol-txns-exporter/service/ledger"
	"github.com/Jeanclaudech98/Sol-txns-exporter/service/prices"
	"github.com/Jeanclaudech98/Sol-txns-exporter/service/symbols"
	"github.com/urfave/cli/v2"
)

func lookupSymbolCommand() *cli.Command {
	return &cli.Command{
		Name:      "symbol",
		Usage:     "Resolve a token mint to its ticker",
		ArgsUsage: "MINT",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dexscreener-url",
				Usage:   "DexScreener API base URL",
				EnvVars: []string{"DEXSCREENER_URL"},
				Value:   symbols.DefaultDexScreenerURL,
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("mint address is required")
			}

			source := symbols.NewDexScreener(c.String("dexscreener-url"), &http.Client{Timeout: 30 * time.Second})
			resolver := symbols.NewResolver(source, nil, nil, newLogger(c))

			fmt.Fprintln(c.App.Writer, resolver.Resolve(context.Background(), c.Args().Get(0)))
			return nil
		},
	}
}

func lookupPriceCommand() *cli.Command {
	return &cli.Command{
		Name:      "price",
		Usage:     "Show the USD price of a ticker at the start of a day",
		ArgsUsage: "TICKER",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "date",
				Usage: "Day to price (YYYY-MM-DD, UTC; default: today)",
			},
			&cli.StringFlag{
				Name:    "price-api-url",
				Usage:   "Alchemy prices API base URL",
				EnvVars: []string{"PRICE_API_URL"},
				Value:   prices.DefaultAlchemyURL,
			},
			&cli.StringFlag{
				Name:     "price-api-key",
				Usage:    "Alchemy API key",
				EnvVars:  []string{"PRICE_API_KEY"},
				Required: true,
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("ticker is required")
			}

			day := time.Now().UTC()
			if s := c.String("date"); s != "" {
				parsed, err := time.Parse(ledger.DateLayout, s)
				if err != nil {
					return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
				}
				day = parsed
			}

			source := prices.NewAlchemy(c.String("price-api-url"), c.String("price-api-key"), &http.Client{Timeout: 30 * time.Second})
			oracle := prices.NewOracle(source, nil, nil, newLogger(c))

			price := oracle.Price(context.Background(), c.Args().Get(0), day)
			fmt.Fprintf(c.App.Writer, "%s %s: $%s\n", c.Args().Get(0), day.Format(ledger.DateLayout), price.String())
			return nil
		},
	}
}
