package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/Jeanclaudech98/Sol-txns-exporter/service/export"
	"github.com/Jeanclaudech98/Sol-txns-exporter/service/ledger"
)

// previewRows is how many records the table preview shows.
const previewRows = 5

// printPreview writes a table of the first records followed by a count line.
func printPreview(w io.Writer, records []ledger.Record) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tAMOUNT\tCURRENCY\tUSD\tDIRECTION\tDESCRIPTION")
	for i, r := range records {
		if i == previewRows {
			break
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.DateString(),
			r.AmountString(),
			r.OriginalCurrency,
			r.USDString(),
			r.Direction,
			r.Description,
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(records) > previewRows {
		fmt.Fprintf(w, "... and %d more\n", len(records)-previewRows)
	}
	fmt.Fprintf(w, "Total: %d records\n", len(records))
	return nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeCSVFile saves records to path.
func writeCSVFile(path string, records []ledger.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := export.WriteCSV(f, records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
