// Package export renders ledgers as downloadable files.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Jeanclaudech98/Sol-txns-exporter/service/ledger"
)

// ContentType is the MIME type of WriteCSV output.
const ContentType = "text/csv"

// Header is the fixed first line of every export.
var Header = []string{
	"Date",
	"Year",
	"Month",
	"Original Amount",
	"Original Currency",
	"Amount in Base Currency ($)",
	"Inflow/Outflow",
	"Description",
	"Transaction Hash",
	"Chain",
	"Wallet Address",
}

// WriteCSV writes records as CSV: an unquoted header, then one line per record
// with every field double-quoted. Lines are separated by "\n" with no trailing
// newline.
func WriteCSV(w io.Writer, records []ledger.Record) error {
	var b strings.Builder
	b.WriteString(strings.Join(Header, ","))

	for _, r := range records {
		b.WriteByte('\n')
		for i, field := range Row(r) {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(quote(field))
		}
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

// Row returns the export fields of r in header order.
func Row(r ledger.Record) []string {
	description := r.Description
	if description == "" {
		description = ledger.UnknownTransaction
	}
	return []string{
		r.DateString(),
		fmt.Sprint(r.Year),
		fmt.Sprint(r.Month),
		r.AmountString(),
		r.OriginalCurrency,
		r.USDString(),
		string(r.Direction),
		description,
		r.TransactionHash,
		r.Chain,
		r.WalletAddress,
	}
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// FileName returns the download name for an export created at now,
// e.g. solana_transactions_2024-03-01T12:00:00.000Z.csv.
func FileName(now time.Time) string {
	return "solana_transactions_" + now.UTC().Format("2006-01-02T15:04:05.000Z07:00") + ".csv"
}
