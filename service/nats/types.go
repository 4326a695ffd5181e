package nats

import (
	"time"

	"github.com/Jeanclaudech98/Sol-txns-exporter/service/ledger"
	"github.com/shopspring/decimal"
)

// LedgerExportedEvent summarizes a ledger that was served to a caller.
// This is published to the subject "ledgers.{wallet_address}" in JetStream.
type LedgerExportedEvent struct {
	WalletAddress string `json:"wallet_address"`
	Start         string `json:"start"`
	End           string `json:"end"`

	RecordCount  int `json:"record_count"`
	InflowCount  int `json:"inflow_count"`
	OutflowCount int `json:"outflow_count"`

	// USD totals, both non-negative
	InflowUSD  decimal.Decimal `json:"inflow_usd"`
	OutflowUSD decimal.Decimal `json:"outflow_usd"`

	// Format is "json" or "csv".
	Format     string    `json:"format"`
	ExportedAt time.Time `json:"exported_at"`
}

// NewLedgerExportedEvent builds the event for records of address within dr.
func NewLedgerExportedEvent(address string, dr ledger.DateRange, records []ledger.Record, format string) *LedgerExportedEvent {
	event := &LedgerExportedEvent{
		WalletAddress: address,
		Start:         dr.StartDate(),
		End:           dr.EndDate(),
		RecordCount:   len(records),
		InflowUSD:     decimal.Zero,
		OutflowUSD:    decimal.Zero,
		Format:        format,
		ExportedAt:    time.Now().UTC(),
	}

	for _, r := range records {
		switch r.Direction {
		case ledger.Inflow:
			event.InflowCount++
			event.InflowUSD = event.InflowUSD.Add(r.USDValue.Abs())
		case ledger.Outflow:
			event.OutflowCount++
			event.OutflowUSD = event.OutflowUSD.Add(r.USDValue.Abs())
		}
	}

	return event
}

// Subject returns the JetStream subject for the event.
func (e *LedgerExportedEvent) Subject() string {
	return SubjectPrefix + e.WalletAddress
}
