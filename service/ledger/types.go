package ledger

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Chain is the constant chain label carried by every record.
const Chain = "Solana"

// Direction is the sign of a balance change as seen from the watched address.
type Direction string

const (
	Inflow  Direction = "Inflow"
	Outflow Direction = "Outflow"
)

// DirectionOf derives a direction from a signed amount. Zero is an inflow.
func DirectionOf(amount decimal.Decimal) Direction {
	if amount.IsNegative() {
		return Outflow
	}
	return Inflow
}

// Leg is one signed balance change attributable to the watched address
// within one transaction.
type Leg struct {
	Amount    decimal.Decimal // signed; sign is the direction
	Direction Direction
	Asset     string // "SOL" or the token mint
	Ticker    string
	Decimals  int32
}

// IsNative reports whether the leg moves native SOL.
func (l Leg) IsNative() bool {
	return l.Asset == NativeAsset
}

// Record is one finalized ledger entry.
type Record struct {
	Date             time.Time // calendar day at midnight in the ledger location
	Year             int
	Month            int
	OriginalAmount   decimal.Decimal
	OriginalCurrency string
	USDValue         decimal.Decimal
	Direction        Direction
	Description      string
	TransactionHash  string
	Chain            string
	WalletAddress    string
	Asset            string
}

// DateString renders the record date as YYYY-MM-DD.
func (r Record) DateString() string {
	return r.Date.Format(DateLayout)
}

// AmountString renders the original amount as its shortest decimal form, e.g. "-1.5".
func (r Record) AmountString() string {
	return r.OriginalAmount.String()
}

// USDString renders the USD value with exactly two fraction digits, e.g. "150.00".
func (r Record) USDString() string {
	return r.USDValue.StringFixed(2)
}

// Key returns the identity used to collapse duplicate observations.
func (r Record) Key() DedupKey {
	return DedupKey{
		Signature: r.TransactionHash,
		Ticker:    r.OriginalCurrency,
		Amount:    r.AmountString(),
		Direction: r.Direction,
	}
}

// DedupKey identifies a leg across repeated observations of a transaction.
type DedupKey struct {
	Signature string
	Ticker    string
	Amount    string
	Direction Direction
}

type recordJSON struct {
	Date             string    `json:"date"`
	Year             int       `json:"year"`
	Month            int       `json:"month"`
	OriginalAmount   string    `json:"original_amount"`
	OriginalCurrency string    `json:"original_currency"`
	USDValue         string    `json:"usd_value"`
	Direction        Direction `json:"direction"`
	Description      string    `json:"description"`
	TransactionHash  string    `json:"transaction_hash"`
	Chain            string    `json:"chain"`
	WalletAddress    string    `json:"wallet_address"`
	Asset            string    `json:"asset,omitempty"`
}

// MarshalJSON renders amounts as strings in their export formats.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(recordJSON{
		Date:             r.DateString(),
		Year:             r.Year,
		Month:            r.Month,
		OriginalAmount:   r.AmountString(),
		OriginalCurrency: r.OriginalCurrency,
		USDValue:         r.USDString(),
		Direction:        r.Direction,
		Description:      r.Description,
		TransactionHash:  r.TransactionHash,
		Chain:            r.Chain,
		WalletAddress:    r.WalletAddress,
		Asset:            r.Asset,
	})
}

// UnmarshalJSON accepts the form produced by MarshalJSON. Dates decode as UTC midnight.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw recordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	date, err := time.Parse(DateLayout, raw.Date)
	if err != nil {
		return fmt.Errorf("invalid record date %q: %w", raw.Date, err)
	}
	amount, err := decimal.NewFromString(raw.OriginalAmount)
	if err != nil {
		return fmt.Errorf("invalid original amount %q: %w", raw.OriginalAmount, err)
	}
	usd, err := decimal.NewFromString(raw.USDValue)
	if err != nil {
		return fmt.Errorf("invalid usd value %q: %w", raw.USDValue, err)
	}

	*r = Record{
		Date:             date,
		Year:             raw.Year,
		Month:            raw.Month,
		OriginalAmount:   amount,
		OriginalCurrency: raw.OriginalCurrency,
		USDValue:         usd,
		Direction:        raw.Direction,
		Description:      raw.Description,
		TransactionHash:  raw.TransactionHash,
		Chain:            raw.Chain,
		WalletAddress:    raw.WalletAddress,
		Asset:            raw.Asset,
	}
	return nil
}
