package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PriceOracle returns the USD price of ticker on the UTC day containing at,
// or zero when it cannot be determined.
type PriceOracle interface {
	Price(ctx context.Context, ticker string, at time.Time) decimal.Decimal
}

// Pricer attaches USD values to the records of one transaction.
type Pricer struct {
	oracle PriceOracle
}

// NewPricer creates a Pricer.
func NewPricer(oracle PriceOracle) *Pricer {
	return &Pricer{oracle: oracle}
}

// Price sets USDValue on every record to price times |amount| rounded to
// cents. When the records form a swap, the outflow's value becomes the
// shared magnitude: the outflow reports it negated and the inflow positive.
func (p *Pricer) Price(ctx context.Context, records []Record) {
	for i := range records {
		r := &records[i]
		price := p.oracle.Price(ctx, r.OriginalCurrency, calendarDay(r.Date))
		r.USDValue = price.Mul(r.OriginalAmount.Abs()).Round(2)
	}

	if IsSwap(records) {
		Rebalance(records)
	}
}

// Rebalance rewrites the USD values of a one-in, one-out pair to share the
// outflow's magnitude. A zero outflow value leaves both records unchanged.
func Rebalance(records []Record) {
	out, in := -1, -1
	for i, r := range records {
		switch {
		case r.Direction == Outflow && out < 0:
			out = i
		case r.Direction == Inflow && in < 0:
			in = i
		}
	}
	if out < 0 || in < 0 {
		return
	}

	magnitude := records[out].USDValue.Abs()
	if !magnitude.IsPositive() {
		return
	}
	records[out].USDValue = magnitude.Neg()
	records[in].USDValue = magnitude
}

// calendarDay maps a record date to UTC midnight of the same calendar day,
// so prices key on the day the record shows rather than its UTC instant.
func calendarDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
