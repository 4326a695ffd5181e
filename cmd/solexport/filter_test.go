package main

import (
	"testing"
	"time"

	"github.com/Jeanclaudech98/Sol-txns-exporter/service/ledger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecord(currency, amount, usd string, direction ledger.Direction) ledger.Record {
	return ledger.Record{
		Date:             time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Year:             2024,
		Month:            3,
		OriginalAmount:   decimal.RequireFromString(amount),
		OriginalCurrency: currency,
		USDValue:         decimal.RequireFromString(usd),
		Direction:        direction,
		Description:      "Unknown Transaction",
		TransactionHash:  "sig-" + currency,
		Chain:            ledger.Chain,
		WalletAddress:    "wallet",
	}
}

func TestFilterRecords(t *testing.T) {
	records := []ledger.Record{
		testRecord("SOL", "-1.5", "-150", ledger.Outflow),
		testRecord("BONK", "1000", "150", ledger.Inflow),
		testRecord("USDC", "20", "20", ledger.Inflow),
	}

	tests := []struct {
		name    string
		filters []string
		want    []string
	}{
		{"no filters", nil, []string{"SOL", "BONK", "USDC"}},
		{"direction", []string{`.direction == "Inflow"`}, []string{"BONK", "USDC"}},
		{"numeric on string field", []string{`(.usd_value | tonumber) > 100`}, []string{"BONK"}},
		{"all must hold", []string{`.direction == "Inflow"`, `.original_currency | startswith("U")`}, []string{"USDC"}},
		{"null is falsy", []string{`.missing`}, nil},
		{"runtime error is no match", []string{`.original_currency | tonumber`}, nil},
		{"non-boolean values are truthy", []string{`.chain`}, []string{"SOL", "BONK", "USDC"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codes, err := compileFilters(tt.filters)
			require.NoError(t, err)

			got, err := filterRecords(records, codes)
			require.NoError(t, err)

			var currencies []string
			for _, r := range got {
				currencies = append(currencies, r.OriginalCurrency)
			}
			assert.Equal(t, tt.want, currencies)
		})
	}
}

func TestCompileFilters_Invalid(t *testing.T) {
	_, err := compileFilters([]string{`.direction ==`})
	assert.ErrorContains(t, err, "failed to parse jq filter")

	_, err = compileFilters([]string{`$undefined`})
	assert.ErrorContains(t, err, "failed to compile jq filter")
}

func TestIsTruthy(t *testing.T) {
	assert.False(t, isTruthy(nil))
	assert.False(t, isTruthy(false))
	assert.True(t, isTruthy(true))
	assert.True(t, isTruthy(0))
	assert.True(t, isTruthy(""))
}
