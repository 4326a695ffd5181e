package ledger

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_JSON(t *testing.T) {
	r := Record{
		Date:             time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Year:             2024,
		Month:            3,
		OriginalAmount:   decimal.RequireFromString("-1.5"),
		OriginalCurrency: "SOL",
		USDValue:         decimal.RequireFromString("150"),
		Direction:        Outflow,
		Description:      "Transfer to Wallet abc",
		TransactionHash:  "sig",
		Chain:            Chain,
		WalletAddress:    "wallet",
		Asset:            NativeAsset,
	}

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"date": "2024-03-01",
		"year": 2024,
		"month": 3,
		"original_amount": "-1.5",
		"original_currency": "SOL",
		"usd_value": "150.00",
		"direction": "Outflow",
		"description": "Transfer to Wallet abc",
		"transaction_hash": "sig",
		"chain": "Solana",
		"wallet_address": "wallet",
		"asset": "SOL"
	}`, string(data))

	var back Record
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, r.Key(), back.Key())
	assert.True(t, back.USDValue.Equal(r.USDValue))
	assert.Equal(t, r.Date, back.Date)
}

func TestRecord_UnmarshalErrors(t *testing.T) {
	var r Record
	assert.ErrorContains(t, json.Unmarshal([]byte(`{"date":"March 1"}`), &r), "invalid record date")
	assert.ErrorContains(t, json.Unmarshal([]byte(`{"date":"2024-03-01","original_amount":"x"}`), &r), "invalid original amount")
}

func TestDirectionOf(t *testing.T) {
	assert.Equal(t, Outflow, DirectionOf(decimal.RequireFromString("-0.001")))
	assert.Equal(t, Inflow, DirectionOf(decimal.RequireFromString("0.001")))
	assert.Equal(t, Inflow, DirectionOf(decimal.Zero))
}

func TestErrorUnwrap(t *testing.T) {
	cause := assert.AnError
	err := upstreamError(cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "upstream", KindOf(err).String())
	assert.Equal(t, KindUnknown, KindOf(cause))
}
