package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func record(asset, ticker, amount string) Record {
	a := decimal.RequireFromString(amount)
	return Record{
		Asset:            asset,
		OriginalCurrency: ticker,
		OriginalAmount:   a,
		Direction:        DirectionOf(a),
	}
}

func TestDescribe(t *testing.T) {
	wallet, peer := newAddress(), newAddress()

	t.Run("single outflow", func(t *testing.T) {
		tx := nativeTransfer(wallet, peer, 1_000_000_000, 0)
		got := Describe([]Record{record(NativeAsset, "SOL", "-1")}, tx, wallet)
		assert.Equal(t, "Transfer to Wallet "+peer, got)
	})

	t.Run("single inflow", func(t *testing.T) {
		tx := nativeTransfer(peer, wallet, 1_000_000_000, 0)
		got := Describe([]Record{record(NativeAsset, "SOL", "1")}, tx, wallet)
		assert.Equal(t, "Reception from Wallet "+peer, got)
	})

	t.Run("converting sol", func(t *testing.T) {
		got := Describe([]Record{record(bonkMint, "Bonk", "1000"), record(NativeAsset, "SOL", "-0.5")}, nil, wallet)
		assert.Equal(t, "Converting SOL to Bonk", got)
	})

	t.Run("liquidating token", func(t *testing.T) {
		got := Describe([]Record{record(NativeAsset, "SOL", "0.5"), record(bonkMint, "Bonk", "-1000")}, nil, wallet)
		assert.Equal(t, "Liquidating Bonk to SOL", got)
	})

	t.Run("token to token is not described as a conversion", func(t *testing.T) {
		got := Describe([]Record{record(bonkMint, "Bonk", "-1000"), record("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", "USDC", "20")}, nil, wallet)
		assert.Equal(t, UnknownTransaction, got)
	})

	t.Run("wrapped sol ticker is not a token", func(t *testing.T) {
		wsol := "So11111111111111111111111111111111111111112"
		got := Describe([]Record{record(NativeAsset, "SOL", "-0.5"), record(wsol, "SOL", "0.5")}, nil, wallet)
		assert.Equal(t, UnknownTransaction, got)
	})

	t.Run("same direction pair", func(t *testing.T) {
		got := Describe([]Record{record(NativeAsset, "SOL", "-0.5"), record(bonkMint, "Bonk", "-1000")}, nil, wallet)
		assert.Equal(t, UnknownTransaction, got)
	})

	t.Run("three legs", func(t *testing.T) {
		got := Describe([]Record{
			record(NativeAsset, "SOL", "-0.5"),
			record(bonkMint, "Bonk", "1000"),
			record("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", "USDC", "1"),
		}, nil, wallet)
		assert.Equal(t, UnknownTransaction, got)
	})

	t.Run("no records", func(t *testing.T) {
		assert.Equal(t, UnknownTransaction, Describe(nil, nil, wallet))
	})
}

func TestIsSwap(t *testing.T) {
	assert.True(t, IsSwap([]Record{record(NativeAsset, "SOL", "-1"), record(bonkMint, "Bonk", "5")}))
	// Broader than the description rule: any two assets.
	assert.True(t, IsSwap([]Record{record(bonkMint, "Bonk", "-1"), record("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", "USDC", "5")}))

	assert.False(t, IsSwap([]Record{record(NativeAsset, "SOL", "-1"), record(bonkMint, "Bonk", "-5")}))
	assert.False(t, IsSwap([]Record{record(NativeAsset, "SOL", "-1")}))
	assert.False(t, IsSwap(nil))
}
