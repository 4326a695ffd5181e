package ledger

import (
	"context"
	"encoding/binary"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Jeanclaudech98/Sol-txns-exporter/service/solana"
	sol "github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newAddress() string {
	return sol.NewWallet().PublicKey().String()
}

// fakeSymbols resolves from a fixed table, falling back to the mint itself.
type fakeSymbols map[string]string

func (f fakeSymbols) Resolve(_ context.Context, asset string) string {
	if asset == NativeAsset {
		return NativeAsset
	}
	if s, ok := f[asset]; ok {
		return s
	}
	return asset
}

// fakeOracle prices by ticker; unknown tickers are zero.
type fakeOracle map[string]decimal.Decimal

func (f fakeOracle) Price(_ context.Context, ticker string, _ time.Time) decimal.Decimal {
	return f[ticker]
}

type fakeSource struct {
	signatures []solana.SignatureInfo
	listErr    error

	mu           sync.Mutex
	transactions map[string]*solana.RawTransaction
	txErrs       map[string]error

	fetches atomic.Int32
}

func (f *fakeSource) ListSignatures(_ context.Context, _ string, _ int) ([]solana.SignatureInfo, error) {
	return f.signatures, f.listErr
}

func (f *fakeSource) GetTransaction(_ context.Context, signature string) (*solana.RawTransaction, error) {
	f.fetches.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.txErrs[signature]; err != nil {
		return nil, err
	}
	return f.transactions[signature], nil
}

func (f *fakeSource) add(sig string, at time.Time, tx *solana.RawTransaction) {
	f.signatures = append(f.signatures, solana.SignatureInfo{Signature: sig, BlockTime: &at})
	if f.transactions == nil {
		f.transactions = make(map[string]*solana.RawTransaction)
	}
	if tx != nil {
		tx.Signature = sig
	}
	f.transactions[sig] = tx
}

func systemTransferData(lamports uint64) []byte {
	data := make([]byte, 12)
	binary.LittleEndian.PutUint32(data[0:4], solana.SystemProgramTransferInstruction)
	binary.LittleEndian.PutUint64(data[4:12], lamports)
	return data
}

func tokenTransferData(amount uint64) []byte {
	data := make([]byte, 9)
	data[0] = solana.TokenProgramTransferInstruction
	binary.LittleEndian.PutUint64(data[1:9], amount)
	return data
}

// nativeTransfer builds a transaction moving lamports from -> to, with the
// fee paid by from.
func nativeTransfer(from, to string, lamports, fee uint64) *solana.RawTransaction {
	const start = 10_000_000_000
	return &solana.RawTransaction{
		AccountKeys: []string{from, to, solana.SystemProgramID.String()},
		Instructions: []solana.Instruction{{
			ProgramID: solana.SystemProgramID.String(),
			Accounts:  []int{0, 1},
			Data:      systemTransferData(lamports),
		}},
		PreBalances:  []uint64{start, start, 1},
		PostBalances: []uint64{start - lamports - fee, start + lamports, 1},
	}
}

// tokenTransfer builds a token transfer of raw amount between two token
// accounts owned by fromOwner and toOwner.
func tokenTransfer(fromOwner, toOwner, mint string, amount uint64, decimals int) *solana.RawTransaction {
	fromATA, toATA := newAddress(), newAddress()
	const start = 1_000_000_000
	return &solana.RawTransaction{
		AccountKeys: []string{fromOwner, fromATA, toATA, solana.TokenProgramID.String()},
		Instructions: []solana.Instruction{{
			ProgramID: solana.TokenProgramID.String(),
			Accounts:  []int{1, 2, 0},
			Data:      tokenTransferData(amount),
		}},
		PreBalances:  []uint64{5_000_000, 2_039_280, 2_039_280, 1},
		PostBalances: []uint64{4_995_000, 2_039_280, 2_039_280, 1},
		PreTokenBalances: []solana.TokenBalance{
			{AccountIndex: 1, Mint: mint, Owner: fromOwner, Amount: "1000000000", Decimals: decimals},
			{AccountIndex: 2, Mint: mint, Owner: toOwner, Amount: "0", Decimals: decimals},
		},
		PostTokenBalances: []solana.TokenBalance{
			{AccountIndex: 1, Mint: mint, Owner: fromOwner, Amount: decimal.NewFromInt(start - int64(amount)).String(), Decimals: decimals},
			{AccountIndex: 2, Mint: mint, Owner: toOwner, Amount: decimal.NewFromInt(int64(amount)).String(), Decimals: decimals},
		},
	}
}

func mustTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}
