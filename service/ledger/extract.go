package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	"github.com/Jeanclaudech98/Sol-txns-exporter/service/solana"
	"github.com/shopspring/decimal"
)

const (
	// NativeAsset tags legs that move native SOL.
	NativeAsset = "SOL"

	// NativeDecimals is the lamport scale of one SOL.
	NativeDecimals = 9
)

// Dust thresholds below which a balance change is ignored.
var (
	NativeDust = decimal.New(1, -3) // 0.001 SOL
	TokenDust  = decimal.New(1, -5) // 0.00001 of a token
)

// SymbolResolver maps an asset to its display ticker. It never fails.
type SymbolResolver interface {
	Resolve(ctx context.Context, asset string) string
}

// Extractor turns a raw transaction into the legs attributable to one address.
type Extractor struct {
	symbols SymbolResolver
	logger  *slog.Logger
}

// NewExtractor creates an Extractor.
func NewExtractor(symbols SymbolResolver, logger *slog.Logger) *Extractor {
	return &Extractor{symbols: symbols, logger: logger}
}

// candidate is a leg before its ticker is resolved.
type candidate struct {
	asset    string
	amount   decimal.Decimal
	decimals int32
}

type legKey struct {
	asset    string
	ticker   string
	amount   string
	decimals int32
}

// Extract returns the token and native legs of tx owned by address.
// A transaction with malformed balance data yields no legs; the problem is logged.
func (e *Extractor) Extract(ctx context.Context, tx *solana.RawTransaction, address string) []Leg {
	if tx == nil {
		return nil
	}

	candidates, err := collectCandidates(tx, address)
	if err != nil {
		e.logger.WarnContext(ctx, "skipping malformed transaction",
			"signature", tx.Signature,
			"operation", "extract",
			"error", err,
		)
		return nil
	}

	legs := make([]Leg, 0, len(candidates))
	seen := make(map[legKey]struct{}, len(candidates))
	for _, c := range candidates {
		ticker := NativeAsset
		if c.asset != NativeAsset {
			ticker = e.symbols.Resolve(ctx, c.asset)
		}
		key := legKey{asset: c.asset, ticker: ticker, amount: c.amount.String(), decimals: c.decimals}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		legs = append(legs, Leg{
			Amount:    c.amount,
			Direction: DirectionOf(c.amount),
			Asset:     c.asset,
			Ticker:    ticker,
			Decimals:  c.decimals,
		})
	}
	return legs
}

func collectCandidates(tx *solana.RawTransaction, address string) ([]candidate, error) {
	tokens, err := tokenCandidates(tx, address)
	if err != nil {
		return nil, err
	}
	native, ok, err := nativeCandidate(tx, address)
	if err != nil {
		return nil, err
	}
	if ok {
		tokens = append(tokens, native)
	}
	return tokens, nil
}

type balanceKey struct {
	index int
	mint  string
}

func tokenCandidates(tx *solana.RawTransaction, address string) ([]candidate, error) {
	pre := make(map[balanceKey]*big.Int, len(tx.PreTokenBalances))
	for _, b := range tx.PreTokenBalances {
		amount, err := parseRawAmount(b)
		if err != nil {
			return nil, err
		}
		pre[balanceKey{b.AccountIndex, b.Mint}] = amount
	}

	var out []candidate
	for _, b := range tx.PostTokenBalances {
		post, err := parseRawAmount(b)
		if err != nil {
			return nil, err
		}
		if b.Decimals < 0 {
			return nil, fmt.Errorf("token balance %d: negative decimals %d", b.AccountIndex, b.Decimals)
		}

		diff := new(big.Int).Set(post)
		if before, ok := pre[balanceKey{b.AccountIndex, b.Mint}]; ok {
			diff.Sub(diff, before)
		}
		if diff.Sign() == 0 || !strings.EqualFold(b.Owner, address) {
			continue
		}

		amount := decimal.NewFromBigInt(diff, -int32(b.Decimals))
		if amount.Abs().LessThan(TokenDust) {
			continue
		}
		out = append(out, candidate{asset: b.Mint, amount: amount, decimals: int32(b.Decimals)})
	}
	return out, nil
}

func nativeCandidate(tx *solana.RawTransaction, address string) (candidate, bool, error) {
	idx := -1
	for i, k := range tx.AccountKeys {
		if strings.EqualFold(k, address) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return candidate{}, false, nil
	}
	if idx >= len(tx.PreBalances) || idx >= len(tx.PostBalances) {
		return candidate{}, false, fmt.Errorf("native balance index %d out of range (pre %d, post %d)",
			idx, len(tx.PreBalances), len(tx.PostBalances))
	}

	diff := new(big.Int).SetUint64(tx.PostBalances[idx])
	diff.Sub(diff, new(big.Int).SetUint64(tx.PreBalances[idx]))

	amount := decimal.NewFromBigInt(diff, -NativeDecimals)
	if amount.Abs().LessThan(NativeDust) {
		return candidate{}, false, nil
	}
	return candidate{asset: NativeAsset, amount: amount, decimals: NativeDecimals}, true, nil
}

func parseRawAmount(b solana.TokenBalance) (*big.Int, error) {
	amount, ok := new(big.Int).SetString(b.Amount, 10)
	if !ok {
		return nil, fmt.Errorf("token balance %d (%s): unparseable amount %q", b.AccountIndex, b.Mint, b.Amount)
	}
	return amount, nil
}
