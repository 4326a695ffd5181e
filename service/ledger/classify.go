package ledger

import "github.com/Jeanclaudech98/Sol-txns-exporter/service/solana"

// UnknownTransaction describes anything that is neither a single transfer
// nor a SOL/token conversion.
const UnknownTransaction = "Unknown Transaction"

// Describe builds the human-readable description shared by the records of one transaction.
func Describe(records []Record, tx *solana.RawTransaction, address string) string {
	switch len(records) {
	case 1:
		cp := ResolveCounterparty(tx, address)
		if records[0].Direction == Outflow {
			return "Transfer to Wallet " + cp.Destination
		}
		return "Reception from Wallet " + cp.Source
	case 2:
		native, token, ok := nativeTokenPair(records)
		if !ok || native.Direction == token.Direction {
			return UnknownTransaction
		}
		if native.Direction == Outflow {
			return "Converting SOL to " + token.OriginalCurrency
		}
		return "Liquidating " + token.OriginalCurrency + " to SOL"
	default:
		return UnknownTransaction
	}
}

// nativeTokenPair splits a pair by resolved currency, so a token whose
// ticker resolves to "SOL" counts as native.
func nativeTokenPair(records []Record) (native, token Record, ok bool) {
	a, b := records[0], records[1]
	aNative, bNative := a.OriginalCurrency == NativeAsset, b.OriginalCurrency == NativeAsset
	switch {
	case aNative && !bNative:
		return a, b, true
	case bNative && !aNative:
		return b, a, true
	default:
		return Record{}, Record{}, false
	}
}

// IsSwap reports whether records are exactly one inflow and one outflow,
// of any assets. This is the pricing test and is broader than the
// conversion description in Describe.
func IsSwap(records []Record) bool {
	if len(records) != 2 {
		return false
	}
	var in, out bool
	for _, r := range records {
		switch r.Direction {
		case Inflow:
			in = true
		case Outflow:
			out = true
		}
	}
	return in && out
}
