package ledger

import (
	"strings"

	"github.com/Jeanclaudech98/Sol-txns-exporter/service/solana"
)

// Unknown stands in for a counterparty that cannot be determined.
const Unknown = "Unknown"

// Counterparty is the best-effort pair of addresses on either side of a transaction.
type Counterparty struct {
	Source      string
	Destination string
}

// ResolveCounterparty picks the other parties of tx, first match wins:
// a native transfer, then a token transfer mapped to token-account owners,
// then the first two account keys other than address, then the first and
// last account keys. Sides that cannot be determined are Unknown.
func ResolveCounterparty(tx *solana.RawTransaction, address string) Counterparty {
	if tx == nil {
		return Counterparty{Source: Unknown, Destination: Unknown}
	}

	instructions := tx.AllInstructions()

	for _, ix := range instructions {
		if t, ok := solana.DecodeTransfer(ix); ok && t.Kind == solana.TransferNative {
			return Counterparty{
				Source:      keyOrUnknown(tx, t.Source),
				Destination: keyOrUnknown(tx, t.Destination),
			}
		}
	}

	for _, ix := range instructions {
		if t, ok := solana.DecodeTransfer(ix); ok && t.IsToken() {
			return Counterparty{
				Source:      tokenAccountOwner(tx, t.Source),
				Destination: tokenAccountOwner(tx, t.Destination),
			}
		}
	}

	others := make([]string, 0, len(tx.AccountKeys))
	for _, k := range tx.AccountKeys {
		if !strings.EqualFold(k, address) {
			others = append(others, k)
		}
	}
	if len(others) >= 2 {
		return Counterparty{Source: others[0], Destination: others[1]}
	}

	if len(tx.AccountKeys) == 0 {
		return Counterparty{Source: Unknown, Destination: Unknown}
	}
	return Counterparty{
		Source:      tx.AccountKeys[0],
		Destination: tx.AccountKeys[len(tx.AccountKeys)-1],
	}
}

func keyOrUnknown(tx *solana.RawTransaction, index int) string {
	if k, ok := tx.AccountKey(index); ok && k != "" {
		return k
	}
	return Unknown
}

// tokenAccountOwner resolves a token account index to its owner using the
// first matching entry of the pre snapshot followed by the post snapshot.
func tokenAccountOwner(tx *solana.RawTransaction, index int) string {
	for _, balances := range [][]solana.TokenBalance{tx.PreTokenBalances, tx.PostTokenBalances} {
		for _, b := range balances {
			if b.AccountIndex != index {
				continue
			}
			if b.Owner == "" {
				return Unknown
			}
			return b.Owner
		}
	}
	return Unknown
}
