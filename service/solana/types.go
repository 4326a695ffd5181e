package solana

import (
	"time"
)

// SignatureInfo is one entry of an address's signature history.
type SignatureInfo struct {
	Signature string
	Slot      uint64
	BlockTime *time.Time // nil when the node did not report a block time
	Err       *string    // nil if transaction succeeded, contains error message if failed
}

// RawTransaction is the subset of a confirmed transaction the ledger pipeline reads.
// This is our domain model, independent of the RPC response format.
//
// Slices may be empty or shorter than AccountKeys when the node omitted data;
// readers must bounds-check every index.
type RawTransaction struct {
	Signature string
	Slot      uint64
	BlockTime *time.Time

	// AccountKeys holds the static message keys followed by the writable and
	// readonly addresses loaded from lookup tables. Balance indices refer to it.
	AccountKeys []string

	Instructions      []Instruction
	InnerInstructions []Instruction // flattened across all outer instructions

	PreBalances  []uint64 // lamports per account index
	PostBalances []uint64

	PreTokenBalances  []TokenBalance
	PostTokenBalances []TokenBalance
}

// Instruction is a compiled instruction with its program resolved.
type Instruction struct {
	ProgramID string
	Accounts  []int // indices into RawTransaction.AccountKeys
	Data      []byte
}

// TokenBalance is a token account balance snapshot.
type TokenBalance struct {
	AccountIndex int
	Mint         string
	Owner        string // empty when the node did not report an owner
	Amount       string // raw integer amount
	Decimals     int
}

// AllInstructions returns top-level instructions followed by inner ones.
func (tx *RawTransaction) AllInstructions() []Instruction {
	all := make([]Instruction, 0, len(tx.Instructions)+len(tx.InnerInstructions))
	all = append(all, tx.Instructions...)
	all = append(all, tx.InnerInstructions...)
	return all
}

// AccountKey returns the key at index i, if present.
func (tx *RawTransaction) AccountKey(i int) (string, bool) {
	if i < 0 || i >= len(tx.AccountKeys) {
		return "", false
	}
	return tx.AccountKeys[i], true
}
