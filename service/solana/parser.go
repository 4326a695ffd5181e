package solana

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// Well-known Solana program IDs
var (
	// SystemProgramID is the native SOL transfer program
	SystemProgramID = solana.MustPublicKeyFromBase58("11111111111111111111111111111111")

	// TokenProgramID is the SPL Token program
	TokenProgramID = solana.MustPublicKeyFromBase58("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")

	// Token2022ProgramID is the Token Extensions program (Token-2022)
	Token2022ProgramID = solana.MustPublicKeyFromBase58("TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb")
)

// System Program instruction types
const (
	SystemProgramTransferInstruction = uint32(2)
)

// Token Program instruction types
const (
	TokenProgramTransferInstruction        = uint8(3)
	TokenProgramTransferCheckedInstruction = uint8(12)
)

// TransferKind identifies which transfer instruction was decoded.
type TransferKind int

const (
	TransferNative TransferKind = iota + 1
	TransferToken
	TransferTokenChecked
)

// Transfer is a decoded transfer instruction. Source and Destination are
// account indices: wallets for native transfers, token accounts otherwise.
type Transfer struct {
	Kind        TransferKind
	Source      int
	Destination int
	Amount      uint64
}

// IsToken reports whether the transfer moved an SPL token.
func (t Transfer) IsToken() bool {
	return t.Kind == TransferToken || t.Kind == TransferTokenChecked
}

// DecodeTransfer decodes a System or Token program transfer instruction.
// It returns false for any other instruction or for malformed data.
func DecodeTransfer(ix Instruction) (Transfer, bool) {
	switch ix.ProgramID {
	case SystemProgramID.String():
		t, err := decodeSystemTransfer(ix)
		return t, err == nil
	case TokenProgramID.String(), Token2022ProgramID.String():
		t, err := decodeTokenTransfer(ix)
		return t, err == nil
	default:
		return Transfer{}, false
	}
}

// decodeSystemTransfer extracts amount, source and destination from a System Program Transfer.
func decodeSystemTransfer(ix Instruction) (Transfer, error) {
	// System Transfer instruction format:
	// [0..4]  = instruction type (u32, should be 2 for Transfer)
	// [4..12] = lamports (u64)
	if len(ix.Data) < 12 {
		return Transfer{}, fmt.Errorf("instruction data too short: %d bytes", len(ix.Data))
	}

	instructionType := binary.LittleEndian.Uint32(ix.Data[0:4])
	if instructionType != SystemProgramTransferInstruction {
		return Transfer{}, fmt.Errorf("not a transfer instruction: type %d", instructionType)
	}

	// System Transfer accounts: [from, to]
	if len(ix.Accounts) < 2 {
		return Transfer{}, fmt.Errorf("transfer missing accounts")
	}

	return Transfer{
		Kind:        TransferNative,
		Source:      ix.Accounts[0],
		Destination: ix.Accounts[1],
		Amount:      binary.LittleEndian.Uint64(ix.Data[4:12]),
	}, nil
}

// decodeTokenTransfer extracts amount and token accounts from an SPL Token transfer instruction.
func decodeTokenTransfer(ix Instruction) (Transfer, error) {
	if len(ix.Data) == 0 {
		return Transfer{}, fmt.Errorf("empty instruction data")
	}

	switch ix.Data[0] {
	case TokenProgramTransferInstruction:
		// [0] = type (3), [1..9] = amount (u64)
		// accounts: [source, destination, authority]
		if len(ix.Data) < 9 {
			return Transfer{}, fmt.Errorf("transfer instruction data too short")
		}
		if len(ix.Accounts) < 3 {
			return Transfer{}, fmt.Errorf("transfer missing accounts")
		}
		return Transfer{
			Kind:        TransferToken,
			Source:      ix.Accounts[0],
			Destination: ix.Accounts[1],
			Amount:      binary.LittleEndian.Uint64(ix.Data[1:9]),
		}, nil

	case TokenProgramTransferCheckedInstruction:
		// [0] = type (12), [1..9] = amount (u64), [9] = decimals (u8)
		// accounts: [source, mint, destination, authority]
		if len(ix.Data) < 10 {
			return Transfer{}, fmt.Errorf("transferChecked instruction data too short")
		}
		if len(ix.Accounts) < 4 {
			return Transfer{}, fmt.Errorf("transferChecked missing accounts")
		}
		return Transfer{
			Kind:        TransferTokenChecked,
			Source:      ix.Accounts[0],
			Destination: ix.Accounts[2],
			Amount:      binary.LittleEndian.Uint64(ix.Data[1:9]),
		}, nil

	default:
		return Transfer{}, fmt.Errorf("unknown token instruction type: %d", ix.Data[0])
	}
}

// signatureToDomain converts an RPC TransactionSignature to our domain SignatureInfo.
func signatureToDomain(sig *rpc.TransactionSignature) SignatureInfo {
	info := SignatureInfo{
		Signature: sig.Signature.String(),
		Slot:      sig.Slot,
	}

	if sig.BlockTime != nil {
		t := sig.BlockTime.Time().UTC()
		info.BlockTime = &t
	}

	if sig.Err != nil {
		errMsg := fmt.Sprintf("transaction failed: %v", sig.Err)
		info.Err = &errMsg
	}

	return info
}

// rawFromResult converts a full GetTransactionResult into a RawTransaction.
// A result without a transaction body or meta is reported as an error.
func rawFromResult(signature string, result *rpc.GetTransactionResult) (*RawTransaction, error) {
	if result.Transaction == nil {
		return nil, fmt.Errorf("transaction %s: missing transaction body", signature)
	}
	if result.Meta == nil {
		return nil, fmt.Errorf("transaction %s: missing transaction meta", signature)
	}

	tx, err := result.Transaction.GetTransaction()
	if err != nil {
		return nil, fmt.Errorf("failed to decode transaction: %w", err)
	}

	meta := result.Meta
	raw := &RawTransaction{
		Signature:    signature,
		Slot:         result.Slot,
		PreBalances:  meta.PreBalances,
		PostBalances: meta.PostBalances,
	}

	if result.BlockTime != nil {
		t := result.BlockTime.Time().UTC()
		raw.BlockTime = &t
	}

	// Account keys: static keys, then lookup-table loaded addresses
	// (writable before readonly), matching balance index order.
	keys := make([]string, 0, len(tx.Message.AccountKeys)+len(meta.LoadedAddresses.Writable)+len(meta.LoadedAddresses.ReadOnly))
	for _, k := range tx.Message.AccountKeys {
		keys = append(keys, k.String())
	}
	for _, k := range meta.LoadedAddresses.Writable {
		keys = append(keys, k.String())
	}
	for _, k := range meta.LoadedAddresses.ReadOnly {
		keys = append(keys, k.String())
	}
	raw.AccountKeys = keys

	for _, ix := range tx.Message.Instructions {
		raw.Instructions = append(raw.Instructions, resolveInstruction(keys, int(ix.ProgramIDIndex), ix.Accounts, ix.Data))
	}
	for _, inner := range meta.InnerInstructions {
		for _, ix := range inner.Instructions {
			raw.InnerInstructions = append(raw.InnerInstructions, resolveInstruction(keys, int(ix.ProgramIDIndex), ix.Accounts, ix.Data))
		}
	}

	raw.PreTokenBalances = tokenBalancesToDomain(meta.PreTokenBalances)
	raw.PostTokenBalances = tokenBalancesToDomain(meta.PostTokenBalances)

	return raw, nil
}

// resolveInstruction maps a compiled instruction onto the resolved key list.
// An out-of-range program index leaves ProgramID empty so the instruction
// is never mistaken for a transfer.
func resolveInstruction(keys []string, programIndex int, accounts []uint16, data []byte) Instruction {
	ix := Instruction{
		Accounts: make([]int, len(accounts)),
		Data:     data,
	}
	if programIndex >= 0 && programIndex < len(keys) {
		ix.ProgramID = keys[programIndex]
	}
	for i, a := range accounts {
		ix.Accounts[i] = int(a)
	}
	return ix
}

// tokenBalancesToDomain copies token balance snapshots. A missing amount is
// kept as an empty string; the extractor treats it as malformed.
func tokenBalancesToDomain(in []rpc.TokenBalance) []TokenBalance {
	out := make([]TokenBalance, 0, len(in))
	for _, b := range in {
		tb := TokenBalance{
			AccountIndex: int(b.AccountIndex),
			Mint:         b.Mint.String(),
		}
		if b.Owner != nil {
			tb.Owner = b.Owner.String()
		}
		if b.UiTokenAmount != nil {
			tb.Amount = b.UiTokenAmount.Amount
			tb.Decimals = int(b.UiTokenAmount.Decimals)
		}
		out = append(out, tb)
	}
	return out
}
