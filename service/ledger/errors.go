package ledger

import (
	"errors"
	"fmt"
)

// Kind classifies caller-visible failures.
type Kind int

const (
	KindUnknown Kind = iota
	KindInput
	KindNotFound
	KindRateLimit
	KindUpstream
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindNotFound:
		return "not_found"
	case KindRateLimit:
		return "rate_limit"
	case KindUpstream:
		return "upstream"
	default:
		return "unknown"
	}
}

// User-facing messages.
const (
	MsgInvalidAddress     = "Please enter a valid Solana address"
	MsgNoTransactions     = "No transactions found for this address"
	MsgNoneInRange        = "No transactions found in the selected date range"
	MsgNoValidTransaction = "No valid transactions found in the selected date range"
	MsgRateLimited        = "Rate limit exceeded. Please try again in a few minutes."
)

// Error is a classified failure. Error() returns only the user-facing
// message; the cause is available through Unwrap for logging.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func inputError(msg string, cause error) *Error {
	return &Error{Kind: KindInput, Message: msg, Err: cause}
}

func notFoundError(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func rateLimitError(cause error) *Error {
	return &Error{Kind: KindRateLimit, Message: MsgRateLimited, Err: cause}
}

func upstreamError(cause error) *Error {
	return &Error{Kind: KindUpstream, Message: fmt.Sprintf("Failed to fetch transactions: %v", cause), Err: cause}
}

// KindOf returns the Kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
