package solana

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Jeanclaudech98/Sol-txns-exporter/service/metrics"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// MaxSignaturesPerCall is the largest page getSignaturesForAddress accepts.
const MaxSignaturesPerCall = 1000

// RPCClient is an interface for the Solana RPC operations we need.
// This allows us to mock the RPC layer in tests without hitting real Solana nodes.
type RPCClient interface {
	GetSignaturesForAddress(
		ctx context.Context,
		address solana.PublicKey,
		opts *rpc.GetSignaturesForAddressOpts,
	) ([]*rpc.TransactionSignature, error)
	GetTransaction(
		ctx context.Context,
		signature solana.Signature,
		opts *rpc.GetTransactionOpts,
	) (*rpc.GetTransactionResult, error)
}

// Client provides the ledger-query operations over a Solana RPC node.
type Client struct {
	rpc      RPCClient
	logger   *slog.Logger
	metrics  *metrics.Metrics
	endpoint string // RPC endpoint identifier for metrics (e.g., "mainnet", rpc host)
}

// NewClient creates a new Solana client.
// The endpoint parameter is used for metrics labeling.
// If metrics is nil, no metrics will be recorded.
func NewClient(rpcClient RPCClient, endpoint string, m *metrics.Metrics, logger *slog.Logger) *Client {
	return &Client{
		rpc:      rpcClient,
		logger:   logger,
		metrics:  m,
		endpoint: endpoint,
	}
}

// ValidateAddress checks that address is a base58 encoded 32 byte public key.
func ValidateAddress(address string) error {
	if strings.TrimSpace(address) == "" {
		return fmt.Errorf("address is required")
	}
	if _, err := solana.PublicKeyFromBase58(address); err != nil {
		return fmt.Errorf("invalid address %q: %w", address, err)
	}
	return nil
}

// IsRateLimited reports whether err carries a throttling signal from the node.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(strings.ToLower(msg), "too many requests")
}

// ListSignatures returns up to limit of the most recent signatures for address,
// newest first.
func (c *Client) ListSignatures(ctx context.Context, address string, limit int) ([]SignatureInfo, error) {
	wallet, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return nil, fmt.Errorf("invalid address %q: %w", address, err)
	}
	if limit <= 0 || limit > MaxSignaturesPerCall {
		limit = MaxSignaturesPerCall
	}

	opts := &rpc.GetSignaturesForAddressOpts{
		Limit:      &limit,
		Commitment: rpc.CommitmentConfirmed,
	}

	c.logger.DebugContext(ctx, "calling GetSignaturesForAddress",
		"wallet", address,
		"limit", limit,
	)

	start := time.Now()
	signatures, err := c.rpc.GetSignaturesForAddress(ctx, wallet, opts)
	c.recordCall(ctx, "GetSignaturesForAddress", start, err)
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to get signatures",
			"wallet", address,
			"error", err,
		)
		return nil, fmt.Errorf("get signatures for %s: %w", address, err)
	}
	if c.metrics != nil {
		c.metrics.RecordRPCSignaturesPerCall(c.endpoint, float64(len(signatures)))
	}

	c.logger.DebugContext(ctx, "fetched transaction signatures",
		"wallet", address,
		"count", len(signatures),
	)

	out := make([]SignatureInfo, 0, len(signatures))
	for _, sig := range signatures {
		if sig == nil {
			continue
		}
		out = append(out, signatureToDomain(sig))
	}
	return out, nil
}

// GetTransaction fetches and converts the confirmed transaction for signature.
// It returns nil, nil when the node has no body for the signature.
func (c *Client) GetTransaction(ctx context.Context, signature string) (*RawTransaction, error) {
	sig, err := solana.SignatureFromBase58(signature)
	if err != nil {
		return nil, fmt.Errorf("invalid signature %q: %w", signature, err)
	}

	opts := &rpc.GetTransactionOpts{
		Encoding:                       solana.EncodingBase64,
		Commitment:                     rpc.CommitmentConfirmed,
		MaxSupportedTransactionVersion: &[]uint64{0}[0],
	}

	start := time.Now()
	result, err := c.rpc.GetTransaction(ctx, sig, opts)
	if errors.Is(err, rpc.ErrNotFound) {
		c.recordCall(ctx, "GetTransaction", start, nil)
		return nil, nil
	}
	c.recordCall(ctx, "GetTransaction", start, err)
	if err != nil {
		return nil, fmt.Errorf("get transaction %s: %w", signature, err)
	}
	if result == nil {
		return nil, nil
	}

	raw, err := rawFromResult(signature, result)
	if err != nil {
		if c.metrics != nil {
			c.metrics.RecordTransactionParsed("error")
		}
		return nil, err
	}
	if c.metrics != nil {
		c.metrics.RecordTransactionParsed("success")
	}
	return raw, nil
}

func (c *Client) recordCall(ctx context.Context, method string, start time.Time, err error) {
	limited := IsRateLimited(err)
	if limited {
		c.logger.WarnContext(ctx, "rate limited by RPC node", "method", method, "endpoint", c.endpoint)
	}
	if c.metrics == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	c.metrics.RecordRPCCall(method, status, c.endpoint, time.Since(start).Seconds())
	if limited {
		c.metrics.RecordRateLimitHit(c.endpoint)
	}
}
