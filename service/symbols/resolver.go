// Package symbols resolves token mints to display tickers.
package symbols

import (
	"context"
	"log/slog"
	"time"

	"github.com/Jeanclaudech98/Sol-txns-exporter/service/cache"
	"github.com/Jeanclaudech98/Sol-txns-exporter/service/metrics"
)

// NativeAsset is the asset tag and ticker of native SOL.
const NativeAsset = "SOL"

// Source looks up the ticker of a token mint.
// An empty symbol with a nil error means the source does not know the mint.
type Source interface {
	LookupSymbol(ctx context.Context, mint string) (string, error)
}

// Resolver memoizes mint to ticker lookups for the life of the process.
type Resolver struct {
	source  Source
	cache   cache.Cache[string]
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewResolver creates a Resolver. If c is nil an in-process cache is used.
// If m is nil, no metrics will be recorded.
func NewResolver(source Source, c cache.Cache[string], m *metrics.Metrics, logger *slog.Logger) *Resolver {
	if c == nil {
		c = cache.NewMemory[string]()
	}
	return &Resolver{source: source, cache: c, metrics: m, logger: logger}
}

// Resolve returns the ticker for asset. It never fails:
//   - "SOL" resolves to itself without a lookup.
//   - an unknown mint resolves to its abbreviated form "abcd...wxyz", which is cached.
//   - a failed lookup resolves to the first 8 characters plus "...", which is not cached.
func (r *Resolver) Resolve(ctx context.Context, asset string) string {
	if asset == NativeAsset {
		return NativeAsset
	}

	symbol, ok, err := r.cache.Get(ctx, asset)
	if err != nil {
		r.logger.WarnContext(ctx, "symbol cache read failed", "mint", asset, "error", err)
	}
	if r.metrics != nil {
		r.metrics.RecordCacheLookup("symbols", ok)
	}
	if ok {
		return symbol
	}

	start := time.Now()
	symbol, err = r.source.LookupSymbol(ctx, asset)
	if r.metrics != nil {
		r.metrics.RecordLookup("symbols", err, time.Since(start).Seconds())
	}
	if err != nil {
		r.logger.WarnContext(ctx, "symbol lookup failed",
			"mint", asset,
			"error", err,
		)
		return truncate(asset)
	}

	if symbol == "" {
		symbol = Abbreviate(asset)
	}
	if err := r.cache.Set(ctx, asset, symbol); err != nil {
		r.logger.WarnContext(ctx, "symbol cache write failed", "mint", asset, "error", err)
	}
	return symbol
}

// Abbreviate renders a mint as its first and last four characters.
func Abbreviate(mint string) string {
	if len(mint) <= 8 {
		return mint
	}
	return mint[:4] + "..." + mint[len(mint)-4:]
}

func truncate(mint string) string {
	if len(mint) <= 8 {
		return mint + "..."
	}
	return mint[:8] + "..."
}
