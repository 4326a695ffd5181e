// Package app assembles the ledger pipeline from configuration.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"

	"github.com/Jeanclaudech98/Sol-txns-exporter/service/cache"
	"github.com/Jeanclaudech98/Sol-txns-exporter/service/config"
	"github.com/Jeanclaudech98/Sol-txns-exporter/service/ledger"
	"github.com/Jeanclaudech98/Sol-txns-exporter/service/metrics"
	"github.com/Jeanclaudech98/Sol-txns-exporter/service/prices"
	"github.com/Jeanclaudech98/Sol-txns-exporter/service/solana"
	"github.com/Jeanclaudech98/Sol-txns-exporter/service/symbols"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// Redis key prefixes of the shared cache tier.
const (
	SymbolKeyPrefix = "symbols:"
	PriceKeyPrefix  = "prices:"
)

// Pipeline holds the wired components of one process.
type Pipeline struct {
	Solana  *solana.Client
	Symbols *symbols.Resolver
	Prices  *prices.Oracle
	Fetcher *ledger.Fetcher

	redis *redis.Client
}

// New wires the pipeline described by cfg. When cfg.RedisURL is set, symbol
// and price memos are shared through Redis behind the in-process tier.
// If m is nil, no metrics will be recorded.
func New(ctx context.Context, cfg *config.Config, m *metrics.Metrics, logger *slog.Logger) (*Pipeline, error) {
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	symbolCache := cache.Cache[string](cache.NewMemory[string]())
	priceCache := cache.Cache[decimal.Decimal](cache.NewMemory[decimal.Decimal]())

	p := &Pipeline{}
	if cfg.RedisURL != "" {
		client, err := cache.Dial(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		p.redis = client
		symbolCache = cache.NewTiered[string](logger, symbolCache, cache.NewRedis[string](client, SymbolKeyPrefix, cfg.CacheTTL))
		priceCache = cache.NewTiered[decimal.Decimal](logger, priceCache, cache.NewRedis[decimal.Decimal](client, PriceKeyPrefix, cfg.CacheTTL))
		logger.Info("shared cache tier enabled", "ttl", cfg.CacheTTL)
	}

	p.Solana = solana.NewClient(solana.NewRPCClient(cfg.SolanaRPCURL), EndpointLabel(cfg.SolanaRPCURL), m, logger)
	p.Symbols = symbols.NewResolver(symbols.NewDexScreener(cfg.DexScreenerURL, httpClient), symbolCache, m, logger)
	p.Prices = prices.NewOracle(prices.NewAlchemy(cfg.PriceAPIURL, cfg.PriceAPIKey, httpClient), priceCache, m, logger)
	p.Fetcher = ledger.NewFetcher(p.Solana, p.Symbols, p.Prices, cfg.LedgerOptions(), m, logger)

	return p, nil
}

// Close releases the shared cache connection, if any.
func (p *Pipeline) Close() error {
	if p.redis != nil {
		return p.redis.Close()
	}
	return nil
}

// EndpointLabel reduces an RPC URL to its host so API keys in paths or
// queries never reach metric labels or logs.
func EndpointLabel(rpcURL string) string {
	u, err := url.Parse(rpcURL)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	return u.Host
}

// NewLogger creates the JSON logger used by all binaries.
func NewLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
