package app

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Jeanclaudech98/Sol-txns-exporter/service/config"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		SolanaRPCURL:   "https://mainnet.helius-rpc.com/?api-key=secret",
		DexScreenerURL: "https://api.dexscreener.com",
		PriceAPIURL:    "https://api.g.alchemy.com/prices/v1",
		PriceAPIKey:    "k",
		HTTPTimeout:    time.Second,
		MaxSignatures:  100,
		BatchSize:      2,
		BatchDelay:     time.Millisecond,
	}
}

func TestNew_InMemory(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	p, err := New(context.Background(), testConfig(), nil, logger)
	require.NoError(t, err)
	defer p.Close()

	assert.NotNil(t, p.Fetcher)
	assert.Equal(t, time.UTC, p.Fetcher.Location())
	assert.NoError(t, p.Close())
}

func TestNew_WithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.RedisURL = "redis://" + mr.Addr() + "/0"

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	p, err := New(context.Background(), cfg, nil, logger)
	require.NoError(t, err)
	require.NoError(t, p.Close())
}

func TestNew_RedisUnavailable(t *testing.T) {
	cfg := testConfig()
	cfg.RedisURL = "redis://127.0.0.1:1/0"

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	_, err := New(context.Background(), cfg, nil, logger)
	assert.ErrorContains(t, err, "failed to connect to redis")
}

func TestEndpointLabel(t *testing.T) {
	assert.Equal(t, "mainnet.helius-rpc.com", EndpointLabel("https://mainnet.helius-rpc.com/?api-key=secret"))
	assert.Equal(t, "api.mainnet-beta.solana.com", EndpointLabel("https://api.mainnet-beta.solana.com"))
	assert.Equal(t, "unknown", EndpointLabel("not a url"))
}
