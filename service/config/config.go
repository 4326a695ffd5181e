package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Jeanclaudech98/Sol-txns-exporter/service/ledger"
	"github.com/Jeanclaudech98/Sol-txns-exporter/service/solana"
	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
// All required fields are validated at startup to ensure fail-fast behavior.
type Config struct {
	// Server configuration
	ServerAddr         string
	ServerWriteTimeout time.Duration
	LogLevel           string

	// Solana configuration
	SolanaRPCURL string

	// Lookup services
	DexScreenerURL string
	PriceAPIURL    string
	PriceAPIKey    string
	HTTPTimeout    time.Duration

	// Shared cache tier, optional
	RedisURL string
	CacheTTL time.Duration

	// NATS configuration, optional
	NATSURL string

	// Ledger tunables
	MaxSignatures  int
	BatchSize      int
	BatchDelay     time.Duration
	LedgerTimezone string
	LedgerLocation *time.Location
}

// Load reads configuration from environment variables and validates all required fields.
// Variables from a .env file in the working directory are loaded first when present;
// variables already set in the environment take precedence.
// Returns an error if any required configuration is missing or invalid.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	cfg := &Config{}
	var errs []error

	// Server configuration
	cfg.ServerAddr = getEnvOrDefault("SERVER_ADDR", ":8080")
	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", "info")
	if d, err := parseDuration("SERVER_WRITE_TIMEOUT", "5m"); err != nil {
		errs = append(errs, err)
	} else {
		cfg.ServerWriteTimeout = d
	}

	// Solana configuration
	cfg.SolanaRPCURL = os.Getenv("SOLANA_RPC_URL")
	if cfg.SolanaRPCURL == "" {
		errs = append(errs, fmt.Errorf("SOLANA_RPC_URL is required"))
	}

	// Lookup services
	cfg.DexScreenerURL = getEnvOrDefault("DEXSCREENER_URL", "https://api.dexscreener.com")
	cfg.PriceAPIURL = getEnvOrDefault("PRICE_API_URL", "https://api.g.alchemy.com/prices/v1")
	cfg.PriceAPIKey = os.Getenv("PRICE_API_KEY")
	if cfg.PriceAPIKey == "" {
		errs = append(errs, fmt.Errorf("PRICE_API_KEY is required"))
	}
	if d, err := parseDuration("HTTP_TIMEOUT", "30s"); err != nil {
		errs = append(errs, err)
	} else {
		cfg.HTTPTimeout = d
	}

	// Cache and events
	cfg.RedisURL = os.Getenv("REDIS_URL")
	if d, err := parseDuration("CACHE_TTL", "0s"); err != nil {
		errs = append(errs, err)
	} else {
		cfg.CacheTTL = d
	}
	cfg.NATSURL = os.Getenv("NATS_URL")

	// Ledger tunables
	if n, err := parseInt("MAX_SIGNATURES", solana.MaxSignaturesPerCall); err != nil {
		errs = append(errs, err)
	} else {
		cfg.MaxSignatures = n
	}
	if n, err := parseInt("BATCH_SIZE", 3); err != nil {
		errs = append(errs, err)
	} else {
		cfg.BatchSize = n
	}
	if d, err := parseDuration("BATCH_DELAY", "500ms"); err != nil {
		errs = append(errs, err)
	} else {
		cfg.BatchDelay = d
	}
	cfg.LedgerTimezone = getEnvOrDefault("LEDGER_TIMEZONE", "UTC")
	if loc, err := time.LoadLocation(cfg.LedgerTimezone); err != nil {
		errs = append(errs, fmt.Errorf("LEDGER_TIMEZONE: unknown location %q: %w", cfg.LedgerTimezone, err))
	} else {
		cfg.LedgerLocation = loc
	}

	if err := cfg.validateRanges(); err != nil {
		errs = append(errs, err)
	}

	// Return all validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %v", errs)
	}

	return cfg, nil
}

// MustLoad is like Load but panics if configuration is invalid.
// Useful for server initialization where misconfiguration should halt startup.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

// Validate checks if the configuration is valid.
// This is useful for testing configuration without loading from env.
func (c *Config) Validate() error {
	var errs []error

	if c.SolanaRPCURL == "" {
		errs = append(errs, fmt.Errorf("SolanaRPCURL is required"))
	}

	if c.PriceAPIKey == "" {
		errs = append(errs, fmt.Errorf("PriceAPIKey is required"))
	}

	if c.DexScreenerURL == "" {
		errs = append(errs, fmt.Errorf("DexScreenerURL is required"))
	}

	if c.PriceAPIURL == "" {
		errs = append(errs, fmt.Errorf("PriceAPIURL is required"))
	}

	if err := c.validateRanges(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errs)
	}

	return nil
}

func (c *Config) validateRanges() error {
	var errs []error

	if c.MaxSignatures < 1 || c.MaxSignatures > solana.MaxSignaturesPerCall {
		errs = append(errs, fmt.Errorf("MAX_SIGNATURES must be between 1 and %d, got %d", solana.MaxSignaturesPerCall, c.MaxSignatures))
	}

	if c.BatchSize < 1 {
		errs = append(errs, fmt.Errorf("BATCH_SIZE must be at least 1, got %d", c.BatchSize))
	}

	if c.BatchDelay < 0 {
		errs = append(errs, fmt.Errorf("BATCH_DELAY cannot be negative"))
	}

	if c.CacheTTL < 0 {
		errs = append(errs, fmt.Errorf("CACHE_TTL cannot be negative"))
	}

	if c.HTTPTimeout <= 0 {
		errs = append(errs, fmt.Errorf("HTTP_TIMEOUT must be positive"))
	}

	return errors.Join(errs...)
}

// LedgerOptions returns the fetcher tunables.
func (c *Config) LedgerOptions() ledger.Options {
	loc := c.LedgerLocation
	if loc == nil {
		loc = time.UTC
	}
	return ledger.Options{
		MaxSignatures: c.MaxSignatures,
		BatchSize:     c.BatchSize,
		BatchDelay:    c.BatchDelay,
		Location:      loc,
	}
}

// SlogLevel maps LogLevel to a slog level. Unknown values are info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// getEnvOrDefault returns the environment variable value or a default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseDuration parses a duration from an environment variable or uses a default.
func parseDuration(key, defaultValue string) (time.Duration, error) {
	value := getEnvOrDefault(key, defaultValue)
	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", key, value, err)
	}
	return duration, nil
}

// parseInt parses an integer from an environment variable or uses a default.
func parseInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q: %w", key, value, err)
	}
	return result, nil
}
