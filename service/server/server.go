package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Jeanclaudech98/Sol-txns-exporter/service/ledger"
	"github.com/Jeanclaudech98/Sol-txns-exporter/service/metrics"
	"github.com/Jeanclaudech98/Sol-txns-exporter/service/nats"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// LedgerFetcher builds ledgers on demand.
type LedgerFetcher interface {
	FetchLedger(ctx context.Context, address string, dr ledger.DateRange) ([]ledger.Record, error)
	// Location is the calendar query dates are interpreted in.
	Location() *time.Location
}

// Server represents the HTTP server for the ledger exporter.
type Server struct {
	addr         string
	writeTimeout time.Duration
	fetcher      LedgerFetcher
	publisher    nats.Publisher
	metrics      *metrics.Metrics
	logger       *slog.Logger
	server       *http.Server
	now          func() time.Time
}

// New creates a new HTTP server with the given dependencies.
// The publisher is optional - if nil, no export events are published.
// The metrics is optional - if nil, metrics endpoints won't be available.
func New(addr string, fetcher LedgerFetcher, publisher nats.Publisher, m *metrics.Metrics, logger *slog.Logger) *Server {
	return &Server{
		addr:         addr,
		writeTimeout: 5 * time.Minute,
		fetcher:      fetcher,
		publisher:    publisher,
		metrics:      m,
		logger:       logger,
		now:          time.Now,
	}
}

// WithWriteTimeout sets the response write deadline. A full 1000-signature
// fetch takes minutes, so this must be generous.
func (s *Server) WithWriteTimeout(d time.Duration) *Server {
	if d > 0 {
		s.writeTimeout = d
	}
	return s
}

// Handler returns the routed handler with CORS applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	route := func(pattern, name string, h http.Handler) {
		mux.Handle(pattern, metrics.HTTPMetricsMiddleware(s.metrics, name)(h))
	}

	// Ledger routes
	route("GET /api/v1/ledger/{address}", "/api/v1/ledger/{address}",
		handleGetLedger(s.fetcher, s.publisher, s.logger))
	route("GET /api/v1/ledger/{address}/export", "/api/v1/ledger/{address}/export",
		handleExportLedger(s.fetcher, s.publisher, s.now, s.logger))

	// Health check endpoint
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Prometheus metrics endpoint (if metrics collector is configured)
	if s.metrics != nil {
		mux.Handle("GET /metrics", promhttp.Handler())
	}

	return corsMiddleware(mux)
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	if s.publisher == nil {
		s.logger.Warn("NATS publisher not configured, export events disabled")
	}
	if s.metrics != nil {
		s.logger.Info("Prometheus metrics endpoint enabled")
	}

	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: s.writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting HTTP server", "addr", s.addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")

	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// corsMiddleware adds CORS headers to all responses and handles OPTIONS preflight requests.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Disposition")
		w.Header().Set("Access-Control-Max-Age", "3600")

		// Handle preflight OPTIONS requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
