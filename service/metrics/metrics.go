package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors for the application.
// Following the explicit dependency injection pattern, this struct
// is passed to all components that need to record metrics.
type Metrics struct {
	// Solana RPC Metrics
	solanaRPCCallsTotal        *prometheus.CounterVec
	solanaRPCCallDuration      *prometheus.HistogramVec
	solanaRPCRateLimitHits     *prometheus.CounterVec
	solanaRPCSignaturesPerCall *prometheus.HistogramVec
	transactionsParsedTotal    *prometheus.CounterVec

	// Ledger Metrics
	ledgerFetchDuration     *prometheus.HistogramVec
	ledgerFetchesTotal      *prometheus.CounterVec
	ledgerLegsExtracted     *prometheus.CounterVec
	ledgerLegsDeduplicated  prometheus.Counter
	ledgerRecordsProduced   prometheus.Counter
	ledgerBatchesProcessed  prometheus.Counter
	ledgerSignaturesInRange prometheus.Histogram

	// Lookup Metrics (symbol and price sources)
	lookupCallsTotal   *prometheus.CounterVec
	lookupCallDuration *prometheus.HistogramVec
	cacheLookupsTotal  *prometheus.CounterVec

	// HTTP Metrics
	httpRequestDuration *prometheus.HistogramVec
	httpRequestsTotal   *prometheus.CounterVec

	// NATS Metrics
	natsMessagesPublished *prometheus.CounterVec
	natsPublishDuration   *prometheus.HistogramVec
}

// NewMetrics creates a new Metrics instance and registers all collectors.
// If registry is nil, prometheus.DefaultRegisterer is used.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	factory := promauto.With(registry)

	return &Metrics{
		// Solana RPC Metrics
		solanaRPCCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "solana_rpc_calls_total",
				Help: "Total number of Solana RPC calls by method and status",
			},
			[]string{"method", "status", "endpoint"},
		),
		solanaRPCCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "solana_rpc_call_duration_seconds",
				Help:    "Duration of Solana RPC calls in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"method", "endpoint"},
		),
		solanaRPCRateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "solana_rpc_rate_limit_hits_total",
				Help: "Total number of Solana RPC rate limit hits (429 errors)",
			},
			[]string{"endpoint"},
		),
		solanaRPCSignaturesPerCall: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "solana_rpc_signatures_per_call",
				Help:    "Number of signatures fetched per GetSignaturesForAddress call",
				Buckets: []float64{1, 10, 50, 100, 250, 500, 1000},
			},
			[]string{"endpoint"},
		),
		transactionsParsedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transactions_parsed_total",
				Help: "Total number of transactions converted from RPC responses",
			},
			[]string{"status"},
		),

		// Ledger Metrics
		ledgerFetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ledger_fetch_duration_seconds",
				Help:    "Duration of a full ledger fetch in seconds",
				Buckets: []float64{0.5, 1, 5, 10, 30, 60, 120, 300},
			},
			[]string{"status"},
		),
		ledgerFetchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_fetches_total",
				Help: "Total number of ledger fetches by outcome kind",
			},
			[]string{"status"},
		),
		ledgerLegsExtracted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_legs_extracted_total",
				Help: "Total number of balance-change legs extracted",
			},
			[]string{"asset"},
		),
		ledgerLegsDeduplicated: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "ledger_legs_deduplicated_total",
				Help: "Total number of legs dropped as duplicates within a fetch",
			},
		),
		ledgerRecordsProduced: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "ledger_records_produced_total",
				Help: "Total number of ledger records produced",
			},
		),
		ledgerBatchesProcessed: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "ledger_batches_processed_total",
				Help: "Total number of signature batches processed",
			},
		),
		ledgerSignaturesInRange: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ledger_signatures_in_range",
				Help:    "Number of signatures inside the requested date range per fetch",
				Buckets: []float64{0, 1, 10, 50, 100, 250, 500, 1000},
			},
		),

		// Lookup Metrics
		lookupCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lookup_calls_total",
				Help: "Total number of external symbol and price lookups",
			},
			[]string{"source", "status"},
		),
		lookupCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lookup_call_duration_seconds",
				Help:    "Duration of external symbol and price lookups in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
			},
			[]string{"source"},
		),
		cacheLookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_lookups_total",
				Help: "Total number of cache lookups by cache and result",
			},
			[]string{"cache", "result"},
		),

		// HTTP Metrics
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 30.0, 120.0},
			},
			[]string{"handler", "method", "status"},
		),
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"handler", "method", "status"},
		),

		// NATS Metrics
		natsMessagesPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nats_messages_published_total",
				Help: "Total number of NATS messages published",
			},
			[]string{"subject", "status"},
		),
		natsPublishDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "nats_publish_duration_seconds",
				Help:    "Duration of NATS publish operations in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
			},
			[]string{"subject"},
		),
	}
}

// Solana RPC metric helpers

// RecordRPCCall records a Solana RPC call with duration.
func (m *Metrics) RecordRPCCall(method, status, endpoint string, duration float64) {
	m.solanaRPCCallsTotal.WithLabelValues(method, status, endpoint).Inc()
	m.solanaRPCCallDuration.WithLabelValues(method, endpoint).Observe(duration)
}

// RecordRateLimitHit records a rate limit hit (429 error).
func (m *Metrics) RecordRateLimitHit(endpoint string) {
	m.solanaRPCRateLimitHits.WithLabelValues(endpoint).Inc()
}

// RecordRPCSignaturesPerCall records the number of signatures fetched.
func (m *Metrics) RecordRPCSignaturesPerCall(endpoint string, count float64) {
	m.solanaRPCSignaturesPerCall.WithLabelValues(endpoint).Observe(count)
}

// RecordTransactionParsed records a transaction conversion attempt.
func (m *Metrics) RecordTransactionParsed(status string) {
	m.transactionsParsedTotal.WithLabelValues(status).Inc()
}

// Ledger metric helpers

// RecordLedgerFetch records a completed ledger fetch.
// status is "success" or the error kind that ended the fetch.
func (m *Metrics) RecordLedgerFetch(status string, duration float64) {
	m.ledgerFetchDuration.WithLabelValues(status).Observe(duration)
	m.ledgerFetchesTotal.WithLabelValues(status).Inc()
}

// RecordLegsExtracted records legs extracted for an asset class ("native" or "token").
func (m *Metrics) RecordLegsExtracted(asset string, count int) {
	m.ledgerLegsExtracted.WithLabelValues(asset).Add(float64(count))
}

// RecordLegDeduplicated records a leg dropped as a duplicate.
func (m *Metrics) RecordLegDeduplicated() {
	m.ledgerLegsDeduplicated.Inc()
}

// RecordRecordsProduced records ledger records emitted by a fetch.
func (m *Metrics) RecordRecordsProduced(count int) {
	m.ledgerRecordsProduced.Add(float64(count))
}

// RecordBatchProcessed records one processed signature batch.
func (m *Metrics) RecordBatchProcessed() {
	m.ledgerBatchesProcessed.Inc()
}

// RecordSignaturesInRange records how many signatures survived the date filter.
func (m *Metrics) RecordSignaturesInRange(count int) {
	m.ledgerSignaturesInRange.Observe(float64(count))
}

// Lookup metric helpers

// RecordLookup records an external symbol or price lookup.
func (m *Metrics) RecordLookup(source string, err error, duration float64) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.lookupCallsTotal.WithLabelValues(source, status).Inc()
	m.lookupCallDuration.WithLabelValues(source).Observe(duration)
}

// RecordCacheLookup records a cache hit or miss for the named cache.
func (m *Metrics) RecordCacheLookup(cache string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookupsTotal.WithLabelValues(cache, result).Inc()
}

// HTTP metric helpers

// RecordHTTPRequest records an HTTP request with duration.
func (m *Metrics) RecordHTTPRequest(handler, method string, statusCode int, duration float64) {
	status := statusCodeToString(statusCode)
	m.httpRequestDuration.WithLabelValues(handler, method, status).Observe(duration)
	m.httpRequestsTotal.WithLabelValues(handler, method, status).Inc()
}

// NATS metric helpers

// RecordNATSPublish records a NATS publish operation.
func (m *Metrics) RecordNATSPublish(subject, status string, duration float64) {
	m.natsMessagesPublished.WithLabelValues(subject, status).Inc()
	m.natsPublishDuration.WithLabelValues(subject).Observe(duration)
}

// Helper functions

func statusCodeToString(code int) string {
	// Group status codes by class
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500 && code < 600:
		return "5xx"
	default:
		return "unknown"
	}
}
