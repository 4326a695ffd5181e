package ledger

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Jeanclaudech98/Sol-txns-exporter/service/metrics"
	"github.com/Jeanclaudech98/Sol-txns-exporter/service/solana"
	"github.com/google/uuid"
)

// TransactionSource is the ledger-query service.
type TransactionSource interface {
	ListSignatures(ctx context.Context, address string, max int) ([]solana.SignatureInfo, error)
	// GetTransaction returns nil, nil when no body exists for signature.
	GetTransaction(ctx context.Context, signature string) (*solana.RawTransaction, error)
}

// Options tunes a Fetcher.
type Options struct {
	MaxSignatures int            // most recent signatures considered, 1..1000
	BatchSize     int            // concurrent body fetches per batch
	BatchDelay    time.Duration  // pause between batches
	Location      *time.Location // calendar used for date filtering and record dates
}

// DefaultOptions returns the standard tunables.
func DefaultOptions() Options {
	return Options{
		MaxSignatures: 1000,
		BatchSize:     3,
		BatchDelay:    500 * time.Millisecond,
		Location:      time.UTC,
	}
}

// Fetcher assembles priced, described, de-duplicated ledgers.
type Fetcher struct {
	source    TransactionSource
	extractor *Extractor
	pricer    *Pricer
	scheduler *BatchScheduler
	opts      Options
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewFetcher creates a Fetcher. An out-of-range MaxSignatures, a non-positive
// BatchSize and a nil Location fall back to DefaultOptions.
// If m is nil, no metrics will be recorded.
func NewFetcher(
	source TransactionSource,
	symbols SymbolResolver,
	oracle PriceOracle,
	opts Options,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Fetcher {
	def := DefaultOptions()
	if opts.MaxSignatures <= 0 || opts.MaxSignatures > solana.MaxSignaturesPerCall {
		opts.MaxSignatures = def.MaxSignatures
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = def.BatchSize
	}
	if opts.BatchDelay < 0 {
		opts.BatchDelay = 0
	}
	if opts.Location == nil {
		opts.Location = def.Location
	}

	f := &Fetcher{
		source:    source,
		extractor: NewExtractor(symbols, logger),
		pricer:    NewPricer(oracle),
		opts:      opts,
		metrics:   m,
		logger:    logger,
	}
	f.scheduler = &BatchScheduler{
		Size:  opts.BatchSize,
		Delay: opts.BatchDelay,
		AfterBatch: func(int, int) {
			if f.metrics != nil {
				f.metrics.RecordBatchProcessed()
			}
		},
	}
	return f
}

// Location returns the calendar used for dates.
func (f *Fetcher) Location() *time.Location {
	return f.opts.Location
}

// Fetch parses start and end (YYYY-MM-DD) in the fetcher's location and runs FetchLedger.
func (f *Fetcher) Fetch(ctx context.Context, address, start, end string) ([]Record, error) {
	dr, err := ParseDateRange(start, end, f.opts.Location)
	if err != nil {
		return nil, err
	}
	return f.FetchLedger(ctx, address, dr)
}

// FetchLedger returns the non-empty ledger of address within dr, newest day first.
// Failures are *Error values carrying a user-facing message.
func (f *Fetcher) FetchLedger(ctx context.Context, address string, dr DateRange) ([]Record, error) {
	logger := f.logger.With("run_id", uuid.NewString(), "address", address)
	started := time.Now()

	records, err := f.fetch(ctx, logger, address, dr)

	status := "success"
	if err != nil {
		status = KindOf(err).String()
		logger.WarnContext(ctx, "ledger fetch failed",
			"kind", status,
			"error", err,
			"cause", errorCause(err),
		)
	} else {
		logger.InfoContext(ctx, "ledger fetch complete",
			"records", len(records),
			"duration", time.Since(started),
		)
	}
	if f.metrics != nil {
		f.metrics.RecordLedgerFetch(status, time.Since(started).Seconds())
	}
	return records, err
}

func (f *Fetcher) fetch(ctx context.Context, logger *slog.Logger, address string, dr DateRange) ([]Record, error) {
	if err := solana.ValidateAddress(address); err != nil {
		return nil, inputError(MsgInvalidAddress, err)
	}

	logger.DebugContext(ctx, "fetching signatures", "max", f.opts.MaxSignatures)
	signatures, err := f.source.ListSignatures(ctx, address, f.opts.MaxSignatures)
	if err != nil {
		if solana.IsRateLimited(err) {
			return nil, rateLimitError(err)
		}
		return nil, upstreamError(err)
	}
	if len(signatures) == 0 {
		return nil, notFoundError(MsgNoTransactions)
	}

	inRange := make([]solana.SignatureInfo, 0, len(signatures))
	for _, sig := range signatures {
		if sig.BlockTime != nil && dr.Contains(*sig.BlockTime) {
			inRange = append(inRange, sig)
		}
	}
	if f.metrics != nil {
		f.metrics.RecordSignaturesInRange(len(inRange))
	}
	if len(inRange) == 0 {
		return nil, notFoundError(MsgNoneInRange)
	}

	logger.InfoContext(ctx, "fetching transaction bodies",
		"signatures", len(signatures),
		"in_range", len(inRange),
		"batch_size", f.opts.BatchSize,
	)

	run := &fetchRun{
		fetcher: f,
		logger:  logger,
		address: address,
		seen:    make(map[DedupKey]struct{}),
		results: make([][]Record, len(inRange)),
	}
	err = f.scheduler.Run(ctx, len(inRange), func(ctx context.Context, i int) error {
		run.results[i] = run.process(ctx, inRange[i])
		return nil
	})
	if err != nil {
		return nil, upstreamError(err)
	}

	var records []Record
	for _, rs := range run.results {
		for _, r := range rs {
			if r.OriginalAmount.Abs().IsPositive() {
				records = append(records, r)
			}
		}
	}
	if len(records) == 0 {
		return nil, notFoundError(MsgNoValidTransaction)
	}

	SortByDateDesc(records)
	if f.metrics != nil {
		f.metrics.RecordRecordsProduced(len(records))
	}
	return records, nil
}

// fetchRun is the state shared by the batch members of one fetch.
type fetchRun struct {
	fetcher *Fetcher
	logger  *slog.Logger
	address string

	mu   sync.Mutex
	seen map[DedupKey]struct{}

	results [][]Record // one slot per in-range signature
}

// process builds the records of one signature. Failures are logged and
// contribute nothing.
func (r *fetchRun) process(ctx context.Context, sig solana.SignatureInfo) []Record {
	f := r.fetcher

	tx, err := f.source.GetTransaction(ctx, sig.Signature)
	if err != nil {
		r.logger.WarnContext(ctx, "failed to fetch transaction",
			"signature", sig.Signature,
			"operation", "get_transaction",
			"error", err,
		)
		return nil
	}
	if tx == nil {
		r.logger.DebugContext(ctx, "transaction body not available", "signature", sig.Signature)
		return nil
	}

	legs := f.extractor.Extract(ctx, tx, r.address)
	if len(legs) == 0 {
		return nil
	}

	date := dayOf(*sig.BlockTime, f.opts.Location)
	records := make([]Record, 0, len(legs))
	for _, leg := range legs {
		rec := Record{
			Date:             date,
			Year:             date.Year(),
			Month:            int(date.Month()),
			OriginalAmount:   leg.Amount,
			OriginalCurrency: leg.Ticker,
			Direction:        leg.Direction,
			TransactionHash:  sig.Signature,
			Chain:            Chain,
			WalletAddress:    r.address,
			Asset:            leg.Asset,
		}
		if !r.markSeen(rec.Key()) {
			if f.metrics != nil {
				f.metrics.RecordLegDeduplicated()
			}
			continue
		}
		if f.metrics != nil {
			asset := "token"
			if leg.IsNative() {
				asset = "native"
			}
			f.metrics.RecordLegsExtracted(asset, 1)
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil
	}

	description := Describe(records, tx, r.address)
	for i := range records {
		records[i].Description = description
	}
	f.pricer.Price(ctx, records)
	return records
}

// markSeen records key and reports whether it was new.
func (r *fetchRun) markSeen(key DedupKey) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.seen[key]; ok {
		return false
	}
	r.seen[key] = struct{}{}
	return true
}

// SortByDateDesc orders records newest day first. Records of the same day
// keep their relative order.
func SortByDateDesc(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.After(records[j].Date)
	})
}

func errorCause(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Err != nil {
		return e.Err.Error()
	}
	return ""
}
