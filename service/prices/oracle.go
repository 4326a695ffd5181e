// Package prices provides memoized historical USD prices per ticker and day.
package prices

import (
	"context"
	"log/slog"
	"time"

	"github.com/Jeanclaudech98/Sol-txns-exporter/service/cache"
	"github.com/Jeanclaudech98/Sol-txns-exporter/service/metrics"
	"github.com/shopspring/decimal"
)

// DayLayout formats the day component of cache keys.
const DayLayout = "2006-01-02"

// Point is one sample of a price series.
type Point struct {
	Value     decimal.Decimal
	Timestamp time.Time
}

// Source queries a daily USD price series for ticker between start and end.
type Source interface {
	QueryDailySeries(ctx context.Context, ticker string, start, end time.Time) ([]Point, error)
}

// Oracle memoizes prices by (ticker, UTC day).
type Oracle struct {
	source  Source
	cache   cache.Cache[decimal.Decimal]
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewOracle creates an Oracle. If c is nil an in-process cache is used.
func NewOracle(source Source, c cache.Cache[decimal.Decimal], m *metrics.Metrics, logger *slog.Logger) *Oracle {
	if c == nil {
		c = cache.NewMemory[decimal.Decimal]()
	}
	return &Oracle{source: source, cache: c, metrics: m, logger: logger}
}

// CacheKey identifies the price of ticker on the UTC calendar day of at.
func CacheKey(ticker string, at time.Time) string {
	return ticker + ":" + at.UTC().Format(DayLayout)
}

// Price returns the USD price of ticker on the UTC day containing at.
// The series for that day (00:00:00.000 to 23:59:59.999 UTC) is queried and
// the point closest to the day's 00:00 UTC instant wins. Failures and empty
// series yield zero and are not cached; an empty ticker yields zero with no query.
func (o *Oracle) Price(ctx context.Context, ticker string, at time.Time) decimal.Decimal {
	if ticker == "" {
		return decimal.Zero
	}

	key := CacheKey(ticker, at)
	price, ok, err := o.cache.Get(ctx, key)
	if err != nil {
		o.logger.WarnContext(ctx, "price cache read failed", "key", key, "error", err)
	}
	if o.metrics != nil {
		o.metrics.RecordCacheLookup("prices", ok)
	}
	if ok {
		return price
	}

	dayStart, dayEnd := DayBounds(at)

	start := time.Now()
	series, err := o.source.QueryDailySeries(ctx, ticker, dayStart, dayEnd)
	if o.metrics != nil {
		o.metrics.RecordLookup("prices", err, time.Since(start).Seconds())
	}
	if err != nil {
		o.logger.WarnContext(ctx, "price lookup failed",
			"ticker", ticker,
			"day", dayStart.Format(DayLayout),
			"error", err,
		)
		return decimal.Zero
	}
	if len(series) == 0 {
		o.logger.DebugContext(ctx, "no price data", "ticker", ticker, "day", dayStart.Format(DayLayout))
		return decimal.Zero
	}

	price = Closest(series, dayStart).Value
	if err := o.cache.Set(ctx, key, price); err != nil {
		o.logger.WarnContext(ctx, "price cache write failed", "key", key, "error", err)
	}
	return price
}

// DayBounds returns the first and last millisecond of the UTC day containing at.
func DayBounds(at time.Time) (time.Time, time.Time) {
	u := at.UTC()
	start := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.Add(24*time.Hour - time.Millisecond)
}

// Closest returns the point whose timestamp is nearest to ref. Ties keep the
// earlier point in series order. series must not be empty.
func Closest(series []Point, ref time.Time) Point {
	best := series[0]
	bestDist := absDuration(best.Timestamp.Sub(ref))
	for _, p := range series[1:] {
		if d := absDuration(p.Timestamp.Sub(ref)); d < bestDist {
			best, bestDist = p, d
		}
	}
	return best
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
