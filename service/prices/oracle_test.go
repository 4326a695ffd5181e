package prices

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	series []Point
	err    error
	calls  atomic.Int32

	lastStart, lastEnd time.Time
}

func (s *stubSource) QueryDailySeries(_ context.Context, _ string, start, end time.Time) ([]Point, error) {
	s.calls.Add(1)
	s.lastStart, s.lastEnd = start, end
	return s.series, s.err
}

func newTestOracle(source Source) *Oracle {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewOracle(source, nil, nil, logger)
}

func day(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestPrice_ClosestToDayStart(t *testing.T) {
	source := &stubSource{series: []Point{
		{Value: decimal.RequireFromString("99"), Timestamp: day("2024-01-14T12:00:00Z")},
		{Value: decimal.RequireFromString("100"), Timestamp: day("2024-01-15T00:00:00Z")},
		{Value: decimal.RequireFromString("110"), Timestamp: day("2024-01-15T20:00:00Z")},
	}}
	o := newTestOracle(source)

	price := o.Price(context.Background(), "SOL", day("2024-01-15T17:30:00Z"))
	assert.True(t, price.Equal(decimal.NewFromInt(100)), "got %s", price)

	assert.Equal(t, day("2024-01-15T00:00:00Z"), source.lastStart)
	assert.Equal(t, day("2024-01-15T23:59:59.999Z"), source.lastEnd)
}

func TestPrice_MemoizedPerDay(t *testing.T) {
	source := &stubSource{series: []Point{{Value: decimal.NewFromInt(100), Timestamp: day("2024-01-15T00:00:00Z")}}}
	o := newTestOracle(source)
	ctx := context.Background()

	first := o.Price(ctx, "SOL", day("2024-01-15T01:00:00Z"))
	second := o.Price(ctx, "SOL", day("2024-01-15T23:00:00Z"))
	assert.True(t, first.Equal(second))
	assert.Equal(t, int32(1), source.calls.Load())

	// A different day is a different key.
	o.Price(ctx, "SOL", day("2024-01-16T01:00:00Z"))
	assert.Equal(t, int32(2), source.calls.Load())
}

func TestPrice_FailuresAreZeroAndNotCached(t *testing.T) {
	ctx := context.Background()

	t.Run("error", func(t *testing.T) {
		source := &stubSource{err: errors.New("unauthorized")}
		o := newTestOracle(source)

		assert.True(t, o.Price(ctx, "SOL", day("2024-01-15T00:00:00Z")).IsZero())
		assert.True(t, o.Price(ctx, "SOL", day("2024-01-15T00:00:00Z")).IsZero())
		assert.Equal(t, int32(2), source.calls.Load())
	})

	t.Run("empty series", func(t *testing.T) {
		source := &stubSource{}
		o := newTestOracle(source)

		assert.True(t, o.Price(ctx, "BONK", day("2024-01-15T00:00:00Z")).IsZero())
		assert.True(t, o.Price(ctx, "BONK", day("2024-01-15T00:00:00Z")).IsZero())
		assert.Equal(t, int32(2), source.calls.Load())
	})

	t.Run("empty ticker", func(t *testing.T) {
		source := &stubSource{}
		o := newTestOracle(source)

		assert.True(t, o.Price(ctx, "", day("2024-01-15T00:00:00Z")).IsZero())
		assert.Equal(t, int32(0), source.calls.Load())
	})
}

func TestCacheKey(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	// 2024-01-16 05:00 local is still the 15th in UTC.
	assert.Equal(t, "SOL:2024-01-15", CacheKey("SOL", time.Date(2024, 1, 16, 5, 0, 0, 0, loc)))
}

func TestClosest_TieKeepsFirst(t *testing.T) {
	ref := day("2024-01-15T00:00:00Z")
	p := Closest([]Point{
		{Value: decimal.NewFromInt(1), Timestamp: ref.Add(-time.Hour)},
		{Value: decimal.NewFromInt(2), Timestamp: ref.Add(time.Hour)},
	}, ref)
	assert.True(t, p.Value.Equal(decimal.NewFromInt(1)))
}

func TestAlchemy_QueryDailySeries(t *testing.T) {
	var got historicalRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/test-key/tokens/historical", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		_, _ = w.Write([]byte(`{"symbol":"SOL","currency":"usd","data":[
			{"value":"101.2345","timestamp":"2024-01-15T00:00:00Z"},
			{"value":98.5,"timestamp":"2024-01-16T00:00:00Z"}
		]}`))
	}))
	defer server.Close()

	a := NewAlchemy(server.URL, "test-key", server.Client())
	start, end := DayBounds(day("2024-01-15T09:00:00Z"))

	points, err := a.QueryDailySeries(context.Background(), "SOL", start, end)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.True(t, points[0].Value.Equal(decimal.RequireFromString("101.2345")))
	assert.True(t, points[1].Value.Equal(decimal.RequireFromString("98.5")))
	assert.Equal(t, day("2024-01-15T00:00:00Z"), points[0].Timestamp)

	assert.Equal(t, historicalRequest{
		Symbol:    "SOL",
		StartTime: "2024-01-15T00:00:00.000Z",
		EndTime:   "2024-01-15T23:59:59.999Z",
		Interval:  "1d",
	}, got)
}

func TestAlchemy_Errors(t *testing.T) {
	t.Run("bad status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"invalid api key"}`, http.StatusUnauthorized)
		}))
		defer server.Close()

		_, err := NewAlchemy(server.URL, "bad", nil).QueryDailySeries(context.Background(), "SOL", time.Now(), time.Now())
		assert.ErrorContains(t, err, "status 401")
	})

	t.Run("unparseable value", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"data":[{"value":"n/a","timestamp":"2024-01-15T00:00:00Z"}]}`))
		}))
		defer server.Close()

		_, err := NewAlchemy(server.URL, "k", nil).QueryDailySeries(context.Background(), "SOL", time.Now(), time.Now())
		assert.ErrorContains(t, err, "decode")
	})
}

func TestOracle_WithAlchemy(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"data":[{"value":"100","timestamp":"2024-01-15T00:00:00Z"}]}`))
	}))
	defer server.Close()

	o := newTestOracle(NewAlchemy(server.URL, "k", server.Client()))
	ctx := context.Background()

	assert.Equal(t, "100", o.Price(ctx, "SOL", day("2024-01-15T10:00:00Z")).String())
	assert.Equal(t, "100", o.Price(ctx, "SOL", day("2024-01-15T11:00:00Z")).String())
	assert.Equal(t, int32(1), calls.Load())
}
