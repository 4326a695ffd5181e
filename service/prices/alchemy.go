package prices

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultAlchemyURL is the Alchemy Prices API base.
const DefaultAlchemyURL = "https://api.g.alchemy.com/prices/v1"

// Alchemy queries historical prices from the Alchemy Prices API.
type Alchemy struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewAlchemy creates an Alchemy source.
// If httpClient is nil, http.DefaultClient is used.
func NewAlchemy(baseURL, apiKey string, httpClient *http.Client) *Alchemy {
	if baseURL == "" {
		baseURL = DefaultAlchemyURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Alchemy{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

type historicalRequest struct {
	Symbol    string `json:"symbol"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Interval  string `json:"interval"`
}

type historicalResponse struct {
	Data []struct {
		Value     decimal.Decimal `json:"value"`
		Timestamp time.Time       `json:"timestamp"`
	} `json:"data"`
}

// isoMillis matches JavaScript's Date.toISOString.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// QueryDailySeries posts a 1d-interval historical query for ticker.
func (a *Alchemy) QueryDailySeries(ctx context.Context, ticker string, start, end time.Time) ([]Point, error) {
	body, err := json.Marshal(historicalRequest{
		Symbol:    ticker,
		StartTime: start.UTC().Format(isoMillis),
		EndTime:   end.UTC().Format(isoMillis),
		Interval:  "1d",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/tokens/historical", a.baseURL, a.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("price request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("price api returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var result historicalResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode price response: %w", err)
	}

	points := make([]Point, 0, len(result.Data))
	for _, d := range result.Data {
		points = append(points, Point{Value: d.Value, Timestamp: d.Timestamp})
	}
	return points, nil
}
