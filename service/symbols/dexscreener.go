package symbols

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// DefaultDexScreenerURL is the public DexScreener API.
const DefaultDexScreenerURL = "https://api.dexscreener.com"

// DexScreener looks up tickers through the DexScreener pair search API.
type DexScreener struct {
	baseURL    string
	httpClient *http.Client
}

// NewDexScreener creates a DexScreener source.
// If httpClient is nil, http.DefaultClient is used.
func NewDexScreener(baseURL string, httpClient *http.Client) *DexScreener {
	if baseURL == "" {
		baseURL = DefaultDexScreenerURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &DexScreener{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

type searchResponse struct {
	Pairs []struct {
		BaseToken  pairToken `json:"baseToken"`
		QuoteToken pairToken `json:"quoteToken"`
	} `json:"pairs"`
}

type pairToken struct {
	Address string `json:"address"`
	Symbol  string `json:"symbol"`
}

// LookupSymbol searches pairs for mint and returns the symbol of the first
// base or quote token whose address matches, ignoring case.
func (d *DexScreener) LookupSymbol(ctx context.Context, mint string) (string, error) {
	endpoint := fmt.Sprintf("%s/latest/dex/search?q=%s", d.baseURL, url.QueryEscape(mint))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("dexscreener returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode search response: %w", err)
	}

	for _, pair := range result.Pairs {
		if strings.EqualFold(pair.BaseToken.Address, mint) {
			return pair.BaseToken.Symbol, nil
		}
		if strings.EqualFold(pair.QuoteToken.Address, mint) {
			return pair.QuoteToken.Symbol, nil
		}
	}
	return "", nil
}
