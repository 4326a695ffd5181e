package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"time"

	"github.com/Jeanclaudech98/Sol-txns-exporter/service/ledger"
)

// Client is the HTTP client for the ledger exporter service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// Ledger is the response of a ledger query.
type Ledger struct {
	Address string          `json:"address"`
	Start   string          `json:"start"`
	End     string          `json:"end"`
	Count   int             `json:"count"`
	Records []ledger.Record `json:"records"`
}

// APIError is a non-success response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("request failed: %s", e.Message)
}

// NewClient creates a new ledger service client.
// A full fetch can take minutes, so the default HTTP client has a long timeout.
func NewClient(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Minute}
	}
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// FetchLedger retrieves the ledger of address between start and end (YYYY-MM-DD, inclusive).
func (c *Client) FetchLedger(ctx context.Context, address, start, end string) (*Ledger, error) {
	resp, err := c.get(ctx, ledgerPath(address, ""), start, end)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseErrorResponse(resp)
	}

	var l Ledger
	if err := json.NewDecoder(resp.Body).Decode(&l); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	c.logger.Debug("ledger fetched", "address", address, "records", l.Count)
	return &l, nil
}

// ExportCSV streams the CSV export of address into w and returns the
// filename suggested by the server.
func (c *Client) ExportCSV(ctx context.Context, address, start, end string, w io.Writer) (string, error) {
	resp, err := c.get(ctx, ledgerPath(address, "/export"), start, end)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", c.parseErrorResponse(resp)
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read export: %w", err)
	}

	filename := attachmentName(resp.Header.Get("Content-Disposition"))
	c.logger.Debug("ledger exported", "address", address, "bytes", n, "filename", filename)
	return filename, nil
}

// Health checks the server health endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.parseErrorResponse(resp)
	}
	return nil
}

func ledgerPath(address, suffix string) string {
	return "/api/v1/ledger/" + url.PathEscape(address) + suffix
}

func (c *Client) get(ctx context.Context, path, start, end string) (*http.Response, error) {
	q := url.Values{}
	q.Set("start", start)
	q.Set("end", end)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

// attachmentName extracts the filename parameter of a Content-Disposition header.
func attachmentName(header string) string {
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	return params["filename"]
}

// parseErrorResponse attempts to parse an error response from the server.
func (c *Client) parseErrorResponse(resp *http.Response) error {
	var errResp struct {
		Error string `json:"error"`
	}

	body, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error == "" {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("status %d: %s", resp.StatusCode, string(body)),
		}
	}

	return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
}
