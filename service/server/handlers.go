package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/Jeanclaudech98/Sol-txns-exporter/service/export"
	"github.com/Jeanclaudech98/Sol-txns-exporter/service/ledger"
	"github.com/Jeanclaudech98/Sol-txns-exporter/service/nats"
)

const publishTimeout = 5 * time.Second

type ledgerResponse struct {
	Address string          `json:"address"`
	Start   string          `json:"start"`
	End     string          `json:"end"`
	Count   int             `json:"count"`
	Records []ledger.Record `json:"records"`
}

// handleGetLedger returns a handler that builds the ledger of a wallet.
// GET /api/v1/ledger/{address}?start=YYYY-MM-DD&end=YYYY-MM-DD
func handleGetLedger(fetcher LedgerFetcher, publisher nats.Publisher, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		address, dr, records, ok := fetchForRequest(w, r, fetcher, logger)
		if !ok {
			return
		}

		writeJSON(w, ledgerResponse{
			Address: address,
			Start:   dr.StartDate(),
			End:     dr.EndDate(),
			Count:   len(records),
			Records: records,
		}, http.StatusOK)

		publishExported(r.Context(), publisher, logger, nats.NewLedgerExportedEvent(address, dr, records, "json"))
	})
}

// handleExportLedger returns a handler that serves the ledger of a wallet as a CSV download.
// GET /api/v1/ledger/{address}/export?start=YYYY-MM-DD&end=YYYY-MM-DD
func handleExportLedger(fetcher LedgerFetcher, publisher nats.Publisher, now func() time.Time, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		address, dr, records, ok := fetchForRequest(w, r, fetcher, logger)
		if !ok {
			return
		}

		var buf bytes.Buffer
		if err := export.WriteCSV(&buf, records); err != nil {
			logger.Error("failed to render csv", "address", address, "error", err)
			writeError(w, "internal server error", http.StatusInternalServerError)
			return
		}

		filename := export.FileName(now())
		w.Header().Set("Content-Type", export.ContentType)
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
		w.WriteHeader(http.StatusOK)
		w.Write(buf.Bytes())

		logger.Info("ledger exported", "address", address, "records", len(records), "filename", filename)
		publishExported(r.Context(), publisher, logger, nats.NewLedgerExportedEvent(address, dr, records, "csv"))
	})
}

// fetchForRequest parses the path and query of r and runs the fetch. On
// failure the error response has been written and ok is false.
func fetchForRequest(w http.ResponseWriter, r *http.Request, fetcher LedgerFetcher, logger *slog.Logger) (string, ledger.DateRange, []ledger.Record, bool) {
	address := r.PathValue("address")
	query := r.URL.Query()

	dr, err := ledger.ParseDateRange(query.Get("start"), query.Get("end"), fetcher.Location())
	if err != nil {
		writeLedgerError(w, logger, address, err)
		return "", ledger.DateRange{}, nil, false
	}

	// A started fetch runs to completion even if the client goes away.
	records, err := fetcher.FetchLedger(context.WithoutCancel(r.Context()), address, dr)
	if err != nil {
		writeLedgerError(w, logger, address, err)
		return "", ledger.DateRange{}, nil, false
	}
	return address, dr, records, true
}

// statusForKind maps ledger failure kinds to HTTP status codes.
func statusForKind(kind ledger.Kind) int {
	switch kind {
	case ledger.KindInput:
		return http.StatusBadRequest
	case ledger.KindNotFound:
		return http.StatusNotFound
	case ledger.KindRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusBadGateway
	}
}

func writeLedgerError(w http.ResponseWriter, logger *slog.Logger, address string, err error) {
	var lerr *ledger.Error
	if !errors.As(err, &lerr) {
		logger.Error("unclassified ledger failure", "address", address, "error", err)
		writeError(w, "internal server error", http.StatusBadGateway)
		return
	}

	status := statusForKind(lerr.Kind)
	logger.Debug("ledger request failed", "address", address, "kind", lerr.Kind.String(), "status", status)
	writeError(w, lerr.Message, status)
}

// publishExported sends event if a publisher is configured. Failures are logged only.
func publishExported(ctx context.Context, publisher nats.Publisher, logger *slog.Logger, event *nats.LedgerExportedEvent) {
	if publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := publisher.PublishLedgerExported(ctx, event); err != nil {
		logger.Warn("failed to publish ledger event",
			"address", event.WalletAddress,
			"subject", event.Subject(),
			"error", err,
		)
	}
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}
