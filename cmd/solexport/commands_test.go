package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Jeanclaudech98/Sol-txns-exporter/service/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWallet = "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM"

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	a := newApp()
	a.Writer = &out
	a.ErrWriter = &out
	err := a.Run(append([]string{"solexport"}, args...))
	return out.String(), err
}

func ledgerServer(t *testing.T, records []ledger.Record) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/ledger/" + testWallet:
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]interface{}{
				"address": testWallet,
				"start":   r.URL.Query().Get("start"),
				"end":     r.URL.Query().Get("end"),
				"count":   len(records),
				"records": records,
			})
		case "/api/v1/ledger/" + testWallet + "/export":
			w.Header().Set("Content-Type", "text/csv")
			w.Header().Set("Content-Disposition", `attachment; filename="server_name.csv"`)
			w.Write([]byte("Date,Year"))
		case "/health":
			w.Write([]byte("OK"))
		default:
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": ledger.MsgNoTransactions})
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestClientFetch_PreviewAndCSV(t *testing.T) {
	var records []ledger.Record
	for i := 0; i < 7; i++ {
		records = append(records, testRecord("SOL", "-1.5", "-150", ledger.Outflow))
	}
	server := ledgerServer(t, records)
	out := filepath.Join(t.TempDir(), "ledger.csv")

	stdout, err := runApp(t, "--server-url", server.URL, "client", "fetch",
		"--start", "2024-03-01", "--end", "2024-03-31", "--out", out, testWallet)
	require.NoError(t, err)

	assert.Contains(t, stdout, "DATE")
	assert.Equal(t, 5, strings.Count(stdout, "2024-03-01"))
	assert.Contains(t, stdout, "... and 2 more")
	assert.Contains(t, stdout, "Total: 7 records")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(string(data), "\n")
	assert.Len(t, lines, 8)
	assert.True(t, strings.HasPrefix(lines[0], "Date,Year,Month,Original Amount"))
}

func TestClientFetch_JSONWithFilter(t *testing.T) {
	server := ledgerServer(t, []ledger.Record{
		testRecord("SOL", "-1.5", "-150", ledger.Outflow),
		testRecord("BONK", "1000", "150", ledger.Inflow),
	})

	stdout, err := runApp(t, "--server-url", server.URL, "client", "fetch",
		"--start", "2024-03-01", "--end", "2024-03-31", "--no-file", "--json",
		"--must-jq", `.direction == "Inflow"`, testWallet)
	require.NoError(t, err)

	var got []ledger.Record
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "BONK", got[0].OriginalCurrency)
}

func TestClientFetch_NothingMatches(t *testing.T) {
	server := ledgerServer(t, []ledger.Record{testRecord("SOL", "-1.5", "-150", ledger.Outflow)})

	_, err := runApp(t, "--server-url", server.URL, "client", "fetch",
		"--start", "2024-03-01", "--end", "2024-03-31", "--no-file",
		"--must-jq", `.direction == "Inflow"`, testWallet)
	assert.ErrorContains(t, err, "no records matched")
}

func TestClientFetch_ServerError(t *testing.T) {
	server := ledgerServer(t, nil)

	_, err := runApp(t, "--server-url", server.URL, "client", "fetch",
		"--start", "2024-03-01", "--end", "2024-03-31", "--no-file", "other")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ledger.MsgNoTransactions)
}

func TestClientExport(t *testing.T) {
	server := ledgerServer(t, nil)
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(wd)

	stdout, err := runApp(t, "--server-url", server.URL, "client", "export",
		"--start", "2024-03-01", "--end", "2024-03-31", testWallet)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Saved server_name.csv")

	data, err := os.ReadFile(filepath.Join(dir, "server_name.csv"))
	require.NoError(t, err)
	assert.Equal(t, "Date,Year", string(data))
}

func TestServerCommands(t *testing.T) {
	server := ledgerServer(t, nil)

	stdout, err := runApp(t, "--server-url", server.URL, "server", "health")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Server is healthy")

	stdout, err = runApp(t, "server", "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Version: dev")
}

func TestFetch_InvalidFilterFailsFast(t *testing.T) {
	_, err := runApp(t, "fetch", "--start", "2024-03-01", "--end", "2024-03-31", "--must-jq", ".[", testWallet)
	assert.ErrorContains(t, err, "failed to parse jq filter")
}

func TestFetch_FlagsAfterAddressAreNotParsed(t *testing.T) {
	_, err := runApp(t, "fetch", testWallet, "--start", "2024-03-01", "--end", "2024-03-31")
	assert.ErrorContains(t, err, `Required flags "start, end" not set`)
}

func TestFetch_MissingAddress(t *testing.T) {
	_, err := runApp(t, "fetch", "--start", "2024-03-01", "--end", "2024-03-31")
	assert.ErrorContains(t, err, "wallet address is required")
}
