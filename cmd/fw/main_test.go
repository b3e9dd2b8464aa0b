package main

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/komsit37/fw/pkg/fw/ledger"
	"github.com/komsit37/fw/pkg/fw/sortview"
	"github.com/komsit37/fw/pkg/fw/types"
)

func TestSplitCodes(t *testing.T) {
	assert.Equal(t, []string{"161725", "005827", "000001"}, splitCodes([]string{"161725, 005827", "", "000001,"}))
	assert.Nil(t, splitCodes(nil))
}

func TestDescribeSort(t *testing.T) {
	assert.Equal(t, "sort: default order", describeSort(sortview.DefaultState))
	assert.Equal(t, "sort: Gain rate ↑", describeSort(sortview.State{Field: sortview.HoldingGainRate, Dir: sortview.Asc}))
}

func sqliteConfig(t *testing.T, extra ...string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := "store:\n  driver: sqlite\n  path: " + filepath.Join(dir, "watchlist.db") + "\nlog:\n  level: error\n" +
		strings.Join(extra, "")
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

// upstreamConfig serves a fixed holiday calendar and counts estimate
// requests.
func upstreamConfig(t *testing.T, estimates *atomic.Int32) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/holiday.json":
			fmt.Fprint(w, `{"code": 0, "data": {"2025": {"01-01": {"holiday": true, "name": "New Year"}},
				"2024": {"10-01": {"holiday": true, "name": "National Day"}}}}`)
		case "/estimate":
			estimates.Add(1)
			fmt.Fprint(w, `{"Datas": []}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return "upstream:\n  estimate_url: " + srv.URL + "/estimate\n  holiday_url: " + srv.URL + "/holiday.json\n"
}

func TestExecuteClosesOnError(t *testing.T) {
	cfg := sqliteConfig(t)

	var e env
	err := execute(&e, io.Discard, "--config", cfg, "sell", "161725", "10")
	require.ErrorIs(t, err, ledger.ErrNotFound)
	require.NotNil(t, e.store)
	_, err = e.store.Funds()
	assert.Error(t, err, "store still open")
}

func TestExecuteClosesOnSuccess(t *testing.T) {
	cfg := sqliteConfig(t)

	var e env
	var out bytes.Buffer
	require.NoError(t, execute(&e, &out, "--config", cfg, "add", "161725"))
	assert.Equal(t, "added 161725\n", out.String())
	_, err := e.store.Funds()
	assert.Error(t, err)

	e = env{}
	out.Reset()
	require.NoError(t, execute(&e, &out, "--config", cfg, "export"))
	assert.Contains(t, out.String(), `"161725"`)
}

func TestListNoFetch(t *testing.T) {
	var estimates atomic.Int32
	cfg := sqliteConfig(t, upstreamConfig(t, &estimates))

	var e env
	require.NoError(t, execute(&e, io.Discard, "--config", cfg, "add", "161725"))

	e = env{}
	var out bytes.Buffer
	require.NoError(t, execute(&e, &out, "--config", cfg, "list", "--no-fetch", "-o", "json"))
	assert.Contains(t, out.String(), `"161725"`)
	assert.Zero(t, estimates.Load())

	e = env{}
	require.NoError(t, execute(&e, io.Discard, "--config", cfg, "list", "-o", "json"))
	assert.Equal(t, int32(1), estimates.Load())
}

func TestMarketShowsCalendar(t *testing.T) {
	var estimates atomic.Int32
	cfg := sqliteConfig(t, upstreamConfig(t, &estimates))

	var e env
	var out bytes.Buffer
	require.NoError(t, execute(&e, &out, "--config", cfg, "market"))
	assert.Contains(t, out.String(), "holidays: 2024, 2025\n")
}

func TestDescribeCalendar(t *testing.T) {
	assert.Equal(t, "holidays: none loaded, only weekends are closed", describeCalendar(nil))
	assert.Equal(t, "holidays: 2023, 2024", describeCalendar(types.HolidayCalendar{
		"2024": {"10-01": {Holiday: true}},
		"2023": {},
	}))
}

func TestCloseEmptyEnv(t *testing.T) {
	var e env
	assert.NotPanics(t, e.close)
}
