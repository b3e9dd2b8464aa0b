package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/komsit37/fw/pkg/fw/upstream"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadDefaults(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	cfg, l, err := Load("")
	require.NoError(t, err)
	assert.Empty(t, l.File())

	assert.Equal(t, "yaml", cfg.Store.Driver)
	assert.Equal(t, filepath.Join(xdg, "fw", "watchlist.yaml"), cfg.Store.Path)
	assert.Equal(t, time.Minute, cfg.Refresh.Interval)
	assert.Equal(t, 10*time.Second, cfg.Refresh.Timeout)
	assert.True(t, cfg.Refresh.TradingHoursOnly)
	assert.Equal(t, 10, cfg.Upstream.Rate)
	assert.Equal(t, 50, cfg.Upstream.BatchSize)
	assert.Equal(t, 5*time.Minute, cfg.Upstream.CacheTTL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.True(t, cfg.Display.Color)
	assert.Equal(t, 40, cfg.Display.MaxColWidth)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	path := writeFile(t, dir, "fw.yaml", `
store:
  driver: sqlite
refresh:
  interval: 30s
  trading_hours_only: false
upstream:
  batch_size: 20
log:
  format: json
`)
	t.Setenv("FW_UPSTREAM_RATE", "3")
	t.Setenv("FW_LOG_LEVEL", "debug")

	cfg, l, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, l.File())

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, filepath.Join(dir, "fw", "watchlist.db"), cfg.Store.Path)
	assert.Equal(t, 30*time.Second, cfg.Refresh.Interval)
	assert.False(t, cfg.Refresh.TradingHoursOnly)
	assert.Equal(t, 20, cfg.Upstream.BatchSize)
	assert.Equal(t, 3, cfg.Upstream.Rate)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalid(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	path := writeFile(t, dir, "bad.yaml", "store:\n  driver: postgres\n")
	_, _, err := Load(path)
	assert.ErrorContains(t, err, "store.driver")

	path = writeFile(t, dir, "fast.yaml", "refresh:\n  interval: 1s\n")
	_, _, err = Load(path)
	assert.ErrorContains(t, err, "refresh.interval")
}

func TestUpstreamClient(t *testing.T) {
	cfg := Config{
		Refresh:  RefreshConfig{Timeout: 3 * time.Second},
		Upstream: UpstreamConfig{Rate: 5, BatchSize: 10, SearchURL: "http://search"},
	}
	u := cfg.UpstreamClient()
	assert.Equal(t, 3*time.Second, u.Timeout)
	assert.Equal(t, 5, u.Rate)
	assert.Equal(t, 10, u.BatchSize)
	assert.Equal(t, "http://search", u.SearchURL)
	assert.Equal(t, upstream.DefaultEstimateURL, u.EstimateURL)
	assert.Equal(t, 4, u.Parallel)
}
