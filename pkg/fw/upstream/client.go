// Package upstream talks to the public fund data endpoints: batched intraday
// estimates, keyword search, NAV history and the exchange holiday file.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog"
	"go.uber.org/ratelimit"
	"resty.dev/v3"
)

const (
	DefaultEstimateURL = "https://fundmobapi.eastmoney.com/FundMNewApi/FundMNFInfo"
	DefaultSearchURL   = "https://fundsuggest.eastmoney.com/FundSearch/api/FundSearchAPI.ashx"
	DefaultHistoryURL  = "https://api.fund.eastmoney.com/f10/lsjz"
	DefaultHolidayURL  = "https://funds.rabt.top/funds/holiday.json"

	historyReferer = "https://fundf10.eastmoney.com/"
	userAgent      = "Mozilla/5.0 (fw fund watchlist)"
)

// Config holds endpoint and pacing settings for Client.
type Config struct {
	EstimateURL string
	SearchURL   string
	HistoryURL  string
	HolidayURL  string

	// Timeout bounds each individual request.
	Timeout time.Duration
	// Rate is the number of requests per second; 0 disables pacing.
	Rate int
	// BatchSize is the maximum number of codes per estimate request.
	BatchSize int
	// Parallel caps concurrent estimate requests.
	Parallel int
}

// Setup fills zero fields with defaults.
func (c *Config) Setup() {
	if c.EstimateURL == "" {
		c.EstimateURL = DefaultEstimateURL
	}
	if c.SearchURL == "" {
		c.SearchURL = DefaultSearchURL
	}
	if c.HistoryURL == "" {
		c.HistoryURL = DefaultHistoryURL
	}
	if c.HolidayURL == "" {
		c.HolidayURL = DefaultHolidayURL
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.Rate < 0 {
		c.Rate = 0
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 50
	}
	if c.Parallel <= 0 {
		c.Parallel = 4
	}
}

// ErrStatus is returned for non-2xx upstream responses.
var ErrStatus = errors.New("upstream returned error status")

// Client fetches fund data over HTTP.
type Client struct {
	http    *resty.Client
	cfg     Config
	limiter ratelimit.Limiter
	log     zerolog.Logger
}

// New creates a Client. cfg is copied and defaulted.
func New(cfg Config, log zerolog.Logger) *Client {
	cfg.Setup()
	log = log.With().Str("component", "upstream").Logger()

	limiter := ratelimit.NewUnlimited()
	if cfg.Rate > 0 {
		limiter = ratelimit.New(cfg.Rate, ratelimit.Per(time.Second))
	}

	http := resty.New().
		SetLogger(restyLogger{log: log}).
		SetHeader("User-Agent", userAgent).
		SetTimeout(cfg.Timeout)

	return &Client{http: http, cfg: cfg, limiter: limiter, log: log}
}

// Close releases idle connections.
func (c *Client) Close() error {
	return c.http.Close()
}

// getJSON performs a paced GET bounded by the request timeout and decodes the
// body into out.
func (c *Client) getJSON(ctx context.Context, url string, query map[string]string, headers map[string]string, out any) error {
	c.limiter.Take()

	cctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req := c.http.R().
		SetContext(cctx).
		SetQueryParams(query)
	for k, v := range headers {
		req.SetHeader(k, v)
	}

	start := time.Now()
	resp, err := req.Get(url)
	if err != nil {
		return fmt.Errorf("get %s: %w", url, err)
	}
	c.log.Debug().Str("url", url).Str("status", resp.Status()).Dur("took", time.Since(start)).Msg("response")

	if resp.IsError() {
		return fmt.Errorf("get %s: %s: %w", url, resp.Status(), ErrStatus)
	}
	if err := sonic.Unmarshal(resp.Bytes(), out); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

// restyLogger routes resty's own messages to zerolog.
type restyLogger struct {
	log zerolog.Logger
}

func (l restyLogger) Errorf(format string, v ...any) { l.log.Error().Msgf(format, v...) }
func (l restyLogger) Warnf(format string, v ...any)  { l.log.Warn().Msgf(format, v...) }
func (l restyLogger) Debugf(format string, v ...any) { l.log.Debug().Msgf(format, v...) }
