package upstream

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"

	"github.com/bytedance/sonic"
	"golang.org/x/sync/errgroup"

	"github.com/komsit37/fw/pkg/fw/types"
)

// Estimates fetches the latest valuation for codes in batches of
// Config.BatchSize. A failed batch only loses its own codes: the returned map
// holds every record that was received and the error joins the batch
// failures. Codes absent from the map should be treated as failed.
func (c *Client) Estimates(ctx context.Context, codes []string) (map[string]types.Snapshot, error) {
	out := make(map[string]types.Snapshot, len(codes))
	if len(codes) == 0 {
		return out, nil
	}

	var (
		mu   sync.Mutex
		errs []error
		g    errgroup.Group
	)
	g.SetLimit(c.cfg.Parallel)
	for _, batch := range chunk(codes, c.cfg.BatchSize) {
		g.Go(func() error {
			snaps, err := c.estimateBatch(ctx, batch)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				c.log.Warn().Err(err).Strs("codes", batch).Msg("estimate batch failed")
				errs = append(errs, err)
				return nil
			}
			for _, s := range snaps {
				out[s.Code] = s
			}
			return nil
		})
	}
	_ = g.Wait()
	return out, errors.Join(errs...)
}

func (c *Client) estimateBatch(ctx context.Context, codes []string) ([]types.Snapshot, error) {
	var resp estimateResponse
	err := c.getJSON(ctx, c.cfg.EstimateURL, map[string]string{
		"pageIndex": "1",
		"pageSize":  strconv.Itoa(len(codes)),
		"plat":      "Android",
		"appType":   "ttjj",
		"product":   "EFund",
		"Version":   "1",
		"deviceid":  "fw",
		"Fcodes":    strings.Join(codes, ","),
	}, nil, &resp)
	if err != nil {
		return nil, err
	}

	want := make(map[string]bool, len(codes))
	for _, code := range codes {
		want[code] = true
	}
	snaps := make([]types.Snapshot, 0, len(resp.Datas))
	for i, raw := range resp.Datas {
		var r estimateRecord
		if err := sonic.Unmarshal(raw, &r); err != nil {
			c.log.Warn().Err(err).Int("index", i).Str("record", truncate(string(raw), 200)).Msg("skipping malformed estimate")
			continue
		}
		if r.Code == "" || !want[r.Code] {
			continue
		}
		snaps = append(snaps, r.snapshot())
	}
	return snaps, nil
}

// Search looks funds up by name, pinyin or code fragment.
func (c *Client) Search(ctx context.Context, keyword string) ([]types.SearchResult, error) {
	var resp searchResponse
	err := c.getJSON(ctx, c.cfg.SearchURL, map[string]string{
		"m":   "9",
		"key": keyword,
	}, nil, &resp)
	if err != nil {
		return nil, err
	}
	out := make([]types.SearchResult, 0, len(resp.Datas))
	for _, d := range resp.Datas {
		if d.Code == "" {
			continue
		}
		out = append(out, types.SearchResult{Code: d.Code, Name: d.Name})
	}
	return out, nil
}

// History returns the count most recent published NAVs, newest first.
func (c *Client) History(ctx context.Context, code string, count int) ([]types.HistoryRecord, error) {
	if count <= 0 {
		count = 10
	}
	var resp historyResponse
	err := c.getJSON(ctx, c.cfg.HistoryURL, map[string]string{
		"fundCode":  code,
		"pageIndex": "1",
		"pageSize":  strconv.Itoa(count),
		"startDate": "",
		"endDate":   "",
	}, map[string]string{"Referer": historyReferer}, &resp)
	if err != nil {
		return nil, err
	}
	out := make([]types.HistoryRecord, 0, len(resp.Data.LSJZList))
	for _, r := range resp.Data.LSJZList {
		out = append(out, types.HistoryRecord{
			Date:          r.Date,
			NetValue:      r.NAV.or(0),
			ChangePercent: r.Change.or(0),
		})
	}
	return out, nil
}

// Holidays downloads the exchange holiday calendar.
func (c *Client) Holidays(ctx context.Context) (types.HolidayCalendar, error) {
	var resp holidayResponse
	if err := c.getJSON(ctx, c.cfg.HolidayURL, nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func chunk(codes []string, size int) [][]string {
	var out [][]string
	for len(codes) > size {
		out = append(out, codes[:size:size])
		codes = codes[size:]
	}
	if len(codes) > 0 {
		out = append(out, codes)
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
