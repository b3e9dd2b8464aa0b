// Package aggregate joins watchlist positions with upstream valuations into
// the per-fund views shown to the user.
package aggregate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/komsit37/fw/pkg/fw/types"
)

// UpdateTime markers for views without real data.
const (
	FetchFailed = "fetch failed"
	Pending     = "pending"
)

// historyWindow is how far back NAVOn looks for a dated NAV.
const historyWindow = 60

var (
	ErrEmptyKeyword = errors.New("search keyword must not be empty")
	ErrNoNAV        = errors.New("no published NAV for date")
)

// Fetcher returns the latest snapshots for codes. Codes missing from the map
// are treated as failed; the error is informational.
type Fetcher interface {
	Estimates(ctx context.Context, codes []string) (map[string]types.Snapshot, error)
}

// Querier serves the read-only lookups.
type Querier interface {
	Search(ctx context.Context, keyword string) ([]types.SearchResult, error)
	History(ctx context.Context, code string, count int) ([]types.HistoryRecord, error)
}

type Aggregator struct {
	fetch Fetcher
	query Querier
	log   zerolog.Logger
}

func New(fetch Fetcher, query Querier, log zerolog.Logger) *Aggregator {
	return &Aggregator{fetch: fetch, query: query, log: log.With().Str("component", "aggregate").Logger()}
}

// Refresh fetches every position's code in one batch and merges the result.
func (a *Aggregator) Refresh(ctx context.Context, positions []types.Position, previous []types.FundView) []types.FundView {
	codes := make([]string, len(positions))
	for i, p := range positions {
		codes[i] = p.Code
	}
	return a.Merge(positions, a.Fetch(ctx, codes), previous)
}

// Fetch returns the snapshots that could be fetched. Failures are logged and
// never returned.
func (a *Aggregator) Fetch(ctx context.Context, codes []string) map[string]types.Snapshot {
	if len(codes) == 0 {
		return map[string]types.Snapshot{}
	}
	snaps, err := a.fetch.Estimates(ctx, codes)
	if err != nil {
		a.log.Warn().Err(err).Int("received", len(snaps)).Int("requested", len(codes)).Msg("partial refresh")
	}
	if snaps == nil {
		snaps = map[string]types.Snapshot{}
	}
	return snaps
}

// Merge builds one view per position, in position order. A code without a
// fresh snapshot keeps its previous snapshot, or gets a FetchFailed
// placeholder when it has none or only a placeholder. Shares and cost
// always come from positions.
func (a *Aggregator) Merge(positions []types.Position, fresh map[string]types.Snapshot, previous []types.FundView) []types.FundView {
	return merge(positions, fresh, previous, FetchFailed)
}

// Reconcile rebuilds views for positions from previous without fetching.
// Codes never seen before get a Pending placeholder.
func (a *Aggregator) Reconcile(positions []types.Position, previous []types.FundView) []types.FundView {
	return merge(positions, nil, previous, Pending)
}

func merge(positions []types.Position, fresh map[string]types.Snapshot, previous []types.FundView, marker string) []types.FundView {
	prev := make(map[string]types.Snapshot, len(previous))
	for _, v := range previous {
		prev[v.Code] = v.Snapshot
	}

	views := make([]types.FundView, 0, len(positions))
	for _, p := range positions {
		snap, ok := fresh[p.Code]
		if !ok {
			snap, ok = prev[p.Code]
			// a placeholder only lasts until the next fetch
			if ok && marker == FetchFailed && IsPlaceholder(snap) {
				ok = false
			}
		}
		if !ok {
			snap = Placeholder(p.Code, marker)
		}
		views = append(views, types.FundView{Snapshot: snap, Shares: p.Shares, Cost: p.Cost})
	}
	return views
}

// Placeholder is a zero-valued snapshot named after its code.
func Placeholder(code, marker string) types.Snapshot {
	return types.Snapshot{Code: code, Name: code, UpdateTime: marker}
}

// IsPlaceholder reports whether s carries no upstream data.
func IsPlaceholder(s types.Snapshot) bool {
	return s.UpdateTime == FetchFailed || s.UpdateTime == Pending
}

// Search looks funds up by keyword.
func (a *Aggregator) Search(ctx context.Context, keyword string) ([]types.SearchResult, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, ErrEmptyKeyword
	}
	return a.query.Search(ctx, keyword)
}

// History returns the count most recent NAVs for code.
func (a *Aggregator) History(ctx context.Context, code string, count int) ([]types.HistoryRecord, error) {
	return a.query.History(ctx, code, count)
}

// NAVOn returns the NAV published on date ("2006-01-02"), or the latest one
// when date is empty.
func (a *Aggregator) NAVOn(ctx context.Context, code, date string) (types.HistoryRecord, error) {
	count := historyWindow
	if date == "" {
		count = 1
	}
	recs, err := a.query.History(ctx, code, count)
	if err != nil {
		return types.HistoryRecord{}, err
	}
	for _, r := range recs {
		if (date == "" || r.Date == date) && r.NetValue > 0 {
			return r, nil
		}
	}
	if date == "" {
		return types.HistoryRecord{}, fmt.Errorf("%s: %w", code, ErrNoNAV)
	}
	return types.HistoryRecord{}, fmt.Errorf("%s on %s: %w", code, date, ErrNoNAV)
}
