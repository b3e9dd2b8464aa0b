// Package calc derives gains and amounts for a fund position. Every surface
// that shows a number (tree label, tooltip, status bar, sort key) goes through
// this package so they always agree.
package calc

import (
	"time"

	"github.com/komsit37/fw/pkg/fw/types"
)

// MarketCalendar reports whether the exchange is closed on the day of t.
type MarketCalendar interface {
	IsMarketClosed(t time.Time) bool
}

// Calculator computes position metrics against a market calendar and clock.
type Calculator struct {
	cal MarketCalendar
	now func() time.Time
}

// New returns a Calculator. A nil now uses time.Now.
func New(cal MarketCalendar, now func() time.Time) *Calculator {
	if now == nil {
		now = time.Now
	}
	return &Calculator{cal: cal, now: now}
}

// Metrics bundles the four derived values of a FundView.
type Metrics struct {
	HoldingAmount   float64
	DailyGain       float64
	HoldingGain     float64
	HoldingGainRate float64
}

// Metrics computes all derived values at once.
func (c *Calculator) Metrics(v types.FundView) Metrics {
	return Metrics{
		HoldingAmount:   c.HoldingAmount(v),
		DailyGain:       c.DailyGain(v),
		HoldingGain:     c.HoldingGain(v),
		HoldingGainRate: c.HoldingGainRate(v),
	}
}

// HoldingAmount is the market value of the position at the last NAV.
func (c *Calculator) HoldingAmount(v types.FundView) float64 {
	return v.NetValue * v.Shares
}

// DailyGain is today's gain of the position. It is zero on days the market
// is closed. Once settled, yesterday's NAV is backed out of today's real
// change percent instead of being fetched separately.
func (c *Calculator) DailyGain(v types.FundView) float64 {
	if v.Shares <= 0 {
		return 0
	}
	if c.cal != nil && c.cal.IsMarketClosed(c.now()) {
		return 0
	}
	if v.Settled {
		return (v.NetValue - v.NetValue/(1+v.RealChangePercent*0.01)) * v.Shares
	}
	if v.EstimatedValue != nil {
		return (*v.EstimatedValue - v.NetValue) * v.Shares
	}
	return 0
}

// HoldingGain is the unrealized gain against the cost basis.
func (c *Calculator) HoldingGain(v types.FundView) float64 {
	if v.Cost > 0 && v.Shares > 0 {
		return (v.NetValue - v.Cost) * v.Shares
	}
	return 0
}

// HoldingGainRate is HoldingGain as a percentage of cost.
func (c *Calculator) HoldingGainRate(v types.FundView) float64 {
	if v.Cost > 0 {
		return (v.NetValue - v.Cost) / v.Cost * 100
	}
	return 0
}
