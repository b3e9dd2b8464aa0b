package calc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/komsit37/fw/pkg/fw/types"
)

type fixedCalendar bool

func (f fixedCalendar) IsMarketClosed(time.Time) bool { return bool(f) }

func ptr(v float64) *float64 { return &v }

func view(nav float64, est *float64, shares, cost float64) types.FundView {
	return types.FundView{
		Snapshot: types.Snapshot{Code: "000001", Name: "Test", NetValue: nav, EstimatedValue: est},
		Shares:   shares,
		Cost:     cost,
	}
}

func TestHoldingGainExample(t *testing.T) {
	c := New(fixedCalendar(false), nil)
	v := view(2.5, nil, 100, 2.0)

	assert.InDelta(t, 250.0, c.HoldingAmount(v), 1e-9)
	assert.InDelta(t, 50.0, c.HoldingGain(v), 1e-9)
	assert.InDelta(t, 25.0, c.HoldingGainRate(v), 1e-9)
}

func TestHoldingGainZeroWithoutCostOrShares(t *testing.T) {
	c := New(fixedCalendar(false), nil)
	cases := []types.FundView{
		view(2.5, nil, 100, 0),
		view(2.5, nil, 0, 2.0),
		view(2.5, nil, 0, 0),
	}
	for _, v := range cases {
		assert.Zero(t, c.HoldingGain(v))
	}
	// rate only needs a cost
	assert.InDelta(t, 25.0, c.HoldingGainRate(view(2.5, nil, 0, 2.0)), 1e-9)
	assert.Zero(t, c.HoldingGainRate(view(2.5, nil, 100, 0)))
}

func TestDailyGainEstimated(t *testing.T) {
	c := New(fixedCalendar(false), nil)
	v := view(2.0, ptr(2.1), 1000, 1.5)
	assert.InDelta(t, 100.0, c.DailyGain(v), 1e-9)

	noEstimate := view(2.0, nil, 1000, 1.5)
	assert.Zero(t, c.DailyGain(noEstimate))
}

func TestDailyGainSettledUsesRealChange(t *testing.T) {
	c := New(fixedCalendar(false), nil)
	v := view(2.2, ptr(2.2), 100, 0)
	v.Settled = true
	v.RealChangePercent = 10
	v.ChangePercent = 10

	// yesterday = 2.2 / 1.1 = 2.0
	assert.InDelta(t, 20.0, c.DailyGain(v), 1e-9)
}

func TestDailyGainZeroWhenMarketClosed(t *testing.T) {
	c := New(fixedCalendar(true), nil)
	for _, settled := range []bool{true, false} {
		for _, est := range []*float64{nil, ptr(3.0)} {
			v := view(2.0, est, 100, 1.0)
			v.Settled = settled
			v.RealChangePercent = 5
			assert.Zero(t, c.DailyGain(v), "settled=%v est=%v", settled, est)
		}
	}
}

func TestDailyGainZeroWithoutShares(t *testing.T) {
	c := New(fixedCalendar(false), nil)
	assert.Zero(t, c.DailyGain(view(2.0, ptr(2.5), 0, 1.0)))
	assert.Zero(t, c.DailyGain(view(2.0, ptr(2.5), -5, 1.0)))
}

func TestDailyGainUsesClock(t *testing.T) {
	var asked time.Time
	cal := calendarFunc(func(t time.Time) bool { asked = t; return false })
	now := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	c := New(cal, func() time.Time { return now })

	c.DailyGain(view(1, ptr(1.1), 10, 0))
	assert.Equal(t, now, asked)
}

func TestMetricsMatchesIndividualFunctions(t *testing.T) {
	c := New(fixedCalendar(false), nil)
	v := view(1.8, ptr(1.85), 300, 1.6)
	m := c.Metrics(v)
	assert.Equal(t, c.HoldingAmount(v), m.HoldingAmount)
	assert.Equal(t, c.DailyGain(v), m.DailyGain)
	assert.Equal(t, c.HoldingGain(v), m.HoldingGain)
	assert.Equal(t, c.HoldingGainRate(v), m.HoldingGainRate)
}

type calendarFunc func(time.Time) bool

func (f calendarFunc) IsMarketClosed(t time.Time) bool { return f(t) }
