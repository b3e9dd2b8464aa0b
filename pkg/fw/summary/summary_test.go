package summary

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/komsit37/fw/pkg/fw/calc"
	"github.com/komsit37/fw/pkg/fw/types"
)

type market bool

func (m market) IsMarketClosed(time.Time) bool { return bool(m) }

func ptr(v float64) *float64 { return &v }

func fixture() []types.FundView {
	return []types.FundView{
		// amount 250, gain 50, daily +10
		{Snapshot: types.Snapshot{Code: "a", NetValue: 2.5, EstimatedValue: ptr(2.6)}, Shares: 100, Cost: 2},
		// amount 100, gain -20, daily -5
		{Snapshot: types.Snapshot{Code: "b", NetValue: 1.0, EstimatedValue: ptr(0.95)}, Shares: 100, Cost: 1.2},
		// watch only
		{Snapshot: types.Snapshot{Code: "c", NetValue: 3.0, EstimatedValue: ptr(3.3)}},
	}
}

func TestSummarize(t *testing.T) {
	c := calc.New(market(false), nil)
	s := Summarize(c, fixture())

	assert.Equal(t, 3, s.Funds)
	assert.InDelta(t, 350, s.HoldingAmount, 1e-9)
	assert.InDelta(t, 5, s.DailyGain, 1e-9)
	assert.InDelta(t, 30, s.HoldingGain, 1e-9)
	assert.InDelta(t, 30.0/320.0*100, s.HoldingGainRate, 1e-9)
	assert.InDelta(t, 5.0/350.0*100, s.DailyGainRate, 1e-9)
	assert.Equal(t, 1, s.UpCount)
	assert.Equal(t, 1, s.DownCount)
	assert.InDelta(t, 10, s.UpSum, 1e-9)
	assert.InDelta(t, -5, s.DownSum, 1e-9)
	assert.True(t, s.Up())
}

func TestSummarizeMatchesRows(t *testing.T) {
	c := calc.New(market(false), nil)
	views := fixture()
	s := Summarize(c, views)

	var amount, daily, gain float64
	for _, v := range views {
		m := c.Metrics(v)
		amount += m.HoldingAmount
		daily += m.DailyGain
		gain += m.HoldingGain
	}
	assert.Equal(t, amount, s.HoldingAmount)
	assert.Equal(t, daily, s.DailyGain)
	assert.Equal(t, gain, s.HoldingGain)
}

func TestSummarizeMarketClosed(t *testing.T) {
	s := Summarize(calc.New(market(true), nil), fixture())
	assert.Zero(t, s.DailyGain)
	assert.Zero(t, s.DailyGainRate)
	assert.Zero(t, s.UpCount)
	assert.Zero(t, s.DownCount)
	assert.InDelta(t, 350, s.HoldingAmount, 1e-9)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(calc.New(market(false), nil), nil)
	assert.True(t, s.Empty())
	assert.Zero(t, s.HoldingGainRate)
	assert.Zero(t, s.DailyGainRate)
	assert.True(t, s.Up())
}

func TestSummarizeNoCostBasis(t *testing.T) {
	views := []types.FundView{{Snapshot: types.Snapshot{Code: "a", NetValue: 2}, Shares: 10}}
	s := Summarize(calc.New(market(false), nil), views)
	assert.InDelta(t, 20, s.HoldingAmount, 1e-9)
	assert.Zero(t, s.HoldingGain)
	assert.Zero(t, s.HoldingGainRate)
}
