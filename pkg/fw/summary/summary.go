// Package summary aggregates fund views into the portfolio totals shown in
// the status line and the overview tooltip.
package summary

import (
	"github.com/komsit37/fw/pkg/fw/calc"
	"github.com/komsit37/fw/pkg/fw/types"
)

// Summary holds portfolio totals.
type Summary struct {
	Funds int

	HoldingAmount float64
	DailyGain     float64
	HoldingGain   float64
	// HoldingGainRate is HoldingGain relative to the cost of the holdings.
	HoldingGainRate float64
	// DailyGainRate is DailyGain relative to HoldingAmount.
	DailyGainRate float64

	UpCount   int
	DownCount int
	UpSum     float64
	DownSum   float64
}

// Summarize totals views. Per-fund values come from c so the totals always
// match the rows.
func Summarize(c *calc.Calculator, views []types.FundView) Summary {
	s := Summary{Funds: len(views)}
	for _, v := range views {
		m := c.Metrics(v)
		s.HoldingAmount += m.HoldingAmount
		s.DailyGain += m.DailyGain
		s.HoldingGain += m.HoldingGain
		switch {
		case m.DailyGain > 0:
			s.UpCount++
			s.UpSum += m.DailyGain
		case m.DailyGain < 0:
			s.DownCount++
			s.DownSum += m.DailyGain
		}
	}
	if s.HoldingAmount != 0 {
		s.DailyGainRate = s.DailyGain / s.HoldingAmount * 100
		if basis := s.HoldingAmount - s.HoldingGain; basis != 0 {
			s.HoldingGainRate = s.HoldingGain / basis * 100
		}
	}
	return s
}

// Empty reports whether there is nothing to summarize.
func (s Summary) Empty() bool { return s.Funds == 0 }

// Up reports whether the day is flat or positive.
func (s Summary) Up() bool { return s.DailyGain >= 0 }
