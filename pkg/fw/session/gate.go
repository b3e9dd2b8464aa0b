// Package session decides whether the fund market is open.
package session

import (
	"sync"
	"time"

	"github.com/komsit37/fw/pkg/fw/types"
)

// CST is China Standard Time. Trading days and windows are always evaluated
// in it, whatever the host timezone.
var CST = time.FixedZone("CST", 8*60*60)

// windows are inclusive HHMM ranges.
var windows = [][2]int{
	{930, 1130},
	{1300, 1500},
}

// Gate combines the weekend rule, the holiday calendar and the intraday
// trading windows. The zero value has no calendar and only closes on weekends.
type Gate struct {
	mu  sync.RWMutex
	cal types.HolidayCalendar
}

// NewGate returns a Gate over cal, which may be nil.
func NewGate(cal types.HolidayCalendar) *Gate {
	return &Gate{cal: cal}
}

// SetCalendar replaces the holiday calendar.
func (g *Gate) SetCalendar(cal types.HolidayCalendar) {
	g.mu.Lock()
	g.cal = cal
	g.mu.Unlock()
}

// Calendar returns the current holiday calendar.
func (g *Gate) Calendar() types.HolidayCalendar {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.cal
}

// IsMarketClosed reports whether the day of t is a weekend or a listed
// holiday. Days missing from the calendar are assumed open.
func (g *Gate) IsMarketClosed(t time.Time) bool {
	closed, _ := g.lookup(t)
	return closed
}

func (g *Gate) lookup(t time.Time) (bool, string) {
	t = t.In(CST)
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		// make-up working weekends never open the exchange
		return true, "weekend"
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	days, ok := g.cal[t.Format("2006")]
	if !ok {
		return false, ""
	}
	h, ok := days[t.Format("01-02")]
	if !ok {
		return false, ""
	}
	return h.Holiday, h.Name
}

// IsDuringTradingWindow reports whether t falls in a trading session of an
// open day: 09:30-11:30 or 13:00-15:00 CST, both ends included.
func (g *Gate) IsDuringTradingWindow(t time.Time) bool {
	if g.IsMarketClosed(t) {
		return false
	}
	t = t.In(CST)
	hm := t.Hour()*100 + t.Minute()
	for _, w := range windows {
		if hm >= w[0] && hm <= w[1] {
			return true
		}
	}
	return false
}

// Status summarizes the market state at one instant.
type Status struct {
	Date    string
	Closed  bool
	Reason  string
	Trading bool
}

// Status returns the market state at t.
func (g *Gate) Status(t time.Time) Status {
	closed, reason := g.lookup(t)
	return Status{
		Date:    t.In(CST).Format("2006-01-02 15:04"),
		Closed:  closed,
		Reason:  reason,
		Trading: !closed && g.IsDuringTradingWindow(t),
	}
}
