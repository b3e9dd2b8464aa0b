package render

import (
	"github.com/komsit37/fw/pkg/fw/format"
	"github.com/komsit37/fw/pkg/fw/summary"
)

// IdleStatus is shown while the watchlist is empty.
const IdleStatus = "📈 fw"

// StatusLine is the one-line portfolio summary.
type StatusLine struct {
	Text    string
	Tooltip string
	// Sign is 1 for a flat or rising day, -1 for a falling one, 0 when idle.
	Sign int
}

// Status builds the status line: arrow, total daily gain and, when anything
// is held, the daily gain rate.
func Status(s summary.Summary) StatusLine {
	if s.Empty() {
		return StatusLine{Text: IdleStatus, Tooltip: "No funds in the watchlist"}
	}
	arrow, sign := "▲", 1
	if !s.Up() {
		arrow, sign = "▼", -1
	}
	text := arrow + " " + format.Signed(s.DailyGain)
	if s.HoldingAmount > 0 {
		text += " (" + format.Percent(s.DailyGainRate) + ")"
	}
	return StatusLine{Text: text, Tooltip: overviewMarkdown(s), Sign: sign}
}
