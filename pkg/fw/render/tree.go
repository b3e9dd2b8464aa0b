package render

import (
	"fmt"
	"strings"

	"github.com/komsit37/fw/pkg/fw/calc"
	"github.com/komsit37/fw/pkg/fw/format"
	"github.com/komsit37/fw/pkg/fw/sortview"
	"github.com/komsit37/fw/pkg/fw/summary"
	"github.com/komsit37/fw/pkg/fw/types"
)

// Kind tags a Node.
type Kind string

const (
	KindSortHeader Kind = "sort"
	KindFund       Kind = "fund"
	KindDetail     Kind = "detail"
)

// Node is one line of the fund tree. It is one of SortHeaderNode, FundNode
// or DetailNode.
type Node interface {
	Kind() Kind
	node()
}

// Icon is chosen by the sign of a node's designated value.
type Icon string

const (
	IconUp   Icon = "up"
	IconDown Icon = "down"
	IconFlat Icon = "flat"
)

func iconFor(v float64) Icon {
	switch format.Sign(v) {
	case 1:
		return IconUp
	case -1:
		return IconDown
	default:
		return IconFlat
	}
}

// SortHeaderNode heads the list with the active sort and portfolio totals.
type SortHeaderNode struct {
	Label       string
	Description string
	Tooltip     string
	State       sortview.State
}

// FundNode is one fund. Its bracket shows the value of the active sort
// field, or the daily gain in default order.
type FundNode struct {
	Code         string
	Name         string
	Label        string
	Bracket      string
	BracketValue float64
	// Highlight is set when the bracket holds a positive value.
	Highlight   bool
	Description string
	Icon        Icon
	Tooltip     string

	View    types.FundView
	Metrics calc.Metrics
	Details []DetailNode
}

// DetailNode is one "label: value" child line of a fund.
type DetailNode struct {
	Code  string
	Label string
	Value string
}

func (SortHeaderNode) Kind() Kind { return KindSortHeader }
func (FundNode) Kind() Kind       { return KindFund }
func (DetailNode) Kind() Kind     { return KindDetail }

func (SortHeaderNode) node() {}
func (FundNode) node()       {}
func (DetailNode) node()     {}

// String is the single-line form used by plain output.
func (d DetailNode) String() string { return d.Label + ": " + d.Value }

// Frame is everything a host needs to draw: the tree and the status line.
type Frame struct {
	Nodes   []Node
	Status  StatusLine
	Summary summary.Summary
	Sort    sortview.State
}

// Funds returns the fund nodes in display order.
func (f Frame) Funds() []FundNode {
	out := make([]FundNode, 0, len(f.Nodes))
	for _, n := range f.Nodes {
		if fn, ok := n.(FundNode); ok {
			out = append(out, fn)
		}
	}
	return out
}

// Header returns the sort header, if the list is not empty.
func (f Frame) Header() (SortHeaderNode, bool) {
	for _, n := range f.Nodes {
		if h, ok := n.(SortHeaderNode); ok {
			return h, true
		}
	}
	return SortHeaderNode{}, false
}

// BuildFrame sorts views by state and builds the tree and status line. An
// empty watchlist yields no nodes at all.
func BuildFrame(c *calc.Calculator, views []types.FundView, state sortview.State) Frame {
	sum := summary.Summarize(c, views)
	f := Frame{Summary: sum, Status: Status(sum), Sort: state}
	if len(views) == 0 {
		return f
	}
	sorted := sortview.Sort(c, views, state)
	f.Nodes = make([]Node, 0, len(sorted)+1)
	f.Nodes = append(f.Nodes, sortHeader(state, sum))
	for _, v := range sorted {
		f.Nodes = append(f.Nodes, fundNode(c, v, state))
	}
	return f
}

func sortHeader(state sortview.State, sum summary.Summary) SortHeaderNode {
	h := SortHeaderNode{State: state, Label: "Sort", Description: "default order"}
	if !state.IsDefault() {
		h.Label = fmt.Sprintf("Sort (%s %s)", state.Field.Label(), state.Arrow())
		h.Description = "toggle to change"
	}

	var b strings.Builder
	b.WriteString(overviewMarkdown(sum))
	b.WriteString("\n---\n\n")
	fmt.Fprintf(&b, "Sort: **%s**\n\n", strings.TrimSpace(state.Field.Label()+" "+state.Arrow()))
	b.WriteString("Toggle a field to cycle: descending → ascending → default\n")
	h.Tooltip = b.String()
	return h
}

func fundNode(c *calc.Calculator, v types.FundView, state sortview.State) FundNode {
	m := c.Metrics(v)
	n := FundNode{Code: v.Code, Name: v.Name, View: v, Metrics: m}

	daily := ""
	if v.Shares > 0 {
		daily = format.Signed(m.DailyGain)
	}
	change := format.Percent(v.ChangePercent)

	switch state.Field {
	case sortview.ChangePercent:
		n.Bracket = change
		n.BracketValue = v.ChangePercent
		n.Description = daily
	case sortview.HoldingAmount:
		n.Bracket = format.Money(m.HoldingAmount)
		n.BracketValue = m.HoldingAmount
		n.Description = strings.TrimSpace(change + "  " + daily)
	case sortview.HoldingGain:
		n.Bracket = format.Signed(m.HoldingGain)
		n.BracketValue = m.HoldingGain
		n.Description = strings.TrimSpace(change + "  " + daily)
	case sortview.HoldingGainRate:
		n.Bracket = format.Missing
		if v.Cost > 0 {
			n.Bracket = format.Percent(m.HoldingGainRate)
		}
		n.BracketValue = m.HoldingGainRate
		n.Description = strings.TrimSpace(change + "  " + daily)
	default:
		// default order and daily gain order
		if v.Shares > 0 {
			n.Bracket = daily
			n.BracketValue = m.DailyGain
		}
		n.Description = change
	}

	n.Label = v.Name
	if n.Bracket != "" {
		n.Label = "(" + n.Bracket + ") " + v.Name
	}
	n.Highlight = n.Bracket != "" && n.BracketValue > 0
	n.Icon = iconFor(v.ChangePercent)
	n.Tooltip = fundTooltip(v, m)
	n.Details = details(v, m)
	return n
}

func details(v types.FundView, m calc.Metrics) []DetailNode {
	rate := format.Missing
	if v.Cost > 0 {
		rate = format.Dot(m.HoldingGainRate) + " " + format.Percent(m.HoldingGainRate)
	}
	rows := [][2]string{
		{"Code", v.Code},
		{"Amount", format.Money(m.HoldingAmount)},
		{"Holding gain", format.Dot(m.HoldingGain) + " " + format.Signed(m.HoldingGain)},
		{"Gain rate", rate},
		{"Cost", format.Cost(v.Cost)},
		{"Estimate", format.NAV(v.EstimatedValue)},
		{"Change", format.Dot(v.ChangePercent) + " " + format.Percent(v.ChangePercent)},
		{"Daily gain", format.Dot(m.DailyGain) + " " + format.Signed(m.DailyGain)},
		{"Updated", format.Clock(v.UpdateTime)},
	}
	out := make([]DetailNode, len(rows))
	for i, r := range rows {
		out[i] = DetailNode{Code: v.Code, Label: r[0], Value: r[1]}
	}
	return out
}

func fundTooltip(v types.FundView, m calc.Metrics) string {
	rate := format.Missing
	if v.Cost > 0 {
		rate = format.Percent(m.HoldingGainRate)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "#### **%s** *%s*\n\n", v.Name, v.Code)
	b.WriteString("---\n\n")
	fmt.Fprintf(&b, "Amount: %s\n\n", format.Money(m.HoldingAmount))
	fmt.Fprintf(&b, "Holding gain: **%s**\n\n", format.Signed(m.HoldingGain))
	fmt.Fprintf(&b, "Gain rate: **%s**\n\n", rate)
	fmt.Fprintf(&b, "Cost: %s\n\n", format.Cost(v.Cost))
	b.WriteString("---\n\n")
	fmt.Fprintf(&b, "Estimate: %s\n\n", format.NAV(v.EstimatedValue))
	fmt.Fprintf(&b, "Change: **%s**\n\n", format.Percent(v.ChangePercent))
	fmt.Fprintf(&b, "Daily gain: **%s**\n\n", format.Signed(m.DailyGain))
	b.WriteString("---\n\n")
	fmt.Fprintf(&b, "⏰ Updated: %s\n", format.Clock(v.UpdateTime))
	return b.String()
}

func overviewMarkdown(s summary.Summary) string {
	var b strings.Builder
	b.WriteString("#### 📊 Holdings overview\n\n")
	b.WriteString("---\n\n")
	fmt.Fprintf(&b, "Amount: **%s**\n\n", format.Money(s.HoldingAmount))
	fmt.Fprintf(&b, "Daily gain: **%s**\n\n", format.Signed(s.DailyGain))
	fmt.Fprintf(&b, "Holding gain: **%s**\n\n", format.Signed(s.HoldingGain))
	fmt.Fprintf(&b, "Holding gain rate: **%s**\n\n", format.Percent(s.HoldingGainRate))
	fmt.Fprintf(&b, "Up %d (%s) · Down %d (%s)\n", s.UpCount, format.Signed(s.UpSum), s.DownCount, format.Signed(s.DownSum))
	return b.String()
}
