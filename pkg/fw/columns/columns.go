package columns

import (
	"fmt"
	"sort"
	"strings"

	"github.com/komsit37/fw/pkg/fw/calc"
	"github.com/komsit37/fw/pkg/fw/format"
	"github.com/komsit37/fw/pkg/fw/types"
)

// Row is one fund with its computed metrics.
type Row struct {
	View    types.FundView
	Metrics calc.Metrics
}

// Cell is a rendered value. Sign drives up/down coloring; 0 is uncolored.
type Cell struct {
	Text string
	Sign int
}

// Resolver renders one column of a row.
type Resolver func(r Row) Cell

// Def describes a column.
type Def struct {
	Key     string
	Header  string
	Numeric bool
	Resolve Resolver
}

// Registry maps column keys to definitions.
var Registry = map[string]Def{}

func register(d Def) { Registry[d.Key] = d }

func plain(s string) Cell { return Cell{Text: s} }

func init() {
	register(Def{Key: "code", Header: "CODE", Resolve: func(r Row) Cell { return plain(r.View.Code) }})
	register(Def{Key: "name", Header: "NAME", Resolve: func(r Row) Cell { return plain(r.View.Name) }})
	register(Def{Key: "nav", Header: "NAV", Numeric: true, Resolve: func(r Row) Cell {
		nav := r.View.NetValue
		return plain(format.NAV(&nav))
	}})
	register(Def{Key: "est", Header: "EST", Numeric: true, Resolve: func(r Row) Cell {
		c := plain(format.NAV(r.View.EstimatedValue))
		if r.View.EstimatedValue != nil {
			c.Sign = format.Sign(*r.View.EstimatedValue - r.View.NetValue)
		}
		return c
	}})
	register(Def{Key: "chg%", Header: "CHG%", Numeric: true, Resolve: func(r Row) Cell {
		return Cell{Text: format.Percent(r.View.ChangePercent), Sign: format.Sign(r.View.ChangePercent)}
	}})
	// daily gain, blank for watch-only funds
	register(Def{Key: "daily", Header: "DAILY", Numeric: true, Resolve: func(r Row) Cell {
		if r.View.Shares <= 0 {
			return plain("")
		}
		return Cell{Text: format.Signed(r.Metrics.DailyGain), Sign: format.Sign(r.Metrics.DailyGain)}
	}})
	register(Def{Key: "amount", Header: "AMOUNT", Numeric: true, Resolve: func(r Row) Cell {
		if r.View.Shares <= 0 {
			return plain("")
		}
		return plain(format.Money(r.Metrics.HoldingAmount))
	}})
	register(Def{Key: "gain", Header: "GAIN", Numeric: true, Resolve: func(r Row) Cell {
		if r.View.Shares <= 0 {
			return plain("")
		}
		return Cell{Text: format.Signed(r.Metrics.HoldingGain), Sign: format.Sign(r.Metrics.HoldingGain)}
	}})
	register(Def{Key: "rate", Header: "GAIN%", Numeric: true, Resolve: func(r Row) Cell {
		if r.View.Cost <= 0 {
			return plain(format.Missing)
		}
		return Cell{Text: format.Percent(r.Metrics.HoldingGainRate), Sign: format.Sign(r.Metrics.HoldingGainRate)}
	}})
	register(Def{Key: "shares", Header: "SHARES", Numeric: true, Resolve: func(r Row) Cell {
		return plain(fmt.Sprintf("%.2f", r.View.Shares))
	}})
	register(Def{Key: "cost", Header: "COST", Numeric: true, Resolve: func(r Row) Cell {
		return plain(format.Cost(r.View.Cost))
	}})
	register(Def{Key: "updated", Header: "UPDATED", Resolve: func(r Row) Cell {
		return plain(format.Clock(r.View.UpdateTime))
	}})
	register(Def{Key: "settled", Header: "SETTLED", Resolve: func(r Row) Cell {
		if r.View.Settled {
			return plain("✓")
		}
		return plain("")
	}})
}

// Compute returns the columns to show: explicit keys deduplicated in order,
// or the default set.
func Compute(explicit []string) ([]string, error) {
	if len(explicit) == 0 {
		return ExpandSets([]string{"default"})
	}
	seen := map[string]struct{}{}
	out := make([]string, 0, len(explicit))
	for _, k := range explicit {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		if _, ok := Registry[k]; !ok {
			return nil, &UnknownColumnError{Name: k, Available: availableColumns()}
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out, nil
}

// RenderValue resolves col for r. Unknown columns render empty.
func RenderValue(col string, r Row) Cell {
	if d, ok := Registry[col]; ok {
		return d.Resolve(r)
	}
	return Cell{}
}

// UnknownColumnError reports an unknown column key.
type UnknownColumnError struct {
	Name      string
	Available []string
}

func (e *UnknownColumnError) Error() string {
	return "unknown column: " + e.Name + "; available: " + strings.Join(e.Available, ", ")
}

func availableColumns() []string {
	keys := make([]string, 0, len(Registry))
	for k := range Registry {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
