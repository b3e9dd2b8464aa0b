package sortview

import (
	"sort"
	"strings"

	"github.com/komsit37/fw/pkg/fw/calc"
	"github.com/komsit37/fw/pkg/fw/types"
)

// Field is a sortable column.
type Field string

const (
	Default         Field = "default"
	ChangePercent   Field = "changePercent"
	DailyGain       Field = "dailyGain"
	HoldingAmount   Field = "holdingAmount"
	HoldingGain     Field = "holdingGain"
	HoldingGainRate Field = "holdingGainRate"
)

// Key extracts the sort key of a view from its computed metrics.
type Key func(v types.FundView, m calc.Metrics) float64

// FieldInfo describes a sortable field.
type FieldInfo struct {
	Field Field
	Label string
	// Aliases are accepted by ParseField in addition to the field name.
	Aliases []string
	Key     Key
}

// Registry maps fields to their label and key. Default has no key.
var Registry = map[Field]FieldInfo{}

func init() {
	register(FieldInfo{Field: Default, Label: "Default"})
	register(FieldInfo{
		Field: ChangePercent, Label: "Change", Aliases: []string{"chg%", "chg", "change"},
		Key: func(v types.FundView, _ calc.Metrics) float64 { return v.ChangePercent },
	})
	register(FieldInfo{
		Field: DailyGain, Label: "Daily gain", Aliases: []string{"daily"},
		Key: func(_ types.FundView, m calc.Metrics) float64 { return m.DailyGain },
	})
	register(FieldInfo{
		Field: HoldingAmount, Label: "Amount", Aliases: []string{"amount"},
		Key: func(_ types.FundView, m calc.Metrics) float64 { return m.HoldingAmount },
	})
	register(FieldInfo{
		Field: HoldingGain, Label: "Holding gain", Aliases: []string{"gain"},
		Key: func(_ types.FundView, m calc.Metrics) float64 { return m.HoldingGain },
	})
	register(FieldInfo{
		Field: HoldingGainRate, Label: "Gain rate", Aliases: []string{"rate", "gain%"},
		Key: func(_ types.FundView, m calc.Metrics) float64 { return m.HoldingGainRate },
	})
}

func register(fi FieldInfo) { Registry[fi.Field] = fi }

// Label returns the display name of f.
func (f Field) Label() string {
	if fi, ok := Registry[f]; ok {
		return fi.Label
	}
	return string(f)
}

// ParseField resolves a field name or alias, case-insensitively.
func ParseField(s string) (Field, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for f, fi := range Registry {
		if strings.ToLower(string(f)) == s {
			return f, nil
		}
		for _, a := range fi.Aliases {
			if a == s {
				return f, nil
			}
		}
	}
	return "", &UnknownFieldError{Name: s, Available: FieldNames()}
}

// UnknownFieldError reports an unknown sort field or mode.
type UnknownFieldError struct {
	Name      string
	Available []string
}

func (e *UnknownFieldError) Error() string {
	return "unknown sort field: " + e.Name + "; available: " + strings.Join(e.Available, ", ")
}

// FieldNames lists the sortable field names in sorted order.
func FieldNames() []string {
	keys := make([]string, 0, len(Registry))
	for k := range Registry {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	return keys
}
