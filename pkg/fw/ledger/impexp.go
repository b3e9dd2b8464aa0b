package ledger

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/komsit37/fw/pkg/fw/types"
)

// exportFile is the shape written by MarshalExport.
type exportFile struct {
	Funds []types.FundConfig `json:"funds"`
}

// ParseImport reads an import file. The top level is either a bare array or
// an object with a "funds" array. Each element takes code, num (or shares)
// and cost as strings or numbers; elements without a code are dropped. A
// repeated code keeps its first position and takes the last values.
func ParseImport(data []byte) ([]types.FundConfig, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var root any
	if err := dec.Decode(&root); err != nil {
		return nil, &ImportFormatError{Reason: err.Error()}
	}

	var list []any
	switch r := root.(type) {
	case []any:
		list = r
	case map[string]any:
		arr, ok := r["funds"].([]any)
		if !ok {
			return nil, &ImportFormatError{Reason: "missing funds array"}
		}
		list = arr
	default:
		return nil, &ImportFormatError{Reason: "expected an array or an object with funds"}
	}

	out := make([]types.FundConfig, 0, len(list))
	for _, e := range list {
		m, ok := e.(map[string]any)
		if !ok {
			continue
		}
		code := field(m, "", "code")
		if code == "" {
			continue
		}
		out = append(out, types.FundConfig{
			Code: code,
			Num:  field(m, "0", "num", "shares"),
			Cost: field(m, "0", "cost"),
		})
	}
	if len(out) == 0 {
		return nil, ErrNoFunds
	}
	return dedupe(out), nil
}

// dedupe collapses repeated codes into the first occurrence, last values
// winning.
func dedupe(records []types.FundConfig) []types.FundConfig {
	out := make([]types.FundConfig, 0, len(records))
	at := make(map[string]int, len(records))
	for _, r := range records {
		if i, ok := at[r.Code]; ok {
			out[i] = r
			continue
		}
		at[r.Code] = len(out)
		out = append(out, r)
	}
	return out
}

// field returns the first present key as a string, or def.
func field(m map[string]any, def string, keys ...string) string {
	for _, k := range keys {
		v, ok := m[k]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case string:
			return t
		case json.Number:
			return t.String()
		default:
			return fmt.Sprint(t)
		}
	}
	return def
}

// MarshalExport renders funds as {"funds": [...]}.
func MarshalExport(funds []types.FundConfig) ([]byte, error) {
	if funds == nil {
		funds = []types.FundConfig{}
	}
	data, err := json.MarshalIndent(exportFile{Funds: funds}, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
