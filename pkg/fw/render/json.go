package render

import (
	"io"

	"github.com/bytedance/sonic"

	"github.com/komsit37/fw/pkg/fw/columns"
)

// jsonModel is the output shape for JSONRenderer.
type jsonModel struct {
	Sort    string     `json:"sort"`
	Status  string     `json:"status"`
	Summary jsonTotals `json:"summary"`
	Funds   []jsonFund `json:"funds"`
}

type jsonTotals struct {
	HoldingAmount   float64 `json:"holdingAmount"`
	DailyGain       float64 `json:"dailyGain"`
	DailyGainRate   float64 `json:"dailyGainRate"`
	HoldingGain     float64 `json:"holdingGain"`
	HoldingGainRate float64 `json:"holdingGainRate"`
	Up              int     `json:"up"`
	Down            int     `json:"down"`
}

type jsonFund struct {
	Code              string            `json:"code"`
	Name              string            `json:"name"`
	Label             string            `json:"label"`
	Description       string            `json:"description,omitempty"`
	Icon              Icon              `json:"icon"`
	NetValue          float64           `json:"netValue"`
	EstimatedValue    *float64          `json:"estimatedValue"`
	ChangePercent     float64           `json:"changePercent"`
	RealChangePercent float64           `json:"realChangePercent"`
	Settled           bool              `json:"settled"`
	UpdateTime        string            `json:"updateTime"`
	Shares            float64           `json:"shares"`
	Cost              float64           `json:"cost"`
	HoldingAmount     float64           `json:"holdingAmount"`
	DailyGain         float64           `json:"dailyGain"`
	HoldingGain       float64           `json:"holdingGain"`
	HoldingGainRate   float64           `json:"holdingGainRate"`
	Columns           map[string]string `json:"columns,omitempty"`
	Details           []jsonDetail      `json:"details,omitempty"`
}

type jsonDetail struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type JSONRenderer struct{}

func NewJSONRenderer() *JSONRenderer { return &JSONRenderer{} }

func (r *JSONRenderer) Render(w io.Writer, f Frame, opts RenderOptions) error {
	s := f.Summary
	out := jsonModel{
		Sort:   f.Sort.String(),
		Status: f.Status.Text,
		Summary: jsonTotals{
			HoldingAmount:   s.HoldingAmount,
			DailyGain:       s.DailyGain,
			DailyGainRate:   s.DailyGainRate,
			HoldingGain:     s.HoldingGain,
			HoldingGainRate: s.HoldingGainRate,
			Up:              s.UpCount,
			Down:            s.DownCount,
		},
		Funds: []jsonFund{},
	}

	var cols []string
	if len(opts.Columns) > 0 {
		var err error
		if cols, err = columns.Compute(opts.Columns); err != nil {
			return err
		}
	}

	for _, fn := range f.Funds() {
		v, m := fn.View, fn.Metrics
		jf := jsonFund{
			Code:              fn.Code,
			Name:              fn.Name,
			Label:             fn.Label,
			Description:       fn.Description,
			Icon:              fn.Icon,
			NetValue:          v.NetValue,
			EstimatedValue:    v.EstimatedValue,
			ChangePercent:     v.ChangePercent,
			RealChangePercent: v.RealChangePercent,
			Settled:           v.Settled,
			UpdateTime:        v.UpdateTime,
			Shares:            v.Shares,
			Cost:              v.Cost,
			HoldingAmount:     m.HoldingAmount,
			DailyGain:         m.DailyGain,
			HoldingGain:       m.HoldingGain,
			HoldingGainRate:   m.HoldingGainRate,
		}
		if len(cols) > 0 {
			jf.Columns = make(map[string]string, len(cols))
			for _, c := range cols {
				jf.Columns[c] = columns.RenderValue(c, columns.Row{View: v, Metrics: m}).Text
			}
		}
		if opts.Details {
			for _, d := range fn.Details {
				jf.Details = append(jf.Details, jsonDetail{Label: d.Label, Value: d.Value})
			}
		}
		out.Funds = append(out.Funds, jf)
	}

	var (
		data []byte
		err  error
	)
	if opts.PrettyJSON {
		data, err = sonic.ConfigStd.MarshalIndent(out, "", "  ")
	} else {
		data, err = sonic.ConfigStd.Marshal(out)
	}
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}
