package upstream

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/komsit37/fw/pkg/fw/types"
)

// number decodes a JSON number or numeric string. Empty strings, "--", null
// and anything unparsable decode as absent instead of failing the record.
type number struct {
	v  float64
	ok bool
}

func (n *number) UnmarshalJSON(b []byte) error {
	*n = number{}
	s := strings.TrimSpace(strings.Trim(string(b), `"`))
	switch s {
	case "", "null", "--":
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	*n = number{v: f, ok: true}
	return nil
}

// or returns the value, or def when absent.
func (n number) or(def float64) float64 {
	if !n.ok {
		return def
	}
	return n.v
}

func (n number) ptr() *float64 {
	if !n.ok {
		return nil
	}
	v := n.v
	return &v
}

// estimateResponse keeps records raw so one malformed record does not fail
// the batch.
type estimateResponse struct {
	Datas []json.RawMessage `json:"Datas"`
}

type estimateRecord struct {
	Code      string `json:"FCODE"`
	ShortName string `json:"SHORTNAME"`
	// NAVDate is the publication date of NAV ("2006-01-02").
	NAVDate string `json:"PDATE"`
	NAV     number `json:"NAV"`
	NAVChg  number `json:"NAVCHGRT"`
	// intraday estimate
	GSZ    number `json:"GSZ"`
	GSZZL  number `json:"GSZZL"`
	GZTime string `json:"GZTIME"`
}

// snapshot converts a record. A record is settled once its NAV date matches
// the date of the estimate timestamp.
func (r estimateRecord) snapshot() types.Snapshot {
	s := types.Snapshot{
		Code:              r.Code,
		Name:              r.ShortName,
		NetValue:          r.NAV.or(0),
		RealChangePercent: r.NAVChg.or(0),
		UpdateTime:        r.GZTime,
	}
	if s.Name == "" {
		s.Name = r.Code
	}
	if r.NAVDate != "" && len(r.GZTime) >= 10 && r.NAVDate == r.GZTime[:10] {
		s.Settled = true
	}

	if s.Settled {
		nav := s.NetValue
		s.EstimatedValue = &nav
		s.ChangePercent = s.RealChangePercent
		return s
	}
	s.EstimatedValue = r.GSZ.ptr()
	s.ChangePercent = r.GSZZL.or(0)
	if s.UpdateTime == "" {
		s.UpdateTime = r.NAVDate
	}
	return s
}

type searchResponse struct {
	Datas []struct {
		Code string `json:"CODE"`
		Name string `json:"NAME"`
	} `json:"Datas"`
}

type historyResponse struct {
	Data struct {
		LSJZList []struct {
			Date   string `json:"FSRQ"`
			NAV    number `json:"DWJZ"`
			Change number `json:"JZZZL"`
		} `json:"LSJZList"`
	} `json:"Data"`
}

type holidayResponse struct {
	Data types.HolidayCalendar `json:"data"`
}
