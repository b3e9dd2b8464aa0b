package types

// FundConfig is one persisted watchlist entry. Numbers are kept as strings so
// the stored form round-trips with the import/export file unchanged.
type FundConfig struct {
	Code string `json:"code" yaml:"code" db:"code"`
	Num  string `json:"num" yaml:"num" db:"num"`
	Cost string `json:"cost" yaml:"cost" db:"cost"`
}

// Snapshot is the latest upstream valuation of a fund.
type Snapshot struct {
	Code string
	Name string
	// NetValue is the last officially published NAV.
	NetValue float64
	// EstimatedValue is the intraday estimate; nil when upstream has none.
	EstimatedValue *float64
	// ChangePercent is the displayed change: the estimate's, or the real one
	// once settled.
	ChangePercent float64
	// RealChangePercent is the settled day-over-day change of NetValue.
	RealChangePercent float64
	// Settled reports that NetValue already reflects today's close.
	Settled    bool
	UpdateTime string
}

// FundView merges a watchlist position with its snapshot. It is rebuilt on
// every refresh or edit and never persisted.
type FundView struct {
	Snapshot
	Shares float64
	Cost   float64
}

// HistoryRecord is one published NAV.
type HistoryRecord struct {
	Date          string  `json:"date"`
	NetValue      float64 `json:"netValue"`
	ChangePercent float64 `json:"changePercent"`
}

// SearchResult is a fund matched by a keyword search.
type SearchResult struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Holiday describes one calendar day in the exchange holiday file.
type Holiday struct {
	Holiday bool   `json:"holiday" yaml:"holiday"`
	Name    string `json:"name,omitempty" yaml:"name,omitempty"`
	Date    string `json:"date,omitempty" yaml:"date,omitempty"`
}

// HolidayCalendar maps year ("2024") to "MM-DD" to the day's entry.
type HolidayCalendar map[string]map[string]Holiday

// Position is a watchlist entry with its numbers parsed.
type Position struct {
	Code   string
	Shares float64
	Cost   float64
}
