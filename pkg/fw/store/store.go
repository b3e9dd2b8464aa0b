// Package store persists the watchlist, the sort mode and the cached holiday
// calendar.
package store

import (
	"fmt"

	"github.com/komsit37/fw/pkg/fw/types"
)

// Store is the persisted configuration. Writes are last-write-wins.
type Store interface {
	Funds() ([]types.FundConfig, error)
	SetFunds([]types.FundConfig) error
	SortMode() (string, error)
	SetSortMode(string) error
	Holidays() (types.HolidayCalendar, error)
	SetHolidays(types.HolidayCalendar) error
	Close() error
}

// Open returns the store for driver ("yaml" or "sqlite") at path.
func Open(driver, path string) (Store, error) {
	switch driver {
	case "", "yaml":
		return NewYAMLStore(path), nil
	case "sqlite":
		return OpenSQLStore(path)
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}
