package session

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/komsit37/fw/pkg/fw/types"
)

// HolidaySource fetches the remote holiday calendar.
type HolidaySource interface {
	Holidays(ctx context.Context) (types.HolidayCalendar, error)
}

// HolidayCache persists the last calendar that was fetched.
type HolidayCache interface {
	Holidays() (types.HolidayCalendar, error)
	SetHolidays(types.HolidayCalendar) error
}

// Load builds a Gate from the cached calendar, then tries to refresh it from
// src. Every failure is logged and leaves the previous data in place.
func Load(ctx context.Context, src HolidaySource, cache HolidayCache, log zerolog.Logger) *Gate {
	g := NewGate(nil)
	if cache != nil {
		cal, err := cache.Holidays()
		if err != nil {
			log.Warn().Err(err).Msg("read cached holiday calendar")
		} else {
			g.SetCalendar(cal)
		}
	}
	if src == nil {
		return g
	}
	cal, err := src.Holidays(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("refresh holiday calendar")
		return g
	}
	if len(cal) == 0 {
		log.Warn().Msg("remote holiday calendar is empty, keeping cache")
		return g
	}
	g.SetCalendar(cal)
	if cache != nil {
		if err := cache.SetHolidays(cal); err != nil {
			log.Warn().Err(err).Msg("save holiday calendar")
		}
	}
	log.Debug().Int("years", len(cal)).Msg("holiday calendar refreshed")
	return g
}
