// Package app wires the watchlist, the upstream data and the sort into one
// refreshable fund list, and owns the periodic refresh timer.
package app

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/komsit37/fw/pkg/fw/aggregate"
	"github.com/komsit37/fw/pkg/fw/calc"
	"github.com/komsit37/fw/pkg/fw/ledger"
	"github.com/komsit37/fw/pkg/fw/render"
	"github.com/komsit37/fw/pkg/fw/session"
	"github.com/komsit37/fw/pkg/fw/sortview"
	"github.com/komsit37/fw/pkg/fw/types"
)

// Option configures an App.
type Option func(*App)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

// WithTradingHoursOnly makes scheduled ticks skip refreshing outside the
// trading window.
func WithTradingHoursOnly(on bool) Option {
	return func(a *App) { a.tradingOnly = on }
}

// App holds the last fund list and refreshes it on demand or on a timer.
// Create it with New and release it with Close.
type App struct {
	ledger *ledger.Ledger
	sort   *sortview.View
	agg    *aggregate.Aggregator
	gate   *session.Gate
	calc   *calc.Calculator
	now    func() time.Time
	log    zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	views     []types.FundView
	listeners []func(render.Frame)

	schedMu     sync.Mutex
	cron        *cron.Cron
	entry       cron.EntryID
	interval    time.Duration
	tradingOnly bool
	started     bool
	closeOnce   sync.Once
}

// New builds an App. Until the first refresh every fund shows a pending
// placeholder.
func New(l *ledger.Ledger, sv *sortview.View, agg *aggregate.Aggregator, gate *session.Gate, log zerolog.Logger, opts ...Option) *App {
	a := &App{
		ledger: l,
		sort:   sv,
		agg:    agg,
		gate:   gate,
		now:    time.Now,
		log:    log.With().Str("component", "app").Logger(),
		cron:   cron.New(cron.WithLocation(session.CST)),
	}
	for _, o := range opts {
		o(a)
	}
	a.calc = calc.New(gate, a.now)
	a.ctx, a.cancel = context.WithCancel(context.Background())
	a.views = agg.Reconcile(l.Positions(), nil)

	l.Subscribe(func([]types.FundConfig) { a.reconcile() })
	sv.Subscribe(func(sortview.State) { a.notify() })
	return a
}

func (a *App) Ledger() *ledger.Ledger            { return a.ledger }
func (a *App) Sort() *sortview.View              { return a.sort }
func (a *App) Aggregator() *aggregate.Aggregator { return a.agg }
func (a *App) Calculator() *calc.Calculator      { return a.calc }
func (a *App) Market() session.Status            { return a.gate.Status(a.now()) }

// Holidays is the calendar the trading gate currently uses.
func (a *App) Holidays() types.HolidayCalendar { return a.gate.Calendar() }

// Subscribe registers fn to receive every new frame.
func (a *App) Subscribe(fn func(render.Frame)) {
	a.mu.Lock()
	a.listeners = append(a.listeners, fn)
	a.mu.Unlock()
}

// Refresh fetches all codes and rebuilds the list. The fetch holds no lock;
// the result is merged with the positions current when it completes, so
// edits made meanwhile are kept.
func (a *App) Refresh(ctx context.Context) {
	codes := a.ledger.Codes()
	start := a.now()
	fresh := a.agg.Fetch(ctx, codes)

	a.mu.Lock()
	a.views = a.agg.Merge(a.ledger.Positions(), fresh, a.views)
	n := len(a.views)
	a.mu.Unlock()

	a.log.Debug().Int("funds", n).Int("fetched", len(fresh)).Dur("took", a.now().Sub(start)).Msg("refreshed")
	a.notify()
}

// Load refreshes and returns the resulting frame.
func (a *App) Load(ctx context.Context) (render.Frame, error) {
	a.Refresh(ctx)
	if err := ctx.Err(); err != nil {
		return render.Frame{}, err
	}
	return a.Frame(), nil
}

// Views returns a copy of the current list in watchlist order.
func (a *App) Views() []types.FundView {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.views)
}

// Frame builds the tree and status line from the current list and sort.
func (a *App) Frame() render.Frame {
	return render.BuildFrame(a.calc, a.Views(), a.sort.State())
}

func (a *App) reconcile() {
	a.mu.Lock()
	a.views = a.agg.Reconcile(a.ledger.Positions(), a.views)
	a.mu.Unlock()
	a.notify()
}

func (a *App) notify() {
	a.mu.Lock()
	listeners := slices.Clone(a.listeners)
	a.mu.Unlock()
	if len(listeners) == 0 {
		return
	}
	f := a.Frame()
	for _, fn := range listeners {
		fn(f)
	}
}

// Schedule (re)starts the periodic refresh with interval.
func (a *App) Schedule(interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("refresh interval %s: must be positive", interval)
	}
	a.schedMu.Lock()
	defer a.schedMu.Unlock()
	if a.ctx.Err() != nil {
		return fmt.Errorf("app closed")
	}

	if a.entry != 0 {
		a.cron.Remove(a.entry)
		a.entry = 0
	}
	id, err := a.cron.AddFunc("@every "+interval.String(), a.tick)
	if err != nil {
		return fmt.Errorf("schedule refresh: %w", err)
	}
	a.entry = id
	a.interval = interval
	if !a.started {
		a.cron.Start()
		a.started = true
	}
	a.log.Info().Dur("interval", interval).Bool("trading_hours_only", a.tradingOnly).Msg("refresh scheduled")
	return nil
}

// Reconfigure applies new timer settings and refreshes right away. The timer
// is only rebuilt when the interval changed.
func (a *App) Reconfigure(interval time.Duration, tradingOnly bool) error {
	a.schedMu.Lock()
	a.tradingOnly = tradingOnly
	same := a.interval == interval
	a.schedMu.Unlock()
	if !same {
		if err := a.Schedule(interval); err != nil {
			return err
		}
	}
	if a.ctx.Err() == nil {
		a.Refresh(a.ctx)
	}
	return nil
}

func (a *App) tick() {
	a.schedMu.Lock()
	tradingOnly := a.tradingOnly
	a.schedMu.Unlock()

	if tradingOnly && !a.gate.IsDuringTradingWindow(a.now()) {
		a.log.Debug().Msg("outside trading window, skipping refresh")
		return
	}
	a.Refresh(a.ctx)
}

// Close stops the timer and waits for a running tick. It is safe to call
// more than once.
func (a *App) Close() {
	a.closeOnce.Do(func() {
		a.schedMu.Lock()
		a.cancel()
		started := a.started
		a.schedMu.Unlock()
		if started {
			<-a.cron.Stop().Done()
		}
		a.log.Debug().Msg("closed")
	})
}
