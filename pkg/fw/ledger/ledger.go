// Package ledger owns the watchlist: which funds are tracked, in which order,
// and the position held in each.
package ledger

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/komsit37/fw/pkg/fw/types"
)

// FundStore persists the ordered watchlist.
type FundStore interface {
	Funds() ([]types.FundConfig, error)
	SetFunds([]types.FundConfig) error
}

// Mode selects how Import combines records with the current watchlist.
type Mode string

const (
	Merge   Mode = "merge"
	Replace Mode = "replace"
)

var errUnchanged = errors.New("unchanged")

// Listener is called with the new watchlist after every saved change.
type Listener func([]types.FundConfig)

// Option configures a Ledger.
type Option func(*Ledger)

// WithReorderGuard allows Reorder only while guard returns true.
func WithReorderGuard(guard func() bool) Option {
	return func(l *Ledger) { l.canReorder = guard }
}

// Ledger is the ordered watchlist. Every mutation is saved to the store
// before listeners are notified; a failed save leaves the ledger unchanged.
type Ledger struct {
	store      FundStore
	log        zerolog.Logger
	canReorder func() bool

	mu        sync.Mutex
	funds     []types.FundConfig
	listeners []Listener
}

// New loads the watchlist from st. A store that cannot be read is treated as
// an empty watchlist.
func New(st FundStore, log zerolog.Logger, opts ...Option) *Ledger {
	l := &Ledger{store: st, log: log.With().Str("component", "ledger").Logger()}
	for _, o := range opts {
		o(l)
	}
	funds, err := st.Funds()
	if err != nil {
		l.log.Warn().Err(err).Msg("watchlist unreadable, starting empty")
		funds = nil
	}
	l.funds = funds
	return l
}

// Subscribe registers fn to be called after each change.
func (l *Ledger) Subscribe(fn Listener) {
	l.mu.Lock()
	l.listeners = append(l.listeners, fn)
	l.mu.Unlock()
}

// Export returns a copy of the watchlist as stored.
func (l *Ledger) Export() []types.FundConfig {
	l.mu.Lock()
	defer l.mu.Unlock()
	return clone(l.funds)
}

// Codes returns the fund codes in watchlist order.
func (l *Ledger) Codes() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	codes := make([]string, len(l.funds))
	for i, f := range l.funds {
		codes[i] = f.Code
	}
	return codes
}

// Positions returns the watchlist with numbers parsed.
func (l *Ledger) Positions() []types.Position {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]types.Position, len(l.funds))
	for i, f := range l.funds {
		out[i] = toPosition(f)
	}
	return out
}

// Position returns the position for code.
func (l *Ledger) Position(code string) (types.Position, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := indexOf(l.funds, code)
	if i < 0 {
		return types.Position{}, false
	}
	return toPosition(l.funds[i]), true
}

// Add appends code with an empty position.
func (l *Ledger) Add(code string) error {
	if code == "" {
		return &ValidationError{Field: "code", Reason: "must not be empty"}
	}
	return l.mutate(func(funds []types.FundConfig) ([]types.FundConfig, error) {
		if indexOf(funds, code) >= 0 {
			return nil, fmt.Errorf("%s: %w", code, ErrAlreadyExists)
		}
		return append(funds, types.FundConfig{Code: code, Num: "0", Cost: "0"}), nil
	})
}

// Remove deletes code. Removing an absent code is a no-op.
func (l *Ledger) Remove(code string) error {
	return l.mutate(func(funds []types.FundConfig) ([]types.FundConfig, error) {
		i := indexOf(funds, code)
		if i < 0 {
			return nil, errUnchanged
		}
		return append(funds[:i], funds[i+1:]...), nil
	})
}

// Buy adds shares bought at price and moves the cost to the weighted average.
func (l *Ledger) Buy(code string, price, shares decimal.Decimal) error {
	if !shares.IsPositive() {
		return &ValidationError{Field: "shares", Reason: "must be positive"}
	}
	if price.IsNegative() {
		return &ValidationError{Field: "price", Reason: "must not be negative"}
	}
	return l.mutate(func(funds []types.FundConfig) ([]types.FundConfig, error) {
		i := indexOf(funds, code)
		if i < 0 {
			return nil, fmt.Errorf("%s: %w", code, ErrNotFound)
		}
		oldShares := parseOrZero(funds[i].Num)
		oldCost := parseOrZero(funds[i].Cost)
		newShares := oldShares.Add(shares)
		newCost := decimal.Zero
		if !newShares.IsZero() {
			total := oldCost.Mul(oldShares).Add(price.Mul(shares))
			newCost = total.Div(newShares)
		}
		funds[i].Num = newShares.StringFixed(2)
		funds[i].Cost = newCost.StringFixed(4)
		return funds, nil
	})
}

// Sell removes shares. The cost basis is kept while shares remain and reset
// once the position is fully exited.
func (l *Ledger) Sell(code string, shares decimal.Decimal) error {
	if !shares.IsPositive() {
		return &ValidationError{Field: "shares", Reason: "must be positive"}
	}
	return l.mutate(func(funds []types.FundConfig) ([]types.FundConfig, error) {
		i := indexOf(funds, code)
		if i < 0 {
			return nil, fmt.Errorf("%s: %w", code, ErrNotFound)
		}
		held := parseOrZero(funds[i].Num)
		if shares.GreaterThan(held) {
			return nil, &ValidationError{Field: "shares", Reason: "exceeds current holding " + held.String()}
		}
		left := held.Sub(shares)
		if left.IsPositive() {
			funds[i].Num = left.StringFixed(2)
		} else {
			funds[i].Num = "0"
			funds[i].Cost = "0"
		}
		return funds, nil
	})
}

// Edit overwrites shares and cost.
func (l *Ledger) Edit(code string, shares, cost decimal.Decimal) error {
	if shares.IsNegative() {
		return &ValidationError{Field: "shares", Reason: "must not be negative"}
	}
	if cost.IsNegative() {
		return &ValidationError{Field: "cost", Reason: "must not be negative"}
	}
	return l.mutate(func(funds []types.FundConfig) ([]types.FundConfig, error) {
		i := indexOf(funds, code)
		if i < 0 {
			return nil, fmt.Errorf("%s: %w", code, ErrNotFound)
		}
		funds[i].Num = shares.StringFixed(2)
		funds[i].Cost = cost.StringFixed(4)
		return funds, nil
	})
}

// Reorder moves code to sit immediately before beforeCode, or to the end when
// beforeCode is empty.
func (l *Ledger) Reorder(code, beforeCode string) error {
	if l.canReorder != nil && !l.canReorder() {
		return ErrReorderSorted
	}
	if code == beforeCode {
		return nil
	}
	return l.mutate(func(funds []types.FundConfig) ([]types.FundConfig, error) {
		from := indexOf(funds, code)
		if from < 0 {
			return nil, fmt.Errorf("%s: %w", code, ErrNotFound)
		}
		if beforeCode != "" && indexOf(funds, beforeCode) < 0 {
			return nil, fmt.Errorf("%s: %w", beforeCode, ErrNotFound)
		}
		moved := funds[from]
		funds = append(funds[:from], funds[from+1:]...)
		to := len(funds)
		if beforeCode != "" {
			to = indexOf(funds, beforeCode)
		}
		funds = append(funds, types.FundConfig{})
		copy(funds[to+1:], funds[to:])
		funds[to] = moved
		return funds, nil
	})
}

// Import combines records with the watchlist. Replace discards the current
// list; Merge updates existing codes in place and appends new ones.
func (l *Ledger) Import(records []types.FundConfig, mode Mode) error {
	switch mode {
	case Replace, Merge:
	default:
		return &ValidationError{Field: "mode", Reason: "must be merge or replace"}
	}
	return l.mutate(func(funds []types.FundConfig) ([]types.FundConfig, error) {
		if mode == Replace {
			return dedupe(records), nil
		}
		for _, r := range records {
			if i := indexOf(funds, r.Code); i >= 0 {
				funds[i].Num = r.Num
				funds[i].Cost = r.Cost
				continue
			}
			funds = append(funds, r)
		}
		return funds, nil
	})
}

// mutate applies fn to a copy of the watchlist, saves the result and
// notifies listeners.
func (l *Ledger) mutate(fn func([]types.FundConfig) ([]types.FundConfig, error)) error {
	l.mu.Lock()
	next, err := fn(clone(l.funds))
	if errors.Is(err, errUnchanged) {
		l.mu.Unlock()
		return nil
	}
	if err != nil {
		l.mu.Unlock()
		return err
	}
	if err := l.store.SetFunds(next); err != nil {
		l.mu.Unlock()
		return fmt.Errorf("save watchlist: %w", err)
	}
	l.funds = next
	listeners := append([]Listener(nil), l.listeners...)
	snapshot := clone(next)
	l.mu.Unlock()

	for _, fn := range listeners {
		fn(snapshot)
	}
	return nil
}

func toPosition(f types.FundConfig) types.Position {
	return types.Position{
		Code:   f.Code,
		Shares: parseOrZero(f.Num).InexactFloat64(),
		Cost:   parseOrZero(f.Cost).InexactFloat64(),
	}
}

func indexOf(funds []types.FundConfig, code string) int {
	for i, f := range funds {
		if f.Code == code {
			return i
		}
	}
	return -1
}

func clone(funds []types.FundConfig) []types.FundConfig {
	out := make([]types.FundConfig, len(funds))
	copy(out, funds)
	return out
}
