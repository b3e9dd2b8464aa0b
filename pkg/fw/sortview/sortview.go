// Package sortview holds the persisted sort mode of the fund list and applies
// it to views.
package sortview

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/komsit37/fw/pkg/fw/calc"
	"github.com/komsit37/fw/pkg/fw/types"
)

// Direction of a non-default sort.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// State is the active sort. The zero value is the default order.
type State struct {
	Field Field
	Dir   Direction
}

// DefaultState keeps watchlist order.
var DefaultState = State{Field: Default}

func (s State) IsDefault() bool {
	return s.Field == "" || s.Field == Default
}

// String is the persisted form: "default" or "<field>_<dir>".
func (s State) String() string {
	if s.IsDefault() {
		return string(Default)
	}
	return string(s.Field) + "_" + string(s.Dir)
}

// Arrow is the direction marker shown next to the field label.
func (s State) Arrow() string {
	switch {
	case s.IsDefault():
		return ""
	case s.Dir == Asc:
		return "↑"
	default:
		return "↓"
	}
}

// ParseState parses the persisted form. An empty string is the default.
func ParseState(s string) (State, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == string(Default) {
		return DefaultState, nil
	}
	name, dir, ok := strings.Cut(s, "_")
	if !ok {
		return DefaultState, fmt.Errorf("sort mode %q: missing direction", s)
	}
	f, err := ParseField(name)
	if err != nil {
		return DefaultState, err
	}
	if f == Default {
		return DefaultState, nil
	}
	switch Direction(dir) {
	case Asc, Desc:
	default:
		return DefaultState, fmt.Errorf("sort mode %q: direction must be asc or desc", s)
	}
	return State{Field: f, Dir: Direction(dir)}, nil
}

// Next returns the state after toggling f: the same field cycles
// desc, asc, default; another field starts at desc.
func (s State) Next(f Field) State {
	if f == "" || f == Default {
		return DefaultState
	}
	if s.Field != f {
		return State{Field: f, Dir: Desc}
	}
	if s.Dir == Desc {
		return State{Field: f, Dir: Asc}
	}
	return DefaultState
}

// ModeStore persists the sort mode string.
type ModeStore interface {
	SortMode() (string, error)
	SetSortMode(string) error
}

// View is the process-wide sort state.
type View struct {
	store ModeStore
	log   zerolog.Logger

	mu        sync.Mutex
	state     State
	listeners []func(State)
}

// New loads the persisted mode. An unreadable or unknown mode falls back to
// the default order.
func New(st ModeStore, log zerolog.Logger) *View {
	v := &View{store: st, log: log.With().Str("component", "sortview").Logger(), state: DefaultState}
	raw, err := st.SortMode()
	if err != nil {
		v.log.Warn().Err(err).Msg("sort mode unreadable, using default")
		return v
	}
	s, err := ParseState(raw)
	if err != nil {
		v.log.Warn().Err(err).Msg("invalid sort mode, using default")
		return v
	}
	v.state = s
	return v
}

// State returns the active sort.
func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// IsDefault reports whether the list is in watchlist order.
func (v *View) IsDefault() bool {
	return v.State().IsDefault()
}

// Subscribe registers fn to be called after each change.
func (v *View) Subscribe(fn func(State)) {
	v.mu.Lock()
	v.listeners = append(v.listeners, fn)
	v.mu.Unlock()
}

// Toggle advances the sort for f and persists it.
func (v *View) Toggle(f Field) (State, error) {
	v.mu.Lock()
	next := v.state.Next(f)
	v.mu.Unlock()
	if err := v.Set(next); err != nil {
		return State{}, err
	}
	return next, nil
}

// Set persists s and makes it active. On a failed save the old state stays.
func (v *View) Set(s State) error {
	if s.IsDefault() {
		s = DefaultState
	}
	v.mu.Lock()
	if err := v.store.SetSortMode(s.String()); err != nil {
		v.mu.Unlock()
		return fmt.Errorf("save sort mode: %w", err)
	}
	v.state = s
	listeners := slices.Clone(v.listeners)
	v.mu.Unlock()

	for _, fn := range listeners {
		fn(s)
	}
	return nil
}

// Apply returns views sorted by the active state.
func (v *View) Apply(c *calc.Calculator, views []types.FundView) []types.FundView {
	return Sort(c, views, v.State())
}

// Sort returns a sorted copy of views. Ties and the default state keep the
// input order.
func Sort(c *calc.Calculator, views []types.FundView, s State) []types.FundView {
	out := slices.Clone(views)
	fi, ok := Registry[s.Field]
	if s.IsDefault() || !ok || fi.Key == nil {
		return out
	}

	keys := make(map[string]float64, len(out))
	for _, fv := range out {
		keys[fv.Code] = fi.Key(fv, c.Metrics(fv))
	}
	slices.SortStableFunc(out, func(a, b types.FundView) int {
		ka, kb := keys[a.Code], keys[b.Code]
		if s.Dir == Asc {
			return cmpFloat(ka, kb)
		}
		return cmpFloat(kb, ka)
	})
	return out
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
