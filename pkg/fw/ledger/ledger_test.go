package ledger

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/komsit37/fw/pkg/fw/types"
)

type memStore struct {
	funds   []types.FundConfig
	readErr error
	failSet bool
	saves   int
}

func (m *memStore) Funds() ([]types.FundConfig, error) { return m.funds, m.readErr }
func (m *memStore) SetFunds(f []types.FundConfig) error {
	if m.failSet {
		return errors.New("disk full")
	}
	m.funds = f
	m.saves++
	return nil
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newLedger(t *testing.T, funds ...types.FundConfig) (*Ledger, *memStore) {
	t.Helper()
	st := &memStore{funds: funds}
	return New(st, zerolog.Nop()), st
}

func codes(l *Ledger) []string { return l.Codes() }

func TestAdd(t *testing.T) {
	l, st := newLedger(t)
	require.NoError(t, l.Add("110022"))
	require.NoError(t, l.Add("000001"))

	assert.Equal(t, []types.FundConfig{
		{Code: "110022", Num: "0", Cost: "0"},
		{Code: "000001", Num: "0", Cost: "0"},
	}, st.funds)

	err := l.Add("110022")
	assert.ErrorIs(t, err, ErrAlreadyExists)
	assert.Equal(t, 2, st.saves)

	var verr *ValidationError
	assert.ErrorAs(t, l.Add(""), &verr)
}

func TestRemove(t *testing.T) {
	l, st := newLedger(t,
		types.FundConfig{Code: "a", Num: "1", Cost: "1"},
		types.FundConfig{Code: "b", Num: "2", Cost: "2"},
	)
	require.NoError(t, l.Remove("a"))
	assert.Equal(t, []string{"b"}, codes(l))

	require.NoError(t, l.Remove("zzz"))
	assert.Equal(t, 1, st.saves, "absent code does not save")
}

func TestBuyWeightedAverage(t *testing.T) {
	l, _ := newLedger(t, types.FundConfig{Code: "a", Num: "0", Cost: "0"})
	require.NoError(t, l.Buy("a", d("2.0"), d("100")))
	require.NoError(t, l.Buy("a", d("3.2"), d("50")))

	got := l.Export()[0]
	assert.Equal(t, "150.00", got.Num)
	assert.Equal(t, "2.4000", got.Cost)

	p, ok := l.Position("a")
	require.True(t, ok)
	assert.InDelta(t, 150.0, p.Shares, 1e-9)
	assert.InDelta(t, 2.4, p.Cost, 1e-9)
}

func TestBuyIsAssociative(t *testing.T) {
	seq, _ := newLedger(t, types.FundConfig{Code: "a", Num: "0", Cost: "0"})
	require.NoError(t, seq.Buy("a", d("1.5"), d("200")))
	require.NoError(t, seq.Buy("a", d("2.5"), d("300")))

	// (200*1.5 + 300*2.5) / 500 = 2.1
	once, _ := newLedger(t, types.FundConfig{Code: "a", Num: "0", Cost: "0"})
	require.NoError(t, once.Buy("a", d("2.1"), d("500")))

	assert.Equal(t, once.Export(), seq.Export())
}

func TestBuyValidation(t *testing.T) {
	l, st := newLedger(t, types.FundConfig{Code: "a", Num: "10", Cost: "1"})
	var verr *ValidationError
	assert.ErrorAs(t, l.Buy("a", d("1"), d("0")), &verr)
	assert.ErrorAs(t, l.Buy("a", d("1"), d("-5")), &verr)
	assert.ErrorAs(t, l.Buy("a", d("-1"), d("5")), &verr)
	assert.ErrorIs(t, l.Buy("nope", d("1"), d("5")), ErrNotFound)
	assert.Zero(t, st.saves)
}

func TestBuyToleratesMalformedStoredNumbers(t *testing.T) {
	l, _ := newLedger(t, types.FundConfig{Code: "a", Num: "abc", Cost: ""})
	require.NoError(t, l.Buy("a", d("1.25"), d("40")))
	assert.Equal(t, types.FundConfig{Code: "a", Num: "40.00", Cost: "1.2500"}, l.Export()[0])
}

func TestSellKeepsCostUntilExit(t *testing.T) {
	l, _ := newLedger(t, types.FundConfig{Code: "a", Num: "100.00", Cost: "2.3456"})

	require.NoError(t, l.Sell("a", d("40")))
	assert.Equal(t, types.FundConfig{Code: "a", Num: "60.00", Cost: "2.3456"}, l.Export()[0])

	require.NoError(t, l.Sell("a", d("60")))
	assert.Equal(t, types.FundConfig{Code: "a", Num: "0", Cost: "0"}, l.Export()[0])
}

func TestSellRejectsOversell(t *testing.T) {
	l, st := newLedger(t, types.FundConfig{Code: "a", Num: "10.00", Cost: "1.5000"})

	var verr *ValidationError
	require.ErrorAs(t, l.Sell("a", d("10.01")), &verr)
	assert.Equal(t, "shares", verr.Field)
	assert.ErrorAs(t, l.Sell("a", d("0")), &verr)
	assert.Equal(t, types.FundConfig{Code: "a", Num: "10.00", Cost: "1.5000"}, l.Export()[0])
	assert.Zero(t, st.saves)
}

func TestEdit(t *testing.T) {
	l, _ := newLedger(t, types.FundConfig{Code: "a", Num: "10", Cost: "1"})
	require.NoError(t, l.Edit("a", d("1234.5"), d("0.98765")))
	assert.Equal(t, types.FundConfig{Code: "a", Num: "1234.50", Cost: "0.9877"}, l.Export()[0])

	var verr *ValidationError
	assert.ErrorAs(t, l.Edit("a", d("-1"), d("1")), &verr)
	assert.ErrorAs(t, l.Edit("a", d("1"), d("-1")), &verr)
	assert.ErrorIs(t, l.Edit("x", d("1"), d("1")), ErrNotFound)
}

func TestReorder(t *testing.T) {
	fund := func(c string) types.FundConfig { return types.FundConfig{Code: c, Num: "0", Cost: "0"} }

	tests := []struct {
		name         string
		code, before string
		want         []string
	}{
		{"up", "d", "b", []string{"a", "d", "b", "c"}},
		{"down", "a", "c", []string{"b", "a", "c", "d"}},
		{"to end", "b", "", []string{"a", "c", "d", "b"}},
		{"self", "c", "c", []string{"a", "b", "c", "d"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, _ := newLedger(t, fund("a"), fund("b"), fund("c"), fund("d"))
			require.NoError(t, l.Reorder(tt.code, tt.before))
			assert.Equal(t, tt.want, codes(l))
		})
	}

	l, _ := newLedger(t, fund("a"), fund("b"))
	assert.ErrorIs(t, l.Reorder("x", "a"), ErrNotFound)
	assert.ErrorIs(t, l.Reorder("a", "x"), ErrNotFound)
}

func TestReorderGuard(t *testing.T) {
	sorted := true
	st := &memStore{funds: []types.FundConfig{{Code: "a"}, {Code: "b"}}}
	l := New(st, zerolog.Nop(), WithReorderGuard(func() bool { return !sorted }))

	assert.ErrorIs(t, l.Reorder("b", "a"), ErrReorderSorted)
	assert.Equal(t, []string{"a", "b"}, codes(l))

	sorted = false
	require.NoError(t, l.Reorder("b", "a"))
	assert.Equal(t, []string{"b", "a"}, codes(l))
}

func TestImportMerge(t *testing.T) {
	l, _ := newLedger(t,
		types.FundConfig{Code: "a", Num: "1", Cost: "1"},
		types.FundConfig{Code: "b", Num: "2", Cost: "2"},
		types.FundConfig{Code: "c", Num: "3", Cost: "3"},
	)
	require.NoError(t, l.Import([]types.FundConfig{
		{Code: "d", Num: "4", Cost: "4"},
		{Code: "b", Num: "20", Cost: "2.2"},
		{Code: "e", Num: "5", Cost: "5"},
	}, Merge))

	assert.Equal(t, []types.FundConfig{
		{Code: "a", Num: "1", Cost: "1"},
		{Code: "b", Num: "20", Cost: "2.2"},
		{Code: "c", Num: "3", Cost: "3"},
		{Code: "d", Num: "4", Cost: "4"},
		{Code: "e", Num: "5", Cost: "5"},
	}, l.Export())
}

func TestImportReplace(t *testing.T) {
	l, _ := newLedger(t, types.FundConfig{Code: "a", Num: "1", Cost: "1"})
	in := []types.FundConfig{{Code: "z", Num: "9", Cost: "9"}, {Code: "y", Num: "8", Cost: "8"}}
	require.NoError(t, l.Import(in, Replace))
	assert.Equal(t, in, l.Export())

	var verr *ValidationError
	assert.ErrorAs(t, l.Import(in, Mode("append")), &verr)
}

func TestImportRepeatedCode(t *testing.T) {
	records, err := ParseImport([]byte(`[{"code": "a", "num": "100", "cost": "1"}, {"code": "a", "num": "5", "cost": "2"}]`))
	require.NoError(t, err)
	want := []types.FundConfig{{Code: "a", Num: "5", Cost: "2"}}

	for _, mode := range []Mode{Merge, Replace} {
		t.Run(string(mode), func(t *testing.T) {
			l, _ := newLedger(t)
			require.NoError(t, l.Import(records, mode))
			assert.Equal(t, want, l.Export())
		})
	}

	// records built in code are collapsed too
	l, _ := newLedger(t, types.FundConfig{Code: "z", Num: "1", Cost: "1"})
	require.NoError(t, l.Import([]types.FundConfig{
		{Code: "a", Num: "1", Cost: "1"},
		{Code: "a", Num: "3", Cost: "3"},
	}, Replace))
	assert.Equal(t, []types.FundConfig{{Code: "a", Num: "3", Cost: "3"}}, l.Export())
	assert.Equal(t, []string{"a"}, codes(l))
}

func TestExportImportRoundTrip(t *testing.T) {
	orig := []types.FundConfig{
		{Code: "110022", Num: "1000.00", Cost: "2.3456"},
		{Code: "000001", Num: "0", Cost: "0"},
		{Code: "161725", Num: "12.5", Cost: "1"},
	}
	l, _ := newLedger(t, orig...)
	data, err := MarshalExport(l.Export())
	require.NoError(t, err)

	other, _ := newLedger(t, types.FundConfig{Code: "junk", Num: "1", Cost: "1"})
	records, err := ParseImport(data)
	require.NoError(t, err)
	require.NoError(t, other.Import(records, Replace))

	again, err := MarshalExport(other.Export())
	require.NoError(t, err)
	assert.Equal(t, string(data), string(again))
	assert.Equal(t, orig, other.Export())
}

func TestListenersAfterSave(t *testing.T) {
	l, st := newLedger(t)
	var seen [][]types.FundConfig
	l.Subscribe(func(f []types.FundConfig) {
		// the store already holds the change
		assert.Equal(t, st.funds, f)
		seen = append(seen, f)
	})
	require.NoError(t, l.Add("a"))
	require.NoError(t, l.Add("b"))
	assert.Len(t, seen, 2)

	_ = l.Add("a")
	assert.Len(t, seen, 2, "rejected change does not notify")
}

func TestFailedSaveLeavesLedgerUnchanged(t *testing.T) {
	l, st := newLedger(t, types.FundConfig{Code: "a", Num: "1", Cost: "1"})
	st.failSet = true
	assert.Error(t, l.Add("b"))
	assert.Equal(t, []string{"a"}, codes(l))
}

func TestUnreadableStoreStartsEmpty(t *testing.T) {
	st := &memStore{readErr: errors.New("corrupt")}
	l := New(st, zerolog.Nop())
	assert.Empty(t, l.Export())
	require.NoError(t, l.Add("a"))
	assert.Equal(t, []string{"a"}, codes(l))
}

func TestParseAmount(t *testing.T) {
	v, err := ParseAmount("shares", " 12.5 ")
	require.NoError(t, err)
	assert.True(t, v.Equal(d("12.5")))

	var verr *ValidationError
	_, err = ParseAmount("shares", "abc")
	assert.ErrorAs(t, err, &verr)
	_, err = ParseAmount("cost", "-1")
	assert.ErrorAs(t, err, &verr)
}
