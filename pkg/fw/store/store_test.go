package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/komsit37/fw/pkg/fw/types"
)

var funds = []types.FundConfig{
	{Code: "110022", Num: "1000.00", Cost: "2.3456"},
	{Code: "000001", Num: "0", Cost: "0"},
	{Code: "161725", Num: "12.50", Cost: "1.0000"},
}

var holidays = types.HolidayCalendar{
	"2024": {"10-01": {Holiday: true, Name: "National Day"}},
}

func openStores(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()
	sq, err := Open("sqlite", filepath.Join(dir, "fw.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sq.Close() })
	y, err := Open("yaml", filepath.Join(dir, "sub", "fw.yaml"))
	require.NoError(t, err)
	return map[string]Store{"yaml": y, "sqlite": sq}
}

func TestStoreRoundTrip(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			got, err := s.Funds()
			require.NoError(t, err)
			assert.Empty(t, got)

			require.NoError(t, s.SetFunds(funds))
			require.NoError(t, s.SetSortMode("holdingGain_desc"))
			require.NoError(t, s.SetHolidays(holidays))

			got, err = s.Funds()
			require.NoError(t, err)
			assert.Equal(t, funds, got)

			mode, err := s.SortMode()
			require.NoError(t, err)
			assert.Equal(t, "holdingGain_desc", mode)

			cal, err := s.Holidays()
			require.NoError(t, err)
			assert.Equal(t, holidays, cal)
		})
	}
}

func TestStoreReplacesFundsInOrder(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.SetFunds(funds))
			reordered := []types.FundConfig{funds[2], funds[0]}
			require.NoError(t, s.SetFunds(reordered))

			got, err := s.Funds()
			require.NoError(t, err)
			assert.Equal(t, reordered, got)
		})
	}
}

func TestYAMLStoreAcceptsBareList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "funds.yaml")
	data := []byte("- code: \"000001\"\n  num: \"10\"\n  cost: \"1.5\"\n")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	got, err := NewYAMLStore(path).Funds()
	require.NoError(t, err)
	assert.Equal(t, []types.FundConfig{{Code: "000001", Num: "10", Cost: "1.5"}}, got)
}

func TestYAMLStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "funds.yaml")
	require.NoError(t, os.WriteFile(path, []byte("funds: [\n"), 0o644))
	s := NewYAMLStore(path)

	_, err := s.Funds()
	assert.Error(t, err)

	// writes recover the file
	require.NoError(t, s.SetFunds(funds[:1]))
	got, err := s.Funds()
	require.NoError(t, err)
	assert.Equal(t, funds[:1], got)
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open("postgres", "x")
	assert.Error(t, err)
}
