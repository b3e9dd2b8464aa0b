package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/komsit37/fw/pkg/fw/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS funds (
	pos  INTEGER NOT NULL,
	code TEXT PRIMARY KEY,
	num  TEXT NOT NULL DEFAULT '0',
	cost TEXT NOT NULL DEFAULT '0'
);
CREATE TABLE IF NOT EXISTS settings (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);`

const (
	keySortMode = "sort_mode"
	keyHolidays = "holidays"
)

// SQLStore keeps the watchlist in a SQLite database.
type SQLStore struct {
	db *sqlx.DB
}

// OpenSQLStore opens (and creates if needed) the SQLite database at path.
func OpenSQLStore(path string) (*SQLStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// sqlite allows a single writer
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate sqlite %s: %w", path, err)
	}
	return &SQLStore{db: db}, nil
}

type fundRow struct {
	Pos int `db:"pos"`
	types.FundConfig
}

func (s *SQLStore) Funds() ([]types.FundConfig, error) {
	var rows []fundRow
	if err := s.db.Select(&rows, `SELECT pos, code, num, cost FROM funds ORDER BY pos`); err != nil {
		return nil, err
	}
	out := make([]types.FundConfig, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.FundConfig)
	}
	return out, nil
}

// SetFunds replaces the whole watchlist in one transaction.
func (s *SQLStore) SetFunds(funds []types.FundConfig) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck
	if _, err := tx.Exec(`DELETE FROM funds`); err != nil {
		return err
	}
	for i, f := range funds {
		row := fundRow{Pos: i, FundConfig: f}
		if _, err := tx.NamedExec(`INSERT INTO funds (pos, code, num, cost) VALUES (:pos, :code, :num, :cost)`, row); err != nil {
			return fmt.Errorf("insert fund %s: %w", f.Code, err)
		}
	}
	return tx.Commit()
}

func (s *SQLStore) SortMode() (string, error) {
	return s.setting(keySortMode)
}

func (s *SQLStore) SetSortMode(mode string) error {
	return s.setSetting(keySortMode, mode)
}

func (s *SQLStore) Holidays() (types.HolidayCalendar, error) {
	raw, err := s.setting(keyHolidays)
	if err != nil || raw == "" {
		return nil, err
	}
	var cal types.HolidayCalendar
	if err := sonic.UnmarshalString(raw, &cal); err != nil {
		return nil, fmt.Errorf("decode cached holidays: %w", err)
	}
	return cal, nil
}

func (s *SQLStore) SetHolidays(cal types.HolidayCalendar) error {
	raw, err := sonic.MarshalString(cal)
	if err != nil {
		return err
	}
	return s.setSetting(keyHolidays, raw)
}

func (s *SQLStore) Close() error { return s.db.Close() }

func (s *SQLStore) setting(key string) (string, error) {
	var v string
	err := s.db.Get(&v, `SELECT value FROM settings WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return v, err
}

func (s *SQLStore) setSetting(key, value string) error {
	_, err := s.db.Exec(`INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}
