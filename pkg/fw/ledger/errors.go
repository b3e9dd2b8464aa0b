package ledger

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrAlreadyExists = errors.New("fund already in watchlist")
	ErrNotFound      = errors.New("fund not in watchlist")
	ErrReorderSorted = errors.New("reorder is only allowed in default sort order")
	ErrNoFunds       = errors.New("no valid funds found")
)

// ValidationError reports rejected user input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

// ImportFormatError reports an import file without a funds array.
type ImportFormatError struct {
	Reason string
}

func (e *ImportFormatError) Error() string {
	return "invalid import file: " + e.Reason
}

// ParseAmount strictly parses a user supplied non-negative number.
func ParseAmount(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, &ValidationError{Field: field, Reason: "not a number: " + s}
	}
	if d.IsNegative() {
		return decimal.Zero, &ValidationError{Field: field, Reason: "must not be negative"}
	}
	return d, nil
}

// parseOrZero parses a stored number, substituting zero for anything
// malformed.
func parseOrZero(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}
