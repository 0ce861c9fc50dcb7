package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidChoice = errors.New("invalid choice")
)

// UnbalancedError reports splits whose amounts do not net to zero.
type UnbalancedError struct {
	Sum decimal.Decimal
}

func (e *UnbalancedError) Error() string {
	return fmt.Sprintf("transaction does not balance: splits sum to %s", e.Sum.StringFixed(2))
}
