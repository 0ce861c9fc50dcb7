package repository

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// FilterKind selects which split column a ledger view is filtered on.
type FilterKind string

const (
	FilterAccount FilterKind = "account"
	FilterFund    FilterKind = "fund"
)

// Valid reports whether k is a known filter kind.
func (k FilterKind) Valid() bool {
	return k == FilterAccount || k == FilterFund
}

// Filter narrows the ledger view to one account or one fund.
type Filter struct {
	Kind FilterKind
	ID   int64
}

func (f Filter) String() string {
	return fmt.Sprintf("%s:%d", f.Kind, f.ID)
}

// Account represents an account row.
type Account struct {
	ID   int64
	Name string
}

// Fund represents a fund row.
type Fund struct {
	ID   int64
	Name string
}

// Transaction represents a transaction header row.
type Transaction struct {
	ID          int64
	UserDate    string
	Description string
	Deleted     bool
	DeletedAt   *time.Time
	CreatedAt   time.Time
}

// Split represents one stored leg of a transaction.
type Split struct {
	ID            int64
	TransactionID int64
	Amount        decimal.Decimal
	FundID        int64
	AccountID     int64
}

// SplitInput is one leg handed to Replace.
type SplitInput struct {
	Amount    decimal.Decimal
	FundID    int64
	AccountID int64
}

// LedgerRow is the split + transaction + account + fund projection shown in the grid.
// Balance is the running total over the fetched rows.
type LedgerRow struct {
	SplitID       int64
	TransactionID int64
	UserDate      string
	Description   string
	FundID        int64
	FundName      string
	AccountID     int64
	AccountName   string
	Amount        decimal.Decimal
	Balance       decimal.Decimal
}
