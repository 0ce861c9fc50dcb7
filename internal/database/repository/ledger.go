package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
)

const ledgerSelect = `
	SELECT s.id, t.id, t.user_date, t.description,
	       s.fund_id, COALESCE(f.name, ''), s.account_id, COALESCE(a.name, ''), s.amount
	FROM split s
	JOIN transactions t ON s.transaction_id = t.id
	LEFT JOIN fund f ON s.fund_id = f.id
	LEFT JOIN account a ON s.account_id = a.id
	WHERE t.deleted = 0 AND %s
	ORDER BY t.user_date, t.id, s.id`

// LedgerRepo serves the read-only ledger projection.
type LedgerRepo struct {
	db *sql.DB
}

func NewLedgerRepo(db *sql.DB) *LedgerRepo { return &LedgerRepo{db: db} }

// Fetch returns the live splits matching f, ordered by date, transaction and split,
// with a running balance over the result.
func (r *LedgerRepo) Fetch(ctx context.Context, f Filter) ([]LedgerRow, error) {
	var clause string
	switch f.Kind {
	case FilterAccount:
		clause = "s.account_id = ?"
	case FilterFund:
		clause = "s.fund_id = ?"
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidFilter, f.Kind)
	}
	out, err := r.query(ctx, fmt.Sprintf(ledgerSelect, clause), f.ID)
	if err != nil {
		return nil, err
	}
	balance := decimal.Zero
	for i := range out {
		balance = balance.Add(out[i].Amount)
		out[i].Balance = balance
	}
	return out, nil
}

// TransactionSplits returns the splits of one live transaction in ledger order.
func (r *LedgerRepo) TransactionSplits(ctx context.Context, transactionID int64) ([]LedgerRow, error) {
	return r.query(ctx, fmt.Sprintf(ledgerSelect, "s.transaction_id = ?"), transactionID)
}

func (r *LedgerRepo) query(ctx context.Context, query string, args ...interface{}) ([]LedgerRow, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []LedgerRow
	for rows.Next() {
		lr, err := scanLedgerRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, lr)
	}
	return out, rows.Err()
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanLedgerRow(row scanner) (LedgerRow, error) {
	var lr LedgerRow
	if err := row.Scan(&lr.SplitID, &lr.TransactionID, &lr.UserDate, &lr.Description,
		&lr.FundID, &lr.FundName, &lr.AccountID, &lr.AccountName, &lr.Amount); err != nil {
		return LedgerRow{}, err
	}
	return lr, nil
}
