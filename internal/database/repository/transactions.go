package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jask/tallis/internal/database"
)

// TransactionRepo handles transaction headers and their splits.
// Transactions are never updated in place: an edit soft-deletes the old
// header and inserts a new one with fresh splits.
type TransactionRepo struct {
	db *sql.DB
}

func NewTransactionRepo(db *sql.DB) *TransactionRepo { return &TransactionRepo{db: db} }

// Replace inserts a new transaction with splits in one unit. When oldID is not
// nil the old transaction is soft-deleted in the same unit; its splits stay.
// On any error nothing is written.
func (r *TransactionRepo) Replace(ctx context.Context, oldID *int64, userDate, description string, splits []SplitInput) (int64, error) {
	if len(splits) == 0 {
		return 0, ErrNoSplits
	}
	var newID int64
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		now := database.Now()
		if oldID != nil {
			if err := softDelete(ctx, tx, *oldID, now); err != nil {
				return err
			}
		}
		res, err := tx.ExecContext(ctx, `
		INSERT INTO transactions(user_date, description, deleted, created_at)
		VALUES (?, ?, 0, ?);
		`, userDate, description, now)
		if err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}
		newID, err = res.LastInsertId()
		if err != nil {
			return err
		}
		for i, s := range splits {
			if _, err := tx.ExecContext(ctx, `
			INSERT INTO split(transaction_id, amount, fund_id, account_id)
			VALUES (?, ?, ?, ?);
			`, newID, s.Amount, s.FundID, s.AccountID); err != nil {
				return fmt.Errorf("insert split %d: %w", i+1, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return newID, nil
}

// SoftDelete marks a live transaction deleted without a replacement.
func (r *TransactionRepo) SoftDelete(ctx context.Context, id int64) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		return softDelete(ctx, tx, id, database.Now())
	})
}

func softDelete(ctx context.Context, tx *sql.Tx, id int64, now time.Time) error {
	res, err := tx.ExecContext(ctx, `UPDATE transactions SET deleted = 1, deleted_at = ? WHERE id = ? AND deleted = 0`, now, id)
	if err != nil {
		return fmt.Errorf("soft delete %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", ErrTransactionNotFound, id)
	}
	return nil
}

// Get returns a transaction header, deleted or not. Missing ids return nil, nil.
func (r *TransactionRepo) Get(ctx context.Context, id int64) (*Transaction, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, user_date, description, deleted, deleted_at, created_at FROM transactions WHERE id = ?`, id)
	var t Transaction
	var deletedAt sql.NullTime
	if err := row.Scan(&t.ID, &t.UserDate, &t.Description, &t.Deleted, &deletedAt, &t.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if deletedAt.Valid {
		t.DeletedAt = &deletedAt.Time
	}
	return &t, nil
}

// Splits returns every stored split of a transaction, including those of a
// soft-deleted one.
func (r *TransactionRepo) Splits(ctx context.Context, transactionID int64) ([]Split, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, transaction_id, amount, fund_id, account_id FROM split WHERE transaction_id = ? ORDER BY id`, transactionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Split
	for rows.Next() {
		var s Split
		if err := rows.Scan(&s.ID, &s.TransactionID, &s.Amount, &s.FundID, &s.AccountID); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// CountLive returns the number of non-deleted transactions.
func (r *TransactionRepo) CountLive(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions WHERE deleted = 0`).Scan(&n)
	return n, err
}
