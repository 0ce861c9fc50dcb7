package repository

import (
	"context"
	"database/sql"
)

// Store groups the repos behind the operations the editor needs.
type Store struct {
	Accounts     *AccountRepo
	Funds        *FundRepo
	Ledger       *LedgerRepo
	Transactions *TransactionRepo
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		Accounts:     NewAccountRepo(db),
		Funds:        NewFundRepo(db),
		Ledger:       NewLedgerRepo(db),
		Transactions: NewTransactionRepo(db),
	}
}

func (s *Store) ListAccounts(ctx context.Context) ([]Account, error) { return s.Accounts.List(ctx) }

func (s *Store) ListFunds(ctx context.Context) ([]Fund, error) { return s.Funds.List(ctx) }

func (s *Store) FetchLedger(ctx context.Context, f Filter) ([]LedgerRow, error) {
	return s.Ledger.Fetch(ctx, f)
}

func (s *Store) FetchTransactionSplits(ctx context.Context, transactionID int64) ([]LedgerRow, error) {
	return s.Ledger.TransactionSplits(ctx, transactionID)
}

func (s *Store) ReplaceTransaction(ctx context.Context, oldID *int64, userDate, description string, splits []SplitInput) (int64, error) {
	return s.Transactions.Replace(ctx, oldID, userDate, description, splits)
}

func (s *Store) SoftDeleteTransaction(ctx context.Context, id int64) error {
	return s.Transactions.SoftDelete(ctx, id)
}

// GetTransaction returns a transaction header, deleted or not.
func (s *Store) GetTransaction(ctx context.Context, id int64) (*Transaction, error) {
	return s.Transactions.Get(ctx, id)
}
