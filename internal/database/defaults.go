package database

import (
	"context"
	"database/sql"
)

// Reference rows every ledger needs. Id 0 is the initial selector option and
// the id a blank account or fund choice resolves to.
const (
	DefaultAccountName = "Unassigned"
	DefaultFundName    = "General"
)

// SeedDefaults ensures the id-0 account and fund exist.
// It is idempotent and safe to run on every startup.
func SeedDefaults(ctx context.Context, db *sql.DB) error {
	return WithTx(ctx, db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO account(id, name) VALUES (0, ?)`, DefaultAccountName); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO fund(id, name) VALUES (0, ?)`, DefaultFundName)
		return err
	})
}
