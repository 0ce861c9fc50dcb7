package repository

import "errors"

var (
	ErrTransactionNotFound = errors.New("transaction not found or already deleted")
	ErrNoSplits            = errors.New("transaction has no splits")
	ErrInvalidFilter       = errors.New("invalid ledger filter")
)
