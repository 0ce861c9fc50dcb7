// Package ledger holds the value rules shared by the store, the editor and the UI:
// split amounts, accepted user-date formats, the double-entry balance tolerance and
// the account/fund choice type used by the per-row dropdowns.
package ledger
