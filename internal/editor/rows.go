package editor

import (
	"strconv"

	"github.com/jask/tallis/internal/database/repository"
	"github.com/jask/tallis/internal/ledger"
)

const zeroAmount = "0.00"

// Grid columns.
const (
	ColSplitID = iota
	ColTransactionID
	ColDate
	ColDescription
	ColFund
	ColAccount
	ColAmount
	ColBalance
)

var editColumns = []string{"SplitId", "TransactionsId", "UserDate", "Description", "FundChoice", "AccountChoice", "Amount"}

// Columns returns the header for a view with or without the running balance.
func Columns(withBalance bool) []string {
	cols := append([]string(nil), editColumns...)
	if withBalance {
		cols = append(cols, "Balance")
	}
	return cols
}

func displayRows(in []repository.LedgerRow, withBalance bool) [][]string {
	out := make([][]string, 0, len(in))
	for _, r := range in {
		row := []string{
			strconv.FormatInt(r.SplitID, 10),
			strconv.FormatInt(r.TransactionID, 10),
			r.UserDate,
			r.Description,
			ledger.NewChoice(r.FundID, r.FundName).String(),
			ledger.NewChoice(r.AccountID, r.AccountName).String(),
			ledger.FormatAmount(r.Amount),
		}
		if withBalance {
			row = append(row, ledger.FormatAmount(r.Balance))
		}
		out = append(out, row)
	}
	return out
}

// choices is a snapshot of the reference lists used to fill the dropdowns.
type choices struct {
	accounts []ledger.Choice
	funds    []ledger.Choice
}

func (c choices) account(id int64) ledger.Choice { return pick(c.accounts, id) }

func (c choices) fund(id int64) ledger.Choice { return pick(c.funds, id) }

func pick(opts []ledger.Choice, id int64) ledger.Choice {
	for _, o := range opts {
		if o.ID == id {
			return o
		}
	}
	return ledger.Choice{ID: id}
}
