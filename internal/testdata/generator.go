package testdata

import (
	"context"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jask/tallis/internal/database/repository"
)

// Repos bundles repos used by Seed.
type Repos struct {
	Accounts     *repository.AccountRepo
	Funds        *repository.FundRepo
	Transactions *repository.TransactionRepo
}

var (
	sampleAccounts = []repository.Account{
		{ID: 1, Name: "Checking"},
		{ID: 2, Name: "Savings"},
		{ID: 3, Name: "Donations"},
		{ID: 4, Name: "Utilities"},
		{ID: 5, Name: "Supplies"},
		{ID: 6, Name: "Payroll"},
	}
	sampleFunds = []repository.Fund{
		{ID: 1, Name: "Operating"},
		{ID: 2, Name: "Building"},
		{ID: 3, Name: "Missions"},
	}
	descriptions = []string{"Sunday offering", "Power bill", "Office supplies", "Staff wages", "Roof repair", "Transfer to savings"}
)

// Count is how many transactions Seed writes.
const Count = 30

// Seed writes a sample chart of accounts and funds and Count balanced
// transactions dated over the last ninety days. Pass a seeded rng for
// repeatable data.
func Seed(ctx context.Context, repos Repos, rng *rand.Rand) error {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	for _, a := range sampleAccounts {
		if err := repos.Accounts.Upsert(ctx, a); err != nil {
			return err
		}
	}
	for _, f := range sampleFunds {
		if err := repos.Funds.Upsert(ctx, f); err != nil {
			return err
		}
	}

	today := time.Now().UTC()
	for i := 0; i < Count; i++ {
		date := today.AddDate(0, 0, -rng.Intn(90)).Format("2006-01-02")
		desc := descriptions[rng.Intn(len(descriptions))]
		if _, err := repos.Transactions.Replace(ctx, nil, date, desc, balancedSplits(rng)); err != nil {
			return err
		}
	}
	return nil
}

// balancedSplits moves a random amount out of checking into two to three
// other accounts. The last split absorbs the remainder so the total is zero.
func balancedSplits(rng *rand.Rand) []repository.SplitInput {
	total := decimal.New(int64(rng.Intn(50000)+100), -2)
	fund := sampleFunds[rng.Intn(len(sampleFunds))].ID
	splits := []repository.SplitInput{{Amount: total.Neg(), FundID: fund, AccountID: 1}}

	n := rng.Intn(2) + 1
	remaining := total
	for j := 0; j < n; j++ {
		acct := sampleAccounts[1+rng.Intn(len(sampleAccounts)-1)].ID
		part := remaining
		if j < n-1 {
			part = remaining.Div(decimal.NewFromInt(2)).Round(2)
		}
		remaining = remaining.Sub(part)
		splits = append(splits, repository.SplitInput{Amount: part, FundID: fund, AccountID: acct})
	}
	return splits
}
