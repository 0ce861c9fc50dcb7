package editor

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jask/tallis/internal/database"
	"github.com/jask/tallis/internal/database/repository"
	"github.com/jask/tallis/internal/grid"
	"github.com/jask/tallis/internal/ledger"
	"github.com/jask/tallis/internal/logging"
)

type fakeSelector struct {
	id      int64
	enabled bool
}

func (f *fakeSelector) SelectedID() int64 { return f.id }
func (f *fakeSelector) SetEnabled(on bool) { f.enabled = on }

type fakeButtons struct{ shown []Mode }

// flakyStore fails FetchLedger once failFetch is set.
type flakyStore struct {
	*repository.Store
	failFetch bool
}

var errStoreDown = errors.New("store down")

func (s *flakyStore) FetchLedger(ctx context.Context, f repository.Filter) ([]repository.LedgerRow, error) {
	if s.failFetch {
		return nil, errStoreDown
	}
	return s.Store.FetchLedger(ctx, f)
}

func (f *fakeButtons) Show(m Mode) { f.shown = append(f.shown, m) }

type fixture struct {
	ctx      context.Context
	store    *repository.Store
	grid     *grid.Grid
	accounts *fakeSelector
	funds    *fakeSelector
	buttons  *fakeButtons
	ed       *Editor

	paycheck, market int64
}

var fixedNow = time.Date(2026, 4, 9, 12, 0, 0, 0, time.UTC)

// newFixture seeds two transactions touching Checking (account 1):
// a paycheck on 2026-01-01 and a market run on 2026-01-02.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	dbPath := filepath.Join(t.TempDir(), "ledger.db")
	require.NoError(t, database.RunMigrations(dbPath))
	db, err := database.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.SeedDefaults(ctx, db))

	s := repository.NewStore(db)
	for _, a := range []repository.Account{{ID: 1, Name: "Checking"}, {ID: 2, Name: "Groceries"}, {ID: 3, Name: "Salary"}} {
		require.NoError(t, s.Accounts.Upsert(ctx, a))
	}
	require.NoError(t, s.Funds.Upsert(ctx, repository.Fund{ID: 1, Name: "Operating"}))

	f := &fixture{
		ctx:      ctx,
		store:    s,
		grid:     grid.New(),
		accounts: &fakeSelector{id: 1, enabled: true},
		funds:    &fakeSelector{id: 1, enabled: true},
		buttons:  &fakeButtons{},
	}
	f.paycheck, err = s.ReplaceTransaction(ctx, nil, "2026-01-01", "Paycheck", []repository.SplitInput{
		{Amount: decimal.NewFromInt(100), FundID: 1, AccountID: 1},
		{Amount: decimal.NewFromInt(-100), FundID: 1, AccountID: 3},
	})
	require.NoError(t, err)
	f.market, err = s.ReplaceTransaction(ctx, nil, "2026-01-02", "Market", []repository.SplitInput{
		{Amount: decimal.NewFromInt(-25), FundID: 1, AccountID: 1},
		{Amount: decimal.NewFromInt(25), FundID: 1, AccountID: 2},
	})
	require.NoError(t, err)

	f.ed = New(Deps{
		Store:    s,
		Grid:     f.grid,
		Accounts: f.accounts,
		Funds:    f.funds,
		Buttons:  f.buttons,
		Log:      logging.Nop(),
		Now:      func() time.Time { return fixedNow },
	})
	require.NoError(t, f.ed.Refresh(ctx))
	return f
}

// editPaycheck opens the first canonical row, whose window is rows [0,2).
func (f *fixture) editPaycheck(t *testing.T) {
	t.Helper()
	f.grid.Select(0, ColDate)
	require.NoError(t, f.ed.BeginEdit(f.ctx))
	require.Equal(t, ModeEdit, f.ed.Mode())
}

func TestCanonicalViewIsReadonlyWithBalance(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	require.Equal(t, ModeInitial, f.ed.Mode())
	require.Equal(t, Columns(true), f.grid.Columns())
	require.Equal(t, 2, f.grid.Len())
	require.Equal(t, "100.00", f.grid.Cell(0, ColBalance))
	require.Equal(t, "75.00", f.grid.Cell(1, ColBalance))
	for r := 0; r < f.grid.Len(); r++ {
		require.Equal(t, grid.StyleNeutral, f.grid.RowStyle(r))
		for c := range Columns(true) {
			require.True(t, f.grid.Readonly(r, c))
		}
	}

	_, ok := f.ed.Session()
	require.False(t, ok)
	require.ErrorIs(t, f.ed.EditCell(0, ColAmount, "1"), ErrWrongMode)
	_, err := f.ed.Save(f.ctx)
	require.ErrorIs(t, err, ErrWrongMode)
}

func TestChangeFilterShowsFund(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	require.NoError(t, f.ed.ChangeFilter(f.ctx, repository.FilterFund))
	require.Equal(t, repository.Filter{Kind: repository.FilterFund, ID: 1}, f.ed.Filter())
	require.Equal(t, 4, f.grid.Len())
	require.Equal(t, "0.00", f.grid.Cell(3, ColBalance))

	require.ErrorIs(t, f.ed.ChangeFilter(f.ctx, repository.FilterKind("tag")), repository.ErrInvalidFilter)
}

func TestBeginEditSplicesWindow(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.editPaycheck(t)

	s, ok := f.ed.Session()
	require.True(t, ok)
	require.Equal(t, 0, s.Start)
	require.Equal(t, 2, s.End)
	require.Equal(t, f.paycheck, s.TransactionID)
	require.Equal(t, "2026-01-01", s.Date)
	require.Equal(t, "Paycheck", s.Description)
	require.NotEmpty(t, s.ID)

	require.Equal(t, Columns(false), f.grid.Columns())
	require.Equal(t, 3, f.grid.Len())
	require.Equal(t, "3:Salary", f.grid.Cell(1, ColAccount))
	require.Equal(t, "Market", f.grid.Cell(2, ColDescription))

	for r := 0; r < 2; r++ {
		require.Equal(t, grid.StyleActive, f.grid.RowStyle(r))
		require.True(t, f.grid.Readonly(r, ColSplitID))
		require.True(t, f.grid.Readonly(r, ColTransactionID))
		require.False(t, f.grid.Readonly(r, ColAmount))
		d, ok := f.grid.Dropdown(r, ColAccount)
		require.True(t, ok)
		require.Len(t, d.Options, 4)
	}
	require.Equal(t, grid.StyleNeutral, f.grid.RowStyle(2))
	require.True(t, f.grid.Readonly(2, ColAmount))

	require.False(t, f.accounts.enabled)
	require.False(t, f.funds.enabled)
	require.Equal(t, []Mode{ModeEdit}, f.buttons.shown)

	require.ErrorIs(t, f.ed.ChangeFilter(f.ctx, repository.FilterFund), ErrWrongMode)
	require.ErrorIs(t, f.ed.BeginEdit(f.ctx), ErrWrongMode)
	require.ErrorIs(t, f.ed.StartNew(f.ctx), ErrWrongMode)
}

func TestBeginEditNeedsSelection(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.grid.ClearSelection()
	require.ErrorIs(t, f.ed.BeginEdit(f.ctx), ErrNoSelection)
	require.Equal(t, ModeInitial, f.ed.Mode())
}

func TestEditCellPropagatesPinnedFields(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.editPaycheck(t)

	require.NoError(t, f.ed.EditCell(1, ColDate, "2026/2/3"))
	require.Equal(t, "2026/2/3", f.grid.Cell(0, ColDate))
	require.Equal(t, "2026/2/3", f.grid.Cell(1, ColDate))
	require.Equal(t, "2026-01-02", f.grid.Cell(2, ColDate), "rows outside the window are untouched")

	require.NoError(t, f.ed.EditCell(0, ColDescription, "Bonus"))
	require.Equal(t, "Bonus", f.grid.Cell(1, ColDescription))

	s, _ := f.ed.Session()
	require.Equal(t, "2026/2/3", s.Date)
	require.Equal(t, "Bonus", s.Description)
}

func TestEditCellRejectsInvalidInput(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.editPaycheck(t)

	require.ErrorIs(t, f.ed.EditCell(0, ColDate, "next tuesday"), ledger.ErrInvalidDate)
	require.Equal(t, "2026-01-01", f.grid.Cell(0, ColDate))
	require.Equal(t, "2026-01-01", f.grid.Cell(1, ColDate))

	require.ErrorIs(t, f.ed.EditCell(0, ColAmount, "12abc"), ledger.ErrInvalidAmount)
	require.Equal(t, "100.00", f.grid.Cell(0, ColAmount))

	require.ErrorIs(t, f.ed.EditCell(0, ColAccount, "x:y"), ledger.ErrInvalidChoice)
	require.ErrorIs(t, f.ed.EditCell(2, ColAmount, "1"), ErrOutsideWindow)
	require.ErrorIs(t, f.ed.EditCell(0, ColSplitID, "9"), ErrReadonlyCell)
}

func TestSaveUnbalancedKeepsEditing(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.editPaycheck(t)

	require.NoError(t, f.ed.EditCell(0, ColAmount, "120"))
	_, err := f.ed.Save(f.ctx)
	var ub *ledger.UnbalancedError
	require.ErrorAs(t, err, &ub)
	require.True(t, ub.Sum.Equal(decimal.NewFromInt(20)))

	require.Equal(t, ModeEdit, f.ed.Mode())
	require.Equal(t, "120", f.grid.Cell(0, ColAmount))

	got, err := f.store.Transactions.Get(f.ctx, f.paycheck)
	require.NoError(t, err)
	require.False(t, got.Deleted)
}

func TestSaveEditReplacesTransaction(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.editPaycheck(t)

	require.NoError(t, f.ed.EditCell(0, ColDate, "2/5/2026"))
	require.NoError(t, f.ed.EditCell(0, ColDescription, "Paycheck Feb"))
	require.NoError(t, f.ed.EditCell(0, ColAmount, "150"))
	require.NoError(t, f.ed.EditCell(1, ColAmount, "-150"))

	newID, err := f.ed.Save(f.ctx)
	require.NoError(t, err)
	require.NotEqual(t, f.paycheck, newID)
	require.Equal(t, ModeInitial, f.ed.Mode())
	require.True(t, f.accounts.enabled)
	require.Equal(t, []Mode{ModeEdit, ModeInitial}, f.buttons.shown)

	old, err := f.store.Transactions.Get(f.ctx, f.paycheck)
	require.NoError(t, err)
	require.True(t, old.Deleted)

	splits, err := f.store.FetchTransactionSplits(f.ctx, newID)
	require.NoError(t, err)
	require.Len(t, splits, 2)
	for _, s := range splits {
		require.Equal(t, "2026-02-05", s.UserDate)
		require.Equal(t, "Paycheck Feb", s.Description)
	}

	// The canonical view is back, sorted by date: market run first.
	require.Equal(t, Columns(true), f.grid.Columns())
	require.Equal(t, 2, f.grid.Len())
	require.Equal(t, "Market", f.grid.Cell(0, ColDescription))
	require.Equal(t, "125.00", f.grid.Cell(1, ColBalance))
}

func TestSaveWithinTolerance(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.editPaycheck(t)

	require.NoError(t, f.ed.EditCell(1, ColAmount, "-99.995"))
	_, err := f.ed.Save(f.ctx)
	require.NoError(t, err)

	f.grid.Select(0, ColDate)
	require.NoError(t, f.ed.BeginEdit(f.ctx))
	require.NoError(t, f.ed.EditCell(0, ColAmount, "100.01"))
	_, err = f.ed.Save(f.ctx)
	var ub *ledger.UnbalancedError
	require.ErrorAs(t, err, &ub, "an imbalance of exactly 0.01 is rejected")
}

func TestCancelRestoresCanonicalView(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	before := f.grid.Rows()
	f.editPaycheck(t)

	require.NoError(t, f.ed.EditCell(0, ColAmount, "1"))
	require.NoError(t, f.ed.Cancel(f.ctx))

	require.Equal(t, ModeInitial, f.ed.Mode())
	require.Equal(t, before, f.grid.Rows())
	require.True(t, f.funds.enabled)
	require.ErrorIs(t, f.ed.Cancel(f.ctx), ErrWrongMode)
}

func TestAddAndDeleteSplit(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.editPaycheck(t)

	f.grid.Select(0, ColAmount)
	require.NoError(t, f.ed.AddSplit(f.ctx))
	s, _ := f.ed.Session()
	require.Equal(t, 3, s.End)
	require.Equal(t, 4, f.grid.Len())

	row := f.grid.Rows()[1]
	require.Equal(t, "", row[ColSplitID])
	require.Equal(t, f.grid.Cell(0, ColTransactionID), row[ColTransactionID])
	require.Equal(t, "2026-01-01", row[ColDate])
	require.Equal(t, "Paycheck", row[ColDescription])
	require.Equal(t, "1:Operating", row[ColFund])
	require.Equal(t, "1:Checking", row[ColAccount])
	require.Equal(t, "0.00", row[ColAmount])
	require.Equal(t, grid.StyleActive, f.grid.RowStyle(1))
	require.Equal(t, grid.StyleNeutral, f.grid.RowStyle(3))

	// Selection outside the window appends at its end.
	f.grid.Select(3, ColDate)
	require.NoError(t, f.ed.AddSplit(f.ctx))
	s, _ = f.ed.Session()
	require.Equal(t, 4, s.End)
	require.Equal(t, "Market", f.grid.Cell(4, ColDescription))

	f.grid.Select(4, ColDate)
	require.ErrorIs(t, f.ed.DeleteSplit(f.ctx), ErrOutsideWindow)

	for i := 0; i < 3; i++ {
		f.grid.Select(0, ColAmount)
		require.NoError(t, f.ed.DeleteSplit(f.ctx))
	}
	s, _ = f.ed.Session()
	require.Equal(t, 1, s.End-s.Start)
	f.grid.Select(0, ColAmount)
	require.ErrorIs(t, f.ed.DeleteSplit(f.ctx), ErrLastSplit)
	require.Equal(t, 2, f.grid.Len())
}

func TestBalanceSplit(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.editPaycheck(t)

	require.NoError(t, f.ed.AddSplit(f.ctx))
	require.NoError(t, f.ed.EditCell(0, ColAmount, "130.25"))
	// The new split sits right after the focused first row.
	f.grid.Select(1, ColAmount)
	v, err := f.ed.BalanceSplit()
	require.NoError(t, err)
	require.Equal(t, "-30.25", v)
	require.Equal(t, "-30.25", f.grid.Cell(1, ColAmount))

	_, err = f.ed.Save(f.ctx)
	require.NoError(t, err)
}

func TestStartNewAndSave(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	require.NoError(t, f.ed.StartNew(f.ctx))
	require.Equal(t, ModeAdd, f.ed.Mode())
	s, ok := f.ed.Session()
	require.True(t, ok)
	require.Equal(t, 2, s.Start)
	require.Equal(t, 4, s.End)
	require.Equal(t, "2026-04-09", s.Date)
	require.Zero(t, s.TransactionID)

	r, c, ok := f.grid.Selection()
	require.True(t, ok)
	require.Equal(t, 2, r)
	require.Equal(t, ColDescription, c)
	require.Equal(t, "2026-04-09", f.grid.Cell(3, ColDate))
	require.Equal(t, "1:Checking", f.grid.Cell(2, ColAccount))

	require.NoError(t, f.ed.EditCell(2, ColDescription, "Coffee"))
	require.NoError(t, f.ed.EditCell(2, ColAmount, "-4.50"))
	require.NoError(t, f.grid.SetCell(3, ColAccount, "2:Groceries"))
	f.grid.Select(3, ColAmount)
	_, err := f.ed.BalanceSplit()
	require.NoError(t, err)

	id, err := f.ed.Save(f.ctx)
	require.NoError(t, err)
	require.Equal(t, ModeInitial, f.ed.Mode())

	splits, err := f.store.FetchTransactionSplits(f.ctx, id)
	require.NoError(t, err)
	require.Len(t, splits, 2)
	require.Equal(t, "Coffee", splits[1].Description)
	require.Equal(t, int64(2), splits[1].AccountID)
	require.True(t, splits[1].Amount.Equal(decimal.RequireFromString("4.50")))
	require.Equal(t, 3, f.grid.Len())
}

func TestAddModeRejectsDelete(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	require.NoError(t, f.ed.StartNew(f.ctx))
	require.ErrorIs(t, f.ed.DeleteTransaction(f.ctx, true), ErrWrongMode)
	require.Equal(t, ModeAdd, f.ed.Mode())
}

func TestDeleteTransaction(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.editPaycheck(t)

	require.ErrorIs(t, f.ed.DeleteTransaction(f.ctx, false), ErrNotConfirmed)
	require.Equal(t, ModeEdit, f.ed.Mode())

	require.NoError(t, f.ed.DeleteTransaction(f.ctx, true))
	require.Equal(t, ModeInitial, f.ed.Mode())
	require.Equal(t, 1, f.grid.Len())
	require.Equal(t, "Market", f.grid.Cell(0, ColDescription))

	got, err := f.store.Transactions.Get(f.ctx, f.paycheck)
	require.NoError(t, err)
	require.True(t, got.Deleted)
}

func TestSaveFailureKeepsWindow(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.editPaycheck(t)

	// Someone else deletes the transaction while it is open.
	require.NoError(t, f.store.SoftDeleteTransaction(f.ctx, f.paycheck))

	_, err := f.ed.Save(f.ctx)
	require.ErrorIs(t, err, repository.ErrTransactionNotFound)
	require.Equal(t, ModeEdit, f.ed.Mode())
	s, _ := f.ed.Session()
	require.Equal(t, 2, s.End)

	n, err := f.store.Transactions.CountLive(f.ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestAddSplitBeforeWindow(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.grid.Select(1, ColDate)
	require.NoError(t, f.ed.BeginEdit(f.ctx))
	s, _ := f.ed.Session()
	require.Equal(t, 1, s.Start)
	require.Equal(t, 3, s.End)

	f.grid.Select(0, ColDate)
	require.NoError(t, f.ed.AddSplit(f.ctx))
	s, _ = f.ed.Session()
	require.Equal(t, 1, s.Start)
	require.Equal(t, 4, s.End)

	row := f.grid.Rows()[1]
	require.Equal(t, "", row[ColSplitID])
	require.Equal(t, "Market", row[ColDescription])
	require.Equal(t, "0.00", row[ColAmount])
	require.Equal(t, grid.StyleNeutral, f.grid.RowStyle(0))
	require.Equal(t, grid.StyleActive, f.grid.RowStyle(1))
	r, c, ok := f.grid.Selection()
	require.True(t, ok)
	require.Equal(t, 1, r)
	require.Equal(t, ColFund, c)

	require.NoError(t, f.ed.EditCell(2, ColDate, "12-31-2026"))
	require.Equal(t, "2026-01-01", f.grid.Cell(0, ColDate))
	for r := 1; r < 4; r++ {
		require.Equal(t, "12-31-2026", f.grid.Cell(r, ColDate))
	}

	id, err := f.ed.Save(f.ctx)
	require.NoError(t, err)
	splits, err := f.store.Transactions.Splits(f.ctx, id)
	require.NoError(t, err)
	require.Len(t, splits, 3)
	require.True(t, splits[0].Amount.IsZero())
	got, err := f.store.Transactions.Get(f.ctx, id)
	require.NoError(t, err)
	require.Equal(t, "2026-12-31", got.UserDate)
}

func TestWindowActionsNeedSelectionInWindow(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.grid.Select(1, ColDate)
	require.NoError(t, f.ed.BeginEdit(f.ctx))

	f.grid.Select(0, ColAmount)
	_, err := f.ed.BalanceSplit()
	require.ErrorIs(t, err, ErrOutsideWindow)

	f.grid.ClearSelection()
	_, err = f.ed.BalanceSplit()
	require.ErrorIs(t, err, ErrNoSelection)
	require.ErrorIs(t, f.ed.DeleteSplit(f.ctx), ErrNoSelection)

	// No selection appends at the end of the window.
	require.NoError(t, f.ed.AddSplit(f.ctx))
	s, _ := f.ed.Session()
	require.Equal(t, 4, s.End)
	require.Equal(t, "0.00", f.grid.Cell(3, ColAmount))
}

func TestEditCellChoiceMustBeOffered(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.editPaycheck(t)

	require.ErrorIs(t, f.ed.EditCell(0, ColAccount, "99:Nowhere"), ledger.ErrInvalidChoice)
	require.ErrorIs(t, f.ed.EditCell(0, ColFund, ""), ledger.ErrInvalidChoice)
	require.Equal(t, "1:Checking", f.grid.Cell(0, ColAccount))

	require.NoError(t, f.ed.EditCell(0, ColAccount, "2"))
	require.Equal(t, "2:Groceries", f.grid.Cell(0, ColAccount))
	c, err := f.grid.ChoiceAt(0, ColAccount)
	require.NoError(t, err)
	require.Equal(t, int64(2), c.ID)
}

func TestFinishReloadFailureLeavesNoWindow(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	store := &flakyStore{Store: f.store}
	ed := New(Deps{
		Store:    store,
		Grid:     f.grid,
		Accounts: f.accounts,
		Funds:    f.funds,
		Log:      logging.Nop(),
	})
	require.NoError(t, ed.Refresh(f.ctx))
	f.grid.Select(0, ColDate)
	require.NoError(t, ed.BeginEdit(f.ctx))

	store.failFetch = true
	require.ErrorIs(t, ed.Cancel(f.ctx), errStoreDown)

	require.Equal(t, ModeInitial, ed.Mode())
	require.True(t, f.accounts.enabled)
	for r := 0; r < f.grid.Len(); r++ {
		require.Equal(t, grid.StyleNeutral, f.grid.RowStyle(r))
		require.True(t, f.grid.Readonly(r, ColAmount))
	}

	store.failFetch = false
	require.NoError(t, ed.Refresh(f.ctx))
	require.Equal(t, 2, f.grid.Len())
}
