// Package editor is the transaction editing state machine behind the ledger
// grid. In initial mode the grid shows the filtered ledger with a running
// balance, fully readonly. Activating a row splices that transaction's splits
// into the view and opens them as an editable window; starting a new
// transaction appends two blank splits instead. Save checks the double-entry
// balance and hands the window to the store as one atomic replace.
//
// Every method runs to completion on the caller's goroutine. The editor is not
// safe for concurrent use.
package editor

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jask/tallis/internal/database/repository"
	"github.com/jask/tallis/internal/grid"
	"github.com/jask/tallis/internal/ledger"
)

// Store is the ledger persistence the editor needs.
type Store interface {
	ListAccounts(ctx context.Context) ([]repository.Account, error)
	ListFunds(ctx context.Context) ([]repository.Fund, error)
	FetchLedger(ctx context.Context, f repository.Filter) ([]repository.LedgerRow, error)
	FetchTransactionSplits(ctx context.Context, transactionID int64) ([]repository.LedgerRow, error)
	ReplaceTransaction(ctx context.Context, oldID *int64, userDate, description string, splits []repository.SplitInput) (int64, error)
	SoftDeleteTransaction(ctx context.Context, id int64) error
}

// Grid is the table the user sees. *grid.Grid implements it.
type Grid interface {
	SetColumns(cols []string)
	SetRows(rows [][]string)
	Rows() [][]string
	Len() int
	Cell(row, col int) string
	SetCell(row, col int, value string) error
	Readonly(row, col int) bool
	SetCellReadonly(row, col int, readonly bool)
	SetRowRangeReadonly(start, end int, readonly bool)
	SetAllReadonly(readonly bool)
	HighlightRow(row int, style grid.Style)
	AttachDropdown(row, col int, options []ledger.Choice, current string) error
	Dropdown(row, col int) (grid.Dropdown, bool)
	ChoiceAt(row, col int) (ledger.Choice, error)
	SelectedRow() (int, bool)
	SetFocus(row, col int)
}

// Selector is an account or fund filter widget.
type Selector interface {
	SelectedID() int64
	SetEnabled(enabled bool)
}

// Buttons is the action panel; it shows the actions valid in a mode.
type Buttons interface {
	Show(mode Mode)
}

// Deps wires an Editor.
type Deps struct {
	Store    Store
	Grid     Grid
	Accounts Selector
	Funds    Selector
	Buttons  Buttons
	Log      zerolog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// Editor owns the mode, the editable window and the pinned fields.
type Editor struct {
	store    Store
	grid     Grid
	accounts Selector
	funds    Selector
	buttons  Buttons
	log      zerolog.Logger
	now      func() time.Time

	filterKind repository.FilterKind
	state      state
}

func New(d Deps) *Editor {
	now := d.Now
	if now == nil {
		now = time.Now
	}
	return &Editor{
		store:      d.Store,
		grid:       d.Grid,
		accounts:   d.Accounts,
		funds:      d.Funds,
		buttons:    d.Buttons,
		log:        d.Log,
		now:        now,
		filterKind: repository.FilterAccount,
		state:      initialState{},
	}
}

// Mode reports the current mode.
func (e *Editor) Mode() Mode { return e.state.mode() }

// Session returns the active edit or add session.
func (e *Editor) Session() (Session, bool) {
	switch s := e.state.(type) {
	case *editingState:
		return snapshot(ModeEdit, &s.session, s.transactionID), true
	case *addingState:
		return snapshot(ModeAdd, &s.session, 0), true
	default:
		return Session{}, false
	}
}

func snapshot(m Mode, s *session, txID int64) Session {
	return Session{
		ID:            s.id,
		Mode:          m,
		TransactionID: txID,
		Date:          s.date,
		Description:   s.description,
		Start:         s.start,
		End:           s.end,
	}
}

// Filter is the ledger filter currently shown.
func (e *Editor) Filter() repository.Filter {
	if e.filterKind == repository.FilterFund {
		return repository.Filter{Kind: repository.FilterFund, ID: e.funds.SelectedID()}
	}
	return repository.Filter{Kind: repository.FilterAccount, ID: e.accounts.SelectedID()}
}

// ChangeFilter switches the view to the account or fund selector and reloads it.
// Only valid in initial mode.
func (e *Editor) ChangeFilter(ctx context.Context, kind repository.FilterKind) error {
	if e.Mode() != ModeInitial {
		e.log.Debug().Str("mode", e.Mode().String()).Msg("filter change refused")
		return ErrWrongMode
	}
	if !kind.Valid() {
		return fmt.Errorf("%w: %q", repository.ErrInvalidFilter, kind)
	}
	e.filterKind = kind
	return e.showCanonical(ctx)
}

// Refresh reloads the canonical view. Only valid in initial mode.
func (e *Editor) Refresh(ctx context.Context) error {
	if e.Mode() != ModeInitial {
		return ErrWrongMode
	}
	return e.showCanonical(ctx)
}

// showCanonical loads the filtered ledger with its running balance, neutral
// and fully readonly.
func (e *Editor) showCanonical(ctx context.Context) error {
	f := e.Filter()
	rows, err := e.store.FetchLedger(ctx, f)
	if err != nil {
		e.log.Error().Err(err).Str("filter", f.String()).Msg("fetch ledger")
		return fmt.Errorf("fetch ledger %s: %w", f, err)
	}
	e.grid.SetColumns(Columns(true))
	e.grid.SetRows(displayRows(rows, true))
	for i := 0; i < e.grid.Len(); i++ {
		e.grid.HighlightRow(i, grid.StyleNeutral)
	}
	e.grid.SetAllReadonly(true)
	return nil
}

func (e *Editor) loadChoices(ctx context.Context) (choices, error) {
	accts, err := e.store.ListAccounts(ctx)
	if err != nil {
		return choices{}, fmt.Errorf("list accounts: %w", err)
	}
	funds, err := e.store.ListFunds(ctx)
	if err != nil {
		return choices{}, fmt.Errorf("list funds: %w", err)
	}
	var c choices
	for _, a := range accts {
		c.accounts = append(c.accounts, ledger.NewChoice(a.ID, a.Name))
	}
	for _, f := range funds {
		c.funds = append(c.funds, ledger.NewChoice(f.ID, f.Name))
	}
	return c, nil
}

// BeginEdit opens the transaction on the selected row for editing.
func (e *Editor) BeginEdit(ctx context.Context) error {
	if e.Mode() != ModeInitial {
		return ErrWrongMode
	}
	row, ok := e.grid.SelectedRow()
	if !ok || row >= e.grid.Len() {
		e.log.Debug().Msg("begin edit without selection")
		return ErrNoSelection
	}
	txID, err := strconv.ParseInt(e.grid.Cell(row, ColTransactionID), 10, 64)
	if err != nil {
		return fmt.Errorf("row %d has no transaction id: %w", row, err)
	}
	date := e.grid.Cell(row, ColDate)
	desc := e.grid.Cell(row, ColDescription)

	f := e.Filter()
	ledgerRows, err := e.store.FetchLedger(ctx, f)
	if err != nil {
		return fmt.Errorf("fetch ledger %s: %w", f, err)
	}
	splits, err := e.store.FetchTransactionSplits(ctx, txID)
	if err != nil {
		return fmt.Errorf("fetch transaction %d: %w", txID, err)
	}
	if len(splits) == 0 {
		return fmt.Errorf("%w: transaction %d", ErrNoSplits, txID)
	}
	opts, err := e.loadChoices(ctx)
	if err != nil {
		return err
	}

	base := displayRows(ledgerRows, false)
	if row >= len(base) {
		return fmt.Errorf("%w: row %d is past the refreshed view", ErrNoSelection, row)
	}
	spliced := make([][]string, 0, len(base)+len(splits))
	spliced = append(spliced, base[:row]...)
	spliced = append(spliced, displayRows(splits, false)...)
	spliced = append(spliced, base[row+1:]...)

	st := &editingState{
		session: session{
			id:          uuid.NewString(),
			start:       row,
			end:         row + len(splits),
			date:        date,
			description: desc,
		},
		transactionID: txID,
	}
	e.grid.SetColumns(Columns(false))
	e.grid.SetRows(spliced)
	e.applyWindow(&st.session, opts)
	e.enterSession(st, &st.session, ColFund)
	e.sessionLog(&st.session).Info().Int64("transaction", txID).Int("splits", len(splits)).Msg("edit started")
	return nil
}

// StartNew opens two blank splits at the end of the filtered view.
func (e *Editor) StartNew(ctx context.Context) error {
	if e.Mode() != ModeInitial {
		return ErrWrongMode
	}
	f := e.Filter()
	ledgerRows, err := e.store.FetchLedger(ctx, f)
	if err != nil {
		return fmt.Errorf("fetch ledger %s: %w", f, err)
	}
	opts, err := e.loadChoices(ctx)
	if err != nil {
		return err
	}

	rows := displayRows(ledgerRows, false)
	st := &addingState{
		session: session{
			id:    uuid.NewString(),
			start: len(rows),
			end:   len(rows) + 2,
			date:  ledger.FormatDate(e.now()),
		},
	}
	for i := 0; i < 2; i++ {
		rows = append(rows, e.blankSplit(&st.session, "", opts))
	}
	e.grid.SetColumns(Columns(false))
	e.grid.SetRows(rows)
	e.applyWindow(&st.session, opts)
	e.enterSession(st, &st.session, ColDescription)
	e.sessionLog(&st.session).Info().Msg("add started")
	return nil
}

// blankSplit is a new window row carrying the pinned fields and the selected
// filters as default fund and account.
func (e *Editor) blankSplit(s *session, txID string, opts choices) []string {
	return []string{
		"",
		txID,
		s.date,
		s.description,
		opts.fund(e.funds.SelectedID()).String(),
		opts.account(e.accounts.SelectedID()).String(),
		zeroAmount,
	}
}

func (e *Editor) enterSession(st state, s *session, focusCol int) {
	e.state = st
	e.accounts.SetEnabled(false)
	e.funds.SetEnabled(false)
	if e.buttons != nil {
		e.buttons.Show(st.mode())
	}
	e.grid.SetFocus(s.start, focusCol)
}

// applyWindow re-derives highlight, readonly flags and dropdowns from the window.
func (e *Editor) applyWindow(s *session, opts choices) {
	for i := 0; i < e.grid.Len(); i++ {
		style := grid.StyleNeutral
		if s.contains(i) {
			style = grid.StyleActive
		}
		e.grid.HighlightRow(i, style)
	}
	e.grid.SetAllReadonly(true)
	e.grid.SetRowRangeReadonly(s.start, s.end, false)
	for r := s.start; r < s.end; r++ {
		e.grid.SetCellReadonly(r, ColSplitID, true)
		e.grid.SetCellReadonly(r, ColTransactionID, true)
		if err := e.grid.AttachDropdown(r, ColFund, opts.funds, e.grid.Cell(r, ColFund)); err != nil {
			e.log.Warn().Err(err).Int("row", r).Msg("attach fund dropdown")
		}
		if err := e.grid.AttachDropdown(r, ColAccount, opts.accounts, e.grid.Cell(r, ColAccount)); err != nil {
			e.log.Warn().Err(err).Int("row", r).Msg("attach account dropdown")
		}
	}
}

// active returns the session of an edit or add state.
func (e *Editor) active() (*session, error) {
	switch s := e.state.(type) {
	case *editingState:
		return &s.session, nil
	case *addingState:
		return &s.session, nil
	default:
		return nil, ErrWrongMode
	}
}

func (e *Editor) sessionLog(s *session) *zerolog.Logger {
	l := e.log.With().Str("session", s.id).Logger()
	return &l
}
