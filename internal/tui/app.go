package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/jask/tallis/internal/database/repository"
	"github.com/jask/tallis/internal/editor"
	"github.com/jask/tallis/internal/grid"
	"github.com/jask/tallis/internal/ledger"
	"github.com/jask/tallis/internal/prefs"
)

// Store is the ledger store the screen runs on.
type Store interface {
	editor.Store
	GetTransaction(ctx context.Context, id int64) (*repository.Transaction, error)
}

// Exporter writes the current view to a spreadsheet.
type Exporter interface {
	ExportFile(ctx context.Context, f repository.Filter, dir string, now time.Time) (string, int, error)
}

// FilterSaver persists the last filter.
type FilterSaver interface {
	SaveFilter(f prefs.Filter) error
}

// Options wires an App.
type Options struct {
	Store     Store
	Export    Exporter
	Prefs     FilterSaver
	ExportDir string
	// Filter is restored once the reference lists are loaded.
	Filter prefs.Filter
	Log    zerolog.Logger
	Now    func() time.Time
}

// App is the ledger editor screen: selectors, the grid, the button panel and
// modals on top of an editor.Editor.
type App struct {
	ctx       context.Context
	log       zerolog.Logger
	now       func() time.Time
	store     Store
	export    Exporter
	prefs     FilterSaver
	exportDir string
	initial   prefs.Filter

	editor   *editor.Editor
	grid     *grid.Grid
	accounts *Selector
	funds    *Selector
	buttons  *ButtonPanel

	keys    keyMap
	modal   modalState
	picker  *picker
	input   textinput.Model
	confirm string
	status  string

	editRow, editCol int
	width, height    int
	offset           int
}

type modalState string

const (
	modalNone          modalState = ""
	modalPicker        modalState = "picker"
	modalCellInput     modalState = "cellInput"
	modalConfirmDelete modalState = "confirmDelete"
)

type (
	errMsg    struct{ error }
	statusMsg string
	refsMsg   struct {
		accounts []ledger.Choice
		funds    []ledger.Choice
	}
	exportedMsg struct {
		path string
		rows int
	}
)

func New(ctx context.Context, opts Options) *App {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	a := &App{
		ctx:       ctx,
		log:       opts.Log,
		now:       now,
		store:     opts.Store,
		export:    opts.Export,
		prefs:     opts.Prefs,
		exportDir: opts.ExportDir,
		initial:   opts.Filter,
		grid:      grid.New(),
		accounts:  NewSelector("Account"),
		funds:     NewSelector("Fund"),
		buttons:   &ButtonPanel{},
		keys:      defaultKeys(),
		height:    24,
		width:     100,
	}
	a.editor = editor.New(editor.Deps{
		Store:    opts.Store,
		Grid:     a.grid,
		Accounts: a.accounts,
		Funds:    a.funds,
		Buttons:  a.buttons,
		Log:      opts.Log,
		Now:      now,
	})
	return a
}

func (a *App) Init() tea.Cmd {
	return a.loadRefs()
}

func (a *App) loadRefs() tea.Cmd {
	return func() tea.Msg {
		accts, err := a.store.ListAccounts(a.ctx)
		if err != nil {
			return errMsg{fmt.Errorf("list accounts: %w", err)}
		}
		funds, err := a.store.ListFunds(a.ctx)
		if err != nil {
			return errMsg{fmt.Errorf("list funds: %w", err)}
		}
		var m refsMsg
		for _, x := range accts {
			m.accounts = append(m.accounts, ledger.NewChoice(x.ID, x.Name))
		}
		for _, x := range funds {
			m.funds = append(m.funds, ledger.NewChoice(x.ID, x.Name))
		}
		return m
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := a.update(msg)
	a.scrollToCursor()
	return model, cmd
}

func (a *App) update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
	case tea.KeyMsg:
		if a.modal != modalNone {
			return a.handleModalKey(m)
		}
		if a.editor.Mode() == editor.ModeInitial {
			return a.handleInitialKey(m)
		}
		return a.handleSessionKey(m)
	case refsMsg:
		a.accounts.SetOptions(m.accounts)
		a.funds.SetOptions(m.funds)
		a.accounts.SelectID(a.initial.AccountID)
		a.funds.SelectID(a.initial.FundID)
		kind := a.initial.Kind
		if !kind.Valid() {
			kind = repository.FilterAccount
		}
		a.succeeded(a.editor.ChangeFilter(a.ctx, kind))
		a.cursorToEnd()
	case statusMsg:
		a.status = string(m)
	case errMsg:
		a.status = "error: " + m.Error()
	case exportedMsg:
		a.status = fmt.Sprintf("exported %d rows to %s", m.rows, m.path)
	}
	return a, nil
}

func (a *App) handleInitialKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(m, a.keys.Quit):
		return a, tea.Quit
	case key.Matches(m, a.keys.Up):
		a.moveCursor(-1, 0)
	case key.Matches(m, a.keys.Down):
		a.moveCursor(1, 0)
	case key.Matches(m, a.keys.Edit):
		if a.succeeded(a.editor.BeginEdit(a.ctx)) {
			a.status = "editing transaction"
		}
	case key.Matches(m, a.keys.New):
		if a.succeeded(a.editor.StartNew(a.ctx)) {
			a.status = "new transaction"
		}
	case key.Matches(m, a.keys.PickAccount):
		a.openFilterPicker(pickAccountFilter)
	case key.Matches(m, a.keys.PickFund):
		a.openFilterPicker(pickFundFilter)
	case key.Matches(m, a.keys.Export):
		a.status = "exporting..."
		return a, a.exportCmd(a.editor.Filter())
	}
	return a, nil
}

func (a *App) handleSessionKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case m.String() == "ctrl+c":
		return a, tea.Quit
	case key.Matches(m, a.keys.Up):
		a.moveCursor(-1, 0)
	case key.Matches(m, a.keys.Down):
		a.moveCursor(1, 0)
	case key.Matches(m, a.keys.Left):
		a.moveCursor(0, -1)
	case key.Matches(m, a.keys.Right):
		a.moveCursor(0, 1)
	case key.Matches(m, a.keys.EditCell):
		a.openCellEditor()
	case key.Matches(m, a.keys.AddSplit):
		a.succeeded(a.editor.AddSplit(a.ctx))
	case key.Matches(m, a.keys.DeleteSplit):
		a.succeeded(a.editor.DeleteSplit(a.ctx))
	case key.Matches(m, a.keys.Balance):
		if v, err := a.editor.BalanceSplit(); a.succeeded(err) {
			a.status = "balanced with " + v
		}
	case key.Matches(m, a.keys.Save):
		id, err := a.editor.Save(a.ctx)
		if a.succeeded(err) {
			a.status = fmt.Sprintf("saved transaction %d", id)
		}
	case key.Matches(m, a.keys.Cancel):
		if a.succeeded(a.editor.Cancel(a.ctx)) {
			a.status = "cancelled"
		}
	case key.Matches(m, a.keys.DeleteTx):
		a.openDeleteConfirm()
	}
	return a, nil
}

func (a *App) handleModalKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.modal {
	case modalPicker:
		choice, done, ok, cmd := a.picker.update(m)
		if !done {
			return a, cmd
		}
		p := a.picker
		a.modal, a.picker = modalNone, nil
		if !ok {
			return a, nil
		}
		return a, a.applyPick(p, choice)
	case modalCellInput:
		switch m.String() {
		case "esc":
			a.modal = modalNone
			return a, nil
		case "enter":
			a.modal = modalNone
			a.succeeded(a.editor.EditCell(a.editRow, a.editCol, a.input.Value()))
			return a, nil
		}
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(m)
		return a, cmd
	case modalConfirmDelete:
		switch {
		case key.Matches(m, a.keys.Confirm):
			a.modal = modalNone
			if a.succeeded(a.editor.DeleteTransaction(a.ctx, true)) {
				a.status = "transaction deleted"
			}
		case key.Matches(m, a.keys.Deny):
			a.modal = modalNone
			err := a.editor.DeleteTransaction(a.ctx, false)
			if errors.Is(err, editor.ErrNotConfirmed) {
				a.status = "delete cancelled"
			} else {
				a.succeeded(err)
			}
		}
	}
	return a, nil
}

func (a *App) openFilterPicker(target pickTarget) {
	sel, title := a.accounts, "Account"
	if target == pickFundFilter {
		sel, title = a.funds, "Fund"
	}
	if !sel.Enabled() {
		return
	}
	a.picker = newPicker(title, target, sel.Options(), sel.selectedIndex())
	a.modal = modalPicker
}

// openDeleteConfirm asks before deleting the transaction being edited. The
// prompt names the stored header, not the edited fields.
func (a *App) openDeleteConfirm() {
	sess, ok := a.editor.Session()
	if !ok || sess.Mode != editor.ModeEdit {
		return
	}
	tx, err := a.store.GetTransaction(a.ctx, sess.TransactionID)
	if !a.succeeded(err) {
		return
	}
	if tx == nil || tx.Deleted {
		a.status = fmt.Sprintf("error: %v: %d", repository.ErrTransactionNotFound, sess.TransactionID)
		return
	}
	a.confirm = fmt.Sprintf("Transaction %d, %s %q, and all its splits leave the ledger.", tx.ID, tx.UserDate, tx.Description)
	a.modal = modalConfirmDelete
}

func (a *App) openCellEditor() {
	row, col, ok := a.grid.Selection()
	if !ok {
		a.status = "no cell selected"
		return
	}
	if a.grid.Readonly(row, col) {
		a.status = "cell is readonly"
		return
	}
	if d, ok := a.grid.Dropdown(row, col); ok {
		title := a.grid.Columns()[col]
		a.picker = newPicker(title, pickCell, d.Options, d.Selected)
		a.picker.row, a.picker.col = row, col
		a.modal = modalPicker
		return
	}
	inp := textinput.New()
	inp.Prompt = a.grid.Columns()[col] + ": "
	inp.SetValue(a.grid.Cell(row, col))
	inp.CursorEnd()
	inp.Focus()
	a.input = inp
	a.editRow, a.editCol = row, col
	a.modal = modalCellInput
}

func (a *App) applyPick(p *picker, c ledger.Choice) tea.Cmd {
	switch p.target {
	case pickCell:
		a.succeeded(a.editor.EditCell(p.row, p.col, c.String()))
		return nil
	case pickFundFilter:
		a.funds.SelectID(c.ID)
		return a.changeFilter(repository.FilterFund)
	default:
		a.accounts.SelectID(c.ID)
		return a.changeFilter(repository.FilterAccount)
	}
}

func (a *App) changeFilter(kind repository.FilterKind) tea.Cmd {
	if !a.succeeded(a.editor.ChangeFilter(a.ctx, kind)) {
		return nil
	}
	a.cursorToEnd()
	a.status = "showing " + a.editor.Filter().String()
	return a.saveFilterCmd(prefs.Filter{Kind: kind, AccountID: a.accounts.SelectedID(), FundID: a.funds.SelectedID()})
}

func (a *App) saveFilterCmd(f prefs.Filter) tea.Cmd {
	if a.prefs == nil {
		return nil
	}
	return func() tea.Msg {
		if err := a.prefs.SaveFilter(f); err != nil {
			a.log.Warn().Err(err).Msg("save filter")
			return errMsg{fmt.Errorf("save filter: %w", err)}
		}
		return nil
	}
}

func (a *App) exportCmd(f repository.Filter) tea.Cmd {
	if a.export == nil {
		return func() tea.Msg { return errMsg{errors.New("export not configured")} }
	}
	dir, now := a.exportDir, a.now()
	return func() tea.Msg {
		path, n, err := a.export.ExportFile(a.ctx, f, dir, now)
		if err != nil {
			a.log.Error().Err(err).Str("filter", f.String()).Msg("export")
			return errMsg{err}
		}
		a.log.Info().Str("path", path).Int("rows", n).Msg("exported")
		return exportedMsg{path: path, rows: n}
	}
}

// succeeded reports whether err is nil and otherwise shows it on the status line.
func (a *App) succeeded(err error) bool {
	if err == nil {
		return true
	}
	a.status = "error: " + err.Error()
	return false
}

func (a *App) moveCursor(dr, dc int) {
	n := a.grid.Len()
	if n == 0 {
		return
	}
	row, col, ok := a.grid.Selection()
	if !ok {
		a.grid.Select(0, editor.ColDate)
		return
	}
	row = clamp(row+dr, 0, n-1)
	col = clamp(col+dc, 0, len(a.grid.Columns())-1)
	a.grid.Select(row, col)
}

func (a *App) cursorToEnd() {
	if n := a.grid.Len(); n > 0 {
		a.grid.Select(n-1, editor.ColDate)
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
