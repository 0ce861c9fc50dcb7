package editor

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jask/tallis/internal/ledger"
)

// AddSplit inserts a blank split into the window. A selection before the
// window inserts at its start, one at or after it (or none) at its end, and
// one inside it right after the selected row.
func (e *Editor) AddSplit(ctx context.Context) error {
	s, err := e.active()
	if err != nil {
		return err
	}
	opts, err := e.loadChoices(ctx)
	if err != nil {
		return err
	}

	at := s.end
	if sel, ok := e.grid.SelectedRow(); ok {
		switch {
		case sel < s.start:
			at = s.start
		case sel >= s.end:
			at = s.end
		default:
			at = sel + 1
		}
	}

	txID := ""
	if st, ok := e.state.(*editingState); ok {
		txID = fmt.Sprint(st.transactionID)
	}
	rows := e.grid.Rows()
	rows = append(rows, nil)
	copy(rows[at+1:], rows[at:])
	rows[at] = e.blankSplit(s, txID, opts)

	e.grid.SetRows(rows)
	s.end++
	e.applyWindow(s, opts)
	e.grid.SetFocus(at, ColFund)
	e.sessionLog(s).Debug().Int("row", at).Int("splits", s.size()).Msg("split added")
	return nil
}

// DeleteSplit removes the selected split. The window never shrinks below one row.
func (e *Editor) DeleteSplit(ctx context.Context) error {
	s, err := e.active()
	if err != nil {
		return err
	}
	sel, err := e.selectedInWindow(s)
	if err != nil {
		return err
	}
	if s.size() <= 1 {
		e.sessionLog(s).Debug().Msg("delete of last split refused")
		return ErrLastSplit
	}
	opts, err := e.loadChoices(ctx)
	if err != nil {
		return err
	}

	rows := e.grid.Rows()
	rows = append(rows[:sel], rows[sel+1:]...)
	e.grid.SetRows(rows)
	s.end--
	e.applyWindow(s, opts)
	focus := sel
	if focus >= s.end {
		focus = s.end - 1
	}
	e.grid.SetFocus(focus, ColFund)
	e.sessionLog(s).Debug().Int("row", sel).Int("splits", s.size()).Msg("split deleted")
	return nil
}

// BalanceSplit sets the selected split's amount to the negated sum of the
// other splits in the window and returns the written value.
func (e *Editor) BalanceSplit() (string, error) {
	s, err := e.active()
	if err != nil {
		return "", err
	}
	sel, err := e.selectedInWindow(s)
	if err != nil {
		return "", err
	}
	others := make([]decimal.Decimal, 0, s.size())
	for r := s.start; r < s.end; r++ {
		if r == sel {
			continue
		}
		amt, err := ledger.ParseAmount(e.grid.Cell(r, ColAmount))
		if err != nil {
			return "", fmt.Errorf("row %d: %w", r, err)
		}
		others = append(others, amt)
	}
	value := ledger.FormatAmount(ledger.Balancing(others))
	if err := e.grid.SetCell(sel, ColAmount, value); err != nil {
		return "", err
	}
	return value, nil
}

func (e *Editor) selectedInWindow(s *session) (int, error) {
	sel, ok := e.grid.SelectedRow()
	if !ok {
		return 0, ErrNoSelection
	}
	if !s.contains(sel) {
		return 0, fmt.Errorf("%w: row %d", ErrOutsideWindow, sel)
	}
	return sel, nil
}

// windowAmounts parses the amount of every row in the window.
func (e *Editor) windowAmounts(s *session) ([]decimal.Decimal, error) {
	out := make([]decimal.Decimal, 0, s.size())
	for r := s.start; r < s.end; r++ {
		amt, err := ledger.ParseAmount(e.grid.Cell(r, ColAmount))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", r, err)
		}
		out = append(out, amt)
	}
	return out, nil
}
