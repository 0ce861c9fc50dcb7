package editor

import (
	"fmt"

	"github.com/jask/tallis/internal/ledger"
)

// EditCell is the per-cell edit interceptor. The UI routes every user edit
// through it instead of writing the grid directly. Invalid dates and amounts
// are rejected and the cell keeps its prior value. Date and description are
// pinned fields: an accepted edit is copied to every other row of the window.
func (e *Editor) EditCell(row, col int, value string) error {
	s, err := e.active()
	if err != nil {
		return err
	}
	if !s.contains(row) {
		return fmt.Errorf("%w: row %d", ErrOutsideWindow, row)
	}
	if e.grid.Readonly(row, col) {
		return fmt.Errorf("%w: (%d,%d)", ErrReadonlyCell, row, col)
	}

	switch col {
	case ColDate:
		if _, err := ledger.ParseDate(value); err != nil {
			e.sessionLog(s).Info().Str("value", value).Msg("date rejected")
			return err
		}
		if err := e.grid.SetCell(row, col, value); err != nil {
			return err
		}
		s.date = value
		e.propagate(s, row, col, value)
	case ColDescription:
		if err := e.grid.SetCell(row, col, value); err != nil {
			return err
		}
		s.description = value
		e.propagate(s, row, col, value)
	case ColAmount:
		if _, err := ledger.ParseAmount(value); err != nil {
			e.sessionLog(s).Info().Str("value", value).Msg("amount rejected")
			return err
		}
		return e.grid.SetCell(row, col, value)
	case ColFund, ColAccount:
		d, ok := e.grid.Dropdown(row, col)
		if !ok {
			if _, err := ledger.ParseChoice(value); err != nil {
				return err
			}
			return e.grid.SetCell(row, col, value)
		}
		i, ok := ledger.FindChoice(d.Options, value)
		if !ok {
			e.sessionLog(s).Info().Str("value", value).Msg("choice rejected")
			return fmt.Errorf("%w: %q is not offered", ledger.ErrInvalidChoice, value)
		}
		return e.grid.SetCell(row, col, d.Options[i].String())
	default:
		return e.grid.SetCell(row, col, value)
	}
	return nil
}

// propagate copies a pinned-field value to the other rows of the window.
func (e *Editor) propagate(s *session, from, col int, value string) {
	for r := s.start; r < s.end; r++ {
		if r == from {
			continue
		}
		if err := e.grid.SetCell(r, col, value); err != nil {
			e.sessionLog(s).Warn().Err(err).Int("row", r).Msg("propagate")
		}
	}
}
