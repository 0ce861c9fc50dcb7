// Package grid is the in-memory table behind the ledger view: rows of display
// text with per-cell readonly flags, per-row highlight styles, per-cell choice
// dropdowns, a cursor selection and a focus target. It is a display cache and
// is rebuilt from storage whenever the view changes.
package grid

import (
	"errors"
	"fmt"

	"github.com/jask/tallis/internal/ledger"
)

// ErrOutOfRange is returned for cell addresses outside the grid.
var ErrOutOfRange = errors.New("cell out of range")

// Style is a row highlight.
type Style int

const (
	StyleNeutral Style = iota
	StyleActive
)

func (s Style) String() string {
	switch s {
	case StyleActive:
		return "active"
	default:
		return "neutral"
	}
}

// Dropdown is the option set attached to one cell. Selected is -1 when the
// cell text matches no option.
type Dropdown struct {
	Options  []ledger.Choice
	Selected int
}

type cellKey struct{ row, col int }

// Grid holds the rows shown to the user.
type Grid struct {
	columns   []string
	rows      [][]string
	readonly  [][]bool
	styles    []Style
	dropdowns map[cellKey]*Dropdown

	selRow, selCol int
	hasSel         bool
}

func New() *Grid {
	return &Grid{dropdowns: map[cellKey]*Dropdown{}}
}

// SetColumns replaces the header. Existing rows are re-shaped to the new width.
func (g *Grid) SetColumns(cols []string) {
	g.columns = append([]string(nil), cols...)
	g.SetRows(g.rows)
}

func (g *Grid) Columns() []string { return append([]string(nil), g.columns...) }

// ColumnIndex returns the position of a named column.
func (g *Grid) ColumnIndex(name string) (int, bool) {
	for i, c := range g.columns {
		if c == name {
			return i, true
		}
	}
	return -1, false
}

// SetRows replaces every row. Rows are padded or cut to the column count.
// Readonly flags, highlights and dropdowns are reset; the selection is kept
// when it is still inside the grid.
func (g *Grid) SetRows(rows [][]string) {
	width := len(g.columns)
	g.rows = make([][]string, len(rows))
	g.readonly = make([][]bool, len(rows))
	g.styles = make([]Style, len(rows))
	for i, r := range rows {
		row := make([]string, width)
		copy(row, r)
		g.rows[i] = row
		g.readonly[i] = make([]bool, width)
	}
	g.dropdowns = map[cellKey]*Dropdown{}
	if g.hasSel && (g.selRow >= len(g.rows) || g.selCol >= width) {
		g.hasSel = false
	}
}

// Rows returns a copy of all rows.
func (g *Grid) Rows() [][]string {
	out := make([][]string, len(g.rows))
	for i, r := range g.rows {
		out[i] = append([]string(nil), r...)
	}
	return out
}

func (g *Grid) Len() int { return len(g.rows) }

func (g *Grid) inRange(row, col int) bool {
	return row >= 0 && row < len(g.rows) && col >= 0 && col < len(g.columns)
}

// Cell returns the text at row, col, or "" outside the grid.
func (g *Grid) Cell(row, col int) string {
	if !g.inRange(row, col) {
		return ""
	}
	return g.rows[row][col]
}

// SetCell writes text. A dropdown on the cell follows the new text.
func (g *Grid) SetCell(row, col int, value string) error {
	if !g.inRange(row, col) {
		return fmt.Errorf("%w: (%d,%d)", ErrOutOfRange, row, col)
	}
	g.rows[row][col] = value
	if d, ok := g.dropdowns[cellKey{row, col}]; ok {
		d.Selected, _ = ledger.FindChoice(d.Options, value)
	}
	return nil
}

func (g *Grid) Readonly(row, col int) bool {
	if !g.inRange(row, col) {
		return true
	}
	return g.readonly[row][col]
}

func (g *Grid) SetCellReadonly(row, col int, readonly bool) {
	if g.inRange(row, col) {
		g.readonly[row][col] = readonly
	}
}

// SetRowRangeReadonly flags every cell of rows [start, end).
func (g *Grid) SetRowRangeReadonly(start, end int, readonly bool) {
	if start < 0 {
		start = 0
	}
	if end > len(g.rows) {
		end = len(g.rows)
	}
	for r := start; r < end; r++ {
		for c := range g.readonly[r] {
			g.readonly[r][c] = readonly
		}
	}
}

func (g *Grid) SetAllReadonly(readonly bool) {
	g.SetRowRangeReadonly(0, len(g.rows), readonly)
}

func (g *Grid) HighlightRow(row int, style Style) {
	if row >= 0 && row < len(g.styles) {
		g.styles[row] = style
	}
}

func (g *Grid) RowStyle(row int) Style {
	if row >= 0 && row < len(g.styles) {
		return g.styles[row]
	}
	return StyleNeutral
}

// AttachDropdown puts options on a cell. The cell keeps showing current.
func (g *Grid) AttachDropdown(row, col int, options []ledger.Choice, current string) error {
	if !g.inRange(row, col) {
		return fmt.Errorf("%w: (%d,%d)", ErrOutOfRange, row, col)
	}
	d := &Dropdown{Options: append([]ledger.Choice(nil), options...)}
	d.Selected, _ = ledger.FindChoice(d.Options, current)
	g.dropdowns[cellKey{row, col}] = d
	g.rows[row][col] = current
	return nil
}

// Dropdown returns a copy of the dropdown on a cell.
func (g *Grid) Dropdown(row, col int) (Dropdown, bool) {
	d, ok := g.dropdowns[cellKey{row, col}]
	if !ok {
		return Dropdown{}, false
	}
	return Dropdown{Options: append([]ledger.Choice(nil), d.Options...), Selected: d.Selected}, true
}

// ChoiceAt resolves a choice cell: the selected dropdown option when there is
// one, otherwise the cell text decoded as "id:name".
func (g *Grid) ChoiceAt(row, col int) (ledger.Choice, error) {
	if !g.inRange(row, col) {
		return ledger.Choice{}, fmt.Errorf("%w: (%d,%d)", ErrOutOfRange, row, col)
	}
	if d, ok := g.dropdowns[cellKey{row, col}]; ok && d.Selected >= 0 {
		return d.Options[d.Selected], nil
	}
	return ledger.ParseChoice(g.rows[row][col])
}

// Select moves the cursor. Out-of-range positions clear it.
func (g *Grid) Select(row, col int) {
	if !g.inRange(row, col) {
		g.hasSel = false
		return
	}
	g.selRow, g.selCol, g.hasSel = row, col, true
}

// SetFocus moves the cursor to the cell the user should edit next.
func (g *Grid) SetFocus(row, col int) { g.Select(row, col) }

func (g *Grid) ClearSelection() { g.hasSel = false }

// SelectedRow returns the cursor row.
func (g *Grid) SelectedRow() (int, bool) {
	return g.selRow, g.hasSel
}

// Selection returns the cursor cell.
func (g *Grid) Selection() (row, col int, ok bool) {
	return g.selRow, g.selCol, g.hasSel
}
