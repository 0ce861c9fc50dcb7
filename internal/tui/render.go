package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jask/tallis/internal/database/repository"
	"github.com/jask/tallis/internal/editor"
	"github.com/jask/tallis/internal/grid"
)

var (
	titleStyle        = lipgloss.NewStyle().Bold(true).Underline(true)
	faintStyle        = lipgloss.NewStyle().Faint(true)
	cursorStyle       = lipgloss.NewStyle().Bold(true).Underline(true)
	activeRowStyle    = lipgloss.NewStyle().Reverse(true)
	activeFilterStyle = lipgloss.NewStyle().Bold(true)
	headerStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	statusStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	buttonStyle       = lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.RoundedBorder())
	modalStyle        = lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.NormalBorder())
)

const maxCellWidth = 28

func (a *App) View() string {
	var b strings.Builder
	session, inSession := a.editor.Session()

	title := "Tallis Ledger"
	if inSession {
		title += " - " + session.Mode.String()
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")

	kind := a.editor.Filter().Kind
	b.WriteString(a.funds.view(kind == repository.FilterFund))
	b.WriteString("   ")
	b.WriteString(a.accounts.view(kind == repository.FilterAccount))
	b.WriteString("\n\n")

	b.WriteString(a.renderGrid())

	if panel := a.buttons.view(); panel != "" {
		b.WriteString("\n")
		b.WriteString(panel)
	}
	b.WriteString("\n")
	if a.status != "" {
		b.WriteString(statusStyle.Render(a.status))
		b.WriteString("\n")
	}
	if inSession {
		b.WriteString(faintStyle.Render(helpLine(a.keys.sessionHelp(session.Mode == editor.ModeEdit))))
	} else {
		b.WriteString(faintStyle.Render(helpLine(a.keys.initialHelp())))
	}

	switch a.modal {
	case modalPicker:
		b.WriteString("\n\n" + a.picker.view())
	case modalCellInput:
		b.WriteString("\n\n" + modalStyle.Render(a.input.View()+"\n"+faintStyle.Render("[enter] apply  [esc] cancel")))
	case modalConfirmDelete:
		b.WriteString("\n\n" + modalStyle.Render(titleStyle.Render("Delete transaction?")+
			"\n"+a.confirm+"\n[y] Yes  [n] No"))
	}
	return b.String()
}

// visibleRows is how many grid rows fit under the header and above the panels.
func (a *App) visibleRows() int {
	const chrome = 12
	if a.height-chrome < 3 {
		return 3
	}
	return a.height - chrome
}

// scrollToCursor keeps the cursor row inside the visible slice of the grid.
func (a *App) scrollToCursor() {
	height := a.visibleRows()
	if row, _, ok := a.grid.Selection(); ok {
		if row < a.offset {
			a.offset = row
		}
		if row >= a.offset+height {
			a.offset = row - height + 1
		}
	}
	if a.offset > a.grid.Len()-height {
		a.offset = max(0, a.grid.Len()-height)
	}
}

func (a *App) renderGrid() string {
	cols := a.grid.Columns()
	rows := a.grid.Rows()
	if len(cols) == 0 {
		return faintStyle.Render("(loading)") + "\n"
	}

	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = lipgloss.Width(c)
	}
	for _, r := range rows {
		for i, cell := range r {
			if w := lipgloss.Width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	for i := range widths {
		if widths[i] > maxCellWidth {
			widths[i] = maxCellWidth
		}
	}

	selRow, selCol, hasSel := a.grid.Selection()
	height := a.visibleRows()

	var b strings.Builder
	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = headerStyle.Render(pad(c, widths[i]))
	}
	b.WriteString(strings.Join(header, " "))
	b.WriteString("\n")

	if len(rows) == 0 {
		b.WriteString(faintStyle.Render("no splits for this filter"))
		b.WriteString("\n")
		return b.String()
	}

	end := min(len(rows), a.offset+height)
	for r := a.offset; r < end; r++ {
		active := a.grid.RowStyle(r) == grid.StyleActive
		cells := make([]string, len(cols))
		for c := range cols {
			text := pad(rows[r][c], widths[c])
			st := lipgloss.NewStyle()
			if active {
				st = activeRowStyle
				if a.grid.Readonly(r, c) {
					st = st.Faint(true)
				}
			}
			if hasSel && r == selRow && c == selCol {
				st = st.Inherit(cursorStyle)
			}
			cells[c] = st.Render(text)
		}
		b.WriteString(strings.Join(cells, " "))
		b.WriteString("\n")
	}
	if len(rows) > height {
		b.WriteString(faintStyle.Render(rowCounter(a.offset, end, len(rows))))
		b.WriteString("\n")
	}
	return b.String()
}

func rowCounter(from, to, total int) string {
	return fmt.Sprintf("rows %d-%d of %d", from+1, to, total)
}

func pad(s string, w int) string {
	if lipgloss.Width(s) > w {
		r := []rune(s)
		if w <= 1 {
			return string(r[:w])
		}
		for lipgloss.Width(string(r)) > w-1 {
			r = r[:len(r)-1]
		}
		return string(r) + "…"
	}
	return s + strings.Repeat(" ", w-lipgloss.Width(s))
}
