package tui

import (
	"sort"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/tallis/internal/ledger"
)

// pickTarget says what a picker result is applied to.
type pickTarget int

const (
	pickAccountFilter pickTarget = iota
	pickFundFilter
	pickCell
)

// picker is a filterable option list. The typed query ranks options.
type picker struct {
	title    string
	target   pickTarget
	row, col int
	input    textinput.Model
	options  []ledger.Choice
	ranked   []ledger.Choice
	cursor   int
}

func newPicker(title string, target pickTarget, options []ledger.Choice, current int) *picker {
	inp := textinput.New()
	inp.Placeholder = "filter"
	inp.Prompt = "> "
	inp.Focus()
	p := &picker{title: title, target: target, input: inp, options: options}
	p.refresh()
	if current >= 0 && current < len(p.ranked) {
		p.cursor = current
	}
	return p
}

// update handles a key. done is true when the picker closes; ok reports
// whether an option was chosen.
func (p *picker) update(msg tea.KeyMsg) (choice ledger.Choice, done, ok bool, cmd tea.Cmd) {
	switch msg.String() {
	case "esc":
		return ledger.Choice{}, true, false, nil
	case "enter":
		if len(p.ranked) == 0 {
			return ledger.Choice{}, true, false, nil
		}
		return p.ranked[p.cursor], true, true, nil
	case "up", "ctrl+p":
		if p.cursor > 0 {
			p.cursor--
		}
		return ledger.Choice{}, false, false, nil
	case "down", "ctrl+n":
		if p.cursor < len(p.ranked)-1 {
			p.cursor++
		}
		return ledger.Choice{}, false, false, nil
	}
	before := p.input.Value()
	p.input, cmd = p.input.Update(msg)
	if p.input.Value() != before {
		p.refresh()
		p.cursor = 0
	}
	return ledger.Choice{}, false, false, cmd
}

func (p *picker) refresh() {
	p.ranked = rankChoices(p.options, p.input.Value())
}

func (p *picker) view() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(p.title))
	b.WriteString("\n")
	b.WriteString(p.input.View())
	b.WriteString("\n")
	for i, o := range p.ranked {
		line := optionLabel(o)
		if i == p.cursor {
			b.WriteString(cursorStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	b.WriteString(faintStyle.Render("[enter] select  [esc] close"))
	return modalStyle.Render(b.String())
}

func optionLabel(c ledger.Choice) string {
	return strconv.FormatInt(c.ID, 10) + " - " + c.Label
}

// rankChoices orders options for a query: substring matches on the id or
// label first, by match position, then everything else by Levenshtein
// distance to the label. An empty query keeps the given order.
func rankChoices(options []ledger.Choice, query string) []ledger.Choice {
	out := append([]ledger.Choice(nil), options...)
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return out
	}
	type scored struct {
		hit  bool
		pos  int
		dist int
	}
	scores := make(map[int64]scored, len(out))
	for _, o := range out {
		label := strings.ToLower(o.Label)
		s := scored{pos: strings.Index(label, q)}
		if s.pos < 0 && strings.HasPrefix(strconv.FormatInt(o.ID, 10), q) {
			s.pos = 0
		}
		s.hit = s.pos >= 0
		if !s.hit {
			s.dist = levenshtein.ComputeDistance(q, label)
		}
		scores[o.ID] = s
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := scores[out[i].ID], scores[out[j].ID]
		if a.hit != b.hit {
			return a.hit
		}
		if a.hit {
			return a.pos < b.pos
		}
		return a.dist < b.dist
	})
	return out
}
