package tui

import (
	"strings"

	"github.com/jask/tallis/internal/editor"
	"github.com/jask/tallis/internal/ledger"
)

// Selector is an account or fund filter. It implements editor.Selector.
type Selector struct {
	label    string
	options  []ledger.Choice
	selected int
	enabled  bool
}

func NewSelector(label string) *Selector {
	return &Selector{label: label, enabled: true}
}

// SelectedID is the id of the selected option, or 0 with no options.
func (s *Selector) SelectedID() int64 {
	if s.selected < 0 || s.selected >= len(s.options) {
		return 0
	}
	return s.options[s.selected].ID
}

func (s *Selector) SetEnabled(enabled bool) { s.enabled = enabled }

func (s *Selector) Enabled() bool { return s.enabled }

func (s *Selector) Options() []ledger.Choice { return append([]ledger.Choice(nil), s.options...) }

// SetOptions replaces the options and keeps the current id when it is still offered.
func (s *Selector) SetOptions(opts []ledger.Choice) {
	id := s.SelectedID()
	s.options = append([]ledger.Choice(nil), opts...)
	s.selected = 0
	s.SelectID(id)
}

// SelectID selects the option with id. It reports false when no option has it.
func (s *Selector) SelectID(id int64) bool {
	for i, o := range s.options {
		if o.ID == id {
			s.selected = i
			return true
		}
	}
	return false
}

func (s *Selector) selectedIndex() int { return s.selected }

func (s *Selector) view(active bool) string {
	text := s.label + ": "
	if s.selected < len(s.options) {
		text += optionLabel(s.options[s.selected])
	} else {
		text += "-"
	}
	switch {
	case !s.enabled:
		return faintStyle.Render(text)
	case active:
		return activeFilterStyle.Render("● " + text)
	default:
		return "○ " + text
	}
}

// ButtonPanel lists the actions valid in the current mode. It implements editor.Buttons.
type ButtonPanel struct {
	mode editor.Mode
}

func (p *ButtonPanel) Show(mode editor.Mode) { p.mode = mode }

// Buttons returns the visible button labels. The panel is empty in initial mode.
func (p *ButtonPanel) Buttons() []string {
	switch p.mode {
	case editor.ModeEdit:
		return []string{"Cancel", "Save", "Add split", "Delete split", "Balance split", "Delete transaction"}
	case editor.ModeAdd:
		return []string{"Cancel", "Save", "Add split", "Delete split", "Balance split"}
	default:
		return nil
	}
}

func (p *ButtonPanel) view() string {
	buttons := p.Buttons()
	if len(buttons) == 0 {
		return ""
	}
	rendered := make([]string, len(buttons))
	for i, b := range buttons {
		rendered[i] = buttonStyle.Render(b)
	}
	return strings.Join(rendered, " ")
}
