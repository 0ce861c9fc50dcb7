package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	Up, Down, Left, Right key.Binding

	// initial
	Edit, New, PickAccount, PickFund, Export, Quit key.Binding

	// edit and add
	EditCell, AddSplit, DeleteSplit, Balance, Save, Cancel, DeleteTx key.Binding

	// modals
	Confirm, Deny key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Up:    key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:  key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:  key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "left")),
		Right: key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "right")),

		Edit:        key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "edit transaction")),
		New:         key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
		PickAccount: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "account")),
		PickFund:    key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "fund")),
		Export:      key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "export")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),

		EditCell:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "edit cell")),
		AddSplit:    key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "add split")),
		DeleteSplit: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete split")),
		Balance:     key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "balance")),
		Save:        key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		Cancel:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		DeleteTx:    key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "delete transaction")),

		Confirm: key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "yes")),
		Deny:    key.NewBinding(key.WithKeys("n", "N", "esc"), key.WithHelp("n", "no")),
	}
}

func (k keyMap) initialHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Edit, k.New, k.PickAccount, k.PickFund, k.Export, k.Quit}
}

func (k keyMap) sessionHelp(canDelete bool) []key.Binding {
	out := []key.Binding{k.EditCell, k.AddSplit, k.DeleteSplit, k.Balance, k.Save, k.Cancel}
	if canDelete {
		out = append(out, k.DeleteTx)
	}
	return out
}

func helpLine(bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " • ")
}
