package app

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keyboard bindings for the TUI.
type KeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Enter     key.Binding
	Tab       key.Binding
	Dashboard key.Binding
	Documents key.Binding
	Zone1     key.Binding
	Zone2     key.Binding
	Zone3     key.Binding
	Escape    key.Binding
	Quit      key.Binding
	Users     key.Binding
	Events    key.Binding
	Refresh   key.Binding
	Download  key.Binding
	Approve   key.Binding
	Reject    key.Binding
	Delete    key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "prev document"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "next document"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "document detail"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "cycle zone"),
		),
		Dashboard: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "dashboard"),
		),
		Documents: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "documents"),
		),
		Zone1: key.NewBinding(
			key.WithKeys("!"),
			key.WithHelp("!", "queue zone"),
		),
		Zone2: key.NewBinding(
			key.WithKeys("@"),
			key.WithHelp("@", "review zone"),
		),
		Zone3: key.NewBinding(
			key.WithKeys("#"),
			key.WithHelp("#", "decided zone"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close overlay"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Users: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "user admin"),
		),
		Events: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "event log"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Download: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "download"),
		),
		Approve: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "approve"),
		),
		Reject: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "reject"),
		),
		Delete: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "delete"),
		),
	}
}
