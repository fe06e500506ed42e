// ABOUTME: Key bindings for the stopwatch screen.
// ABOUTME: Implements help.KeyMap so the help bar renders from the same bindings.
package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Toggle   key.Binding
	Reset    key.Binding
	Activity key.Binding
	Save     key.Binding
	Quit     key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Toggle: key.NewBinding(
			key.WithKeys(" ", "space", "p"),
			key.WithHelp("space", "start/stop"),
		),
		Reset: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reset"),
		),
		Activity: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "activity"),
		),
		Save: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "save"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "discard"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Reset, k.Activity, k.Save, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
