package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Start  key.Binding
	Submit key.Binding
	Reset  key.Binding
	Quit   key.Binding
}

var defaultKeyMap = keyMap{
	Start: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "start interview"),
	),
	Submit: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "submit answer now"),
	),
	Reset: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reset"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Start, k.Submit, k.Reset, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// forScreen enables only the bindings that do something on the screen.
func (k keyMap) forScreen(s screen) keyMap {
	k.Start.SetEnabled(s == screenWelcome)
	k.Submit.SetEnabled(s == screenSession)
	k.Reset.SetEnabled(s != screenWelcome)
	if s == screenResults {
		k.Reset.SetHelp("r", "new interview")
	}
	return k
}
