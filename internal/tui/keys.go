package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the shell key bindings.
type keyMap struct {
	NextPlatform key.Binding
	PrevPlatform key.Binding
	Up           key.Binding
	Down         key.Binding
	Open         key.Binding
	NewShop      key.Binding
	CloseTab     key.Binding
	Shops        key.Binding
	PrevTab      key.Binding
	NextTab      key.Binding
	Dismiss      key.Binding
	OpenNotice   key.Binding
	Preview      key.Binding
	Back         key.Binding
	Quit         key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		NextPlatform: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next platform")),
		PrevPlatform: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev platform")),
		Up:           key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:         key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Open:         key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open shop")),
		NewShop:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new account")),
		CloseTab:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "close tab")),
		Shops:        key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "shops")),
		PrevTab:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev tab")),
		NextTab:      key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next tab")),
		Dismiss:      key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "dismiss notice")),
		OpenNotice:   key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "go to notice")),
		Preview:      key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "raw message")),
		Back:         key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		Quit:         key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextPlatform, k.Open, k.NewShop, k.CloseTab, k.Shops, k.Preview, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextPlatform, k.PrevPlatform, k.Up, k.Down, k.Open},
		{k.NewShop, k.CloseTab, k.Shops, k.PrevTab, k.NextTab},
		{k.Dismiss, k.OpenNotice, k.Preview, k.Quit},
	}
}
