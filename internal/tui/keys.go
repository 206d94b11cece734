package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit   key.Binding
	Search key.Binding
	Reload key.Binding
	Up     key.Binding
	Down   key.Binding
}

var keys = keyMap{
	Quit:   key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "quit")),
	Search: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "search")),
	Reload: key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "reload")),
	Up:     key.NewBinding(key.WithKeys("up"), key.WithHelp("up", "scroll up")),
	Down:   key.NewBinding(key.WithKeys("down"), key.WithHelp("down", "scroll down")),
}

func (k keyMap) help() string {
	var parts []string
	for _, b := range []key.Binding{k.Search, k.Up, k.Down, k.Reload, k.Quit} {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return joinHelp(parts)
}
