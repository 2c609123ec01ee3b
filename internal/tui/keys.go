package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Prev     key.Binding
	Next     key.Binding
	Today    key.Binding
	Month    key.Binding
	Week     key.Binding
	Day      key.Binding
	Open     key.Binding
	Close    key.Binding
	Up       key.Binding
	Down     key.Binding
	Complete key.Binding
	Reload   key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Prev:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev")),
		Next:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next")),
		Today:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "today")),
		Month:    key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "month")),
		Week:     key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "week")),
		Day:      key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "day")),
		Open:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
		Close:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Complete: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "mark complete")),
		Reload:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.Today, k.Open, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Prev, k.Next, k.Today},
		{k.Month, k.Week, k.Day},
		{k.Open, k.Close, k.Up, k.Down, k.Complete},
		{k.Reload, k.Help, k.Quit},
	}
}
