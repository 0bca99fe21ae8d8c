package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	play     key.Binding
	pause    key.Binding
	next     key.Binding
	previous key.Binding
	louder   key.Binding
	quieter  key.Binding
	forward  key.Binding
	rewind   key.Binding
	up       key.Binding
	down     key.Binding
	moveUp   key.Binding
	moveDown key.Binding
	skipTo   key.Binding
	search   key.Binding
	submit   key.Binding
	back     key.Binding
	resync   key.Binding
	help     key.Binding
	quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		play:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "play")),
		pause:    key.NewBinding(key.WithKeys("s", " "), key.WithHelp("s", "pause")),
		next:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next")),
		previous: key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "previous")),
		louder:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "volume up")),
		quieter:  key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "volume down")),
		forward:  key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "seek")),
		rewind:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "rewind")),
		up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		moveUp:   key.NewBinding(key.WithKeys("K", "shift+up"), key.WithHelp("K", "move up")),
		moveDown: key.NewBinding(key.WithKeys("J", "shift+down"), key.WithHelp("J", "move down")),
		skipTo:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "play selected")),
		search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		submit:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		resync:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "resync")),
		help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.play, k.pause, k.next, k.search, k.help, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.play, k.pause, k.next, k.previous},
		{k.louder, k.quieter, k.forward, k.rewind},
		{k.up, k.down, k.moveUp, k.moveDown, k.skipTo},
		{k.search, k.resync, k.help, k.quit},
	}
}
