package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgPageLoaded MsgKind = iota
	MsgPageChanged
	MsgCommandDone
	MsgVisibility
)

// pageLoadedMsg is the constructor for [MsgPageLoaded]
func pageLoadedMsg(err error) Msg {
	return Msg{kind: MsgPageLoaded, data: err}
}

// pageChangedMsg is the constructor for [MsgPageChanged]
func pageChangedMsg() Msg {
	return Msg{kind: MsgPageChanged}
}

// commandDoneMsg is the constructor for [MsgCommandDone]
func commandDoneMsg(name string, err error) Msg {
	return Msg{
		kind: MsgCommandDone,
		data: struct {
			name string
			err  error
		}{name, err},
	}
}

// visibilityMsg is the constructor for [MsgVisibility]
func visibilityMsg(resynced bool) Msg {
	return Msg{kind: MsgVisibility, data: resynced}
}
