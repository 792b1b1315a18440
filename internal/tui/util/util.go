// Package util holds small helpers shared by TUI components.
package util

import (
	tea "charm.land/bubbletea/v2"
)

// Model is a page or component that can be updated and rendered.
type Model interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Model, tea.Cmd)
	View() string
}

// InfoType classifies an InfoMsg.
type InfoType int

// Info types.
const (
	InfoTypeInfo InfoType = iota
	InfoTypeWarn
	InfoTypeError
)

// InfoMsg carries a transient status line message.
type InfoMsg struct {
	Type InfoType
	Msg  string
}

// CmdHandler wraps a message in a command.
func CmdHandler(msg tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return msg
	}
}

// ReportInfo returns a command that emits an info message.
func ReportInfo(msg string) tea.Cmd {
	return CmdHandler(InfoMsg{Type: InfoTypeInfo, Msg: msg})
}

// ReportWarn returns a command that emits a warning message.
func ReportWarn(msg string) tea.Cmd {
	return CmdHandler(InfoMsg{Type: InfoTypeWarn, Msg: msg})
}

// ReportError returns a command that emits an error message.
func ReportError(err error) tea.Cmd {
	return CmdHandler(InfoMsg{Type: InfoTypeError, Msg: err.Error()})
}
