package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Compact    key.Binding
	Tab        key.Binding
	ShiftTab   key.Binding

	// View switching
	ViewBoard   key.Binding
	ViewProfile key.Binding
	ViewHistory key.Binding

	// Navigation
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding

	// Board actions
	Accept       key.Binding
	Decline      key.Binding
	Complete     key.Binding
	CompleteUp   key.Binding
	CompleteDown key.Binding
	Fail         key.Binding
	Abandon      key.Binding
	Reload       key.Binding
	NewBoard     key.Binding

	// Profile actions
	Toggle       key.Binding
	Confirm      key.Binding
	Cancel       key.Binding
	ResetProfile key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Compact: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "Compact board"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Next view"),
		),
		ShiftTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "Previous view"),
		),

		ViewBoard: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "Board"),
		),
		ViewProfile: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "Profile"),
		),
		ViewHistory: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "History"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Go to bottom"),
		),

		Accept: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "Accept"),
		),
		Decline: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "Decline"),
		),
		Complete: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "Complete"),
		),
		CompleteUp: key.NewBinding(
			key.WithKeys("+"),
			key.WithHelp("+", "Complete, thumbs up"),
		),
		CompleteDown: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "Complete, thumbs down"),
		),
		Fail: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "Fail"),
		),
		Abandon: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "Abandon"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Reload board"),
		),
		NewBoard: key.NewBinding(
			key.WithKeys("N"),
			key.WithHelp("N", "Generate new quests"),
		),

		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "Toggle"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Edit / confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Cancel edit"),
		),
		ResetProfile: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "Reset profile"),
		),
	}
}
