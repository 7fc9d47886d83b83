package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines keyboard shortcuts for the application
type KeyMap struct {
	// Global navigation
	Quit key.Binding
	Back key.Binding
	Help key.Binding

	// Navigation
	Up       key.Binding
	Down     key.Binding
	Enter    key.Binding
	Tab      key.Binding
	ShiftTab key.Binding
	NextPage key.Binding
	PrevPage key.Binding

	// Dashboard
	SwitchCoin key.Binding
	Refresh    key.Binding
	Logout     key.Binding
	ToggleMode key.Binding

	// Forms
	Save    key.Binding
	Dismiss key.Binding

	// Ladder editor
	AddLevel    key.Binding
	RemoveLevel key.Binding
	ViewAll     key.Binding

	// Wallets
	Track   key.Binding
	Untrack key.Binding
	Resume  key.Binding

	// Logs
	ExportCSV  key.Binding
	ExportJSON key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),

		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next"),
		),
		ShiftTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("right", "n"),
			key.WithHelp("→/n", "next page"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("left", "p"),
			key.WithHelp("←/p", "prev page"),
		),

		SwitchCoin: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "switch coin"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r", "f5"),
			key.WithHelp("r/F5", "refresh"),
		),
		Logout: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("ctrl+o", "logout"),
		),
		ToggleMode: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "login/signup"),
		),

		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "save"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("ctrl+x", "dismiss error"),
		),

		AddLevel: key.NewBinding(
			key.WithKeys("ctrl+a"),
			key.WithHelp("ctrl+a", "add level"),
		),
		RemoveLevel: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", "remove level"),
		),
		ViewAll: key.NewBinding(
			key.WithKeys("ctrl+v"),
			key.WithHelp("ctrl+v", "view all"),
		),

		Track: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "track wallet"),
		),
		Untrack: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "stop"),
		),
		Resume: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "resume"),
		),

		ExportCSV: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "export csv"),
		),
		ExportJSON: key.NewBinding(
			key.WithKeys("J"),
			key.WithHelp("J", "export json"),
		),
	}
}

// ShortHelp returns key help text for the current context
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Back, k.Quit}
}

// ContextualHelp returns help text based on the current route
func (k KeyMap) ContextualHelp(route Route) []key.Binding {
	switch route {
	case RouteLogin:
		return []key.Binding{k.Tab, k.Enter, k.ToggleMode, k.Quit}
	case RouteMainMenu:
		return []key.Binding{k.Up, k.Down, k.Enter, k.SwitchCoin, k.Refresh, k.Logout, k.Quit}
	case RouteSettings, RouteMirrorSettings:
		return []key.Binding{k.Tab, k.ShiftTab, k.AddLevel, k.RemoveLevel, k.ViewAll, k.Save, k.Back}
	case RouteWallets:
		return []key.Binding{k.Up, k.Down, k.Enter, k.Track, k.Untrack, k.Resume, k.NextPage, k.PrevPage, k.Back}
	case RouteLogs:
		return []key.Binding{k.Up, k.Down, k.NextPage, k.PrevPage, k.ExportCSV, k.ExportJSON, k.Refresh, k.Back}
	case RouteCustomSell, RouteCustomBuy, RouteWithdraw, RouteTradeAmount:
		return []key.Binding{k.Tab, k.ShiftTab, k.Save, k.Back}
	default:
		return k.ShortHelp()
	}
}
