package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rovshanmuradov/prometheus-client/internal/amount"
	"github.com/rovshanmuradov/prometheus-client/internal/tracker"
)

// Tea message types for UI communication

// RouterMsg represents navigation between screens. Wallet selects the
// mirrored wallet for RouteMirrorSettings.
type RouterMsg struct {
	To     Route
	Wallet string
}

// ErrorMsg represents error conditions
type ErrorMsg struct {
	Err   error
	Title string
}

// SuccessMsg represents success conditions
type SuccessMsg struct {
	Message string
	Title   string
}

// SessionExpiredMsg sends the user back to the login screen
type SessionExpiredMsg struct{}

// LoggedInMsg is emitted once a session has been stored
type LoggedInMsg struct {
	Username string
}

// LoggedOutMsg is emitted after logout
type LoggedOutMsg struct{}

// CoinChangedMsg is emitted when the dashboard switches chain
type CoinChangedMsg struct {
	Coin amount.Coin
}

// Fail converts an operation error into the message the UI reacts to:
// SessionExpiredMsg when the user must sign in again, ErrorMsg otherwise.
func Fail(err error, title string) tea.Msg {
	if tracker.IsSessionExpired(err) {
		return SessionExpiredMsg{}
	}
	return ErrorMsg{Err: err, Title: title}
}

// Navigate returns a command that routes to the given screen
func Navigate(route Route) tea.Cmd {
	return func() tea.Msg {
		return RouterMsg{To: route}
	}
}

// Event Bus for UI communication
var (
	// Bus is the global event bus for UI communication
	Bus = make(chan tea.Msg, 1024)
)

// PublishError publishes an error message to the UI bus
func PublishError(err error, title string) {
	publish(Fail(err, title))
}

// PublishSuccess publishes a success message to the UI bus
func PublishSuccess(message, title string) {
	publish(SuccessMsg{Message: message, Title: title})
}

// PublishSessionExpired asks the app to return to the login screen
func PublishSessionExpired() {
	publish(SessionExpiredMsg{})
}

func publish(msg tea.Msg) {
	if GlobalBus != nil {
		GlobalBus.Publish(msg)
		return
	}
	select {
	case Bus <- msg:
	default:
		// Bus is full, drop the message
	}
}

// BusMsg wraps a message that arrived through the bus so the receiver knows
// to listen again
type BusMsg struct {
	Msg tea.Msg
}

// ListenBus returns a tea.Cmd that waits for the next bus message
func ListenBus() tea.Cmd {
	return func() tea.Msg {
		return BusMsg{Msg: <-Bus}
	}
}

// Route represents different screens in the application
type Route int

const (
	RouteLogin Route = iota
	RouteMainMenu
	RouteSettings
	RouteWallets
	RouteMirrorSettings
	RouteLogs
	RouteCustomSell
	RouteCustomBuy
	RouteWithdraw
	RouteTradeAmount
)

// String returns the string representation of the route
func (r Route) String() string {
	switch r {
	case RouteLogin:
		return "login"
	case RouteMainMenu:
		return "main_menu"
	case RouteSettings:
		return "settings"
	case RouteWallets:
		return "wallets"
	case RouteMirrorSettings:
		return "mirror_settings"
	case RouteLogs:
		return "logs"
	case RouteCustomSell:
		return "custom_sell"
	case RouteCustomBuy:
		return "custom_buy"
	case RouteWithdraw:
		return "withdraw"
	case RouteTradeAmount:
		return "trade_amount"
	default:
		return "unknown"
	}
}
