package component

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/rovshanmuradov/prometheus-client/internal/amount"
	"github.com/rovshanmuradov/prometheus-client/internal/ui/style"
)

// StatusHeader is the one-line banner above every signed-in screen
type StatusHeader struct {
	username string
	coin     amount.Coin
	balance  string
	width    int

	container lipgloss.Style
	title     lipgloss.Style
	muted     lipgloss.Style
	coinStyle lipgloss.Style
	value     lipgloss.Style
}

// NewStatusHeader creates a new status header component
func NewStatusHeader() *StatusHeader {
	palette := style.DefaultPalette()

	return &StatusHeader{
		coin: amount.CoinSOL,

		container: lipgloss.NewStyle().
			Foreground(palette.Text).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.Primary).
			Padding(0, 2),

		title: lipgloss.NewStyle().
			Foreground(palette.Primary).
			Bold(true),

		muted: lipgloss.NewStyle().
			Foreground(palette.TextMuted),

		coinStyle: lipgloss.NewStyle().
			Foreground(palette.Background).
			Background(palette.Secondary).
			Bold(true).
			Padding(0, 1),

		value: lipgloss.NewStyle().
			Foreground(palette.Success).
			Bold(true),
	}
}

// SetUser sets the signed-in username
func (sh *StatusHeader) SetUser(username string) {
	sh.username = username
}

// SetCoin sets the active chain
func (sh *StatusHeader) SetCoin(coin amount.Coin) {
	sh.coin = coin
}

// SetBalance sets the raw native balance of the active chain
func (sh *StatusHeader) SetBalance(raw string) {
	sh.balance = raw
}

// SetWidth sets the component width for responsive layout
func (sh *StatusHeader) SetWidth(width int) {
	sh.width = width
}

// View renders the status header
func (sh *StatusHeader) View() string {
	sep := sh.muted.Render(" │ ")

	user := sh.username
	if user == "" {
		user = "guest"
	}

	balance := amount.NotAvailable
	if sh.balance != "" {
		balance = amount.FormatNative(sh.balance, sh.coin)
	}

	content := lipgloss.JoinHorizontal(
		lipgloss.Center,
		sh.title.Render("PROMETHEUS"),
		sep,
		sh.coinStyle.Render(sh.coin.Symbol()),
		sep,
		sh.muted.Render("user ")+user,
		sep,
		sh.muted.Render("balance ")+sh.value.Render(fmt.Sprintf("%s %s", balance, sh.coin.Symbol())),
	)

	container := sh.container
	if sh.width > 4 {
		container = container.Width(sh.width - 4)
	}
	return container.Render(content)
}

// GetHeight returns the component height for layout calculations
func (sh *StatusHeader) GetHeight() int {
	return 3
}
